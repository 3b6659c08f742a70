package supabase

import (
	"fmt"
	"sync"

	"founder-coach-api/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient implements the domain.SupabaseClient interface
type SupabaseClient struct {
	client   *supabase.Client
	config   domain.Config
	logger   domain.Logger
	verifier *TokenVerifier

	serviceOnce   sync.Once
	serviceClient *supabase.Client
	serviceErr    error
}

// NewSupabaseClient creates a new Supabase client instance
func NewSupabaseClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	s := &SupabaseClient{
		config: config,
		logger: logger,
	}
	if secret := config.GetSupabaseJWTSecret(); secret != "" {
		s.verifier = NewTokenVerifier(secret)
	}
	return s
}

func (s *SupabaseClient) DB() *supabase.Client {
	return s.client
}

// Initialize establishes a connection to Supabase
func (s *SupabaseClient) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized successfully", "url", supabaseURL, "local_jwt", s.verifier != nil)
	return nil
}

// ServiceRole returns a client authenticated with the service role key.
// It bypasses row-level security and must never serve client-supplied reads.
func (s *SupabaseClient) ServiceRole() (*supabase.Client, error) {
	s.serviceOnce.Do(func() {
		supabaseURL := s.config.GetSupabaseURL()
		serviceRoleKey := s.config.GetSupabaseServiceRoleKey()
		if supabaseURL == "" || serviceRoleKey == "" {
			s.serviceErr = fmt.Errorf("missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY")
			return
		}

		s.serviceClient, s.serviceErr = supabase.NewClient(supabaseURL, serviceRoleKey, &supabase.ClientOptions{})
	})

	return s.serviceClient, s.serviceErr
}

// GetClientWithToken returns a client whose PostgREST calls run as the token's
// user, so row-level security applies.
func (s *SupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

// ValidateToken validates a Supabase JWT token and returns user info.
// With SUPABASE_JWT_SECRET set the signature is checked locally; otherwise
// Supabase Auth is asked.
func (s *SupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if s.verifier != nil {
		return s.verifier.Verify(token)
	}

	if s.client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	// Passing "Authorization" via Supabase client headers does not affect GoTrue requests.
	user, err := s.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return &domain.SupabaseUser{
		ID:           user.ID.String(),
		Email:        user.Email,
		Role:         user.Role,
		UserMetadata: user.UserMetadata,
	}, nil
}
