package service

import (
	"context"
	"fmt"
	"time"

	"founder-coach-api/internal/domain"
)

const subscriptionEnsuredCacheTTL = 10 * time.Minute

type authService struct {
	supabaseClient domain.SupabaseClient
	resolver       domain.PlanResolver
	logger         domain.Logger

	// users whose default subscription row is known to exist
	ensured *TTLCache[string, bool]
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	resolver domain.PlanResolver,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		resolver:       resolver,
		logger:         logger,
		ensured:        NewTTLCache[string, bool](subscriptionEnsuredCacheTTL, nil),
	}
}

// ValidateToken validates a token and returns user info
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}

// Authenticate validates the token and makes sure the user has a
// subscription row. Failing to create the row never fails authentication:
// a missing row already resolves to free.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.SupabaseUser, error) {
	user, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if _, ok := s.ensured.Get(user.ID); ok || s.resolver == nil {
		return user, nil
	}
	if err := s.resolver.EnsureSubscription(ctx, user.ID); err != nil {
		s.logger.Warn("Could not ensure default subscription", "user_id", user.ID, "error", err.Error())
		return user, nil
	}
	s.ensured.Set(user.ID, true)
	return user, nil
}
