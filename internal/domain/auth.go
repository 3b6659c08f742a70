package domain

import "context"

type AuthService interface {
	ValidateToken(token string) (*SupabaseUser, error)
	// Authenticate validates the token and provisions the user's default
	// subscription on first sight.
	Authenticate(ctx context.Context, token string) (*SupabaseUser, error)
}
