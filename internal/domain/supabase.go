package domain

import "github.com/supabase-community/supabase-go"

type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*SupabaseUser, error)

	// DB is the anon-key client.
	DB() *supabase.Client
	// ServiceRole bypasses row-level security. Server-side checks only.
	ServiceRole() (*supabase.Client, error)
	GetClientWithToken(token string) (*supabase.Client, error)
}
