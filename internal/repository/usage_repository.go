package repository

import (
	"context"
	"fmt"
	"time"

	"founder-coach-api/internal/domain"
)

// SupabaseUsageRepository counts rows through PostgREST exact counts.
type SupabaseUsageRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseUsageRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseUsageRepository {
	return &SupabaseUsageRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// CountRows issues a HEAD request with count=exact so no rows are
// transferred. Counting runs as the service role.
func (r *SupabaseUsageRepository) CountRows(ctx context.Context, table, userID string, since *time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	client, err := r.supabaseClient.ServiceRole()
	if err != nil {
		return 0, fmt.Errorf("failed to get service role client: %w", err)
	}
	if client == nil {
		return 0, fmt.Errorf("supabase client not initialized")
	}

	query := client.From(table).
		Select("id", "exact", true).
		Eq("user_id", userID)
	if since != nil {
		query = query.Gte("created_at", since.UTC().Format(time.RFC3339))
	}

	_, count, err := query.Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
