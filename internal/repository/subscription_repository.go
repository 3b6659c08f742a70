package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const (
	subscriptionsTable     = "user_subscriptions"
	subscriptionsViewTable = "user_subscriptions_public"
	subscriptionColumns    = "user_id,plan,status,current_period_end,stripe_customer_id,stripe_subscription_id,updated_at"
)

// SupabaseSubscriptionRepository reads user_subscriptions with the service
// role and the public view with the caller's token.
type SupabaseSubscriptionRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
	now            func() time.Time
}

func NewSupabaseSubscriptionRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseSubscriptionRepository {
	return &SupabaseSubscriptionRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
		now:            time.Now,
	}
}

func (r *SupabaseSubscriptionRepository) serviceClient(ctx context.Context) (*supabase.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := r.supabaseClient.ServiceRole()
	if err != nil {
		return nil, fmt.Errorf("failed to get service role client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}
	return client, nil
}

// GetByUserID returns the subscription row of a user, or nil when none exists.
func (r *SupabaseSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	client, err := r.serviceClient(ctx)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(subscriptionsTable).
		Select(subscriptionColumns, "", false).
		Eq("user_id", userID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	var rows []domain.Subscription
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateDefault inserts the implicit free/active row. An existing row is
// left untouched.
func (r *SupabaseSubscriptionRepository) CreateDefault(ctx context.Context, userID string) (*domain.Subscription, error) {
	client, err := r.serviceClient(ctx)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:    userID,
		Plan:      string(entitlements.PlanFree),
		Status:    domain.StatusActive,
		UpdatedAt: r.now().UTC(),
	}
	row := map[string]interface{}{
		"user_id":    sub.UserID,
		"plan":       sub.Plan,
		"status":     sub.Status,
		"updated_at": sub.UpdatedAt,
	}

	_, _, err = client.From(subscriptionsTable).
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create subscription: %w", err)
		}
		// Lost the race to a webhook or another request; keep their row.
		existing, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return sub, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

// UpsertForUser writes the full row keyed by user_id.
func (r *SupabaseSubscriptionRepository) UpsertForUser(ctx context.Context, sub *domain.Subscription) error {
	client, err := r.serviceClient(ctx)
	if err != nil {
		return err
	}

	row := map[string]interface{}{
		"user_id":    sub.UserID,
		"plan":       sub.Plan,
		"status":     sub.Status,
		"updated_at": r.now().UTC(),
	}
	if sub.CurrentPeriodEnd != nil {
		row["current_period_end"] = sub.CurrentPeriodEnd.UTC()
	}
	if sub.StripeCustomerID != "" {
		row["stripe_customer_id"] = sub.StripeCustomerID
	}
	if sub.StripeSubscriptionID != "" {
		row["stripe_subscription_id"] = sub.StripeSubscriptionID
	}

	_, _, err = client.From(subscriptionsTable).
		Upsert(row, "user_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// UpdateByCustomerID patches every row belonging to a Stripe customer and
// returns the affected user ids.
func (r *SupabaseSubscriptionRepository) UpdateByCustomerID(ctx context.Context, customerID string, patch domain.SubscriptionPatch) ([]string, error) {
	client, err := r.serviceClient(ctx)
	if err != nil {
		return nil, err
	}

	row := map[string]interface{}{
		"updated_at": r.now().UTC(),
	}
	if patch.Plan != "" {
		row["plan"] = patch.Plan
	}
	if patch.Status != "" {
		row["status"] = patch.Status
	}
	if patch.CurrentPeriodEnd != nil {
		row["current_period_end"] = patch.CurrentPeriodEnd.UTC()
	}
	if patch.StripeSubscriptionID != "" {
		row["stripe_subscription_id"] = patch.StripeSubscriptionID
	}

	data, _, err := client.From(subscriptionsTable).
		Update(row, "representation", "").
		Eq("stripe_customer_id", customerID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	var rows []struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}
	return userIDs, nil
}

// GetPublicByUserID reads the restricted view as the user. Row-level security
// limits the result to the caller's own row.
func (r *SupabaseSubscriptionRepository) GetPublicByUserID(ctx context.Context, userID, token string) (*domain.PublicSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From(subscriptionsViewTable).
		Select("plan,status,current_period_end", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	var rows []domain.PublicSubscription
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &rows[0], nil
}
