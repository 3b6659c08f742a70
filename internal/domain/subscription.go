package domain

import (
	"context"
	"time"

	"founder-coach-api/pkg/entitlements"
)

// SubscriptionStatus is the payment-provider status stored on a subscription
// row. Values other than the constants below are kept verbatim.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
)

// Entitling reports whether the status grants the stored plan.
func (s SubscriptionStatus) Entitling() bool {
	return s == StatusActive || s == StatusTrialing
}

// Subscription is one row of user_subscriptions.
type Subscription struct {
	UserID               string             `json:"user_id"`
	Plan                 string             `json:"plan"`
	Status               SubscriptionStatus `json:"status"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty"`
	StripeCustomerID     string             `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// PublicSubscription is the client-readable projection served by the
// user_subscriptions_public view. It carries no provider identifiers.
type PublicSubscription struct {
	Plan             string             `json:"plan"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
}

// SubscriptionPatch is a partial update applied by billing events.
// Empty fields are left untouched.
type SubscriptionPatch struct {
	Plan                 string
	Status               SubscriptionStatus
	CurrentPeriodEnd     *time.Time
	StripeSubscriptionID string
}

// PlanState is the effective plan of a user after status gating.
type PlanState struct {
	Plan         entitlements.Plan  `json:"plan"`
	Status       SubscriptionStatus `json:"status"`
	IsPaid       bool               `json:"is_paid"`
	IsPro        bool               `json:"is_pro"`
	IsFounder    bool               `json:"is_founder"`
	TrialExpired bool               `json:"trial_expired"`
}

// FreePlanState is the state of a user with no entitling subscription.
func FreePlanState(status SubscriptionStatus) PlanState {
	return PlanState{Plan: entitlements.PlanFree, Status: status}
}

// EffectivePlanState gates the stored plan by subscription status. A missing
// row is the implicit free/active subscription. A trialing row whose period
// has ended is an expired trial and resolves to free.
func EffectivePlanState(sub *Subscription, now time.Time) PlanState {
	if sub == nil {
		return FreePlanState(StatusActive)
	}
	if sub.Status == StatusTrialing && sub.CurrentPeriodEnd != nil && now.After(*sub.CurrentPeriodEnd) {
		state := FreePlanState(sub.Status)
		state.TrialExpired = true
		return state
	}
	if !sub.Status.Entitling() {
		return FreePlanState(sub.Status)
	}

	plan := entitlements.ParsePlan(sub.Plan)
	return PlanState{
		Plan:      plan,
		Status:    sub.Status,
		IsPaid:    entitlements.HasPaidPlan(string(plan)),
		IsPro:     plan == entitlements.PlanPro,
		IsFounder: plan == entitlements.PlanFounder,
	}
}

// SubscriptionRepository reads and writes user_subscriptions.
type SubscriptionRepository interface {
	// GetByUserID returns nil, nil when the user has no row.
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)
	CreateDefault(ctx context.Context, userID string) (*Subscription, error)
	UpsertForUser(ctx context.Context, sub *Subscription) error
	// UpdateByCustomerID returns the ids of the users whose rows changed.
	UpdateByCustomerID(ctx context.Context, customerID string, patch SubscriptionPatch) ([]string, error)
	GetPublicByUserID(ctx context.Context, userID, token string) (*PublicSubscription, error)
}

// PlanResolver resolves and caches the effective plan of a user.
type PlanResolver interface {
	Resolve(ctx context.Context, userID string) PlanState
	ResolveFromStorage(ctx context.Context, userID string) (PlanState, error)
	GetUserPlan(ctx context.Context, userID string) entitlements.Plan
	ClearPlanCache(userIDs ...string)
	EnsureSubscription(ctx context.Context, userID string) error
}

// BillingService applies payment-provider events to subscriptions.
type BillingService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
