package domain

import (
	"context"
	"time"

	"founder-coach-api/pkg/entitlements"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetLogFormat() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseServiceRoleKey() string
	GetSupabaseJWTSecret() string
	GetAIAPIURL() string
	GetAIAPIKey() string
	GetAIModel() string
	GetAITimeout() time.Duration
	GetPlanCacheTTL() time.Duration
	GetUsageCountFailClosed() bool
	GetStripeWebhookSecret() string
	// GetStripePricePlans maps a Stripe price id to the plan it grants.
	GetStripePricePlans() map[string]entitlements.Plan
	GetCORSAllowedOrigins() []string
}

// EntitlementService re-derives entitlements from storage for every gated
// request. A nil denial means the operation may proceed.
type EntitlementService interface {
	AuthorizeFeature(ctx context.Context, userID, feature string) *PlanDenial
	AuthorizeGeneration(ctx context.Context, userID, mode string) (*PlanDenial, GenerationCheck)
	AuthorizeResource(ctx context.Context, userID string, resource Resource, loc *time.Location) (*PlanDenial, UsageDecision)
}
