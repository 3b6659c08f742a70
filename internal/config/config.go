package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort             string
	LogLevel               string
	LogFormat              string
	SupabaseURL            string
	SupabaseKey            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	AIAPIURL               string
	AIAPIKey               string
	AIModel                string
	AITimeout              time.Duration
	PlanCacheTTL           time.Duration
	UsageCountFailClosed   bool
	StripeWebhookSecret    string
	StripePricePlans       map[string]entitlements.Plan
	CORSAllowedOrigins     []string
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:4173",
	"http://localhost:3000",
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:             getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		SupabaseURL:            getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:            getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseServiceRoleKey: getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnvOrDefault("SUPABASE_JWT_SECRET", ""),
		AIAPIURL:               getEnvOrDefault("AI_API_URL", "https://api.openai.com/v1"),
		AIAPIKey:               getEnvOrDefault("AI_API_KEY", ""),
		AIModel:                getEnvOrDefault("AI_MODEL", "gpt-4o-mini"),
		AITimeout:              getEnvDurationOrDefault("AI_TIMEOUT", 45*time.Second),
		PlanCacheTTL:           getEnvDurationOrDefault("PLAN_CACHE_TTL", 60*time.Second),
		UsageCountFailClosed:   getEnvBoolOrDefault("USAGE_COUNT_FAIL_CLOSED", false),
		StripeWebhookSecret:    getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		StripePricePlans:       stripePricePlansFromEnv(),
		CORSAllowedOrigins:     getEnvListOrDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns "json" or "console"
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseServiceRoleKey returns the key that bypasses RLS
func (c *AppConfig) GetSupabaseServiceRoleKey() string {
	return c.SupabaseServiceRoleKey
}

// GetSupabaseJWTSecret returns the secret Supabase signs access tokens with
func (c *AppConfig) GetSupabaseJWTSecret() string {
	return c.SupabaseJWTSecret
}

func (c *AppConfig) GetAIAPIURL() string {
	return c.AIAPIURL
}

func (c *AppConfig) GetAIAPIKey() string {
	return c.AIAPIKey
}

func (c *AppConfig) GetAIModel() string {
	return c.AIModel
}

func (c *AppConfig) GetAITimeout() time.Duration {
	return c.AITimeout
}

func (c *AppConfig) GetPlanCacheTTL() time.Duration {
	return c.PlanCacheTTL
}

// GetUsageCountFailClosed reports whether an unreadable usage count denies
func (c *AppConfig) GetUsageCountFailClosed() bool {
	return c.UsageCountFailClosed
}

func (c *AppConfig) GetStripeWebhookSecret() string {
	return c.StripeWebhookSecret
}

func (c *AppConfig) GetStripePricePlans() map[string]entitlements.Plan {
	return c.StripePricePlans
}

func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

func stripePricePlansFromEnv() map[string]entitlements.Plan {
	plans := make(map[string]entitlements.Plan)
	for env, plan := range map[string]entitlements.Plan{
		"STRIPE_PRICE_PRO_MONTHLY": entitlements.PlanPro,
		"STRIPE_PRICE_PRO_YEARLY":  entitlements.PlanPro,
		"STRIPE_PRICE_FOUNDER":     entitlements.PlanFounder,
	} {
		if id := os.Getenv(env); id != "" {
			plans[id] = plan
		}
	}
	return plans
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
