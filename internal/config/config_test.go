package config

import (
	"testing"
	"time"

	"founder-coach-api/pkg/entitlements"
)

var configEnvKeys = []string{
	"PORT", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_JWT_SECRET",
	"AI_API_URL", "AI_API_KEY", "AI_MODEL", "AI_TIMEOUT",
	"PLAN_CACHE_TTL", "USAGE_COUNT_FAIL_CLOSED",
	"STRIPE_WEBHOOK_SECRET", "STRIPE_PRICE_PRO_MONTHLY", "STRIPE_PRICE_PRO_YEARLY", "STRIPE_PRICE_FOUNDER",
	"CORS_ALLOWED_ORIGINS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFormat() != "json" {
		t.Fatalf("expected default log format json, got %s", cfg.GetLogFormat())
	}
	if cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected default supabase url empty, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "" {
		t.Fatalf("expected default supabase key empty, got %s", cfg.GetSupabaseKey())
	}
	if cfg.GetAITimeout() != 45*time.Second {
		t.Fatalf("expected default ai timeout 45s, got %s", cfg.GetAITimeout())
	}
	if cfg.GetPlanCacheTTL() != 60*time.Second {
		t.Fatalf("expected default plan cache ttl 60s, got %s", cfg.GetPlanCacheTTL())
	}
	if cfg.GetUsageCountFailClosed() {
		t.Fatalf("expected usage counting to fail open by default")
	}
	if len(cfg.GetStripePricePlans()) != 0 {
		t.Fatalf("expected no stripe prices, got %v", cfg.GetStripePricePlans())
	}
	if len(cfg.GetCORSAllowedOrigins()) != 3 {
		t.Fatalf("expected default cors origins, got %v", cfg.GetCORSAllowedOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("PLAN_CACHE_TTL", "5")
	t.Setenv("USAGE_COUNT_FAIL_CLOSED", "true")
	t.Setenv("STRIPE_PRICE_PRO_MONTHLY", "price_pro_m")
	t.Setenv("STRIPE_PRICE_FOUNDER", "price_founder")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://www.example.com,")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFormat() != "console" {
		t.Fatalf("expected log format console, got %s", cfg.GetLogFormat())
	}
	if cfg.GetSupabaseServiceRoleKey() != "service-key" {
		t.Fatalf("expected service role key, got %s", cfg.GetSupabaseServiceRoleKey())
	}
	if cfg.GetSupabaseJWTSecret() != "secret" {
		t.Fatalf("expected jwt secret secret, got %s", cfg.GetSupabaseJWTSecret())
	}
	if cfg.GetAITimeout() != 10*time.Second {
		t.Fatalf("expected ai timeout 10s, got %s", cfg.GetAITimeout())
	}
	if cfg.GetPlanCacheTTL() != 5*time.Second {
		t.Fatalf("expected plan cache ttl 5s, got %s", cfg.GetPlanCacheTTL())
	}
	if !cfg.GetUsageCountFailClosed() {
		t.Fatalf("expected fail-closed usage counting")
	}

	prices := cfg.GetStripePricePlans()
	if prices["price_pro_m"] != entitlements.PlanPro || prices["price_founder"] != entitlements.PlanFounder {
		t.Fatalf("unexpected price mapping %v", prices)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %v", prices)
	}

	origins := cfg.GetCORSAllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://www.example.com" {
		t.Fatalf("unexpected cors origins %v", origins)
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("AI_TIMEOUT", "soon")
	t.Setenv("PLAN_CACHE_TTL", "-3s")
	t.Setenv("USAGE_COUNT_FAIL_CLOSED", "maybe")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetAITimeout() != 45*time.Second {
		t.Fatalf("expected default ai timeout, got %s", cfg.GetAITimeout())
	}
	if cfg.GetPlanCacheTTL() != 60*time.Second {
		t.Fatalf("expected default plan cache ttl, got %s", cfg.GetPlanCacheTTL())
	}
	if cfg.GetUsageCountFailClosed() {
		t.Fatalf("expected invalid bool to fall back to false")
	}
}
