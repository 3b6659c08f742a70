package config

import (
	"fmt"
	"os"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/infra/completions"
	"founder-coach-api/internal/infra/supabase"
	"founder-coach-api/internal/repository"
	"founder-coach-api/internal/service"
	"founder-coach-api/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	SubscriptionRepository domain.SubscriptionRepository
	UsageRepository        domain.UsageRepository
	ContentRepository      domain.ContentRepository
	CompletionClient       domain.CompletionClient

	PlanResolver       domain.PlanResolver
	UsageService       domain.UsageService
	EntitlementService domain.EntitlementService
	IdeaService        domain.IdeaService
	BillingService     domain.BillingService
	AuthService        domain.AuthService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLoggerWithFormat(config.GetLogLevel(), config.GetLogFormat(), os.Stdout)

	supabaseClient := supabase.NewSupabaseClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize supabase: %w", err)
	}
	if _, err := supabaseClient.ServiceRole(); err != nil {
		// Entitlement checks cannot run without it; every gated request
		// will be denied until the key is configured.
		appLogger.Error("Service role client unavailable", err)
	}

	// Repositories
	subscriptionRepo := repository.NewSupabaseSubscriptionRepository(supabaseClient, appLogger)
	usageRepo := repository.NewSupabaseUsageRepository(supabaseClient, appLogger)
	contentRepo := repository.NewSupabaseContentRepository(supabaseClient, appLogger)

	completionClient := completions.NewClient(
		config.GetAIAPIURL(),
		config.GetAIAPIKey(),
		config.GetAIModel(),
		config.GetAITimeout(),
		appLogger,
	)

	// Services
	clock := service.SystemClock()
	planCache := service.NewTTLCache[string, domain.PlanState](config.GetPlanCacheTTL(), clock)
	planResolver := service.NewPlanResolver(subscriptionRepo, planCache, clock, appLogger)
	usageService := service.NewUsageService(usageRepo, clock, appLogger, config.GetUsageCountFailClosed())
	entitlementService := service.NewEntitlementService(planResolver, usageService, appLogger)
	ideaService := service.NewIdeaService(entitlementService, contentRepo, completionClient, clock, appLogger)
	billingService := service.NewBillingService(
		subscriptionRepo,
		planResolver,
		config.GetStripeWebhookSecret(),
		config.GetStripePricePlans(),
		appLogger,
	)
	authService := service.NewAuthService(supabaseClient, planResolver, appLogger)

	return &Container{
		Config:                 config,
		Logger:                 appLogger,
		SupabaseClient:         supabaseClient,
		SubscriptionRepository: subscriptionRepo,
		UsageRepository:        usageRepo,
		ContentRepository:      contentRepo,
		CompletionClient:       completionClient,
		PlanResolver:           planResolver,
		UsageService:           usageService,
		EntitlementService:     entitlementService,
		IdeaService:            ideaService,
		BillingService:         billingService,
		AuthService:            authService,
	}, nil
}
