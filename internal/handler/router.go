package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	Plans   *PlanHandler
	Ideas   *IdeaHandler
	Webhook *WebhookHandler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers, authMiddleware func(http.Handler) http.Handler, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "founder-coach-api"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/plans", h.Plans.ListPlans).Methods(http.MethodGet)
	api.HandleFunc("/webhooks/stripe", h.Webhook.Stripe).Methods(http.MethodPost)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/profile", h.Auth.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/validate", h.Auth.ValidateToken).Methods(http.MethodGet)

	protected.HandleFunc("/entitlements", h.Plans.GetEntitlements).Methods(http.MethodGet)
	protected.HandleFunc("/subscription", h.Plans.GetSubscription).Methods(http.MethodGet)
	protected.HandleFunc("/subscription/refresh", h.Plans.RefreshSubscription).Methods(http.MethodPost)
	protected.HandleFunc("/usage", h.Plans.GetUsage).Methods(http.MethodGet)
	protected.HandleFunc("/features/{feature}/check", h.Plans.CheckFeature).Methods(http.MethodPost)

	protected.HandleFunc("/ideas/generate", h.Ideas.GenerateIdeas).Methods(http.MethodPost)
	protected.HandleFunc("/ideas/saved", h.Ideas.SaveIdea).Methods(http.MethodPost)
	protected.HandleFunc("/blueprints", h.Ideas.CreateBlueprint).Methods(http.MethodPost)
	protected.HandleFunc("/workspace/documents", h.Ideas.CreateWorkspaceDocument).Methods(http.MethodPost)
	protected.HandleFunc("/radar/signals", h.Ideas.ScanRadar).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
			"X-Timezone",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
