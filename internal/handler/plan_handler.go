package handler

import (
	"errors"
	"net/http"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"

	"github.com/gorilla/mux"
)

// PlanHandler serves the plan catalog and the caller's own plan and usage.
type PlanHandler struct {
	resolver      domain.PlanResolver
	usage         domain.UsageService
	subscriptions domain.SubscriptionRepository
	entitlements  domain.EntitlementService
	logger        domain.Logger
}

func NewPlanHandler(
	resolver domain.PlanResolver,
	usage domain.UsageService,
	subscriptions domain.SubscriptionRepository,
	entitlementService domain.EntitlementService,
	logger domain.Logger,
) *PlanHandler {
	return &PlanHandler{
		resolver:      resolver,
		usage:         usage,
		subscriptions: subscriptions,
		entitlements:  entitlementService,
		logger:        logger,
	}
}

type entitlementsResponse struct {
	domain.PlanState
	Definition entitlements.PlanDisplayInfo `json:"definition"`
	Modes      []entitlements.IdeaMode      `json:"modes"`
}

// ListPlans returns the catalog. No authentication required.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := entitlements.Plans()
	out := make([]entitlements.PlanDisplayInfo, 0, len(plans))
	for _, p := range plans {
		out = append(out, entitlements.GetPlanDisplayInfo(string(p.ID)))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEntitlements returns the effective plan of the caller. The value may be
// served from the plan cache and is for display only.
func (h *PlanHandler) GetEntitlements(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	state := h.resolver.Resolve(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, h.entitlementsFor(state))
}

func (h *PlanHandler) entitlementsFor(state domain.PlanState) entitlementsResponse {
	def := entitlements.GetPlanDisplayInfo(string(state.Plan))
	return entitlementsResponse{
		PlanState:  state,
		Definition: def,
		Modes:      def.Features.AllowedIdeaModes.List(),
	}
}

// GetSubscription returns the restricted subscription view, read with the
// caller's own token.
func (h *PlanHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	sub, err := h.subscriptions.GetPublicByUserID(r.Context(), user.ID, token)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		writeJSON(w, http.StatusOK, domain.PublicSubscription{
			Plan:   string(entitlements.PlanFree),
			Status: domain.StatusActive,
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load subscription", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// RefreshSubscription drops the caller's cached plan and resolves it again,
// for use right after a checkout.
func (h *PlanHandler) RefreshSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	h.resolver.ClearPlanCache(user.ID)
	state := h.resolver.Resolve(r.Context(), user.ID)
	writeJSON(w, http.StatusOK, h.entitlementsFor(state))
}

// GetUsage returns a usage decision for every counted resource.
func (h *PlanHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	state := h.resolver.Resolve(r.Context(), user.ID)
	summary, err := h.usage.Summary(r.Context(), user.ID, state.Plan, requestLocation(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":  state.Plan,
		"usage": summary,
	})
}

// CheckFeature re-validates a feature against storage.
func (h *PlanHandler) CheckFeature(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	feature := mux.Vars(r)["feature"]
	if feature == "" {
		writeError(w, http.StatusBadRequest, "Feature is required")
		return
	}

	if denial := h.entitlements.AuthorizeFeature(r.Context(), user.ID, feature); denial != nil {
		writeDenial(w, denial)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"feature": feature,
		"allowed": true,
	})
}
