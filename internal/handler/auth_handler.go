package handler

import (
	"net/http"

	"founder-coach-api/internal/domain"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	resolver domain.PlanResolver
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(resolver domain.PlanResolver) *AuthHandler {
	return &AuthHandler{
		resolver: resolver,
	}
}

// GetProfile returns the current user with their effective plan
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
		"plan": h.resolver.Resolve(r.Context(), user.ID),
	})
}

func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
