package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"founder-coach-api/internal/domain"
	apperrors "founder-coach-api/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDenial writes a plan denial with its paywall copy and usage.
func writeDenial(w http.ResponseWriter, denial *domain.PlanDenial) {
	status := denial.StatusCode
	if status == 0 {
		status = http.StatusForbidden
	}
	writeJSON(w, status, denial)
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, logger domain.Logger, err error) {
	var denial *domain.PlanDenial
	if errors.As(err, &denial) {
		writeDenial(w, denial)
		return
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		writeError(w, http.StatusBadRequest, validation.Error())
		return
	}

	appErr := toAppError(err)
	if apperrors.IsType(appErr, apperrors.ErrorTypeInternal) {
		logger.Error("Request failed", err)
	}
	writeError(w, apperrors.GetStatusCode(appErr), appErr.Message)
}

// toAppError maps domain sentinels onto error categories.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrCompletionTimeout):
		return apperrors.NewNetworkError("The coach took too long to answer, please try again", err)
	case errors.Is(err, domain.ErrCompletionFailed):
		return apperrors.NewUpstreamError("The coach could not answer, please try again", err)
	case errors.Is(err, domain.ErrUnknownResource), errors.Is(err, domain.ErrUnknownFeature):
		return apperrors.NewNotFoundError(err.Error())
	}
	return apperrors.NewInternalError("Internal server error", err)
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}

// requestLocation returns the caller's time zone from the X-Timezone header
// or the tz query parameter. Missing or unknown zones are UTC.
func requestLocation(r *http.Request) *time.Location {
	name := strings.TrimSpace(r.Header.Get("X-Timezone"))
	if name == "" {
		name = strings.TrimSpace(r.URL.Query().Get("tz"))
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
