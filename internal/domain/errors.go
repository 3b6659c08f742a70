package domain

import (
	"errors"
	"net/http"

	"founder-coach-api/pkg/entitlements"
)

// Domain errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUsageUnavailable     = errors.New("usage count unavailable")
	ErrUnknownResource      = errors.New("unknown resource")
	ErrUnknownFeature       = errors.New("unknown feature")
	ErrCompletionTimeout    = errors.New("completion timed out")
	ErrCompletionFailed     = errors.New("completion failed")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// PlanDenial is returned when a gated operation is refused. It is serialized
// as the 403 body.
type PlanDenial struct {
	Reason     string                     `json:"error"`
	Code       entitlements.PlanErrorCode `json:"code,omitempty"`
	Copy       entitlements.ErrorCopy     `json:"copy"`
	Usage      *UsageDecision             `json:"usage,omitempty"`
	StatusCode int                        `json:"-"`
}

func (d *PlanDenial) Error() string {
	if d.Code != "" {
		return string(d.Code) + ": " + d.Reason
	}
	return d.Reason
}

// NewPlanDenial creates a 403 denial with the paywall copy for code.
func NewPlanDenial(code entitlements.PlanErrorCode, reason string) *PlanDenial {
	return &PlanDenial{
		Reason:     reason,
		Code:       code,
		Copy:       entitlements.CopyFor(code),
		StatusCode: http.StatusForbidden,
	}
}

// NewUnavailableDenial is returned when entitlements could not be verified.
func NewUnavailableDenial(reason string) *PlanDenial {
	return &PlanDenial{
		Reason:     reason,
		Copy:       entitlements.CopyFor(""),
		StatusCode: http.StatusServiceUnavailable,
	}
}
