package client

import (
	"context"
	"sync"
	"time"

	"founder-coach-api/pkg/entitlements"
)

// SubscriptionSource loads the restricted subscription view. *Client
// implements it.
type SubscriptionSource interface {
	Subscription(ctx context.Context) (*Subscription, error)
}

// FeatureAccess mirrors the server's plan gating on the client so a UI can
// show or hide paywalls. It decides nothing: the server re-checks every
// gated request.
type FeatureAccess struct {
	source SubscriptionSource
	now    func() time.Time

	mu           sync.RWMutex
	plan         entitlements.Plan
	status       string
	trialExpired bool
	loading      bool
	loaded       bool
	err          error
}

// AccessOption configures a FeatureAccess.
type AccessOption func(*FeatureAccess)

// WithNow replaces the clock used to detect expired trials.
func WithNow(now func() time.Time) AccessOption {
	return func(a *FeatureAccess) {
		a.now = now
	}
}

// NewFeatureAccess starts out as free until Refresh succeeds.
func NewFeatureAccess(source SubscriptionSource, opts ...AccessOption) *FeatureAccess {
	a := &FeatureAccess{
		source: source,
		now:    time.Now,
		plan:   entitlements.PlanFree,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Refresh reloads the subscription. Any error leaves the access at free and
// is kept for Err.
func (a *FeatureAccess) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()

	sub, err := a.source.Subscription(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	a.loaded = true
	a.err = err
	a.trialExpired = false
	if err != nil || sub == nil {
		a.plan = entitlements.PlanFree
		a.status = ""
		return err
	}

	a.status = sub.Status
	// Same rule as the server: a trial past its period end is free.
	if sub.Status == "trialing" && sub.CurrentPeriodEnd != nil && a.now().After(*sub.CurrentPeriodEnd) {
		a.plan = entitlements.PlanFree
		a.trialExpired = true
		return nil
	}
	if entitling(sub.Status) {
		a.plan = entitlements.ParsePlan(sub.Plan)
	} else {
		a.plan = entitlements.PlanFree
	}
	return nil
}

func entitling(status string) bool {
	return status == "active" || status == "trialing"
}

// Plan is the effective plan after status gating.
func (a *FeatureAccess) Plan() entitlements.Plan {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.plan
}

// Status is the raw subscription status, empty before a successful load.
func (a *FeatureAccess) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// TrialExpired reports whether the last load found a trial past its end.
func (a *FeatureAccess) TrialExpired() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.trialExpired
}

func (a *FeatureAccess) HasPro() bool {
	return a.Plan() == entitlements.PlanPro
}

func (a *FeatureAccess) HasFounder() bool {
	return a.Plan() == entitlements.PlanFounder
}

// Loading reports whether a Refresh is in flight, or none has finished yet.
func (a *FeatureAccess) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading || !a.loaded
}

func (a *FeatureAccess) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// CanUse evaluates a feature against the effective plan.
func (a *FeatureAccess) CanUse(feature string) bool {
	return entitlements.CanUseFeature(string(a.Plan()), feature)
}

// Denial returns the code and paywall copy to show when feature is not
// available, or ok=false when it is.
func (a *FeatureAccess) Denial(feature string) (entitlements.PlanErrorCode, entitlements.ErrorCopy, bool) {
	if a.CanUse(feature) {
		return "", entitlements.ErrorCopy{}, false
	}
	code := entitlements.CodeForFeature(feature)
	if a.TrialExpired() {
		code = entitlements.CodeTrialExpired
	}
	return code, entitlements.CopyFor(code), true
}
