package service

import (
	"context"
	"fmt"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/metrics"
	"founder-coach-api/pkg/entitlements"

	"golang.org/x/sync/singleflight"
)

// DefaultPlanCacheTTL is how long a resolved plan is served from memory.
const DefaultPlanCacheTTL = 60 * time.Second

// subscriptionReadTimeout bounds a shared subscription read.
const subscriptionReadTimeout = 10 * time.Second

type planResolver struct {
	repo   domain.SubscriptionRepository
	cache  *TTLCache[string, domain.PlanState]
	clock  Clock
	logger domain.Logger
	group  singleflight.Group
}

// NewPlanResolver creates a resolver backed by repo. The cache is owned by
// the resolver; pass a fake clock in tests.
func NewPlanResolver(
	repo domain.SubscriptionRepository,
	cache *TTLCache[string, domain.PlanState],
	clock Clock,
	logger domain.Logger,
) *planResolver {
	if clock == nil {
		clock = SystemClock()
	}
	if cache == nil {
		cache = NewTTLCache[string, domain.PlanState](DefaultPlanCacheTTL, clock)
	}
	return &planResolver{
		repo:   repo,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

// Resolve returns the effective plan state, from cache when fresh. Storage
// failures resolve to free.
func (r *planResolver) Resolve(ctx context.Context, userID string) domain.PlanState {
	if state, ok := r.cache.Get(userID); ok {
		metrics.PlanCacheLookups.WithLabelValues("hit").Inc()
		return state
	}
	metrics.PlanCacheLookups.WithLabelValues("miss").Inc()

	state, err := r.load(ctx, userID)
	if err != nil {
		r.logger.Error("Failed to resolve plan, using free", err, "user_id", userID)
		return domain.FreePlanState("")
	}
	return state
}

// GetUserPlan is Resolve reduced to the plan id.
func (r *planResolver) GetUserPlan(ctx context.Context, userID string) entitlements.Plan {
	return r.Resolve(ctx, userID).Plan
}

// ResolveFromStorage skips the cache and returns storage errors to the
// caller. The fresh result replaces the cached one.
func (r *planResolver) ResolveFromStorage(ctx context.Context, userID string) (domain.PlanState, error) {
	state, err := r.load(ctx, userID)
	if err != nil {
		return domain.FreePlanState(""), err
	}
	return state, nil
}

// load reads the subscription row once per user even under concurrent
// misses. The shared read is detached from any one caller's cancellation;
// each caller stops waiting when its own context ends.
func (r *planResolver) load(ctx context.Context, userID string) (domain.PlanState, error) {
	ch := r.group.DoChan(userID, func() (interface{}, error) {
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), subscriptionReadTimeout)
		defer cancel()

		sub, err := r.repo.GetByUserID(readCtx, userID)
		if err != nil {
			return nil, err
		}
		state := domain.EffectivePlanState(sub, r.clock.Now())
		r.cache.Set(userID, state)
		return state, nil
	})

	select {
	case <-ctx.Done():
		return domain.PlanState{}, fmt.Errorf("failed to read subscription: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.PlanState{}, fmt.Errorf("failed to read subscription: %w", res.Err)
		}
		return res.Val.(domain.PlanState), nil
	}
}

// ClearPlanCache drops the cached plan of the given users, or of every user
// when called without arguments.
func (r *planResolver) ClearPlanCache(userIDs ...string) {
	r.cache.Delete(userIDs...)
	if len(userIDs) == 0 {
		r.logger.Debug("Plan cache cleared")
		return
	}
	r.logger.Debug("Plan cache entries cleared", "user_ids", userIDs)
}

// EnsureSubscription creates the implicit free/active row for a user seen
// for the first time.
func (r *planResolver) EnsureSubscription(ctx context.Context, userID string) error {
	sub, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read subscription: %w", err)
	}
	if sub != nil {
		return nil
	}
	if _, err := r.repo.CreateDefault(ctx, userID); err != nil {
		return fmt.Errorf("failed to create default subscription: %w", err)
	}
	r.logger.Info("Created default subscription", "user_id", userID)
	r.ClearPlanCache(userID)
	return nil
}
