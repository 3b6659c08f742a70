package service

import (
	"context"
	"fmt"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/metrics"
	"founder-coach-api/pkg/entitlements"

	"golang.org/x/sync/errgroup"
)

// usageService implements the single "check counted resource" primitive
// shared by every limited resource.
//
// Two concurrent requests can both read the same pre-insert count and both
// pass, overshooting a limit by one. That race is accepted: counts are not
// incremented transactionally.
type usageService struct {
	repo       domain.UsageRepository
	clock      Clock
	logger     domain.Logger
	failClosed bool
}

// NewUsageService creates a usage service. With failClosed set an
// unreadable count denies instead of counting as zero.
func NewUsageService(repo domain.UsageRepository, clock Clock, logger domain.Logger, failClosed bool) *usageService {
	if clock == nil {
		clock = SystemClock()
	}
	return &usageService{
		repo:       repo,
		clock:      clock,
		logger:     logger,
		failClosed: failClosed,
	}
}

// StartOfDay returns local midnight of now in loc, as a UTC instant.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}

// Count returns how many rows of resource the user owns. A storage error is
// logged and counted as zero, or returned as ErrUsageUnavailable when the
// service fails closed.
func (s *usageService) Count(ctx context.Context, userID string, resource domain.Resource, loc *time.Location) (int64, error) {
	spec, ok := domain.SpecFor(resource)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownResource, resource)
	}

	var since *time.Time
	if spec.Daily {
		start := StartOfDay(s.clock.Now(), loc)
		since = &start
	}

	n, err := s.repo.CountRows(ctx, spec.Table, userID, since)
	if err != nil {
		metrics.UsageCountErrors.WithLabelValues(spec.Table).Inc()
		s.logger.Error("Failed to count usage", err, "user_id", userID, "table", spec.Table, "fail_closed", s.failClosed)
		if s.failClosed {
			return 0, fmt.Errorf("%w: %v", domain.ErrUsageUnavailable, err)
		}
		return 0, nil
	}
	return n, nil
}

// Check decides whether the user may create one more unit of resource.
// Paid plans skip counting where the resource allows it, and so does any
// unbounded limit.
func (s *usageService) Check(ctx context.Context, userID string, plan entitlements.Plan, resource domain.Resource, loc *time.Location) domain.UsageDecision {
	spec, ok := domain.SpecFor(resource)
	if !ok {
		return domain.UsageDecision{
			Resource: resource,
			Reason:   fmt.Sprintf("unknown resource %q", resource),
		}
	}

	limit := entitlements.GetPlanFeatures(string(plan)).LimitFor(spec.LimitKey)
	decision := domain.UsageDecision{Resource: resource, Limit: limit}

	if (spec.PaidBypass && entitlements.HasPaidPlan(string(plan))) || limit.IsUnbounded() {
		decision.Allowed = true
		decision.Remaining = entitlements.Unbounded()
		return decision
	}

	used, err := s.Count(ctx, userID, resource, loc)
	if err != nil {
		decision.Remaining = entitlements.Bounded(0)
		decision.Reason = "usage could not be verified, please try again"
		decision.Unverified = true
		return decision
	}

	decision.Used = used
	decision.Remaining = limit.Remaining(used)
	decision.Allowed = !decision.Remaining.Exhausted()
	if !decision.Allowed {
		decision.Reason = denialReason(spec, limit, plan)
		decision.Code = spec.DenialCode
	}
	return decision
}

func denialReason(spec domain.ResourceSpec, limit entitlements.Limit, plan entitlements.Plan) string {
	n, _ := limit.Value()
	if n == 0 {
		return fmt.Sprintf("%s are not included in the %s plan", spec.Noun, plan)
	}
	return fmt.Sprintf("limit of %d %s reached", n, spec.Noun)
}

func (s *usageService) CanGenerateIdeas(ctx context.Context, userID string, plan entitlements.Plan) domain.UsageDecision {
	return s.Check(ctx, userID, plan, domain.ResourceIdeaGenerations, nil)
}

func (s *usageService) CanSaveIdea(ctx context.Context, userID string, plan entitlements.Plan) domain.UsageDecision {
	return s.Check(ctx, userID, plan, domain.ResourceSavedIdeas, nil)
}

func (s *usageService) CanCreateBlueprint(ctx context.Context, userID string, plan entitlements.Plan) domain.UsageDecision {
	return s.Check(ctx, userID, plan, domain.ResourceBlueprints, nil)
}

func (s *usageService) CanCreateWorkspaceDoc(ctx context.Context, userID string, plan entitlements.Plan) domain.UsageDecision {
	return s.Check(ctx, userID, plan, domain.ResourceWorkspaceDocuments, nil)
}

// CanScanRadar counts today's radar signals, where today starts at local
// midnight in loc.
func (s *usageService) CanScanRadar(ctx context.Context, userID string, plan entitlements.Plan, loc *time.Location) domain.UsageDecision {
	return s.Check(ctx, userID, plan, domain.ResourceRadarSignals, loc)
}

// Summary checks every resource concurrently.
func (s *usageService) Summary(ctx context.Context, userID string, plan entitlements.Plan, loc *time.Location) ([]domain.UsageDecision, error) {
	resources := domain.Resources()
	out := make([]domain.UsageDecision, len(resources))

	g, gctx := errgroup.WithContext(ctx)
	for i, resource := range resources {
		g.Go(func() error {
			out[i] = s.Check(gctx, userID, plan, resource, loc)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return out, nil
}
