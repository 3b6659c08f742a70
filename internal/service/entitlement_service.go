package service

import (
	"context"
	"fmt"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/metrics"
	"founder-coach-api/pkg/entitlements"
)

// entitlementService is the server-side authority for gated operations.
// Every call re-reads the subscription with the service role; nothing the
// client sends about its own plan is consulted.
type entitlementService struct {
	resolver domain.PlanResolver
	usage    *usageService
	logger   domain.Logger
}

func NewEntitlementService(resolver domain.PlanResolver, usage *usageService, logger domain.Logger) *entitlementService {
	return &entitlementService{
		resolver: resolver,
		usage:    usage,
		logger:   logger,
	}
}

// planState re-derives the plan from storage. A storage failure denies.
func (s *entitlementService) planState(ctx context.Context, userID, check string) (domain.PlanState, *domain.PlanDenial) {
	state, err := s.resolver.ResolveFromStorage(ctx, userID)
	if err != nil {
		s.logger.Error("Entitlement re-check failed, denying", err, "user_id", userID, "check", check)
		metrics.EntitlementDecisions.WithLabelValues(check, "unavailable", "").Inc()
		return state, domain.NewUnavailableDenial("could not verify your plan, please try again")
	}
	return state, nil
}

// deny builds the denial for state. An expired trial replaces the specific
// code so the client can offer a resubscribe path.
func (s *entitlementService) deny(check string, state domain.PlanState, code entitlements.PlanErrorCode, reason string) *domain.PlanDenial {
	if state.TrialExpired {
		code = entitlements.CodeTrialExpired
		reason = "your trial has ended: " + reason
	}
	metrics.EntitlementDecisions.WithLabelValues(check, "denied", string(code)).Inc()
	return domain.NewPlanDenial(code, reason)
}

func (s *entitlementService) allow(check string) {
	metrics.EntitlementDecisions.WithLabelValues(check, "allowed", "").Inc()
}

// AuthorizeFeature checks a boolean, access or limit feature by name or alias.
func (s *entitlementService) AuthorizeFeature(ctx context.Context, userID, feature string) *domain.PlanDenial {
	const check = "feature"
	state, denial := s.planState(ctx, userID, check)
	if denial != nil {
		return denial
	}

	if entitlements.CanUseFeature(string(state.Plan), feature) {
		s.allow(check)
		return nil
	}

	s.logger.Debug("Feature denied", "user_id", userID, "feature", feature, "plan", state.Plan)
	return s.deny(check, state, entitlements.CodeForFeature(feature),
		fmt.Sprintf("%s is not available on the %s plan", feature, state.Plan))
}

// AuthorizeGeneration checks the idea mode first and the generation count
// second, so a free user at the limit asking for a Pro mode is told about
// the mode.
func (s *entitlementService) AuthorizeGeneration(ctx context.Context, userID, mode string) (*domain.PlanDenial, domain.GenerationCheck) {
	const check = "generation"
	result := domain.GenerationCheck{
		Usage: domain.UsageDecision{Resource: domain.ResourceIdeaGenerations},
	}

	state, denial := s.planState(ctx, userID, check)
	result.State = state
	if denial != nil {
		return denial, result
	}

	if !entitlements.IsModeAllowed(string(state.Plan), mode) {
		return s.deny(check, state, entitlements.CodeModeRequiresPro,
			fmt.Sprintf("%s mode is not available on the %s plan", mode, state.Plan)), result
	}

	result.Usage = s.usage.CanGenerateIdeas(ctx, userID, state.Plan)
	if denial := s.usageDenial(check, state, result.Usage); denial != nil {
		return denial, result
	}

	s.allow(check)
	return nil, result
}

// AuthorizeResource checks the count limit of one resource.
func (s *entitlementService) AuthorizeResource(ctx context.Context, userID string, resource domain.Resource, loc *time.Location) (*domain.PlanDenial, domain.UsageDecision) {
	check := string(resource)
	decision := domain.UsageDecision{Resource: resource}

	if _, ok := domain.SpecFor(resource); !ok {
		metrics.EntitlementDecisions.WithLabelValues("unknown", "denied", "").Inc()
		return domain.NewPlanDenial("", fmt.Sprintf("unknown resource %q", resource)), decision
	}

	state, denial := s.planState(ctx, userID, check)
	if denial != nil {
		return denial, decision
	}

	decision = s.usage.Check(ctx, userID, state.Plan, resource, loc)
	if denial := s.usageDenial(check, state, decision); denial != nil {
		return denial, decision
	}

	s.allow(check)
	return nil, decision
}

func (s *entitlementService) usageDenial(check string, state domain.PlanState, decision domain.UsageDecision) *domain.PlanDenial {
	if decision.Allowed {
		return nil
	}
	var denial *domain.PlanDenial
	if decision.Unverified {
		metrics.EntitlementDecisions.WithLabelValues(check, "unavailable", "").Inc()
		denial = domain.NewUnavailableDenial(decision.Reason)
	} else {
		denial = s.deny(check, state, decision.Code, decision.Reason)
	}
	d := decision
	denial.Usage = &d
	return denial
}
