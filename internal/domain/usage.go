package domain

import (
	"context"
	"time"

	"founder-coach-api/pkg/entitlements"
)

// Resource is a per-user countable resource.
type Resource string

const (
	ResourceIdeaGenerations    Resource = "idea_generations"
	ResourceSavedIdeas         Resource = "saved_ideas"
	ResourceBlueprints         Resource = "blueprints"
	ResourceWorkspaceDocuments Resource = "workspace_documents"
	ResourceRadarSignals       Resource = "radar_signals"
)

// ResourceSpec describes how a resource is counted and limited.
type ResourceSpec struct {
	Resource Resource
	Table    string
	LimitKey string
	// Daily counts only rows created since the caller's local midnight.
	Daily bool
	// PaidBypass skips counting for paid plans.
	PaidBypass bool
	DenialCode entitlements.PlanErrorCode
	// Noun is used in denial reasons, e.g. "idea generations".
	Noun string
}

var resourceSpecs = map[Resource]ResourceSpec{
	ResourceIdeaGenerations: {
		Resource:   ResourceIdeaGenerations,
		Table:      "idea_generations",
		LimitKey:   entitlements.FeatureMaxIdeaGenerationsTotal,
		PaidBypass: true,
		DenialCode: entitlements.CodeIdeaLimitReached,
		Noun:       "idea generations",
	},
	ResourceSavedIdeas: {
		Resource:   ResourceSavedIdeas,
		Table:      "saved_ideas",
		LimitKey:   entitlements.FeatureMaxSavedIdeas,
		PaidBypass: true,
		DenialCode: entitlements.CodeLibraryFullTrial,
		Noun:       "saved ideas",
	},
	ResourceBlueprints: {
		Resource:   ResourceBlueprints,
		Table:      "blueprints",
		LimitKey:   entitlements.FeatureMaxBlueprints,
		PaidBypass: true,
		DenialCode: entitlements.CodeBlueprintLimitTrial,
		Noun:       "blueprints",
	},
	ResourceWorkspaceDocuments: {
		Resource:   ResourceWorkspaceDocuments,
		Table:      "workspace_documents",
		LimitKey:   entitlements.FeatureMaxWorkspaceDocs,
		PaidBypass: true,
		DenialCode: entitlements.CodeWorkspaceLimit,
		Noun:       "workspace documents",
	},
	ResourceRadarSignals: {
		Resource:   ResourceRadarSignals,
		Table:      "radar_signals",
		LimitKey:   entitlements.FeatureMaxRadarSignalsDaily,
		Daily:      true,
		DenialCode: entitlements.CodeModeRequiresPro,
		Noun:       "radar signals per day",
	},
}

var resourceOrder = []Resource{
	ResourceIdeaGenerations,
	ResourceSavedIdeas,
	ResourceBlueprints,
	ResourceWorkspaceDocuments,
	ResourceRadarSignals,
}

// SpecFor returns the descriptor of a resource.
func SpecFor(r Resource) (ResourceSpec, bool) {
	spec, ok := resourceSpecs[r]
	return spec, ok
}

// Resources lists every countable resource in display order.
func Resources() []Resource {
	out := make([]Resource, len(resourceOrder))
	copy(out, resourceOrder)
	return out
}

// UsageDecision is the outcome of a limit check.
type UsageDecision struct {
	Resource  Resource                   `json:"resource"`
	Allowed   bool                       `json:"allowed"`
	Used      int64                      `json:"used"`
	Limit     entitlements.Limit         `json:"limit"`
	Remaining entitlements.Limit         `json:"remaining"`
	Reason    string                     `json:"reason,omitempty"`
	Code      entitlements.PlanErrorCode `json:"code,omitempty"`
	// Unverified is set when the count could not be read and the check
	// failed closed.
	Unverified bool `json:"unverified,omitempty"`
}

// GenerationCheck is what AuthorizeGeneration resolved. State is the plan
// the decision was made against.
type GenerationCheck struct {
	State PlanState
	Usage UsageDecision
}

// UsageRepository counts rows owned by a user.
type UsageRepository interface {
	// CountRows counts rows of table owned by userID, optionally only those
	// created at or after since.
	CountRows(ctx context.Context, table, userID string, since *time.Time) (int64, error)
}

// UsageService evaluates usage limits.
type UsageService interface {
	Count(ctx context.Context, userID string, resource Resource, loc *time.Location) (int64, error)
	Check(ctx context.Context, userID string, plan entitlements.Plan, resource Resource, loc *time.Location) UsageDecision
	Summary(ctx context.Context, userID string, plan entitlements.Plan, loc *time.Location) ([]UsageDecision, error)
}
