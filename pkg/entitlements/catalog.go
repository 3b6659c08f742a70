// Package entitlements holds the plan catalog and the feature evaluator.
//
// The package has no I/O. It is compiled into the API server, where it backs
// the authoritative checks, and into the client SDK, where it only drives
// paywall rendering.
package entitlements

import (
	"encoding/json"
	"sort"
)

// Plan identifies a subscription plan.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanFounder Plan = "founder"
)

// ParsePlan maps any string onto a known plan. Unknown values become free.
func ParsePlan(s string) Plan {
	p := Plan(s)
	if _, ok := catalog[p]; ok {
		return p
	}
	return PlanFree
}

// Valid reports whether p is one of the catalog plans.
func (p Plan) Valid() bool {
	_, ok := catalog[p]
	return ok
}

// IdeaMode is an idea generation mode.
type IdeaMode string

const (
	ModeClassic IdeaMode = "classic"
	ModeRemix   IdeaMode = "remix"
	ModeChaos   IdeaMode = "chaos"
	ModeTrend   IdeaMode = "trend"
	ModeNiche   IdeaMode = "niche"
)

var knownModes = map[IdeaMode]struct{}{
	ModeClassic: {},
	ModeRemix:   {},
	ModeChaos:   {},
	ModeTrend:   {},
	ModeNiche:   {},
}

// Known reports whether m is a generation mode the product offers.
func (m IdeaMode) Known() bool {
	_, ok := knownModes[m]
	return ok
}

// ModeSet is either "all" modes or an explicit set.
type ModeSet struct {
	all   bool
	modes map[IdeaMode]struct{}
}

// AllModes returns the set matching every known mode.
func AllModes() ModeSet {
	return ModeSet{all: true}
}

// Modes returns an explicit set.
func Modes(modes ...IdeaMode) ModeSet {
	set := make(map[IdeaMode]struct{}, len(modes))
	for _, m := range modes {
		set[m] = struct{}{}
	}
	return ModeSet{modes: set}
}

// All reports whether the set is the "all" literal.
func (s ModeSet) All() bool {
	return s.all
}

// Contains reports whether mode is in the set. Unknown modes are never
// contained, even in the "all" set.
func (s ModeSet) Contains(mode IdeaMode) bool {
	if !mode.Known() {
		return false
	}
	if s.all {
		return true
	}
	_, ok := s.modes[mode]
	return ok
}

// List returns the explicit modes in a stable order, or every known mode for "all".
func (s ModeSet) List() []IdeaMode {
	out := make([]IdeaMode, 0, len(knownModes))
	for m := range knownModes {
		if s.Contains(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON encodes "all" as the string literal and explicit sets as arrays.
func (s ModeSet) MarshalJSON() ([]byte, error) {
	if s.all {
		return json.Marshal("all")
	}
	return json.Marshal(s.List())
}

// UnmarshalJSON accepts the "all" literal or an array of modes.
func (s *ModeSet) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil && literal == "all" {
		*s = AllModes()
		return nil
	}
	var modes []IdeaMode
	if err := json.Unmarshal(data, &modes); err != nil {
		return err
	}
	*s = Modes(modes...)
	return nil
}

// Access is a graded access level for features that come in partial form.
type Access string

const (
	AccessFull    Access = "full"
	AccessLimited Access = "limited"
	AccessNone    Access = "none"
)

// Feature keys, as they appear in PlanFeatures JSON.
const (
	FeatureMaxIdeaGenerationsTotal = "maxIdeaGenerationsTotal"
	FeatureMaxSavedIdeas           = "maxSavedIdeas"
	FeatureMaxBlueprints           = "maxBlueprints"
	FeatureMaxWorkspaceDocs        = "maxWorkspaceDocs"
	FeatureMaxRadarSignalsDaily    = "maxRadarSignalsDaily"
	FeatureAllowedIdeaModes        = "allowedIdeaModes"
	FeatureIdeaDetails             = "ideaDetails"
	FeatureAICoach                 = "aiCoach"
	FeatureExportPDF               = "exportPdf"
	FeatureNicheRadar              = "nicheRadar"
	FeatureMultiBlueprintTasks     = "multiBlueprintTasks"
	FeaturePrioritySupport         = "prioritySupport"
)

// PlanFeatures is the feature and limit set of one plan.
type PlanFeatures struct {
	MaxIdeaGenerationsTotal Limit   `json:"maxIdeaGenerationsTotal"`
	MaxSavedIdeas           Limit   `json:"maxSavedIdeas"`
	MaxBlueprints           Limit   `json:"maxBlueprints"`
	MaxWorkspaceDocs        Limit   `json:"maxWorkspaceDocs"`
	MaxRadarSignalsDaily    Limit   `json:"maxRadarSignalsDaily"`
	AllowedIdeaModes        ModeSet `json:"allowedIdeaModes"`
	IdeaDetails             Access  `json:"ideaDetails"`
	AICoach                 Access  `json:"aiCoach"`
	ExportPDF               bool    `json:"exportPdf"`
	NicheRadar              bool    `json:"nicheRadar"`
	MultiBlueprintTasks     bool    `json:"multiBlueprintTasks"`
	PrioritySupport         bool    `json:"prioritySupport"`
}

// Lookup returns the raw value stored under a feature key. The value is a
// bool, a Limit, an Access or a ModeSet.
func (f PlanFeatures) Lookup(key string) (any, bool) {
	switch key {
	case FeatureMaxIdeaGenerationsTotal:
		return f.MaxIdeaGenerationsTotal, true
	case FeatureMaxSavedIdeas:
		return f.MaxSavedIdeas, true
	case FeatureMaxBlueprints:
		return f.MaxBlueprints, true
	case FeatureMaxWorkspaceDocs:
		return f.MaxWorkspaceDocs, true
	case FeatureMaxRadarSignalsDaily:
		return f.MaxRadarSignalsDaily, true
	case FeatureAllowedIdeaModes:
		return f.AllowedIdeaModes, true
	case FeatureIdeaDetails:
		return f.IdeaDetails, true
	case FeatureAICoach:
		return f.AICoach, true
	case FeatureExportPDF:
		return f.ExportPDF, true
	case FeatureNicheRadar:
		return f.NicheRadar, true
	case FeatureMultiBlueprintTasks:
		return f.MultiBlueprintTasks, true
	case FeaturePrioritySupport:
		return f.PrioritySupport, true
	}
	return nil, false
}

// LimitFor returns the Limit stored under key. Keys that do not hold a
// Limit return Bounded(0).
func (f PlanFeatures) LimitFor(key string) Limit {
	v, ok := f.Lookup(ResolveAlias(key))
	if !ok {
		return Bounded(0)
	}
	if l, ok := v.(Limit); ok {
		return l
	}
	return Bounded(0)
}

// PlanDefinition is one row of the catalog.
type PlanDefinition struct {
	ID                Plan
	Name              string
	Description       string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	Features          PlanFeatures
}

var catalog = map[Plan]PlanDefinition{
	PlanFree: {
		ID:          PlanFree,
		Name:        "Free",
		Description: "Try the coach with a handful of idea generations.",
		Features: PlanFeatures{
			MaxIdeaGenerationsTotal: Bounded(3),
			MaxSavedIdeas:           Bounded(5),
			MaxBlueprints:           Bounded(1),
			MaxWorkspaceDocs:        Bounded(3),
			MaxRadarSignalsDaily:    Bounded(0),
			AllowedIdeaModes:        Modes(ModeClassic, ModeRemix),
			IdeaDetails:             AccessLimited,
			AICoach:                 AccessLimited,
		},
	},
	PlanPro: {
		ID:                PlanPro,
		Name:              "Pro",
		Description:       "Unlimited ideas, every mode, blueprints and niche radar.",
		MonthlyPriceCents: 1900,
		YearlyPriceCents:  19000,
		Features: PlanFeatures{
			MaxIdeaGenerationsTotal: Unbounded(),
			MaxSavedIdeas:           Unbounded(),
			MaxBlueprints:           Unbounded(),
			MaxWorkspaceDocs:        Unbounded(),
			MaxRadarSignalsDaily:    Bounded(10),
			AllowedIdeaModes:        AllModes(),
			IdeaDetails:             AccessFull,
			AICoach:                 AccessFull,
			ExportPDF:               true,
			NicheRadar:              true,
			MultiBlueprintTasks:     true,
		},
	},
	PlanFounder: {
		ID:                PlanFounder,
		Name:              "Founder",
		Description:       "Everything in Pro with unlimited radar and priority support.",
		MonthlyPriceCents: 4900,
		YearlyPriceCents:  49000,
		Features: PlanFeatures{
			MaxIdeaGenerationsTotal: Unbounded(),
			MaxSavedIdeas:           Unbounded(),
			MaxBlueprints:           Unbounded(),
			MaxWorkspaceDocs:        Unbounded(),
			MaxRadarSignalsDaily:    Unbounded(),
			AllowedIdeaModes:        AllModes(),
			IdeaDetails:             AccessFull,
			AICoach:                 AccessFull,
			ExportPDF:               true,
			NicheRadar:              true,
			MultiBlueprintTasks:     true,
			PrioritySupport:         true,
		},
	},
}

var planOrder = []Plan{PlanFree, PlanPro, PlanFounder}

// GetPlanFeatures returns the features of plan, or the free features when
// plan is not in the catalog.
func GetPlanFeatures(plan string) PlanFeatures {
	return Definition(plan).Features
}

// Definition returns the catalog row for plan, falling back to free.
func Definition(plan string) PlanDefinition {
	if def, ok := catalog[Plan(plan)]; ok {
		return def
	}
	return catalog[PlanFree]
}

// Plans returns every catalog row, cheapest first.
func Plans() []PlanDefinition {
	out := make([]PlanDefinition, 0, len(planOrder))
	for _, p := range planOrder {
		out = append(out, catalog[p])
	}
	return out
}
