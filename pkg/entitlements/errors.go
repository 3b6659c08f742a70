package entitlements

// PlanErrorCode is returned with every denied entitlement check.
type PlanErrorCode string

const (
	CodeIdeaLimitReached    PlanErrorCode = "IDEA_LIMIT_REACHED"
	CodeLibraryFullTrial    PlanErrorCode = "LIBRARY_FULL_TRIAL"
	CodeBlueprintLimitTrial PlanErrorCode = "BLUEPRINT_LIMIT_TRIAL"
	CodeModeRequiresPro     PlanErrorCode = "MODE_REQUIRES_PRO"
	CodeIdeaDetailPro       PlanErrorCode = "IDEA_DETAIL_PRO"
	CodeWorkspaceLimit      PlanErrorCode = "WORKSPACE_LIMIT"
	CodeExportRequiresPro   PlanErrorCode = "EXPORT_REQUIRES_PRO"
	CodeMultiBlueprintTasks PlanErrorCode = "MULTI_BLUEPRINT_TASKS"
	CodeTrialExpired        PlanErrorCode = "TRIAL_EXPIRED"
)

// ErrorCopy is the paywall text shown for a denial.
type ErrorCopy struct {
	Headline string `json:"headline"`
	Subhead  string `json:"subhead"`
	CTA      string `json:"cta"`
}

var errorCopy = map[PlanErrorCode]ErrorCopy{
	CodeIdeaLimitReached: {
		Headline: "You've used all your free idea generations",
		Subhead:  "Upgrade to Pro for unlimited ideas in every mode.",
		CTA:      "Unlock unlimited ideas",
	},
	CodeLibraryFullTrial: {
		Headline: "Your idea library is full",
		Subhead:  "Free accounts can keep a limited number of saved ideas. Pro removes the cap.",
		CTA:      "Upgrade to save more",
	},
	CodeBlueprintLimitTrial: {
		Headline: "One blueprint on the free plan",
		Subhead:  "Build as many launch blueprints as you need with Pro.",
		CTA:      "Upgrade for more blueprints",
	},
	CodeModeRequiresPro: {
		Headline: "This mode is part of Pro",
		Subhead:  "Chaos, trend and niche modes unlock with a Pro subscription.",
		CTA:      "Try Pro modes",
	},
	CodeIdeaDetailPro: {
		Headline: "See the full breakdown",
		Subhead:  "Market sizing, risks and first steps are available on Pro.",
		CTA:      "Unlock full details",
	},
	CodeWorkspaceLimit: {
		Headline: "Workspace limit reached",
		Subhead:  "Upgrade to Pro to keep unlimited workspace documents.",
		CTA:      "Upgrade workspace",
	},
	CodeExportRequiresPro: {
		Headline: "Export is a Pro feature",
		Subhead:  "Download your ideas and blueprints as PDF with Pro.",
		CTA:      "Upgrade to export",
	},
	CodeMultiBlueprintTasks: {
		Headline: "Tasks across blueprints",
		Subhead:  "Plan tasks over several blueprints at once with Pro.",
		CTA:      "Upgrade to Pro",
	},
	CodeTrialExpired: {
		Headline: "Your trial has ended",
		Subhead:  "Subscribe to keep your Pro features.",
		CTA:      "Choose a plan",
	},
}

var fallbackCopy = ErrorCopy{
	Headline: "Upgrade to continue",
	Subhead:  "This action needs a paid plan.",
	CTA:      "See plans",
}

// Known reports whether c is one of the defined codes.
func (c PlanErrorCode) Known() bool {
	_, ok := errorCopy[c]
	return ok
}

// CopyFor returns the paywall text for code, or generic text for codes it
// does not know.
func CopyFor(code PlanErrorCode) ErrorCopy {
	if c, ok := errorCopy[code]; ok {
		return c
	}
	return fallbackCopy
}

var featureCodes = map[string]PlanErrorCode{
	FeatureMaxIdeaGenerationsTotal: CodeIdeaLimitReached,
	FeatureMaxSavedIdeas:           CodeLibraryFullTrial,
	FeatureMaxBlueprints:           CodeBlueprintLimitTrial,
	FeatureMaxWorkspaceDocs:        CodeWorkspaceLimit,
	FeatureAllowedIdeaModes:        CodeModeRequiresPro,
	FeatureNicheRadar:              CodeModeRequiresPro,
	FeatureMaxRadarSignalsDaily:    CodeModeRequiresPro,
	FeatureIdeaDetails:             CodeIdeaDetailPro,
	FeatureExportPDF:               CodeExportRequiresPro,
	FeatureMultiBlueprintTasks:     CodeMultiBlueprintTasks,
}

// CodeForFeature returns the denial code for a feature name or key. Features
// without a dedicated code return "".
func CodeForFeature(featureNameOrKey string) PlanErrorCode {
	return featureCodes[ResolveAlias(featureNameOrKey)]
}
