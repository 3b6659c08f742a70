package entitlements

// LegacyAliases maps feature names used by older clients to feature keys.
var LegacyAliases = map[string]string{
	"ideaGeneration":      FeatureMaxIdeaGenerationsTotal,
	"ideaGenerations":     FeatureMaxIdeaGenerationsTotal,
	"savedIdeas":          FeatureMaxSavedIdeas,
	"ideaLibrary":         FeatureMaxSavedIdeas,
	"blueprints":          FeatureMaxBlueprints,
	"workspace":           FeatureMaxWorkspaceDocs,
	"workspaceDocs":       FeatureMaxWorkspaceDocs,
	"radar":               FeatureNicheRadar,
	"radarSignals":        FeatureMaxRadarSignalsDaily,
	"ideaModes":           FeatureAllowedIdeaModes,
	"fullIdeaDetails":     FeatureIdeaDetails,
	"coach":               FeatureAICoach,
	"pdfExport":           FeatureExportPDF,
	"export":              FeatureExportPDF,
	"multiBlueprint":      FeatureMultiBlueprintTasks,
	"crossBlueprintTasks": FeatureMultiBlueprintTasks,
}

// ResolveAlias returns the feature key for name. A legacy alias wins over a
// direct key; anything else is returned unchanged.
func ResolveAlias(name string) string {
	if key, ok := LegacyAliases[name]; ok {
		return key
	}
	return name
}
