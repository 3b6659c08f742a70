package entitlements

// CanUseFeature reports whether plan grants the feature named by
// featureNameOrKey (a legacy alias or a PlanFeatures key).
//
// Booleans are returned as-is, limits allow when unbounded or above zero,
// access levels allow only when "full" or "all", a mode set allows only
// when it is the "all" literal. Anything else, including an unknown key,
// denies.
func CanUseFeature(plan, featureNameOrKey string) bool {
	features := GetPlanFeatures(plan)
	value, ok := features.Lookup(ResolveAlias(featureNameOrKey))
	if !ok {
		return false
	}

	switch v := value.(type) {
	case bool:
		return v
	case Limit:
		return v.Allows()
	case Access:
		return v == AccessFull || v == "all"
	case string:
		return v == "full" || v == "all"
	case ModeSet:
		return v.All()
	default:
		return false
	}
}

// HasPaidPlan reports whether plan is a paid catalog plan. Subscription
// status is not considered here.
func HasPaidPlan(plan string) bool {
	switch Plan(plan) {
	case PlanPro, PlanFounder:
		return true
	default:
		return false
	}
}

// IsModeAllowed reports whether plan may generate ideas in mode.
func IsModeAllowed(plan, mode string) bool {
	return GetPlanFeatures(plan).AllowedIdeaModes.Contains(IdeaMode(mode))
}

// PlanDisplayInfo is the public projection of a catalog row.
type PlanDisplayInfo struct {
	ID                Plan         `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	MonthlyPriceCents int64        `json:"monthly_price_cents"`
	YearlyPriceCents  int64        `json:"yearly_price_cents"`
	IsPaid            bool         `json:"is_paid"`
	Features          PlanFeatures `json:"features"`
}

// GetPlanDisplayInfo projects the catalog row for plan. Unknown plans get
// the free row.
func GetPlanDisplayInfo(plan string) PlanDisplayInfo {
	def := Definition(plan)
	return PlanDisplayInfo{
		ID:                def.ID,
		Name:              def.Name,
		Description:       def.Description,
		MonthlyPriceCents: def.MonthlyPriceCents,
		YearlyPriceCents:  def.YearlyPriceCents,
		IsPaid:            HasPaidPlan(string(def.ID)),
		Features:          def.Features,
	}
}
