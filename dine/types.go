package dine

// QueryKind names a cacheable feature type. Each kind is its own cache
// namespace; nothing invalidates across kinds.
type QueryKind string

const (
	KindWhyThisTable      QueryKind = "why-this-table"
	KindStarterInvite     QueryKind = "table-starter-invite"
	KindPlanDraftInvite   QueryKind = "plan-copilot:draft-invite"
	KindPlanSuggestTimes  QueryKind = "plan-copilot:suggest-times"
	KindPlanGroupFriendly QueryKind = "plan-copilot:make-group-friendly"
)

// PlanAction selects one plan-copilot behavior.
type PlanAction string

const (
	PlanDraftInvite   PlanAction = "draft-invite"
	PlanSuggestTimes  PlanAction = "suggest-times"
	PlanGroupFriendly PlanAction = "make-group-friendly"
)

func (a PlanAction) kind() QueryKind {
	switch a {
	case PlanSuggestTimes:
		return KindPlanSuggestTimes
	case PlanGroupFriendly:
		return KindPlanGroupFriendly
	default:
		return KindPlanDraftInvite
	}
}

// GeoPoint is an optional device location forwarded to the facts provider.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// RestaurantSnapshot is the read-only view of a restaurant the UI already
// holds when it asks for AI copy. ID is the stable entity id used for cache
// and conversation partitioning; every other field may be empty and is then
// simply omitted from prompts.
type RestaurantSnapshot struct {
	ID        string
	Name      string
	Cuisine   string // primary category
	PriceTier string // "$", "$$", ...
	Rating    float64
	Location  string   // formatted address
	Ambience  []string // attribute flags: lively, casual, romantic, ...
}

// TasteProfile captures the diner's onboarding preferences used by the
// why-this-table feature. A nil profile means preferences were never set.
type TasteProfile struct {
	TopCuisines []string
	BudgetTiers []string
}

// PlanDraft is the current state of an in-progress plan, as relevant to the
// plan-copilot actions.
type PlanDraft struct {
	Vibe string // empty until the diner picks one
}
