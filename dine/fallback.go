package dine

import (
	"fmt"
	"strings"
)

// Deterministic, network-free copy used when every provider path has failed.
// The strings below are product copy; change them only together with the UI
// snapshot tests.

const genericWhyThisTable = "Queued because it looks like your kind of table"

const (
	fallbackGroupFriendlyWithVibe = "Locked in the vibe - now it's easy for the whole crew to say yes."
	fallbackGroupFriendlyNoVibe   = "Kept the plan open and casual so the whole crew can say yes."
	fallbackSuggestTimes          = "How about this week or weekend?"
)

func fallbackStarterInvite(rest RestaurantSnapshot) string {
	return fmt.Sprintf("Want to try %s? Let's make it happen!", rest.Name)
}

func fallbackDraftInvite(rest RestaurantSnapshot) string {
	return fmt.Sprintf("Let's grab %s - who's in?", rest.Name)
}

// ambiencePriority orders which single ambience flag may become a reason.
var ambiencePriority = []string{"lively", "casual", "romantic"}

// fallbackWhyThisTable builds the queued-reason line from the diner's taste
// profile. At most two matched reasons, joined with " + "; no profile or no
// match yields the generic line.
func fallbackWhyThisTable(rest RestaurantSnapshot, taste *TasteProfile) string {
	if taste == nil {
		return genericWhyThisTable
	}

	var reasons []string

	if rest.Cuisine != "" {
		for _, c := range taste.TopCuisines {
			if cuisineOverlap(rest.Cuisine, c) {
				reasons = append(reasons, fmt.Sprintf("%s fits your taste", rest.Cuisine))
				break
			}
		}
	}

	for _, flag := range ambiencePriority {
		if hasAmbience(rest, flag) {
			reasons = append(reasons, fmt.Sprintf("%s vibes", flag))
			break
		}
	}

	if rest.PriceTier != "" {
		for _, tier := range taste.BudgetTiers {
			if strings.EqualFold(tier, rest.PriceTier) {
				reasons = append(reasons, "fits your usual budget")
				break
			}
		}
	}

	if len(reasons) == 0 {
		return genericWhyThisTable
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return fmt.Sprintf("Queued because %s", strings.Join(reasons, " + "))
}

func fallbackGroupFriendly(draft PlanDraft) string {
	if draft.Vibe != "" {
		return fallbackGroupFriendlyWithVibe
	}
	return fallbackGroupFriendlyNoVibe
}

func fallbackPlanCopilot(rest RestaurantSnapshot, action PlanAction, draft PlanDraft) string {
	switch action {
	case PlanSuggestTimes:
		return fallbackSuggestTimes
	case PlanGroupFriendly:
		return fallbackGroupFriendly(draft)
	default:
		return fallbackDraftInvite(rest)
	}
}

// cuisineOverlap matches case-insensitively in either direction, so
// "Italian" overlaps "Northern Italian" and vice versa.
func cuisineOverlap(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func hasAmbience(rest RestaurantSnapshot, flag string) bool {
	for _, f := range rest.Ambience {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
