package dine

import (
	"fmt"
	"strings"
)

// systemPromptFor builds the restaurant-specific system prompt for the chat
// provider. Missing attributes are omitted entirely, never rendered as
// placeholders.
func systemPromptFor(rest RestaurantSnapshot) string {
	var b strings.Builder
	b.WriteString("You are a friendly dining concierge")
	if rest.Name != "" {
		fmt.Fprintf(&b, " for %s", rest.Name)
	}
	b.WriteString(". Answer briefly and warmly.")
	if rest.Cuisine != "" {
		fmt.Fprintf(&b, " Cuisine: %s.", rest.Cuisine)
	}
	if rest.PriceTier != "" {
		fmt.Fprintf(&b, " Price: %s.", rest.PriceTier)
	}
	if rest.Rating > 0 {
		fmt.Fprintf(&b, " Rating: %.1f.", rest.Rating)
	}
	if rest.Location != "" {
		fmt.Fprintf(&b, " Location: %s.", rest.Location)
	}
	return b.String()
}

// factsQueryFor reformulates a question for the restaurant-facts provider.
func factsQueryFor(rest RestaurantSnapshot, question string) string {
	name := rest.Name
	if name == "" {
		name = "this restaurant"
	}
	return fmt.Sprintf("About %s: %s", name, question)
}

func whyThisTablePrompt(taste *TasteProfile) string {
	q := "In one short, casual sentence: why should I grab a table here?"
	if taste == nil {
		return q
	}
	var hints []string
	if len(taste.TopCuisines) > 0 {
		hints = append(hints, "I'm into "+strings.Join(taste.TopCuisines, ", "))
	}
	if len(taste.BudgetTiers) > 0 {
		hints = append(hints, "my usual budget is "+strings.Join(taste.BudgetTiers, "/"))
	}
	if len(hints) == 0 {
		return q
	}
	return q + " For context: " + strings.Join(hints, "; ") + "."
}

const starterInvitePrompt = "Write one short, upbeat line inviting a friend to try this restaurant with me. No hashtags, no emoji."

func planCopilotPrompt(action PlanAction, draft PlanDraft) string {
	switch action {
	case PlanSuggestTimes:
		return "Suggest a couple of casual times this week for a group dinner here, in one short sentence."
	case PlanGroupFriendly:
		if draft.Vibe != "" {
			return fmt.Sprintf("Rewrite my dinner plan to be easy for a group to join while keeping the %s vibe, in one short sentence.", draft.Vibe)
		}
		return "Rewrite my dinner plan to be easy for a group to join, in one short sentence."
	default:
		return "Draft one short, friendly group invite for dinner at this restaurant. No hashtags, no emoji."
	}
}
