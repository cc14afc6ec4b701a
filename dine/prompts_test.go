package dine

import (
	"strings"
	"testing"
)

func TestSystemPromptIncludesKnownAttributes(t *testing.T) {
	got := systemPromptFor(testRest)
	for _, want := range []string{"Lucali", "Italian", "$$", "4.8", "575 Henry St, Brooklyn"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q: %s", want, got)
		}
	}
}

func TestSystemPromptOmitsMissingAttributes(t *testing.T) {
	got := systemPromptFor(RestaurantSnapshot{ID: "r1", Name: "Lucali"})

	for _, banned := range []string{"Cuisine", "Price", "Rating", "Location"} {
		if strings.Contains(got, banned) {
			t.Errorf("prompt must omit absent attribute %s: %s", banned, got)
		}
	}
	// No placeholders either.
	for _, banned := range []string{"<", "unknown", "N/A", "0.0"} {
		if strings.Contains(got, banned) {
			t.Errorf("prompt leaks placeholder %q: %s", banned, got)
		}
	}
}

func TestFactsQueryReformulation(t *testing.T) {
	if got := factsQueryFor(testRest, "what are the hours?"); got != "About Lucali: what are the hours?" {
		t.Fatalf("got %q", got)
	}
	if got := factsQueryFor(RestaurantSnapshot{}, "hours?"); got != "About this restaurant: hours?" {
		t.Fatalf("nameless fallback wrong: %q", got)
	}
}

func TestWhyThisTablePromptMentionsTaste(t *testing.T) {
	taste := &TasteProfile{TopCuisines: []string{"Italian", "Thai"}, BudgetTiers: []string{"$$"}}
	got := whyThisTablePrompt(taste)
	if !strings.Contains(got, "Italian, Thai") || !strings.Contains(got, "$$") {
		t.Fatalf("prompt missing taste context: %s", got)
	}
	if plain := whyThisTablePrompt(nil); strings.Contains(plain, "For context") {
		t.Fatalf("nil profile must not add context: %s", plain)
	}
}

func TestPlanCopilotPromptVibe(t *testing.T) {
	with := planCopilotPrompt(PlanGroupFriendly, PlanDraft{Vibe: "cozy"})
	if !strings.Contains(with, "cozy") {
		t.Fatalf("vibe missing from prompt: %s", with)
	}
	without := planCopilotPrompt(PlanGroupFriendly, PlanDraft{})
	if strings.Contains(without, "vibe") && strings.Contains(without, "cozy") {
		t.Fatalf("unexpected vibe in prompt: %s", without)
	}
}
