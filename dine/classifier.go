package dine

import "strings"

// QueryIntent is the result of routing a free-text question.
type QueryIntent int

const (
	IntentConversational QueryIntent = iota
	IntentFactual
)

func (i QueryIntent) String() string {
	if i == IntentFactual {
		return "factual"
	}
	return "conversational"
}

// factualKeywords is frozen; adding cues changes which provider's answer is
// treated as authoritative, so any edit needs a matching review of the
// supersession behavior in Conversation.Send.
var factualKeywords = []string{
	"hours",
	"open",
	"close",
	"menu",
	"reservation",
	"phone",
	"address",
	"dietary",
	"vegetarian",
	"vegan",
	"gluten",
}

// Classify routes a question by lexical cues: any case-insensitive keyword
// hit makes it factual, otherwise it is conversational. Pure, no error path.
//
// A question carrying both kinds of cues is routed factual, which lets the
// facts answer supersede an already-successful chat answer even though facts
// is otherwise only a last resort. That asymmetry is inherited behavior and
// deliberately left as-is.
func Classify(question string) QueryIntent {
	q := strings.ToLower(question)
	for _, kw := range factualKeywords {
		if strings.Contains(q, kw) {
			return IntentFactual
		}
	}
	return IntentConversational
}
