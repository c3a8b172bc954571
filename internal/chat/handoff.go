package chat

import "strings"

// Phrases that mean the user wants a person, not the AI. Containment check
// over the lower-cased utterance.
var handoffKeywords = []string{
	"human",
	"admin",
	"support",
	"person",
	"agent",
	"manager",
	"expert",
	"specialist",
	"team",
	"help desk",
	"escalate",
	"talk to",
	"speak to",
	"chat with",
	"connect with",
	"contact",
	"real person",
	"human agent",
	"customer service",
	"technical support",
	"not a bot",
	"live agent",
	"representative",
}

// handoffResponse replaces the model's reply when the keyword detector fires
// but the model's own text doesn't acknowledge the hand-off.
const handoffResponse = "Of course — I can connect you with the KiWA Labs team directly. How would you like us to reach you?"

// WantsHuman classifies a raw user utterance: true when any hand-off keyword
// appears in it.
func WantsHuman(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, keyword := range handoffKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// ApplyHandoffOverride combines the completion service's own classification
// with the keyword detector. The detector is a hard override: when it fires,
// ReadyForHandoff is forced true no matter what the service said, and the
// displayed response is replaced with the canned hand-off message unless the
// model's text already indicates one.
func ApplyHandoffOverride(result CompletionResult, userMessage string) CompletionResult {
	if !WantsHuman(userMessage) {
		return result
	}
	result.ReadyForHandoff = true
	if !mentionsHandoff(result.Response) {
		result.Response = handoffResponse
	}
	return result
}

func mentionsHandoff(response string) bool {
	lowered := strings.ToLower(response)
	for _, phrase := range []string{"connect you", "our team will", "reach out", "hand you over", "with the team"} {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
