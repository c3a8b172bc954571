package chat

import "testing"

func TestWantsHuman(t *testing.T) {
	positives := []string{
		"I want to talk to a human",
		"can i speak to SUPPORT?",
		"get me a real person",
		"please escalate this",
		"you're not a bot are you? I need an agent",
		"how do I contact you",
	}
	for _, msg := range positives {
		if !WantsHuman(msg) {
			t.Errorf("expected %q to trigger handoff", msg)
		}
	}

	negatives := []string{
		"how much is a website?",
		"do you build mobile apps",
		"what stack do you use",
		"",
	}
	for _, msg := range negatives {
		if WantsHuman(msg) {
			t.Errorf("expected %q not to trigger handoff", msg)
		}
	}
}

func TestApplyHandoffOverrideForcesFlag(t *testing.T) {
	result := ApplyHandoffOverride(CompletionResult{
		Response:        "We offer three pricing tiers.",
		ReadyForHandoff: false,
	}, "let me talk to a manager")

	if !result.ReadyForHandoff {
		t.Error("expected handoff forced by keyword")
	}
	if result.Response != handoffResponse {
		t.Errorf("expected canned response, got %q", result.Response)
	}
}

func TestApplyHandoffOverrideKeepsAcknowledgment(t *testing.T) {
	original := "Absolutely, our team will reach out shortly."
	result := ApplyHandoffOverride(CompletionResult{Response: original}, "talk to someone on your team")

	if !result.ReadyForHandoff {
		t.Error("expected handoff forced")
	}
	if result.Response != original {
		t.Errorf("expected acknowledging reply kept, got %q", result.Response)
	}
}

func TestApplyHandoffOverrideNoKeyword(t *testing.T) {
	in := CompletionResult{Response: "Here are our prices.", ReadyForHandoff: true}
	out := ApplyHandoffOverride(in, "show me the prices")
	if out != in {
		t.Errorf("expected passthrough without keywords, got %+v", out)
	}
}
