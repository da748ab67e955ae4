package services

import (
	"strings"
	"testing"

	"elev8ai/assessment-api/internal/models"
)

func TestBuildChatContextNoHistory(t *testing.T) {
	pb := NewPromptBuilder()

	got := pb.BuildChatContext(nil, "what is my score?")
	want := "Current question: what is my score?"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildChatContextRendersTurnsInOrder(t *testing.T) {
	pb := NewPromptBuilder()
	history := models.ChatTurns{
		{Question: "first", Answer: "one"},
		{Question: "second", Answer: "two"},
	}

	got := pb.BuildChatContext(history, "third?")

	lines := strings.Split(got, "\n")
	want := []string{
		"Previous conversation history:",
		"Q: first",
		"A: one",
		"Q: second",
		"A: two",
		"Current question: third?",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestBuildChatContextKeepsLastFiveTurns(t *testing.T) {
	pb := NewPromptBuilder()
	var history models.ChatTurns
	for _, q := range []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"} {
		history = append(history, models.ChatTurn{Question: q, Answer: "a"})
	}

	got := pb.BuildChatContext(history, "now")

	if strings.Contains(got, "Q: q2") {
		t.Fatalf("expected older turns to be dropped, got %q", got)
	}
	if !strings.Contains(got, "Q: q3") || !strings.Contains(got, "Q: q7") {
		t.Fatalf("expected the last five turns, got %q", got)
	}
}

func TestBuildChatPromptTruncatesSectionsFromTheFront(t *testing.T) {
	pb := NewPromptBuilder()

	matrix := strings.Repeat("x", 6000) + "MATRIX_TAIL"
	chatContext := strings.Repeat("y", 6000) + "CONTEXT_TAIL"

	prompt := pb.BuildChatPrompt("a@x.com", "q", chatContext, matrix)

	if !strings.Contains(prompt, "MATRIX_TAIL") || !strings.Contains(prompt, "CONTEXT_TAIL") {
		t.Fatalf("expected trailing section content to survive truncation")
	}
	if strings.Contains(prompt, strings.Repeat("x", 5500)) {
		t.Fatalf("expected matrix head to be truncated")
	}
}

func TestBuildChatPromptHardCap(t *testing.T) {
	pb := NewPromptBuilder()

	question := strings.Repeat("q", 30000)
	prompt := pb.BuildChatPrompt("a@x.com", question, "ctx", "matrix")

	if len(prompt) > maxPromptLength {
		t.Fatalf("prompt length %d exceeds cap %d", len(prompt), maxPromptLength)
	}
	if !strings.HasSuffix(prompt, truncationMarker) {
		t.Fatalf("expected prompt to end with truncation marker, got %q", prompt[len(prompt)-40:])
	}
}

func TestBuildChatPromptShortInputUntouched(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildChatPrompt("a@x.com", "short question", "ctx", "matrix")

	if strings.Contains(prompt, truncationMarker) {
		t.Fatalf("expected no truncation marker for short prompt")
	}
	if !strings.Contains(prompt, "User Email: a@x.com") {
		t.Fatalf("expected email header in prompt")
	}
	if !strings.Contains(prompt, "short question") {
		t.Fatalf("expected question in prompt")
	}
}

func TestBuildAssessmentPromptEmbedsInputs(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildAssessmentPrompt(`{"areas":[]}`, "P3", "P4")

	if !strings.Contains(prompt, `<<<{"areas":[]}>>>`) {
		t.Fatalf("expected matrix embedded in delimiters")
	}
	if !strings.Contains(prompt, "transitioning from P3 to P4") {
		t.Fatalf("expected designation transition in prompt")
	}
	if !strings.Contains(prompt, SearchResultsPlaceholder) {
		t.Fatalf("expected search results placeholder in prompt")
	}
	for _, key := range []string{"summary", "competency_matches", "area_matches", "category_matches", "final_match", "areas_of_improvement"} {
		if !strings.Contains(prompt, key) {
			t.Fatalf("expected key %q in prompt instructions", key)
		}
	}
}
