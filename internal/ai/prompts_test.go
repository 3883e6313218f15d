package ai

import (
	"strings"
	"testing"

	"resumefit/internal/types"
)

func sampleResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{
			Name:  "Jordan Reyes",
			Email: "jordan@example.com",
		},
		Summary: "Backend engineer with five years of experience building APIs.",
		Experience: []types.Experience{
			{
				Company:   "Acme Corp",
				Role:      "Software Engineer",
				StartDate: "2020-01",
				EndDate:   "2023-06",
				BulletPoints: []string{
					"Worked on web applications using JavaScript",
					"Reduced API latency by 40% through query optimization",
				},
			},
		},
		Skills: []string{"JavaScript", "SQL", "Java"},
		Education: []types.Education{
			{Institution: "State University", Degree: "BSc Computer Science"},
		},
	}
}

func sampleJobInfo() types.ParsedJobDescription {
	return types.ParsedJobDescription{
		Keywords:       []string{"react", "typescript", "javascript"},
		RequiredSkills: []string{"react", "javascript"},
		PreferredSkills: []string{
			"typescript",
		},
		ExperienceLevel: "mid",
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{strings.Repeat("x", 400), 100},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestTruncatePromptShortTextUnchanged(t *testing.T) {
	text := "short prompt."
	if got := TruncatePrompt(text, 100); got != text {
		t.Errorf("text within budget must be returned unchanged, got %q", got)
	}
	if strings.Contains(TruncatePrompt(text, 100), truncationMarker[1:]) {
		t.Error("no marker should be appended when nothing is cut")
	}
}

func TestTruncatePromptZeroBudget(t *testing.T) {
	if got := TruncatePrompt("anything", 0); got != truncationMarker {
		t.Errorf("zero budget should yield only the marker, got %q", got)
	}
}

func TestTruncatePromptCutsAtSentenceBoundary(t *testing.T) {
	// Budget of 10 tokens = 40 chars; the period at index 35 gives a
	// boundary at 36, inside the 80% window (>= 32).
	text := strings.Repeat("a", 35) + "." + strings.Repeat("b", 20)
	got := TruncatePrompt(text, 10)

	want := text[:36] + truncationMarker
	if got != want {
		t.Errorf("TruncatePrompt = %q, want %q", got, want)
	}
}

func TestTruncatePromptHardCutWhenBoundaryTooEarly(t *testing.T) {
	// The only sentence boundary is near the start, outside the 80%
	// window, so the text is cut hard at the length limit.
	text := "Hi." + strings.Repeat("x", 60)
	got := TruncatePrompt(text, 10)

	want := text[:40] + truncationMarker
	if got != want {
		t.Errorf("TruncatePrompt = %q, want %q", got, want)
	}
}

func TestTruncatePromptTrimsTrailingWhitespace(t *testing.T) {
	// No boundary characters at all; the hard cut lands on a space,
	// which must be trimmed before the marker.
	text := strings.Repeat("x", 39) + " " + strings.Repeat("y", 20)
	got := TruncatePrompt(text, 10)

	want := strings.Repeat("x", 39) + truncationMarker
	if got != want {
		t.Errorf("TruncatePrompt = %q, want %q", got, want)
	}
}

func TestTruncatePromptStaysWithinBudget(t *testing.T) {
	text := strings.Repeat("word and more text. ", 50)
	maxTokens := 30
	got := TruncatePrompt(text, maxTokens)

	body := strings.TrimSuffix(got, truncationMarker)
	if len(body) > maxTokens*4 {
		t.Errorf("truncated body is %d chars, budget is %d", len(body), maxTokens*4)
	}
}

func TestSystemPrompt(t *testing.T) {
	builder := NewBuilder()

	if got := builder.SystemPrompt("review"); got != DefaultSystemPrompts.ReviewResume {
		t.Error("review system prompt mismatch")
	}
	if got := builder.SystemPrompt("modify"); got != DefaultSystemPrompts.ModifyResume {
		t.Error("modify system prompt mismatch")
	}
	if got := builder.SystemPrompt("unknown"); got != "" {
		t.Errorf("unknown operation should yield empty prompt, got %q", got)
	}
}

func TestNewBuilderWithPromptsFallsBackPerField(t *testing.T) {
	builder := NewBuilderWithPrompts(
		SystemPrompts{ReviewResume: "custom review instructions"},
		UserPrompts{},
	)

	if got := builder.SystemPrompt("review"); got != "custom review instructions" {
		t.Errorf("custom review prompt not applied, got %q", got)
	}
	if got := builder.SystemPrompt("modify"); got != DefaultSystemPrompts.ModifyResume {
		t.Error("empty modify override must fall back to the default")
	}
}

func TestBuildReviewPrompt(t *testing.T) {
	builder := NewBuilder()
	prompt, err := builder.BuildReviewPrompt(types.ReviewRequest{
		Resume:  sampleResume(),
		JobInfo: sampleJobInfo(),
	})
	if err != nil {
		t.Fatalf("BuildReviewPrompt: %v", err)
	}

	for _, want := range []string{"Jordan Reyes", "Acme Corp", "typescript", "prioritizedActions"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("review prompt missing %q", want)
		}
	}
}

func TestBuildModifyPromptRequiresReview(t *testing.T) {
	builder := NewBuilder()
	_, err := builder.BuildModifyPrompt(types.AIRequest{
		Resume:  sampleResume(),
		JobInfo: sampleJobInfo(),
	})
	if err == nil {
		t.Fatal("expected error when review result is missing")
	}
}

func TestBuildModifyPromptRejectsUnknownMode(t *testing.T) {
	builder := NewBuilder()
	_, err := builder.BuildModifyPrompt(types.AIRequest{
		Resume:       sampleResume(),
		JobInfo:      sampleJobInfo(),
		ReviewResult: &types.ReviewResult{Confidence: 0.8},
		Options:      types.EnhancementOptions{Mode: "experimental"},
	})
	if err == nil {
		t.Fatal("expected error for unknown enhancement mode")
	}
}

func TestBuildModifyPromptModeScoping(t *testing.T) {
	builder := NewBuilder()
	review := &types.ReviewResult{
		Weaknesses: []string{"Bullet points describe duties, not outcomes"},
		Confidence: 0.8,
	}

	tests := []struct {
		mode types.EnhancementMode
		want string
	}{
		{"", "full mode"}, // empty mode defaults to full
		{types.ModeFull, "full mode"},
		{types.ModeBulletPoints, "bullet-point mode"},
		{types.ModeSkills, "skills mode"},
		{types.ModeSummary, "summary mode"},
	}

	for _, tt := range tests {
		prompt, err := builder.BuildModifyPrompt(types.AIRequest{
			Resume:       sampleResume(),
			JobInfo:      sampleJobInfo(),
			ReviewResult: review,
			Options:      types.EnhancementOptions{Mode: tt.mode},
		})
		if err != nil {
			t.Fatalf("mode %q: %v", tt.mode, err)
		}
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("mode %q: prompt missing %q", tt.mode, tt.want)
		}
		if !strings.Contains(prompt, "duties, not outcomes") {
			t.Errorf("mode %q: prompt missing review findings", tt.mode)
		}
	}
}
