package enhance

import (
	"strings"
	"testing"

	"resumefit/internal/types"
)

func fixtureResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{
			Name:     "Jordan Reyes",
			Email:    "jordan@example.com",
			Phone:    "555-0100",
			Location: "Portland, OR",
		},
		Summary: "Engineer with experience in web applications.",
		Experience: []types.Experience{
			{
				Company:   "Acme Corp",
				Role:      "Software Engineer",
				StartDate: "2020-01",
				EndDate:   "2023-06",
				BulletPoints: []string{
					"Worked on web applications using JavaScript",
					"Maintained internal tooling for the platform team",
				},
			},
		},
		Skills: []string{"JavaScript", "SQL", "Java"},
		Education: []types.Education{
			{Institution: "State University", Degree: "BSc Computer Science"},
		},
	}
}

func fixtureJobInfo() types.ParsedJobDescription {
	return types.ParsedJobDescription{
		Keywords:        []string{"react", "typescript", "javascript"},
		RequiredSkills:  []string{"react", "javascript"},
		PreferredSkills: []string{"typescript"},
		ExperienceLevel: "mid",
	}
}

func TestTrackChangesIdenticalResumes(t *testing.T) {
	resume := fixtureResume()
	changes := TrackChanges(resume, resume)
	if len(changes) != 0 {
		t.Errorf("identical resumes must yield no changes, got %v", changes)
	}
}

func TestTrackChangesSingleBullet(t *testing.T) {
	original := fixtureResume()
	enhanced := fixtureResume()
	enhanced.Experience[0].BulletPoints[0] = "Developed web applications using JavaScript"

	changes := TrackChanges(original, enhanced)
	if len(changes) != 1 {
		t.Fatalf("expected exactly 1 change, got %d: %v", len(changes), changes)
	}

	change := changes[0]
	if change.Section != "experience[0].bulletPoints[0]" {
		t.Errorf("section = %q, want experience[0].bulletPoints[0]", change.Section)
	}
	if change.Type != "rewrite" {
		t.Errorf("type = %q, want rewrite", change.Type)
	}
	if change.Old != original.Experience[0].BulletPoints[0] {
		t.Errorf("old value not preserved: %q", change.Old)
	}
	if change.New != enhanced.Experience[0].BulletPoints[0] {
		t.Errorf("new value not captured: %q", change.New)
	}
}

func TestTrackChangesBulletCountMismatch(t *testing.T) {
	original := fixtureResume()
	enhanced := fixtureResume()
	enhanced.Experience[0].BulletPoints = enhanced.Experience[0].BulletPoints[:1]

	changes := TrackChanges(original, enhanced)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change for the dropped bullet, got %d", len(changes))
	}
	if changes[0].New != "" || changes[0].Old == "" {
		t.Errorf("dropped bullet should diff against empty, got %+v", changes[0])
	}
}

func TestTrackChangesSummary(t *testing.T) {
	original := fixtureResume()
	enhanced := fixtureResume()
	enhanced.Summary = "Rewritten summary."

	changes := TrackChanges(original, enhanced)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Section != "summary" {
		t.Errorf("section = %q, want summary", changes[0].Section)
	}
}

func TestGenerateImprovementsPrefersProvided(t *testing.T) {
	provided := []types.Improvement{
		{Section: "summary", Description: "Aligned with the target role", Confidence: 0.9},
	}
	changes := []types.ChangeDetail{
		{Section: "experience[0].bulletPoints[0]", Type: "rewrite"},
	}

	got := GenerateImprovements(provided, changes)
	if len(got) != 1 || got[0].Description != "Aligned with the target role" {
		t.Errorf("provider improvements must win, got %v", got)
	}
}

func TestGenerateImprovementsDerivedFromChanges(t *testing.T) {
	changes := []types.ChangeDetail{
		{Section: "experience[0].bulletPoints[0]", Type: "rewrite"},
		{Section: "summary", Type: "rewrite"},
	}

	got := GenerateImprovements(nil, changes)
	if len(got) != 2 {
		t.Fatalf("expected 2 derived improvements, got %d", len(got))
	}
	for _, imp := range got {
		if imp.Confidence != derivedImprovementConfidence {
			t.Errorf("derived confidence = %v, want %v", imp.Confidence, derivedImprovementConfidence)
		}
	}
}

func TestGenerateKeywordSuggestions(t *testing.T) {
	suggestions := GenerateKeywordSuggestions(fixtureResume(), fixtureJobInfo())

	byKeyword := map[string]types.KeywordSuggestion{}
	for _, s := range suggestions {
		byKeyword[s.Keyword] = s
	}

	// javascript is in the resume: no suggestion
	if _, ok := byKeyword["javascript"]; ok {
		t.Error("present keyword must not be suggested")
	}

	// react is a missing required skill: high importance
	react, ok := byKeyword["react"]
	if !ok {
		t.Fatal("missing required keyword not suggested")
	}
	if react.Importance != "high" {
		t.Errorf("required keyword importance = %q, want high", react.Importance)
	}

	// typescript is missing but only preferred: medium importance
	ts, ok := byKeyword["typescript"]
	if !ok {
		t.Fatal("missing keyword not suggested")
	}
	if ts.Importance != "medium" {
		t.Errorf("non-required keyword importance = %q, want medium", ts.Importance)
	}
}

func TestIdentifyMissingSkills(t *testing.T) {
	missing := IdentifyMissingSkills(fixtureResume(), fixtureJobInfo())
	if len(missing) != 1 || missing[0] != "react" {
		t.Errorf("expected [react], got %v", missing)
	}

	none := IdentifyMissingSkills(fixtureResume(), types.ParsedJobDescription{
		RequiredSkills: []string{"javascript", "sql"},
	})
	if len(none) != 0 {
		t.Errorf("expected no missing skills, got %v", none)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	keywords := []types.KeywordSuggestion{
		{Keyword: "react", Importance: "high"},
		{Keyword: "typescript", Importance: "medium"},
	}

	recommendations := GenerateRecommendations(
		"Reframed the resume around frontend work.",
		[]string{"react"},
		keywords,
		types.ATSScoreDelta{Before: 80, After: 75, Improvement: -5},
	)

	joined := strings.Join(recommendations, "\n")
	for _, want := range []string{
		"Reframed the resume",
		"react",
		"regressed from 80 to 75",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("recommendations missing %q: %v", want, recommendations)
		}
	}

	// Medium keywords do not generate call-outs
	if strings.Contains(joined, "typescript") {
		t.Error("non-required keyword should not be called out")
	}
}

func TestGenerateRecommendationsNoRegressionWarning(t *testing.T) {
	recommendations := GenerateRecommendations("", nil, nil,
		types.ATSScoreDelta{Before: 70, After: 80, Improvement: 10})
	for _, r := range recommendations {
		if strings.Contains(r, "regressed") {
			t.Errorf("unexpected regression warning: %q", r)
		}
	}
}

func TestBuildResult(t *testing.T) {
	original := fixtureResume()
	enhanced := fixtureResume()
	enhanced.Experience[0].BulletPoints[0] = "Developed web applications using JavaScript"

	response := types.AIResponse{
		EnhancedResume: enhanced,
		Reasoning:      "Strengthened the opening bullet.",
		Confidence:     0.85,
	}

	result := BuildResult(original, response, fixtureJobInfo())

	if result.EnhancedResume.Experience[0].BulletPoints[0] != enhanced.Experience[0].BulletPoints[0] {
		t.Error("enhanced resume not carried through")
	}
	if result.ATSScore.Improvement != result.ATSScore.After-result.ATSScore.Before {
		t.Error("ATS delta inconsistent")
	}
	if len(result.Improvements) == 0 {
		t.Error("expected improvements derived from the diff")
	}
	if len(result.MissingSkills) != 1 || result.MissingSkills[0] != "react" {
		t.Errorf("missing skills = %v, want [react]", result.MissingSkills)
	}
}
