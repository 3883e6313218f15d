package ats

import (
	"strings"
	"testing"

	"resumefit/internal/types"
)

func strongResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{
			Name:  "Jordan Reyes",
			Email: "jordan@example.com",
			Phone: "555-0100",
		},
		Summary: "Backend engineer with five years of experience building resilient APIs and data pipelines.",
		Experience: []types.Experience{
			{
				Company:   "Acme Corp",
				Role:      "Software Engineer",
				StartDate: "2020-01",
				EndDate:   "2023-06",
				BulletPoints: []string{
					"Reduced API latency by 40% through query optimization",
					"Developed internal tooling adopted by 6 teams",
				},
			},
		},
		Skills: []string{"Go", "SQL", "PostgreSQL", "Docker", "Kubernetes"},
		Education: []types.Education{
			{Institution: "State University", Degree: "BSc Computer Science"},
		},
	}
}

func TestScoreResumePerfectScore(t *testing.T) {
	result := ScoreResume(strongResume())

	if result.Score != 100 {
		t.Errorf("score = %d, want 100 (warnings: %v)", result.Score, result.Warnings)
	}
	if !result.IsCompliant {
		t.Errorf("strong resume must be compliant: errors=%v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestScoreResumeDeterminism(t *testing.T) {
	first := ScoreResume(strongResume())
	second := ScoreResume(strongResume())
	if first.Score != second.Score || first.IsCompliant != second.IsCompliant {
		t.Error("scoring must be deterministic")
	}
}

func TestScoreResumeContactErrors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		resume := strongResume()
		resume.PersonalInfo.Name = ""
		result := ScoreResume(resume)

		if result.IsCompliant {
			t.Error("missing name is an error and must fail compliance")
		}
		if result.Score != 90 {
			t.Errorf("score = %d, want 90", result.Score)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		resume := strongResume()
		resume.PersonalInfo.Email = ""
		result := ScoreResume(resume)

		if result.IsCompliant {
			t.Error("missing email is an error and must fail compliance even above the threshold")
		}
		if result.Score != 95 {
			t.Errorf("score = %d, want 95", result.Score)
		}
	})

	t.Run("malformed email is a warning", func(t *testing.T) {
		resume := strongResume()
		resume.PersonalInfo.Email = "not-an-email"
		result := ScoreResume(resume)

		if len(result.Errors) != 0 {
			t.Errorf("malformed email must not be an error: %v", result.Errors)
		}
		if result.Score != 98 {
			t.Errorf("score = %d, want 98", result.Score)
		}
		if !result.IsCompliant {
			t.Error("warnings alone must not fail compliance")
		}
	})

	t.Run("missing phone is a warning", func(t *testing.T) {
		resume := strongResume()
		resume.PersonalInfo.Phone = ""
		result := ScoreResume(resume)

		if len(result.Errors) != 0 {
			t.Errorf("missing phone must not be an error: %v", result.Errors)
		}
		if result.Score != 97 {
			t.Errorf("score = %d, want 97", result.Score)
		}
	})
}

func TestScoreResumeSummaryBuckets(t *testing.T) {
	t.Run("missing summary", func(t *testing.T) {
		resume := strongResume()
		resume.Summary = ""
		result := ScoreResume(resume)
		if result.Score != 90 {
			t.Errorf("score = %d, want 90", result.Score)
		}
	})

	t.Run("short summary", func(t *testing.T) {
		resume := strongResume()
		resume.Summary = "Engineer."
		result := ScoreResume(resume)
		if result.Score != 95 {
			t.Errorf("score = %d, want 95", result.Score)
		}
	})
}

func TestScoreResumeExperience(t *testing.T) {
	t.Run("no experience is an error", func(t *testing.T) {
		resume := strongResume()
		resume.Experience = nil
		result := ScoreResume(resume)

		if result.IsCompliant {
			t.Error("resume without experience must fail compliance")
		}
		if len(result.Errors) == 0 {
			t.Error("expected an error for missing experience")
		}
		// Both the entry bucket and the bullet bucket are forfeited
		if result.Score != 60 {
			t.Errorf("score = %d, want 60", result.Score)
		}
	})

	t.Run("missing company", func(t *testing.T) {
		resume := strongResume()
		resume.Experience[0].Company = ""
		result := ScoreResume(resume)

		if result.IsCompliant {
			t.Error("missing company must fail compliance")
		}
		if result.Score != 95 {
			t.Errorf("score = %d, want 95", result.Score)
		}
	})

	t.Run("non-standard dates warn", func(t *testing.T) {
		resume := strongResume()
		resume.Experience[0].StartDate = "2020/01"
		result := ScoreResume(resume)

		if len(result.Errors) != 0 {
			t.Errorf("bad dates must not be errors: %v", result.Errors)
		}
		if result.Score != 98 {
			t.Errorf("score = %d, want 98", result.Score)
		}
	})

	t.Run("verbal date formats accepted", func(t *testing.T) {
		resume := strongResume()
		resume.Experience[0].StartDate = "January 2020"
		resume.Experience[0].EndDate = "Present"
		result := ScoreResume(resume)
		if result.Score != 100 {
			t.Errorf("score = %d, want 100 (warnings: %v)", result.Score, result.Warnings)
		}
	})
}

func TestScoreResumeBulletQuality(t *testing.T) {
	t.Run("weak bullets lose quality points", func(t *testing.T) {
		resume := strongResume()
		resume.Experience[0].BulletPoints = []string{
			"Worked on web applications",
			"Responsible for internal tooling",
		}
		result := ScoreResume(resume)

		// No metrics and no action verbs: the two 5-point bonuses are lost
		if result.Score != 90 {
			t.Errorf("score = %d, want 90", result.Score)
		}

		joined := strings.Join(result.Warnings, " ")
		if !strings.Contains(joined, "quantify impact") {
			t.Errorf("expected a metrics warning: %v", result.Warnings)
		}
		if !strings.Contains(joined, "action verbs") {
			t.Errorf("expected an action-verb warning: %v", result.Warnings)
		}
	})

	t.Run("no bullets at all", func(t *testing.T) {
		resume := strongResume()
		resume.Experience[0].BulletPoints = nil
		result := ScoreResume(resume)

		// The whole 20-point bullet bucket is forfeited
		if result.Score != 80 {
			t.Errorf("score = %d, want 80", result.Score)
		}
	})
}

func TestScoreResumeSkillsBuckets(t *testing.T) {
	t.Run("no skills", func(t *testing.T) {
		resume := strongResume()
		resume.Skills = nil
		result := ScoreResume(resume)
		if result.Score != 80 {
			t.Errorf("score = %d, want 80", result.Score)
		}
	})

	t.Run("few skills", func(t *testing.T) {
		resume := strongResume()
		resume.Skills = []string{"Go", "SQL"}
		result := ScoreResume(resume)
		if result.Score != 90 {
			t.Errorf("score = %d, want 90", result.Score)
		}
	})
}

func TestScoreResumeEducationBucket(t *testing.T) {
	resume := strongResume()
	resume.Education = nil
	result := ScoreResume(resume)
	if result.Score != 90 {
		t.Errorf("score = %d, want 90", result.Score)
	}
	if !result.IsCompliant {
		t.Error("missing education is a warning, not a compliance failure")
	}
}

func TestScoreResumeEmptyResume(t *testing.T) {
	result := ScoreResume(types.Resume{})

	if result.IsCompliant {
		t.Error("empty resume must not be compliant")
	}
	if result.Score >= compliantThreshold {
		t.Errorf("score = %d, expected well below the threshold", result.Score)
	}
	if len(result.Errors) == 0 {
		t.Error("expected errors for missing name, email, and experience")
	}
}
