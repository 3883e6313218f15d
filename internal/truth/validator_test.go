package truth

import (
	"os"
	"path/filepath"
	"testing"

	"resumefit/internal/types"
)

// baseResume returns a fresh fixture per call so tests can mutate copies freely
func baseResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{Name: "Jordan Reyes", Email: "jordan@example.com"},
		Summary:      "Engineer with experience in web applications.",
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
		Skills: []string{"JavaScript", "Java", "Docker"},
		Education: []types.Education{
			{Institution: "State University", Degree: "BSc Computer Science"},
		},
	}
}

func TestValidateIdenticalResumeIsTruthful(t *testing.T) {
	v := NewValidator(nil)
	result := v.Validate(baseResume(), baseResume(), DefaultOptions())

	if !result.IsTruthful {
		t.Errorf("identical resumes must validate: %v", result.Errors)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("expected no findings, got errors=%v warnings=%v", result.Errors, result.Warnings)
	}
}

func TestValidateRejectsAddedExperience(t *testing.T) {
	v := NewValidator(nil)
	enhanced := baseResume()
	enhanced.Experience = append(enhanced.Experience, types.Experience{
		Company: "Fabricated Inc",
		Role:    "Principal Engineer",
	})

	// Added entries are an error at every strictness, with or without inference
	for _, opts := range []Options{
		{AllowInference: true, Strictness: StrictnessLenient},
		{AllowInference: false, Strictness: StrictnessStrict},
		DefaultOptions(),
	} {
		result := v.Validate(baseResume(), enhanced, opts)
		if result.IsTruthful {
			t.Errorf("added experience must always fail (opts %+v)", opts)
		}
	}
}

func TestValidateRejectsIdentityFieldChanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Resume)
	}{
		{"company", func(r *types.Resume) { r.Experience[0].Company = "Better Corp" }},
		{"role", func(r *types.Resume) { r.Experience[0].Role = "Staff Engineer" }},
		{"start date", func(r *types.Resume) { r.Experience[0].StartDate = "2018-01" }},
		{"end date", func(r *types.Resume) { r.Experience[0].EndDate = "2024-01" }},
		{"institution", func(r *types.Resume) { r.Education[0].Institution = "Ivy University" }},
		{"degree", func(r *types.Resume) { r.Education[0].Degree = "PhD Computer Science" }},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := baseResume()
			tt.mutate(&enhanced)
			result := v.Validate(baseResume(), enhanced, Options{AllowInference: true, Strictness: StrictnessLenient})
			if result.IsTruthful {
				t.Errorf("%s change must fail even at the most permissive settings", tt.name)
			}
		})
	}
}

func TestValidateSkillClassification(t *testing.T) {
	tests := []struct {
		name         string
		addedSkill   string
		opts         Options
		wantTruthful bool
		wantWarnings int
	}{
		{
			name:         "inferred skill accepted with inference",
			addedSkill:   "Backend Development", // inferable from Java
			opts:         Options{AllowInference: true, Strictness: StrictnessModerate},
			wantTruthful: true,
		},
		{
			name:         "inferred skill warned at strict",
			addedSkill:   "Backend Development",
			opts:         Options{AllowInference: true, Strictness: StrictnessStrict},
			wantTruthful: true,
			wantWarnings: 1,
		},
		{
			name:         "inferred skill rejected without inference",
			addedSkill:   "Backend Development",
			opts:         Options{AllowInference: false, Strictness: StrictnessModerate},
			wantTruthful: false,
		},
		{
			name:         "unrelated skill always rejected",
			addedSkill:   "Quantum Computing",
			opts:         Options{AllowInference: true, Strictness: StrictnessLenient},
			wantTruthful: false,
		},
		{
			name:         "containerization inferred from docker",
			addedSkill:   "Containerization",
			opts:         Options{AllowInference: true, Strictness: StrictnessModerate},
			wantTruthful: true,
		},
		{
			name:         "kubernetes is not inferable from docker",
			addedSkill:   "Kubernetes",
			opts:         Options{AllowInference: true, Strictness: StrictnessLenient},
			wantTruthful: false,
		},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := baseResume()
			enhanced.Skills = append(enhanced.Skills, tt.addedSkill)

			result := v.Validate(baseResume(), enhanced, tt.opts)
			if result.IsTruthful != tt.wantTruthful {
				t.Errorf("IsTruthful = %v, want %v (errors: %v)",
					result.IsTruthful, tt.wantTruthful, result.Errors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", result.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestValidateSkillReorderingIsAllowed(t *testing.T) {
	v := NewValidator(nil)
	enhanced := baseResume()
	enhanced.Skills = []string{"Docker", "JavaScript", "Java"}

	result := v.Validate(baseResume(), enhanced, DefaultOptions())
	if !result.IsTruthful {
		t.Errorf("reordering skills must pass: %v", result.Errors)
	}
}

func TestValidateBulletMetrics(t *testing.T) {
	rewrite := "Developed web applications using JavaScript, improving load times by 50%"

	tests := []struct {
		name         string
		strictness   Strictness
		wantTruthful bool
		wantWarnings int
	}{
		{"strict rejects new metric", StrictnessStrict, false, 0},
		{"moderate rejects new metric", StrictnessModerate, false, 0},
		{"lenient downgrades to warning", StrictnessLenient, true, 1},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := baseResume()
			enhanced.Experience[0].BulletPoints[0] = rewrite

			result := v.Validate(baseResume(), enhanced, Options{
				AllowInference: true,
				Strictness:     tt.strictness,
			})
			if result.IsTruthful != tt.wantTruthful {
				t.Errorf("IsTruthful = %v, want %v (errors: %v)",
					result.IsTruthful, tt.wantTruthful, result.Errors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", result.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestValidateBulletKeepsExistingMetrics(t *testing.T) {
	original := baseResume()
	original.Experience[0].BulletPoints[0] = "Reduced API latency by 40% through query optimization"

	enhanced := baseResume()
	enhanced.Experience[0].BulletPoints[0] = "Cut API latency by 40% by optimizing hot queries"

	v := NewValidator(nil)
	result := v.Validate(original, enhanced, Options{AllowInference: true, Strictness: StrictnessStrict})
	if !result.IsTruthful {
		t.Errorf("restating an original metric must pass: %v", result.Errors)
	}
}

func TestValidateBulletTechnologyClaims(t *testing.T) {
	tests := []struct {
		name         string
		bullet       string
		opts         Options
		wantTruthful bool
	}{
		{
			name:         "stated technology restated",
			bullet:       "Built web applications with JavaScript for customer portals",
			opts:         Options{AllowInference: true, Strictness: StrictnessStrict},
			wantTruthful: true,
		},
		{
			name:         "inferable technology with inference",
			bullet:       "Built services using Spring for the order pipeline", // inferable from Java
			opts:         Options{AllowInference: true, Strictness: StrictnessModerate},
			wantTruthful: true,
		},
		{
			name:         "inferable technology without inference",
			bullet:       "Built services using Spring for the order pipeline",
			opts:         Options{AllowInference: false, Strictness: StrictnessModerate},
			wantTruthful: false,
		},
		{
			name:         "unsupported technology",
			bullet:       "Deployed workloads to Kubernetes clusters",
			opts:         Options{AllowInference: true, Strictness: StrictnessLenient},
			wantTruthful: false,
		},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := baseResume()
			enhanced.Experience[0].BulletPoints[1] = tt.bullet

			result := v.Validate(baseResume(), enhanced, tt.opts)
			if result.IsTruthful != tt.wantTruthful {
				t.Errorf("IsTruthful = %v, want %v (errors: %v)",
					result.IsTruthful, tt.wantTruthful, result.Errors)
			}
		})
	}
}

func TestValidateSummary(t *testing.T) {
	v := NewValidator(nil)

	t.Run("rewritten summary from stated facts", func(t *testing.T) {
		enhanced := baseResume()
		enhanced.Summary = "Engineer focused on web applications built with JavaScript."
		result := v.Validate(baseResume(), enhanced, DefaultOptions())
		if !result.IsTruthful {
			t.Errorf("supported summary must pass: %v", result.Errors)
		}
	})

	t.Run("summary with unsupported claim", func(t *testing.T) {
		enhanced := baseResume()
		enhanced.Summary = "Engineer specializing in Rust systems programming."
		result := v.Validate(baseResume(), enhanced, DefaultOptions())
		if result.IsTruthful {
			t.Error("unsupported summary claim must fail")
		}
	})

	t.Run("empty summary skipped", func(t *testing.T) {
		enhanced := baseResume()
		enhanced.Summary = ""
		result := v.Validate(baseResume(), enhanced, DefaultOptions())
		if !result.IsTruthful {
			t.Errorf("empty summary must not be validated: %v", result.Errors)
		}
	})
}

func TestNarrowValidators(t *testing.T) {
	v := NewValidator(nil)
	opts := DefaultOptions()

	t.Run("experiences only", func(t *testing.T) {
		bad := baseResume()
		bad.Experience[0].Company = "Other Corp"
		if v.ValidateExperiencesOnly(baseResume(), bad, opts) {
			t.Error("changed company must fail")
		}
		if !v.ValidateExperiencesOnly(baseResume(), baseResume(), opts) {
			t.Error("identical experiences must pass")
		}
	})

	t.Run("skills only", func(t *testing.T) {
		bad := baseResume()
		bad.Skills = append(bad.Skills, "Blockchain")
		if v.ValidateSkillsOnly(baseResume(), bad, opts) {
			t.Error("unrelated skill must fail")
		}
		if !v.ValidateSkillsOnly(baseResume(), baseResume(), opts) {
			t.Error("identical skills must pass")
		}
	})

	t.Run("bullet points only", func(t *testing.T) {
		bad := baseResume()
		bad.Experience[0].BulletPoints[0] = "Achieved 99.99% uptime across all services"
		if v.ValidateBulletPointsOnly(baseResume(), bad, opts) {
			t.Error("fabricated metric must fail")
		}
		if !v.ValidateBulletPointsOnly(baseResume(), baseResume(), opts) {
			t.Error("identical bullets must pass")
		}
	})
}

func TestValidateGeneratesSuggestions(t *testing.T) {
	v := NewValidator(nil)
	enhanced := baseResume()
	enhanced.Skills = append(enhanced.Skills, "Quantum Computing")
	enhanced.Experience[0].BulletPoints[0] = "Developed web applications using JavaScript, saving 30 hours weekly"

	result := v.Validate(baseResume(), enhanced, Options{
		AllowInference:      true,
		Strictness:          StrictnessModerate,
		GenerateSuggestions: true,
	})

	if result.IsTruthful {
		t.Fatal("expected violations")
	}
	if len(result.Suggestions) != len(result.Errors) {
		t.Errorf("expected one suggestion per error, got %d suggestions for %d errors",
			len(result.Suggestions), len(result.Errors))
	}
}

func TestValidateDetailsTrackSections(t *testing.T) {
	v := NewValidator(nil)
	enhanced := baseResume()
	enhanced.Experience[0].BulletPoints[0] = "Developed web applications using JavaScript, improving revenue by 20%"

	result := v.Validate(baseResume(), enhanced, DefaultOptions())
	if result.IsTruthful {
		t.Fatal("expected metric violation")
	}
	if len(result.Details["experience[0].bulletPoints[0]"]) == 0 {
		t.Errorf("expected details keyed by section, got %v", result.Details)
	}
}

func TestLoadInferencePolicy(t *testing.T) {
	t.Run("defaults when no file", func(t *testing.T) {
		policy, err := LoadInferencePolicy("", nil)
		if err != nil {
			t.Fatalf("LoadInferencePolicy: %v", err)
		}
		if len(policy.relatedTerms("java")) == 0 {
			t.Error("seed table missing java entry")
		}
	})

	t.Run("table file replaces seed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "table.json")
		if err := os.WriteFile(path, []byte(`{"Rust": ["systems programming"]}`), 0o644); err != nil {
			t.Fatalf("write table: %v", err)
		}

		policy, err := LoadInferencePolicy(path, nil)
		if err != nil {
			t.Fatalf("LoadInferencePolicy: %v", err)
		}
		if len(policy.relatedTerms("rust")) != 1 {
			t.Error("table file entry not loaded (keys must be case-insensitive)")
		}
		if len(policy.relatedTerms("java")) != 0 {
			t.Error("table file must replace the seed table, not merge with it")
		}
	})

	t.Run("extras merge", func(t *testing.T) {
		policy, err := LoadInferencePolicy("", map[string][]string{
			"Java": {"microservices"},
		})
		if err != nil {
			t.Fatalf("LoadInferencePolicy: %v", err)
		}
		terms := policy.relatedTerms("java")
		found := false
		for _, term := range terms {
			if term == "microservices" {
				found = true
			}
		}
		if !found {
			t.Errorf("extra term not merged: %v", terms)
		}
		if len(terms) < 2 {
			t.Error("extras must extend the seed entry, not replace it")
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := LoadInferencePolicy("/nonexistent/table.json", nil); err == nil {
			t.Error("expected error for missing table file")
		}
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
			t.Fatalf("write table: %v", err)
		}
		if _, err := LoadInferencePolicy(path, nil); err == nil {
			t.Error("expected error for malformed table file")
		}
	})
}

func TestTechnologyTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "sentence-initial verb skipped",
			text: "Developed web applications using JavaScript",
			want: []string{"JavaScript"},
		},
		{
			name: "acronyms detected",
			text: "Optimized SQL queries and AWS costs",
			want: []string{"SQL", "AWS"},
		},
		{
			name: "lowercase text yields nothing",
			text: "improved performance across the stack",
			want: nil,
		},
		{
			name: "new sentence restarts the skip",
			text: "Led the team. Shipped the product on time",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := technologyTokens(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("technologyTokens = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
