package truth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// InferencePolicy maps a skill to the terms that may be legitimately inferred
// from possessing it. Keys and values are matched case-insensitively.
type InferencePolicy map[string][]string

// DefaultInferencePolicy returns the built-in seed table. An enhanced resume
// may claim a related term only when the seed skill appears in the original.
func DefaultInferencePolicy() InferencePolicy {
	return InferencePolicy{
		"java": {
			"backend development",
			"server-side programming",
			"object-oriented programming",
			"jvm",
			"spring",
		},
		"javascript": {
			"web development",
			"frontend development",
			"node.js",
			"es6",
		},
		"react": {
			"frontend development",
			"user interface development",
			"component-based architecture",
			"single-page applications",
		},
		"python": {
			"data science",
			"scripting",
			"automation",
			"machine learning basics",
		},
		"aws": {
			"cloud computing",
			"cloud infrastructure",
			"scalable systems",
			"devops",
		},
		"docker": {
			"containerization",
			"container orchestration",
			"microservices deployment",
		},
		"sql": {
			"database design",
			"data modeling",
			"query optimization",
		},
		"go": {
			"backend development",
			"concurrent programming",
			"microservices",
		},
	}
}

// LoadInferencePolicy builds the effective policy: the default seed table,
// optionally replaced by a JSON table file, then extended by inline extras.
// The table file format is a JSON object of skill -> related terms.
func LoadInferencePolicy(tableFile string, extra map[string][]string) (InferencePolicy, error) {
	policy := DefaultInferencePolicy()

	if tableFile != "" {
		data, err := os.ReadFile(tableFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read inference table %s: %w", tableFile, err)
		}
		var loaded map[string][]string
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse inference table %s: %w", tableFile, err)
		}
		policy = make(InferencePolicy, len(loaded))
		for skill, terms := range loaded {
			policy[strings.ToLower(skill)] = terms
		}
	}

	for skill, terms := range extra {
		key := strings.ToLower(skill)
		policy[key] = append(policy[key], terms...)
	}

	return policy, nil
}

// relatedTerms returns the lowercased inferable terms for a skill
func (p InferencePolicy) relatedTerms(skill string) []string {
	terms := p[strings.ToLower(strings.TrimSpace(skill))]
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(t))
	}
	return out
}
