// Package jobdesc extracts structured hiring signals from free-form job
// description text. Parsing is pure and deterministic: the same text always
// yields the same ParsedJobDescription.
package jobdesc

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resumefit/internal/types"
)

// knownTechnologies is the vocabulary scanned for keyword extraction. Matches
// are case-insensitive but reported in canonical casing.
var knownTechnologies = []string{
	"Go", "Java", "Python", "JavaScript", "TypeScript", "C++", "C#", "Rust",
	"Ruby", "PHP", "Kotlin", "Swift", "Scala", "SQL", "NoSQL",
	"React", "Angular", "Vue", "Node.js", "Spring", "Django", "Flask",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Kafka",
	"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform", "Ansible",
	"Git", "CI/CD", "Jenkins", "GraphQL", "REST", "gRPC", "Linux",
	"Agile", "Scrum", "TDD", "Microservices", "DevOps",
}

var (
	requiredSectionPattern  = regexp.MustCompile(`(?i)(requirements?|qualifications?|must.have|what you.ll need)\s*:?`)
	preferredSectionPattern = regexp.MustCompile(`(?i)(preferred|nice.to.have|bonus|plus|desirable)\s*:?`)
	yearsPattern            = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?`)
	bulletPattern           = regexp.MustCompile(`^\s*[-*•·]\s*`)
)

// Parse extracts keywords, skill requirements, experience level, and the raw
// requirement lines from a job description.
func Parse(text string) types.ParsedJobDescription {
	parsed := types.ParsedJobDescription{
		Keywords:        []string{},
		RequiredSkills:  []string{},
		PreferredSkills: []string{},
		Requirements:    []string{},
	}
	if strings.TrimSpace(text) == "" {
		return parsed
	}

	lower := strings.ToLower(text)

	for _, tech := range knownTechnologies {
		if containsTechnology(lower, strings.ToLower(tech)) {
			parsed.Keywords = append(parsed.Keywords, tech)
		}
	}
	sort.Strings(parsed.Keywords)

	parsed.ExperienceLevel = detectExperienceLevel(lower)

	section := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case requiredSectionPattern.MatchString(trimmed) && len(trimmed) < 60:
			section = "required"
			continue
		case preferredSectionPattern.MatchString(trimmed) && len(trimmed) < 60:
			section = "preferred"
			continue
		}

		if !bulletPattern.MatchString(line) {
			continue
		}
		item := bulletPattern.ReplaceAllString(trimmed, "")

		switch section {
		case "required":
			parsed.Requirements = append(parsed.Requirements, item)
			parsed.RequiredSkills = append(parsed.RequiredSkills, technologiesIn(item)...)
		case "preferred":
			parsed.PreferredSkills = append(parsed.PreferredSkills, technologiesIn(item)...)
		}
	}

	parsed.RequiredSkills = dedupe(parsed.RequiredSkills)
	parsed.PreferredSkills = dedupe(parsed.PreferredSkills)

	// Without labeled sections, treat every detected keyword as required so
	// downstream matching still has something to work with
	if len(parsed.RequiredSkills) == 0 && section == "" {
		parsed.RequiredSkills = append(parsed.RequiredSkills, parsed.Keywords...)
	}

	return parsed
}

// containsTechnology matches a technology name on word boundaries so "go"
// does not match inside "google"
func containsTechnology(haystack, tech string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], tech)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(tech)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// technologiesIn returns the known technologies mentioned in one line
func technologiesIn(line string) []string {
	lower := strings.ToLower(line)
	var found []string
	for _, tech := range knownTechnologies {
		if containsTechnology(lower, strings.ToLower(tech)) {
			found = append(found, tech)
		}
	}
	return found
}

// detectExperienceLevel infers seniority from title words or year counts
func detectExperienceLevel(lower string) string {
	switch {
	case strings.Contains(lower, "principal") || strings.Contains(lower, "staff engineer"):
		return "principal"
	case strings.Contains(lower, "senior") || strings.Contains(lower, "sr."):
		return "senior"
	case strings.Contains(lower, "junior") || strings.Contains(lower, "entry level") || strings.Contains(lower, "entry-level"):
		return "junior"
	}

	if m := yearsPattern.FindStringSubmatch(lower); m != nil {
		years, err := strconv.Atoi(m[1])
		if err == nil {
			switch {
			case years >= 8:
				return "principal"
			case years >= 5:
				return "senior"
			case years >= 2:
				return "mid"
			default:
				return "junior"
			}
		}
	}

	return ""
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
