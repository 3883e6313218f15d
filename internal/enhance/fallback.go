package enhance

import (
	"fmt"
	"sort"
	"strings"

	"resumefit/internal/types"
)

// weakOpenings maps weak bullet openers to stronger action verbs. Only the
// opener changes; the rest of the bullet is preserved verbatim so no meaning
// is lost or invented.
var weakOpenings = []struct {
	prefix      string
	replacement string
}{
	{"worked on ", "Developed "},
	{"responsible for ", "Led "},
	{"helped with ", "Contributed to "},
	{"helped ", "Supported "},
	{"was involved in ", "Participated in "},
	{"did ", "Executed "},
	{"made ", "Built "},
}

// FallbackEnhance applies deterministic, meaning-preserving improvements
// without any AI involvement: stronger bullet openers, job-relevant skill
// ordering, and a summary synthesized from existing facts when absent. It
// never adds skills, entries, or claims the original does not contain.
func FallbackEnhance(resume types.Resume, jobInfo types.ParsedJobDescription, opts types.EnhancementOptions) types.EnhancementResult {
	mode := opts.Mode
	if mode == "" {
		mode = types.ModeFull
	}

	enhanced := cloneResume(resume)
	improvements := []types.Improvement{}

	if mode == types.ModeFull || mode == types.ModeBulletPoints {
		improvements = append(improvements, strengthenBullets(&enhanced)...)
	}
	if mode == types.ModeFull || mode == types.ModeSkills {
		if reorderSkills(&enhanced, jobInfo) {
			improvements = append(improvements, types.Improvement{
				Section:     "skills",
				Description: "Reordered skills so job-relevant ones appear first",
				Confidence:  derivedImprovementConfidence,
			})
		}
	}
	if (mode == types.ModeFull || mode == types.ModeSummary) && enhanced.Summary == "" {
		if summary := synthesizeSummary(enhanced); summary != "" {
			enhanced.Summary = summary
			improvements = append(improvements, types.Improvement{
				Section:     "summary",
				Description: "Added a professional summary built from existing experience and skills",
				Confidence:  derivedImprovementConfidence,
			})
		}
	}

	response := types.AIResponse{
		EnhancedResume: enhanced,
		Improvements:   improvements,
		Reasoning:      "Applied rule-based enhancements; no content was generated by an AI provider",
	}
	return BuildResult(resume, response, jobInfo)
}

// strengthenBullets replaces weak bullet openers with action verbs
func strengthenBullets(resume *types.Resume) []types.Improvement {
	improvements := []types.Improvement{}

	for i := range resume.Experience {
		for j, bullet := range resume.Experience[i].BulletPoints {
			lower := strings.ToLower(bullet)
			for _, opening := range weakOpenings {
				if !strings.HasPrefix(lower, opening.prefix) {
					continue
				}
				resume.Experience[i].BulletPoints[j] = opening.replacement + bullet[len(opening.prefix):]
				improvements = append(improvements, types.Improvement{
					Section:     fmt.Sprintf("experience[%d].bulletPoints[%d]", i, j),
					Description: fmt.Sprintf("Replaced weak opener %q with %q", strings.TrimSpace(opening.prefix), strings.TrimSpace(opening.replacement)),
					Confidence:  derivedImprovementConfidence,
				})
				break
			}
		}
	}

	return improvements
}

// reorderSkills moves skills matching job keywords or required skills to the
// front, preserving relative order within each group. Returns whether the
// order changed.
func reorderSkills(resume *types.Resume, jobInfo types.ParsedJobDescription) bool {
	if len(resume.Skills) < 2 {
		return false
	}

	relevant := map[string]bool{}
	for _, kw := range jobInfo.Keywords {
		relevant[strings.ToLower(kw)] = true
	}
	for _, skill := range jobInfo.RequiredSkills {
		relevant[strings.ToLower(skill)] = true
	}
	if len(relevant) == 0 {
		return false
	}

	original := make([]string, len(resume.Skills))
	copy(original, resume.Skills)

	sort.SliceStable(resume.Skills, func(a, b int) bool {
		return relevant[strings.ToLower(resume.Skills[a])] && !relevant[strings.ToLower(resume.Skills[b])]
	})

	for i := range original {
		if original[i] != resume.Skills[i] {
			return true
		}
	}
	return false
}

// synthesizeSummary builds a one-sentence summary from facts already in the
// resume: the most recent role and the leading skills
func synthesizeSummary(resume types.Resume) string {
	if len(resume.Experience) == 0 {
		return ""
	}

	role := resume.Experience[0].Role
	if role == "" {
		return ""
	}

	skills := resume.Skills
	if len(skills) > 3 {
		skills = skills[:3]
	}
	if len(skills) == 0 {
		return fmt.Sprintf("%s with %d position(s) of professional experience.", role, len(resume.Experience))
	}
	return fmt.Sprintf("%s with professional experience in %s.", role, strings.Join(skills, ", "))
}

// cloneResume deep-copies a resume so rule-based edits never mutate the
// caller's document
func cloneResume(r types.Resume) types.Resume {
	out := r

	out.Experience = make([]types.Experience, len(r.Experience))
	copy(out.Experience, r.Experience)
	for i := range out.Experience {
		bullets := make([]string, len(r.Experience[i].BulletPoints))
		copy(bullets, r.Experience[i].BulletPoints)
		out.Experience[i].BulletPoints = bullets
	}

	out.Education = append([]types.Education(nil), r.Education...)
	out.Skills = append([]string(nil), r.Skills...)
	out.Certifications = append([]string(nil), r.Certifications...)
	out.Projects = append([]types.Project(nil), r.Projects...)
	out.Languages = append([]types.Language(nil), r.Languages...)
	out.Awards = append([]string(nil), r.Awards...)

	return out
}
