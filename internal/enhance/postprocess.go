package enhance

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumefit/internal/ats"
	"resumefit/internal/types"
)

// derivedImprovementConfidence is assigned to improvements derived from a
// diff when the provider supplied none
const derivedImprovementConfidence = 0.7

// BuildResult assembles the final EnhancementResult from the provider's
// response. All steps are pure.
func BuildResult(original types.Resume, response types.AIResponse, jobInfo types.ParsedJobDescription) types.EnhancementResult {
	enhanced := response.EnhancedResume
	changes := TrackChanges(original, enhanced)
	improvements := GenerateImprovements(response.Improvements, changes)
	keywords := GenerateKeywordSuggestions(enhanced, jobInfo)
	missing := IdentifyMissingSkills(enhanced, jobInfo)

	before := ats.ScoreResume(original)
	after := ats.ScoreResume(enhanced)
	delta := types.ATSScoreDelta{
		Before:      before.Score,
		After:       after.Score,
		Improvement: after.Score - before.Score,
	}

	return types.EnhancementResult{
		OriginalResume:     original,
		EnhancedResume:     enhanced,
		Improvements:       improvements,
		KeywordSuggestions: keywords,
		MissingSkills:      missing,
		ATSScore:           delta,
		Recommendations:    GenerateRecommendations(response.Reasoning, missing, keywords, delta),
	}
}

// TrackChanges diffs the original and enhanced resumes. Experience arrays
// are compared index-by-index over the overlapping range (enhancement never
// adds or removes entries), plus the summary field. Only content that
// actually differs yields a ChangeDetail.
func TrackChanges(original, enhanced types.Resume) []types.ChangeDetail {
	changes := []types.ChangeDetail{}

	limit := len(original.Experience)
	if len(enhanced.Experience) < limit {
		limit = len(enhanced.Experience)
	}
	for i := 0; i < limit; i++ {
		orig := original.Experience[i]
		enh := enhanced.Experience[i]

		bulletLimit := len(orig.BulletPoints)
		if len(enh.BulletPoints) > bulletLimit {
			bulletLimit = len(enh.BulletPoints)
		}
		for j := 0; j < bulletLimit; j++ {
			var oldBullet, newBullet string
			if j < len(orig.BulletPoints) {
				oldBullet = orig.BulletPoints[j]
			}
			if j < len(enh.BulletPoints) {
				newBullet = enh.BulletPoints[j]
			}
			if oldBullet != newBullet {
				changes = append(changes, types.ChangeDetail{
					Old:     oldBullet,
					New:     newBullet,
					Section: fmt.Sprintf("experience[%d].bulletPoints[%d]", i, j),
					Type:    "rewrite",
				})
			}
		}
	}

	if original.Summary != enhanced.Summary {
		changes = append(changes, types.ChangeDetail{
			Old:     original.Summary,
			New:     enhanced.Summary,
			Section: "summary",
			Type:    "rewrite",
		})
	}

	return changes
}

// GenerateImprovements prefers the provider's own improvement list; when the
// provider supplied none, improvements are derived from the tracked changes
// with a flat default confidence.
func GenerateImprovements(provided []types.Improvement, changes []types.ChangeDetail) []types.Improvement {
	if len(provided) > 0 {
		return provided
	}

	improvements := make([]types.Improvement, 0, len(changes))
	for _, change := range changes {
		improvements = append(improvements, types.Improvement{
			Section:     change.Section,
			Description: fmt.Sprintf("Rewrote %s to better match the job description", change.Section),
			Confidence:  derivedImprovementConfidence,
		})
	}
	return improvements
}

// GenerateKeywordSuggestions flags job keywords absent from the serialized
// enhanced resume; a keyword that is also a required skill is high importance.
func GenerateKeywordSuggestions(enhanced types.Resume, jobInfo types.ParsedJobDescription) []types.KeywordSuggestion {
	serialized, err := json.Marshal(enhanced)
	if err != nil {
		return []types.KeywordSuggestion{}
	}
	haystack := strings.ToLower(string(serialized))

	required := make(map[string]bool, len(jobInfo.RequiredSkills))
	for _, skill := range jobInfo.RequiredSkills {
		required[strings.ToLower(skill)] = true
	}

	suggestions := []types.KeywordSuggestion{}
	for _, keyword := range jobInfo.Keywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			continue
		}
		importance := "medium"
		reason := "Keyword appears in the job description but not in the resume"
		if required[strings.ToLower(keyword)] {
			importance = "high"
			reason = "Required skill missing from the resume"
		}
		suggestions = append(suggestions, types.KeywordSuggestion{
			Keyword:    keyword,
			Importance: importance,
			Reason:     reason,
		})
	}
	return suggestions
}

// IdentifyMissingSkills lists required skills with no case-insensitive
// substring match against the flattened resume skill list
func IdentifyMissingSkills(enhanced types.Resume, jobInfo types.ParsedJobDescription) []string {
	flattened := strings.ToLower(strings.Join(enhanced.Skills, " "))

	missing := []string{}
	for _, skill := range jobInfo.RequiredSkills {
		if !strings.Contains(flattened, strings.ToLower(skill)) {
			missing = append(missing, skill)
		}
	}
	return missing
}

// GenerateRecommendations aggregates provider reasoning, missing-skill and
// high-importance-keyword call-outs, and a regression warning when the ATS
// score dropped
func GenerateRecommendations(reasoning string, missing []string, keywords []types.KeywordSuggestion, delta types.ATSScoreDelta) []string {
	recommendations := []string{}

	if reasoning != "" {
		recommendations = append(recommendations, reasoning)
	}
	if len(missing) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider gaining or highlighting experience with: %s", strings.Join(missing, ", ")))
	}
	for _, kw := range keywords {
		if kw.Importance == "high" {
			recommendations = append(recommendations, fmt.Sprintf(
				"Add the required keyword %q where your experience genuinely supports it", kw.Keyword))
		}
	}
	if delta.Improvement < 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Warning: ATS score regressed from %d to %d; review the enhanced formatting", delta.Before, delta.After))
	}

	return recommendations
}
