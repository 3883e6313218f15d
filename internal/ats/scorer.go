// Package ats scores a resume for applicant-tracking-system compatibility.
// Scoring is pure: the same resume always yields the same score, so before
// and after deltas across an enhancement are meaningful.
package ats

import (
	"fmt"
	"regexp"
	"strings"

	"resumefit/internal/types"
)

// Score is the ATS compatibility verdict for one resume
type Score struct {
	Score       int      `json:"score"`
	IsCompliant bool     `json:"isCompliant"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
}

// compliantThreshold is the minimum score considered ATS-compliant
const compliantThreshold = 70

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	datePattern  = regexp.MustCompile(`(?i)^(\d{4}(-\d{2})?|\w+ \d{4}|present|current)$`)
)

// ScoreResume evaluates a resume on a 0-100 scale. Points are awarded per
// section; errors deduct from the contact and structure buckets, warnings
// explain deductions without failing compliance on their own.
func ScoreResume(resume types.Resume) Score {
	result := Score{Errors: []string{}, Warnings: []string{}}
	score := 0

	// Contact information: 20 points
	contact := 20
	if resume.PersonalInfo.Name == "" {
		result.Errors = append(result.Errors, "missing name in personal info")
		contact -= 10
	}
	if resume.PersonalInfo.Email == "" {
		result.Errors = append(result.Errors, "missing email address")
		contact -= 5
	} else if !emailPattern.MatchString(resume.PersonalInfo.Email) {
		result.Warnings = append(result.Warnings, "email address is not in a standard format")
		contact -= 2
	}
	if resume.PersonalInfo.Phone == "" {
		result.Warnings = append(result.Warnings, "missing phone number")
		contact -= 3
	}
	if contact < 0 {
		contact = 0
	}
	score += contact

	// Summary: 10 points
	switch {
	case resume.Summary == "":
		result.Warnings = append(result.Warnings, "missing professional summary")
	case len(resume.Summary) < 50:
		result.Warnings = append(result.Warnings, "summary is very short")
		score += 5
	default:
		score += 10
	}

	// Experience: 40 points
	if len(resume.Experience) == 0 {
		result.Errors = append(result.Errors, "no experience entries")
	} else {
		expScore := 20
		for i, exp := range resume.Experience {
			if exp.Company == "" || exp.Role == "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("experience[%d] is missing company or role", i))
				expScore -= 5
			}
			if !validDate(exp.StartDate) || !validDate(exp.EndDate) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("experience[%d] has non-standard dates", i))
				expScore -= 2
			}
		}
		if expScore < 0 {
			expScore = 0
		}
		score += expScore
		score += bulletScore(resume.Experience, &result)
	}

	// Skills: 20 points
	switch {
	case len(resume.Skills) == 0:
		result.Warnings = append(result.Warnings, "no skills listed")
	case len(resume.Skills) < 5:
		result.Warnings = append(result.Warnings, "fewer than five skills listed")
		score += 10
	default:
		score += 20
	}

	// Education: 10 points
	if len(resume.Education) == 0 {
		result.Warnings = append(result.Warnings, "no education entries")
	} else {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	result.Score = score
	result.IsCompliant = score >= compliantThreshold && len(result.Errors) == 0
	return result
}

// bulletScore awards up to 20 points for bullet point quality: presence,
// action-verb openings, and quantified impact
func bulletScore(experience []types.Experience, result *Score) int {
	total := 0
	withMetrics := 0
	actionLed := 0

	for i, exp := range experience {
		if len(exp.BulletPoints) == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("experience[%d] has no bullet points", i))
			continue
		}
		for _, bullet := range exp.BulletPoints {
			total++
			if strings.ContainsAny(bullet, "0123456789") {
				withMetrics++
			}
			if startsWithActionVerb(bullet) {
				actionLed++
			}
		}
	}

	if total == 0 {
		return 0
	}

	score := 10
	if withMetrics*2 >= total {
		score += 5
	} else {
		result.Warnings = append(result.Warnings, "fewer than half the bullet points quantify impact")
	}
	if actionLed*2 >= total {
		score += 5
	} else {
		result.Warnings = append(result.Warnings, "bullet points should open with action verbs")
	}
	return score
}

var actionVerbs = map[string]bool{
	"achieved": true, "built": true, "created": true, "delivered": true,
	"designed": true, "developed": true, "drove": true, "implemented": true,
	"improved": true, "increased": true, "launched": true, "led": true,
	"managed": true, "optimized": true, "reduced": true, "shipped": true,
	"architected": true, "automated": true, "migrated": true, "scaled": true,
}

func startsWithActionVerb(bullet string) bool {
	fields := strings.Fields(bullet)
	if len(fields) == 0 {
		return false
	}
	return actionVerbs[strings.ToLower(fields[0])]
}

func validDate(date string) bool {
	return date != "" && datePattern.MatchString(strings.TrimSpace(date))
}
