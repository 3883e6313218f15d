package truth

import (
	"fmt"
	"regexp"
	"strings"

	"resumefit/internal/types"
)

// Strictness controls how loudly borderline content is reported. It never
// changes what counts as an error: identity fields and unrelated content are
// enforced at every level.
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessModerate Strictness = "moderate"
	StrictnessStrict   Strictness = "strict"
)

// Options configures a validation run
type Options struct {
	AllowInference      bool
	Strictness          Strictness
	GenerateSuggestions bool
}

// DefaultOptions returns the validation defaults
func DefaultOptions() Options {
	return Options{
		AllowInference:      true,
		Strictness:          StrictnessModerate,
		GenerateSuggestions: false,
	}
}

// Result is the outcome of comparing an enhanced resume against its original
type Result struct {
	IsTruthful  bool                `json:"isTruthful"`
	Errors      []string            `json:"errors"`
	Warnings    []string            `json:"warnings"`
	Suggestions []string            `json:"suggestions"`
	Details     map[string][]string `json:"details"`
}

func newResult() *Result {
	return &Result{
		IsTruthful:  true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
		Details:     map[string][]string{},
	}
}

func (r *Result) addError(section, msg string) {
	r.IsTruthful = false
	r.Errors = append(r.Errors, msg)
	r.Details[section] = append(r.Details[section], msg)
}

func (r *Result) addWarning(section, msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.Details[section] = append(r.Details[section], msg)
}

// Validator compares resumes under an inference policy
type Validator struct {
	policy InferencePolicy
}

// NewValidator creates a validator. A nil policy selects the built-in table.
func NewValidator(policy InferencePolicy) *Validator {
	if policy == nil {
		policy = DefaultInferencePolicy()
	}
	return &Validator{policy: policy}
}

// Validate checks that the enhanced resume introduces no facts unsupported by
// the original. Rewording, reordering, and reprioritizing are fine; new
// employers, new credentials, new numbers, and unrelated skills are not.
func (v *Validator) Validate(original, enhanced types.Resume, opts Options) *Result {
	if opts.Strictness == "" {
		opts.Strictness = StrictnessModerate
	}

	result := newResult()
	supported := v.supportedTerms(original)

	v.validateExperience(original, enhanced, opts, supported, result)
	v.validateSkills(original, enhanced, opts, result)
	v.validateEducation(original, enhanced, result)
	v.validateSummary(original, enhanced, opts, supported, result)

	if opts.GenerateSuggestions {
		v.generateSuggestions(result)
	}

	return result
}

// ValidateExperiencesOnly reports whether the experience sections pass the
// identity and cardinality rules
func (v *Validator) ValidateExperiencesOnly(original, enhanced types.Resume, opts Options) bool {
	result := newResult()
	supported := v.supportedTerms(original)
	v.validateExperience(original, enhanced, opts, supported, result)
	return result.IsTruthful
}

// ValidateSkillsOnly reports whether every added skill is an allowed inference
func (v *Validator) ValidateSkillsOnly(original, enhanced types.Resume, opts Options) bool {
	result := newResult()
	v.validateSkills(original, enhanced, opts, result)
	return result.IsTruthful
}

// ValidateBulletPointsOnly reports whether bullet rewrites stay within the
// technology and metric rules
func (v *Validator) ValidateBulletPointsOnly(original, enhanced types.Resume, opts Options) bool {
	result := newResult()
	supported := v.supportedTerms(original)
	v.validateBullets(original.Experience, enhanced.Experience, opts, supported, result)
	return result.IsTruthful
}

// validateExperience enforces that no entries are added and that identity
// fields at matched indices are untouched
func (v *Validator) validateExperience(original, enhanced types.Resume, opts Options, supported termSet, result *Result) {
	if len(enhanced.Experience) > len(original.Experience) {
		result.addError("experience", fmt.Sprintf(
			"enhanced resume has %d experience entries, original has %d; adding experience is never allowed",
			len(enhanced.Experience), len(original.Experience)))
		return
	}

	for i := range enhanced.Experience {
		orig := original.Experience[i]
		enh := enhanced.Experience[i]

		if enh.Company != orig.Company {
			result.addError("experience", fmt.Sprintf(
				"experience[%d]: company changed from %q to %q", i, orig.Company, enh.Company))
		}
		if enh.Role != orig.Role {
			result.addError("experience", fmt.Sprintf(
				"experience[%d]: role changed from %q to %q", i, orig.Role, enh.Role))
		}
		if enh.StartDate != orig.StartDate {
			result.addError("experience", fmt.Sprintf(
				"experience[%d]: start date changed from %q to %q", i, orig.StartDate, enh.StartDate))
		}
		if enh.EndDate != orig.EndDate {
			result.addError("experience", fmt.Sprintf(
				"experience[%d]: end date changed from %q to %q", i, orig.EndDate, enh.EndDate))
		}
	}

	v.validateBullets(original.Experience, enhanced.Experience, opts, supported, result)
}

// validateSkills classifies each added skill as inferred or unrelated
func (v *Validator) validateSkills(original, enhanced types.Resume, opts Options, result *Result) {
	originalSkills := make(map[string]bool, len(original.Skills))
	for _, s := range original.Skills {
		originalSkills[normalizeTerm(s)] = true
	}

	inferable := v.inferableFrom(original.Skills)

	for _, skill := range enhanced.Skills {
		key := normalizeTerm(skill)
		if originalSkills[key] {
			continue
		}

		if inferable[key] {
			if !opts.AllowInference {
				result.addError("skills", fmt.Sprintf(
					"skill %q is inferred rather than stated and inference is disabled", skill))
				continue
			}
			if opts.Strictness == StrictnessStrict {
				result.addWarning("skills", fmt.Sprintf(
					"skill %q was inferred from related original skills", skill))
			}
			continue
		}

		result.addError("skills", fmt.Sprintf(
			"skill %q has no basis in the original resume", skill))
	}
}

// validateBullets checks rewritten bullet points for unsupported technology
// tokens and fabricated metrics
func (v *Validator) validateBullets(original, enhanced []types.Experience, opts Options, supported termSet, result *Result) {
	limit := len(enhanced)
	if len(original) < limit {
		limit = len(original)
	}

	for i := 0; i < limit; i++ {
		origText := strings.ToLower(strings.Join(original[i].BulletPoints, " "))

		for j, bullet := range enhanced[i].BulletPoints {
			var origBullet string
			if j < len(original[i].BulletPoints) {
				origBullet = original[i].BulletPoints[j]
			}
			if bullet == origBullet {
				continue
			}

			section := fmt.Sprintf("experience[%d].bulletPoints[%d]", i, j)

			for _, token := range technologyTokens(bullet) {
				key := normalizeTerm(token)
				if strings.Contains(origText, key) || supported.stated[key] {
					continue
				}
				if supported.inferable[key] {
					if !opts.AllowInference {
						result.addError(section, fmt.Sprintf(
							"%s mentions %q, which is only inferable and inference is disabled", section, token))
					} else if opts.Strictness != StrictnessLenient {
						result.addWarning(section, fmt.Sprintf(
							"%s mentions %q, inferred from original skills", section, token))
					}
					continue
				}
				result.addError(section, fmt.Sprintf(
					"%s introduces %q, which the original resume does not support", section, token))
			}

			for _, metric := range numericMetrics(bullet) {
				if strings.Contains(origBullet, metric) || strings.Contains(origText, strings.ToLower(metric)) {
					continue
				}
				msg := fmt.Sprintf("%s introduces metric %q not present in the original", section, metric)
				if opts.Strictness == StrictnessLenient {
					result.addWarning(section, msg)
				} else {
					result.addError(section, msg)
				}
			}
		}
	}
}

// validateEducation enforces identity fields and forbids new entries
func (v *Validator) validateEducation(original, enhanced types.Resume, result *Result) {
	if len(enhanced.Education) > len(original.Education) {
		result.addError("education", fmt.Sprintf(
			"enhanced resume has %d education entries, original has %d; adding education is never allowed",
			len(enhanced.Education), len(original.Education)))
		return
	}

	for i := range enhanced.Education {
		orig := original.Education[i]
		enh := enhanced.Education[i]

		if enh.Institution != orig.Institution {
			result.addError("education", fmt.Sprintf(
				"education[%d]: institution changed from %q to %q", i, orig.Institution, enh.Institution))
		}
		if enh.Degree != orig.Degree {
			result.addError("education", fmt.Sprintf(
				"education[%d]: degree changed from %q to %q", i, orig.Degree, enh.Degree))
		}
	}
}

// validateSummary flags summary claims with no support in the original resume
func (v *Validator) validateSummary(original, enhanced types.Resume, opts Options, supported termSet, result *Result) {
	if enhanced.Summary == "" || enhanced.Summary == original.Summary {
		return
	}

	originalText := strings.ToLower(resumeText(original))

	for _, token := range technologyTokens(enhanced.Summary) {
		key := normalizeTerm(token)
		if strings.Contains(originalText, key) || supported.stated[key] {
			continue
		}
		if supported.inferable[key] {
			if !opts.AllowInference {
				result.addError("summary", fmt.Sprintf(
					"summary claims %q, which is only inferable and inference is disabled", token))
			} else if opts.Strictness == StrictnessStrict {
				result.addWarning("summary", fmt.Sprintf(
					"summary claim %q is inferred from original skills", token))
			}
			continue
		}
		result.addError("summary", fmt.Sprintf(
			"summary claims %q, which the original resume does not support", token))
	}
}

// generateSuggestions proposes a remedy for each error
func (v *Validator) generateSuggestions(result *Result) {
	for _, errMsg := range result.Errors {
		switch {
		case strings.Contains(errMsg, "no basis in the original"):
			result.Suggestions = append(result.Suggestions,
				"Remove skills the original resume does not support, or add the underlying experience first")
		case strings.Contains(errMsg, "metric"):
			result.Suggestions = append(result.Suggestions,
				"Replace fabricated metrics with qualitative statements or verified figures")
		case strings.Contains(errMsg, "changed from"):
			result.Suggestions = append(result.Suggestions,
				"Restore identity fields (employer, role, dates, institution, degree) to their original values")
		case strings.Contains(errMsg, "adding experience"), strings.Contains(errMsg, "adding education"):
			result.Suggestions = append(result.Suggestions,
				"Remove entries that do not appear in the original resume")
		default:
			result.Suggestions = append(result.Suggestions,
				"Rephrase the flagged content using only facts stated in the original resume")
		}
	}
}

// termSet carries the vocabulary the original resume supports
type termSet struct {
	stated    map[string]bool
	inferable map[string]bool
}

// supportedTerms builds the stated and inferable vocabularies from the
// original resume
func (v *Validator) supportedTerms(original types.Resume) termSet {
	ts := termSet{
		stated:    map[string]bool{},
		inferable: map[string]bool{},
	}

	for _, s := range original.Skills {
		ts.stated[normalizeTerm(s)] = true
	}
	for _, token := range technologyTokens(resumeText(original)) {
		ts.stated[normalizeTerm(token)] = true
	}
	for key, val := range v.inferableFrom(original.Skills) {
		ts.inferable[key] = val
	}
	// Skills mentioned only in bullet text still seed inference
	for stated := range ts.stated {
		for _, term := range v.policy.relatedTerms(stated) {
			ts.inferable[term] = true
		}
	}

	return ts
}

// inferableFrom expands a skill list through the policy table
func (v *Validator) inferableFrom(skills []string) map[string]bool {
	inferable := map[string]bool{}
	for _, skill := range skills {
		for _, term := range v.policy.relatedTerms(skill) {
			inferable[term] = true
		}
	}
	return inferable
}

// resumeText flattens the fields of a resume used for support lookups
func resumeText(r types.Resume) string {
	var b strings.Builder
	b.WriteString(r.Summary)
	b.WriteString(" ")
	b.WriteString(strings.Join(r.Skills, " "))
	for _, exp := range r.Experience {
		b.WriteString(" ")
		b.WriteString(exp.Role)
		b.WriteString(" ")
		b.WriteString(strings.Join(exp.BulletPoints, " "))
	}
	for _, edu := range r.Education {
		b.WriteString(" ")
		b.WriteString(edu.Degree)
		b.WriteString(" ")
		b.WriteString(edu.Field)
	}
	for _, p := range r.Projects {
		b.WriteString(" ")
		b.WriteString(p.Name)
		b.WriteString(" ")
		b.WriteString(p.Description)
		b.WriteString(" ")
		b.WriteString(strings.Join(p.Technologies, " "))
	}
	b.WriteString(" ")
	b.WriteString(strings.Join(r.Certifications, " "))
	return b.String()
}

var (
	wordPattern   = regexp.MustCompile(`[A-Za-z][A-Za-z0-9.+#/-]*`)
	metricPattern = regexp.MustCompile(`\d+(?:\.\d+)?(?:%|x|k|K|M|\+)?`)
)

// technologyTokens extracts candidate technology names from free text:
// capitalized words away from sentence starts, words with internal capitals,
// and all-caps acronyms. Sentence-initial capitalized words are skipped
// because bullet points conventionally open with an action verb.
func technologyTokens(text string) []string {
	var tokens []string
	seen := map[string]bool{}

	sentenceStart := true
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		atStart := sentenceStart
		sentenceStart = false
		if loc[1] < len(text) {
			rest := strings.TrimLeft(text[loc[1]:], " ")
			if strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ";") {
				sentenceStart = true
			}
		}

		if !isTechnologyShaped(word, atStart) {
			continue
		}
		key := strings.ToLower(word)
		if !seen[key] {
			seen[key] = true
			tokens = append(tokens, word)
		}
	}

	return tokens
}

func isTechnologyShaped(word string, sentenceStart bool) bool {
	if len(word) < 2 {
		return false
	}
	upper := 0
	for _, r := range word {
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	hasInternalUpper := false
	for i, r := range word {
		if i > 0 && r >= 'A' && r <= 'Z' {
			hasInternalUpper = true
			break
		}
	}
	allCaps := upper == len([]rune(word)) && upper >= 2

	if allCaps || hasInternalUpper {
		return true
	}
	// Leading-capital words count only mid-sentence
	return !sentenceStart && upper == 1 && word[0] >= 'A' && word[0] <= 'Z'
}

// numericMetrics extracts numeric claims from a bullet
func numericMetrics(text string) []string {
	return metricPattern.FindAllString(text, -1)
}

// normalizeTerm lowercases and trims a skill or token for comparison
func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
