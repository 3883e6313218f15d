package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumefit/internal/types"
)

// SystemPrompts contains the system-level instructions for AI interactions
type SystemPrompts struct {
	ReviewResume string
	ModifyResume string
}

// UserPrompts contains user-level prompt templates with placeholders for dynamic content
type UserPrompts struct {
	ReviewResume string
	ModifyResume string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	ReviewResume: `You are an expert resume reviewer and career strategist. Your role is to analyze
a resume against a specific job description and produce structured, actionable findings.

Your principles:
- Base every finding on content actually present in the resume
- Never recommend inventing skills, metrics, or experience
- Prioritize changes by their impact on applicant tracking systems and recruiters
- Be specific: name the section and the exact improvement`,

	ModifyResume: `You are an expert resume writer with a strict commitment to honesty and accuracy.
You revise resumes guided by a prior review, under these inviolable rules:

- NEVER invent, exaggerate, or misattribute any skill, metric, or experience
- Every statement in the revised resume must be traceable to the original
- Preserve the number of experience and education entries exactly
- Never change company names, role titles, or employment dates
- Rewording, reordering, and emphasis changes are allowed; fabrication is not`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	ReviewResume: `Analyze the resume below against the job description context and produce a structured review.

**Focus areas:**
- Keyword alignment with the job's required and preferred skills
- Impact and specificity of experience bullet points
- Summary relevance to the target role
- Skills section coverage and ordering
- Gaps between job requirements and resume content

**Output contract:**
Respond with exactly one JSON object matching this schema:
{
  "strengths": string[],
  "weaknesses": string[],
  "opportunities": string[],
  "prioritizedActions": [{"type": "enhance|reorder|add|remove|rewrite", "section": string, "priority": "high|medium|low", "reason": string, "suggestedChange": string}],
  "confidence": number between 0 and 1,
  "reasoning": string
}

**Example finding:**
{"type": "rewrite", "section": "experience[0].bulletPoints[1]", "priority": "high", "reason": "Bullet describes duties, not outcomes", "suggestedChange": "Lead with the measurable result already stated in the original text"}

**Resume:**
-----
%s
-----

**Job context:**
-----
%s
-----`,

	ModifyResume: `Revise the resume below according to the review findings, while obeying every truthfulness rule.

**Truthfulness rules:**
1. Do not add skills, tools, or technologies absent from the original resume
2. Do not add, remove, or merge experience or education entries
3. Do not alter company names, role titles, or employment dates
4. Do not introduce numeric metrics that the original does not state
5. Claims in the summary must be supported by the body of the resume

%s

**Output contract:**
Respond with exactly one JSON object: the revised resume in the same shape as the input document, under the key "enhancedResume", plus "improvements" (array of {"section", "description"}), "confidence" (0..1) and optional "reasoning".

**Example improvement:**
{"section": "summary", "description": "Reframed summary around the platform engineering focus of the target role"}

**Review findings:**
-----
%s
-----

**Resume:**
-----
%s
-----

**Job context:**
-----
%s
-----`,
}

// modeAreas lists the enhancement areas the modify prompt scopes to per mode.
// Non-full modes instruct the model to leave every other section untouched.
var modeAreas = map[types.EnhancementMode]string{
	types.ModeFull: `**Enhancement areas (full mode):**
- Summary: align with the target role
- Experience bullet points: sharpen wording and emphasis
- Skills: reorder to surface the most relevant first
- Section ordering and emphasis throughout`,
	types.ModeBulletPoints: `**Enhancement areas (bullet-point mode):**
- Experience bullet points ONLY: sharpen wording and emphasis
- Leave summary, skills, and all other sections byte-identical`,
	types.ModeSkills: `**Enhancement areas (skills mode):**
- Skills section ONLY: reorder to surface the most relevant first
- Leave every other section byte-identical`,
	types.ModeSummary: `**Enhancement areas (summary mode):**
- Summary ONLY: align with the target role using facts from the body
- Leave every other section byte-identical`,
}

// truncationMarker is appended whenever a prompt is cut to fit a token budget
const truncationMarker = "\n[... truncated ...]"

// Builder assembles review and modify prompts from templates and request context
type Builder struct {
	system SystemPrompts
	user   UserPrompts
}

var _ PromptRenderer = (*Builder)(nil)

// NewBuilder creates a prompt builder with the default templates
func NewBuilder() *Builder {
	return &Builder{system: DefaultSystemPrompts, user: DefaultUserPrompts}
}

// NewBuilderWithPrompts creates a prompt builder with custom templates,
// falling back to the defaults for any empty field
func NewBuilderWithPrompts(system SystemPrompts, user UserPrompts) *Builder {
	b := NewBuilder()
	if system.ReviewResume != "" {
		b.system.ReviewResume = system.ReviewResume
	}
	if system.ModifyResume != "" {
		b.system.ModifyResume = system.ModifyResume
	}
	if user.ReviewResume != "" {
		b.user.ReviewResume = user.ReviewResume
	}
	if user.ModifyResume != "" {
		b.user.ModifyResume = user.ModifyResume
	}
	return b
}

// SystemPrompt returns the system instruction for the given operation
func (b *Builder) SystemPrompt(operation string) string {
	switch operation {
	case "review":
		return b.system.ReviewResume
	case "modify":
		return b.system.ModifyResume
	default:
		return ""
	}
}

// BuildReviewPrompt renders the review prompt for a request
func (b *Builder) BuildReviewPrompt(req types.ReviewRequest) (string, error) {
	resumeJSON, err := json.MarshalIndent(req.Resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume: %w", err)
	}
	jobJSON, err := json.MarshalIndent(req.JobInfo, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize job info: %w", err)
	}
	return fmt.Sprintf(b.user.ReviewResume, string(resumeJSON), string(jobJSON)), nil
}

// BuildModifyPrompt renders the modify prompt for a request. The request must
// carry the ReviewResult from a preceding review phase.
func (b *Builder) BuildModifyPrompt(req types.AIRequest) (string, error) {
	if req.ReviewResult == nil {
		return "", fmt.Errorf("modify prompt requires a prior review result")
	}

	mode := req.Options.Mode
	if mode == "" {
		mode = types.ModeFull
	}
	areas, ok := modeAreas[mode]
	if !ok {
		return "", fmt.Errorf("unknown enhancement mode: %s", mode)
	}

	reviewJSON, err := json.MarshalIndent(req.ReviewResult, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize review result: %w", err)
	}
	resumeJSON, err := json.MarshalIndent(req.Resume, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume: %w", err)
	}
	jobJSON, err := json.MarshalIndent(req.JobInfo, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize job info: %w", err)
	}

	return fmt.Sprintf(b.user.ModifyResume, areas, string(reviewJSON), string(resumeJSON), string(jobJSON)), nil
}

// EstimateTokens approximates the token count of a prompt as ceil(len/4)
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// TruncatePrompt cuts text so its estimated token count fits maxTokens. The
// cut lands on the nearest preceding sentence or newline boundary when that
// boundary falls within 80% of the target length; otherwise the text is cut
// hard at the limit. A truncation marker is always appended to a cut prompt.
func TruncatePrompt(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return truncationMarker
	}
	maxLen := maxTokens * 4
	if len(text) <= maxLen {
		return text
	}

	cut := maxLen
	boundary := -1
	for i := cut - 1; i >= 0; i-- {
		c := text[i]
		if c == '\n' || c == '.' || c == '!' || c == '?' {
			boundary = i + 1
			break
		}
	}
	if boundary >= (maxLen*4)/5 {
		cut = boundary
	}

	return strings.TrimRight(text[:cut], " \t") + truncationMarker
}
