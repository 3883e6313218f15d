package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumefit/internal/ats"
	"resumefit/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "EnhancementResult", &EnhancementTextFormatter{})
	registry.RegisterFormatter("markdown", "EnhancementResult", &EnhancementMarkdownFormatter{})
	registry.RegisterFormatter("text", "ReviewResult", &ReviewTextFormatter{})
	registry.RegisterFormatter("markdown", "ReviewResult", &ReviewMarkdownFormatter{})
	registry.RegisterFormatter("text", "Score", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "Score", &ScoreMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.EnhancementResult:
		return "EnhancementResult"
	case types.ReviewResult:
		return "ReviewResult"
	case ats.Score:
		return "Score"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// EnhancementTextFormatter handles text formatting for enhancement results
type EnhancementTextFormatter struct{}

func (etf *EnhancementTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.EnhancementResult)
	if !ok {
		return "", fmt.Errorf("expected EnhancementResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ENHANCED RESUME ===\n\n")
	writeResumeText(&output, result.EnhancedResume)
	output.WriteString("\n")

	output.WriteString("=== ATS SCORE ===\n")
	output.WriteString(fmt.Sprintf("Before: %d/100\nAfter: %d/100\nImprovement: %+d\n\n",
		result.ATSScore.Before, result.ATSScore.After, result.ATSScore.Improvement))

	if len(result.Improvements) > 0 {
		output.WriteString("=== IMPROVEMENTS ===\n")
		for i, imp := range result.Improvements {
			output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, imp.Section, imp.Description))
		}
		output.WriteString("\n")
	}

	if len(result.MissingSkills) > 0 {
		output.WriteString("=== MISSING SKILLS ===\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordSuggestions) > 0 {
		output.WriteString("=== KEYWORD SUGGESTIONS ===\n")
		for _, kw := range result.KeywordSuggestions {
			output.WriteString(fmt.Sprintf("- %s (%s): %s\n", kw.Keyword, kw.Importance, kw.Reason))
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("=== RECOMMENDATIONS ===\n")
		for i, rec := range result.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
	}

	return output.String(), nil
}

func (etf *EnhancementTextFormatter) SupportedType() string {
	return "EnhancementResult"
}

// EnhancementMarkdownFormatter handles markdown formatting for enhancement results
type EnhancementMarkdownFormatter struct{}

func (emf *EnhancementMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.EnhancementResult)
	if !ok {
		return "", fmt.Errorf("expected EnhancementResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Enhanced Resume\n\n")
	writeResumeMarkdown(&output, result.EnhancedResume)
	output.WriteString("\n")

	output.WriteString("## ATS Score\n\n")
	output.WriteString(fmt.Sprintf("| Before | After | Improvement |\n|---|---|---|\n| %d | %d | %+d |\n\n",
		result.ATSScore.Before, result.ATSScore.After, result.ATSScore.Improvement))

	if len(result.Improvements) > 0 {
		output.WriteString("## Improvements\n\n")
		for _, imp := range result.Improvements {
			output.WriteString(fmt.Sprintf("- **%s**: %s\n", imp.Section, imp.Description))
		}
		output.WriteString("\n")
	}

	if len(result.MissingSkills) > 0 {
		output.WriteString("## Missing Skills\n\n")
		for _, skill := range result.MissingSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordSuggestions) > 0 {
		output.WriteString("## Keyword Suggestions\n\n")
		for _, kw := range result.KeywordSuggestions {
			output.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", kw.Keyword, kw.Importance, kw.Reason))
		}
		output.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, rec := range result.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
	}

	return output.String(), nil
}

func (emf *EnhancementMarkdownFormatter) SupportedType() string {
	return "EnhancementResult"
}

// ReviewTextFormatter handles text formatting for review results
type ReviewTextFormatter struct{}

func (rtf *ReviewTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ReviewResult)
	if !ok {
		return "", fmt.Errorf("expected ReviewResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME REVIEW ===\n\n")
	output.WriteString(fmt.Sprintf("Confidence: %.0f%%\n\n", result.Confidence*100))

	writeList(&output, "Strengths:", result.Strengths)
	writeList(&output, "Weaknesses:", result.Weaknesses)
	writeList(&output, "Opportunities:", result.Opportunities)

	if len(result.PrioritizedActions) > 0 {
		output.WriteString("Prioritized Actions:\n")
		for i, action := range result.PrioritizedActions {
			output.WriteString(fmt.Sprintf("%d. [%s/%s] %s: %s\n",
				i+1, action.Priority, action.Type, action.Section, action.Reason))
			if action.SuggestedChange != "" {
				output.WriteString(fmt.Sprintf("   Suggested: %s\n", action.SuggestedChange))
			}
		}
		output.WriteString("\n")
	}

	if result.Reasoning != "" {
		output.WriteString("Reasoning:\n")
		output.WriteString(result.Reasoning)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *ReviewTextFormatter) SupportedType() string {
	return "ReviewResult"
}

// ReviewMarkdownFormatter handles markdown formatting for review results
type ReviewMarkdownFormatter struct{}

func (rmf *ReviewMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ReviewResult)
	if !ok {
		return "", fmt.Errorf("expected ReviewResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Review\n\n")
	output.WriteString(fmt.Sprintf("**Confidence:** %.0f%%\n\n", result.Confidence*100))

	writeMarkdownList(&output, "## Strengths", result.Strengths)
	writeMarkdownList(&output, "## Weaknesses", result.Weaknesses)
	writeMarkdownList(&output, "## Opportunities", result.Opportunities)

	if len(result.PrioritizedActions) > 0 {
		output.WriteString("## Prioritized Actions\n\n")
		for i, action := range result.PrioritizedActions {
			output.WriteString(fmt.Sprintf("%d. **%s** (%s, %s priority): %s\n",
				i+1, action.Section, action.Type, action.Priority, action.Reason))
			if action.SuggestedChange != "" {
				output.WriteString(fmt.Sprintf("   - Suggested: %s\n", action.SuggestedChange))
			}
		}
		output.WriteString("\n")
	}

	if result.Reasoning != "" {
		output.WriteString("## Reasoning\n\n")
		output.WriteString(result.Reasoning)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *ReviewMarkdownFormatter) SupportedType() string {
	return "ReviewResult"
}

// ScoreTextFormatter handles text formatting for ATS scores
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	result, ok := data.(ats.Score)
	if !ok {
		return "", fmt.Errorf("expected Score, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS COMPATIBILITY ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n", result.Score))
	output.WriteString(fmt.Sprintf("Compliant: %t\n\n", result.IsCompliant))

	writeList(&output, "Errors:", result.Errors)
	writeList(&output, "Warnings:", result.Warnings)

	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "Score"
}

// ScoreMarkdownFormatter handles markdown formatting for ATS scores
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(ats.Score)
	if !ok {
		return "", fmt.Errorf("expected Score, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Compatibility\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", result.Score))
	output.WriteString(fmt.Sprintf("**Compliant:** %t\n\n", result.IsCompliant))

	writeMarkdownList(&output, "## Errors", result.Errors)
	writeMarkdownList(&output, "## Warnings", result.Warnings)

	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "Score"
}

func writeList(output *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(header)
	output.WriteString("\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(header)
	output.WriteString("\n\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func writeResumeText(output *strings.Builder, resume types.Resume) {
	output.WriteString(resume.PersonalInfo.Name)
	output.WriteString("\n")
	if resume.PersonalInfo.Email != "" {
		output.WriteString(resume.PersonalInfo.Email)
		output.WriteString("\n")
	}
	output.WriteString("\n")

	if resume.Summary != "" {
		output.WriteString(resume.Summary)
		output.WriteString("\n\n")
	}

	for _, exp := range resume.Experience {
		output.WriteString(fmt.Sprintf("%s, %s (%s - %s)\n", exp.Role, exp.Company, exp.StartDate, exp.EndDate))
		for _, bullet := range exp.BulletPoints {
			output.WriteString(fmt.Sprintf("  - %s\n", bullet))
		}
	}

	if len(resume.Skills) > 0 {
		output.WriteString("\nSkills: ")
		output.WriteString(strings.Join(resume.Skills, ", "))
		output.WriteString("\n")
	}

	for _, edu := range resume.Education {
		output.WriteString(fmt.Sprintf("%s, %s\n", edu.Degree, edu.Institution))
	}
}

func writeResumeMarkdown(output *strings.Builder, resume types.Resume) {
	output.WriteString(fmt.Sprintf("## %s\n\n", resume.PersonalInfo.Name))
	if resume.PersonalInfo.Email != "" {
		output.WriteString(fmt.Sprintf("%s\n\n", resume.PersonalInfo.Email))
	}

	if resume.Summary != "" {
		output.WriteString(resume.Summary)
		output.WriteString("\n\n")
	}

	if len(resume.Experience) > 0 {
		output.WriteString("### Experience\n\n")
		for _, exp := range resume.Experience {
			output.WriteString(fmt.Sprintf("**%s**, %s (%s - %s)\n\n", exp.Role, exp.Company, exp.StartDate, exp.EndDate))
			for _, bullet := range exp.BulletPoints {
				output.WriteString(fmt.Sprintf("- %s\n", bullet))
			}
			output.WriteString("\n")
		}
	}

	if len(resume.Skills) > 0 {
		output.WriteString("### Skills\n\n")
		output.WriteString(strings.Join(resume.Skills, ", "))
		output.WriteString("\n\n")
	}

	if len(resume.Education) > 0 {
		output.WriteString("### Education\n\n")
		for _, edu := range resume.Education {
			output.WriteString(fmt.Sprintf("- %s, %s\n", edu.Degree, edu.Institution))
		}
	}
}
