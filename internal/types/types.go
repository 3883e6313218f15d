package types

// PersonalInfo holds the contact section of a resume
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience represents a single work history entry
type Experience struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Location     string   `json:"location,omitempty"`
	BulletPoints []string `json:"bulletPoints,omitempty"`
}

// Education represents a single education entry
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

// Project represents a personal or professional project entry
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// Language represents a spoken language with proficiency
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Resume is the structured resume document.
// Enhancement must preserve the cardinality of Experience and Education
// entries; only their content may change.
type Resume struct {
	PersonalInfo   PersonalInfo `json:"personalInfo"`
	Summary        string       `json:"summary,omitempty"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
	Certifications []string     `json:"certifications,omitempty"`
	Projects       []Project    `json:"projects,omitempty"`
	Languages      []Language   `json:"languages,omitempty"`
	Awards         []string     `json:"awards,omitempty"`
}

// ParsedJobDescription is the read-only output of the job description parser,
// produced once per enhancement call
type ParsedJobDescription struct {
	Keywords        []string `json:"keywords"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredSkills []string `json:"preferredSkills"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
	Requirements    []string `json:"requirements"`
}

// ActionType classifies a prioritized review action
type ActionType string

const (
	ActionEnhance ActionType = "enhance"
	ActionReorder ActionType = "reorder"
	ActionAdd     ActionType = "add"
	ActionRemove  ActionType = "remove"
	ActionRewrite ActionType = "rewrite"
)

// Priority levels for prioritized actions
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PrioritizedAction is a single recommended change from the review phase
type PrioritizedAction struct {
	Type            ActionType `json:"type"`
	Section         string     `json:"section"`
	Priority        Priority   `json:"priority"`
	Reason          string     `json:"reason"`
	SuggestedChange string     `json:"suggestedChange,omitempty"`
}

// ReviewResult holds the qualitative findings of the review phase.
// It is consumed immediately by the modify phase and never persisted.
type ReviewResult struct {
	Strengths          []string            `json:"strengths"`
	Weaknesses         []string            `json:"weaknesses"`
	Opportunities      []string            `json:"opportunities"`
	PrioritizedActions []PrioritizedAction `json:"prioritizedActions"`
	Confidence         float64             `json:"confidence"`
	Reasoning          string              `json:"reasoning,omitempty"`
}

// EnhancementMode selects which sections the modify phase may touch
type EnhancementMode string

const (
	ModeFull         EnhancementMode = "full"
	ModeBulletPoints EnhancementMode = "bulletPoints"
	ModeSkills       EnhancementMode = "skills"
	ModeSummary      EnhancementMode = "summary"
)

// EnhancementOptions configures a single enhancement run
type EnhancementOptions struct {
	Mode             EnhancementMode `json:"mode,omitempty"`
	Provider         string          `json:"provider,omitempty"`
	AllowInference   bool            `json:"allowInference,omitempty"`
	ValidateTruth    bool            `json:"validateTruth,omitempty"`
	TargetKeywords   []string        `json:"targetKeywords,omitempty"`
	MaxCostUSD       float64         `json:"maxCostUSD,omitempty"`
	IncludeReasoning bool            `json:"includeReasoning,omitempty"`
}

// ReviewRequest is the envelope handed to a provider's review operation
type ReviewRequest struct {
	Resume  Resume               `json:"resume"`
	JobInfo ParsedJobDescription `json:"jobInfo"`
	Options EnhancementOptions   `json:"options"`
}

// AIRequest is the envelope handed to a provider's modify operation.
// ReviewResult carries the findings of the preceding review phase.
type AIRequest struct {
	Resume       Resume               `json:"resume"`
	JobInfo      ParsedJobDescription `json:"jobInfo"`
	Options      EnhancementOptions   `json:"options"`
	ReviewResult *ReviewResult        `json:"reviewResult,omitempty"`
}

// Improvement describes a single change the provider made
type Improvement struct {
	Section     string  `json:"section"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// AIResponse is the provider's answer to a modify request
type AIResponse struct {
	EnhancedResume Resume        `json:"enhancedResume"`
	Improvements   []Improvement `json:"improvements"`
	Reasoning      string        `json:"reasoning,omitempty"`
	Confidence     float64       `json:"confidence,omitempty"`
	TokensUsed     int64         `json:"tokensUsed,omitempty"`
	CostUSD        float64       `json:"costUSD,omitempty"`
}

// KeywordSuggestion flags a job keyword absent from the enhanced resume
type KeywordSuggestion struct {
	Keyword    string `json:"keyword"`
	Importance string `json:"importance"`
	Reason     string `json:"reason,omitempty"`
}

// ATSScoreDelta holds ATS scores before and after enhancement
type ATSScoreDelta struct {
	Before      int `json:"before"`
	After       int `json:"after"`
	Improvement int `json:"improvement"`
}

// EnhancementResult is the final artifact of an enhancement run.
// It is immutable once returned.
type EnhancementResult struct {
	OriginalResume     Resume              `json:"originalResume"`
	EnhancedResume     Resume              `json:"enhancedResume"`
	Improvements       []Improvement       `json:"improvements"`
	KeywordSuggestions []KeywordSuggestion `json:"keywordSuggestions"`
	MissingSkills      []string            `json:"missingSkills"`
	ATSScore           ATSScoreDelta       `json:"atsScore"`
	Recommendations    []string            `json:"recommendations"`
}

// ChangeDetail is an ephemeral diff record between original and enhanced content
type ChangeDetail struct {
	Old     string `json:"old"`
	New     string `json:"new"`
	Section string `json:"section,omitempty"`
	Type    string `json:"type,omitempty"`
}
