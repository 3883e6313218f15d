package ai

import (
	"context"

	"resumefit/internal/types"
)

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ProviderInfo describes a registered provider. All four fields are required
// at registration time.
type ProviderInfo struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	SupportedModels []string `json:"supportedModels"`
	DefaultModel    string   `json:"defaultModel"`
}

// Provider is the capability set every AI backend implements.
// All methods return token usage information - callers can ignore it if not needed.
type Provider interface {
	// ReviewResume analyzes a resume against a job description without altering it
	ReviewResume(ctx context.Context, req types.ReviewRequest) (types.ReviewResult, *TokenUsage, error)
	// ModifyResume revises the resume guided by a prior review. The request
	// must carry the ReviewResult produced by ReviewResume.
	ModifyResume(ctx context.Context, req types.AIRequest) (types.AIResponse, *TokenUsage, error)
	// EnhanceResume runs review then modify as a single convenience call
	EnhanceResume(ctx context.Context, req types.ReviewRequest) (types.AIResponse, *TokenUsage, error)
	// ValidateResponse checks a modify response against the structural contract
	ValidateResponse(resp types.AIResponse) error
	// EstimateCost predicts the USD cost of a request before dispatch
	EstimateCost(req types.ReviewRequest) (float64, error)
	// Info returns the provider's registration metadata
	Info() ProviderInfo
	Close() error
}

// PromptRenderer builds the prompt text handed to a provider
type PromptRenderer interface {
	BuildReviewPrompt(req types.ReviewRequest) (string, error)
	BuildModifyPrompt(req types.AIRequest) (string, error)
}
