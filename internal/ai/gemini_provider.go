package ai

import (
	"context"
	"fmt"
	"time"

	"resumefit/internal/config"
	resumefitErrors "resumefit/internal/errors"
	"resumefit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiSupportedModels lists the models the provider accepts
var geminiSupportedModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
}

// GeminiProvider implements Provider for Google Gemini.
// Each call is a single attempt: retry and cross-provider fallback are the
// fallback manager's job at the orchestration layer. The provider owns the
// per-call timeout race, the circuit breaker, and client-side rate limiting.
type GeminiProvider struct {
	client        *genai.Client
	reviewConfig  config.OperationAIConfig
	modifyConfig  config.OperationAIConfig
	prompts       *Builder
	reviewBreaker *CircuitBreaker
	modifyBreaker *CircuitBreaker
	limiter       *rate.Limiter
	logger        *resumefitErrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider with per-operation configuration
func NewGeminiProvider(ctx context.Context, reviewCfg, modifyCfg config.OperationAIConfig, prompts *Builder, logger *resumefitErrors.Logger) (*GeminiProvider, error) {
	if reviewCfg.APIKey == "" {
		return nil, resumefitErrors.NewConfigError(resumefitErrors.ErrCodeMissingAPIKey,
			"Gemini API key is required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: reviewCfg.APIKey,
	})
	if err != nil {
		return nil, resumefitErrors.NewAIError(resumefitErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	if prompts == nil {
		prompts = NewBuilder()
	}

	var limiter *rate.Limiter
	if reviewCfg.RateLimitPerMin != nil && *reviewCfg.RateLimitPerMin > 0 {
		perMin := *reviewCfg.RateLimitPerMin
		limiter = rate.NewLimiter(rate.Limit(float64(perMin)/60.0), perMin)
	}

	return &GeminiProvider{
		client:        client,
		reviewConfig:  reviewCfg,
		modifyConfig:  modifyCfg,
		prompts:       prompts,
		reviewBreaker: NewCircuitBreaker("review", &reviewCfg, logger),
		modifyBreaker: NewCircuitBreaker("modify", &modifyCfg, logger),
		limiter:       limiter,
		logger:        logger,
	}, nil
}

// Info implements Provider
func (g *GeminiProvider) Info() ProviderInfo {
	defaultModel := g.reviewConfig.Model
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	return ProviderInfo{
		Name:            "gemini",
		DisplayName:     "Google Gemini",
		SupportedModels: geminiSupportedModels,
		DefaultModel:    defaultModel,
	}
}

// generate performs one guarded model call: rate limit, cost gate, timeout
// race, circuit breaker, tracing. The eventual resolution of an abandoned
// call is ignored once the deadline fires.
func (g *GeminiProvider) generate(
	ctx context.Context,
	operation string,
	opCfg *config.OperationAIConfig,
	breaker *CircuitBreaker,
	systemPrompt, userPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (*genai.GenerateContentResponse, *TokenUsage, error) {
	tracer := otel.Tracer("resumefit.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", opCfg.Model),
		attribute.Float64("ai.temperature", float64(*opCfg.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, nil, Classify("gemini", operation, err)
		}
	}

	if opCfg.CostLimitUSD != nil && *opCfg.CostLimitUSD > 0 {
		estimated := estimateCallCost(opCfg.Model, EstimateTokens(userPrompt))
		if estimated > *opCfg.CostLimitUSD {
			err := &CostLimitError{
				ProviderError: newProviderError("gemini", operation, "estimated cost exceeds configured limit", nil),
				EstimatedCost: estimated,
				Limit:         *opCfg.CostLimitUSD,
			}
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("success", false))
			return nil, nil, err
		}
	}

	if *opCfg.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	timeout := 60 * time.Second
	if opCfg.Timeout != nil && *opCfg.Timeout > 0 {
		timeout = *opCfg.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(callCtx, opCfg.Model, genai.Text(userPrompt), genaiConfig)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, nil, &TimeoutError{
				ProviderError: newProviderError("gemini", operation, "call abandoned after timeout", err),
				Timeout:       timeout,
			}
		}
		return nil, nil, Classify("gemini", operation, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return result, tokenUsage, nil
}

// ReviewResume implements Provider
func (g *GeminiProvider) ReviewResume(ctx context.Context, req types.ReviewRequest) (types.ReviewResult, *TokenUsage, error) {
	userPrompt, err := g.prompts.BuildReviewPrompt(req)
	if err != nil {
		return types.ReviewResult{}, nil, Classify("gemini", "review", err)
	}

	result, tokenUsage, err := g.generate(
		ctx,
		"review",
		&g.reviewConfig,
		g.reviewBreaker,
		g.prompts.SystemPrompt("review"),
		userPrompt,
		g.buildReviewSchema(),
		attribute.Int("input.prompt_tokens_estimate", EstimateTokens(userPrompt)),
	)
	if err != nil {
		return types.ReviewResult{}, nil, err
	}

	var review types.ReviewResult
	if err := decodeReply("gemini", "review", result.Text(), &review); err != nil {
		return types.ReviewResult{}, nil, err
	}
	if err := normalizeReview(&review); err != nil {
		return types.ReviewResult{}, nil, &InvalidResponseError{
			ProviderError: newProviderError("gemini", "review", "review result failed validation", err),
			Raw:           result.Text(),
		}
	}

	return review, tokenUsage, nil
}

// ModifyResume implements Provider
func (g *GeminiProvider) ModifyResume(ctx context.Context, req types.AIRequest) (types.AIResponse, *TokenUsage, error) {
	userPrompt, err := g.prompts.BuildModifyPrompt(req)
	if err != nil {
		return types.AIResponse{}, nil, Classify("gemini", "modify", err)
	}

	result, tokenUsage, err := g.generate(
		ctx,
		"modify",
		&g.modifyConfig,
		g.modifyBreaker,
		g.prompts.SystemPrompt("modify"),
		userPrompt,
		g.buildModifySchema(),
		attribute.String("input.mode", string(req.Options.Mode)),
		attribute.Int("input.prompt_tokens_estimate", EstimateTokens(userPrompt)),
	)
	if err != nil {
		return types.AIResponse{}, nil, err
	}

	var response types.AIResponse
	if err := decodeReply("gemini", "modify", result.Text(), &response); err != nil {
		return types.AIResponse{}, nil, err
	}
	if tokenUsage != nil {
		response.TokensUsed = tokenUsage.TotalTokens
		response.CostUSD = estimateCallCost(g.modifyConfig.Model, int(tokenUsage.TotalTokens))
	}
	if err := g.ValidateResponse(response); err != nil {
		return types.AIResponse{}, nil, &InvalidResponseError{
			ProviderError: newProviderError("gemini", "modify", "modify result failed validation", err),
			Raw:           result.Text(),
		}
	}

	return response, tokenUsage, nil
}

// EnhanceResume implements Provider: review then modify as one call
func (g *GeminiProvider) EnhanceResume(ctx context.Context, req types.ReviewRequest) (types.AIResponse, *TokenUsage, error) {
	review, reviewUsage, err := g.ReviewResume(ctx, req)
	if err != nil {
		return types.AIResponse{}, nil, err
	}

	response, modifyUsage, err := g.ModifyResume(ctx, types.AIRequest{
		Resume:       req.Resume,
		JobInfo:      req.JobInfo,
		Options:      req.Options,
		ReviewResult: &review,
	})
	if err != nil {
		return types.AIResponse{}, nil, err
	}

	return response, sumTokenUsage(reviewUsage, modifyUsage), nil
}

// ValidateResponse implements Provider. The enhanced resume must carry at
// least a personal info name and one experience entry.
func (g *GeminiProvider) ValidateResponse(resp types.AIResponse) error {
	if resp.EnhancedResume.PersonalInfo.Name == "" {
		return fmt.Errorf("enhanced resume is missing personal info")
	}
	if len(resp.EnhancedResume.Experience) == 0 {
		return fmt.Errorf("enhanced resume has no experience entries")
	}
	return nil
}

// EstimateCost implements Provider: the predicted USD cost of review + modify
func (g *GeminiProvider) EstimateCost(req types.ReviewRequest) (float64, error) {
	reviewPrompt, err := g.prompts.BuildReviewPrompt(req)
	if err != nil {
		return 0, err
	}
	// The modify prompt carries the resume twice (review findings reference
	// it), so scale the review prompt as a proxy.
	reviewCost := estimateCallCost(g.reviewConfig.Model, EstimateTokens(reviewPrompt))
	modifyCost := estimateCallCost(g.modifyConfig.Model, EstimateTokens(reviewPrompt)*2)
	return reviewCost + modifyCost, nil
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// The genai client holds no resources needing explicit release in
	// single-shot usage
	return nil
}

// BreakerStats returns circuit breaker statistics for both operations
func (g *GeminiProvider) BreakerStats() map[string]any {
	return map[string]any{
		"review":          g.reviewBreaker.Stats(),
		"modify":          g.modifyBreaker.Stats(),
		"overall_healthy": g.reviewBreaker.IsHealthy() && g.modifyBreaker.IsHealthy(),
	}
}

// normalizeReview enforces the review result contract: arrays present,
// confidence numeric in [0,1] with 0.5 as the default for an absent value.
func normalizeReview(review *types.ReviewResult) error {
	if review.Strengths == nil {
		review.Strengths = []string{}
	}
	if review.Weaknesses == nil {
		review.Weaknesses = []string{}
	}
	if review.Opportunities == nil {
		review.Opportunities = []string{}
	}
	if review.PrioritizedActions == nil {
		review.PrioritizedActions = []types.PrioritizedAction{}
	}
	if review.Confidence == 0 {
		review.Confidence = 0.5
	}
	if review.Confidence < 0 || review.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", review.Confidence)
	}
	return nil
}

// buildReviewSchema creates the response schema for review requests
func (g *GeminiProvider) buildReviewSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"strengths": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"weaknesses": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"opportunities": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"prioritizedActions": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"type":            {Type: genai.TypeString},
							"section":         {Type: genai.TypeString},
							"priority":        {Type: genai.TypeString},
							"reason":          {Type: genai.TypeString},
							"suggestedChange": {Type: genai.TypeString},
						},
						Required: []string{"type", "section", "priority", "reason"},
					},
				},
				"confidence": {Type: genai.TypeNumber},
				"reasoning":  {Type: genai.TypeString},
			},
			Required: []string{"strengths", "weaknesses", "opportunities", "prioritizedActions", "confidence"},
		},
	}

	if *g.reviewConfig.Temperature > 0 {
		config.Temperature = g.reviewConfig.Temperature
	}

	return config
}

// buildModifySchema creates the response schema for modify requests
func (g *GeminiProvider) buildModifySchema() *genai.GenerateContentConfig {
	resumeSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"personalInfo": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString},
					"email":    {Type: genai.TypeString},
					"phone":    {Type: genai.TypeString},
					"location": {Type: genai.TypeString},
					"linkedin": {Type: genai.TypeString},
					"website":  {Type: genai.TypeString},
				},
				Required: []string{"name"},
			},
			"summary": {Type: genai.TypeString},
			"experience": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"company":   {Type: genai.TypeString},
						"role":      {Type: genai.TypeString},
						"startDate": {Type: genai.TypeString},
						"endDate":   {Type: genai.TypeString},
						"location":  {Type: genai.TypeString},
						"bulletPoints": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"company", "role", "startDate", "endDate"},
				},
			},
			"education": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"institution": {Type: genai.TypeString},
						"degree":      {Type: genai.TypeString},
						"field":       {Type: genai.TypeString},
						"startDate":   {Type: genai.TypeString},
						"endDate":     {Type: genai.TypeString},
						"gpa":         {Type: genai.TypeString},
					},
					Required: []string{"institution", "degree"},
				},
			},
			"skills": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"certifications": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"awards": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"personalInfo", "experience"},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"enhancedResume": resumeSchema,
				"improvements": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"section":     {Type: genai.TypeString},
							"description": {Type: genai.TypeString},
						},
						Required: []string{"section", "description"},
					},
				},
				"confidence": {Type: genai.TypeNumber},
				"reasoning":  {Type: genai.TypeString},
			},
			Required: []string{"enhancedResume", "improvements"},
		},
	}

	if *g.modifyConfig.Temperature > 0 {
		config.Temperature = g.modifyConfig.Temperature
	}

	return config
}

// extractTokenUsage extracts token usage information from a Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// sumTokenUsage adds two usages, tolerating nils
func sumTokenUsage(a, b *TokenUsage) *TokenUsage {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &TokenUsage{
		InputTokens:  a.InputTokens + b.InputTokens,
		OutputTokens: a.OutputTokens + b.OutputTokens,
		TotalTokens:  a.TotalTokens + b.TotalTokens,
	}
}
