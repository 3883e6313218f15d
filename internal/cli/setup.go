package cli

import (
	"context"
	"fmt"

	"resumefit/internal/ai"
	"resumefit/internal/config"
	"resumefit/internal/enhance"
	"resumefit/internal/errors"
	"resumefit/internal/truth"
)

// buildOrchestrator wires the full enhancement stack from configuration:
// prompt builder with overrides, Gemini provider when a key is configured,
// fallback manager, truthfulness validator, and the orchestrator itself.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*enhance.Orchestrator, *ai.FallbackManager, error) {
	reviewCfg := cfg.GetReviewConfig()
	modifyCfg := cfg.GetModifyConfig()

	reviewSystem, reviewUser := cfg.ReviewPrompts()
	modifySystem, modifyUser := cfg.ModifyPrompts()
	builder := ai.NewBuilderWithPrompts(
		ai.SystemPrompts{ReviewResume: reviewSystem, ModifyResume: modifySystem},
		ai.UserPrompts{ReviewResume: reviewUser, ModifyResume: modifyUser},
	)

	registry := ai.NewRegistry()
	if reviewCfg.APIKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, reviewCfg, modifyCfg, builder, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		if err := registry.Register("gemini", provider); err != nil {
			return nil, nil, err
		}
	} else if !cfg.Enhancement.FallbackToRules {
		return nil, nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"No API key configured and rule-based fallback is disabled", nil)
	}

	fallbackManager := ai.NewFallbackManager(retryPolicyFrom(reviewCfg), registry, logger)

	policy, err := truth.LoadInferencePolicy(
		cfg.Enhancement.Truthfulness.Inference.TableFile,
		cfg.Enhancement.Truthfulness.Inference.Extra,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load inference policy: %w", err)
	}

	orchestrator, err := enhance.NewOrchestrator(registry, fallbackManager, truth.NewValidator(policy),
		enhance.Options{
			ProviderName:    cfg.AI.Provider,
			FallbackToRules: cfg.Enhancement.FallbackToRules,
			ValidateTruth:   cfg.Enhancement.ValidateTruth,
			Truth: truth.Options{
				AllowInference:      cfg.Enhancement.Truthfulness.AllowInference,
				Strictness:          truth.Strictness(cfg.Enhancement.Truthfulness.Strictness),
				GenerateSuggestions: cfg.Enhancement.Truthfulness.GenerateSuggestions,
			},
		}, logger)
	if err != nil {
		return nil, nil, err
	}

	return orchestrator, fallbackManager, nil
}

// retryPolicyFrom maps operation configuration onto a retry policy
func retryPolicyFrom(opCfg config.OperationAIConfig) ai.RetryPolicy {
	policy := ai.DefaultRetryPolicy()
	if opCfg.MaxRetries != nil {
		policy.MaxRetries = *opCfg.MaxRetries
	}
	if opCfg.RetryDelayBase != nil {
		policy.RetryDelayBase = *opCfg.RetryDelayBase
	}
	if opCfg.MaxRetryDelay != nil {
		policy.MaxRetryDelay = *opCfg.MaxRetryDelay
	}
	if opCfg.RetryOnRateLimit != nil {
		policy.RetryOnRateLimit = *opCfg.RetryOnRateLimit
	}
	if opCfg.RetryOnNetworkError != nil {
		policy.RetryOnNetworkError = *opCfg.RetryOnNetworkError
	}
	if opCfg.RetryOnTimeout != nil {
		policy.RetryOnTimeout = *opCfg.RetryOnTimeout
	}
	if opCfg.RetryOnInvalidResponse != nil {
		policy.RetryOnInvalidResponse = *opCfg.RetryOnInvalidResponse
	}
	return policy
}
