// Package enhance runs the two-phase review→modify enhancement workflow:
// parse the job description, ask a provider to review the resume against it,
// feed the findings into a modify call, then post-process the result into an
// EnhancementResult. When no provider is available, or when the AI path
// fails and fallback is enabled, a deterministic rule-based enhancer stands
// in so the system never blocks on a missing or unhealthy provider.
package enhance

import (
	"context"
	"fmt"
	"sync"

	"resumefit/internal/ai"
	resumefitErrors "resumefit/internal/errors"
	"resumefit/internal/jobdesc"
	"resumefit/internal/truth"
	"resumefit/internal/types"
)

// State is the orchestrator's workflow phase
type State string

const (
	StateIdle      State = "idle"
	StateReviewing State = "reviewing"
	StateModifying State = "modifying"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Options configures an Orchestrator
type Options struct {
	// ProviderName selects a registered provider; empty selects the
	// registry default.
	ProviderName string
	// FallbackToRules substitutes the rule-based enhancer when no provider
	// is available or the AI path fails.
	FallbackToRules bool
	// ValidateTruth runs the truthfulness validator over AI output and
	// rejects untruthful enhancements.
	ValidateTruth bool
	// Truth configures the validator when ValidateTruth is set
	Truth truth.Options
}

// Orchestrator drives one enhancement workflow at a time. State is guarded
// because callers may poll State() from another goroutine while a run is in
// flight; runs themselves are sequential.
type Orchestrator struct {
	registry  *ai.Registry
	fallback  *ai.FallbackManager
	validator *truth.Validator
	opts      Options
	logger    *resumefitErrors.Logger

	mu    sync.Mutex
	state State
}

// NewOrchestrator creates an orchestrator over a provider registry. The
// registry may be empty only when opts.FallbackToRules is set; otherwise
// construction fails rather than deferring the error to the first run.
func NewOrchestrator(registry *ai.Registry, fallback *ai.FallbackManager, validator *truth.Validator, opts Options, logger *resumefitErrors.Logger) (*Orchestrator, error) {
	if registry == nil {
		registry = ai.NewRegistry()
	}
	if validator == nil {
		validator = truth.NewValidator(nil)
	}

	o := &Orchestrator{
		registry:  registry,
		fallback:  fallback,
		validator: validator,
		opts:      opts,
		logger:    logger,
		state:     StateIdle,
	}

	if o.provider() == nil && !opts.FallbackToRules {
		if opts.ProviderName != "" {
			return nil, &ai.ProviderNotFoundError{Name: opts.ProviderName}
		}
		return nil, &ai.InvalidProviderError{Name: "", Reason: "no provider registered and rule-based fallback is disabled"}
	}

	return o, nil
}

// State returns the current workflow phase
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// provider resolves the configured provider, or nil when unavailable
func (o *Orchestrator) provider() ai.Provider {
	if o.opts.ProviderName != "" {
		return o.registry.Get(o.opts.ProviderName)
	}
	return o.registry.Default()
}

func (o *Orchestrator) providerName() string {
	if o.opts.ProviderName != "" {
		return o.opts.ProviderName
	}
	return o.registry.DefaultName()
}

// EnhanceResume runs the full workflow: parse job description, review,
// modify, validate, post-process. On AI failure with FallbackToRules set,
// the rule-based enhancer result is returned instead of the error.
func (o *Orchestrator) EnhanceResume(ctx context.Context, resume types.Resume, jobText string, opts types.EnhancementOptions) (types.EnhancementResult, error) {
	jobInfo := jobdesc.Parse(jobText)

	provider := o.provider()
	if provider == nil {
		if !o.opts.FallbackToRules {
			return types.EnhancementResult{}, &ai.ProviderNotFoundError{Name: o.providerName()}
		}
		if o.logger != nil {
			o.logger.Info("No AI provider available, using rule-based enhancement")
		}
		return FallbackEnhance(resume, jobInfo, opts), nil
	}

	result, err := o.enhanceWithProvider(ctx, provider, resume, jobInfo, opts)
	if err != nil {
		o.setState(StateFailed)
		if !o.opts.FallbackToRules {
			return types.EnhancementResult{}, err
		}
		if o.logger != nil {
			o.logger.LogError(err, "AI enhancement failed, falling back to rule-based enhancement",
				"provider", o.providerName())
		}
		return FallbackEnhance(resume, jobInfo, opts), nil
	}

	o.setState(StateCompleted)
	return result, nil
}

// enhanceWithProvider runs review then modify against one provider
func (o *Orchestrator) enhanceWithProvider(ctx context.Context, provider ai.Provider, resume types.Resume, jobInfo types.ParsedJobDescription, opts types.EnhancementOptions) (types.EnhancementResult, error) {
	review, err := o.runReview(ctx, provider, resume, jobInfo, opts)
	if err != nil {
		return types.EnhancementResult{}, err
	}

	response, err := o.runModify(ctx, provider, resume, jobInfo, opts, &review)
	if err != nil {
		return types.EnhancementResult{}, err
	}

	if response.TokensUsed > 0 && o.logger != nil {
		o.logger.Info("AI enhancement token usage",
			"provider", o.providerName(),
			"tokens_used", response.TokensUsed,
			"estimated_cost_usd", response.CostUSD)
	}

	if o.opts.ValidateTruth {
		truthOpts := o.opts.Truth
		truthOpts.AllowInference = truthOpts.AllowInference || opts.AllowInference
		verdict := o.validator.Validate(resume, response.EnhancedResume, truthOpts)
		if !verdict.IsTruthful {
			return types.EnhancementResult{}, resumefitErrors.NewValidationError(
				resumefitErrors.ErrCodeTruthViolation,
				fmt.Sprintf("enhanced resume failed truthfulness validation: %d violation(s)", len(verdict.Errors)),
				nil).WithContext("violations", verdict.Errors)
		}
		if len(verdict.Warnings) > 0 && o.logger != nil {
			o.logger.Warn("Truthfulness validation passed with warnings",
				"warnings", len(verdict.Warnings))
		}
	}

	return BuildResult(resume, response, jobInfo), nil
}

// ReviewResume runs only the review phase
func (o *Orchestrator) ReviewResume(ctx context.Context, resume types.Resume, jobText string, opts types.EnhancementOptions) (types.ReviewResult, error) {
	provider := o.provider()
	if provider == nil {
		return types.ReviewResult{}, &ai.ProviderNotFoundError{Name: o.providerName()}
	}
	jobInfo := jobdesc.Parse(jobText)
	review, err := o.runReview(ctx, provider, resume, jobInfo, opts)
	if err != nil {
		o.setState(StateFailed)
		return types.ReviewResult{}, err
	}
	o.setState(StateIdle)
	return review, nil
}

// ModifyResume runs only the modify phase against a previously obtained
// review result
func (o *Orchestrator) ModifyResume(ctx context.Context, resume types.Resume, review types.ReviewResult, jobInfo types.ParsedJobDescription, opts types.EnhancementOptions) (types.EnhancementResult, error) {
	provider := o.provider()
	if provider == nil {
		return types.EnhancementResult{}, &ai.ProviderNotFoundError{Name: o.providerName()}
	}
	response, err := o.runModify(ctx, provider, resume, jobInfo, opts, &review)
	if err != nil {
		o.setState(StateFailed)
		return types.EnhancementResult{}, err
	}
	o.setState(StateCompleted)
	return BuildResult(resume, response, jobInfo), nil
}

// runReview invokes the provider's review operation under the retry manager
// and validates the result shape
func (o *Orchestrator) runReview(ctx context.Context, provider ai.Provider, resume types.Resume, jobInfo types.ParsedJobDescription, opts types.EnhancementOptions) (types.ReviewResult, error) {
	o.setState(StateReviewing)

	req := types.ReviewRequest{Resume: resume, JobInfo: jobInfo, Options: opts}
	name := o.providerName()

	review, err := ai.ExecuteWithRetry(ctx, o.fallback, name, "review",
		func(ctx context.Context) (types.ReviewResult, error) {
			result, _, err := provider.ReviewResume(ctx, req)
			return result, err
		})
	if err != nil {
		return types.ReviewResult{}, err
	}

	if review.Confidence < 0 || review.Confidence > 1 {
		return types.ReviewResult{}, resumefitErrors.NewValidationError(
			resumefitErrors.ErrCodeInvalidResponse,
			fmt.Sprintf("review confidence %v outside [0,1]", review.Confidence), nil)
	}
	if review.Confidence == 0 {
		review.Confidence = 0.5
	}
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

	return review, nil
}

// runModify invokes the provider's modify operation under the retry manager
// and validates the returned resume's minimum shape
func (o *Orchestrator) runModify(ctx context.Context, provider ai.Provider, resume types.Resume, jobInfo types.ParsedJobDescription, opts types.EnhancementOptions, review *types.ReviewResult) (types.AIResponse, error) {
	o.setState(StateModifying)

	req := types.AIRequest{Resume: resume, JobInfo: jobInfo, Options: opts, ReviewResult: review}
	name := o.providerName()

	response, err := ai.ExecuteWithRetry(ctx, o.fallback, name, "modify",
		func(ctx context.Context) (types.AIResponse, error) {
			result, _, err := provider.ModifyResume(ctx, req)
			return result, err
		})
	if err != nil {
		return types.AIResponse{}, err
	}

	if response.EnhancedResume.PersonalInfo.Name == "" || len(response.EnhancedResume.Experience) == 0 {
		return types.AIResponse{}, resumefitErrors.NewValidationError(
			resumefitErrors.ErrCodeInvalidResponse,
			"modified resume is missing personal info or experience", nil)
	}

	return response, nil
}
