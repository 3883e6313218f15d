package cli

import (
	"context"
	"fmt"

	"resumefit/internal/common"
	"resumefit/internal/observability"
	"resumefit/internal/types"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [resume-file] [job-description-file]",
	Short: "Review a resume against a job description without modifying it",
	Long: `Review your resume against a specific job description. The review phase
identifies strengths, weaknesses, missed opportunities, and a prioritized
action list, without changing the resume. Useful on its own, or to inspect
what the enhance command would act on.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if reviewConfig.OutputFormat == "" {
			reviewConfig.OutputFormat = cfg.App.DefaultFormat
		}
		reviewConfig.MaxFileSize = cfg.App.MaxFileSize
		return common.ValidateOutputFormat(reviewConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runReview,
}

var reviewConfig common.CommandConfig

func init() {
	reviewCmd.Flags().StringVarP(&reviewConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	reviewCmd.Flags().StringVar(&reviewConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = reviewCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	obs := getObsFromContext(cmd.Context())

	orchestrator, _, err := buildOrchestrator(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up review workflow: %w", err)
	}

	createInput := func(contents []string) (enhanceInput, error) {
		if len(contents) != 2 {
			return enhanceInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		resume, err := common.ParseResume(contents[0])
		if err != nil {
			return enhanceInput{}, err
		}
		return enhanceInput{Resume: resume, JobText: contents[1]}, nil
	}

	logDetails := func(input enhanceInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume review",
			"experience_entries", len(input.Resume.Experience),
			"job_chars", len(input.JobText),
			"output_format", cmdCfg.OutputFormat)
	}

	reviewOperation := func(ctx context.Context, input enhanceInput) (types.ReviewResult, error) {
		var result types.ReviewResult
		err := obs.TrackAIOperation(ctx, "review", func(ctx context.Context) *observability.OperationResult {
			var opErr error
			result, opErr = orchestrator.ReviewResume(ctx, input.Resume, input.JobText, types.EnhancementOptions{
				Mode: types.EnhancementMode(cfg.Enhancement.Mode),
			})
			return &observability.OperationResult{Error: opErr}
		})
		return result, err
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		reviewConfig,
		args,
		createInput,
		reviewOperation,
		logDetails,
	)
	obs.RecordBusinessMetric(cmd.Context(), "review_completed", err == nil)
	if err != nil {
		return fmt.Errorf("failed to review resume: %w", err)
	}
	logger.Info("Resume review completed successfully")
	return nil
}
