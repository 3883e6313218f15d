package cli

import (
	"context"
	"fmt"

	"resumefit/internal/common"
	"resumefit/internal/errors"
	"resumefit/internal/observability"
	"resumefit/internal/types"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume-file] [job-description-file]",
	Short: "Enhance a resume for a specific job description",
	Long: `Enhance your resume for a specific job description using the two-phase
AI workflow (review, then modify). The command takes two arguments: the path
to your resume as structured JSON and the path to the job description as
plain text. Enhancement rewords and reprioritizes existing content; it never
fabricates employers, dates, credentials, or metrics.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if enhanceConfig.OutputFormat == "" {
			enhanceConfig.OutputFormat = cfg.App.DefaultFormat
		}
		enhanceConfig.MaxFileSize = cfg.App.MaxFileSize
		return common.ValidateOutputFormat(enhanceConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runEnhance,
}

var (
	enhanceConfig common.CommandConfig
	enhanceMode   string
)

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	enhanceCmd.Flags().StringVar(&enhanceConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	enhanceCmd.Flags().StringVar(&enhanceMode, "mode", "", "Enhancement mode: full, bulletPoints, skills, or summary")

	_ = enhanceCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = enhanceCmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"full", "bulletPoints", "skills", "summary"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// enhanceInput carries the parsed resume and raw job description text
type enhanceInput struct {
	Resume  types.Resume
	JobText string
}

func runEnhance(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	obs := getObsFromContext(cmd.Context())

	orchestrator, fallbackManager, err := buildOrchestrator(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up enhancement workflow: %w", err)
	}

	mode := enhanceMode
	if mode == "" {
		mode = cfg.Enhancement.Mode
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
		logger.Info("Starting resume enhancement",
			"experience_entries", len(input.Resume.Experience),
			"job_chars", len(input.JobText),
			"mode", mode,
			"output_format", cmdCfg.OutputFormat)
	}

	enhanceOperation := func(ctx context.Context, input enhanceInput) (types.EnhancementResult, error) {
		var result types.EnhancementResult
		err := obs.TrackAIOperation(ctx, "enhance", func(ctx context.Context) *observability.OperationResult {
			var opErr error
			result, opErr = orchestrator.EnhanceResume(ctx, input.Resume, input.JobText, types.EnhancementOptions{
				Mode:           types.EnhancementMode(mode),
				AllowInference: cfg.Enhancement.Truthfulness.AllowInference,
				ValidateTruth:  cfg.Enhancement.ValidateTruth,
			})
			return &observability.OperationResult{Error: opErr}
		})
		return result, err
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		enhanceConfig,
		args,
		createInput,
		enhanceOperation,
		logDetails,
	)
	obs.RecordBusinessMetric(cmd.Context(), "enhancement_completed", err == nil)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrCodeTruthViolation {
			obs.RecordBusinessMetric(cmd.Context(), "truth_violation", false)
		}
		return fmt.Errorf("failed to enhance resume: %w", err)
	}

	stats := fallbackManager.Statistics()
	if stats.TotalErrors > 0 {
		logger.Info("Enhancement completed with retries",
			"total_errors", stats.TotalErrors,
			"total_retries", stats.TotalRetries,
			"successful_recoveries", stats.SuccessfulRecoveries)
	} else {
		logger.Info("Resume enhancement completed successfully")
	}
	return nil
}
