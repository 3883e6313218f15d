package cli

import (
	"context"
	"fmt"

	"resumefit/internal/ats"
	"resumefit/internal/common"
	"resumefit/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]",
	Short: "Score a resume for ATS compatibility",
	Long: `Score a resume for applicant-tracking-system compatibility. Scoring is
deterministic and local; no AI provider is involved.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		scoreConfig.MaxFileSize = cfg.App.MaxFileSize
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runScore(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (types.Resume, error) {
		if len(contents) != 1 {
			return types.Resume{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return common.ParseResume(contents[0])
	}

	logDetails := func(input types.Resume, cmdCfg common.CommandConfig) {
		logger.Info("Scoring resume for ATS compatibility",
			"experience_entries", len(input.Experience),
			"output_format", cmdCfg.OutputFormat)
	}

	scoreOperation := func(ctx context.Context, input types.Resume) (ats.Score, error) {
		return ats.ScoreResume(input), nil
	}

	err := common.RunCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args,
		createInput,
		scoreOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	return nil
}
