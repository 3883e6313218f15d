package cli

import (
	"context"

	"resumefit/internal/config"
	"resumefit/internal/errors"
	"resumefit/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type obsKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var obsKey = obsKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumefit",
	Short: "A CLI tool for enhancing resumes to match job descriptions",
	Long: `Resumefit enhances a structured resume to better match a job description
using a two-phase AI workflow: a review pass that identifies strengths,
weaknesses, and prioritized actions, followed by a modify pass that applies
them. A truthfulness validator guarantees no fabricated facts are introduced,
and a rule-based fallback keeps the tool usable without an AI provider.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, obs *observability.Manager) error {
	// Attach the config, logger, and observability manager to the context,
	// making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, obsKey, obs)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// getObsFromContext returns the observability manager, or an inert one when
// the context carries none
func getObsFromContext(ctx context.Context) *observability.Manager {
	if obs, ok := ctx.Value(obsKey).(*observability.Manager); ok && obs != nil {
		return obs
	}
	obs, _ := observability.NewManager(nil, "")
	return obs
}

func init() {
	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(versionCmd)
}
