package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadedPrompts holds prompt content loaded from external files. File-loaded
// content has the highest precedence, above inline config values and the
// compiled-in defaults.
type LoadedPrompts struct {
	ReviewSystem string
	ReviewUser   string
	ModifySystem string
	ModifyUser   string
}

// loadPromptsFromFiles loads custom prompts from external files if file paths
// are specified. Operation-level file paths win over global ones.
func (c *Config) loadPromptsFromFiles() error {
	reviewCfg := c.GetReviewConfig()
	modifyCfg := c.GetModifyConfig()

	var err error
	if c.LoadedPrompts.ReviewSystem, err = loadPromptFile(reviewCfg.CustomPrompts.SystemPrompts.ReviewResumeFile); err != nil {
		return fmt.Errorf("review system prompt: %w", err)
	}
	if c.LoadedPrompts.ReviewUser, err = loadPromptFile(reviewCfg.CustomPrompts.UserPrompts.ReviewResumeFile); err != nil {
		return fmt.Errorf("review user prompt: %w", err)
	}
	if c.LoadedPrompts.ModifySystem, err = loadPromptFile(modifyCfg.CustomPrompts.SystemPrompts.ModifyResumeFile); err != nil {
		return fmt.Errorf("modify system prompt: %w", err)
	}
	if c.LoadedPrompts.ModifyUser, err = loadPromptFile(modifyCfg.CustomPrompts.UserPrompts.ModifyResumeFile); err != nil {
		return fmt.Errorf("modify user prompt: %w", err)
	}

	return nil
}

// loadPromptFile reads one prompt file; an empty path is not an error
func loadPromptFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}

	return text, nil
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// An empty result means the caller should fall back to its compiled-in default.
func resolvePrompt(loadedFromFile, fromConfig string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	return fromConfig
}

// ReviewPrompts returns the resolved system and user prompt overrides for the
// review operation. Empty strings mean no override is configured.
func (c *Config) ReviewPrompts() (system, user string) {
	reviewCfg := c.GetReviewConfig()
	return resolvePrompt(c.LoadedPrompts.ReviewSystem, reviewCfg.CustomPrompts.SystemPrompts.ReviewResume),
		resolvePrompt(c.LoadedPrompts.ReviewUser, reviewCfg.CustomPrompts.UserPrompts.ReviewResume)
}

// ModifyPrompts returns the resolved system and user prompt overrides for the
// modify operation. Empty strings mean no override is configured.
func (c *Config) ModifyPrompts() (system, user string) {
	modifyCfg := c.GetModifyConfig()
	return resolvePrompt(c.LoadedPrompts.ModifySystem, modifyCfg.CustomPrompts.SystemPrompts.ModifyResume),
		resolvePrompt(c.LoadedPrompts.ModifyUser, modifyCfg.CustomPrompts.UserPrompts.ModifyResume)
}
