package config

import "time"

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider               string        `mapstructure:"provider"`
	Model                  string        `mapstructure:"model"`
	Timeout                time.Duration `mapstructure:"timeout"`
	APIKey                 string        `mapstructure:"apiKey"`
	MaxRetries             int           `mapstructure:"maxRetries"`
	RetryDelayBase         time.Duration `mapstructure:"retryDelayBase"`
	MaxRetryDelay          time.Duration `mapstructure:"maxRetryDelay"`
	RetryOnRateLimit       bool          `mapstructure:"retryOnRateLimit"`
	RetryOnNetworkError    bool          `mapstructure:"retryOnNetworkError"`
	RetryOnTimeout         bool          `mapstructure:"retryOnTimeout"`
	RetryOnInvalidResponse bool          `mapstructure:"retryOnInvalidResponse"`
	Temperature            float32       `mapstructure:"temperature"`
	UseSystemPrompts       bool          `mapstructure:"useSystemPrompts"`
	CostLimitUSD           float64       `mapstructure:"costLimitUSD"`
	RateLimitPerMin        int           `mapstructure:"rateLimitPerMin"`
	CustomPrompts          PromptConfig  `mapstructure:"customPrompts"`

	// Operation-specific configurations
	Review OperationAIConfig `mapstructure:"review"`
	Modify OperationAIConfig `mapstructure:"modify"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for a specific operation
type OperationAIConfig struct {
	Provider               string               `mapstructure:"provider"`
	Model                  string               `mapstructure:"model"`
	Timeout                *time.Duration       `mapstructure:"timeout"`
	APIKey                 string               `mapstructure:"apiKey"`
	MaxRetries             *int                 `mapstructure:"maxRetries"`
	RetryDelayBase         *time.Duration       `mapstructure:"retryDelayBase"`
	MaxRetryDelay          *time.Duration       `mapstructure:"maxRetryDelay"`
	RetryOnRateLimit       *bool                `mapstructure:"retryOnRateLimit"`
	RetryOnNetworkError    *bool                `mapstructure:"retryOnNetworkError"`
	RetryOnTimeout         *bool                `mapstructure:"retryOnTimeout"`
	RetryOnInvalidResponse *bool                `mapstructure:"retryOnInvalidResponse"`
	Temperature            *float32             `mapstructure:"temperature"`
	UseSystemPrompts       *bool                `mapstructure:"useSystemPrompts"`
	CostLimitUSD           *float64             `mapstructure:"costLimitUSD"`
	RateLimitPerMin        *int                 `mapstructure:"rateLimitPerMin"`
	CustomPrompts          PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker         CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `mapstructure:"systemPrompts"`
	UserPrompts   UserPrompts   `mapstructure:"userPrompts"`
}

// SystemPrompts contains system-level instructions
type SystemPrompts struct {
	ReviewResume     string `mapstructure:"reviewResume"`
	ReviewResumeFile string `mapstructure:"reviewResumeFile"`
	ModifyResume     string `mapstructure:"modifyResume"`
	ModifyResumeFile string `mapstructure:"modifyResumeFile"`
}

// UserPrompts contains user-level prompt templates
type UserPrompts struct {
	ReviewResume     string `mapstructure:"reviewResume"`
	ReviewResumeFile string `mapstructure:"reviewResumeFile"`
	ModifyResume     string `mapstructure:"modifyResume"`
	ModifyResumeFile string `mapstructure:"modifyResumeFile"`
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.RetryDelayBase == nil {
		opCfg.RetryDelayBase = &c.AI.RetryDelayBase
	}
	if opCfg.MaxRetryDelay == nil {
		opCfg.MaxRetryDelay = &c.AI.MaxRetryDelay
	}
	if opCfg.RetryOnRateLimit == nil {
		opCfg.RetryOnRateLimit = &c.AI.RetryOnRateLimit
	}
	if opCfg.RetryOnNetworkError == nil {
		opCfg.RetryOnNetworkError = &c.AI.RetryOnNetworkError
	}
	if opCfg.RetryOnTimeout == nil {
		opCfg.RetryOnTimeout = &c.AI.RetryOnTimeout
	}
	if opCfg.RetryOnInvalidResponse == nil {
		opCfg.RetryOnInvalidResponse = &c.AI.RetryOnInvalidResponse
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
	if opCfg.CostLimitUSD == nil {
		opCfg.CostLimitUSD = &c.AI.CostLimitUSD
	}
	if opCfg.RateLimitPerMin == nil {
		opCfg.RateLimitPerMin = &c.AI.RateLimitPerMin
	}
}

// GetReviewConfig returns the AI configuration for review operations with fallback to global config
func (c *Config) GetReviewConfig() OperationAIConfig {
	config := c.AI.Review

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ReviewResume == "" {
		config.CustomPrompts.SystemPrompts.ReviewResume = c.AI.CustomPrompts.SystemPrompts.ReviewResume
	}
	if config.CustomPrompts.UserPrompts.ReviewResume == "" {
		config.CustomPrompts.UserPrompts.ReviewResume = c.AI.CustomPrompts.UserPrompts.ReviewResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ReviewResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ReviewResumeFile = c.AI.CustomPrompts.SystemPrompts.ReviewResumeFile
	}
	if config.CustomPrompts.UserPrompts.ReviewResumeFile == "" {
		config.CustomPrompts.UserPrompts.ReviewResumeFile = c.AI.CustomPrompts.UserPrompts.ReviewResumeFile
	}

	return config
}

// GetModifyConfig returns the AI configuration for modify operations with fallback to global config
func (c *Config) GetModifyConfig() OperationAIConfig {
	config := c.AI.Modify

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ModifyResume == "" {
		config.CustomPrompts.SystemPrompts.ModifyResume = c.AI.CustomPrompts.SystemPrompts.ModifyResume
	}
	if config.CustomPrompts.UserPrompts.ModifyResume == "" {
		config.CustomPrompts.UserPrompts.ModifyResume = c.AI.CustomPrompts.UserPrompts.ModifyResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ModifyResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ModifyResumeFile = c.AI.CustomPrompts.SystemPrompts.ModifyResumeFile
	}
	if config.CustomPrompts.UserPrompts.ModifyResumeFile == "" {
		config.CustomPrompts.UserPrompts.ModifyResumeFile = c.AI.CustomPrompts.UserPrompts.ModifyResumeFile
	}

	return config
}
