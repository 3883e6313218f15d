package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEFIT_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Enhancement   EnhancementConfig   `mapstructure:"enhancement"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	// Prompt content loaded from external files, keyed the same way as
	// CustomPrompts. Populated by loadPromptsFromFiles.
	LoadedPrompts LoadedPrompts `mapstructure:"-"`
}

// EnhancementConfig holds orchestrator-level configuration
type EnhancementConfig struct {
	Mode            string             `mapstructure:"mode"`            // full, bulletPoints, skills, summary
	FallbackToRules bool               `mapstructure:"fallbackToRules"` // substitute the rule-based enhancer when AI is unavailable or fails
	ValidateTruth   bool               `mapstructure:"validateTruth"`
	Truthfulness    TruthfulnessConfig `mapstructure:"truthfulness"`
}

// TruthfulnessConfig holds truthfulness validator configuration
type TruthfulnessConfig struct {
	AllowInference      bool                `mapstructure:"allowInference"`
	Strictness          string              `mapstructure:"strictness"` // lenient, moderate, strict
	GenerateSuggestions bool                `mapstructure:"generateSuggestions"`
	Inference           InferencePolicyFile `mapstructure:"inference"`
}

// InferencePolicyFile points at and extends the skill inference table
type InferencePolicyFile struct {
	TableFile string              `mapstructure:"tableFile"` // optional JSON file: {"skill": ["related term", ...]}
	Extra     map[string][]string `mapstructure:"extra"`     // inline additions merged over the seed table
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("RESUMEFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumefit/")
	v.AddConfigPath("$HOME/.resumefit")
	v.AddConfigPath(".")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply fallback logic
	config.applyFallbacks()

	// Load custom prompts from external files
	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.retryDelayBase", time.Second)
	v.SetDefault("ai.maxRetryDelay", 30*time.Second)
	v.SetDefault("ai.retryOnRateLimit", true)
	v.SetDefault("ai.retryOnNetworkError", true)
	v.SetDefault("ai.retryOnTimeout", true)
	v.SetDefault("ai.retryOnInvalidResponse", false)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.costLimitUSD", 0.0) // 0 disables the limit
	v.SetDefault("ai.rateLimitPerMin", 0)

	// AI Configuration - Review operation defaults
	v.SetDefault("ai.review.provider", "gemini")
	v.SetDefault("ai.review.model", "")
	v.SetDefault("ai.review.timeout", 60*time.Second)
	v.SetDefault("ai.review.maxRetries", 3)
	v.SetDefault("ai.review.temperature", 0.2) // Low temperature for consistent analysis

	// AI Configuration - Modify operation defaults
	v.SetDefault("ai.modify.provider", "gemini")
	v.SetDefault("ai.modify.model", "")
	v.SetDefault("ai.modify.timeout", 90*time.Second) // Longer timeout for generation
	v.SetDefault("ai.modify.maxRetries", 2)
	v.SetDefault("ai.modify.temperature", 0.3)

	// Circuit Breaker defaults for both operations
	for _, op := range []string{"review", "modify"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Enhancement Configuration
	v.SetDefault("enhancement.mode", "full")
	v.SetDefault("enhancement.fallbackToRules", true)
	v.SetDefault("enhancement.validateTruth", true)
	v.SetDefault("enhancement.truthfulness.allowInference", true)
	v.SetDefault("enhancement.truthfulness.strictness", "moderate")
	v.SetDefault("enhancement.truthfulness.generateSuggestions", true)
	v.SetDefault("enhancement.truthfulness.inference.tableFile", "")

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumefit")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("AI maxRetries must not be negative")
	}

	switch c.Enhancement.Mode {
	case "full", "bulletPoints", "skills", "summary":
	default:
		return fmt.Errorf("invalid enhancement mode: %s", c.Enhancement.Mode)
	}

	switch c.Enhancement.Truthfulness.Strictness {
	case "lenient", "moderate", "strict":
	default:
		return fmt.Errorf("invalid truthfulness strictness: %s", c.Enhancement.Truthfulness.Strictness)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}
