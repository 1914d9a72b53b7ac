// Package config provides configuration loading and validation for the server and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/logging"
)

// Defaults applied by MergeWithDefaults.
const (
	DefaultPort              = 8080
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 2 * time.Minute
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultRequestTimeout    = 90 * time.Second
	DefaultRequestsPerMinute = 120
	DefaultAnalysesPerHour   = 30
	DefaultAnalysisBurst     = 3
)

// Config is the full application configuration. It can be loaded from a YAML
// file; JSON documents are accepted too since they parse as YAML.
type Config struct {
	Server  ServerConfig   `yaml:"server" json:"server"`
	LLM     LLMConfig      `yaml:"llm" json:"llm"`
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port" json:"port" validate:"min=1,max=65535"`
	// PublicBaseURL is the address share links point at. Empty means derive it from the request.
	PublicBaseURL   string        `yaml:"public_base_url" json:"public_base_url" validate:"omitempty,url"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins"`

	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig sets per-client request budgets.
type RateLimitConfig struct {
	Disabled          bool     `yaml:"disabled" json:"disabled"`
	RequestsPerMinute int      `yaml:"requests_per_minute" json:"requests_per_minute"`
	AnalysesPerHour   int      `yaml:"analyses_per_hour" json:"analyses_per_hour"`
	AnalysisBurst     int      `yaml:"analysis_burst" json:"analysis_burst"`
	Whitelist         []string `yaml:"whitelist" json:"whitelist"`
}

// LLMConfig selects and tunes the remote text-generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider" json:"provider" validate:"omitempty,oneof=gemini vertex openai anthropic claude"`
	// Model overrides the provider's standard-tier model.
	Model       string        `yaml:"model" json:"model"`
	APIKey      string        `yaml:"api_key" json:"api_key"`
	Temperature *float32      `yaml:"temperature" json:"temperature" validate:"omitempty,min=0,max=2"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	BaseURL     string        `yaml:"base_url" json:"base_url" validate:"omitempty,url"`
	Project     string        `yaml:"project" json:"project"`
	Location    string        `yaml:"location" json:"location"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: DefaultRequestsPerMinute,
				AnalysesPerHour:   DefaultAnalysesPerHour,
				AnalysisBurst:     DefaultAnalysisBurst,
			},
		},
		LLM: LLMConfig{
			Provider: string(llm.ProviderGemini),
			Timeout:  DefaultRequestTimeout,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Load builds the effective configuration: .env files, the optional config
// file, defaults, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(Default())
	merged.ApplyEnv(os.Getenv)

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a YAML or JSON file.
// ${VAR} references in the file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// expandEnv replaces ${VAR} and $VAR with environment values, leaving unknown
// references untouched.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if base := getenv("PUBLIC_BASE_URL"); base != "" {
		c.Server.PublicBaseURL = base
	}
	if origins := getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
	if enabled := getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			c.Server.RateLimit.Disabled = !b
		}
	}

	if provider := getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if model := getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if base := getenv("LLM_BASE_URL"); base != "" {
		c.LLM.BaseURL = base
	}
	if timeout := getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.LLM.Timeout = d
		}
	}
	if project := getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		c.LLM.Project = project
	}
	if location := getenv("GOOGLE_CLOUD_LOCATION"); location != "" {
		c.LLM.Location = location
	}
	if key := providerAPIKey(c.LLM.Provider, getenv); key != "" {
		c.LLM.APIKey = key
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := getenv("LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// providerAPIKey returns the key for the provider, preferring the
// provider-specific variable over LLM_API_KEY.
func providerAPIKey(provider string, getenv func(string) string) string {
	var names []string
	switch p, _ := llm.ParseProvider(provider); p {
	case llm.ProviderGemini, llm.ProviderVertex:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case llm.ProviderOpenAI:
		names = []string{"OPENAI_API_KEY"}
	case llm.ProviderAnthropic:
		names = []string{"ANTHROPIC_API_KEY"}
	}
	names = append(names, "LLM_API_KEY")

	for _, name := range names {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks that the configuration has valid values.
// The API key is not required here: commands that never reach the provider
// (share encode/decode) run without one.
func (c *Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New()
	})

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}

	if _, err := logging.New(c.Logging, nil); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	s, d := &result.Server, defaults.Server
	if s.Port == 0 {
		s.Port = d.Port
	}
	if s.PublicBaseURL == "" {
		s.PublicBaseURL = d.PublicBaseURL
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = d.ReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = d.WriteTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = d.ShutdownTimeout
	}
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = d.AllowedOrigins
	}
	if s.RateLimit.RequestsPerMinute == 0 {
		s.RateLimit.RequestsPerMinute = d.RateLimit.RequestsPerMinute
	}
	if s.RateLimit.AnalysesPerHour == 0 {
		s.RateLimit.AnalysesPerHour = d.RateLimit.AnalysesPerHour
	}
	if s.RateLimit.AnalysisBurst == 0 {
		s.RateLimit.AnalysisBurst = d.RateLimit.AnalysisBurst
	}

	l, dl := &result.LLM, defaults.LLM
	if l.Provider == "" {
		l.Provider = dl.Provider
	}
	if l.Model == "" {
		l.Model = dl.Model
	}
	if l.APIKey == "" {
		l.APIKey = dl.APIKey
	}
	if l.Temperature == nil {
		l.Temperature = dl.Temperature
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = dl.MaxTokens
	}
	if l.Timeout == 0 {
		l.Timeout = dl.Timeout
	}
	if l.BaseURL == "" {
		l.BaseURL = dl.BaseURL
	}
	if l.Project == "" {
		l.Project = dl.Project
	}
	if l.Location == "" {
		l.Location = dl.Location
	}

	if result.Logging.Level == "" {
		result.Logging.Level = defaults.Logging.Level
	}
	if result.Logging.Format == "" {
		result.Logging.Format = defaults.Logging.Format
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// ClientConfig converts the LLM section into an llm.Config.
func (c *Config) ClientConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return nil, err
	}

	cfg := llm.DefaultConfigFor(provider)
	if c.LLM.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.LLM.Model)
	}
	if c.LLM.Temperature != nil {
		cfg.Temperature = *c.LLM.Temperature
	}
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	cfg.BaseURL = c.LLM.BaseURL
	cfg.Project = c.LLM.Project
	if c.LLM.Location != "" {
		cfg.Location = c.LLM.Location
	}
	return cfg, nil
}
