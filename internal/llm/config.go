// Package llm provides the provider-neutral client used to reach the remote text-generation service.
// Model tiers keep call sites independent of the concrete model names of each provider.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, fast calls
	TierLite ModelTier = "lite"
	// TierStandard is for structured output at moderate cost
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the most capable model a provider offers
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini API reached through generative-ai-go
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini served by Vertex AI through the genai SDK
	ProviderVertex Provider = "vertex"
	// ProviderOpenAI is the OpenAI chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic messages API
	ProviderAnthropic Provider = "anthropic"
)

const (
	// DefaultTemperature is used by GenerateContent and by JSON requests that do not set one.
	DefaultTemperature float32 = 0.7
	// DefaultMaxTokens bounds the response length for providers that require a limit.
	DefaultMaxTokens = 8192
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	MaxTokens   int

	// BaseURL overrides the provider endpoint. Empty means the SDK default.
	BaseURL string
	// Project and Location select the Vertex AI deployment. Only read by ProviderVertex.
	Project  string
	Location string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// DefaultConfigFor returns the default configuration for a provider.
func DefaultConfigFor(provider Provider) *Config {
	cfg := DefaultGeminiConfig()
	cfg.Provider = provider

	switch provider {
	case ProviderVertex:
		cfg.Location = "us-central1"
	case ProviderOpenAI:
		cfg.Models = map[ModelTier]string{
			TierLite:     "gpt-4.1-nano",
			TierStandard: "gpt-4.1-mini",
			TierAdvanced: "gpt-4.1",
		}
	case ProviderAnthropic:
		cfg.Models = map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-0",
			TierAdvanced: "claude-opus-4-0",
		}
	}
	return cfg
}

// ParseProvider converts a user-supplied name into a Provider.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderVertex, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	case "claude":
		return ProviderAnthropic, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", name)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// temperature returns the request temperature, falling back to the config value.
func (c *Config) temperature(override *float32) float32 {
	if override != nil {
		return *override
	}
	if c.Temperature == 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

func (c *Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
