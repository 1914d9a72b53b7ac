package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("no text in response")

// JSONRequest describes a structured-output call.
type JSONRequest struct {
	Prompt string
	// Schema constrains the response shape. Nil means any JSON value.
	Schema *Schema
	// Temperature overrides the configured sampling temperature when non-nil.
	Temperature *float32
	Tier        ModelTier
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates a JSON document constrained by req.Schema
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderVertex:
		return NewVertexClient(ctx, config, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// Float32 returns a pointer to v, for JSONRequest.Temperature.
func Float32(v float32) *float32 {
	return &v
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier, nil)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON asks Gemini for an application/json response constrained by the request schema
func (c *GeminiClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	model, err := c.model(req.Tier, req.Temperature)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = toGeminiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) model(tier ModelTier, temperature *float32) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.temperature(temperature))
	model.SetMaxOutputTokens(int32(c.config.maxTokens()))
	return model, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response: %w", ErrEmptyResponse)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response: %w", ErrEmptyResponse)
	}

	return strings.Join(parts, ""), nil
}

// toGeminiSchema converts a Schema to the generative-ai-go representation.
func toGeminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Items:       toGeminiSchema(s.Items),
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

func geminiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeBoolean:
		return genai.TypeBoolean
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	default:
		return genai.TypeUnspecified
	}
}
