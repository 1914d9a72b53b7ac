package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client for the Anthropic messages API.
// The API has no response-schema parameter, so GenerateJSON renders the
// schema into the prompt.
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		// One outbound attempt per request; callers decide whether to try again.
		anthropicoption.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(config.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, nil)
}

// GenerateJSON generates a JSON document following the schema embedded in the prompt
func (c *AnthropicClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	prompt, err := BuildSchemaPrompt(req.Prompt, req.Schema)
	if err != nil {
		return "", err
	}

	text, err := c.generate(ctx, prompt, req.Tier, req.Temperature)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *AnthropicClient) generate(ctx context.Context, prompt string, tier ModelTier, temperature *float32) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.config.maxTokens()),
		Temperature: anthropic.Float(float64(c.config.temperature(temperature))),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, block.AsText().Text)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", fmt.Errorf("no text content in Anthropic response: %w", ErrEmptyResponse)
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op for the HTTP-based Anthropic client
func (c *AnthropicClient) Close() error {
	return nil
}
