package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for the OpenAI chat completions API
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	req, err := c.request(prompt, tier, nil)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, req)
}

// GenerateJSON uses the json_schema response format when a schema is given,
// and plain JSON mode otherwise.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	chatReq, err := c.request(req.Prompt, req.Tier, req.Temperature)
	if err != nil {
		return "", err
	}

	if req.Schema != nil {
		schemaJSON, err := req.Schema.JSON()
		if err != nil {
			return "", err
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "response",
				Schema: schemaJSON,
				// Strict mode requires additionalProperties:false on every object.
				Strict: false,
			},
		}
	} else {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	text, err := c.complete(ctx, chatReq)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) request(prompt string, tier ModelTier, temperature *float32) (openai.ChatCompletionRequest, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("no model configured for tier %s", tier)
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.config.temperature(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// Reasoning models reject MaxTokens and a non-default temperature.
	if isReasoningModel(model) {
		req.MaxCompletionTokens = c.config.maxTokens()
		req.Temperature = 0
	} else {
		req.MaxTokens = c.config.maxTokens()
	}
	return req, nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty message content: %w", ErrEmptyResponse)
	}
	return text, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op for the HTTP-based OpenAI client
func (c *OpenAIClient) Close() error {
	return nil
}
