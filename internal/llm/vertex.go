package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// VertexClient implements Client for Gemini models served by Vertex AI.
// With a project configured it authenticates through Application Default
// Credentials; otherwise the API key is used in Vertex express mode.
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a new Vertex AI client
func NewVertexClient(ctx context.Context, config *Config, apiKey string) (*VertexClient, error) {
	cc := &genai.ClientConfig{
		Backend: genai.BackendVertexAI,
	}
	switch {
	case config.Project != "":
		cc.Project = config.Project
		cc.Location = config.Location
	case apiKey != "":
		cc.APIKey = apiKey
	default:
		return nil, fmt.Errorf("vertex provider requires a project or an API key")
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexClient{client: client, config: config}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *VertexClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.config.temperature(nil)),
	})
}

// GenerateJSON generates a schema-constrained JSON document
func (c *VertexClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	text, err := c.generate(ctx, req.Prompt, req.Tier, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.config.temperature(req.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toVertexSchema(req.Schema),
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *VertexClient) generate(ctx context.Context, prompt string, tier ModelTier, cfg *genai.GenerateContentConfig) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	cfg.MaxOutputTokens = int32(c.config.maxTokens())

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no long-lived connections.
func (c *VertexClient) Close() error {
	return nil
}

func toVertexSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(string(s.Type))),
		Description: s.Description,
		Items:       toVertexSchema(s.Items),
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toVertexSchema(prop)
		}
	}
	return out
}
