package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, DefaultConfigFor(ProviderOpenAI), "key")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)

	client, err = NewClient(ctx, DefaultConfigFor(ProviderAnthropic), "key")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)
	assert.Equal(t, "claude-opus-4-0", client.GetModel(TierAdvanced))
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "cohere"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewClient_GeminiRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewVertexClient_RequiresProjectOrKey(t *testing.T) {
	_, err := NewVertexClient(context.Background(), DefaultConfigFor(ProviderVertex), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a project or an API key")
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	resp.Candidates[0].Content.Parts = []genai.Part{genai.Blob{MIMEType: "image/png"}}
	_, err = extractTextFromResponse(resp)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
