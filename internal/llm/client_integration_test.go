//go:build integration
// +build integration

package llm

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJSON_Integration(t *testing.T) {
	tests := []struct {
		provider Provider
		envKey   string
	}{
		{ProviderGemini, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	}

	schema, err := ParseSchema([]byte(testSchemaJSON))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			apiKey := os.Getenv(tt.envKey)
			if apiKey == "" {
				t.Skipf("%s not set, skipping integration test", tt.envKey)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			client, err := NewClient(ctx, DefaultConfigFor(tt.provider), apiKey)
			require.NoError(t, err)
			defer func() { _ = client.Close() }()

			text, err := client.GenerateJSON(ctx, JSONRequest{
				Prompt: "Describe the mathematician Ada Lovelace with two short tags.",
				Schema: schema,
				Tier:   TierLite,
			})
			require.NoError(t, err)

			var out map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(text), &out), "response should be JSON: %s", text)
			assert.NotEmpty(t, out["name"])
		})
	}
}
