// Package llm - instructions.go renders response schemas into prompt text for
// providers that cannot take a schema as a request parameter.
package llm

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-advisor/internal/prompts"
)

// BuildSchemaPrompt appends the schema, as indented JSON Schema, to the prompt.
// A nil schema returns the prompt unchanged.
func BuildSchemaPrompt(prompt string, schema *Schema) (string, error) {
	if schema == nil {
		return prompt, nil
	}

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render schema: %w", err)
	}

	template, err := prompts.Get("analysis.json", "schema-instructions")
	if err != nil {
		return "", err
	}

	return prompts.Format(template, map[string]string{
		"Prompt": prompt,
		"Schema": string(schemaJSON),
	}), nil
}
