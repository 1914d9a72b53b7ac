package prompts

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("analysis.json", "analyze-job-field")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "expert career advisor")
	assert.Contains(t, prompt, "{{.JobTitle}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("analysis.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("analysis.json", "schema-instructions")
		assert.Contains(t, prompt, "{{.Schema}}")
	})
}

func TestFormat(t *testing.T) {
	template := "Analyze {{.JobTitle}} using {{.Schema}}."
	data := map[string]string{
		"JobTitle": "Nurse",
		"Schema":   "{}",
	}

	result := Format(template, data)
	assert.Equal(t, "Analyze Nurse using {}.", result)
}

func TestFormat_JobTitle(t *testing.T) {
	prompt := MustGet("analysis.json", "analyze-job-field")

	result := Format(prompt, map[string]string{"JobTitle": "Développeur 👩‍💻"})
	assert.Contains(t, result, `"Développeur 👩‍💻"`)
	assert.NotContains(t, result, "{{.JobTitle}}")
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("analysis.json")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"analyze-job-field", "schema-instructions"}, keys)
}

func TestList_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := List("missing.json")
	assert.Error(t, err)
}

func TestFormat_ValueIsNotReexpanded(t *testing.T) {
	result := Format("Analyze {{.JobTitle}}", map[string]string{"JobTitle": "{{.Schema}}", "Schema": "x"})
	assert.Equal(t, "Analyze {{.Schema}}", result)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("analysis.json", "analyze-job-field")
	require.NoError(t, err)

	prompt2, err := Get("analysis.json", "analyze-job-field")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
