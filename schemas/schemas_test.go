package schemas_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/career-advisor/internal/schemas"
	rootschemas "github.com/jonathan/career-advisor/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaFiles = []string{
	rootschemas.AnalysisResultFile,
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			err = json.Unmarshal(data, &v)
			assert.NoError(t, err, "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_EmbeddedMatchesDisk(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			onDisk, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err)

			embedded, err := rootschemas.Read(schemaFile)
			require.NoError(t, err)
			assert.Equal(t, onDisk, embedded)
		})
	}
}

func TestAnalysisResultSchema_RequiredKeys(t *testing.T) {
	var schemaObj struct {
		Type     string                     `json:"type"`
		Required []string                   `json:"required"`
		Props    map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(rootschemas.MustRead(rootschemas.AnalysisResultFile), &schemaObj))

	assert.Equal(t, "object", schemaObj.Type)
	assert.ElementsMatch(t, []string{
		"jobTitle", "aiImpact", "skillHistory", "currentAiDevelopments",
		"recommendedCourses", "relevantApis", "onlineCommunities",
	}, schemaObj.Required)
	for _, key := range schemaObj.Required {
		assert.Contains(t, schemaObj.Props, key, "required key %s should be declared", key)
	}
}

func TestAnalysisResultSchema_AcceptsMinimalDocument(t *testing.T) {
	doc := `{
		"jobTitle": "Accountant",
		"aiImpact": "Automation of reconciliation.",
		"skillHistory": "Ledgers, then spreadsheets.",
		"currentAiDevelopments": "LLM copilots for audit.",
		"recommendedCourses": [],
		"relevantApis": [],
		"onlineCommunities": []
	}`

	err := schemas.ValidateJSONString(string(rootschemas.MustRead(rootschemas.AnalysisResultFile)), doc)
	assert.NoError(t, err)
}

func TestRead_UnknownFile(t *testing.T) {
	_, err := rootschemas.Read("missing.schema.json")
	assert.Error(t, err)
	assert.Panics(t, func() { rootschemas.MustRead("missing.schema.json") })
}
