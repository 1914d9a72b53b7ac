// Package schemas provides JSON Schema validation functionality for structured data artifacts.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	rootschemas "github.com/jonathan/career-advisor/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns the failing field paths in report order.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return toValidationError(result)
}

var (
	analysisSchema     *gojsonschema.Schema
	analysisSchemaErr  error
	analysisSchemaOnce sync.Once
)

// loadAnalysisSchema compiles the embedded analysis schema once per process.
func loadAnalysisSchema() (*gojsonschema.Schema, error) {
	analysisSchemaOnce.Do(func() {
		data, err := rootschemas.Read(rootschemas.AnalysisResultFile)
		if err != nil {
			analysisSchemaErr = &SchemaLoadError{Path: rootschemas.AnalysisResultFile, Message: "embedded schema missing", Cause: err}
			return
		}
		analysisSchema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			analysisSchemaErr = &SchemaLoadError{Path: rootschemas.AnalysisResultFile, Message: "failed to compile schema", Cause: err}
		}
	})
	return analysisSchema, analysisSchemaErr
}

// ValidateAnalysisResult validates a raw JSON document against the embedded
// analysis_result schema. A document that is not JSON at all is reported as a
// *ValidationError on the root field.
func ValidateAnalysisResult(document []byte) error {
	schema, err := loadAnalysisSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}

	return toValidationError(result)
}

// toValidationError converts a gojsonschema result into a structured error, or nil when valid.
func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
