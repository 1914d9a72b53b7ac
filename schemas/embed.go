// Package schemas holds the JSON Schema documents shipped with the binary.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// AnalysisResultFile is the schema describing a single career analysis.
const AnalysisResultFile = "analysis_result.schema.json"

// Read returns the raw contents of an embedded schema file.
func Read(name string) ([]byte, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema %s: %w", name, err)
	}
	return data, nil
}

// MustRead is like Read but panics if the schema is missing.
// Use this for schemas that are required at initialization time.
func MustRead(name string) []byte {
	data, err := Read(name)
	if err != nil {
		panic(err)
	}
	return data
}
