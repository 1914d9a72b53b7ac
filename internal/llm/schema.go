package llm

import (
	"encoding/json"
	"fmt"
)

// SchemaType is a JSON Schema primitive type name.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
)

// Schema describes the shape of a structured response in a provider-neutral way.
// It is the subset of JSON Schema every supported provider understands; keywords
// outside that subset are dropped when a document is parsed.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// ParseSchema reads a JSON Schema document into a Schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.check("(root)"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) check(path string) error {
	switch s.Type {
	case TypeObject:
		for _, name := range s.Required {
			if _, ok := s.Properties[name]; !ok {
				return fmt.Errorf("schema %s: required property %q is not declared", path, name)
			}
		}
		for name, prop := range s.Properties {
			if prop == nil {
				return fmt.Errorf("schema %s.%s: empty property", path, name)
			}
			if err := prop.check(path + "." + name); err != nil {
				return err
			}
		}
	case TypeArray:
		if s.Items == nil {
			return fmt.Errorf("schema %s: array without items", path)
		}
		return s.Items.check(path + "[]")
	case TypeString, TypeBoolean, TypeNumber, TypeInteger:
	default:
		return fmt.Errorf("schema %s: unsupported type %q", path, s.Type)
	}
	return nil
}

// JSON renders the schema as a JSON Schema document.
func (s *Schema) JSON() (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
