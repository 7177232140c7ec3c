// Package apispec models a parsed API-description document and builds the
// endpoint index used to reconcile discovered routes against declared ones.
package apispec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the subset of an OpenAPI-shaped description this tool reads.
// YAML and JSON inputs both parse through yaml.v3.
type Document struct {
	OpenAPI    string              `yaml:"openapi" json:"openapi"`
	Info       Info                `yaml:"info" json:"info"`
	Paths      map[string]PathItem `yaml:"paths" json:"paths"`
	Components Components          `yaml:"components" json:"components"`
}

// Info carries document identity; only used for reporting.
type Info struct {
	Title   string `yaml:"title" json:"title"`
	Version string `yaml:"version" json:"version"`
}

// PathItem maps a lowercase HTTP method to its operation.
type PathItem map[string]*Operation

// Operation is one declared endpoint operation.
type Operation struct {
	OperationID string               `yaml:"operationId" json:"operationId"`
	Summary     string               `yaml:"summary" json:"summary"`
	RequestBody *RequestBody         `yaml:"requestBody" json:"requestBody"`
	Responses   map[string]*Response `yaml:"responses" json:"responses"`
}

// RequestBody describes the declared request payload.
type RequestBody struct {
	Required bool                 `yaml:"required" json:"required"`
	Content  map[string]MediaType `yaml:"content" json:"content"`
}

// Response describes one declared response status.
type Response struct {
	Description string               `yaml:"description" json:"description"`
	Content     map[string]MediaType `yaml:"content" json:"content"`
}

// MediaType wraps the schema for one content type.
type MediaType struct {
	Schema *SchemaObject `yaml:"schema" json:"schema"`
}

// Components holds the document's reusable schema definitions.
type Components struct {
	Schemas map[string]*SchemaObject `yaml:"schemas" json:"schemas"`
}

// SchemaObject is a JSON-Schema-shaped node that may instead be an internal
// reference to a component schema.
type SchemaObject struct {
	Ref        string                   `yaml:"$ref" json:"$ref,omitempty"`
	Type       string                   `yaml:"type" json:"type,omitempty"`
	Properties map[string]*SchemaObject `yaml:"properties" json:"properties,omitempty"`
	Required   []string                 `yaml:"required" json:"required,omitempty"`
	Items      *SchemaObject            `yaml:"items" json:"items,omitempty"`
	Minimum    *float64                 `yaml:"minimum" json:"minimum,omitempty"`
	Maximum    *float64                 `yaml:"maximum" json:"maximum,omitempty"`
	MinLength  *int                     `yaml:"minLength" json:"minLength,omitempty"`
	MaxLength  *int                     `yaml:"maxLength" json:"maxLength,omitempty"`
	Pattern    string                   `yaml:"pattern" json:"pattern,omitempty"`
	Format     string                   `yaml:"format" json:"format,omitempty"`
	Enum       []any                    `yaml:"enum" json:"enum,omitempty"`
}

// LoadDocument reads and parses an API-description document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read api document: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument parses document bytes (YAML or JSON).
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse api document: %w", err)
	}
	if len(doc.Paths) == 0 {
		return nil, fmt.Errorf("api document declares no paths")
	}
	return &doc, nil
}
