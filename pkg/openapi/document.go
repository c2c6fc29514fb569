package openapi

import (
	"errors"
	"fmt"
)

// Document wraps the raw OpenAPI payload and where it came from.
type Document struct {
	location string
	raw      []byte
}

// NewDocument validates the inputs and copies raw.
func NewDocument(location string, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	clone := append([]byte(nil), raw...)
	return Document{location: location, raw: clone}, nil
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the path or name the document was loaded from.
func (d Document) Location() string {
	return d.location
}

// Operation is the subset of an OpenAPI operation needed to build a form.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Version     string
	RequestBody Schema
}

// NewOperation validates the identifying fields.
func NewOperation(id, method, path string, request Schema) (Operation, error) {
	if id == "" {
		return Operation{}, errors.New("openapi: operation id is required")
	}
	if method == "" {
		return Operation{}, errors.New("openapi: operation method is required")
	}
	if path == "" {
		return Operation{}, errors.New("openapi: operation path is required")
	}
	return Operation{ID: id, Method: method, Path: path, RequestBody: request}, nil
}

// Schema is a request body node reduced to what maps onto field kinds.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Description string
	Required    []string
	Properties  map[string]Schema
	Enum        []any
	Default     any
	MaxLength   *int
	Extensions  map[string]any
}

// IsObject reports whether the schema describes an object with properties.
func (s Schema) IsObject() bool {
	return (s.Type == "" || s.Type == "object") && len(s.Properties) > 0
}

// DebugString summarises the schema for logs.
func (s Schema) DebugString() string {
	summary := fmt.Sprintf("type=%s", s.Type)
	if s.Ref != "" {
		summary += fmt.Sprintf(",ref=%s", s.Ref)
	}
	if len(s.Required) > 0 {
		summary += fmt.Sprintf(",required=%d", len(s.Required))
	}
	if len(s.Properties) > 0 {
		summary += fmt.Sprintf(",properties=%d", len(s.Properties))
	}
	return summary
}
