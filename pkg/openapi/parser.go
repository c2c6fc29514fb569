package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ParserOptions toggles document handling.
type ParserOptions struct {
	// Validate runs kin-openapi document validation before extraction.
	Validate bool
}

// ParserOption mutates ParserOptions.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation. Enabled by default.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Operations parses doc and returns its operations keyed by operationId.
// Operations without an id are keyed "<method>:<path>".
func Operations(ctx context.Context, doc Document, options ...ParserOption) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}
	opts := NewParserOptions(options...)

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if opts.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi parser: document does not contain any paths")
	}

	version := ""
	if spec.Info != nil {
		version = spec.Info.Version
	}

	operations := make(map[string]Operation)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			op, err := NewOperation(id, strings.ToUpper(method), path, extractRequestSchema(operation.RequestBody))
			if err != nil {
				continue
			}
			op.Summary = operation.Summary
			op.Version = version
			operations[id] = op
		}
	}
	return operations, nil
}

// OperationIDs lists the operation ids of doc in sorted order.
func OperationIDs(ctx context.Context, doc Document, options ...ParserOption) ([]string, error) {
	operations, err := Operations(ctx, doc, options...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func extractRequestSchema(body *openapi3.RequestBodyRef) Schema {
	if body == nil {
		return Schema{}
	}
	if body.Value == nil {
		return Schema{Ref: body.Ref}
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return convertSchema(mt.Schema, 0)
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return convertSchema(mt.Schema, 0)
		}
	}
	return Schema{}
}

// maxDepth stops recursive $ref chains; only top-level properties become
// fields so nested detail past that point is never read.
const maxDepth = 2

func convertSchema(ref *openapi3.SchemaRef, depth int) Schema {
	if ref == nil {
		return Schema{}
	}
	if ref.Value == nil {
		return Schema{Ref: ref.Ref}
	}
	src := ref.Value
	out := Schema{
		Ref:         ref.Ref,
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		out.MaxLength = &value
	}
	if len(src.Extensions) > 0 {
		out.Extensions = make(map[string]any, len(src.Extensions))
		for key, value := range src.Extensions {
			out.Extensions[key] = value
		}
	}
	if depth < maxDepth && len(src.Properties) > 0 {
		out.Properties = make(map[string]Schema, len(src.Properties))
		for name, property := range src.Properties {
			out.Properties[name] = convertSchema(property, depth+1)
		}
	}
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}
