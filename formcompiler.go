// Package formcompiler validates form definitions, compiles them into cached
// schemas and validates submitted data, through a lazily created default
// service or one built with New.
package formcompiler

import (
	"sync"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/schema"
	"github.com/goliatone/go-formcompiler/pkg/validation"
	"github.com/goliatone/go-formcompiler/pkg/visibility"
)

// FormDefinition aliases definition.FormDefinition for callers that only
// import the root package.
type FormDefinition = definition.FormDefinition

// FieldDefinition aliases definition.FieldDefinition.
type FieldDefinition = definition.FieldDefinition

// Result aliases validation.Result.
type Result = validation.Result

// Issue aliases validation.Issue.
type Issue = validation.Issue

// VisibilityMap aliases visibility.Map.
type VisibilityMap = visibility.Map

var (
	defaultOnce    sync.Once
	defaultService *validation.Service
)

// New exposes the service constructor from the top-level module.
func New(options ...validation.Option) *validation.Service {
	return validation.New(options...)
}

// Default returns the process-wide service used by the package-level helpers.
// It is created on first use with a cache of validation.DefaultCacheSize.
func Default() *validation.Service {
	defaultOnce.Do(func() {
		defaultService = validation.New(validation.WithCacheSize(validation.DefaultCacheSize))
	})
	return defaultService
}

// ValidateMetadata checks def against the structural rules without compiling it.
func ValidateMetadata(def FormDefinition) Result {
	return Default().ValidateMetadata(def)
}

// Compile returns the cached schema for def, compiling it on first use.
func Compile(def FormDefinition) (*schema.Schema, error) {
	return Default().Compile(def)
}

// Validate compiles def and validates data against it.
func Validate(data map[string]any, def FormDefinition) Result {
	return Default().Validate(data, def)
}

// ComputeVisibility evaluates the conditions of def against values.
func ComputeVisibility(def FormDefinition, values map[string]any) (VisibilityMap, error) {
	return Default().ComputeVisibility(def, values)
}

// ClearCache empties the default service cache.
func ClearCache() {
	Default().ClearCache()
}
