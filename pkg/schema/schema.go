package schema

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-formcompiler/pkg/definition"
)

// Schema is a compiled form definition.
type Schema struct {
	id      uuid.UUID
	key     string
	version string
	fields  []definition.FieldDefinition
	rules   []Rule
	byName  map[string]int
	order   []string
}

// ID identifies this compiled instance. Two builds of the same definition get
// different ids but share the same Key.
func (s *Schema) ID() uuid.UUID { return s.id }

// Key is the canonical key of the definition the schema was built from.
func (s *Schema) Key() string { return s.key }

// Version echoes the definition version.
func (s *Schema) Version() string { return s.version }

// Order returns the evaluation order of field ids.
func (s *Schema) Order() []string {
	return append([]string(nil), s.order...)
}

// Fields returns copies of the field definitions in declaration order.
func (s *Schema) Fields() []definition.FieldDefinition {
	return definition.CloneFields(s.fields)
}

// Rule returns the rule registered for a field name.
func (s *Schema) Rule(name string) (Rule, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.rules[i], true
}

// Validate applies every rule to data. On success it returns the coerced
// record holding only declared fields. On failure the record is nil and the
// violations are listed in field declaration order.
func (s *Schema) Validate(data map[string]any) (map[string]any, []Violation) {
	return s.apply(data, nil)
}

// ValidateVisible behaves like Validate but skips fields whose id maps to
// false in visible. Values submitted for skipped fields are dropped. Fields
// missing from visible are treated as shown.
func (s *Schema) ValidateVisible(data map[string]any, visible map[string]bool) (map[string]any, []Violation) {
	return s.apply(data, func(field definition.FieldDefinition) bool {
		shown, ok := visible[field.ID]
		return !ok || shown
	})
}

// WithDefaults returns a copy of data in which every field with a declared
// default is filled in when its value is absent or null. data is not modified.
func (s *Schema) WithDefaults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(s.fields))
	for k, v := range data {
		out[k] = v
	}
	for _, field := range s.fields {
		if value, ok := out[field.Name]; (!ok || value == nil) && field.HasDefault() {
			out[field.Name] = field.DefaultValue
		}
	}
	return out
}

func (s *Schema) apply(data map[string]any, include func(definition.FieldDefinition) bool) (map[string]any, []Violation) {
	out := make(map[string]any, len(s.fields))
	var violations []Violation

	for i, field := range s.fields {
		if include != nil && !include(field) {
			continue
		}

		value, present := data[field.Name]
		if (!present || value == nil) && field.HasDefault() {
			value, present = field.DefaultValue, true
		}

		coerced, keep, vs := s.rules[i].Apply(value, present)
		if len(vs) > 0 {
			violations = append(violations, vs...)
			continue
		}
		if keep {
			out[field.Name] = coerced
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return out, nil
}
