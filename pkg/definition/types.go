package definition

import "strings"

// FieldKind is the closed set of field kinds a form definition may use.
type FieldKind string

const (
	KindText         FieldKind = "text"
	KindLongText     FieldKind = "long_text"
	KindNumber       FieldKind = "number"
	KindDate         FieldKind = "date"
	KindSingleChoice FieldKind = "single_choice"
	KindBoolean      FieldKind = "boolean"
)

// Kinds lists every supported FieldKind in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{KindText, KindLongText, KindNumber, KindDate, KindSingleChoice, KindBoolean}
}

// Valid reports whether k belongs to the closed enumeration.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindLongText, KindNumber, KindDate, KindSingleChoice, KindBoolean:
		return true
	default:
		return false
	}
}

// NormalizeKind maps designer aliases (textarea, select, checkbox) onto the
// canonical kinds. Unknown values are returned unchanged so the metadata
// validator can report them.
func NormalizeKind(raw string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text":
		return KindText
	case "long_text", "textarea":
		return KindLongText
	case "number":
		return KindNumber
	case "date":
		return KindDate
	case "single_choice", "select":
		return KindSingleChoice
	case "boolean", "checkbox":
		return KindBoolean
	default:
		return FieldKind(raw)
	}
}

// Operator compares a condition's target value against the condition value.
type Operator string

const (
	OperatorEquals    Operator = "equals"
	OperatorNotEquals Operator = "not_equals"
)

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	return op == OperatorEquals || op == OperatorNotEquals
}

// NormalizeOperator accepts the common spellings of the two operators.
func NormalizeOperator(raw string) Operator {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "equals", "eq", "==", "=":
		return OperatorEquals
	case "not_equals", "notequals", "neq", "ne", "!=":
		return OperatorNotEquals
	default:
		return Operator(raw)
	}
}

// Option is a selectable value for single_choice fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Condition makes a field visible only when the target field's current value
// satisfies Operator against Value.
type Condition struct {
	TargetFieldID string   `json:"targetFieldId" yaml:"targetFieldId"`
	Operator      Operator `json:"operator" yaml:"operator"`
	Value         any      `json:"value" yaml:"value"`
}

// FieldDefinition describes a single input. ID is the identity used by
// conditions and visibility maps; Name addresses submitted data.
type FieldDefinition struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Kind         FieldKind  `json:"kind" yaml:"kind"`
	Label        string     `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder  string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required     bool       `json:"required" yaml:"required"`
	Options      []Option   `json:"options,omitempty" yaml:"options,omitempty"`
	Condition    *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	DefaultValue any        `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// HasDefault reports whether a default value was declared.
func (f FieldDefinition) HasDefault() bool {
	return f.DefaultValue != nil
}

// Clone returns a copy of f that shares no Options or Condition storage with
// it. Option, condition and default values are copied as-is.
func (f FieldDefinition) Clone() FieldDefinition {
	if f.Options != nil {
		f.Options = append([]Option(nil), f.Options...)
	}
	if f.Condition != nil {
		cond := *f.Condition
		f.Condition = &cond
	}
	return f
}

// CloneFields clones every field of fields.
func CloneFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// FormDefinition is the declarative description of a form.
type FormDefinition struct {
	Version string            `json:"version" yaml:"version"`
	Fields  []FieldDefinition `json:"fields" yaml:"fields"`
}

// IndexByID maps every field id to its position in Fields. Later duplicates
// do not overwrite earlier entries.
func (d FormDefinition) IndexByID() map[string]int {
	index := make(map[string]int, len(d.Fields))
	for i, field := range d.Fields {
		if _, exists := index[field.ID]; exists {
			continue
		}
		index[field.ID] = i
	}
	return index
}
