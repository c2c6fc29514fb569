package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
)

// Code classifies a data violation.
type Code string

const (
	CodeRequired      Code = "required"
	CodeInvalidType   Code = "invalid_type"
	CodeTooSmall      Code = "too_small"
	CodeInvalidOption Code = "invalid_option"
	CodeInvalidDate   Code = "invalid_date"
)

// Violation is one broken constraint on submitted data. Field holds the field
// name, which is also the key used in submitted data.
type Violation struct {
	Field   string
	Code    Code
	Message string
}

// Rule validates and coerces the value submitted for a single field.
//
// present reports whether the key exists in the submitted data. keep reports
// whether out belongs in the output record; optional fields left empty are
// dropped rather than stored as zero values.
type Rule interface {
	Name() string
	Apply(value any, present bool) (out any, keep bool, violations []Violation)
}

// Sanitizer strips markup from free text. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(string) string
}

// ruleFor dispatches on the field kind. Every kind of the closed enumeration
// has exactly one constructor.
func ruleFor(field definition.FieldDefinition, sanitizer Sanitizer) (Rule, error) {
	switch field.Kind {
	case definition.KindText, definition.KindLongText:
		return Text(field, sanitizer), nil
	case definition.KindNumber:
		return Number(field), nil
	case definition.KindDate:
		return Date(field), nil
	case definition.KindSingleChoice:
		return SingleChoice(field), nil
	case definition.KindBoolean:
		return Boolean(field), nil
	default:
		return nil, fmt.Errorf("schema: field %q has unsupported kind %q", field.ID, field.Kind)
	}
}

// blank reports whether a submitted value carries nothing: a missing key, a
// null or an empty string.
func blank(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

type base struct {
	name     string
	required bool
}

func (b base) Name() string { return b.name }

func (b base) violation(code Code, format string, args ...any) []Violation {
	return []Violation{{Field: b.name, Code: code, Message: fmt.Sprintf(format, args...)}}
}

// missing handles a blank value: required fields fail, optional ones are
// dropped from the output.
func (b base) missing() (any, bool, []Violation) {
	if b.required {
		return nil, false, b.violation(CodeRequired, "%s is required", b.name)
	}
	return nil, false, nil
}

type textRule struct {
	base
	sanitizer Sanitizer
}

// Text builds the rule for text and long_text fields. A required field needs
// at least one character; an empty optional value is treated as absent. When
// sanitizer is non-nil markup is stripped before the length check.
func Text(field definition.FieldDefinition, sanitizer Sanitizer) Rule {
	return textRule{base: base{name: field.Name, required: field.Required}, sanitizer: sanitizer}
}

func (r textRule) Apply(value any, present bool) (any, bool, []Violation) {
	if !present || value == nil {
		return r.missing()
	}
	s, ok := value.(string)
	if !ok {
		return nil, false, r.violation(CodeInvalidType, "%s must be a string", r.name)
	}
	if r.sanitizer != nil && s != "" {
		s = strings.TrimSpace(r.sanitizer.Sanitize(s))
	}
	if s == "" {
		if r.required {
			return nil, false, r.violation(CodeTooSmall, "%s must contain at least 1 character", r.name)
		}
		return nil, false, nil
	}
	return s, true, nil
}

type numberRule struct{ base }

// Number builds the rule for number fields. Numeric strings are coerced.
func Number(field definition.FieldDefinition) Rule {
	return numberRule{base{name: field.Name, required: field.Required}}
}

func (r numberRule) Apply(value any, present bool) (any, bool, []Violation) {
	if blank(value, present) {
		return r.missing()
	}
	n, ok := definition.CoerceNumber(value)
	if !ok {
		return nil, false, r.violation(CodeInvalidType, "%s must be a number", r.name)
	}
	return n, true, nil
}

type dateRule struct{ base }

// Date builds the rule for date fields. Output values are time.Time.
func Date(field definition.FieldDefinition) Rule {
	return dateRule{base{name: field.Name, required: field.Required}}
}

func (r dateRule) Apply(value any, present bool) (any, bool, []Violation) {
	if blank(value, present) {
		return r.missing()
	}
	t, ok := definition.CoerceDate(value)
	if !ok {
		return nil, false, r.violation(CodeInvalidDate, "%s must be a valid date", r.name)
	}
	return t, true, nil
}

type choiceRule struct {
	base
	options []definition.Option
}

// SingleChoice builds the rule for single_choice fields. The submitted value
// must match one of the declared option values; the declared value is what
// ends up in the output.
func SingleChoice(field definition.FieldDefinition) Rule {
	return choiceRule{
		base:    base{name: field.Name, required: field.Required},
		options: append([]definition.Option(nil), field.Options...),
	}
}

func (r choiceRule) Apply(value any, present bool) (any, bool, []Violation) {
	if blank(value, present) {
		return r.missing()
	}
	for _, opt := range r.options {
		if definition.LooseEqual(value, opt.Value) {
			return opt.Value, true, nil
		}
	}
	return nil, false, r.violation(CodeInvalidOption, "%s must be one of: %s", r.name, r.allowed())
}

func (r choiceRule) allowed() string {
	values := make([]string, 0, len(r.options))
	for _, opt := range r.options {
		values = append(values, definition.CoerceString(opt.Value))
	}
	return strings.Join(values, ", ")
}

type booleanRule struct{ base }

// Boolean builds the rule for boolean fields. An optional boolean left blank
// becomes false.
func Boolean(field definition.FieldDefinition) Rule {
	return booleanRule{base{name: field.Name, required: field.Required}}
}

func (r booleanRule) Apply(value any, present bool) (any, bool, []Violation) {
	if blank(value, present) {
		if r.required {
			return r.missing()
		}
		return false, true, nil
	}
	b, ok := definition.CoerceBool(value)
	if !ok {
		return nil, false, r.violation(CodeInvalidType, "%s must be a boolean", r.name)
	}
	return b, true, nil
}
