package metadata

import (
	"fmt"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
)

// Report is the outcome of a metadata check. Errors keeps the order in which
// violations were found: field order, then check order within a field.
type Report struct {
	Errors []*formerrors.Error
}

// Valid reports whether no violation was found.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// List returns the violations as an ErrorList.
func (r Report) List() *formerrors.ErrorList {
	list := formerrors.NewErrorList()
	for _, err := range r.Errors {
		list.Add(err)
	}
	return list
}

// Err returns nil for a valid report and a *formerrors.ErrorList otherwise.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	return r.List()
}

// Validator checks the structural integrity of form definitions. It never
// stops at the first problem: every violation becomes one Report entry.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs the checks with a fresh Validator.
func Validate(def definition.FormDefinition) Report {
	return New().Validate(def)
}

// Validate checks def and reports every violation found.
func (v *Validator) Validate(def definition.FormDefinition) Report {
	return Report{Errors: v.collect(def, nil).Errors}
}

// collect runs both passes. Paths listed in reported were already flagged by
// Decode and are skipped to avoid reporting the same slot twice.
func (v *Validator) collect(def definition.FormDefinition, reported map[string]struct{}) *formerrors.ErrorList {
	errs := formerrors.NewErrorList()
	add := func(kind formerrors.Kind, fieldID, path, format string, args ...any) {
		if _, skip := reported[path]; skip {
			return
		}
		errs.Addf(kind, fieldID, path, format, args...)
	}

	// First pass: every id is known before conditions are checked, so a
	// condition may point at a field declared later in the list.
	knownIDs := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if field.ID != "" {
			knownIDs[field.ID] = struct{}{}
		}
	}

	seenIDs := make(map[string]int, len(def.Fields))
	seenNames := make(map[string]int, len(def.Fields))

	for i, field := range def.Fields {
		base := fieldPath(i)

		if field.ID == "" {
			add(formerrors.KindValidation, "", base+".id", "field id is required")
		} else if first, dup := seenIDs[field.ID]; dup {
			add(formerrors.KindValidation, field.ID, base+".id", "duplicate field id %q (first declared at %s)", field.ID, fieldPath(first))
		} else {
			seenIDs[field.ID] = i
		}

		if field.Name == "" {
			add(formerrors.KindValidation, field.ID, base+".name", "field name is required")
		} else if first, dup := seenNames[field.Name]; dup {
			add(formerrors.KindValidation, field.ID, base+".name", "duplicate field name %q (first declared at %s)", field.Name, fieldPath(first))
		} else {
			seenNames[field.Name] = i
		}

		kindOK := field.Kind.Valid()
		if !kindOK {
			add(formerrors.KindValidation, field.ID, base+".kind", "unsupported field kind %q", field.Kind)
		}

		if field.Kind == definition.KindSingleChoice && len(field.Options) == 0 {
			add(formerrors.KindMissingOption, field.ID, base+".options", "single_choice field %q requires at least one option", displayName(field))
		}
		for j, opt := range field.Options {
			if opt.Value == nil {
				add(formerrors.KindValidation, field.ID, fmt.Sprintf("%s.options[%d].value", base, j), "option value is required")
			}
		}

		if cond := field.Condition; cond != nil {
			switch {
			case cond.TargetFieldID == "":
				add(formerrors.KindValidation, field.ID, base+".condition.targetFieldId", "condition target field id is required")
			default:
				if _, ok := knownIDs[cond.TargetFieldID]; !ok {
					add(formerrors.KindValidation, field.ID, base+".condition.targetFieldId", "condition references unknown field %q", cond.TargetFieldID)
				}
			}
			if !cond.Operator.Valid() {
				add(formerrors.KindValidation, field.ID, base+".condition.operator", "unsupported condition operator %q", cond.Operator)
			}
		}

		if kindOK && field.HasDefault() {
			if msg, ok := checkDefault(field); !ok {
				add(formerrors.KindValidation, field.ID, base+".defaultValue", "%s", msg)
			}
		}
	}

	return errs
}

func checkDefault(field definition.FieldDefinition) (string, bool) {
	value := field.DefaultValue
	switch field.Kind {
	case definition.KindText, definition.KindLongText:
		if _, ok := value.(string); !ok {
			return "default value must be a string", false
		}
	case definition.KindNumber:
		if _, ok := definition.CoerceNumber(value); !ok {
			return "default value must be numeric", false
		}
	case definition.KindDate:
		if _, ok := definition.CoerceDate(value); !ok {
			return "default value must be a date", false
		}
	case definition.KindBoolean:
		if _, ok := definition.CoerceBool(value); !ok {
			return "default value must be a boolean", false
		}
	case definition.KindSingleChoice:
		if s, ok := value.(string); ok && s == "" {
			return "", true
		}
		for _, opt := range field.Options {
			if definition.LooseEqual(value, opt.Value) {
				return "", true
			}
		}
		return fmt.Sprintf("default value %v is not one of the declared options", value), false
	}
	return "", true
}

func fieldPath(index int) string {
	return fmt.Sprintf("fields[%d]", index)
}

func displayName(field definition.FieldDefinition) string {
	if field.Name != "" {
		return field.Name
	}
	return field.ID
}
