package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
)

const (
	// ConditionExtension declares a visibility condition on a property:
	// {"field": "<property>", "operator": "equals", "value": ...}.
	ConditionExtension = "x-condition"

	formatTextarea  = "textarea"
	longTextMaxSize = 255
)

// Import parses data and converts the request body of operationID into a
// form definition.
func Import(ctx context.Context, data []byte, operationID string, options ...ParserOption) (definition.FormDefinition, error) {
	doc, err := NewDocument("", data)
	if err != nil {
		return definition.FormDefinition{}, err
	}
	return ImportDocument(ctx, doc, operationID, options...)
}

// ImportDocument is Import for a loaded Document.
func ImportDocument(ctx context.Context, doc Document, operationID string, options ...ParserOption) (definition.FormDefinition, error) {
	operations, err := Operations(ctx, doc, options...)
	if err != nil {
		return definition.FormDefinition{}, err
	}
	op, ok := operations[operationID]
	if !ok {
		return definition.FormDefinition{}, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	return FormFromOperation(op)
}

// FormFromOperation maps the request body properties of op onto fields,
// sorted by property name. Every property problem is reported.
func FormFromOperation(op Operation) (definition.FormDefinition, error) {
	body := op.RequestBody
	if !body.IsObject() {
		return definition.FormDefinition{}, fmt.Errorf("openapi: operation %q has no object request body (%s)", op.ID, body.DebugString())
	}

	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := formerrors.NewErrorList()
	def := definition.FormDefinition{Version: op.Version, Fields: make([]definition.FieldDefinition, 0, len(names))}
	for _, name := range names {
		prop := body.Properties[name]
		path := "properties." + name

		kind, ok := fieldKind(prop)
		if !ok {
			errs.Addf(formerrors.KindValidation, name, path, "unsupported property type %q", prop.Type)
			continue
		}
		field := definition.FieldDefinition{
			ID:           name,
			Name:         name,
			Kind:         kind,
			Label:        prop.Title,
			Placeholder:  prop.Description,
			DefaultValue: prop.Default,
		}
		if field.Label == "" {
			field.Label = name
		}
		if _, ok := required[name]; ok {
			field.Required = true
		}
		for _, value := range prop.Enum {
			field.Options = append(field.Options, definition.Option{Label: fmt.Sprint(value), Value: value})
		}
		if raw, ok := prop.Extensions[ConditionExtension]; ok {
			cond, err := parseCondition(raw)
			if err != nil {
				errs.Addf(formerrors.KindValidation, name, path+"."+ConditionExtension, "%v", err)
				continue
			}
			field.Condition = cond
		}
		def.Fields = append(def.Fields, field)
	}
	if err := errs.ToError(); err != nil {
		return definition.FormDefinition{}, err
	}
	return definition.Normalize(def), nil
}

func fieldKind(prop Schema) (definition.FieldKind, bool) {
	if len(prop.Enum) > 0 {
		return definition.KindSingleChoice, true
	}
	switch prop.Type {
	case "boolean":
		return definition.KindBoolean, true
	case "number", "integer":
		return definition.KindNumber, true
	case "string":
		switch strings.ToLower(prop.Format) {
		case "date", "date-time":
			return definition.KindDate, true
		case formatTextarea:
			return definition.KindLongText, true
		}
		if prop.MaxLength != nil && *prop.MaxLength > longTextMaxSize {
			return definition.KindLongText, true
		}
		return definition.KindText, true
	}
	return "", false
}

func parseCondition(raw any) (*definition.Condition, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", ConditionExtension)
	}
	target, _ := obj["field"].(string)
	if target == "" {
		target, _ = obj["targetFieldId"].(string)
	}
	if target == "" {
		return nil, fmt.Errorf("%s requires a field", ConditionExtension)
	}
	operator := definition.OperatorEquals
	if rawOp, ok := obj["operator"].(string); ok && rawOp != "" {
		operator = definition.Operator(rawOp)
	}
	return &definition.Condition{TargetFieldID: target, Operator: operator, Value: obj["value"]}, nil
}
