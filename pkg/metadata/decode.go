package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"gopkg.in/yaml.v3"
)

// Decode turns untyped input into a FormDefinition and validates it. raw may
// be a FormDefinition (or pointer to one), a map decoded from JSON or YAML, or
// the JSON/YAML document itself as a string or byte slice.
//
// Shape problems (an id that is not a string, fields that are not a list) are
// reported as Validation errors and the offending slot is left empty; the
// structural checks of Validate then run over whatever could be decoded.
func Decode(raw any) (definition.FormDefinition, Report) {
	d := &decoder{
		errs:     formerrors.NewErrorList(),
		reported: make(map[string]struct{}),
	}
	def := d.decode(raw)
	d.errs.Merge(New().collect(def, d.reported))
	return def, Report{Errors: d.errs.Errors}
}

type decoder struct {
	errs     *formerrors.ErrorList
	reported map[string]struct{}
}

func (d *decoder) fail(fieldID, path, format string, args ...any) {
	d.errs.Addf(formerrors.KindValidation, fieldID, path, format, args...)
	d.reported[path] = struct{}{}
}

func (d *decoder) decode(raw any) definition.FormDefinition {
	switch v := raw.(type) {
	case nil:
		d.fail("", "", "form definition is required")
		return definition.FormDefinition{}
	case definition.FormDefinition:
		return definition.Normalize(v)
	case *definition.FormDefinition:
		if v == nil {
			d.fail("", "", "form definition is required")
			return definition.FormDefinition{}
		}
		return definition.Normalize(*v)
	case []byte:
		return d.decodeDocument(v)
	case string:
		return d.decodeDocument([]byte(v))
	case map[string]any:
		return d.decodeForm(v)
	default:
		d.fail("", "", "form definition must be an object, got %T", raw)
		return definition.FormDefinition{}
	}
}

func (d *decoder) decodeDocument(data []byte) definition.FormDefinition {
	if strings.TrimSpace(string(data)) == "" {
		d.fail("", "", "form definition is required")
		return definition.FormDefinition{}
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = nil
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			d.fail("", "", "form definition is neither JSON nor YAML: %v", yerr)
			return definition.FormDefinition{}
		}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		d.fail("", "", "form definition must be an object, got %T", doc)
		return definition.FormDefinition{}
	}
	return d.decodeForm(obj)
}

func (d *decoder) decodeForm(raw map[string]any) definition.FormDefinition {
	var def definition.FormDefinition

	switch v := raw["version"].(type) {
	case nil:
	case string:
		def.Version = strings.TrimSpace(v)
	case float64, int, int64, json.Number:
		def.Version = definition.CoerceString(v)
	default:
		d.fail("", "version", "version must be a string, got %T", v)
	}

	rawFields, present := raw["fields"]
	if !present || rawFields == nil {
		return def
	}
	list, ok := rawFields.([]any)
	if !ok {
		d.fail("", "fields", "fields must be a list, got %T", rawFields)
		return def
	}

	def.Fields = make([]definition.FieldDefinition, len(list))
	for i, item := range list {
		def.Fields[i] = d.decodeField(i, item)
	}
	return def
}

func (d *decoder) decodeField(index int, item any) definition.FieldDefinition {
	base := fieldPath(index)
	obj, ok := item.(map[string]any)
	if !ok {
		d.fail("", base, "field must be an object, got %T", item)
		d.reported[base+".id"] = struct{}{}
		d.reported[base+".name"] = struct{}{}
		d.reported[base+".kind"] = struct{}{}
		return definition.FieldDefinition{}
	}

	var field definition.FieldDefinition
	field.ID = d.stringAttr(obj, "id", "", base+".id")
	field.Name = d.stringAttr(obj, "name", field.ID, base+".name")
	field.Kind = definition.NormalizeKind(d.stringAttr(obj, "kind", field.ID, base+".kind"))
	field.Label = d.stringAttr(obj, "label", field.ID, base+".label")
	field.Placeholder = d.stringAttr(obj, "placeholder", field.ID, base+".placeholder")

	switch v := obj["required"].(type) {
	case nil:
	case bool:
		field.Required = v
	default:
		d.fail(field.ID, base+".required", "required must be a boolean, got %T", v)
	}

	if rawOptions, present := obj["options"]; present && rawOptions != nil {
		field.Options = d.decodeOptions(field.ID, base+".options", rawOptions)
	}

	if rawCond, present := obj["condition"]; present && rawCond != nil {
		field.Condition = d.decodeCondition(field.ID, base+".condition", rawCond)
	}

	field.DefaultValue = obj["defaultValue"]
	return field
}

func (d *decoder) decodeOptions(fieldID, path string, raw any) []definition.Option {
	list, ok := raw.([]any)
	if !ok {
		d.fail(fieldID, path, "options must be a list, got %T", raw)
		return nil
	}
	options := make([]definition.Option, len(list))
	for j, item := range list {
		optPath := fmt.Sprintf("%s[%d]", path, j)
		obj, ok := item.(map[string]any)
		if !ok {
			d.fail(fieldID, optPath, "option must be an object, got %T", item)
			d.reported[optPath+".value"] = struct{}{}
			continue
		}
		options[j] = definition.Option{
			Label: d.stringAttr(obj, "label", fieldID, optPath+".label"),
			Value: obj["value"],
		}
	}
	return options
}

func (d *decoder) decodeCondition(fieldID, path string, raw any) *definition.Condition {
	obj, ok := raw.(map[string]any)
	if !ok {
		d.fail(fieldID, path, "condition must be an object, got %T", raw)
		return nil
	}
	return &definition.Condition{
		TargetFieldID: d.stringAttr(obj, "targetFieldId", fieldID, path+".targetFieldId"),
		Operator:      definition.NormalizeOperator(d.stringAttr(obj, "operator", fieldID, path+".operator")),
		Value:         obj["value"],
	}
}

// stringAttr reads obj[key] as a trimmed string. A non-string value is
// reported at path and yields "".
func (d *decoder) stringAttr(obj map[string]any, key, fieldID, path string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		d.fail(fieldID, path, "%s must be a string, got %T", key, v)
		return ""
	}
}
