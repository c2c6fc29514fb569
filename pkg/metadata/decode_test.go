package metadata_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"github.com/goliatone/go-formcompiler/pkg/metadata"
)

func TestDecodeJSONDocument(t *testing.T) {
	t.Parallel()

	doc := `{
		"version": "1",
		"fields": [
			{"id": "a", "name": "a", "kind": "select", "required": true,
			 "options": [{"label": "Yes", "value": "y"}, {"label": "No", "value": "n"}]},
			{"id": "b", "name": "b", "kind": "textarea",
			 "condition": {"targetFieldId": "a", "operator": "==", "value": "y"}}
		]
	}`

	def, report := metadata.Decode(doc)
	if !report.Valid() {
		t.Fatalf("expected valid report, got %v", report.Err())
	}

	want := definition.FormDefinition{
		Version: "1",
		Fields: []definition.FieldDefinition{
			{
				ID:       "a",
				Name:     "a",
				Kind:     definition.KindSingleChoice,
				Required: true,
				Options:  []definition.Option{{Label: "Yes", Value: "y"}, {Label: "No", Value: "n"}},
			},
			{
				ID:        "b",
				Name:      "b",
				Kind:      definition.KindLongText,
				Condition: &definition.Condition{TargetFieldID: "a", Operator: definition.OperatorEquals, Value: "y"},
			},
		},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeReportsShapeProblems(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"fields": []any{
			map[string]any{"id": float64(7), "name": "a", "kind": "text"},
			"not a field",
			map[string]any{"id": "c", "name": true, "kind": "single_choice", "options": "y,n"},
			map[string]any{"id": "d", "name": "d", "kind": "text", "required": "yes"},
		},
	}

	_, report := metadata.Decode(raw)
	want := []entry{
		{Kind: formerrors.KindValidation, Path: "fields[0].id"},
		{Kind: formerrors.KindValidation, Path: "fields[1]"},
		{Kind: formerrors.KindValidation, Path: "fields[2].name"},
		{Kind: formerrors.KindValidation, Path: "fields[2].options"},
		{Kind: formerrors.KindValidation, Path: "fields[3].required"},
	}
	if diff := cmp.Diff(want, entries(report)); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]any{
		"nil":          nil,
		"number":       42,
		"list":         []any{1, 2},
		"empty string": "  ",
		"scalar json":  `"hello"`,
	} {
		_, report := metadata.Decode(raw)
		if report.Valid() {
			t.Fatalf("%s: expected failure", name)
		}
		if got := report.Errors[0].Kind; got != formerrors.KindValidation {
			t.Fatalf("%s: expected validation kind, got %s", name, got)
		}
	}
}

func TestDecodeFieldsMustBeAList(t *testing.T) {
	t.Parallel()

	_, report := metadata.Decode(map[string]any{"version": "1", "fields": map[string]any{}})
	if diff := cmp.Diff([]entry{{Kind: formerrors.KindValidation, Path: "fields"}}, entries(report)); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTypedDefinitionNormalises(t *testing.T) {
	t.Parallel()

	def, report := metadata.Decode(&definition.FormDefinition{
		Fields: []definition.FieldDefinition{{ID: " a ", Name: "a", Kind: "checkbox"}},
	})
	if !report.Valid() {
		t.Fatalf("unexpected errors: %v", report.Err())
	}
	if def.Fields[0].ID != "a" || def.Fields[0].Kind != definition.KindBoolean {
		t.Fatalf("expected normalised field, got %#v", def.Fields[0])
	}
}
