package testsupport_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"github.com/goliatone/go-formcompiler/pkg/logging"
	"github.com/goliatone/go-formcompiler/pkg/testsupport"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

func TestFixturesLoad(t *testing.T) {
	t.Parallel()

	defs, err := definition.LoadFS(testsupport.Definitions())
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"contact.yaml", "cycle.json", "invalid.json"}, definition.Paths(defs)); diff != "" {
		t.Fatalf("fixture set mismatch (-want +got):\n%s", diff)
	}
}

func TestContactFixtureValidates(t *testing.T) {
	t.Parallel()

	def := testsupport.MustLoadDefinition(t, "contact.yaml")
	values := testsupport.MustLoadValues(t, "contact.json")
	svc := validation.New(validation.WithLogger(logging.Discard()))

	got := svc.Validate(values, def)
	if !got.Success {
		t.Fatalf("expected contact values to validate: %+v", got.Issues)
	}
	if got.Data["subscribe"] != true || got.Data["frequency"] != "weekly" {
		t.Fatalf("unexpected data %+v", got.Data)
	}
}

func TestBrokenFixtures(t *testing.T) {
	t.Parallel()

	svc := validation.New(validation.WithLogger(logging.Discard()))

	_, err := svc.Compile(testsupport.MustLoadDefinition(t, "cycle.json"))
	if list := formerrors.AsList(err); list.Count() != 3 || !list.HasKind(formerrors.KindCircularReference) {
		t.Fatalf("expected three circular references, got %v", err)
	}

	_, err = svc.Compile(testsupport.MustLoadDefinition(t, "invalid.json"))
	if !formerrors.IsKind(err, formerrors.KindMissingOption) || !formerrors.IsKind(err, formerrors.KindValidation) {
		t.Fatalf("expected missing option and validation errors, got %v", err)
	}
}
