package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/prompt"
	"github.com/goliatone/go-formcompiler/pkg/testsupport"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

type cliRun struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, ctx context.Context, driver prompt.Driver, args ...string) cliRun {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.driver = driver
	code := a.run(ctx, args)
	return cliRun{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeResult(t *testing.T, raw string) validation.Result {
	t.Helper()
	var result validation.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatalf("decode result %q: %v", raw, err)
	}
	return result
}

func issueCodes(result validation.Result) []string {
	codes := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

func TestCompileCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	contact := testsupport.FixturePath(t, dir, "definitions/contact.yaml")

	got := runCLI(t, context.Background(), nil, "compile", contact)
	if got.code != 0 {
		t.Fatalf("exit code %d, stderr %s", got.code, got.stderr)
	}
	var out compileOutput
	if err := json.Unmarshal([]byte(got.stdout), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !out.Success || out.Version != "1.2" || out.SchemaID == "" || len(out.Key) != 64 {
		t.Fatalf("unexpected output %+v", out)
	}
	want := []string{"name", "email", "topic", "message", "subscribe", "frequency", "follow_up"}
	if diff := cmp.Diff(want, out.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileCommandRejectsBrokenDefinitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string][]string{
		"definitions/cycle.json":   {"circular_reference", "circular_reference", "circular_reference"},
		"definitions/invalid.json": {"missing_option", "validation"},
	}
	for fixture, codes := range cases {
		got := runCLI(t, context.Background(), nil, "compile", testsupport.FixturePath(t, dir, fixture))
		if got.code != 1 {
			t.Fatalf("%s: exit code %d, want 1", fixture, got.code)
		}
		result := decodeResult(t, got.stdout)
		if diff := cmp.Diff(codes, issueCodes(result)); diff != "" {
			t.Fatalf("%s: codes mismatch (-want +got):\n%s", fixture, diff)
		}
		for _, issue := range result.Issues {
			if issue.FieldPath != "form" {
				t.Fatalf("%s: unexpected field path %q", fixture, issue.FieldPath)
			}
		}
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	contact := testsupport.FixturePath(t, dir, "definitions/contact.yaml")
	values := filepath.Join(dir, "values.json")
	data, err := testsupport.ReadFixture("values/contact.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(values, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got := runCLI(t, context.Background(), nil, "validate", contact, values)
	if got.code != 0 {
		t.Fatalf("exit code %d, stdout %s stderr %s", got.code, got.stdout, got.stderr)
	}
	result := decodeResult(t, got.stdout)
	if result.Data["name"] != "Ada Lovelace" || result.Data["subscribe"] != true {
		t.Fatalf("unexpected data %+v", result.Data)
	}

	bad := writeFile(t, dir, "bad.yaml", "name: \"\"\ntopic: billing\n")
	failed := runCLI(t, context.Background(), nil, "validate", contact, bad)
	if failed.code != 1 {
		t.Fatalf("exit code %d, want 1", failed.code)
	}
	if diff := cmp.Diff([]string{"too_small", "required", "invalid_option", "required"}, issueCodes(decodeResult(t, failed.stdout))); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	yamlOut := runCLI(t, context.Background(), nil, "validate", contact, values, "--output", "yaml")
	if yamlOut.code != 0 || !strings.HasPrefix(yamlOut.stdout, "success: true") {
		t.Fatalf("unexpected yaml output %q", yamlOut.stdout)
	}
}

func TestVisibilityCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	contact := testsupport.FixturePath(t, dir, "definitions/contact.yaml")
	values := writeFile(t, dir, "values.json", `{"subscribe": false}`)

	got := runCLI(t, context.Background(), nil, "visibility", contact, values)
	if got.code != 0 {
		t.Fatalf("exit code %d, stderr %s", got.code, got.stderr)
	}
	var out visibilityOutput
	if err := json.Unmarshal([]byte(got.stdout), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if diff := cmp.Diff([]string{"frequency"}, out.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if !out.Visible["name"] || out.Visible["frequency"] {
		t.Fatalf("unexpected visibility %+v", out.Visible)
	}
}

const petsDocument = `openapi: 3.0.3
info:
  title: Pets
  version: "1.0.0"
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name: {type: string}
                species: {type: string, enum: [cat, dog]}
      responses:
        "201":
          description: created
`

func TestImportOpenAPICommand(t *testing.T) {
	t.Parallel()

	spec := writeFile(t, t.TempDir(), "pets.yaml", petsDocument)

	got := runCLI(t, context.Background(), nil, "import-openapi", spec, "--operation", "createPet")
	if got.code != 0 {
		t.Fatalf("exit code %d, stderr %s", got.code, got.stderr)
	}
	var def definition.FormDefinition
	if err := json.Unmarshal([]byte(got.stdout), &def); err != nil {
		t.Fatalf("decode definition: %v", err)
	}
	if def.Version != "1.0.0" || len(def.Fields) != 2 || def.Fields[0].Name != "name" || !def.Fields[0].Required {
		t.Fatalf("unexpected definition %+v", def)
	}
	if def.Fields[1].Kind != definition.KindSingleChoice {
		t.Fatalf("expected species to be a single choice, got %s", def.Fields[1].Kind)
	}

	listed := runCLI(t, context.Background(), nil, "import-openapi", spec, "--list")
	if listed.code != 0 || !strings.Contains(listed.stdout, "createPet") {
		t.Fatalf("unexpected list output %q", listed.stdout)
	}

	missing := runCLI(t, context.Background(), nil, "import-openapi", spec)
	if missing.code != 1 || !strings.Contains(missing.stderr, "--operation is required") {
		t.Fatalf("expected missing operation error, got %q", missing.stderr)
	}
}

type scriptedDriver struct {
	inputs  []string
	areas   []string
	selects []int
	confirm []bool
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	v := d.confirm[0]
	d.confirm = d.confirm[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *scriptedDriver) TextArea(context.Context, prompt.TextAreaConfig) (string, error) {
	v := d.areas[0]
	d.areas = d.areas[1:]
	return v, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestFillCommand(t *testing.T) {
	t.Parallel()

	contact := testsupport.FixturePath(t, t.TempDir(), "definitions/contact.yaml")
	driver := &scriptedDriver{
		inputs:  []string{"Grace", "grace@example.com", ""},
		selects: []int{0},
		areas:   []string{"Hello"},
		confirm: []bool{false},
	}

	got := runCLI(t, context.Background(), driver, "fill", contact)
	if got.code != 0 {
		t.Fatalf("exit code %d, stdout %s stderr %s", got.code, got.stdout, got.stderr)
	}
	want := map[string]any{
		"name":      "Grace",
		"email":     "grace@example.com",
		"topic":     "sales",
		"message":   "Hello",
		"subscribe": false,
	}
	if diff := cmp.Diff(want, decodeResult(t, got.stdout).Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchCommandCompilesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testsupport.FixturePath(t, dir, "definitions/contact.yaml")
	testsupport.FixturePath(t, dir, "definitions/cycle.json")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	got := runCLI(t, ctx, nil, "watch", dir)
	if got.code != 0 {
		t.Fatalf("exit code %d, stderr %s", got.code, got.stderr)
	}
	var outcomes []struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(strings.NewReader(got.stdout)).Decode(&outcomes); err != nil {
		t.Fatalf("decode outcomes: %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].Path != "contact.yaml" || outcomes[0].Error != "" || outcomes[1].Error == "" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
}

func TestUnsupportedOutputFormat(t *testing.T) {
	t.Parallel()

	got := runCLI(t, context.Background(), nil, "compile", "missing.json", "--output", "xml")
	if got.code != 1 || !strings.Contains(got.stderr, `unsupported output format "xml"`) {
		t.Fatalf("unexpected run %+v", got)
	}
}
