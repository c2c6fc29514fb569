package testsupport

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcompiler/pkg/definition"
)

//go:embed testdata
var testdata embed.FS

// Definitions exposes the bundled definition fixtures rooted at their
// directory, ready for definition.LoadFS.
func Definitions() fs.FS {
	sub, err := fs.Sub(testdata, "testdata/definitions")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadDefinition parses a bundled definition fixture such as "contact.yaml".
func LoadDefinition(name string) (definition.FormDefinition, error) {
	if name == "" {
		return definition.FormDefinition{}, errors.New("testsupport: definition name is required")
	}
	data, err := ReadFixture(path.Join("definitions", name))
	if err != nil {
		return definition.FormDefinition{}, err
	}
	return definition.Parse(data, name)
}

// MustLoadDefinition is LoadDefinition for tests.
func MustLoadDefinition(t *testing.T, name string) definition.FormDefinition {
	t.Helper()

	def, err := LoadDefinition(name)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// MustLoadValues parses a bundled values fixture such as "contact.json".
func MustLoadValues(t *testing.T, name string) map[string]any {
	t.Helper()

	data, err := ReadFixture(path.Join("values", name))
	if err != nil {
		t.Fatalf("load values: %v", err)
	}
	values, err := definition.ParseValues(data, name)
	if err != nil {
		t.Fatalf("parse values: %v", err)
	}
	return values
}

// ReadFixture returns the raw bytes of a bundled fixture.
func ReadFixture(name string) ([]byte, error) {
	data, err := testdata.ReadFile(path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	return data, nil
}

// FixturePath writes a bundled fixture into dir and returns its path, for code
// that only accepts file names.
func FixturePath(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := ReadFixture(name)
	if err != nil {
		t.Fatalf("%v", err)
	}
	target := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return target
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareJSON decodes both payloads and returns a cmp diff, ignoring
// formatting differences.
func CompareJSON(t *testing.T, want, got []byte) string {
	t.Helper()

	var w, g any
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode got: %v", err)
	}
	return cmp.Diff(w, g)
}
