package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML form definition. JSON is attempted first; the
// source name is only used in error messages.
func Parse(data []byte, source string) (FormDefinition, error) {
	var def FormDefinition
	if len(strings.TrimSpace(string(data))) == 0 {
		return FormDefinition{}, fmt.Errorf("definition: %s is empty", source)
	}

	if err := json.Unmarshal(data, &def); err == nil {
		return Normalize(def), nil
	}

	def = FormDefinition{}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return FormDefinition{}, fmt.Errorf("definition: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return Normalize(def), nil
}

// ParseValues decodes a JSON or YAML object of submitted values.
func ParseValues(data []byte, source string) (map[string]any, error) {
	values := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err == nil {
		return values, nil
	}
	values = make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("definition: parse values %s: invalid JSON or YAML: %w", source, err)
	}
	return values, nil
}

// Normalize maps kind and operator aliases onto their canonical spellings and
// trims identifiers. It returns a copy; def is left untouched.
func Normalize(def FormDefinition) FormDefinition {
	out := FormDefinition{
		Version: strings.TrimSpace(def.Version),
		Fields:  make([]FieldDefinition, len(def.Fields)),
	}
	for i, field := range def.Fields {
		field.ID = strings.TrimSpace(field.ID)
		field.Name = strings.TrimSpace(field.Name)
		field.Kind = NormalizeKind(string(field.Kind))
		if len(field.Options) > 0 {
			field.Options = append([]Option(nil), field.Options...)
		}
		if field.Condition != nil {
			cond := *field.Condition
			cond.TargetFieldID = strings.TrimSpace(cond.TargetFieldID)
			cond.Operator = NormalizeOperator(string(cond.Operator))
			field.Condition = &cond
		}
		out.Fields[i] = field
	}
	return out
}

// LoadFS walks fsys and parses every JSON/YAML definition it finds, keyed by
// path. A nil fsys yields an empty map.
func LoadFS(fsys fs.FS) (map[string]FormDefinition, error) {
	out := make(map[string]FormDefinition)
	if fsys == nil {
		return out, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		def, err := Parse(data, path)
		if err != nil {
			return err
		}
		out[path] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Paths returns the keys of a LoadFS result in sorted order.
func Paths(defs map[string]FormDefinition) []string {
	paths := make([]string, 0, len(defs))
	for path := range defs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// IsDefinitionFile reports whether path has a definition file extension.
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
