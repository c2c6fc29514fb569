package definition

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// canonicalForm fixes the attribute set and order used for cache keys so that
// adding presentation-only struct tags never changes key stability.
type canonicalForm struct {
	Version string           `json:"v"`
	Fields  []canonicalField `json:"f"`
}

type canonicalField struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         FieldKind  `json:"kind"`
	Label        string     `json:"label"`
	Placeholder  string     `json:"placeholder"`
	Required     bool       `json:"required"`
	Options      []Option   `json:"options"`
	Condition    *Condition `json:"condition"`
	DefaultValue any        `json:"default"`
	HasDefault   bool       `json:"hasDefault"`
}

// Canonical returns the deterministic serialisation of def. Two structurally
// identical definitions produce identical bytes regardless of where they came
// from. Map values nested inside option, condition or default values are
// emitted with sorted keys by encoding/json.
func Canonical(def FormDefinition) ([]byte, error) {
	form := canonicalForm{
		Version: def.Version,
		Fields:  make([]canonicalField, 0, len(def.Fields)),
	}
	for _, field := range def.Fields {
		options := field.Options
		// An empty option list means the same as none.
		if len(options) == 0 {
			options = nil
		}
		form.Fields = append(form.Fields, canonicalField{
			ID:           field.ID,
			Name:         field.Name,
			Kind:         field.Kind,
			Label:        field.Label,
			Placeholder:  field.Placeholder,
			Required:     field.Required,
			Options:      options,
			Condition:    field.Condition,
			DefaultValue: field.DefaultValue,
			HasDefault:   field.HasDefault(),
		})
	}
	data, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("definition: canonical encoding: %w", err)
	}
	return data, nil
}

// CanonicalKey hashes the canonical serialisation into a fixed-size cache key.
func CanonicalKey(def FormDefinition) (string, error) {
	data, err := Canonical(def)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
