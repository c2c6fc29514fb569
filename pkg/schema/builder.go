package schema

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
)

// Option customises a Builder.
type Option func(*Builder)

// WithSanitizer strips markup from text and long_text values before they are
// checked. Pass StrictSanitizer() for the bluemonday strict policy.
func WithSanitizer(s Sanitizer) Option {
	return func(b *Builder) {
		b.sanitizer = s
	}
}

// WithIDSource overrides how schema identifiers are generated.
func WithIDSource(fn func() uuid.UUID) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// Builder compiles form definitions into Schemas. A Builder holds no mutable
// state and may be shared between goroutines.
type Builder struct {
	sanitizer Sanitizer
	newID     func() uuid.UUID
}

// NewBuilder constructs a Builder applying any provided options.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{newID: uuid.New}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Build compiles def. order is the evaluation order produced by the dependency
// analyzer and is carried on the schema for visibility computation; an empty
// order falls back to declaration order.
//
// Errors are returned as *formerrors.ErrorList. A panic raised while building
// is recovered and reported as KindUnknown.
func (b *Builder) Build(def definition.FormDefinition, order []string) (compiled *Schema, err error) {
	defer func() {
		if r := recover(); r != nil {
			compiled = nil
			err = unknown(fmt.Errorf("schema: build panicked: %v", r))
		}
	}()

	key, err := definition.CanonicalKey(def)
	if err != nil {
		return nil, unknown(err)
	}

	fields := definition.CloneFields(def.Fields)
	rules := make([]Rule, len(fields))
	byName := make(map[string]int, len(fields))
	for i, field := range fields {
		rule, err := ruleFor(field, b.sanitizer)
		if err != nil {
			return nil, unknown(err)
		}
		rules[i] = rule
		byName[field.Name] = i
	}

	if len(order) == 0 {
		order = make([]string, len(fields))
		for i, field := range fields {
			order[i] = field.ID
		}
	} else {
		order = append([]string(nil), order...)
	}

	return &Schema{
		id:      b.newID(),
		key:     key,
		version: def.Version,
		fields:  fields,
		rules:   rules,
		byName:  byName,
		order:   order,
	}, nil
}

func unknown(err error) error {
	list := formerrors.NewErrorList()
	list.Add(formerrors.Unknown(err))
	return list
}
