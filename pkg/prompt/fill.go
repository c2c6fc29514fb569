package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoDriver is returned when a Filler has no driver.
	ErrNoDriver = errors.New("prompt: driver is required")
)

const skipOption = "(skip)"

// Option configures a Filler.
type Option func(*Filler)

// WithDriver sets the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithService shares a validation service, and with it the schema cache.
func WithService(svc *validation.Service) Option {
	return func(f *Filler) {
		if svc != nil {
			f.service = svc
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler collects a record for a definition one prompt at a time.
type Filler struct {
	driver  Driver
	service *validation.Service
	logger  *slog.Logger
}

// New constructs a Filler. Without WithDriver it prompts on the terminal.
func New(options ...Option) *Filler {
	f := &Filler{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.driver == nil {
		f.driver = SurveyDriver(nil)
	}
	if f.service == nil {
		f.service = validation.New(validation.WithLogger(f.logger))
	}
	return f
}

// Fill prompts every visible field of def in evaluation order. Visibility is
// recomputed after each answer, with defaults standing in for skipped fields,
// so a field appears as soon as its condition holds. The collected answers
// are then validated against the visible fields.
func (f *Filler) Fill(ctx context.Context, def definition.FormDefinition) (validation.Result, error) {
	if f.driver == nil {
		return validation.Result{}, ErrNoDriver
	}
	compiled, err := f.service.Compile(def)
	if err != nil {
		return validation.Result{}, err
	}

	index := def.IndexByID()
	values := make(map[string]any, len(def.Fields))
	for _, id := range compiled.Order() {
		field := def.Fields[index[id]]

		visible, err := f.service.ComputeVisibility(def, compiled.WithDefaults(values))
		if err != nil {
			return validation.Result{}, err
		}
		if !visible[id] {
			f.logger.Debug("skipping hidden field", "field", id)
			continue
		}

		answer, set, err := f.ask(ctx, field)
		if err != nil {
			return validation.Result{}, fmt.Errorf("prompt: field %q: %w", field.Name, err)
		}
		if set {
			values[field.Name] = answer
		}
	}

	result := f.service.ValidateVisible(values, def)
	if !result.Success {
		for _, issue := range result.Issues {
			if err := f.driver.Info(ctx, fmt.Sprintf("%s: %s", issue.FieldPath, issue.Message)); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// Fill is New(options...).Fill(ctx, def).
func Fill(ctx context.Context, def definition.FormDefinition, options ...Option) (validation.Result, error) {
	return New(options...).Fill(ctx, def)
}

func (f *Filler) ask(ctx context.Context, field definition.FieldDefinition) (any, bool, error) {
	message := label(field)
	switch field.Kind {
	case definition.KindBoolean:
		def, _ := definition.CoerceBool(field.DefaultValue)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: field.Placeholder})
		return answer, err == nil, err

	case definition.KindSingleChoice:
		return f.choose(ctx, field, message)

	case definition.KindLongText:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: defaultText(field), Help: field.Placeholder})
		return answer, err == nil && answer != "", err

	default:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   defaultText(field),
			Help:      field.Placeholder,
			Validator: inputValidator(field),
		})
		return answer, err == nil && strings.TrimSpace(answer) != "", err
	}
}

func (f *Filler) choose(ctx context.Context, field definition.FieldDefinition, message string) (any, bool, error) {
	labels := make([]string, 0, len(field.Options)+1)
	offset := 0
	if !field.Required {
		labels = append(labels, skipOption)
		offset = 1
	}
	defaultIndex := 0
	for i, opt := range field.Options {
		labels = append(labels, optionLabel(opt))
		if field.HasDefault() && definition.LooseEqual(field.DefaultValue, opt.Value) {
			defaultIndex = i + offset
		}
	}

	picked, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: defaultIndex, Help: field.Placeholder})
	if err != nil {
		return nil, false, err
	}
	picked -= offset
	if picked < 0 || picked >= len(field.Options) {
		return nil, false, nil
	}
	return field.Options[picked].Value, true, nil
}

func inputValidator(field definition.FieldDefinition) func(string) error {
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			if field.Required && !field.HasDefault() {
				return errors.New("a value is required")
			}
			return nil
		}
		switch field.Kind {
		case definition.KindNumber:
			if _, ok := definition.CoerceNumber(answer); !ok {
				return errors.New("expected a number")
			}
		case definition.KindDate:
			if _, ok := definition.CoerceDate(answer); !ok {
				return errors.New("expected a date")
			}
		}
		return nil
	}
}

func label(field definition.FieldDefinition) string {
	text := field.Label
	if text == "" {
		text = field.Name
	}
	if field.Required {
		text += " *"
	}
	return text
}

func optionLabel(opt definition.Option) string {
	if opt.Label != "" {
		return opt.Label
	}
	return definition.CoerceString(opt.Value)
}

func defaultText(field definition.FieldDefinition) string {
	if !field.HasDefault() {
		return ""
	}
	return definition.CoerceString(field.DefaultValue)
}
