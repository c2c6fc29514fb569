package config

import (
	"fmt"
	"strings"
)

// FieldError reports one invalid configuration value.
type FieldError struct {
	// Field is the dotted path, e.g. "cache.max_entries".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found by Validate.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "config: validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "config: validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks cfg and returns a ValidationError listing every problem.
func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Cache.MaxEntries <= 0 {
		add("cache.max_entries", "must be positive, got %d", cfg.Cache.MaxEntries)
	}
	if strings.TrimSpace(cfg.Validation.FormPath) == "" {
		add("validation.form_path", "must not be empty")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", "unknown level %q", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		add("logging.format", "must be json or text, got %q", cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		add("metrics.namespace", "required when metrics are enabled")
	}
	if cfg.Watch.Debounce < 0 {
		add("watch.debounce", "must not be negative")
	}
	for i, ext := range cfg.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			add(fmt.Sprintf("watch.extensions[%d]", i), "must start with a dot, got %q", ext)
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
