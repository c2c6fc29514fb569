package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Metrics.Enabled || cfg.Validation.SanitizeHTML {
		t.Fatalf("unexpected boolean defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formc.yaml")
	doc := `
cache:
  max_entries: 16
validation:
  form_path: definition
  sanitize_html: true
logging:
  level: debug
  format: json
metrics:
  enabled: false
watch:
  debounce: 250ms
  extensions: [".json"]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Config{
		Cache:      CacheConfig{MaxEntries: 16},
		Validation: ValidationConfig{FormPath: "definition", SanitizeHTML: true},
		Logging:    LoggingConfig{Level: "debug", Format: "json"},
		Metrics:    MetricsConfig{Enabled: false, Namespace: DefaultMetricsNamespace},
		Watch:      WatchConfig{Debounce: 250 * time.Millisecond, Extensions: []string{".json"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"FORMCOMPILER_CACHE_MAX_ENTRIES":        "8",
		"FORMCOMPILER_VALIDATION_SANITIZE_HTML": "true",
		"FORMCOMPILER_LOGGING_LEVEL":            "warn",
		"FORMCOMPILER_METRICS_ENABLED":          "false",
		"FORMCOMPILER_WATCH_DEBOUNCE":           "1s",
		"FORMCOMPILER_WATCH_EXTENSIONS":         ".yaml, .yml",
		"FORMCOMPILER_METRICS_NAMESPACE":        "  ",
	}
	lookup := func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}

	cfg := Default()
	applyEnvOverrides(cfg, lookup)

	if cfg.Cache.MaxEntries != 8 || !cfg.Validation.SanitizeHTML || cfg.Logging.Level != "warn" || cfg.Metrics.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Fatalf("unexpected debounce %s", cfg.Watch.Debounce)
	}
	if diff := cmp.Diff([]string{".yaml", ".yml"}, cfg.Watch.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Fatalf("blank override must be ignored, got %q", cfg.Metrics.Namespace)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Cache.MaxEntries = -1
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Watch.Extensions = []string{"json"}

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var fields []string
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	want := []string{"cache.max_entries", "logging.level", "logging.format", "watch.extensions[0]"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}
