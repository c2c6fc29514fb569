package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// FORMCOMPILER_CACHE_MAX_ENTRIES.
const EnvPrefix = "FORMCOMPILER_"

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file and
// starts from defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Validation: ValidationConfig{SanitizeHTML: DefaultSanitizeHTML},
		Metrics:    MetricsConfig{Enabled: DefaultMetricsEnabled},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document into cfg, leaving fields the document does
// not mention untouched.
func Parse(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yaml.Unmarshal(data, cfg)
}

type lookupFunc func(string) (string, bool)

func applyEnvOverrides(cfg *Config, lookup lookupFunc) {
	get := func(key string) (string, bool) {
		val, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(val) == "" {
			return "", false
		}
		return strings.TrimSpace(val), true
	}

	if val, ok := get("CACHE_MAX_ENTRIES"); ok {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}
	if val, ok := get("VALIDATION_FORM_PATH"); ok {
		cfg.Validation.FormPath = val
	}
	if val, ok := get("VALIDATION_SANITIZE_HTML"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Validation.SanitizeHTML = b
		}
	}
	if val, ok := get("LOGGING_LEVEL"); ok {
		cfg.Logging.Level = val
	}
	if val, ok := get("LOGGING_FORMAT"); ok {
		cfg.Logging.Format = val
	}
	if val, ok := get("METRICS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val, ok := get("METRICS_NAMESPACE"); ok {
		cfg.Metrics.Namespace = val
	}
	if val, ok := get("WATCH_DEBOUNCE"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val, ok := get("WATCH_EXTENSIONS"); ok {
		var exts []string
		for _, ext := range strings.Split(val, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		if len(exts) > 0 {
			cfg.Watch.Extensions = exts
		}
	}
}
