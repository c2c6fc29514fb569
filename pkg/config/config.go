// Package config loads the YAML configuration shared by the formc CLI and
// services embedding the validation service.
//
// Loading reads the file, fills unset values with defaults, applies
// FORMCOMPILER_* environment overrides and validates the result.
package config

import "time"

// Config is the root configuration document.
type Config struct {
	Cache      CacheConfig      `yaml:"cache"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Watch      WatchConfig      `yaml:"watch"`
}

// CacheConfig sizes the compilation cache.
type CacheConfig struct {
	// MaxEntries is the number of compiled schemas kept before the least
	// recently used one is evicted.
	MaxEntries int `yaml:"max_entries"`
}

// ValidationConfig tunes the validation service.
type ValidationConfig struct {
	// FormPath labels issues that concern the definition rather than a field.
	FormPath string `yaml:"form_path"`

	// SanitizeHTML strips markup from text values before validation.
	SanitizeHTML bool `yaml:"sanitize_html"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// WatchConfig drives the definition directory watcher.
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
}
