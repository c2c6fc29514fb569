package config

import "time"

// Default values for configuration fields.
const (
	DefaultCacheMaxEntries  = 256
	DefaultFormPath         = "form"
	DefaultSanitizeHTML     = false
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "formcompiler"
	DefaultWatchDebounce    = 100 * time.Millisecond
)

// DefaultWatchExtensions lists the definition file extensions watched by
// default.
func DefaultWatchExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values. Booleans keep whatever the document said;
// Load seeds them with their defaults before decoding.
func ApplyDefaults(cfg *Config) {
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Validation.FormPath == "" {
		cfg.Validation.FormPath = DefaultFormPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = DefaultWatchExtensions()
	}
}
