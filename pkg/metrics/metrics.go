// Package metrics exposes Prometheus collectors for the compilation cache, the
// schema compiler and the validation service.
//
// Metrics (with the default namespace):
//   - formcompiler_cache_hits_total{cache}
//   - formcompiler_cache_misses_total{cache}
//   - formcompiler_cache_evictions_total{cache}
//   - formcompiler_cache_entries{cache}
//   - formcompiler_compilations_total{outcome}
//   - formcompiler_compile_duration_seconds
//   - formcompiler_validations_total{outcome}
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Compile and validation outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Config names the collectors.
type Config struct {
	Namespace string
	Subsystem string
}

// Metrics groups every collector. The zero value is not usable; call New.
type Metrics struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec

	compilations    *prometheus.CounterVec
	compileDuration prometheus.Histogram

	validations *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(cfg Config, registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of compilation cache hits",
			},
			[]string{"cache"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of compilation cache misses",
			},
			[]string{"cache"},
		),
		cacheEvictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total number of schemas evicted from the compilation cache",
			},
			[]string{"cache"},
		),
		cacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of schemas held by the compilation cache",
			},
			[]string{"cache"},
		),
		compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compilations_total",
				Help:      "Total number of schema compilations by outcome",
			},
			[]string{"outcome"},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compile_duration_seconds",
				Help:      "Time spent compiling form definitions",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of data validations by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.cacheEvictions,
		m.cacheEntries,
		m.compilations,
		m.compileDuration,
		m.validations,
	)
	return m
}

// RecordCompile counts one compilation and observes its duration. outcome is
// OutcomeSuccess or the failing error kind.
func (m *Metrics) RecordCompile(outcome string, elapsed time.Duration) {
	m.compilations.WithLabelValues(outcome).Inc()
	m.compileDuration.Observe(elapsed.Seconds())
}

// RecordValidation counts one data validation.
func (m *Metrics) RecordValidation(success bool) {
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// CacheObserver returns an observer reporting events for the named cache. It
// satisfies cache.Observer.
func (m *Metrics) CacheObserver(name string) *CacheObserver {
	return &CacheObserver{metrics: m, name: name}
}

// CacheObserver forwards cache events to the cache collectors.
type CacheObserver struct {
	metrics *Metrics
	name    string
}

func (o *CacheObserver) RecordHit()      { o.metrics.cacheHits.WithLabelValues(o.name).Inc() }
func (o *CacheObserver) RecordMiss()     { o.metrics.cacheMisses.WithLabelValues(o.name).Inc() }
func (o *CacheObserver) RecordEviction() { o.metrics.cacheEvictions.WithLabelValues(o.name).Inc() }

func (o *CacheObserver) UpdateSize(size int) {
	o.metrics.cacheEntries.WithLabelValues(o.name).Set(float64(size))
}
