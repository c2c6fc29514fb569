package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formcompiler/pkg/cache"
	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/schema"
)

var _ cache.Observer = (*CacheObserver)(nil)

func TestCacheObserverFeedsCollectors(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(Config{Namespace: "test"}, registry)

	c, err := cache.New(1, cache.WithObserver(m.CacheObserver("schemas")))
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	builder := schema.NewBuilder()
	build := func(version string) *schema.Schema {
		compiled, err := builder.Build(definition.FormDefinition{Version: version}, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return compiled
	}

	c.Get("a")
	c.Put("a", build("1"))
	c.Get("a")
	c.Put("b", build("2"))

	cases := map[string]float64{
		"hits":      testutil.ToFloat64(m.cacheHits.WithLabelValues("schemas")),
		"misses":    testutil.ToFloat64(m.cacheMisses.WithLabelValues("schemas")),
		"evictions": testutil.ToFloat64(m.cacheEvictions.WithLabelValues("schemas")),
		"entries":   testutil.ToFloat64(m.cacheEntries.WithLabelValues("schemas")),
	}
	want := map[string]float64{"hits": 1, "misses": 1, "evictions": 1, "entries": 1}
	for name, got := range cases {
		if got != want[name] {
			t.Fatalf("%s = %v, want %v", name, got, want[name])
		}
	}
}

func TestCompileAndValidationCounters(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(Config{Namespace: "test"}, registry)

	m.RecordCompile(OutcomeSuccess, 2*time.Millisecond)
	m.RecordCompile("circular_reference", time.Millisecond)
	m.RecordValidation(true)
	m.RecordValidation(false)
	m.RecordValidation(false)

	if got := testutil.ToFloat64(m.compilations.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Fatalf("success compilations = %v", got)
	}
	if got := testutil.ToFloat64(m.validations.WithLabelValues(OutcomeFailure)); got != 2 {
		t.Fatalf("failed validations = %v", got)
	}

	expected := `
# HELP test_compilations_total Total number of schema compilations by outcome
# TYPE test_compilations_total counter
test_compilations_total{outcome="circular_reference"} 1
test_compilations_total{outcome="success"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_compilations_total"); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}
