// Package validation is the entry point ordinary callers use. A Service checks
// form definitions, compiles them through a shared cache, validates submitted
// data and computes field visibility.
package validation

import (
	"errors"
	"log/slog"
	"time"

	"github.com/goliatone/go-formcompiler/internal/graph"
	"github.com/goliatone/go-formcompiler/pkg/cache"
	"github.com/goliatone/go-formcompiler/pkg/config"
	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"github.com/goliatone/go-formcompiler/pkg/metadata"
	"github.com/goliatone/go-formcompiler/pkg/metrics"
	"github.com/goliatone/go-formcompiler/pkg/schema"
	"github.com/goliatone/go-formcompiler/pkg/visibility"
)

const (
	// DefaultCacheSize is used when no cache or size is configured.
	DefaultCacheSize = config.DefaultCacheMaxEntries
	// DefaultFormPath labels issues that concern the whole definition.
	DefaultFormPath = config.DefaultFormPath

	cacheName = "schemas"
)

// Option customises a Service.
type Option func(*Service)

// WithCache shares an existing cache. It takes precedence over WithCacheSize.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheSize sets the capacity of the cache the Service creates.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithBuilder injects a custom schema builder.
func WithBuilder(b *schema.Builder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records compile, validation and cache events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFormPath overrides the field path used for definition-level issues.
func WithFormPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.formPath = path
		}
	}
}

// WithEvaluator swaps the visibility condition evaluator.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(s *Service) {
		s.evaluator = e
	}
}

// FromConfig applies the cache size, form path and sanitisation settings of
// cfg. Later options still override them.
func FromConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		s.cacheSize = cfg.Cache.MaxEntries
		if cfg.Validation.FormPath != "" {
			s.formPath = cfg.Validation.FormPath
		}
		s.sanitize = cfg.Validation.SanitizeHTML
	}
}

// Service orchestrates metadata validation, dependency analysis, cached
// compilation, data validation and visibility. It is safe for concurrent use.
type Service struct {
	cache     *cache.Cache
	cacheSize int
	builder   *schema.Builder
	engine    *visibility.Engine
	evaluator visibility.Evaluator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	formPath  string
	sanitize  bool
}

// New constructs a Service. Without WithCache it owns a cache sized by
// WithCacheSize, falling back to DefaultCacheSize.
func New(options ...Option) *Service {
	s := &Service{
		cacheSize: DefaultCacheSize,
		formPath:  DefaultFormPath,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.builder == nil {
		var builderOpts []schema.Option
		if s.sanitize {
			builderOpts = append(builderOpts, schema.WithSanitizer(schema.StrictSanitizer()))
		}
		s.builder = schema.NewBuilder(builderOpts...)
	}

	if s.cache == nil {
		size := s.cacheSize
		if size <= 0 {
			s.logger.Warn("invalid cache size, using default", "size", size, "default", DefaultCacheSize)
			size = DefaultCacheSize
		}
		var cacheOpts []cache.Option
		if s.metrics != nil {
			cacheOpts = append(cacheOpts, cache.WithObserver(s.metrics.CacheObserver(cacheName)))
		}
		// size is positive here, New cannot fail.
		s.cache, _ = cache.New(size, cacheOpts...)
	}

	s.engine = visibility.NewEngine(visibility.WithEvaluator(s.evaluator))
	return s
}

// Cache exposes the underlying compilation cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// ValidateMetadata runs the structural checks only. Data is always nil.
func (s *Service) ValidateMetadata(def definition.FormDefinition) Result {
	report := metadata.Validate(def)
	if report.Valid() {
		return Result{Success: true}
	}
	return definitionFailure(s.formPath, report.Err())
}

// Compile returns the schema for def, compiling it on a cache miss. Errors
// are *formerrors.ErrorList values holding Validation, MissingOption,
// CircularReference or Unknown entries.
func (s *Service) Compile(def definition.FormDefinition) (*schema.Schema, error) {
	key, err := definition.CanonicalKey(def)
	if err != nil {
		list := formerrors.AsList(unknown(err))
		s.observeCompile(key, nil, list, 0)
		return nil, s.compileFailed(key, list)
	}

	compiled, hit, err := s.cache.GetOrCompile(key, func() (*schema.Schema, error) {
		started := time.Now()
		built, err := s.build(def)
		s.observeCompile(key, built, formerrors.AsList(err), time.Since(started))
		return built, err
	})
	if err != nil {
		return nil, s.compileFailed(key, formerrors.AsList(err))
	}
	if hit {
		s.logger.Debug("schema cache hit", "key", key, "schema_id", compiled.ID())
	}
	return compiled, nil
}

// build runs inside the cache flight. A cache hit means the same content was
// already accepted, so the checks only run on a miss.
func (s *Service) build(def definition.FormDefinition) (*schema.Schema, error) {
	if report := metadata.Validate(def); !report.Valid() {
		return nil, report.List()
	}
	plan, err := graph.Analyze(def)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(def, plan.Order)
}

// observeCompile records one actual compilation; callers that waited on a
// shared flight are not counted again.
func (s *Service) observeCompile(key string, compiled *schema.Schema, list *formerrors.ErrorList, elapsed time.Duration) {
	outcome := metrics.OutcomeSuccess
	if list.HasErrors() {
		outcome = string(list.Errors[0].Kind)
	}
	if s.metrics != nil {
		s.metrics.RecordCompile(outcome, elapsed)
	}
	if compiled != nil {
		s.logger.Debug("schema compiled", "key", key, "schema_id", compiled.ID(), "fields", len(compiled.Fields()), "elapsed", elapsed)
	}
}

func (s *Service) compileFailed(key string, list *formerrors.ErrorList) error {
	kind := formerrors.KindUnknown
	if list.HasErrors() {
		kind = list.Errors[0].Kind
	}

	attrs := []any{"key", key, "kind", kind, "errors", list.Count()}
	if kind == formerrors.KindUnknown {
		s.logger.Error("schema compilation failed", append(attrs, "error", list.Error())...)
	} else {
		s.logger.Warn("form definition rejected", attrs...)
	}
	return list
}

// Validate checks def, compiles it and applies the schema to data. Either all
// of data is accepted with coercions applied, or every violation is returned.
func (s *Service) Validate(data map[string]any, def definition.FormDefinition) Result {
	compiled, err := s.Compile(def)
	if err != nil {
		return s.record(definitionFailure(s.formPath, err))
	}
	out, violations := compiled.Validate(data)
	if len(violations) > 0 {
		return s.record(dataFailure(violations))
	}
	return s.record(success(out))
}

// ValidateRaw decodes an untyped definition (a map from JSON, or the document
// itself) before validating data against it.
func (s *Service) ValidateRaw(data map[string]any, raw any) Result {
	def, report := metadata.Decode(raw)
	if !report.Valid() {
		return s.record(definitionFailure(s.formPath, report.Err()))
	}
	return s.Validate(data, def)
}

// ValidateVisible validates data against the fields visible for data. Rules
// of hidden fields are skipped and their values dropped from the output.
// Visibility sees declared defaults in place of absent values, matching the
// record the schema produces.
func (s *Service) ValidateVisible(data map[string]any, def definition.FormDefinition) Result {
	compiled, err := s.Compile(def)
	if err != nil {
		return s.record(definitionFailure(s.formPath, err))
	}
	visible, err := s.engine.Compute(def, compiled.Order(), compiled.WithDefaults(data))
	if err != nil {
		return s.record(definitionFailure(s.formPath, unknown(err)))
	}
	out, violations := compiled.ValidateVisible(data, visible)
	if len(violations) > 0 {
		return s.record(dataFailure(violations))
	}
	return s.record(success(out))
}

// ComputeVisibility returns the visibility of every field of def, keyed by
// field id, for values keyed by field name. The evaluation order comes from the cached
// schema, so def must compile.
func (s *Service) ComputeVisibility(def definition.FormDefinition, values map[string]any) (visibility.Map, error) {
	compiled, err := s.Compile(def)
	if err != nil {
		return nil, err
	}
	return s.engine.Compute(def, compiled.Order(), values)
}

// FailureResult converts a definition error, such as one returned by Compile
// or metadata.Decode, into a failed Result under the configured form path.
func (s *Service) FailureResult(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	return definitionFailure(s.formPath, unknown(err))
}

// ClearCache drops every compiled schema.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Debug("schema cache cleared")
}

func (s *Service) record(result Result) Result {
	if s.metrics != nil {
		s.metrics.RecordValidation(result.Success)
	}
	return result
}

func unknown(err error) error {
	var fe *formerrors.Error
	var list *formerrors.ErrorList
	if errors.As(err, &fe) || errors.As(err, &list) {
		return err
	}
	return formerrors.Unknown(err)
}
