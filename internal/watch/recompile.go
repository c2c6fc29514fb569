package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

// Outcome is the compile result for one definition file.
type Outcome struct {
	Path     string `json:"path"`
	SchemaID string `json:"schemaId,omitempty"`
	Key      string `json:"key,omitempty"`
	Fields   int    `json:"fields,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the file compiled.
func (o Outcome) OK() bool {
	return o.Error == ""
}

// Recompiler compiles every definition under a directory through a shared
// service. Unchanged files hit the schema cache.
type Recompiler struct {
	fsys       fs.FS
	service    *validation.Service
	logger     *slog.Logger
	extensions []string
}

// NewRecompiler builds a Recompiler for dir.
func NewRecompiler(dir string, svc *validation.Service, logger *slog.Logger, extensions ...string) *Recompiler {
	return NewRecompilerFS(os.DirFS(dir), svc, logger, extensions...)
}

// NewRecompilerFS builds a Recompiler over fsys.
func NewRecompilerFS(fsys fs.FS, svc *validation.Service, logger *slog.Logger, extensions ...string) *Recompiler {
	if logger == nil {
		logger = slog.Default()
	}
	if svc == nil {
		svc = validation.New(validation.WithLogger(logger))
	}
	if len(extensions) == 0 {
		extensions = DefaultConfig().Extensions
	}
	return &Recompiler{fsys: fsys, service: svc, logger: logger, extensions: extensions}
}

// Compile parses and compiles every matching file, sorted by path. A file that
// fails produces an Outcome with Error set; only walk failures are returned.
func (r *Recompiler) Compile(ctx context.Context) ([]Outcome, error) {
	var paths []string
	err := fs.WalkDir(r.fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			if path != "." && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if r.matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("watch: walk definitions: %w", err)
	}
	sort.Strings(paths)

	outcomes := make([]Outcome, 0, len(paths))
	failed := 0
	for _, path := range paths {
		outcome := r.compileFile(path)
		if !outcome.OK() {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	r.logger.Info("definitions compiled", "files", len(outcomes), "failed", failed, "cached", r.service.Cache().Len())
	return outcomes, nil
}

func (r *Recompiler) compileFile(path string) Outcome {
	outcome := Outcome{Path: path}

	data, err := fs.ReadFile(r.fsys, path)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	def, err := definition.Parse(data, path)
	if err != nil {
		outcome.Error = err.Error()
		r.logger.Warn("definition parse failed", "path", path, "error", err)
		return outcome
	}
	compiled, err := r.service.Compile(def)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.SchemaID = compiled.ID().String()
	outcome.Key = compiled.Key()
	outcome.Fields = len(compiled.Fields())
	return outcome
}

func (r *Recompiler) matches(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range r.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
