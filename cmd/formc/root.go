package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formcompiler/pkg/config"
	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/logging"
	"github.com/goliatone/go-formcompiler/pkg/metadata"
	"github.com/goliatone/go-formcompiler/pkg/metrics"
	"github.com/goliatone/go-formcompiler/pkg/prompt"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

// errFailed marks a command whose failure was already written to stdout.
var errFailed = errors.New("formc: command failed")

// app carries global flags and the services built from them.
type app struct {
	cfgFile string
	verbose bool
	output  string

	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	service  *validation.Service

	// driver overrides the terminal prompt driver for fill.
	driver prompt.Driver
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "formc",
		Short: "Compile and validate declarative form definitions",
		Long: `formc compiles JSON or YAML form definitions into validation schemas,
validates submitted data against them and evaluates conditional visibility.

Results are written to stdout as JSON (or YAML with --output yaml). Commands
exit with status 1 when the definition or the data is rejected.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "output format: json or yaml")

	root.AddCommand(
		a.newCompileCmd(),
		a.newValidateCmd(),
		a.newVisibilityCmd(),
		a.newImportOpenAPICmd(),
		a.newFillCmd(),
		a.newWatchCmd(),
	)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root
}

// run executes args and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(a.stderr, "formc:", err)
		}
		return 1
	}
	return 0
}

func (a *app) setup() error {
	if a.output != "json" && a.output != "yaml" {
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: a.stderr})
	if err != nil {
		return err
	}
	a.logger = logger

	opts := []validation.Option{validation.FromConfig(cfg), validation.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		m := metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace, Subsystem: cfg.Metrics.Subsystem}, a.registry)
		opts = append(opts, validation.WithMetrics(m))
	}
	a.service = validation.New(opts...)
	return nil
}

// write renders v in the selected output format.
func (a *app) write(v any) error {
	if a.output == "yaml" {
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResult prints result and turns a failed one into errFailed.
func (a *app) writeResult(result validation.Result) error {
	if err := a.write(result); err != nil {
		return err
	}
	if !result.Success {
		return errFailed
	}
	return nil
}

// loadDefinition decodes a definition file. Shape and metadata problems come
// back as a failed Result rather than an error.
func (a *app) loadDefinition(path string) (definition.FormDefinition, *validation.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return definition.FormDefinition{}, nil, fmt.Errorf("read definition: %w", err)
	}
	def, report := metadata.Decode(data)
	if !report.Valid() {
		failed := a.service.FailureResult(report.Err())
		return definition.FormDefinition{}, &failed, nil
	}
	return def, nil, nil
}

func loadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	return definition.ParseValues(data, path)
}
