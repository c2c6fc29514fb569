package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcompiler/internal/watch"
	"github.com/goliatone/go-formcompiler/pkg/openapi"
	"github.com/goliatone/go-formcompiler/pkg/prompt"
	"github.com/goliatone/go-formcompiler/pkg/visibility"
)

type compileOutput struct {
	Success  bool     `json:"success" yaml:"success"`
	SchemaID string   `json:"schemaId" yaml:"schemaId"`
	Key      string   `json:"key" yaml:"key"`
	Version  string   `json:"version" yaml:"version"`
	Order    []string `json:"order" yaml:"order"`
}

func (a *app) newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <definition>",
		Short: "Check a definition and compile it into a schema",
		Long: `Check a form definition and compile it into a validation schema.

The definition is checked for structural problems (missing ids, duplicate
names, choices without options) and for circular visibility conditions.

Examples:
  formc compile contact.yaml
  formc compile contact.json --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, failed, err := a.loadDefinition(args[0])
			if err != nil {
				return err
			}
			if failed != nil {
				return a.writeResult(*failed)
			}
			compiled, err := a.service.Compile(def)
			if err != nil {
				return a.writeResult(a.service.FailureResult(err))
			}
			return a.write(compileOutput{
				Success:  true,
				SchemaID: compiled.ID().String(),
				Key:      compiled.Key(),
				Version:  compiled.Version(),
				Order:    compiled.Order(),
			})
		},
	}
}

func (a *app) newValidateCmd() *cobra.Command {
	var visibleOnly bool
	cmd := &cobra.Command{
		Use:   "validate <definition> <data>",
		Short: "Validate submitted data against a definition",
		Long: `Validate a JSON or YAML data file against a form definition.

On success the coerced record is printed; otherwise every issue is listed.
With --visible, rules of fields hidden by their conditions are skipped.

Examples:
  formc validate contact.yaml submission.json
  formc validate contact.yaml submission.json --visible`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, failed, err := a.loadDefinition(args[0])
			if err != nil {
				return err
			}
			if failed != nil {
				return a.writeResult(*failed)
			}
			values, err := loadValues(args[1])
			if err != nil {
				return err
			}
			if visibleOnly {
				return a.writeResult(a.service.ValidateVisible(values, def))
			}
			return a.writeResult(a.service.Validate(values, def))
		},
	}
	cmd.Flags().BoolVar(&visibleOnly, "visible", false, "only validate fields visible for the data")
	return cmd
}

type visibilityOutput struct {
	Visible visibility.Map `json:"visible" yaml:"visible"`
	Hidden  []string       `json:"hidden" yaml:"hidden"`
}

func (a *app) newVisibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visibility <definition> <values>",
		Short: "Evaluate field visibility for a set of values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, failed, err := a.loadDefinition(args[0])
			if err != nil {
				return err
			}
			if failed != nil {
				return a.writeResult(*failed)
			}
			values, err := loadValues(args[1])
			if err != nil {
				return err
			}
			visible, err := a.service.ComputeVisibility(def, values)
			if err != nil {
				return a.writeResult(a.service.FailureResult(err))
			}
			hidden := visible.Hidden()
			if hidden == nil {
				hidden = []string{}
			}
			return a.write(visibilityOutput{Visible: visible, Hidden: hidden})
		},
	}
}

func (a *app) newImportOpenAPICmd() *cobra.Command {
	var (
		operationID string
		list        bool
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <spec>",
		Short: "Build a definition from an OpenAPI request body",
		Long: `Build a form definition from the request body of an OpenAPI operation.

Object properties become fields sorted by name. Enums become single choices,
date formats become dates and an x-condition extension declares visibility.

Examples:
  formc import-openapi api.yaml --list
  formc import-openapi api.yaml --operation createArticle > article.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if list {
				ids, err := openapi.OperationIDs(cmd.Context(), doc)
				if err != nil {
					return err
				}
				return a.write(ids)
			}
			if operationID == "" {
				return errors.New("--operation is required unless --list is set")
			}
			def, err := openapi.ImportDocument(cmd.Context(), doc, operationID)
			if err != nil {
				return err
			}
			a.logger.Debug("definition imported", "operation", operationID, "fields", len(def.Fields))
			return a.write(def)
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", "", "operation id to import")
	cmd.Flags().BoolVar(&list, "list", false, "list operation ids instead of importing")
	return cmd
}

func (a *app) newFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill <definition>",
		Short: "Fill a definition interactively",
		Long: `Prompt for every visible field of a definition on the terminal.

Fields appear in dependency order; a field guarded by a condition is only
asked once the answers so far make it visible. The collected record is
validated and printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, failed, err := a.loadDefinition(args[0])
			if err != nil {
				return err
			}
			if failed != nil {
				return a.writeResult(*failed)
			}
			driver := a.driver
			if driver == nil {
				driver = prompt.SurveyDriver(a.stderr)
			}
			filler := prompt.New(prompt.WithDriver(driver), prompt.WithService(a.service), prompt.WithLogger(a.logger))
			result, err := filler.Fill(cmd.Context(), def)
			if err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					return errors.New("aborted")
				}
				return a.writeResult(a.service.FailureResult(err))
			}
			return a.writeResult(result)
		},
	}
}

func (a *app) newWatchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Recompile a directory of definitions on every change",
		Long: `Compile every definition under a directory, then watch it and recompile
after each change. Unchanged definitions are served from the schema cache.

Examples:
  formc watch ./forms
  formc watch ./forms --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := args[0]

			recompiler := watch.NewRecompiler(dir, a.service, a.logger, a.cfg.Watch.Extensions...)
			report := func() error {
				outcomes, err := recompiler.Compile(ctx)
				if err != nil {
					return err
				}
				return a.write(outcomes)
			}
			if err := report(); err != nil {
				return err
			}

			if metricsAddr != "" {
				if a.registry == nil {
					return errors.New("--metrics-addr requires metrics.enabled")
				}
				server := &http.Server{
					Addr:              metricsAddr,
					Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server failed", "error", err)
					}
				}()
				defer server.Close()
				a.logger.Info("serving metrics", "addr", metricsAddr)
			}

			w, err := watch.New(watch.Config{
				Path:       dir,
				Debounce:   a.cfg.Watch.Debounce,
				Extensions: a.cfg.Watch.Extensions,
				SkipHidden: true,
			}, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := w.Stop(); err != nil {
					a.logger.Warn("stopping watcher", "error", err)
				}
			}()

			if err := w.Watch(ctx, func(context.Context) error { return report() }); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}
