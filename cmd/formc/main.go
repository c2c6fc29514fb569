// Command formc compiles and validates declarative form definitions.
//
// Usage:
//
//	# Check and compile a definition
//	formc compile contact.yaml
//
//	# Validate a submission
//	formc validate contact.yaml submission.json
//
//	# Evaluate conditional visibility
//	formc visibility contact.yaml values.json
//
//	# Build a definition from an OpenAPI operation
//	formc import-openapi api.yaml --operation createArticle
//
//	# Fill a form on the terminal
//	formc fill contact.yaml
//
//	# Recompile a directory on change
//	formc watch ./forms
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
