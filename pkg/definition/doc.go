// Package definition holds the declarative form model: field kinds, field
// descriptors, visibility conditions, and the form definition that groups
// them. It also provides the helpers every later stage agrees on: a
// content-derived cache key, JSON/YAML decoding from files or an fs.FS, and
// the value coercions shared by schema validation and visibility evaluation.
//
// Definitions are plain values. Nothing in this package validates structure;
// that is the job of pkg/metadata, which callers run before compiling.
package definition
