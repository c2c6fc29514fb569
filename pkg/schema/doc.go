// Package schema turns a validated, acyclic form definition into a compiled
// Schema: one Rule per field, keyed by field name, applied together to a
// submitted data record.
//
// A Schema is immutable once built and safe for concurrent use.
package schema
