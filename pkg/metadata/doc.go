// Package metadata checks form definitions for structural problems before
// they reach the dependency analyzer or the schema builder: missing or
// duplicate identifiers, unsupported kinds, choice fields without options and
// conditions pointing at fields that do not exist.
package metadata
