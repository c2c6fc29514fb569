// Package watch recompiles a directory of form definitions whenever its files
// change. File events are debounced so an editor save triggers one reload.
package watch
