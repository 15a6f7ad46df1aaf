// Package scanner reconciles the catalog with the filesystem. A run has
// two phases: an existence pass that flips FileExists on known entries,
// and a discovery pass that walks the configured media roots in a
// deterministic order, probes new files, and enriches them with remote
// metadata. Per-file failures are logged and contained; they never abort
// the run.
package scanner
