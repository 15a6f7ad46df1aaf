// Package logging assembles the structured slog loggers used across the
// catalog. It owns the console and JSON handlers, level and output
// plumbing, and attribute helpers so scan, relink, and fill-up code emit
// log lines with the same shape. A no-op logger is provided for tests
// and wiring code that cannot fail.
package logging
