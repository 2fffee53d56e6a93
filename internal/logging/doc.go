// Package logging assembles the slog loggers used by surfvote.
//
// It owns the console and JSON handlers, the standard field keys attached by
// the loader, vote engine, and pipeline, a handler that stamps every record
// with the run ID, and small helpers for warnings that must carry an event
// type, a hint, and an impact. A no-op logger is provided for tests and for
// library callers that do not want output.
//
// The core packages never print. They log through a *slog.Logger handed to
// them, and the caller decides where that output goes.
package logging
