// Package main hosts the surfvote CLI.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the slog logger from the [logging] section, and hands work to the internal
// packages: run drives the full subject pipeline, vote and inspect operate on
// annotation files directly, and history reads the SQLite run ledger.
package main
