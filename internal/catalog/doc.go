// Package catalog keeps a SQLite ledger of surfvote runs.
//
// Each run gets one row in runs and one row per hemisphere describing how
// many files voted, how many vertices were decided, and the summary
// statistics or the error that stopped it. The ledger is write-mostly: the
// history command reads it back, but nothing in it feeds a vote.
//
// Schema changes live in migrations/*.sql and are applied in file-name order
// on Open, tracked in schema_migrations.
package catalog
