// Package database provides SQLite-based storage for cardcrawl.
//
// CardDB keeps two tables in one file:
//   - cards: one append-only row per resolved card, ordered by insertion
//   - checkpoint: a single row holding the last completed listing page
//
// CardDB.Dataset and CardDB.Checkpoint return views that satisfy the
// storage.DatasetStore and storage.CheckpointStore interfaces, so the crawl
// orchestrator runs unchanged against either backend.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The database is a single file next to the JSON dataset it replaces
// 2. CGO-free implementation allows easy cross-compilation
// 3. An append is one INSERT instead of a full-file rewrite
// 4. WAL mode keeps committed rows intact across a crash
package database
