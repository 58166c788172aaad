// Package storage persists crawl progress and the card dataset as files.
//
// FileCheckpoint keeps the last fully processed listing page as a plain
// integer. JSONDataset keeps cards grouped by tier in one JSON object. Both
// replace their file through a synced temporary file and a rename, so a
// crash leaves either the previous or the new content on disk.
//
// The CheckpointStore and DatasetStore interfaces are also implemented by
// the SQLite backend in the database package.
//
// Design decision: The JSON dataset is rewritten in full on every append.
// That keeps the file a plain tier-to-cards object any tool can read, at a
// cost linear in the dataset size per card. Large sweeps should use the
// SQLite backend, which appends one row per card.
package storage
