package storage

import (
	"context"

	"github.com/nao1215/cardcrawl/internal/model"
)

// CheckpointStore persists the last fully processed listing page.
type CheckpointStore interface {
	// Read returns the last completed page, or 0 when nothing has been
	// completed yet.
	Read(ctx context.Context) (int, error)

	// Write replaces the stored page. It returns only once the value is
	// durable.
	Write(ctx context.Context, page int) error
}

// DatasetStore persists cards grouped by tier.
//
// Implementations assume a single writer. Append is a read-modify-write
// on some backends and concurrent writers would lose entries.
type DatasetStore interface {
	// Append adds card to the partition of its tier.
	Append(ctx context.Context, card *model.Card) error

	// Load returns the whole dataset. A store that has never been written
	// yields an empty dataset.
	Load(ctx context.Context) (model.Dataset, error)
}
