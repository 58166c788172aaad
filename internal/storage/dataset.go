package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/cardcrawl/internal/model"
)

// JSONDataset stores the dataset as one JSON object mapping tier to
// entries, rewritten in full on every append.
//
// Only one writer may use a file at a time. Append reads the file, adds
// the card and writes the file back; two writers would overwrite each
// other's entries. The crawler appends from a single goroutine.
type JSONDataset struct {
	path   string
	mode   model.Mode
	logger *slog.Logger
	now    func() time.Time
}

// DatasetOption configures a JSONDataset.
type DatasetOption func(*JSONDataset)

// WithMode selects full records or bare identifiers.
func WithMode(mode model.Mode) DatasetOption {
	return func(d *JSONDataset) {
		d.mode = mode
	}
}

// WithDatasetLogger sets the logger.
func WithDatasetLogger(logger *slog.Logger) DatasetOption {
	return func(d *JSONDataset) {
		d.logger = logger
	}
}

// NewJSONDataset returns a dataset stored at path.
func NewJSONDataset(path string, opts ...DatasetOption) *JSONDataset {
	d := &JSONDataset{
		path: path,
		mode: model.ModeFull,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Path returns the backing file path.
func (d *JSONDataset) Path() string {
	return d.path
}

// Load returns the stored dataset. A missing, empty or unparseable file
// reads as an empty dataset.
func (d *JSONDataset) Load(_ context.Context) (model.Dataset, error) {
	dataset, _, err := d.read()
	return dataset, err
}

// Append adds card to its tier partition and rewrites the file.
//
// Unparseable content is not silently discarded: the file is moved aside
// to "<path>.corrupt-<unix seconds>" before the new dataset is written.
func (d *JSONDataset) Append(_ context.Context, card *model.Card) error {
	dataset, corrupt, err := d.read()
	if err != nil {
		return err
	}

	if corrupt {
		aside := fmt.Sprintf("%s.corrupt-%d", d.path, d.now().Unix())
		if err := os.Rename(d.path, aside); err != nil {
			return fmt.Errorf("%w: preserve corrupt dataset %s: %w", ErrPersistence, d.path, err)
		}
		d.logger.Warn("unparseable dataset moved aside", "path", d.path, "backup", aside)
	}

	dataset.Append(card.TierKey(), model.NewEntry(card, d.mode))

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode dataset: %w", ErrPersistence, err)
	}
	if err := writeFileAtomic(d.path, data, 0600); err != nil {
		return fmt.Errorf("%w: write dataset %s: %w", ErrPersistence, d.path, err)
	}
	return nil
}

// read loads the file and reports whether it held unparseable content.
func (d *JSONDataset) read() (model.Dataset, bool, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDataset(), false, nil
		}
		return nil, false, fmt.Errorf("%w: read dataset %s: %w", ErrPersistence, d.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return model.NewDataset(), false, nil
	}

	var dataset model.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		d.logger.Warn("dataset is not valid JSON, treating as empty", "path", d.path, "error", err)
		return model.NewDataset(), true, nil
	}
	if dataset == nil {
		dataset = model.NewDataset()
	}
	return dataset, false, nil
}
