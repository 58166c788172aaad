package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/storage"
)

// CardDB provides SQLite-based storage for resolved cards and the crawl
// checkpoint.
//
// Design decision: Cards and the checkpoint live in one database file so a
// backup or copy of the file always carries a consistent pair. Appending a
// card is a single INSERT, unlike the JSON dataset which rewrites the whole
// file.
type CardDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now is the clock used for timestamps. Tests replace it.
	now func() time.Time
}

// Options configures CardDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. A crash mid-append then loses at
	// most the uncommitted row and never corrupts earlier ones.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CardDB at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are
// created. If it is false and the database doesn't exist, an error is
// returned.
func Open(dbPath string, opts Options) (*CardDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	// synchronous(FULL) is set per connection so every commit reaches disk.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The crawler is the only writer; one connection keeps statements ordered.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CardDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CardDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CardDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CardDB) createTables() error {
	schema := `
	-- Cards are append-only; seq preserves insertion order within a tier
	CREATE TABLE IF NOT EXISTS cards (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		card_id TEXT NOT NULL,
		tier TEXT NOT NULL,
		has_record INTEGER NOT NULL DEFAULT 1,
		name TEXT,
		image TEXT,
		description TEXT,
		creator TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_tier ON cards(tier);
	CREATE INDEX IF NOT EXISTS idx_cards_card_id ON cards(card_id);

	-- The checkpoint holds a single row
	CREATE TABLE IF NOT EXISTS checkpoint (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		page INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Dataset returns a DatasetStore view that appends entries in mode.
func (cdb *CardDB) Dataset(mode model.Mode) *Dataset {
	return &Dataset{cdb: cdb, mode: mode}
}

// Checkpoint returns a CheckpointStore view of the single checkpoint row.
func (cdb *CardDB) Checkpoint() *Checkpoint {
	return &Checkpoint{cdb: cdb}
}

// Dataset stores cards as rows of the cards table.
type Dataset struct {
	cdb  *CardDB
	mode model.Mode
}

var _ storage.DatasetStore = (*Dataset)(nil)

// Append inserts one row for card. Rows are never updated, so the same ID
// processed twice yields two rows.
func (d *Dataset) Append(ctx context.Context, card *model.Card) error {
	entry := model.NewEntry(card, d.mode)

	hasRecord := 0
	var name, image, description, creatorCol sql.NullString
	if entry.Card != nil {
		hasRecord = 1
		name = sql.NullString{String: card.Name, Valid: true}
		image = sql.NullString{String: card.Image, Valid: true}
		description = sql.NullString{String: card.Description, Valid: true}
		creatorCol = sql.NullString{String: card.Creators.String(), Valid: true}
	}

	query := `
	INSERT INTO cards (card_id, tier, has_record, name, image, description, creator, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.cdb.db.ExecContext(ctx, query,
		card.ID, card.TierKey(), hasRecord, name, image, description, creatorCol,
		d.cdb.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert card %s: %w", storage.ErrPersistence, card.ID, err)
	}
	return nil
}

// Load rebuilds the tier-to-entries mapping in insertion order.
func (d *Dataset) Load(ctx context.Context) (model.Dataset, error) {
	query := `
	SELECT card_id, tier, has_record, name, image, description, creator
	FROM cards
	ORDER BY seq
	`
	rows, err := d.cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query cards: %w", storage.ErrPersistence, err)
	}
	defer rows.Close()

	dataset := model.NewDataset()
	for rows.Next() {
		var (
			id, tier                           string
			hasRecord                          int
			name, image, description, creators sql.NullString
		)
		if err := rows.Scan(&id, &tier, &hasRecord, &name, &image, &description, &creators); err != nil {
			return nil, fmt.Errorf("%w: scan card: %w", storage.ErrPersistence, err)
		}

		if hasRecord == 0 {
			dataset.Append(tier, model.Entry{ID: id})
			continue
		}
		card := &model.Card{
			ID:          id,
			Name:        name.String,
			Image:       image.String,
			Description: description.String,
			Tier:        tier,
			Creators:    model.ParseCreators(creators.String),
		}
		dataset.Append(tier, model.Entry{ID: id, Card: card})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate cards: %w", storage.ErrPersistence, err)
	}
	return dataset, nil
}

// Checkpoint stores the last completed page in a single-row table.
type Checkpoint struct {
	cdb *CardDB
}

var _ storage.CheckpointStore = (*Checkpoint)(nil)

// Read returns the stored page, or 0 when none was written yet.
func (c *Checkpoint) Read(ctx context.Context) (int, error) {
	var page int
	err := c.cdb.db.QueryRowContext(ctx, "SELECT page FROM checkpoint WHERE id = 1").Scan(&page)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read checkpoint: %w", storage.ErrPersistence, err)
	}
	if page < 0 {
		return 0, nil
	}
	return page, nil
}

// Write replaces the stored page.
func (c *Checkpoint) Write(ctx context.Context, page int) error {
	if page < 0 {
		return storage.ErrInvalidPage
	}

	query := `
	INSERT INTO checkpoint (id, page, updated_at) VALUES (1, ?, ?)
	ON CONFLICT(id) DO UPDATE SET page = excluded.page, updated_at = excluded.updated_at
	`
	if _, err := c.cdb.db.ExecContext(ctx, query, page, c.cdb.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("%w: write checkpoint: %w", storage.ErrPersistence, err)
	}
	return nil
}

// Stats summarizes the stored data.
type Stats struct {
	// Cards is the number of stored rows.
	Cards int

	// LastAppend is when the newest card was stored. Zero if none.
	LastAppend time.Time

	// CheckpointUpdated is when the checkpoint was last written. Zero if never.
	CheckpointUpdated time.Time
}

// Stats returns row counts and the latest write times.
func (cdb *CardDB) Stats(ctx context.Context) (Stats, error) {
	var (
		stats     Stats
		lastCard  sql.NullString
		lastCheck sql.NullString
	)

	err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(timestamp) FROM cards").Scan(&stats.Cards, &lastCard)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count cards: %w", err)
	}
	err = cdb.db.QueryRowContext(ctx, "SELECT updated_at FROM checkpoint WHERE id = 1").Scan(&lastCheck)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("failed to read checkpoint time: %w", err)
	}

	if lastCard.Valid {
		stats.LastAppend = parseTimestamp(lastCard.String)
	}
	if lastCheck.Valid {
		stats.CheckpointUpdated = parseTimestamp(lastCheck.String)
	}
	return stats, nil
}

// timestampFormats lists the formats parseTimestamp accepts, most specific
// first. Rows written by other SQLite clients may use the datetime() form.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// It returns the zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
