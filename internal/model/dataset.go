package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Mode selects what a dataset entry holds.
type Mode string

const (
	// ModeFull stores complete card records.
	ModeFull Mode = "full"

	// ModeIDs stores only card identifiers. This is the reduced form the
	// crawler produced before detail resolution existed.
	ModeIDs Mode = "ids"
)

// Entry is one element of a tier partition.
// In full mode Card is set; in ID mode only ID is set.
type Entry struct {
	// ID is the card identifier. Always set.
	ID string

	// Card is the full record, nil for reduced entries.
	Card *Card
}

// NewEntry builds the entry for card according to mode.
func NewEntry(card *Card, mode Mode) Entry {
	if mode == ModeIDs {
		return Entry{ID: card.ID}
	}
	return Entry{ID: card.ID, Card: card}
}

// MarshalJSON encodes reduced entries as bare strings and full entries as
// objects.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Card == nil {
		return json.Marshal(e.ID)
	}
	return json.Marshal(e.Card)
}

// UnmarshalJSON accepts both the bare string and the object form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = Entry{ID: id}
		return nil
	}

	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return fmt.Errorf("decode dataset entry: %w", err)
	}
	*e = Entry{ID: card.ID, Card: &card}
	return nil
}

// Dataset maps a tier to its entries in insertion order.
// It only grows: entries are appended, never replaced or removed.
type Dataset map[string][]Entry

// NewDataset returns an empty dataset.
func NewDataset() Dataset {
	return make(Dataset)
}

// Append adds entry to the partition for tier, creating it if absent.
func (d Dataset) Append(tier string, entry Entry) {
	d[tier] = append(d[tier], entry)
}

// Len returns the number of entries in the partition for tier.
func (d Dataset) Len(tier string) int {
	return len(d[tier])
}

// Count returns the number of entries across all tiers.
func (d Dataset) Count() int {
	total := 0
	for _, entries := range d {
		total += len(entries)
	}
	return total
}

// Tiers returns the tier names in sorted order.
func (d Dataset) Tiers() []string {
	tiers := make([]string, 0, len(d))
	for tier := range d {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	return tiers
}
