package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/cardcrawl/internal/model"
)

// TierCount is the number of entries stored under one tier.
type TierCount struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

// Summary describes the state of a crawl: how far the sweep got and what
// the dataset holds.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Store is the dataset backend name ("json" or "sqlite").
	Store string `json:"store"`

	// Location is the dataset file or database path.
	Location string `json:"location"`

	// Checkpoint is the last fully processed listing page.
	Checkpoint int `json:"checkpoint"`

	// TotalPages is the configured sweep bound.
	TotalPages int `json:"total_pages"`

	// Tiers lists entry counts, ordered by tier.
	Tiers []TierCount `json:"tiers"`

	// Total is the number of entries across tiers.
	Total int `json:"total"`

	// Unique is the number of distinct card identifiers. It is lower than
	// Total when cards were appended more than once.
	Unique int `json:"unique"`

	// Incomplete counts full records with at least one sentinel value for
	// name, image or description.
	Incomplete int `json:"incomplete"`
}

// NewSummary builds a Summary from a loaded dataset.
func NewSummary(dataset model.Dataset, checkpoint, totalPages int, store, location string, now time.Time) *Summary {
	s := &Summary{
		GeneratedAt: now,
		Store:       store,
		Location:    location,
		Checkpoint:  checkpoint,
		TotalPages:  totalPages,
		Tiers:       make([]TierCount, 0, len(dataset)),
	}

	seen := make(map[string]bool)
	for _, tier := range SortTiers(dataset.Tiers()) {
		entries := dataset[tier]
		s.Tiers = append(s.Tiers, TierCount{Tier: tier, Count: len(entries)})
		s.Total += len(entries)

		for _, e := range entries {
			if !seen[e.ID] {
				seen[e.ID] = true
				s.Unique++
			}
			if e.Card != nil && incomplete(e.Card) {
				s.Incomplete++
			}
		}
	}
	return s
}

// Complete reports whether the sweep reached the configured bound.
func (s *Summary) Complete() bool {
	return s.TotalPages > 0 && s.Checkpoint >= s.TotalPages
}

// Remaining returns the number of pages left to crawl.
func (s *Summary) Remaining() int {
	if s.Complete() || s.TotalPages <= 0 {
		return 0
	}
	return s.TotalPages - s.Checkpoint
}

// Percent returns sweep progress in the range 0..100.
func (s *Summary) Percent() float64 {
	if s.TotalPages <= 0 {
		return 0
	}
	if s.Complete() {
		return 100
	}
	return float64(s.Checkpoint) * 100 / float64(s.TotalPages)
}

func incomplete(c *model.Card) bool {
	return c.Name == model.NotAvailable ||
		c.Image == model.NotAvailable ||
		c.Description == model.NotAvailable
}

// SortTiers orders numeric tiers ascending, then named tiers
// alphabetically, with the Unknown tier last.
func SortTiers(tiers []string) []string {
	sorted := append([]string(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a == model.UnknownTier || b == model.UnknownTier {
			return b == model.UnknownTier && a != model.UnknownTier
		}
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return na < nb
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return a < b
		}
	})
	return sorted
}
