package model

import (
	"encoding/json"
	"strings"
)

// Sentinel values substituted for fields that could not be resolved.
const (
	// NotAvailable is used for name, image and description.
	NotAvailable = "N/A"

	// UnknownTier is used when no tier breadcrumb was found.
	UnknownTier = "Unknown"

	// AnonymousCreator is the serialized form of an empty creator list.
	AnonymousCreator = "Anonymous"
)

// creatorSeparator joins creator names in the serialized form.
const creatorSeparator = ", "

// Card is one catalog item resolved from its detail page.
// A Card is written once and never updated; re-processing the same ID
// produces a new record.
type Card struct {
	// ID is the final path segment of the detail URL.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Image is the URL of the card's video or image asset.
	Image string `json:"image"`

	// Description is the first line of the page description.
	Description string `json:"description"`

	// Tier is the categorical attribute the dataset is partitioned on.
	Tier string `json:"tier"`

	// Creators lists the attributed creators in page order.
	// It is serialized as a single comma-joined string.
	Creators Creators `json:"creator"`
}

// NewCard returns a Card with every field set to its sentinel.
func NewCard(id string) *Card {
	return &Card{
		ID:          id,
		Name:        NotAvailable,
		Image:       NotAvailable,
		Description: NotAvailable,
		Tier:        UnknownTier,
	}
}

// TierKey returns the partition key for the card.
// An empty tier is filed under UnknownTier so every card lands in exactly
// one partition.
func (c *Card) TierKey() string {
	tier := strings.TrimSpace(c.Tier)
	if tier == "" {
		return UnknownTier
	}
	return tier
}

// Creators is an ordered list of creator names.
type Creators []string

// ParseCreators splits a serialized creator string.
// AnonymousCreator and blank input yield an empty list; empty items are
// dropped.
func ParseCreators(s string) Creators {
	s = strings.TrimSpace(s)
	if s == "" || s == AnonymousCreator {
		return Creators{}
	}

	parts := strings.Split(s, ",")
	creators := make(Creators, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			creators = append(creators, p)
		}
	}
	return creators
}

// String returns the comma-joined form, or AnonymousCreator when empty.
func (c Creators) String() string {
	if len(c) == 0 {
		return AnonymousCreator
	}
	return strings.Join(c, creatorSeparator)
}

// MarshalJSON encodes the list as a single string.
func (c Creators) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the serialized string or a JSON array.
func (c *Creators) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseCreators(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = ParseCreators(strings.Join(list, ","))
	return nil
}
