package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDatasetAppend tests partition creation and ordering.
func TestDatasetAppend(t *testing.T) {
	t.Parallel()

	d := NewDataset()
	d.Append("1", Entry{ID: "a"})
	d.Append("2", Entry{ID: "b"})
	d.Append("1", Entry{ID: "c"})

	if d.Count() != 3 {
		t.Errorf("expected 3 entries, got %d", d.Count())
	}
	if d.Len("1") != 2 {
		t.Errorf("expected 2 entries in tier 1, got %d", d.Len("1"))
	}
	if d.Len("missing") != 0 {
		t.Errorf("expected 0 entries in missing tier, got %d", d.Len("missing"))
	}
	if diff := cmp.Diff([]string{"1", "2"}, d.Tiers()); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
	if d["1"][0].ID != "a" || d["1"][1].ID != "c" {
		t.Errorf("expected insertion order a, c; got %s, %s", d["1"][0].ID, d["1"][1].ID)
	}
}

// TestNewEntry tests the mode switch.
func TestNewEntry(t *testing.T) {
	t.Parallel()

	card := NewCard("9")

	full := NewEntry(card, ModeFull)
	if full.Card != card || full.ID != "9" {
		t.Errorf("unexpected full entry: %+v", full)
	}

	reduced := NewEntry(card, ModeIDs)
	if reduced.Card != nil || reduced.ID != "9" {
		t.Errorf("unexpected reduced entry: %+v", reduced)
	}
}

// TestDatasetJSON tests that both entry shapes survive the file format.
func TestDatasetJSON(t *testing.T) {
	t.Parallel()

	input := `{
  "S": [
    {"id": "1", "name": "Foo", "image": "N/A", "description": "Foo from Bar", "tier": "S", "creator": "alice, bob"},
    "2"
  ]
}`

	var d Dataset
	if err := json.Unmarshal([]byte(input), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Dataset{
		"S": {
			{ID: "1", Card: &Card{
				ID: "1", Name: "Foo", Image: NotAvailable, Description: "Foo from Bar",
				Tier: "S", Creators: Creators{"alice", "bob"},
			}},
			{ID: "2"},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("decoded dataset mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantJSON := `{"S":[{"id":"1","name":"Foo","image":"N/A","description":"Foo from Bar","tier":"S","creator":"alice, bob"},"2"]}`
	if string(data) != wantJSON {
		t.Errorf("got %s, want %s", data, wantJSON)
	}
}

// TestEntryUnmarshalRejectsNumbers tests that malformed entries fail.
func TestEntryUnmarshalRejectsNumbers(t *testing.T) {
	t.Parallel()

	var e Entry
	if err := json.Unmarshal([]byte(`12`), &e); err == nil {
		t.Error("expected error for numeric entry")
	}
}
