package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nao1215/cardcrawl/internal/model"
)

func testCard(id, tier string) *model.Card {
	card := model.NewCard(id)
	card.Name = "Card " + id
	card.Tier = tier
	card.Creators = model.Creators{"alice"}
	return card
}

// TestJSONDatasetAppend tests read-modify-write accumulation.
func TestJSONDatasetAppend(t *testing.T) {
	t.Parallel()

	t.Run("missing file starts empty", func(t *testing.T) {
		t.Parallel()

		d := NewJSONDataset(filepath.Join(t.TempDir(), "cards.json"), WithDatasetLogger(discardLogger()))
		got, err := d.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Count() != 0 {
			t.Errorf("expected empty dataset, got %v", got)
		}
	})

	t.Run("groups by tier across reopen", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cards.json")
		ctx := context.Background()

		first := NewJSONDataset(path, WithDatasetLogger(discardLogger()))
		if err := first.Append(ctx, testCard("a", "1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := first.Append(ctx, testCard("b", "2")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// A new store on the same file simulates a restart.
		second := NewJSONDataset(path, WithDatasetLogger(discardLogger()))
		if err := second.Append(ctx, testCard("c", "1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := second.Append(ctx, testCard("a", "1")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := second.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := model.Dataset{
			"1": {
				{ID: "a", Card: testCard("a", "1")},
				{ID: "c", Card: testCard("c", "1")},
				{ID: "a", Card: testCard("a", "1")},
			},
			"2": {
				{ID: "b", Card: testCard("b", "2")},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("dataset mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ids mode writes bare strings", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ids.json")
		d := NewJSONDataset(path, WithMode(model.ModeIDs), WithDatasetLogger(discardLogger()))
		if err := d.Append(context.Background(), testCard("x", "S")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read dataset: %v", err)
		}
		var raw map[string][]string
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("expected bare id strings, got %s: %v", data, err)
		}
		if diff := cmp.Diff(map[string][]string{"S": {"x"}}, raw); diff != "" {
			t.Errorf("file mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty tier files under Unknown", func(t *testing.T) {
		t.Parallel()

		d := NewJSONDataset(filepath.Join(t.TempDir(), "cards.json"), WithDatasetLogger(discardLogger()))
		if err := d.Append(context.Background(), testCard("z", "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := d.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Len(model.UnknownTier) != 1 {
			t.Errorf("expected one entry under %q, got %v", model.UnknownTier, got)
		}
	})
}

// TestJSONDatasetCorrupt tests that unparseable content is preserved.
func TestJSONDatasetCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	d := NewJSONDataset(path, WithDatasetLogger(discardLogger()))
	d.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	loaded, err := d.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Count() != 0 {
		t.Errorf("expected empty dataset for corrupt file, got %v", loaded)
	}

	if err := d.Append(ctx, testCard("a", "1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup, err := os.ReadFile(path + ".corrupt-1700000000")
	if err != nil {
		t.Fatalf("expected corrupt content to be moved aside: %v", err)
	}
	if string(backup) != "{not json" {
		t.Errorf("backup content changed: %q", backup)
	}

	got, err := d.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"1"}, got.Tiers(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
}

// TestJSONDatasetFormat tests the on-disk layout.
func TestJSONDatasetFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	d := NewJSONDataset(path, WithDatasetLogger(discardLogger()))
	if err := d.Append(context.Background(), testCard("7", "6")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read dataset: %v", err)
	}
	for _, want := range []string{`"6": [`, `"id": "7"`, `"creator": "alice"`, `"image": "N/A"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in file:\n%s", want, data)
		}
	}
}
