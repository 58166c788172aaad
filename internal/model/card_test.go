package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewCard tests that a fresh card carries every sentinel.
func TestNewCard(t *testing.T) {
	t.Parallel()

	got := NewCard("42")
	want := &Card{
		ID:          "42",
		Name:        NotAvailable,
		Image:       NotAvailable,
		Description: NotAvailable,
		Tier:        UnknownTier,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewCard mismatch (-want +got):\n%s", diff)
	}
	if got.Creators.String() != AnonymousCreator {
		t.Errorf("expected creators %q, got %q", AnonymousCreator, got.Creators.String())
	}
}

// TestCardTierKey tests the partition key fallback.
func TestCardTierKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tier string
		want string
	}{
		{name: "plain tier", tier: "S", want: "S"},
		{name: "surrounding spaces", tier: "  3 ", want: "3"},
		{name: "empty tier", tier: "", want: UnknownTier},
		{name: "blank tier", tier: "   ", want: UnknownTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &Card{Tier: tt.tier}
			if got := c.TierKey(); got != tt.want {
				t.Errorf("TierKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseCreators tests splitting of the serialized creator list.
func TestParseCreators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Creators
	}{
		{name: "anonymous", input: "Anonymous", want: Creators{}},
		{name: "empty", input: "", want: Creators{}},
		{name: "single", input: "alice", want: Creators{"alice"}},
		{name: "several", input: "alice, bob,carol", want: Creators{"alice", "bob", "carol"}},
		{name: "drops blanks", input: "alice, , bob,", want: Creators{"alice", "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, ParseCreators(tt.input)); diff != "" {
				t.Errorf("ParseCreators(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

// TestCreatorsJSON tests the string encoding of creators.
func TestCreatorsJSON(t *testing.T) {
	t.Parallel()

	t.Run("encodes joined string", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(Creators{"alice", "bob"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"alice, bob"` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("encodes empty as Anonymous", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(Creators(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"Anonymous"` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("decodes array form", func(t *testing.T) {
		t.Parallel()
		var c Creators
		if err := json.Unmarshal([]byte(`["alice","bob"]`), &c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(Creators{"alice", "bob"}, c); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("card uses creator key", func(t *testing.T) {
		t.Parallel()
		card := NewCard("7")
		card.Creators = Creators{"alice"}
		data, err := json.Marshal(card)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"id":"7","name":"N/A","image":"N/A","description":"N/A","tier":"Unknown","creator":"alice"}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})
}
