package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/render"
	"github.com/nao1215/cardcrawl/internal/render/rendertest"
)

const testDetailURL = "https://cards.test/cards/info/{id}"

// fullDetailPage is a detail page exposing every field.
const fullDetailPage = `<!DOCTYPE html>
<html><head>
<meta name="description" content="Rem from Re:Zero, a tier 6 card.
Collected by many.">
</head><body>
<div class="breadcrumb-new">
  <span itemprop="name">Home</span>
  <span itemprop="name">Cards</span>
  <span itemprop="name">Rem</span>
  <span itemprop="name">Tier 6</span>
</div>
<h1 class="cardTitle">Rem (title)</h1>
<div class="cardData">
  <video src="/v/direct.mp4"><source src="/v/rem.webm"></video>
  <img src="/i/rem.png">
</div>
<div class="user_purchased">
  <p>Maker: alice</p>
  <p>Artist:  bob </p>
  <p>no colon here</p>
  <p>Empty:</p>
</div>
</body></html>`

// TestResolverResolve tests field extraction on detail pages.
func TestResolverResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want *model.Card
	}{
		{
			name: "all fields present",
			html: fullDetailPage,
			want: &model.Card{
				ID:          "7",
				Name:        "Rem",
				Image:       "https://cards.test/v/rem.webm",
				Description: "Rem from Re:Zero, a tier 6 card.",
				Tier:        "6",
				Creators:    model.Creators{"alice", "bob"},
			},
		},
		{
			name: "name from description pattern only",
			html: `<html><head><meta name="description" content="Emilia from Re:Zero"></head>` +
				`<body><div class="cardData"><img src="https://cdn.test/e.png"></div></body></html>`,
			want: &model.Card{
				ID:          "7",
				Name:        "Emilia",
				Image:       "https://cdn.test/e.png",
				Description: "Emilia from Re:Zero",
				Tier:        model.UnknownTier,
				Creators:    model.Creators{},
			},
		},
		{
			name: "title used when breadcrumb is short",
			html: `<html><body><div class="breadcrumb-new"><span itemprop="name">Home</span></div>` +
				`<h1 class="cardTitle">Ram</h1><div class="cardData"><video src="/v/ram.mp4"></video></div></body></html>`,
			want: &model.Card{
				ID:          "7",
				Name:        "Ram",
				Image:       "https://cards.test/v/ram.mp4",
				Description: model.NotAvailable,
				Tier:        model.UnknownTier,
				Creators:    model.Creators{},
			},
		},
		{
			name: "dedicated name field",
			html: `<html><body><span class="cardName">Beatrice</span></body></html>`,
			want: &model.Card{
				ID:          "7",
				Name:        "Beatrice",
				Image:       model.NotAvailable,
				Description: model.NotAvailable,
				Tier:        model.UnknownTier,
				Creators:    model.Creators{},
			},
		},
		{
			name: "every field missing yields sentinels",
			html: `<html><body><p>nothing to see</p></body></html>`,
			want: &model.Card{
				ID:          "7",
				Name:        model.NotAvailable,
				Image:       model.NotAvailable,
				Description: model.NotAvailable,
				Tier:        model.UnknownTier,
				Creators:    model.Creators{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := rendertest.New()
			r.SetPage("https://cards.test/cards/info/7", tt.html)
			resolver := NewResolver(testDetailURL, WithResolverLogger(discardLogger()))

			got := resolver.Resolve(context.Background(), openSession(t, r), "7")
			if got == nil {
				t.Fatal("expected a card, got nil")
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("card mismatch (-want +got):\n%s", diff)
			}
			if got.Creators.String() != tt.want.Creators.String() {
				t.Errorf("creators serialize as %q, want %q", got.Creators.String(), tt.want.Creators.String())
			}
			if r.OpenPages() != 0 {
				t.Errorf("expected detail page to be closed, %d still open", r.OpenPages())
			}
		})
	}
}

// TestResolverFailures tests that failures are absorbed by Resolve.
func TestResolverFailures(t *testing.T) {
	t.Parallel()

	t.Run("navigation failure returns nil", func(t *testing.T) {
		t.Parallel()

		r := rendertest.New()
		r.SetError("https://cards.test/cards/info/1", fmt.Errorf("%w: boom", render.ErrNavigationTimeout))
		resolver := NewResolver(testDetailURL, WithResolverLogger(discardLogger()))
		session := openSession(t, r)

		if card := resolver.Resolve(context.Background(), session, "1"); card != nil {
			t.Errorf("expected nil card, got %+v", card)
		}

		_, err := resolver.Fetch(context.Background(), session, "1")
		if !errors.Is(err, ErrDetailResolution) {
			t.Errorf("expected ErrDetailResolution, got %v", err)
		}
		if !errors.Is(err, render.ErrNavigationTimeout) {
			t.Errorf("expected ErrNavigationTimeout cause, got %v", err)
		}
		if r.OpenPages() != 0 {
			t.Errorf("expected pages to be closed, %d still open", r.OpenPages())
		}
	})

	t.Run("closed session returns nil", func(t *testing.T) {
		t.Parallel()

		r := rendertest.New()
		session, err := r.Open(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = session.Close()

		resolver := NewResolver(testDetailURL, WithResolverLogger(discardLogger()))
		if card := resolver.Resolve(context.Background(), session, "1"); card != nil {
			t.Errorf("expected nil card, got %+v", card)
		}
	})
}

// TestResolverCardURL tests identifier escaping.
func TestResolverCardURL(t *testing.T) {
	t.Parallel()

	r := NewResolver(testDetailURL)
	if got := r.CardURL("a b"); got != "https://cards.test/cards/info/a%20b" {
		t.Errorf("CardURL = %q", got)
	}
}
