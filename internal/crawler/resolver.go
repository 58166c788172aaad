package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/render"
)

// Resolver turns a card identifier into a Card by reading its detail page.
type Resolver struct {
	// detailURL is the detail template; "{id}" is the card identifier.
	detailURL string

	// chains is the per-field extraction order.
	chains Chains

	// load controls navigation and the wait for the media container.
	load render.LoadOptions

	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithChains replaces the extraction order.
func WithChains(chains Chains) ResolverOption {
	return func(r *Resolver) {
		r.chains = chains
	}
}

// WithDetailReadySelector sets the media container waited for. Its absence
// does not fail resolution.
func WithDetailReadySelector(selector string) ResolverOption {
	return func(r *Resolver) {
		r.load.ReadySelector = selector
	}
}

// WithResolverTimeouts sets the navigation and ready timeouts.
func WithResolverTimeouts(navigation, ready time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.load.Timeout = navigation
		r.load.ReadyTimeout = ready
	}
}

// WithResolverSettle sets the delay waited after navigation.
func WithResolverSettle(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.load.Settle = d
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver for the detail template.
func NewResolver(detailURL string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		detailURL: detailURL,
		chains:    DefaultChains(),
		load: render.LoadOptions{
			Timeout:       60 * time.Second,
			ReadySelector: ".cardData video, .cardData img",
			ReadyTimeout:  10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// CardURL returns the detail URL of id.
func (r *Resolver) CardURL(id string) string {
	return strings.ReplaceAll(r.detailURL, "{id}", url.PathEscape(id))
}

// Resolve returns the card for id, or nil when its page cannot be loaded
// or read. Failures are logged and never propagated: losing one card must
// not stop the page it was listed on.
func (r *Resolver) Resolve(ctx context.Context, session render.Session, id string) *model.Card {
	card, err := r.Fetch(ctx, session, id)
	if err != nil {
		r.logger.Warn("card skipped", "id", id, "error", err)
		return nil
	}
	return card
}

// Fetch is Resolve with the failure reported. Errors wrap
// ErrDetailResolution.
func (r *Resolver) Fetch(ctx context.Context, session render.Session, id string) (*model.Card, error) {
	cardURL := r.CardURL(id)

	p, err := session.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDetailResolution, id, err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			r.logger.Warn("failed to close detail page", "id", id, "error", err)
		}
	}()

	r.logger.Debug("loading card", "id", id, "url", cardURL)
	if err := p.Load(ctx, cardURL, r.load); err != nil {
		if !errors.Is(err, render.ErrReadyTimeout) {
			return nil, fmt.Errorf("%w: %s: %w", ErrDetailResolution, id, err)
		}
		r.logger.Debug("media container missing, extracting anyway", "id", id)
	}

	values, err := p.Extract(ctx, r.chains.Fields()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDetailResolution, id, err)
	}

	card := r.chains.Card(id, values)
	r.logger.Debug("card resolved", "id", id, "name", card.Name, "tier", card.Tier)
	return card, nil
}
