package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/cardcrawl/internal/render"
)

// fieldAnchors collects every link on a listing page.
var fieldAnchors = render.Field{Name: "listing.anchors", Selector: "a[href]", Attr: "href", All: true}

// defaultLinkPattern matches detail page links.
var defaultLinkPattern = regexp.MustCompile(`/cards/info/([^/?#]+)`)

// Walker discovers card identifiers on listing pages.
type Walker struct {
	// listingURL is the listing template; "{page}" is the page number.
	listingURL string

	// linkPattern selects detail links among the page anchors.
	linkPattern *regexp.Regexp

	// load controls navigation and the wait for detail anchors.
	load render.LoadOptions

	logger *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLinkPattern sets the detail link pattern. The first capture group
// is the identifier; without groups the final path segment is used.
func WithLinkPattern(re *regexp.Regexp) WalkerOption {
	return func(w *Walker) {
		w.linkPattern = re
	}
}

// WithListingReadySelector sets the element waited for before reading
// anchors. An empty selector disables the wait.
func WithListingReadySelector(selector string) WalkerOption {
	return func(w *Walker) {
		w.load.ReadySelector = selector
	}
}

// WithWalkerTimeouts sets the navigation and ready timeouts.
func WithWalkerTimeouts(navigation, ready time.Duration) WalkerOption {
	return func(w *Walker) {
		w.load.Timeout = navigation
		w.load.ReadyTimeout = ready
	}
}

// WithWalkerSettle sets the delay waited after navigation.
func WithWalkerSettle(d time.Duration) WalkerOption {
	return func(w *Walker) {
		w.load.Settle = d
	}
}

// WithWalkerLogger sets the logger.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker for the listing template.
func NewWalker(listingURL string, opts ...WalkerOption) *Walker {
	w := &Walker{
		listingURL:  listingURL,
		linkPattern: defaultLinkPattern,
		load: render.LoadOptions{
			Timeout:       60 * time.Second,
			ReadySelector: "a[href*='/cards/info/']",
			ReadyTimeout:  10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// PageURL returns the listing URL of page.
func (w *Walker) PageURL(page int) string {
	return strings.ReplaceAll(w.listingURL, "{page}", strconv.Itoa(page))
}

// DiscoverIDs returns the identifiers linked from listing page, deduplicated
// in order of first appearance.
//
// Any load failure, including the detail anchors never appearing, returns
// an error wrapping ErrPageLoad. It is not retried. The page opened on
// session is always closed.
func (w *Walker) DiscoverIDs(ctx context.Context, session render.Session, page int) ([]string, error) {
	pageURL := w.PageURL(page)

	p, err := session.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrPageLoad, page, err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			w.logger.Warn("failed to close listing page", "page", page, "error", err)
		}
	}()

	w.logger.Debug("loading listing page", "page", page, "url", pageURL)
	if err := p.Load(ctx, pageURL, w.load); err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrPageLoad, page, err)
	}

	values, err := p.Extract(ctx, fieldAnchors)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrPageLoad, page, err)
	}

	ids := MatchIDs(values.All(fieldAnchors.Name), w.linkPattern)
	w.logger.Debug("listing page read", "page", page, "ids", len(ids))
	return ids, nil
}

// MatchIDs extracts identifiers from hrefs matching pattern, keeping the
// first occurrence of each.
func MatchIDs(hrefs []string, pattern *regexp.Regexp) []string {
	seen := make(map[string]bool, len(hrefs))
	ids := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		m := pattern.FindStringSubmatch(href)
		if m == nil {
			continue
		}

		var id string
		if len(m) > 1 {
			id = m[1]
		} else {
			id = finalSegment(href)
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// finalSegment returns the last path segment of href.
func finalSegment(href string) string {
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
