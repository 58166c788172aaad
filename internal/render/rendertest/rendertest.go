// Package rendertest provides an in-memory render.Renderer for tests.
//
// Pages are registered by URL as HTML strings and go through the same
// extraction code as the real backends, so selectors behave exactly as
// they would against a live site. The renderer records every load and
// tracks open pages so tests can assert that callers release what they
// acquire.
package rendertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/cardcrawl/internal/render"
)

// Renderer serves registered HTML documents.
type Renderer struct {
	mu        sync.Mutex
	pages     map[string]string
	errs      map[string]error
	openErr   error
	loads     []string
	sessions  int
	openPages int
	maxPages  int
}

// New returns an empty Renderer.
func New() *Renderer {
	return &Renderer{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

// SetPage serves html at url.
func (r *Renderer) SetPage(url, html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[url] = html
	delete(r.errs, url)
}

// SetError makes every load of url fail with err.
func (r *Renderer) SetError(url string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[url] = err
}

// SetOpenError makes Open fail with err.
func (r *Renderer) SetOpenError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openErr = err
}

// Loads returns the URLs loaded so far, in order.
func (r *Renderer) Loads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.loads...)
}

// OpenPages returns the number of pages opened and not yet closed.
func (r *Renderer) OpenPages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openPages
}

// MaxOpenPages returns the highest number of pages open at the same time.
func (r *Renderer) MaxOpenPages() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxPages
}

// OpenSessions returns the number of sessions opened and not yet closed.
func (r *Renderer) OpenSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions
}

// Open implements render.Renderer.
func (r *Renderer) Open(_ context.Context) (render.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openErr != nil {
		return nil, r.openErr
	}
	r.sessions++
	return &session{renderer: r}, nil
}

type session struct {
	renderer *Renderer
	closed   bool
}

func (s *session) NewPage(_ context.Context) (render.Page, error) {
	if s.closed {
		return nil, render.ErrClosed
	}
	r := s.renderer
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openPages++
	if r.openPages > r.maxPages {
		r.maxPages = r.openPages
	}
	return &page{renderer: r}, nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.renderer.mu.Lock()
	defer s.renderer.mu.Unlock()
	s.renderer.sessions--
	return nil
}

type page struct {
	renderer *Renderer
	doc      *goquery.Document
	url      string
	closed   bool
}

func (p *page) Load(ctx context.Context, url string, opts render.LoadOptions) error {
	if p.closed {
		return render.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", render.ErrNavigation, url, err)
	}

	r := p.renderer
	r.mu.Lock()
	r.loads = append(r.loads, url)
	html, ok := r.pages[url]
	loadErr := r.errs[url]
	r.mu.Unlock()

	p.doc = nil
	if loadErr != nil {
		return loadErr
	}
	if !ok {
		return fmt.Errorf("%w: %s: not found", render.ErrNavigation, url)
	}

	doc, err := render.ParseHTML(strings.NewReader(html))
	if err != nil {
		return err
	}
	p.doc = doc
	p.url = url

	if !render.HasSelector(doc, opts.ReadySelector) {
		return fmt.Errorf("%w: %q on %s", render.ErrReadyTimeout, opts.ReadySelector, url)
	}
	return nil
}

func (p *page) Extract(_ context.Context, fields ...render.Field) (render.Values, error) {
	if p.closed {
		return nil, render.ErrClosed
	}
	if p.doc == nil {
		return nil, render.ErrNotLoaded
	}
	return render.ExtractDocument(p.doc, p.url, fields), nil
}

func (p *page) URL() string {
	return p.url
}

func (p *page) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.renderer.mu.Lock()
	defer p.renderer.mu.Unlock()
	p.renderer.openPages--
	return nil
}
