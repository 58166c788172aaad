package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// HTTPRenderer fetches pages without executing scripts.
// It suits sites that render server-side, and tests that serve fixtures
// from httptest. Readiness is checked against the fetched document: a
// static document cannot change, so a missing ready selector is reported
// immediately instead of waiting.
type HTTPRenderer struct {
	userAgent string
	proxy     string
	cookie    string
	headers   map[string]string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPRenderer.
type HTTPOption func(*HTTPRenderer)

// WithHTTPUserAgent sets the User-Agent header.
func WithHTTPUserAgent(ua string) HTTPOption {
	return func(r *HTTPRenderer) {
		r.userAgent = ua
	}
}

// WithHTTPProxy routes requests through proxyURL.
func WithHTTPProxy(proxyURL string) HTTPOption {
	return func(r *HTTPRenderer) {
		r.proxy = proxyURL
	}
}

// WithHTTPCookie sends cookie with every request.
// Format: "name=value" or "name1=value1; name2=value2"
func WithHTTPCookie(cookie string) HTTPOption {
	return func(r *HTTPRenderer) {
		r.cookie = cookie
	}
}

// WithHTTPHeaders adds extra request headers.
func WithHTTPHeaders(headers map[string]string) HTTPOption {
	return func(r *HTTPRenderer) {
		r.headers = headers
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(r *HTTPRenderer) {
		r.logger = logger
	}
}

// NewHTTPRenderer creates an HTTPRenderer.
func NewHTTPRenderer(opts ...HTTPOption) *HTTPRenderer {
	r := &HTTPRenderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Open creates a client with its own cookie jar.
func (r *HTTPRenderer) Open(_ context.Context) (Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := resty.New().
		SetCookieJar(jar).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")
	if r.userAgent != "" {
		client.SetHeader("User-Agent", r.userAgent)
	}
	if r.cookie != "" {
		client.SetHeader("Cookie", r.cookie)
	}
	if len(r.headers) > 0 {
		client.SetHeaders(r.headers)
	}
	if r.proxy != "" {
		client.SetProxy(r.proxy)
	}

	r.logger.Debug("http session opened", "proxy", r.proxy != "")
	return &httpSession{client: client}, nil
}

// httpSession shares one resty client between its pages.
type httpSession struct {
	client *resty.Client

	mu     sync.Mutex
	closed bool
}

// NewPage returns an unloaded page bound to the session client.
func (s *httpSession) NewPage(_ context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return &httpPage{session: s}, nil
}

// Close marks the session closed and drops idle connections.
func (s *httpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func (s *httpSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// httpPage holds the last fetched document.
type httpPage struct {
	session *httpSession
	doc     *goquery.Document
	url     string
	closed  bool
}

// Load fetches url and parses the body.
func (p *httpPage) Load(ctx context.Context, url string, opts LoadOptions) error {
	if p.closed || p.session.isClosed() {
		return ErrClosed
	}
	p.doc = nil
	p.url = ""

	reqCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := p.session.client.R().SetContext(reqCtx).Get(url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, url, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s: status %d", ErrNavigation, url, resp.StatusCode())
	}

	doc, err := ParseHTML(bytes.NewReader(resp.Body()))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}

	p.doc = doc
	p.url = url
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		p.url = resp.RawResponse.Request.URL.String()
	}

	if err := sleep(ctx, opts.Settle); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}

	if !HasSelector(doc, opts.ReadySelector) {
		return fmt.Errorf("%w: %q on %s", ErrReadyTimeout, opts.ReadySelector, url)
	}
	return nil
}

// Extract evaluates fields against the fetched document.
func (p *httpPage) Extract(_ context.Context, fields ...Field) (Values, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.doc == nil {
		return nil, ErrNotLoaded
	}
	return ExtractDocument(p.doc, p.url, fields), nil
}

// URL returns the final URL of the last load.
func (p *httpPage) URL() string {
	return p.url
}

// Close drops the document.
func (p *httpPage) Close() error {
	p.closed = true
	p.doc = nil
	return nil
}
