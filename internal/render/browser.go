package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// BrowserRenderer drives a headless Chromium through the DevTools protocol.
// Pages get the stealth evasions applied before any document script runs,
// so the site sees an ordinary desktop browser.
//
// Design decision: One browser process backs the whole session and every
// page is a fresh tab. Tabs are cheap compared to a browser launch, and a
// tab per load keeps state from one card leaking into the next.
type BrowserRenderer struct {
	bin       string
	remoteURL string
	headless  bool
	userAgent string
	proxy     string
	logger    *slog.Logger
}

// BrowserOption configures a BrowserRenderer.
type BrowserOption func(*BrowserRenderer)

// WithBrowserBin uses the Chromium binary at path instead of looking one up.
func WithBrowserBin(path string) BrowserOption {
	return func(r *BrowserRenderer) {
		r.bin = path
	}
}

// WithRemoteBrowser attaches to an already running browser at the given
// DevTools websocket URL. No local process is launched.
func WithRemoteBrowser(controlURL string) BrowserOption {
	return func(r *BrowserRenderer) {
		r.remoteURL = controlURL
	}
}

// WithHeadless controls whether a launched browser shows a window.
func WithHeadless(headless bool) BrowserOption {
	return func(r *BrowserRenderer) {
		r.headless = headless
	}
}

// WithBrowserUserAgent overrides the User-Agent of every page.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(r *BrowserRenderer) {
		r.userAgent = ua
	}
}

// WithBrowserProxy routes browser traffic through proxyURL.
// Only the scheme and host are used; Chromium does not accept
// credentials on the command line.
func WithBrowserProxy(proxyURL string) BrowserOption {
	return func(r *BrowserRenderer) {
		r.proxy = proxyURL
	}
}

// WithBrowserLogger sets the logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(r *BrowserRenderer) {
		r.logger = logger
	}
}

// NewBrowserRenderer creates a BrowserRenderer. Launched browsers are
// headless unless WithHeadless(false) is given.
func NewBrowserRenderer(opts ...BrowserOption) *BrowserRenderer {
	r := &BrowserRenderer{headless: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Open launches or attaches to a browser.
func (r *BrowserRenderer) Open(ctx context.Context) (Session, error) {
	controlURL := r.remoteURL

	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().
			Context(ctx).
			Headless(r.headless).
			NoSandbox(true).
			Set("disable-setuid-sandbox")
		if r.bin != "" {
			l = l.Bin(r.bin)
		}
		if r.proxy != "" {
			l = l.Proxy(proxyServer(r.proxy))
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		r.logger.Debug("browser launched", "headless", r.headless)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &browserSession{
		browser:   browser,
		launcher:  l,
		userAgent: r.userAgent,
		logger:    r.logger,
	}, nil
}

// proxyServer strips credentials and paths from a proxy URL.
func proxyServer(proxyURL string) string {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		return proxyURL
	}
	if u.Scheme == "" {
		return u.Host
	}
	return u.Scheme + "://" + u.Host
}

// browserSession owns the browser connection and, when launched locally,
// the browser process.
type browserSession struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	userAgent string
	logger    *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPage opens a stealth tab.
func (s *browserSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	page, err := stealth.Page(s.browser.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// Detach the page from the creation context; Load and Extract bind
	// their own.
	page = page.Context(context.Background())

	if s.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
			s.logger.Warn("set user agent failed", "error", err)
		}
	}
	return &browserPage{page: page}, nil
}

// Close closes the browser and stops a locally launched process.
func (s *browserSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// browserPage is one tab.
type browserPage struct {
	page   *rod.Page
	url    string
	loaded bool
}

// Load navigates, waits for the load event, settles and then waits for the
// ready selector.
func (p *browserPage) Load(ctx context.Context, pageURL string, opts LoadOptions) error {
	p.loaded = false

	nav := p.page.Context(ctx)
	if opts.Timeout > 0 {
		nav = nav.Timeout(opts.Timeout)
	}
	if err := nav.Navigate(pageURL); err != nil {
		return classifyNavigation(pageURL, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return classifyNavigation(pageURL, err)
	}

	p.url = pageURL
	if info, err := p.page.Info(); err == nil && info.URL != "" {
		p.url = info.URL
	}
	p.loaded = true

	if err := sleep(ctx, opts.Settle); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, pageURL, err)
	}

	if opts.ReadySelector == "" {
		return nil
	}
	wait := p.page.Context(ctx)
	if opts.ReadyTimeout > 0 {
		wait = wait.Timeout(opts.ReadyTimeout)
	}
	if _, err := wait.Element(opts.ReadySelector); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrNavigation, pageURL, ctx.Err())
		}
		return fmt.Errorf("%w: %q on %s: %w", ErrReadyTimeout, opts.ReadySelector, pageURL, err)
	}
	return nil
}

// classifyNavigation maps a rod error to the renderer sentinels.
func classifyNavigation(pageURL string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, pageURL, err)
	}
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) && strings.Contains(navErr.Reason, "TIMED_OUT") {
		return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, pageURL, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrNavigation, pageURL, err)
}

// Extract snapshots the current DOM and evaluates fields against it.
func (p *browserPage) Extract(ctx context.Context, fields ...Field) (Values, error) {
	if !p.loaded {
		return nil, ErrNotLoaded
	}

	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := ParseHTML(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return ExtractDocument(doc, p.url, fields), nil
}

// URL returns the URL of the loaded document.
func (p *browserPage) URL() string {
	return p.url
}

// Close closes the tab.
func (p *browserPage) Close() error {
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}
	return nil
}
