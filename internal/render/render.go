package render

import (
	"context"
	"errors"
	"time"
)

// Renderer errors. Implementations wrap them so callers can match with
// errors.Is regardless of the backend.
var (
	// ErrNavigation is returned when a page cannot be loaded.
	ErrNavigation = errors.New("navigation failed")

	// ErrNavigationTimeout is returned when loading exceeds its timeout.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrReadyTimeout is returned when the ready selector never appears.
	ErrReadyTimeout = errors.New("ready selector did not appear")

	// ErrNotLoaded is returned by Extract before a successful Load.
	ErrNotLoaded = errors.New("page not loaded")

	// ErrClosed is returned when a closed page or session is used.
	ErrClosed = errors.New("renderer closed")
)

// Renderer opens rendering sessions.
type Renderer interface {
	// Open acquires a session. The caller owns it and must Close it.
	Open(ctx context.Context) (Session, error)
}

// Session is one renderer instance, such as a browser process or an HTTP
// client with its cookie jar. A session is used by one goroutine at a time.
type Session interface {
	// NewPage opens a page. The caller must Close it.
	NewPage(ctx context.Context) (Page, error)

	// Close releases the session and every page still open on it.
	Close() error
}

// Page is a single navigable document.
type Page interface {
	// Load navigates to url and waits according to opts.
	// A missing ready selector yields an error wrapping ErrReadyTimeout;
	// the page stays loaded and Extract may still be called.
	Load(ctx context.Context, url string, opts LoadOptions) error

	// Extract looks up fields in the loaded document.
	Extract(ctx context.Context, fields ...Field) (Values, error)

	// URL returns the URL of the loaded document after redirects.
	URL() string

	// Close releases the page.
	Close() error
}

// LoadOptions controls how Load waits.
type LoadOptions struct {
	// Timeout bounds the navigation itself.
	Timeout time.Duration

	// ReadySelector is a CSS selector to wait for after navigation.
	// Empty disables the wait.
	ReadySelector string

	// ReadyTimeout bounds the wait for ReadySelector.
	ReadyTimeout time.Duration

	// Settle is waited after navigation before the ready check, to let
	// client-side rendering populate the DOM.
	Settle time.Duration
}

// Field names a value to extract from a document.
type Field struct {
	// Name is the key of the result in Values.
	Name string

	// Selector is a CSS selector.
	Selector string

	// Attr is the attribute to read. Empty reads the element text.
	// "src" and "href" are resolved against the page URL.
	Attr string

	// All collects every match instead of the first one.
	All bool
}

// Values maps a field name to its extracted values.
// Absent fields have no key; present fields hold at least one non-empty
// value.
type Values map[string][]string

// First returns the first value of the field.
func (v Values) First(name string) (string, bool) {
	values := v[name]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// All returns every value of the field.
func (v Values) All(name string) []string {
	return v[name]
}

// Has reports whether the field was found.
func (v Values) Has(name string) bool {
	return len(v[name]) > 0
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
