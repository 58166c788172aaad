package config

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The card site values mirror what the catalog exposed when the crawler
// was written; all of them can be overridden from the config file,
// the environment, or CLI flags.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cardcrawl"

	// DefaultTotalPages is the known size of the listing. The listing does
	// not advertise its own length, so the sweep bound is configuration.
	DefaultTotalPages = 1500

	// DefaultListingURL is the listing URL template. "{page}" is replaced
	// with the 1-based page number.
	DefaultListingURL = "https://shoob.gg/cards?page={page}"

	// DefaultDetailURL is the detail URL template. "{id}" is replaced with
	// the card identifier.
	DefaultDetailURL = "https://shoob.gg/cards/info/{id}"

	// DefaultDetailLinkPattern matches anchors pointing at detail pages.
	// The first capture group is the identifier.
	DefaultDetailLinkPattern = `/cards/info/([^/?#]+)`

	// DefaultListingReadySelector is the element the listing walker waits for
	// before extracting identifiers.
	DefaultListingReadySelector = "a[href*='/cards/info/']"

	// DefaultDetailReadySelector is the media container the detail resolver
	// waits for. Its absence is tolerated.
	DefaultDetailReadySelector = ".cardData video, .cardData img"

	// DefaultNavigationTimeout bounds a single navigation.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultReadyTimeout bounds the wait for a ready selector.
	DefaultReadyTimeout = 10 * time.Second

	// DefaultSettleDelay is waited after navigation so that client-side
	// rendering can finish populating the DOM.
	DefaultSettleDelay = 5 * time.Second

	// DefaultRequestDelay is the politeness delay between detail loads.
	DefaultRequestDelay = 0

	// DefaultUserAgent is a desktop Chrome user agent. The site serves a
	// reduced page to agents it does not recognize.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultDatasetFile is the dataset file name inside DataDir.
	DefaultDatasetFile = "cards_by_tier.json"

	// DefaultCheckpointFile is the checkpoint file name inside DataDir.
	DefaultCheckpointFile = "last_page.txt"

	// DefaultDatabaseFile is the SQLite file name inside DataDir.
	DefaultDatabaseFile = "cardcrawl.db"
)

// Renderer names accepted by Config.Renderer.
const (
	RendererBrowser = "browser"
	RendererHTTP    = "http"
)

// Store names accepted by Config.Store.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Dataset modes accepted by Config.DatasetMode.
const (
	// ModeFull stores complete card records.
	ModeFull = "full"
	// ModeIDs stores only card identifiers.
	ModeIDs = "ids"
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// TotalPages is the upper bound of the page sweep, inclusive.
	TotalPages int

	// ListingURL is the listing URL template containing "{page}".
	ListingURL string

	// DetailURL is the detail URL template containing "{id}".
	DetailURL string

	// DetailLinkPattern is a regular expression matched against listing
	// anchors. The first capture group, or the final path segment when the
	// pattern has no groups, is the identifier.
	DetailLinkPattern string

	// ListingReadySelector is waited for on listing pages.
	// An empty selector disables the wait.
	ListingReadySelector string

	// DetailReadySelector is waited for on detail pages.
	DetailReadySelector string

	// NavigationTimeout bounds each navigation.
	NavigationTimeout time.Duration

	// ReadyTimeout bounds each ready-selector wait.
	ReadyTimeout time.Duration

	// SettleDelay is waited after every navigation.
	SettleDelay time.Duration

	// RequestDelay is waited between two detail loads.
	RequestDelay time.Duration

	// Renderer selects the page renderer: "browser" or "http".
	Renderer string

	// BrowserBin is the path of a Chromium binary. When empty the launcher
	// looks one up or downloads one.
	BrowserBin string

	// RemoteBrowser is a DevTools websocket URL. When set, no local browser
	// is launched.
	RemoteBrowser string

	// Headless controls whether a locally launched browser shows a window.
	Headless bool

	// UserAgent is sent with every request.
	UserAgent string

	// Proxy is an optional proxy URL for all renderer traffic.
	Proxy string

	// Cookie is sent with every request when set.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string

	// Headers are extra request headers.
	Headers map[string]string

	// Store selects the persistence backend: "json" or "sqlite".
	Store string

	// DataDir holds the dataset, checkpoint and database files.
	// Defaults to the XDG data directory (~/.local/share/cardcrawl on Linux).
	DataDir string

	// DatasetMode is "full" for complete records or "ids" for identifiers.
	DatasetMode string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .cardcrawl is searched in the current directory and then in
	// the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		TotalPages:           DefaultTotalPages,
		ListingURL:           DefaultListingURL,
		DetailURL:            DefaultDetailURL,
		DetailLinkPattern:    DefaultDetailLinkPattern,
		ListingReadySelector: DefaultListingReadySelector,
		DetailReadySelector:  DefaultDetailReadySelector,
		NavigationTimeout:    DefaultNavigationTimeout,
		ReadyTimeout:         DefaultReadyTimeout,
		SettleDelay:          DefaultSettleDelay,
		RequestDelay:         DefaultRequestDelay,
		Renderer:             RendererBrowser,
		Headless:             true,
		UserAgent:            DefaultUserAgent,
		Store:                StoreJSON,
		DataDir:              XDGDataDir(),
		DatasetMode:          ModeFull,
	}
}

// XDGDataDir returns the XDG data directory for cardcrawl.
// On Linux: ~/.local/share/cardcrawl
// On macOS: ~/Library/Application Support/cardcrawl
// On Windows: %LOCALAPPDATA%\cardcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DatasetPath returns the dataset file path.
func (c *Config) DatasetPath() string {
	return filepath.Join(c.DataDir, DefaultDatasetFile)
}

// CheckpointPath returns the checkpoint file path.
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.DataDir, DefaultCheckpointFile)
}

// DatabasePath returns the SQLite database path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DefaultDatabaseFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package sentinel errors.
func (c *Config) Validate() error {
	if c.TotalPages <= 0 {
		return ErrInvalidTotalPages
	}

	if !strings.Contains(c.ListingURL, "{page}") {
		return ErrInvalidListingURL
	}

	if !strings.Contains(c.DetailURL, "{id}") {
		return ErrInvalidDetailURL
	}

	if _, err := regexp.Compile(c.DetailLinkPattern); err != nil || c.DetailLinkPattern == "" {
		return ErrInvalidLinkPattern
	}

	if c.NavigationTimeout <= 0 || c.ReadyTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.SettleDelay < 0 || c.RequestDelay < 0 {
		return ErrInvalidDelay
	}

	switch c.Renderer {
	case RendererBrowser, RendererHTTP:
	default:
		return ErrUnknownRenderer
	}

	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return ErrUnknownStore
	}

	switch c.DatasetMode {
	case ModeFull, ModeIDs:
	default:
		return ErrUnknownDatasetMode
	}

	if c.DataDir == "" {
		return ErrNoDataDir
	}

	return nil
}
