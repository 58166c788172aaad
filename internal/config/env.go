package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvTotalPages    = "CARDCRAWL_TOTAL_PAGES"
	EnvListingURL    = "CARDCRAWL_LISTING_URL"
	EnvDetailURL     = "CARDCRAWL_DETAIL_URL"
	EnvReadyTimeout  = "CARDCRAWL_READY_TIMEOUT"
	EnvNavTimeout    = "CARDCRAWL_NAV_TIMEOUT"
	EnvDataDir       = "CARDCRAWL_DATA_DIR"
	EnvRenderer      = "CARDCRAWL_RENDERER"
	EnvRemoteBrowser = "CARDCRAWL_REMOTE_BROWSER"
	EnvProxy         = "CARDCRAWL_PROXY"
)

// LookupFunc reports the value of an environment variable.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with the CARDCRAWL_* variables found by lookup.
// A nil lookup reads the process environment. Empty values are ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvTotalPages); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidTotalPages, EnvTotalPages, v)
		}
		cfg.TotalPages = n
	}
	if v, ok := get(EnvListingURL); ok {
		cfg.ListingURL = v
	}
	if v, ok := get(EnvDetailURL); ok {
		cfg.DetailURL = v
	}
	if v, ok := get(EnvReadyTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDuration, EnvReadyTimeout, err)
		}
		cfg.ReadyTimeout = d
	}
	if v, ok := get(EnvNavTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDuration, EnvNavTimeout, err)
		}
		cfg.NavigationTimeout = d
	}
	if v, ok := get(EnvDataDir); ok {
		cfg.DataDir = expandHome(v)
	}
	if v, ok := get(EnvRenderer); ok {
		cfg.Renderer = v
	}
	if v, ok := get(EnvRemoteBrowser); ok {
		cfg.RemoteBrowser = v
	}
	if v, ok := get(EnvProxy); ok {
		cfg.Proxy = v
	}
	return nil
}
