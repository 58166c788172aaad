package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".cardcrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// RendererConfig selects and tunes the page renderer.
// Durations use Go syntax such as "60s" or "1m30s".
type RendererConfig struct {
	Kind              string `yaml:"kind,omitempty"`
	BrowserBin        string `yaml:"browserBin,omitempty"`
	RemoteBrowser     string `yaml:"remoteBrowser,omitempty"`
	Headless          *bool  `yaml:"headless,omitempty"`
	UserAgent         string `yaml:"userAgent,omitempty"`
	Proxy             string `yaml:"proxy,omitempty"`
	NavigationTimeout string `yaml:"navigationTimeout,omitempty"`
	ReadyTimeout      string `yaml:"readyTimeout,omitempty"`
	Settle            string `yaml:"settle,omitempty"`
	RequestDelay      string `yaml:"requestDelay,omitempty"`
}

// StorageConfig selects where and how results are stored.
type StorageConfig struct {
	Store   string `yaml:"store,omitempty"`
	DataDir string `yaml:"dataDir,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
}

// File represents the structure of the .cardcrawl configuration file.
type File struct {
	Site     SiteConfig     `yaml:"site,omitempty"`
	Renderer RendererConfig `yaml:"renderer,omitempty"`
	Storage  StorageConfig  `yaml:"storage,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (cf *File) Apply(cfg *Config) error {
	cf.Site.apply(cfg)

	r := cf.Renderer
	if r.Kind != "" {
		cfg.Renderer = r.Kind
	}
	if r.BrowserBin != "" {
		cfg.BrowserBin = r.BrowserBin
	}
	if r.RemoteBrowser != "" {
		cfg.RemoteBrowser = r.RemoteBrowser
	}
	if r.Headless != nil {
		cfg.Headless = *r.Headless
	}
	if r.UserAgent != "" {
		cfg.UserAgent = r.UserAgent
	}
	if r.Proxy != "" {
		cfg.Proxy = r.Proxy
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"renderer.navigationTimeout", r.NavigationTimeout, &cfg.NavigationTimeout},
		{"renderer.readyTimeout", r.ReadyTimeout, &cfg.ReadyTimeout},
		{"renderer.settle", r.Settle, &cfg.SettleDelay},
		{"renderer.requestDelay", r.RequestDelay, &cfg.RequestDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDuration, d.name, err)
		}
		*d.dst = parsed
	}

	s := cf.Storage
	if s.Store != "" {
		cfg.Store = s.Store
	}
	if s.DataDir != "" {
		cfg.DataDir = expandHome(s.DataDir)
	}
	if s.Mode != "" {
		cfg.DatasetMode = s.Mode
	}
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .cardcrawl in the current directory
// 3. Look for .cardcrawl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
