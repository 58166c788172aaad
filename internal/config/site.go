package config

// SiteConfig describes the catalog being crawled.
// Empty fields leave the current Config value unchanged.
type SiteConfig struct {
	// ListingURL is the listing URL template containing "{page}".
	ListingURL string `yaml:"listingURL,omitempty"`

	// DetailURL is the detail URL template containing "{id}".
	DetailURL string `yaml:"detailURL,omitempty"`

	// LinkPattern is the regular expression selecting detail links.
	LinkPattern string `yaml:"linkPattern,omitempty"`

	// ListingReady is the selector waited for on listing pages.
	// A pointer so that an explicit empty string can disable the wait.
	ListingReady *string `yaml:"listingReady,omitempty"`

	// DetailReady is the selector waited for on detail pages.
	DetailReady string `yaml:"detailReady,omitempty"`

	// TotalPages is the inclusive page bound.
	TotalPages int `yaml:"totalPages,omitempty"`

	// Cookie is an HTTP cookie to send with every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// apply copies the set fields onto cfg.
func (s SiteConfig) apply(cfg *Config) {
	if s.ListingURL != "" {
		cfg.ListingURL = s.ListingURL
	}
	if s.DetailURL != "" {
		cfg.DetailURL = s.DetailURL
	}
	if s.LinkPattern != "" {
		cfg.DetailLinkPattern = s.LinkPattern
	}
	if s.ListingReady != nil {
		cfg.ListingReadySelector = *s.ListingReady
	}
	if s.DetailReady != "" {
		cfg.DetailReadySelector = s.DetailReady
	}
	if s.TotalPages != 0 {
		cfg.TotalPages = s.TotalPages
	}
	if s.Cookie != "" {
		cfg.Cookie = s.Cookie
	}
	if len(s.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(s.Headers))
		}
		for k, v := range s.Headers {
			cfg.Headers[k] = v
		}
	}
}
