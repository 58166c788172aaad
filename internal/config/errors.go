package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrInvalidTotalPages is returned when the page bound is not positive.
	ErrInvalidTotalPages = errors.New("invalid total pages: must be positive")

	// ErrInvalidListingURL is returned when the listing template lacks "{page}".
	ErrInvalidListingURL = errors.New("invalid listing URL: template must contain {page}")

	// ErrInvalidDetailURL is returned when the detail template lacks "{id}".
	ErrInvalidDetailURL = errors.New("invalid detail URL: template must contain {id}")

	// ErrInvalidLinkPattern is returned when the detail link pattern is empty
	// or does not compile.
	ErrInvalidLinkPattern = errors.New("invalid detail link pattern: must be a valid regular expression")

	// ErrInvalidTimeout is returned when a navigation or ready timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDuration is returned when a duration in the config file or
	// environment cannot be parsed.
	ErrInvalidDuration = errors.New("invalid duration: use Go syntax such as 30s or 1m")

	// ErrInvalidDelay is returned when the settle or request delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrUnknownRenderer is returned for a renderer other than browser or http.
	ErrUnknownRenderer = errors.New("unknown renderer: must be browser or http")

	// ErrUnknownStore is returned for a store other than json or sqlite.
	ErrUnknownStore = errors.New("unknown store: must be json or sqlite")

	// ErrUnknownDatasetMode is returned for a mode other than full or ids.
	ErrUnknownDatasetMode = errors.New("unknown dataset mode: must be full or ids")

	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
