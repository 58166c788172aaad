package crawler

import "errors"

// Crawler errors.
//
// Design decision: A listing failure and a detail failure are handled in
// opposite ways. A listing page that cannot be loaded usually means the
// site changed or the session died, so ErrPageLoad is fatal for the sweep.
// A single card that cannot be resolved only loses that card, so
// ErrDetailResolution never leaves the resolver through Resolve.
var (
	// ErrPageLoad is returned when a listing page cannot be loaded or its
	// detail anchors never appear.
	ErrPageLoad = errors.New("listing page load failed")

	// ErrDetailResolution is returned by Resolver.Fetch when a detail page
	// cannot be loaded or read.
	ErrDetailResolution = errors.New("detail resolution failed")
)
