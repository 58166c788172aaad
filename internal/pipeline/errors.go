package pipeline

import "errors"

// ErrInterrupted is returned when the context is cancelled mid-sweep.
// The checkpoint then points at the last page finished before the signal.
var ErrInterrupted = errors.New("crawl interrupted")
