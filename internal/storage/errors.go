package storage

import "errors"

// ErrPersistence is returned when a checkpoint or dataset cannot be read
// from or written to stable storage. It is fatal for a sweep: the
// checkpoint must not advance past data that was not persisted.
var ErrPersistence = errors.New("persistence failed")

// ErrInvalidPage is returned when a negative page number is written.
var ErrInvalidPage = errors.New("invalid checkpoint page: must be non-negative")
