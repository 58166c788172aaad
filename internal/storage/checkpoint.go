package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// FileCheckpoint stores the checkpoint as a plain-text integer.
type FileCheckpoint struct {
	path   string
	logger *slog.Logger
}

// NewFileCheckpoint returns a checkpoint stored at path. The file is
// created on the first Write.
func NewFileCheckpoint(path string, logger *slog.Logger) *FileCheckpoint {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileCheckpoint{path: path, logger: logger}
}

// Path returns the backing file path.
func (c *FileCheckpoint) Path() string {
	return c.path
}

// Read returns the stored page.
// A missing, empty, non-numeric or negative value reads as 0 so the
// sweep starts from the first page. Other read failures wrap
// ErrPersistence.
func (c *FileCheckpoint) Read(_ context.Context) (int, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: read checkpoint %s: %w", ErrPersistence, c.path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}

	page, err := strconv.Atoi(text)
	if err != nil || page < 0 {
		c.logger.Warn("ignoring malformed checkpoint", "path", c.path, "content", text)
		return 0, nil
	}
	return page, nil
}

// Write replaces the stored page durably.
func (c *FileCheckpoint) Write(_ context.Context, page int) error {
	if page < 0 {
		return ErrInvalidPage
	}

	if err := writeFileAtomic(c.path, []byte(strconv.Itoa(page)), 0600); err != nil {
		return fmt.Errorf("%w: write checkpoint %s: %w", ErrPersistence, c.path, err)
	}
	return nil
}
