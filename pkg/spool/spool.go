// Package spool stages downloaded media on disk between fetch and upload.
// Every entry is transient: it must be removed on every exit path of the
// transfer, success or failure.
package spool

import (
	"fmt"
	"os"
	"path/filepath"
)

// Spool manages per-shortcode staging files under one directory.
type Spool struct {
	dir string
}

// New creates the spool directory if needed.
func New(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "igmirror")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory path.
func (s *Spool) Dir() string {
	return s.dir
}

// Write stages media bytes for a shortcode and returns the file path.
// The write goes through a temp file and an atomic rename so a crashed
// run never leaves a half-written entry that looks complete.
func (s *Spool) Write(shortcode, ext string, data []byte) (string, error) {
	filename := filepath.Join(s.dir, shortcode+ext)

	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to stage media: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to finalize staged media: %w", err)
	}

	return filename, nil
}

// Read returns the staged bytes for a shortcode.
func (s *Spool) Read(shortcode, ext string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, shortcode+ext))
}

// Remove deletes the staged entry for a shortcode. Missing entries are
// not an error.
func (s *Spool) Remove(shortcode, ext string) error {
	err := os.Remove(filepath.Join(s.dir, shortcode+ext))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged media: %w", err)
	}
	return nil
}

// Clear removes every staged entry.
func (s *Spool) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read spool directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear spool: %w", err)
		}
	}
	return nil
}
