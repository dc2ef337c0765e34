// Package tempfile provides scoped temporary files that are removed on Close
// unless explicitly kept.
package tempfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefix marks files created by this package so leftovers can be recognized.
const Prefix = ".ytcs-"

// File is a path reserved for temporary data. The file itself is created by
// whoever writes to Path (yt-dlp, for instance).
type File struct {
	base string
	ext  string

	mu     sync.Mutex
	keep   bool
	closed bool
}

// New reserves a hidden, uniquely named path inside dir. ext includes the dot.
func New(dir, ext string) (*File, error) {
	if dir == "" {
		return nil, errors.New("tempfile: directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tempfile: create directory: %w", err)
	}
	return &File{
		base: filepath.Join(dir, Prefix+uuid.NewString()),
		ext:  ext,
	}, nil
}

// Base returns the path without extension, for tools that append their own.
func (f *File) Base() string {
	return f.base
}

// Path returns the full temporary path.
func (f *File) Path() string {
	return f.base + f.ext
}

// Keep prevents Close from deleting the file.
func (f *File) Keep() {
	f.mu.Lock()
	f.keep = true
	f.mu.Unlock()
}

// Kept reports whether Keep was called.
func (f *File) Kept() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keep
}

// Close removes every file sharing the reserved base name (including partial
// downloads such as "<base>.webm.part"). A kept file survives; its siblings do
// not. Close is safe to call repeatedly and when nothing was created.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	// Album directories may contain glob metacharacters, so match by prefix.
	dir, prefix := filepath.Split(f.base)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tempfile: list %s: %w", dir, err)
	}
	var errs []error
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		m := filepath.Join(dir, entry.Name())
		if f.keep && m == f.Path() {
			continue
		}
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("tempfile: remove %s: %w", m, err))
		}
	}
	return errors.Join(errs...)
}

// Sweep removes leftover temporary files in dir, returning the removed paths.
func Sweep(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, Prefix+"*"))
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed = append(removed, m)
		}
	}
	return removed, nil
}
