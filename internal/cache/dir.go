package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/koltyakov/aocd/internal/domain"
)

// Dir is a filesystem-backed cache holding one file per key.
type Dir struct {
	root string
}

// NewDir returns a cache rooted at root. The directory is created lazily
// on the first Put.
func NewDir(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{root: root}
}

// Root returns the cache directory.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the file path backing key.
func (d *Dir) Path(key domain.PuzzleKey) string {
	return filepath.Join(d.root, FileName(key))
}

func (d *Dir) Get(_ context.Context, key domain.PuzzleKey) (string, bool) {
	b, err := os.ReadFile(d.Path(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Put writes text for key. The content goes to a temp file in the cache
// directory that is renamed over the target, so a concurrent Get sees
// either the previous file or the complete new one. On failure the temp
// file is removed and the target is left untouched.
func (d *Dir) Put(_ context.Context, key domain.PuzzleKey, text string) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	path := d.Path(key)

	tmp, err := os.CreateTemp(d.root, "."+FileName(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := writeFile(tmp, []byte(text)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// writeFile is swapped in tests to simulate partial writes.
var writeFile = func(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}
