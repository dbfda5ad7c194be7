package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// DirKV stores each key as its own file under a base directory.
// Writes go through a temp file + rename so readers never see a torn value.
type DirKV struct {
	mu      sync.RWMutex
	baseDir string
}

// NewDirKV creates a DirKV rooted at baseDir. The directory is created on
// first write.
func NewDirKV(baseDir string) *DirKV {
	return &DirKV{baseDir: baseDir}
}

// FilePath returns the file backing key.
func (d *DirKV) FilePath(key string) string {
	return filepath.Join(d.baseDir, url.PathEscape(key)+".json")
}

// Get reads the value of key.
func (d *DirKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(d.FilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Set atomically writes value under key.
func (d *DirKV) Set(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.baseDir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	path := d.FilePath(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s tmp: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (d *DirKV) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.FilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (d *DirKV) Close() error { return nil }
