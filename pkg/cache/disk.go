package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

const (
	// DefaultDirName is used when no cache directory is configured,
	// resolved against the process working directory.
	DefaultDirName = ".emoji-cache"

	dirPerms  = 0o700
	filePerms = 0o600
)

// Disk persists resolved glyph images as one file per key under a single
// directory. Records are write-once: a key's bytes never change, so a write
// race between two processes is harmless. There is no index file; the
// directory listing is the catalog, and deleting any file evicts exactly that
// entry.
type Disk struct {
	dir string
}

// NewDisk creates a disk store rooted at dir. An empty dir selects
// DefaultDirName. The directory itself is created lazily on first write, not
// here, so a store over an unwritable path degrades to a pass-through instead
// of failing construction.
func NewDisk(dir string) *Disk {
	if dir == "" {
		dir = DefaultDirName
	}
	return &Disk{dir: filepath.Clean(dir)}
}

// Dir returns the store's root directory.
func (d *Disk) Dir() string {
	return d.dir
}

// Path returns the file path that holds (or would hold) key's bytes.
func (d *Disk) Path(key glyph.Key) string {
	return filepath.Join(d.dir, key.Filename())
}

// Load reads the cached bytes for key. Any read failure — missing file,
// permission error, or a zero-length partial write — is a cache miss, never a
// fatal error; unexpected failures are logged and the caller falls through to
// re-fetch.
func (d *Disk) Load(key glyph.Key) ([]byte, bool) {
	path := d.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("glyph cache read failed, treating as miss", "path", path, "error", err)
		}
		return nil, false
	}
	if len(data) == 0 {
		slog.Warn("glyph cache file empty, treating as miss", "path", path)
		return nil, false
	}
	return data, true
}

// Store writes key's bytes, creating the cache directory (and parents) on
// first use. The write goes through a temp file and rename so a crash never
// leaves a half-written record under the final name. A returned error is
// non-fatal to the resolution that triggered it; the fetched bytes are still
// served to the caller.
func (d *Disk) Store(key glyph.Key, data []byte) error {
	if err := os.MkdirAll(d.dir, dirPerms); err != nil {
		return fmt.Errorf("creating glyph cache directory: %w", err)
	}

	path := d.Path(key)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, filePerms); err != nil {
		return fmt.Errorf("writing glyph cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming glyph cache file: %w", err)
	}
	return nil
}

// Remove evicts a single entry. Removing an absent entry is not an error.
func (d *Disk) Remove(key glyph.Key) error {
	if err := os.Remove(d.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing glyph cache file: %w", err)
	}
	return nil
}

// Scan enumerates the keys currently cached on disk by listing the directory.
// Files that were not written by this store are skipped. A store whose
// directory was never created scans as empty.
func (d *Disk) Scan() ([]glyph.Key, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading glyph cache directory: %w", err)
	}

	var keys []glyph.Key
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if key, ok := glyph.ParseFilename(entry.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
