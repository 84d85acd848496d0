package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

func TestNewDisk_DefaultDir(t *testing.T) {
	d := NewDisk("")
	if d.Dir() != DefaultDirName {
		t.Errorf("Dir() = %q, want %q", d.Dir(), DefaultDirName)
	}
}

func TestDisk_StoreAndLoad(t *testing.T) {
	// The directory is created lazily on first write.
	dir := filepath.Join(t.TempDir(), "glyphs", "cache")
	d := NewDisk(dir)
	key := glyph.NewKey("\U0001F600", 72)
	data := []byte("png-bytes")

	if _, ok := d.Load(key); ok {
		t.Fatal("expected miss before Store")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("directory should not exist before first write")
	}

	if err := d.Store(key, data); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok := d.Load(key)
	if !ok {
		t.Fatal("expected hit after Store")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Load = %q, want %q", got, data)
	}

	// The record lives under the key's deterministic filename.
	if _, err := os.Stat(filepath.Join(dir, "1F600_72.png")); err != nil {
		t.Errorf("expected cache file 1F600_72.png: %v", err)
	}
}

func TestDisk_StoreIdempotent(t *testing.T) {
	d := NewDisk(t.TempDir())
	key := glyph.NewKey("\U0001F600", 72)
	data := []byte("same-bytes")

	if err := d.Store(key, data); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	if err := d.Store(key, data); err != nil {
		t.Fatalf("second Store failed: %v", err)
	}

	got, ok := d.Load(key)
	if !ok || !bytes.Equal(got, data) {
		t.Errorf("Load after re-store = %q, %v", got, ok)
	}
}

func TestDisk_LoadEmptyFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	d := NewDisk(dir)
	key := glyph.NewKey("\U0001F600", 72)

	// Simulate a partial write that left a zero-length record.
	if err := os.WriteFile(d.Path(key), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := d.Load(key); ok {
		t.Error("zero-length record should read as a miss")
	}
}

func TestDisk_StoreFailureIsReturned(t *testing.T) {
	// Point the store at a path whose parent is a regular file, so MkdirAll
	// cannot succeed.
	parent := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	d := NewDisk(filepath.Join(parent, "cache"))

	if err := d.Store(glyph.NewKey("\U0001F600", 72), []byte("data")); err == nil {
		t.Error("expected Store to report failure")
	}
}

func TestDisk_Remove(t *testing.T) {
	d := NewDisk(t.TempDir())
	key := glyph.NewKey("\U0001F600", 72)

	if err := d.Store(key, []byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove(key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := d.Load(key); ok {
		t.Error("expected miss after Remove")
	}
	// Removing an absent entry is not an error.
	if err := d.Remove(key); err != nil {
		t.Errorf("Remove of absent entry failed: %v", err)
	}
}

func TestDisk_Scan(t *testing.T) {
	dir := t.TempDir()
	d := NewDisk(dir)

	keys := []glyph.Key{
		glyph.NewKey("\U0001F600", 72),
		glyph.NewKey("\U0001F1E8\U0001F1F3", 48),
	}
	for _, key := range keys {
		if err := d.Store(key, []byte("data")); err != nil {
			t.Fatal(err)
		}
	}

	// Foreign files and write leftovers are skipped.
	for _, name := range []string{"README.txt", "1F600_72.png.tmp", ".DS_Store"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := d.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(got) != len(keys) {
		t.Fatalf("Scan returned %d keys, want %d: %v", len(got), len(keys), got)
	}
	found := make(map[glyph.Key]bool)
	for _, key := range got {
		found[key] = true
	}
	for _, key := range keys {
		if !found[key] {
			t.Errorf("Scan missing key %v", key)
		}
	}
}

func TestDisk_ScanMissingDirIsEmpty(t *testing.T) {
	d := NewDisk(filepath.Join(t.TempDir(), "never-created"))
	keys, err := d.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Scan = %v, want empty", keys)
	}
}
