package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestCatalog(t *testing.T, files ...string) *Catalog {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	c := New(dir)
	c.Reload()
	return c
}

func TestReloadFiltersByExtension(t *testing.T) {
	c := newTestCatalog(t, "a.mp3", "b.WAV", "notes.txt", "cover.png", "c.Flac")

	entries := c.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.Path != filepath.Join(c.Dir(), e.Name) {
			t.Errorf("entry %s has path %s", e.Name, e.Path)
		}
	}
}

func TestReloadSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "more.mp3"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	c := New(dir)
	if n := c.Reload(); n != 0 {
		t.Fatalf("Reload = %d, want 0", n)
	}
}

func TestDisplayNameStripsExtension(t *testing.T) {
	c := newTestCatalog(t, "evening rain.mp3")

	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].DisplayName != "evening rain" {
		t.Errorf("DisplayName = %q", entries[0].DisplayName)
	}
}

func TestPickRandomFromCatalog(t *testing.T) {
	c := newTestCatalog(t, "a.mp3", "b.mp3")

	entry, ok := c.PickRandom()
	if !ok {
		t.Fatal("PickRandom returned no entry")
	}
	if entry.Name != "a.mp3" && entry.Name != "b.mp3" {
		t.Errorf("picked unexpected entry %q", entry.Name)
	}
}

func TestPickRandomEmptyCatalog(t *testing.T) {
	c := newTestCatalog(t)

	if _, ok := c.PickRandom(); ok {
		t.Fatal("PickRandom reported an entry from an empty catalog")
	}
}

func TestReloadMissingDirectoryIsNonFatal(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "does-not-exist"))

	if n := c.Reload(); n != 0 {
		t.Fatalf("Reload = %d, want 0", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestReloadReplacesWholesale(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := New(dir)
	c.Reload()
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	if err := os.Remove(filepath.Join(dir, "a.mp3")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.ogg"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.Reload()

	entries := c.Entries()
	if len(entries) != 1 || entries[0].Name != "b.ogg" {
		t.Fatalf("entries after reload = %+v", entries)
	}
}
