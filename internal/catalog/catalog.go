// /internal/catalog/catalog.go
package catalog

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// playableExtensions is the whitelist of audio file extensions, matched
// case-insensitively.
var playableExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
}

// Entry is one playable audio file. Entries are immutable; the catalog is
// rebuilt wholesale on reload, never patched in place.
type Entry struct {
	Name        string // filename including extension
	Path        string // absolute or directory-relative filesystem path
	DisplayName string // filename without extension
}

// Catalog enumerates the playable files of a single media directory.
// Readers always see either the previous or the new complete entry list.
type Catalog struct {
	mu      sync.RWMutex
	dir     string
	entries []Entry
}

func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) Dir() string {
	return c.dir
}

// Reload rescans the media directory and replaces the entry list. A directory
// read failure is not fatal: the catalog becomes empty and playback commands
// degrade to "no files available". Returns the number of entries found.
func (c *Catalog) Reload() int {
	var entries []Entry

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		log.Printf("[WARN] Failed to read media directory %s: %v", c.dir, err)
	} else {
		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			name := de.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if !playableExtensions[ext] {
				continue
			}
			entries = append(entries, Entry{
				Name:        name,
				Path:        filepath.Join(c.dir, name),
				DisplayName: strings.TrimSuffix(name, filepath.Ext(name)),
			})
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	return len(entries)
}

// Entries returns a copy of the current entry list.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PickRandom selects a uniformly random entry. The second return value is
// false when the catalog is empty; callers must surface a "no audio files"
// condition instead of proceeding.
func (c *Catalog) PickRandom() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[rand.Intn(len(c.entries))], true
}
