// internal/catalog/catalog.go
//
// Builds the set of playable (word, image) pairs from a folder of images.
//
// Responsibilities:
//   - Scan a directory (on disk or any fs.FS) for supported image files.
//   - Derive the word for each image from its filename (extension stripped).
//   - Expose the resulting entries read-only.
//
// Rules:
//   • Supported extensions: .png, .jpg, .jpeg, .gif (case-insensitive).
//   • Words keep the filename's case and punctuation ("Appel.PNG" → "Appel").
//   • A missing directory counts as an empty one.
//   • An empty result is reported as ErrEmptyCatalog; no rounds can be played.
//
// A Catalog never changes after Build returns, so it can be shared by any
// number of goroutines without locking.

package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// ErrEmptyCatalog is returned when no supported image files were found.
var ErrEmptyCatalog = errors.New("catalog: no images found")

// supported lists the accepted image extensions (lowercase, with dot).
var supported = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// WordEntry pairs a word with the image that depicts it.
type WordEntry struct {
	Word      string `json:"word"`
	ImagePath string `json:"imagePath"` // relative to the catalog root
}

// Catalog is an immutable, ordered collection of entries.
type Catalog struct {
	entries []WordEntry
	fsys    fs.FS
}

// Build scans dir on the local filesystem.
func Build(dir string) (*Catalog, error) {
	return BuildFS(os.DirFS(dir), ".")
}

// BuildFS scans dir inside fsys. Entry order follows fs.ReadDir and must not
// be relied on.
func BuildFS(fsys fs.FS, dir string) (*Catalog, error) {
	items, err := fs.ReadDir(fsys, dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("catalog: read %s: %w", dir, err)
	}

	c := &Catalog{fsys: fsys}
	for _, it := range items {
		if it.IsDir() {
			continue
		}
		word, ok := WordFromFilename(it.Name())
		if !ok {
			continue
		}
		c.entries = append(c.entries, WordEntry{
			Word:      word,
			ImagePath: path.Join(dir, it.Name()),
		})
	}
	if len(c.entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	if dir != "." {
		// Re-root so ImagePath is always relative to Source().
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("catalog: sub %s: %w", dir, err)
		}
		c.fsys = sub
		for i := range c.entries {
			c.entries[i].ImagePath = path.Base(c.entries[i].ImagePath)
		}
	}
	return c, nil
}

// WordFromFilename strips a supported extension from name.
// It reports false for unsupported files and for names that would yield an
// empty word (".png").
func WordFromFilename(name string) (string, bool) {
	ext := path.Ext(name)
	if _, ok := supported[strings.ToLower(ext)]; !ok {
		return "", false
	}
	word := strings.TrimSuffix(name, ext)
	if word == "" {
		return "", false
	}
	return word, true
}

// Len reports the number of entries. A nil catalog has none.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns the i-th entry; i must be in [0, Len()).
func (c *Catalog) Entry(i int) WordEntry { return c.entries[i] }

// Entries returns a copy of all entries.
func (c *Catalog) Entries() []WordEntry {
	if c == nil {
		return nil
	}
	out := make([]WordEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether e is one of the catalog's entries.
func (c *Catalog) Contains(e WordEntry) bool {
	if c == nil {
		return false
	}
	for _, x := range c.entries {
		if x == e {
			return true
		}
	}
	return false
}

// Source is the filesystem ImagePath values are relative to.
func (c *Catalog) Source() fs.FS { return c.fsys }
