package assets

import (
	"errors"
	"image/png"
	"io/fs"
	"testing"

	"github.com/robalobadob/spellquiz/internal/catalog"
)

func TestDemoImagesBuildACatalog(t *testing.T) {
	c, err := catalog.BuildFS(Images(), ".")
	if err != nil {
		t.Fatalf("BuildFS: %v", err)
	}
	if c.Len() < 4 {
		t.Fatalf("demo catalog has %d entries", c.Len())
	}
	if !c.Contains(catalog.WordEntry{Word: "Oranje", ImagePath: "Oranje.png"}) {
		t.Errorf("Oranje entry missing: %+v", c.Entries())
	}
}

func TestDemoImagesDecode(t *testing.T) {
	err := fs.WalkDir(Images(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := Images().Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := png.Decode(f); err != nil {
			t.Errorf("decode %s: %v", p, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadCatalog(t *testing.T) {
	demo, err := LoadCatalog("")
	if err != nil || demo.Len() == 0 {
		t.Fatalf("LoadCatalog(\"\") = %v, %v", demo, err)
	}

	dir := t.TempDir()
	if _, err := LoadCatalog(dir); !errors.Is(err, catalog.ErrEmptyCatalog) {
		t.Fatalf("empty dir: err = %v, want ErrEmptyCatalog", err)
	}
}
