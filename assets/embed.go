// Package assets embeds the demo image set used when no IMAGE_DIR is
// configured, so the quiz runs straight from a fresh checkout.
package assets

import (
	"embed"
	"io/fs"

	"github.com/robalobadob/spellquiz/internal/catalog"
)

//go:embed images/*.png
var FS embed.FS

// Images returns the demo images rooted at the image folder.
func Images() fs.FS {
	sub, err := fs.Sub(FS, "images")
	if err != nil {
		// "images" is a valid path and FS is embedded; Sub cannot fail.
		panic(err)
	}
	return sub
}

// LoadCatalog builds the quiz catalog from dir, or from the embedded demo
// images when dir is empty.
func LoadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.BuildFS(Images(), ".")
	}
	return catalog.Build(dir)
}
