// Package testutil provides shared test helpers for setting up archives and catalogs.
package testutil

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/starford/datagen/internal/catalog"
	"github.com/starford/datagen/internal/models"
	"github.com/starford/datagen/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically closed.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestArchive creates an empty temporary archive root with a storage.Provider.
func TestArchive(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// Document returns a fully populated document for year.
func Document(title string, year int, tech models.Technique) *models.Document {
	return &models.Document{
		Title:     title,
		Author:    models.DefaultAuthor,
		Created:   models.Date{Day: 14, Month: 7, Year: year},
		Reference: "X1y2Z3w4V",
		Technique: tech,
		Digitized: models.DigitizedYear,
		Body:      title + " body.",
	}
}

// WriteDocument stores doc at <year>/<department>/<file>, creating the
// directories as needed, and returns the archive-relative path.
func WriteDocument(t *testing.T, store storage.Provider, department string, doc *models.Document) string {
	t.Helper()
	year := strconv.Itoa(doc.Created.Year)
	dir := path.Join(year, department)
	for _, d := range []string{year, dir} {
		if err := store.MakeDir(d); err != nil && !errors.Is(err, fs.ErrExist) {
			t.Fatal(err)
		}
	}
	p := path.Join(dir, doc.FileName())
	if err := store.Write(p, doc.Render()); err != nil {
		t.Fatal(err)
	}
	return p
}
