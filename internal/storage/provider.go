// Package storage defines the archive file-system abstraction.
package storage

import "github.com/starford/datagen/internal/models"

// Provider is the interface for archive file operations.
// All paths are relative to the archive root.
type Provider interface {
	// MakeDir creates a single directory. It fails if the directory already exists.
	MakeDir(dir string) error
	// Write atomically creates or replaces the file at path. The parent directory must exist.
	Write(path string, content []byte) error
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// List returns metadata for every generated document under dir.
	List(dir string) ([]models.DocumentMetadata, error)
	// Root returns the absolute archive root.
	Root() string
}
