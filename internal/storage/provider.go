// Package storage locates and reads markdown sources under the content root.
package storage

import (
	"time"

	"github.com/starford/docpages/internal/models"
)

// Provider is the interface for markdown source access.
type Provider interface {
	// Locate maps a descriptor url to the absolute path of its markdown file.
	Locate(url string) (string, error)
	// Stat returns the last-modified time of the file at path.
	Stat(path string) (time.Time, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// List returns metadata for every .md file under the markdown root.
	List() ([]models.SourceMetadata, error)
}
