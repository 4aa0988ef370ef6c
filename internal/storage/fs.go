package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/docpages/internal/checksum"
	"github.com/starford/docpages/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	contentRoot string // absolute content root
	root        string // absolute markdown directory
}

// NewFS creates a new FS provider for the given content root.
// The content root must already exist; the markdown directory may not.
func NewFS(contentRoot string) (*FS, error) {
	abs, err := filepath.Abs(contentRoot)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{contentRoot: abs, root: filepath.Join(abs, MarkdownDir)}, nil
}

// Root returns the absolute markdown directory.
func (f *FS) Root() string {
	return f.root
}

// ContentRoot returns the absolute content root.
func (f *FS) ContentRoot() string {
	return f.contentRoot
}

// Locate maps a descriptor url to its markdown file under this provider's root.
func (f *FS) Locate(u string) (string, error) {
	return Locate(u, f.contentRoot)
}

// safePath rejects any path that is not inside the markdown root.
func (f *FS) safePath(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.root, filepath.Clean(p))
	}
	return within(f.root, p)
}

// Stat returns the modification time of a markdown file. Missing files
// yield an error satisfying errors.Is(err, fs.ErrNotExist).
func (f *FS) Stat(path string) (time.Time, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: stat: %w", err)
	}
	if info.IsDir() {
		return time.Time{}, fmt.Errorf("storage: stat: %w", fs.ErrNotExist)
	}
	return info.ModTime(), nil
}

// Read returns the raw bytes of a markdown file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read: %w", err)
	}
	return data, nil
}

// List walks the markdown root and returns metadata for every .md file.
// A missing markdown directory yields an empty list.
func (f *FS) List() ([]models.SourceMetadata, error) {
	if _, err := os.Stat(f.root); os.IsNotExist(err) {
		return nil, nil
	}
	var out []models.SourceMetadata
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.SourceMetadata{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

var _ Provider = (*FS)(nil)
