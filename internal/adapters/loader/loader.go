// Package loader provides document loading adapters.
// Files are read raw; the backend does all parsing.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// DefaultMaxBytes caps the size of a single upload.
const DefaultMaxBytes int64 = 50 << 20

// ErrUnsupportedFile is returned for extensions the backend cannot ingest.
var ErrUnsupportedFile = errors.New("unsupported file type")

// FileLoader implements ports.FileLoader for local files.
type FileLoader struct {
	extensions map[string]struct{}
	maxBytes   int64
}

// NewFileLoader creates a loader accepting the given extensions
// (e.g. ".pdf"). Defaults to the formats the backend ingests.
func NewFileLoader(extensions []string, maxBytes int64) *FileLoader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &FileLoader{extensions: set, maxBytes: maxBytes}
}

// DefaultExtensions returns the document formats the backend ingests.
func DefaultExtensions() []string {
	return []string{".pdf", ".docx", ".doc", ".txt", ".xlsx", ".csv"}
}

// Supports reports whether path has an accepted extension.
func (l *FileLoader) Supports(path string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the whole file at path.
func (l *FileLoader) Load(ctx context.Context, path string) (*entities.FileUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.Supports(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", filepath.Base(path), info.Size(), l.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &entities.FileUpload{
		Name: filepath.Base(path),
		Data: data,
	}, nil
}
