// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// IngestionService submits a raw document for chunking and embedding.
type IngestionService interface {
	// Ingest uploads the file and returns its processing metadata.
	Ingest(ctx context.Context, file entities.FileUpload) (*entities.IngestResult, error)
}

// QueryService asks a question about the ingested document.
type QueryService interface {
	// Query returns the generated answer and the passages behind it.
	Query(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error)
}

// HealthChecker checks that the backend is up.
type HealthChecker interface {
	Health(ctx context.Context) (*entities.BackendHealth, error)
}

// StateNotifier delivers state snapshots to whoever renders them.
type StateNotifier interface {
	// Publish hands a snapshot to every current subscriber.
	Publish(ctx context.Context, snap entities.Snapshot) error
}

// FileLoader reads a local document into an upload payload.
type FileLoader interface {
	// Load reads the file at path.
	Load(ctx context.Context, path string) (*entities.FileUpload, error)

	// Supports reports whether the file type can be uploaded.
	Supports(path string) bool
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// ErrMalformedResponse marks a backend reply that could not be decoded or
// failed validation.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is a non-success HTTP status from the backend.
type StatusError struct {
	Code   int
	Detail string // backend-provided reason, if any
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("backend returned status %d", e.Code)
}
