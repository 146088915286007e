package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found in storage")

// ImageStore owns the three blob locations a staged image can live in:
// temp/ right after upload, saved/ once the owning listing persisted, and
// processed/{size}/ written by the external resizer.
type ImageStore interface {
	// Stage writes the uploaded bytes under temp/{name}. A name collision
	// overwrites the previous blob; last write wins.
	Stage(ctx context.Context, name, contentType string, data []byte) error
	// Promote moves temp/{name} to saved/{name}.
	Promote(ctx context.Context, name string) error
	// Discard removes temp/{name}.
	Discard(ctx context.Context, name string) error
	// GetVariant streams processed/{size}/{name}. Returns ErrObjectNotFound
	// if the resizer has not produced that size yet.
	GetVariant(ctx context.Context, name string, size int) (io.ReadCloser, string, error)
}
