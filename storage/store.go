package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists under the requested id. Callers
// must be able to tell a missing blob apart from an I/O failure.
var ErrNotFound = errors.New("blob not found")

// Meta describes a stored blob.
type Meta struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"` // display name hint for inline download
	Size        int64  `json:"size"`
}

// PutResult reports a completed blob write.
type PutResult struct {
	ID   string
	Size int64
}

// BlobStore is durable binary storage keyed by opaque, globally unique ids.
// Writes are atomic from the caller's point of view: either a complete blob
// becomes readable under the returned id, or nothing readable exists for that
// attempt. Blobs are immutable once written; identical content written twice
// yields two distinct ids.
type BlobStore interface {
	// Write streams r to durable storage and returns the assigned id.
	Write(ctx context.Context, r io.Reader, contentType, fileName string) (PutResult, error)
	// Read opens the blob for streaming. Returns ErrNotFound for unknown ids.
	Read(ctx context.Context, id string) (io.ReadCloser, Meta, error)
	// Stat reports blob metadata without opening the content.
	Stat(ctx context.Context, id string) (Meta, error)
}
