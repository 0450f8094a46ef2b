package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	tmpSuffix  = ".tmp"
	metaSuffix = ".meta"
)

// DiskStore stores blobs as flat files under a single directory. Each blob is
// a data file named by its uuid plus a JSON sidecar holding content type and
// filename hint. The data file is renamed into place only after the temp file
// is fully written and synced, so a readable blob is always complete.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed and returns a store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *DiskStore) Dir() string { return s.dir }

// Write implements BlobStore.
func (s *DiskStore) Write(ctx context.Context, r io.Reader, contentType, fileName string) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	id := uuid.NewString()
	dataPath := filepath.Join(s.dir, id)
	tmpPath := dataPath + tmpSuffix
	metaPath := dataPath + metaSuffix

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return PutResult{}, fmt.Errorf("create temp blob: %w", err)
	}

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("close blob: %w", err)
	}

	meta := Meta{ContentType: contentType, FileName: fileName, Size: written}
	mb, err := json.Marshal(meta)
	if err != nil {
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("encode blob meta: %w", err)
	}
	if err := os.WriteFile(metaPath, mb, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return PutResult{}, fmt.Errorf("write blob meta: %w", err)
	}

	// Rename last: the blob only becomes visible once data and meta are complete.
	if err := os.Rename(tmpPath, dataPath); err != nil {
		_ = os.Remove(tmpPath)
		_ = os.Remove(metaPath)
		return PutResult{}, fmt.Errorf("publish blob: %w", err)
	}

	return PutResult{ID: id, Size: written}, nil
}

// Read implements BlobStore.
func (s *DiskStore) Read(ctx context.Context, id string) (io.ReadCloser, Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, Meta{}, err
	}
	dataPath, err := s.blobPath(id)
	if err != nil {
		return nil, Meta{}, err
	}

	f, err := os.Open(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Meta{}, ErrNotFound
		}
		return nil, Meta{}, fmt.Errorf("open blob %s: %w", id, err)
	}

	meta, err := s.readMeta(dataPath + metaSuffix)
	if err != nil {
		_ = f.Close()
		return nil, Meta{}, err
	}
	return f, meta, nil
}

// Stat implements BlobStore.
func (s *DiskStore) Stat(ctx context.Context, id string) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	dataPath, err := s.blobPath(id)
	if err != nil {
		return Meta{}, err
	}
	if _, err := os.Stat(dataPath); err != nil {
		if os.IsNotExist(err) {
			return Meta{}, ErrNotFound
		}
		return Meta{}, fmt.Errorf("stat blob %s: %w", id, err)
	}
	return s.readMeta(dataPath + metaSuffix)
}

// blobPath validates the id and derives the data file path. Ids are uuids, so
// parsing them rejects anything that could traverse out of the directory.
func (s *DiskStore) blobPath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, id), nil
}

func (s *DiskStore) readMeta(path string) (Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, ErrNotFound
		}
		return Meta{}, fmt.Errorf("read blob meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(b, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode blob meta: %w", err)
	}
	return meta, nil
}

// remove deletes a blob and its sidecar. Used by the orphan reaper only;
// the ingestion and retrieval paths never delete.
func (s *DiskStore) remove(id string) error {
	dataPath, err := s.blobPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(dataPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(dataPath + metaSuffix); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
