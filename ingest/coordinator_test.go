package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradgate/gradgate/models"
	"github.com/gradgate/gradgate/storage"
)

// spyBlobStore counts writes and can fail the nth one.
type spyBlobStore struct {
	mu     sync.Mutex
	writes int
	failAt int // 1-based write index to fail at, 0 = never
	blobs  map[string][]byte
	metas  map[string]storage.Meta
}

func newSpyBlobStore() *spyBlobStore {
	return &spyBlobStore{blobs: map[string][]byte{}, metas: map[string]storage.Meta{}}
}

func (s *spyBlobStore) Write(ctx context.Context, r io.Reader, contentType, fileName string) (storage.PutResult, error) {
	s.mu.Lock()
	s.writes++
	n := s.writes
	s.mu.Unlock()

	if s.failAt > 0 && n >= s.failAt {
		return storage.PutResult{}, errors.New("disk full")
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return storage.PutResult{}, err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = b
	s.metas[id] = storage.Meta{ContentType: contentType, FileName: fileName, Size: int64(len(b))}
	s.mu.Unlock()
	return storage.PutResult{ID: id, Size: int64(len(b))}, nil
}

func (s *spyBlobStore) Read(ctx context.Context, id string) (io.ReadCloser, storage.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, storage.Meta{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), s.metas[id], nil
}

func (s *spyBlobStore) Stat(ctx context.Context, id string) (storage.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metas[id]
	if !ok {
		return storage.Meta{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *spyBlobStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeRecords struct {
	mu         sync.Mutex
	inserted   []*models.Application
	failInsert bool
}

func (f *fakeRecords) Insert(ctx context.Context, app *models.Application) error {
	if f.failInsert {
		return errors.New("database gone")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = uint(len(f.inserted) + 1)
	f.inserted = append(f.inserted, app)
	return nil
}

func testFile(name, contentType, content string) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newTestCoordinator(blobs storage.BlobStore, recs RecordInserter) *Coordinator {
	c := NewCoordinator(blobs, recs, NewValidator(testRules()))
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestSubmitStoresAllFilesAndRecord(t *testing.T) {
	blobs := newSpyBlobStore()
	recs := &fakeRecords{}
	c := newTestCoordinator(blobs, recs)

	files := []File{
		testFile("transcript.pdf", "application/pdf", "transcript body"),
		testFile("id.png", "image/png", "png bytes"),
		testFile("statement.pdf", "application/pdf", "financial proof"),
	}

	app, err := c.Submit(context.Background(), validFields(), files)
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.Equal(t, "Jane Doe", app.FullName)
	assert.Equal(t, "Pending", app.Status)
	assert.False(t, app.SubmittedAt.IsZero())
	require.Len(t, app.Attachments, 3)

	seen := map[string]bool{}
	for i, att := range app.Attachments {
		assert.Equal(t, i, att.Position)
		assert.Equal(t, files[i].Name, att.OriginalName)
		assert.Equal(t, files[i].ContentType, att.MimeType)
		assert.Equal(t, files[i].Size, att.Size)
		assert.False(t, seen[att.StorageID], "storage ids must be distinct")
		seen[att.StorageID] = true
		assert.Contains(t, att.FileName, "Jane_Doe_")
		assert.Contains(t, att.FileName, files[i].Name)

		// Every referenced blob is fully readable
		rc, meta, err := blobs.Read(context.Background(), att.StorageID)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, att.Size, meta.Size)
	}

	require.Len(t, recs.inserted, 1)
	assert.Equal(t, 3, blobs.writeCount())
}

func TestSubmitFailFastWritesNothing(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		files    []File
		wantCode ValidationCode
	}{
		{
			name:     "missing field",
			fields:   Fields{Age: 20, Address: "1 Main St", SelectedCourse: "MBA"},
			files:    []File{testFile("a.pdf", "application/pdf", "x")},
			wantCode: CodeMissingField,
		},
		{
			name: "age too low",
			fields: Fields{
				FullName: "Jane Doe", Age: 15, Address: "1 Main St", SelectedCourse: "MBA",
			},
			files:    []File{testFile("a.pdf", "application/pdf", "x")},
			wantCode: CodeAgeTooLow,
		},
		{
			name:     "no documents",
			fields:   validFields(),
			files:    nil,
			wantCode: CodeNoDocuments,
		},
		{
			name:     "unsupported type",
			fields:   validFields(),
			files:    []File{testFile("a.zip", "application/zip", "x")},
			wantCode: CodeUnsupportedType,
		},
		{
			name:   "oversized file",
			fields: validFields(),
			files: []File{{
				Name: "big.pdf", ContentType: "application/pdf", Size: 11 * 1024 * 1024,
			}},
			wantCode: CodeTooLarge,
		},
		{
			name:   "too many files",
			fields: validFields(),
			files: []File{
				testFile("1.pdf", "application/pdf", "x"), testFile("2.pdf", "application/pdf", "x"),
				testFile("3.pdf", "application/pdf", "x"), testFile("4.pdf", "application/pdf", "x"),
				testFile("5.pdf", "application/pdf", "x"), testFile("6.pdf", "application/pdf", "x"),
			},
			wantCode: CodeTooManyFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newSpyBlobStore()
			recs := &fakeRecords{}
			c := newTestCoordinator(blobs, recs)

			_, err := c.Submit(context.Background(), tt.fields, tt.files)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantCode, verr.Code)
			assert.Zero(t, blobs.writeCount(), "validation failures must not reach storage")
			assert.Empty(t, recs.inserted)
		})
	}
}

func TestSubmitAbortsOnMidBatchWriteFailure(t *testing.T) {
	blobs := newSpyBlobStore()
	blobs.failAt = 2
	recs := &fakeRecords{}
	c := newTestCoordinator(blobs, recs)

	files := []File{
		testFile("a.pdf", "application/pdf", "first"),
		testFile("b.pdf", "application/pdf", "second"),
		testFile("c.pdf", "application/pdf", "third"),
	}

	_, err := c.Submit(context.Background(), validFields(), files)
	var serr *StorageWriteError
	require.ErrorAs(t, err, &serr)

	// Earlier blobs may be orphaned, but no record ever references them
	assert.Empty(t, recs.inserted)
}

func TestSubmitInsertFailureCreatesNoRecord(t *testing.T) {
	blobs := newSpyBlobStore()
	recs := &fakeRecords{failInsert: true}
	c := newTestCoordinator(blobs, recs)

	_, err := c.Submit(context.Background(), validFields(), []File{
		testFile("a.pdf", "application/pdf", "content"),
	})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "insert failure is not a validation error")
	assert.Empty(t, recs.inserted)
}

func TestDisplayFileName(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	name := displayFileName("Jane Doe", ts, "My Transcript.pdf")
	assert.Equal(t, "Jane_Doe_1772366400000000000_My Transcript.pdf", name)

	// Path components in client filenames are stripped
	name = displayFileName("Jane Doe", ts, "../../evil.pdf")
	assert.Equal(t, "Jane_Doe_1772366400000000000_evil.pdf", name)

	name = displayFileName("Jane Doe", ts, "")
	assert.Equal(t, "Jane_Doe_1772366400000000000_document", name)
}
