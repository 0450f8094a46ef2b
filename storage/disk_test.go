package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestDiskStoreWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	content := []byte("%PDF-1.4 fake transcript content")

	res, err := s.Write(context.Background(), bytes.NewReader(content), "application/pdf", "Jane_Doe_1_transcript.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, int64(len(content)), res.Size)

	rc, meta, err := s.Read(context.Background(), res.ID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "application/pdf", meta.ContentType)
	assert.Equal(t, "Jane_Doe_1_transcript.pdf", meta.FileName)
	assert.Equal(t, int64(len(content)), meta.Size)
}

func TestDiskStoreRepeatedReadsAreIdentical(t *testing.T) {
	s := newTestStore(t)
	content := []byte("immutable bytes")

	res, err := s.Write(context.Background(), bytes.NewReader(content), "image/png", "photo.png")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rc, _, err := s.Read(context.Background(), res.ID)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, content, got)
	}
}

func TestDiskStoreIdenticalContentGetsDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	content := []byte("same bytes twice")

	first, err := s.Write(context.Background(), bytes.NewReader(content), "application/pdf", "a.pdf")
	require.NoError(t, err)
	second, err := s.Write(context.Background(), bytes.NewReader(content), "application/pdf", "b.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestDiskStoreReadUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Read(context.Background(), "2f1b9a04-7c41-4ee2-9f3a-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	// Malformed ids must not be treated as paths
	_, _, err = s.Read(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Stat(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingReader struct {
	data []byte
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("upstream broke")
}

func TestDiskStoreFailedWriteLeavesNothingReadable(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Write(context.Background(), &failingReader{data: []byte("partial")}, "application/pdf", "broken.pdf")
	require.Error(t, err)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), metaSuffix), "no meta sidecar should remain")
		assert.False(t, strings.HasSuffix(e.Name(), tmpSuffix), "no temp file should remain")
	}
	assert.Empty(t, entries)
}

func TestDiskStoreStat(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Write(context.Background(), strings.NewReader("id scan"), "image/jpeg", "id.jpg")
	require.NoError(t, err)

	meta, err := s.Stat(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", meta.ContentType)
	assert.Equal(t, int64(len("id scan")), meta.Size)
}
