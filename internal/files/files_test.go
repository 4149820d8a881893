package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
)

func newService(t *testing.T) (*Service, *store.MemoryStore, string) {
	t.Helper()
	dir := t.TempDir()
	st := store.NewMemoryStore()
	s := New(dir, st, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return s, st, dir
}

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, st, dir := newService(t)

	f, err := s.Save(ctx, `C:\Users\ada\notes.txt`, "", strings.NewReader("hello, board"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.ID)
	assert.Equal(t, "notes.txt", f.LogicalName)
	assert.Equal(t, "2026/10", f.BaseFolder)
	assert.Len(t, f.PhysicalName, 32)
	assert.Equal(t, int64(12), f.Size)
	assert.Equal(t, defaultMime, f.Mime)

	onDisk := filepath.Join(dir, "2026", "10", f.PhysicalName)
	assert.FileExists(t, onDisk)

	got, blob, err := s.Open(ctx, f.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(blob)
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	assert.Equal(t, "hello, board", string(body))
	assert.Equal(t, f.PhysicalName, got.PhysicalName)

	require.NoError(t, s.Delete(ctx, f.ID))
	assert.NoFileExists(t, onDisk)
	_, err = st.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpen_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _, dir := newService(t)

	_, _, err := s.Open(ctx, 99)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.EqualError(t, err, MsgFileNotFound)

	f, err := s.Save(ctx, "a.csv", "text/csv", strings.NewReader("a,b"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "2026", "10", f.PhysicalName)))

	_, _, err = s.Open(ctx, f.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.EqualError(t, err, MsgBlobNotFound)

	// the catalogue entry still goes when the blob is already gone
	require.NoError(t, s.Delete(ctx, f.ID))
	assert.ErrorIs(t, s.Delete(ctx, f.ID), service.ErrNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestSave_RemovesBlobOnError(t *testing.T) {
	s, _, dir := newService(t)

	_, err := s.Save(context.Background(), "broken.bin", "", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "2026", "10"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogicalName(t *testing.T) {
	for in, want := range map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "passwd",
		`C:\tmp\photo.jpg`: "photo.jpg",
		"":                 "file",
		"/":                "file",
	} {
		assert.Equal(t, want, logicalName(in), in)
	}
}
