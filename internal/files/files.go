// Package files stores uploaded attachments on disk under <dir>/yyyy/mm
// with a random physical name, and keeps their catalogue in the database.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

// User-facing messages.
const (
	MsgFileNotFound = "File not found"
	MsgBlobNotFound = "Physical file not found"
)

const defaultMime = "application/octet-stream"

// Service saves, opens and deletes attachments.
type Service struct {
	dir    string
	store  store.FileStore
	now    func() time.Time
	logger *zap.Logger
}

// New creates a Service rooted at dir.
func New(dir string, st store.FileStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dir: dir, store: st, now: time.Now, logger: logger.Named("files")}
}

func (s *Service) path(f types.File) string {
	return filepath.Join(s.dir, filepath.FromSlash(f.BaseFolder), f.PhysicalName)
}

// Save writes r to a new blob and records it. name is the client's file
// name; only its base is kept.
func (s *Service) Save(ctx context.Context, name, mime string, r io.Reader) (types.File, error) {
	f := types.File{
		BaseFolder:   s.now().Format("2006/01"),
		PhysicalName: strings.ReplaceAll(uuid.NewString(), "-", ""),
		LogicalName:  logicalName(name),
		Mime:         mime,
	}
	if f.Mime == "" {
		f.Mime = defaultMime
	}

	p := s.path(f)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return types.File{}, fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
	}
	out, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return types.File{}, fmt.Errorf("creating blob: %w", err)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return types.File{}, fmt.Errorf("writing blob: %w", err)
	}
	f.Size = n

	id, err := s.store.InsertFile(ctx, f)
	if err != nil {
		_ = os.Remove(p)
		return types.File{}, err
	}
	f.ID = id
	f.CreatedAt = s.now().UTC()
	s.logger.Info("file uploaded",
		zap.Int64("file_id", id),
		zap.String("logical_name", f.LogicalName),
		zap.String("path", f.BaseFolder+"/"+f.PhysicalName),
		zap.Int64("size", n))
	return f, nil
}

func logicalName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	return base
}

// Open returns the catalogue entry and the blob of a file. The caller
// closes the blob.
func (s *Service) Open(ctx context.Context, id int64) (types.File, *os.File, error) {
	f, err := s.store.GetFile(ctx, id)
	if err != nil {
		return types.File{}, nil, notFound(err, MsgFileNotFound)
	}
	blob, err := os.Open(s.path(f))
	if err != nil {
		return types.File{}, nil, notFound(err, MsgBlobNotFound)
	}
	return f, blob, nil
}

// Delete removes the catalogue entry, then the blob.
func (s *Service) Delete(ctx context.Context, id int64) error {
	f, err := s.store.GetFile(ctx, id)
	if err != nil {
		return notFound(err, MsgFileNotFound)
	}
	if err := s.store.DeleteFile(ctx, id); err != nil {
		return notFound(err, MsgFileNotFound)
	}
	if err := os.Remove(s.path(f)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("removing blob", zap.Int64("file_id", id), zap.Error(err))
	}
	s.logger.Info("file deleted", zap.Int64("file_id", id))
	return nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return &service.NotFoundError{Message: msg}
	}
	return err
}
