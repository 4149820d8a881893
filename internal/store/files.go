package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/autoboard/internal/types"
)

var fileColumns = []string{"id", "base_folder", "physical_name", "logical_name", "size", "mime", "created_at"}

// FileStore keeps the catalogue of uploaded attachments. Blobs live on
// disk; see package files.
type FileStore interface {
	// InsertFile stamps created_at and returns the new id.
	InsertFile(ctx context.Context, f types.File) (int64, error)
	GetFile(ctx context.Context, id int64) (types.File, error)
	DeleteFile(ctx context.Context, id int64) error
}

// InsertFile implements FileStore.
func (s *SQLStore) InsertFile(ctx context.Context, f types.File) (int64, error) {
	ins := s.builder().Insert("files").
		Columns(fileColumns[1:]...).
		Values(f.BaseFolder, f.PhysicalName, f.LogicalName, f.Size, f.Mime, s.now())
	id, err := s.insertID(ctx, s.db, ins)
	if err != nil {
		return 0, fmt.Errorf("inserting file: %w", err)
	}
	return id, nil
}

// GetFile implements FileStore.
func (s *SQLStore) GetFile(ctx context.Context, id int64) (types.File, error) {
	query, args := s.builder().Select(fileColumns...).
		From(s.builder().Table("files")).
		Where(entsql.EQ("id", id)).
		Query()
	var f types.File
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&f.ID, &f.BaseFolder, &f.PhysicalName, &f.LogicalName, &f.Size, &f.Mime, timeScanner{&f.CreatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return types.File{}, ErrNotFound
	}
	return f, err
}

// DeleteFile implements FileStore.
func (s *SQLStore) DeleteFile(ctx context.Context, id int64) error {
	query, args := s.builder().Delete("files").Where(entsql.EQ("id", id)).Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting file %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertFile implements FileStore.
func (m *MemoryStore) InsertFile(_ context.Context, f types.File) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileID++
	f.ID = m.fileID
	f.CreatedAt = time.Now().UTC()
	m.files[f.ID] = f
	return f.ID, nil
}

// GetFile implements FileStore.
func (m *MemoryStore) GetFile(_ context.Context, id int64) (types.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok {
		return types.File{}, ErrNotFound
	}
	return f, nil
}

// DeleteFile implements FileStore.
func (m *MemoryStore) DeleteFile(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	return nil
}
