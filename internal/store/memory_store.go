package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matthewbaird/autoboard/internal/types"
)

// MemoryStore is an in-memory Store for tests and previews. Physical
// tables are tracked as column name lists.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	boards map[int64]types.Board
	meta   map[int64]map[string]types.MetaRecord
	tables map[string][]string
	rows   map[string][]types.Record
	rowSeq map[string]int64
	files  map[int64]types.File
	fileID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards: make(map[int64]types.Board),
		meta:   make(map[int64]map[string]types.MetaRecord),
		tables: make(map[string][]string),
		rows:   make(map[string][]types.Record),
		rowSeq: make(map[string]int64),
		files:  make(map[int64]types.File),
	}
}

// CreateBoard implements Store.
func (m *MemoryStore) CreateBoard(_ context.Context, b types.Board, cols []types.Column) (int64, error) {
	doc, err := json.Marshal(types.ColumnsMeta{Fields: cols})
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(b.PhysicalTableName)
	if _, taken := m.tables[key]; taken {
		return 0, ErrTableTaken
	}

	now := time.Now().UTC()
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt, b.UpdatedAt = now, now
	m.boards[b.ID] = b

	physical := []string{"id"}
	for _, c := range cols {
		physical = append(physical, c.Name)
	}
	if b.IsFileAttach {
		physical = append(physical, types.AttachmentColumn)
	}
	m.tables[key] = append(physical, "created_at", "updated_at")

	m.meta[b.ID] = map[string]types.MetaRecord{}
	m.putLocked(b.ID, types.MetaColumns, doc, now)
	return b.ID, nil
}

// UpdateBoard implements Store.
func (m *MemoryStore) UpdateBoard(_ context.Context, b types.Board, cols []types.Column, added []types.Column) error {
	doc, err := json.Marshal(types.ColumnsMeta{Fields: cols})
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.boards[b.ID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	cur.Name, cur.Note, cur.UpdatedAt = b.Name, b.Note, now
	m.boards[b.ID] = cur

	key := strings.ToLower(cur.PhysicalTableName)
	for _, c := range added {
		m.tables[key] = append(m.tables[key], c.Name)
	}
	m.putLocked(b.ID, types.MetaColumns, doc, now)
	return nil
}

// GetBoard implements Store.
func (m *MemoryStore) GetBoard(_ context.Context, id int64) (types.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return types.Board{}, ErrNotFound
	}
	return b, nil
}

// BoardByTable implements Store.
func (m *MemoryStore) BoardByTable(_ context.Context, table string) (types.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.boards {
		if strings.EqualFold(b.PhysicalTableName, table) {
			return b, nil
		}
	}
	return types.Board{}, ErrNotFound
}

// ListBoards implements Store.
func (m *MemoryStore) ListBoards(_ context.Context) ([]types.Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Board, 0, len(m.boards))
	for _, b := range m.boards {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutMeta implements Store.
func (m *MemoryStore) PutMeta(_ context.Context, boardID int64, name string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[boardID]; !ok {
		return ErrNotFound
	}
	m.putLocked(boardID, name, doc, time.Now().UTC())
	return nil
}

func (m *MemoryStore) putLocked(boardID int64, name string, doc []byte, now time.Time) {
	rec, ok := m.meta[boardID][name]
	if !ok {
		rec = types.MetaRecord{BoardID: boardID, Name: name, CreatedAt: now}
	}
	rec.Meta = append(json.RawMessage(nil), doc...)
	rec.Schema = types.SchemaVersion
	rec.UpdatedAt = now
	m.meta[boardID][name] = rec
}

// GetMeta implements Store.
func (m *MemoryStore) GetMeta(_ context.Context, boardID int64, name string) (types.MetaRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.meta[boardID][name]
	if !ok {
		return types.MetaRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListMeta implements Store.
func (m *MemoryStore) ListMeta(_ context.Context, boardID int64) ([]types.MetaRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.MetaRecord, 0, len(m.meta[boardID]))
	for _, rec := range m.meta[boardID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// PhysicalColumns returns the column names of a record table.
func (m *MemoryStore) PhysicalColumns(table string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.tables[strings.ToLower(table)]...)
}
