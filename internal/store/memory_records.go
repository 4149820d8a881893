package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matthewbaird/autoboard/internal/types"
)

// tableLocked returns the lower-cased key and column names of a record
// table.
func (m *MemoryStore) tableLocked(table string) (string, []string, error) {
	key := strings.ToLower(table)
	cols, ok := m.tables[key]
	if !ok {
		return "", nil, fmt.Errorf("no such table: %s", table)
	}
	return key, cols, nil
}

func checkColumns(table string, known []string, values types.Record) error {
	for c := range values {
		if !slices.Contains(known, c) {
			return fmt.Errorf("table %s has no column named %s", table, c)
		}
	}
	return nil
}

// ListRecords implements RecordStore.
func (m *MemoryStore) ListRecords(_ context.Context, table string, q types.RecordQuery) ([]types.Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, _, err := m.tableLocked(table)
	if err != nil {
		return nil, 0, err
	}
	needle := strings.ToLower(q.Search)
	var hits []types.Record
	for _, r := range m.rows[key] {
		if needle != "" && len(q.SearchColumns) > 0 && !matchesAny(r, q.SearchColumns, needle) {
			continue
		}
		hits = append(hits, maps.Clone(r))
	}
	slices.SortStableFunc(hits, func(a, b types.Record) int {
		for _, s := range q.Sort {
			c := compareValues(a[s.Column], b[s.Column])
			if strings.EqualFold(s.Order, "desc") {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(b.ID(), a.ID())
	})
	total := len(hits)
	if q.Limit > 0 {
		start := min(q.Offset, total)
		hits = hits[start:min(start+q.Limit, total)]
	}
	if hits == nil {
		hits = []types.Record{}
	}
	return hits, total, nil
}

func matchesAny(r types.Record, cols []string, needle string) bool {
	for _, c := range cols {
		if v := r[c]; v != nil && strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			return true
		}
	}
	return false
}

// compareValues orders nil first, numbers numerically and everything else
// by its text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return cmp.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// GetRecord implements RecordStore.
func (m *MemoryStore) GetRecord(_ context.Context, table string, id int64) (types.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, _, err := m.tableLocked(table)
	if err != nil {
		return nil, err
	}
	for _, r := range m.rows[key] {
		if r.ID() == id {
			return maps.Clone(r), nil
		}
	}
	return nil, ErrNotFound
}

// InsertRecord implements RecordStore.
func (m *MemoryStore) InsertRecord(_ context.Context, table string, values types.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, cols, err := m.tableLocked(table)
	if err != nil {
		return 0, err
	}
	if err := checkColumns(table, cols, values); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	m.rowSeq[key]++
	rec := make(types.Record, len(cols))
	for _, c := range cols {
		rec[c] = values[c]
	}
	rec["id"] = m.rowSeq[key]
	rec["created_at"], rec["updated_at"] = now, now
	m.rows[key] = append(m.rows[key], rec)
	return m.rowSeq[key], nil
}

// UpdateRecord implements RecordStore.
func (m *MemoryStore) UpdateRecord(_ context.Context, table string, id int64, values types.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, cols, err := m.tableLocked(table)
	if err != nil {
		return err
	}
	if err := checkColumns(table, cols, values); err != nil {
		return err
	}
	for _, r := range m.rows[key] {
		if r.ID() == id {
			maps.Copy(r, values)
			r["updated_at"] = time.Now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteRecord implements RecordStore.
func (m *MemoryStore) DeleteRecord(_ context.Context, table string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, _, err := m.tableLocked(table)
	if err != nil {
		return err
	}
	n := len(m.rows[key])
	m.rows[key] = slices.DeleteFunc(m.rows[key], func(r types.Record) bool { return r.ID() == id })
	if len(m.rows[key]) == n {
		return ErrNotFound
	}
	return nil
}
