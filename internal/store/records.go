package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/autoboard/internal/types"
)

// RecordStore reads and writes the rows of board record tables. Callers
// pass only column names taken from the board's columns document.
type RecordStore interface {
	ListRecords(ctx context.Context, table string, q types.RecordQuery) ([]types.Record, int, error)
	GetRecord(ctx context.Context, table string, id int64) (types.Record, error)
	// InsertRecord stamps created_at and updated_at and returns the new id.
	InsertRecord(ctx context.Context, table string, values types.Record) (int64, error)
	// UpdateRecord rewrites the given columns and stamps updated_at.
	UpdateRecord(ctx context.Context, table string, id int64, values types.Record) error
	DeleteRecord(ctx context.Context, table string, id int64) error
}

// searchPredicate ORs a case-insensitive substring match over cols.
func searchPredicate(q types.RecordQuery) *entsql.Predicate {
	if q.Search == "" || len(q.SearchColumns) == 0 {
		return nil
	}
	preds := make([]*entsql.Predicate, len(q.SearchColumns))
	for i, c := range q.SearchColumns {
		preds[i] = entsql.ContainsFold(c, q.Search)
	}
	return entsql.Or(preds...)
}

func orderTerms(sort []types.SortSpec) []string {
	terms := make([]string, 0, len(sort)+1)
	for _, s := range sort {
		if strings.EqualFold(s.Order, "desc") {
			terms = append(terms, entsql.Desc(s.Column))
		} else {
			terms = append(terms, entsql.Asc(s.Column))
		}
	}
	// id breaks ties so pages stay stable.
	return append(terms, entsql.Desc("id"))
}

// ListRecords implements RecordStore.
func (s *SQLStore) ListRecords(ctx context.Context, table string, q types.RecordQuery) ([]types.Record, int, error) {
	where := searchPredicate(q)

	count := s.builder().Select().From(s.builder().Table(table))
	if where != nil {
		count.Where(where)
	}
	query, args := count.Count().Query()
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", table, err)
	}

	sel := s.builder().Select().From(s.builder().Table(table))
	if where != nil {
		sel.Where(where)
	}
	sel.OrderBy(orderTerms(q.Sort)...)
	if q.Limit > 0 {
		sel.Limit(q.Limit).Offset(q.Offset)
	}
	query, args = sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()
	out, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetRecord implements RecordStore.
func (s *SQLStore) GetRecord(ctx context.Context, table string, id int64) (types.Record, error) {
	query, args := s.builder().Select().
		From(s.builder().Table(table)).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%d: %w", table, id, err)
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// InsertRecord implements RecordStore.
func (s *SQLStore) InsertRecord(ctx context.Context, table string, values types.Record) (int64, error) {
	now := s.now()
	cols := sortedKeys(values)
	vals := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		vals = append(vals, values[c])
	}
	cols = append(cols, "created_at", "updated_at")
	vals = append(vals, now, now)
	ins := s.builder().Insert(table).Columns(cols...).Values(vals...)
	id, err := s.insertID(ctx, s.db, ins)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	return id, nil
}

// UpdateRecord implements RecordStore.
func (s *SQLStore) UpdateRecord(ctx context.Context, table string, id int64, values types.Record) error {
	upd := s.builder().Update(table)
	for _, c := range sortedKeys(values) {
		upd.Set(c, values[c])
	}
	query, args := upd.Set("updated_at", s.now()).Where(entsql.EQ("id", id)).Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s/%d: %w", table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord implements RecordStore.
func (s *SQLStore) DeleteRecord(ctx context.Context, table string, id int64) error {
	query, args := s.builder().Delete(table).Where(entsql.EQ("id", id)).Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting %s/%d: %w", table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func sortedKeys(r types.Record) []string { return slices.Sorted(maps.Keys(r)) }

// scanRecords reads every row into a Record keyed by the result columns.
// Text comes back as string whatever the driver hands over.
func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []types.Record{}
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(types.Record, len(names))
		for i, n := range names {
			if b, ok := vals[i].([]byte); ok {
				rec[n] = string(b)
				continue
			}
			rec[n] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
