package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/autoboard/internal/types"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Open opens a database for the named driver and returns it with the
// matching SQL dialect.
func Open(driver, dsn string) (*sql.DB, string, error) {
	var d string
	switch driver {
	case DriverSQLite:
		d = dialect.SQLite
	case DriverPgx:
		d = dialect.Postgres
	default:
		return nil, "", fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, d, nil
}

var boardColumns = []string{"id", "name", "physical_table_name", "note", "is_file_attach", "created_at", "updated_at"}

var metaColumns = []string{"board_id", "name", "meta", "schema", "created_at", "updated_at"}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements Store on database/sql, building statements with the
// ent SQL builder for the configured dialect.
type SQLStore struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// NewSQLStore creates a store for db. dialectName is dialect.SQLite or
// dialect.Postgres.
func NewSQLStore(db *sql.DB, dialectName string) *SQLStore {
	return &SQLStore{db: db, dialect: dialectName, now: func() time.Time { return time.Now().UTC() }}
}

func (s *SQLStore) builder() *entsql.DialectBuilder { return entsql.Dialect(s.dialect) }

// Migrate creates the boards, meta_data and files tables.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.dialect == dialect.Postgres {
		stmts = postgresSchema
	} else if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CreateBoard implements Store.
func (s *SQLStore) CreateBoard(ctx context.Context, b types.Board, cols []types.Column) (int64, error) {
	doc, err := json.Marshal(types.ColumnsMeta{Fields: cols})
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		ins := s.builder().Insert("boards").
			Columns("name", "physical_table_name", "note", "is_file_attach", "created_at", "updated_at").
			Values(b.Name, b.PhysicalTableName, b.Note, b.IsFileAttach, now, now)
		if id, err = s.insertID(ctx, tx, ins); err != nil {
			return fmt.Errorf("inserting board: %w", err)
		}
		if err := s.insertMeta(ctx, tx, id, types.MetaColumns, doc, now); err != nil {
			return err
		}
		query, args := createTableQuery(s.dialect, b.PhysicalTableName, cols, b.IsFileAttach)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("creating table %s: %w", b.PhysicalTableName, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// insertID runs an insert and returns the generated id.
func (s *SQLStore) insertID(ctx context.Context, q execQuerier, ins *entsql.InsertBuilder) (int64, error) {
	if s.dialect == dialect.Postgres {
		query, args := ins.Returning("id").Query()
		var id int64
		err := q.QueryRowContext(ctx, query, args...).Scan(&id)
		return id, err
	}
	query, args := ins.Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLStore) insertMeta(ctx context.Context, q execQuerier, boardID int64, name string, doc []byte, now time.Time) error {
	query, args := s.builder().Insert("meta_data").
		Columns(metaColumns...).
		Values(boardID, name, string(doc), types.SchemaVersion, now, now).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting %s meta: %w", name, err)
	}
	return nil
}

func (s *SQLStore) putMeta(ctx context.Context, q execQuerier, boardID int64, name string, doc []byte) error {
	now := s.now()
	query, args := s.builder().Select("id").
		From(s.builder().Table("meta_data")).
		Where(entsql.And(entsql.EQ("board_id", boardID), entsql.EQ("name", name))).
		Query()
	var id int64
	switch err := q.QueryRowContext(ctx, query, args...).Scan(&id); {
	case errors.Is(err, sql.ErrNoRows):
		return s.insertMeta(ctx, q, boardID, name, doc, now)
	case err != nil:
		return fmt.Errorf("looking up %s meta: %w", name, err)
	}
	query, args = s.builder().Update("meta_data").
		Set("meta", string(doc)).
		Set("schema", types.SchemaVersion).
		Set("updated_at", now).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating %s meta: %w", name, err)
	}
	return nil
}

// UpdateBoard implements Store.
func (s *SQLStore) UpdateBoard(ctx context.Context, b types.Board, cols []types.Column, added []types.Column) error {
	doc, err := json.Marshal(types.ColumnsMeta{Fields: cols})
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := s.builder().Update("boards").
			Set("name", b.Name).
			Set("note", b.Note).
			Set("updated_at", s.now()).
			Where(entsql.EQ("id", b.ID)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("updating board: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		if err := s.putMeta(ctx, tx, b.ID, types.MetaColumns, doc); err != nil {
			return err
		}
		for _, c := range added {
			query, args := addColumnQuery(s.dialect, b.PhysicalTableName, c)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("adding column %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) selectBoards() *entsql.Selector {
	return s.builder().Select(boardColumns...).From(s.builder().Table("boards"))
}

func scanBoard(sc interface{ Scan(...any) error }) (types.Board, error) {
	var b types.Board
	err := sc.Scan(&b.ID, &b.Name, &b.PhysicalTableName, &b.Note, &b.IsFileAttach,
		timeScanner{&b.CreatedAt}, timeScanner{&b.UpdatedAt})
	return b, err
}

func (s *SQLStore) getBoard(ctx context.Context, p *entsql.Predicate) (types.Board, error) {
	query, args := s.selectBoards().Where(p).Query()
	b, err := scanBoard(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Board{}, ErrNotFound
	}
	return b, err
}

// GetBoard implements Store.
func (s *SQLStore) GetBoard(ctx context.Context, id int64) (types.Board, error) {
	return s.getBoard(ctx, entsql.EQ("id", id))
}

// BoardByTable implements Store.
func (s *SQLStore) BoardByTable(ctx context.Context, table string) (types.Board, error) {
	return s.getBoard(ctx, entsql.EQ("physical_table_name", table))
}

// ListBoards implements Store.
func (s *SQLStore) ListBoards(ctx context.Context) ([]types.Board, error) {
	query, args := s.selectBoards().OrderBy("id").Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PutMeta implements Store.
func (s *SQLStore) PutMeta(ctx context.Context, boardID int64, name string, doc json.RawMessage) error {
	return s.putMeta(ctx, s.db, boardID, name, doc)
}

func (s *SQLStore) selectMeta(where *entsql.Predicate) (string, []any) {
	return s.builder().Select(metaColumns...).
		From(s.builder().Table("meta_data")).
		Where(where).
		OrderBy("id").
		Query()
}

func scanMeta(sc interface{ Scan(...any) error }) (types.MetaRecord, error) {
	var (
		r    types.MetaRecord
		meta string
	)
	err := sc.Scan(&r.BoardID, &r.Name, &meta, &r.Schema, timeScanner{&r.CreatedAt}, timeScanner{&r.UpdatedAt})
	r.Meta = json.RawMessage(meta)
	return r, err
}

// GetMeta implements Store.
func (s *SQLStore) GetMeta(ctx context.Context, boardID int64, name string) (types.MetaRecord, error) {
	query, args := s.selectMeta(entsql.And(entsql.EQ("board_id", boardID), entsql.EQ("name", name)))
	r, err := scanMeta(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.MetaRecord{}, ErrNotFound
	}
	return r, err
}

// ListMeta implements Store.
func (s *SQLStore) ListMeta(ctx context.Context, boardID int64) ([]types.MetaRecord, error) {
	query, args := s.selectMeta(entsql.EQ("board_id", boardID))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []types.MetaRecord
	for rows.Next() {
		r, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// timeScanner reads timestamps stored either natively or as text.
type timeScanner struct{ t *time.Time }

func (ts timeScanner) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*ts.t = time.Time{}
		return nil
	case time.Time:
		*ts.t = x
		return nil
	case []byte:
		return ts.parse(string(x))
	case string:
		return ts.parse(x)
	}
	return fmt.Errorf("cannot scan %T into time", v)
}

func (ts timeScanner) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
