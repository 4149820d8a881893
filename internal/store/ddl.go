package store

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/types"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		name                TEXT NOT NULL,
		physical_table_name TEXT NOT NULL UNIQUE,
		note                TEXT NOT NULL DEFAULT '',
		is_file_attach      INTEGER NOT NULL DEFAULT 0,
		created_at          DATETIME NOT NULL,
		updated_at          DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta_data (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id   INTEGER NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		meta       TEXT NOT NULL,
		schema     TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (board_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		base_folder   TEXT NOT NULL,
		physical_name TEXT NOT NULL UNIQUE,
		logical_name  TEXT NOT NULL,
		size          INTEGER NOT NULL,
		mime          TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id                  BIGSERIAL PRIMARY KEY,
		name                TEXT NOT NULL,
		physical_table_name TEXT NOT NULL UNIQUE,
		note                TEXT NOT NULL DEFAULT '',
		is_file_attach      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta_data (
		id         BIGSERIAL PRIMARY KEY,
		board_id   BIGINT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		meta       TEXT NOT NULL,
		schema     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (board_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id            BIGSERIAL PRIMARY KEY,
		base_folder   TEXT NOT NULL,
		physical_name TEXT NOT NULL UNIQUE,
		logical_name  TEXT NOT NULL,
		size          BIGINT NOT NULL,
		mime          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// physicalType maps a column data type to the dialect's column type.
func physicalType(dialectName, dataType string) string {
	t := fieldtype.SQLType(dataType)
	if dialectName != dialect.Postgres {
		return t
	}
	switch t {
	case "INTEGER":
		return "BIGINT"
	case "REAL":
		return "DOUBLE PRECISION"
	}
	return t
}

// createTableQuery builds the DDL of a board's record table: an id key,
// one nullable column per field, the attachment column when enabled, and
// row timestamps.
func createTableQuery(dialectName, table string, cols []types.Column, fileAttach bool) (string, []any) {
	d := entsql.Dialect(dialectName)
	idType := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialectName == dialect.Postgres {
		idType = "BIGSERIAL PRIMARY KEY"
	}
	columns := []entsql.Querier{d.Column("id").Type(idType)}
	for _, c := range cols {
		columns = append(columns, d.Column(c.Name).Type(physicalType(dialectName, c.DataType)))
	}
	if fileAttach {
		columns = append(columns, d.Column(types.AttachmentColumn).Type("TEXT"))
	}
	columns = append(columns,
		d.Column("created_at").Type("TIMESTAMP DEFAULT CURRENT_TIMESTAMP"),
		d.Column("updated_at").Type("TIMESTAMP DEFAULT CURRENT_TIMESTAMP"),
	)
	q := d.String(func(b *entsql.Builder) {
		b.WriteString("CREATE TABLE ").Ident(table).Pad().Wrap(func(b *entsql.Builder) {
			b.JoinComma(columns...)
		})
	})
	return q, nil
}

// addColumnQuery builds the DDL adding one field column to a record table.
func addColumnQuery(dialectName, table string, c types.Column) (string, []any) {
	d := entsql.Dialect(dialectName)
	col := d.Column(c.Name).Type(physicalType(dialectName, c.DataType))
	q := d.String(func(b *entsql.Builder) {
		b.WriteString("ALTER TABLE ").Ident(table).WriteString(" ADD COLUMN ").Join(col)
	})
	return q, nil
}
