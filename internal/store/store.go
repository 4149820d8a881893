// Package store persists boards, their configuration documents and the
// physical record tables backing them.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/matthewbaird/autoboard/internal/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrTableTaken = errors.New("physical table name already in use")
)

// Store is the persistence boundary for the board wizard.
type Store interface {
	// CreateBoard inserts the board and its columns document and creates
	// the physical table, all or nothing. It returns the new board id.
	CreateBoard(ctx context.Context, b types.Board, cols []types.Column) (int64, error)

	// UpdateBoard rewrites name and note, replaces the columns document
	// with cols and adds the physical columns listed in added.
	UpdateBoard(ctx context.Context, b types.Board, cols []types.Column, added []types.Column) error

	GetBoard(ctx context.Context, id int64) (types.Board, error)
	BoardByTable(ctx context.Context, table string) (types.Board, error)
	ListBoards(ctx context.Context) ([]types.Board, error)

	// PutMeta inserts or replaces one configuration document.
	PutMeta(ctx context.Context, boardID int64, name string, doc json.RawMessage) error
	GetMeta(ctx context.Context, boardID int64, name string) (types.MetaRecord, error)
	ListMeta(ctx context.Context, boardID int64) ([]types.MetaRecord, error)
}

// Columns loads and decodes the columns document of a board.
func Columns(ctx context.Context, s Store, boardID int64) (types.ColumnsMeta, error) {
	rec, err := s.GetMeta(ctx, boardID, types.MetaColumns)
	if err != nil {
		return types.ColumnsMeta{}, err
	}
	var meta types.ColumnsMeta
	if err := json.Unmarshal(rec.Meta, &meta); err != nil {
		return types.ColumnsMeta{}, err
	}
	return meta, nil
}
