package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/event"
	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/validate"
)

// Redirect targets handed back after each accepted step.
func Step2Path(id int64) string { return fmt.Sprintf("/boards/new/step2/%d", id) }
func Step3Path(id int64) string { return fmt.Sprintf("/boards/new/step3/%d", id) }
func Step4Path(id int64) string { return fmt.Sprintf("/boards/new/step4/%d", id) }
func BoardPath(id int64) string { return fmt.Sprintf("/boards/%d", id) }

// BoardService accepts the wizard steps of every board.
type BoardService struct {
	store   store.Store
	checker *schema.Checker
	events  event.Publisher
	logger  *zap.Logger
}

// New creates a BoardService. A nil publisher drops events and a nil
// logger discards log output.
func New(st store.Store, checker *schema.Checker, events event.Publisher, logger *zap.Logger) *BoardService {
	if events == nil {
		events = event.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardService{store: st, checker: checker, events: events, logger: logger.Named("service")}
}

// CreateOrUpdateBoard accepts step 1. A request carrying a board id edits
// that board; otherwise a new board and its physical table are created.
func (s *BoardService) CreateOrUpdateBoard(ctx context.Context, req types.CreateBoardRequest) (types.CreateBoardResponse, error) {
	if req.BoardID != nil {
		return s.updateBoard(ctx, *req.BoardID, req)
	}
	return s.createBoard(ctx, req)
}

// fieldsOf converts request columns, naming the unnamed ones. A nil
// request slice stays nil.
func fieldsOf(cols []types.ColumnRequest, namer *columnNamer) []validate.Field {
	if cols == nil {
		return nil
	}
	for _, c := range cols {
		namer.reserve(strings.TrimSpace(c.Name))
	}
	fields := make([]validate.Field, len(cols))
	for i, c := range cols {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = namer.name()
		}
		fields[i] = validate.Field{
			Label:    c.Label,
			Name:     name,
			DataType: c.DataType,
			Comment:  c.Comment,
			Required: c.Required,
		}
	}
	return fields
}

// checkColumn enforces identifier rules and canonicalizes the data type.
func checkColumn(c *types.Column) error {
	if err := checkColumnName(c.Name); err != nil {
		return err
	}
	info, ok := fieldtype.LookupDataType(c.DataType)
	if !ok {
		return invalid("Unknown data type %q for column %s", c.DataType, c.Name)
	}
	c.DataType = string(info.Value)
	return nil
}

func columnNames(cols []types.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func (s *BoardService) createBoard(ctx context.Context, req types.CreateBoardRequest) (types.CreateBoardResponse, error) {
	table := strings.TrimSpace(req.PhysicalTableName)
	if table == "" {
		table = generateTableName()
	}
	res := validate.BuildBoardData(validate.BoardParams{
		BoardName:    req.Name,
		TableName:    table,
		Note:         req.Note,
		IsFileAttach: req.IsFileAttach,
		Fields:       fieldsOf(req.Columns, newColumnNamer()),
	})
	if !res.Success {
		return types.CreateBoardResponse{}, &ValidationError{Message: res.Error}
	}
	basics, cols := res.Data.Board, res.Data.Columns.Fields

	if err := checkTableName(basics.PhysicalTableName); err != nil {
		return types.CreateBoardResponse{}, err
	}
	for i := range cols {
		if err := checkColumn(&cols[i]); err != nil {
			return types.CreateBoardResponse{}, err
		}
	}
	if _, err := s.store.BoardByTable(ctx, basics.PhysicalTableName); err == nil {
		return types.CreateBoardResponse{}, invalid("Table name %q is already in use", basics.PhysicalTableName)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.CreateBoardResponse{}, err
	}

	board := types.Board{
		Name:              basics.Name,
		PhysicalTableName: basics.PhysicalTableName,
		Note:              basics.Note,
		IsFileAttach:      basics.IsFileAttach,
	}
	id, err := s.store.CreateBoard(ctx, board, cols)
	if errors.Is(err, store.ErrTableTaken) {
		return types.CreateBoardResponse{}, invalid("Table name %q is already in use", basics.PhysicalTableName)
	}
	if err != nil {
		return types.CreateBoardResponse{}, fmt.Errorf("creating board: %w", err)
	}

	s.logger.Info("board created",
		zap.Int64("board_id", id), zap.String("table", board.PhysicalTableName), zap.Int("columns", len(cols)))
	s.events.Publish(ctx, event.NewBoardCreated(id, event.BoardPayload{
		Name:              board.Name,
		PhysicalTableName: board.PhysicalTableName,
		Columns:           columnNames(cols),
	}))
	return types.CreateBoardResponse{Message: "success", BoardID: id, Redirect: Step2Path(id)}, nil
}

// updateBoard edits name and note. Existing columns are kept as stored;
// request columns with a new name are appended.
func (s *BoardService) updateBoard(ctx context.Context, id int64, req types.CreateBoardRequest) (types.CreateBoardResponse, error) {
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return types.CreateBoardResponse{}, notFound(err, MsgBoardNotFound)
	}
	existing, err := store.Columns(ctx, s.store, id)
	if err != nil {
		return types.CreateBoardResponse{}, notFound(err, MsgColumnsNotFound)
	}

	namer := newColumnNamer()
	for _, c := range existing.Fields {
		namer.reserve(c.Name)
	}
	res := validate.BuildBoardData(validate.BoardParams{
		BoardName:    req.Name,
		TableName:    board.PhysicalTableName,
		Note:         req.Note,
		IsFileAttach: board.IsFileAttach,
		Fields:       fieldsOf(req.Columns, namer),
	})
	if !res.Success {
		return types.CreateBoardResponse{}, &ValidationError{Message: res.Error}
	}

	merged := append([]types.Column(nil), existing.Fields...)
	var added []types.Column
	for _, c := range res.Data.Columns.Fields {
		if _, ok := existing.Find(c.Name); ok {
			continue
		}
		if err := checkColumn(&c); err != nil {
			return types.CreateBoardResponse{}, err
		}
		c.Order = len(merged) + 1
		merged = append(merged, c)
		added = append(added, c)
	}

	board.Name = res.Data.Board.Name
	board.Note = res.Data.Board.Note
	if err := s.store.UpdateBoard(ctx, board, merged, added); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.CreateBoardResponse{}, notFound(err, MsgBoardNotFound)
		}
		return types.CreateBoardResponse{}, fmt.Errorf("updating board %d: %w", id, err)
	}

	s.logger.Info("board updated", zap.Int64("board_id", id), zap.Int("added_columns", len(added)))
	s.events.Publish(ctx, event.NewBoardUpdated(id, event.BoardPayload{
		Name:              board.Name,
		PhysicalTableName: board.PhysicalTableName,
		Columns:           columnNames(merged),
		AddedColumns:      columnNames(added),
	}))
	return types.CreateBoardResponse{Message: "success", BoardID: id, Redirect: Step2Path(id)}, nil
}

// ColumnSet loads the board and the column set its documents are checked
// against.
func (s *BoardService) ColumnSet(ctx context.Context, id int64) (types.Board, *assemble.ColumnSet, error) {
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return types.Board{}, nil, notFound(err, MsgBoardNotFound)
	}
	meta, err := store.Columns(ctx, s.store, id)
	if err != nil {
		return types.Board{}, nil, notFound(err, MsgColumnsNotFound)
	}
	return board, assemble.NewColumnSet(meta.Fields, board.IsFileAttach), nil
}
