// Package records serves the rows of a finished board. Listing follows the
// board's list configuration and writes are checked against its create/edit
// form.
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/event"
	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

// User-facing messages.
const (
	MsgRecordNotFound = "Record not found"
	MsgFormNotFound   = "Create/edit form not configured"
)

// Columns every record table carries besides the board's own.
var systemColumns = []string{"id", "created_at", "updated_at"}

// Boards loads board definitions. *service.BoardService implements it.
type Boards interface {
	Definition(ctx context.Context, id int64) (*service.Definition, error)
}

// Service reads and writes board records.
type Service struct {
	boards Boards
	rows   store.RecordStore
	files  store.FileStore
	events event.Publisher
	logger *zap.Logger
}

// New creates a Service. A nil files store skips the attachment id check;
// a nil publisher drops events.
func New(boards Boards, rows store.RecordStore, files store.FileStore, events event.Publisher, logger *zap.Logger) *Service {
	if events == nil {
		events = event.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{boards: boards, rows: rows, files: files, events: events, logger: logger.Named("records")}
}

// ListParams are the query parameters of a list request. Zero values take
// the list configuration's defaults.
type ListParams struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
	Search   string
}

// List returns one page of records.
func (s *Service) List(ctx context.Context, boardID int64, p ListParams) (types.RecordPage, error) {
	def, err := s.boards.Definition(ctx, boardID)
	if err != nil {
		return types.RecordPage{}, err
	}
	cfg := defaultListConfig()
	if def.List != nil {
		cfg = *def.List
	}

	page := types.RecordPage{BoardID: boardID, BoardName: def.Board.Name, Page: max(p.Page, 1), Search: p.Search}
	var q types.RecordQuery

	if cfg.Pagination.Enabled {
		size, err := pageSize(cfg.Pagination, p.PageSize)
		if err != nil {
			return types.RecordPage{}, err
		}
		page.PageSize = size
		q.Limit, q.Offset = size, (page.Page-1)*size
	} else {
		page.Page = 1
	}

	if q.Sort, err = sortSpecs(cfg, p.Sort, p.Order); err != nil {
		return types.RecordPage{}, err
	}
	page.Sort = types.SortSpec{Column: "id", Order: "desc"}
	if len(q.Sort) > 0 {
		page.Sort = q.Sort[0]
	}

	if p.Search != "" {
		if !cfg.Search.Enabled {
			return types.RecordPage{}, &service.ValidationError{Message: "Search is disabled on this board"}
		}
		q.Search = p.Search
		q.SearchColumns = searchColumns(cfg, def.Columns.Fields)
	}

	recs, total, err := s.rows.ListRecords(ctx, def.Board.PhysicalTableName, q)
	if err != nil {
		return types.RecordPage{}, fmt.Errorf("listing records of board %d: %w", boardID, err)
	}
	page.Records, page.Total = recs, total
	if !cfg.Pagination.Enabled {
		page.PageSize = total
	}
	return page, nil
}

func defaultListConfig() types.ListViewConfig {
	return types.ListViewConfig{
		Pagination: types.Pagination{Enabled: true, PageSize: types.DefaultPageSize},
	}
}

// pageSize picks the requested size when the configuration offers it.
func pageSize(cfg types.Pagination, requested int) (int, error) {
	size := cfg.PageSize
	if size <= 0 {
		size = types.DefaultPageSize
	}
	if requested <= 0 || requested == size {
		return size, nil
	}
	options := cfg.PageSizeOptions
	if len(options) == 0 {
		options = types.PageSizeOptions
	}
	if !slices.Contains(options, requested) {
		return 0, &service.ValidationError{Message: fmt.Sprintf("page_size must be one of %s", joinInts(options))}
	}
	return requested, nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// sortSpecs resolves the requested order. An empty column falls back to
// the configured default sort. Only sortable list columns and the system
// columns may be requested.
func sortSpecs(cfg types.ListViewConfig, column, order string) ([]types.SortSpec, error) {
	if column == "" {
		return cfg.DefaultSort, nil
	}
	order = strings.ToLower(order)
	switch order {
	case "":
		order = "asc"
	case "asc", "desc":
	default:
		return nil, &service.ValidationError{Message: fmt.Sprintf("order must be asc or desc, got %q", order)}
	}
	ok := slices.Contains(systemColumns, column)
	for _, c := range cfg.Columns {
		if c.Name == column && c.Sortable {
			ok = true
		}
	}
	if !ok {
		return nil, &service.ValidationError{Message: fmt.Sprintf("Column %q is not sortable", column)}
	}
	return []types.SortSpec{{Column: column, Order: order}}, nil
}

// searchColumns returns the configured search fields, or the list columns
// when none are set, keeping text columns only.
func searchColumns(cfg types.ListViewConfig, cols []types.Column) []string {
	names := cfg.Search.SimpleFields
	if len(names) == 0 {
		for _, c := range cfg.Columns {
			names = append(names, c.Name)
		}
	}
	dataTypes := make(map[string]string, len(cols)+1)
	for _, c := range cols {
		dataTypes[c.Name] = c.DataType
	}
	dataTypes[types.AttachmentColumn] = string(fieldtype.DataString)

	var out []string
	for _, n := range names {
		if dt, ok := dataTypes[n]; ok && fieldtype.SQLType(dt) == "TEXT" {
			out = append(out, n)
		}
	}
	return out
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, boardID, id int64) (types.Record, error) {
	def, err := s.boards.Definition(ctx, boardID)
	if err != nil {
		return nil, err
	}
	rec, err := s.rows.GetRecord(ctx, def.Board.PhysicalTableName, id)
	if err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// Create checks values against the create/edit form and inserts a record.
func (s *Service) Create(ctx context.Context, boardID int64, values map[string]any) (int64, error) {
	def, form, err := s.form(ctx, boardID)
	if err != nil {
		return 0, err
	}
	row, err := s.bind(ctx, form, values, false)
	if err != nil {
		return 0, err
	}
	id, err := s.rows.InsertRecord(ctx, def.Board.PhysicalTableName, row)
	if err != nil {
		return 0, fmt.Errorf("creating record on board %d: %w", boardID, err)
	}
	s.logger.Info("record created", zap.Int64("board_id", boardID), zap.Int64("record_id", id))
	s.events.Publish(ctx, event.NewRecordCreated(boardID, id, sortedNames(row)))
	return id, nil
}

// Update checks the given values against the create/edit form and writes
// them. Fields left out keep their stored value.
func (s *Service) Update(ctx context.Context, boardID, id int64, values map[string]any) error {
	def, form, err := s.form(ctx, boardID)
	if err != nil {
		return err
	}
	row, err := s.bind(ctx, form, values, true)
	if err != nil {
		return err
	}
	table := def.Board.PhysicalTableName
	if len(row) == 0 {
		_, err := s.rows.GetRecord(ctx, table, id)
		return notFound(err)
	}
	if err := s.rows.UpdateRecord(ctx, table, id, row); err != nil {
		return notFound(err)
	}
	s.logger.Info("record updated", zap.Int64("board_id", boardID), zap.Int64("record_id", id))
	s.events.Publish(ctx, event.NewRecordUpdated(boardID, id, sortedNames(row)))
	return nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, boardID, id int64) error {
	def, err := s.boards.Definition(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.rows.DeleteRecord(ctx, def.Board.PhysicalTableName, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("record deleted", zap.Int64("board_id", boardID), zap.Int64("record_id", id))
	s.events.Publish(ctx, event.NewRecordDeleted(boardID, id))
	return nil
}

func (s *Service) form(ctx context.Context, boardID int64) (*service.Definition, []types.CreateEditField, error) {
	def, err := s.boards.Definition(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	if def.CreateEdit == nil || len(def.CreateEdit.Columns) == 0 {
		return nil, nil, &service.NotFoundError{Message: MsgFormNotFound}
	}
	return def, def.CreateEdit.Columns, nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &service.NotFoundError{Message: MsgRecordNotFound}
	}
	return err
}

func sortedNames(row types.Record) []string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
