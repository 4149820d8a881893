package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/event"
	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/validate"
)

// SaveListConfig accepts step 2.
func (s *BoardService) SaveListConfig(ctx context.Context, id int64, cfg types.ListViewConfig) (types.StepResponse, error) {
	_, cols, err := s.ColumnSet(ctx, id)
	if err != nil {
		return types.StepResponse{}, err
	}
	if err := checkListConfig(cfg, cols); err != nil {
		return types.StepResponse{}, err
	}
	if s.checker != nil {
		if err := s.checker.CheckListConfig(cfg); err != nil {
			return types.StepResponse{}, invalid("list_config: %v", err)
		}
	}
	if err := s.put(ctx, id, types.MetaList, cfg); err != nil {
		return types.StepResponse{}, err
	}
	names := make([]string, len(cfg.Columns))
	for i, c := range cfg.Columns {
		names[i] = c.Name
	}
	s.events.Publish(ctx, event.NewListConfigSaved(id, names))
	return types.StepResponse{Redirect: Step3Path(id)}, nil
}

// SaveCreateEdit accepts step 3.
func (s *BoardService) SaveCreateEdit(ctx context.Context, id int64, cfg types.CreateEditConfig) (types.StepResponse, error) {
	_, cols, err := s.ColumnSet(ctx, id)
	if err != nil {
		return types.StepResponse{}, err
	}
	if err := checkCreateEdit(cfg, cols); err != nil {
		return types.StepResponse{}, err
	}
	if s.checker != nil {
		if err := s.checker.CheckCreateEdit(cfg); err != nil {
			return types.StepResponse{}, invalid("create_edit: %v", err)
		}
	}
	if err := s.put(ctx, id, types.MetaCreateEdit, cfg); err != nil {
		return types.StepResponse{}, err
	}
	names := make([]string, len(cfg.Columns))
	for i, f := range cfg.Columns {
		names[i] = f.Name
	}
	s.events.Publish(ctx, event.NewCreateEditSaved(id, names))
	return types.StepResponse{Redirect: Step4Path(id)}, nil
}

// SaveView accepts step 4.
func (s *BoardService) SaveView(ctx context.Context, id int64, cfg types.ViewConfig) (types.StepResponse, error) {
	_, cols, err := s.ColumnSet(ctx, id)
	if err != nil {
		return types.StepResponse{}, err
	}
	if err := checkView(cfg, cols); err != nil {
		return types.StepResponse{}, err
	}
	if s.checker != nil {
		if err := s.checker.CheckView(cfg); err != nil {
			return types.StepResponse{}, invalid("view: %v", err)
		}
	}
	if err := s.put(ctx, id, types.MetaView, cfg); err != nil {
		return types.StepResponse{}, err
	}
	names := make([]string, len(cfg.Columns))
	for i, f := range cfg.Columns {
		names[i] = f.Name
	}
	s.events.Publish(ctx, event.NewViewSaved(id, names))
	return types.StepResponse{Redirect: BoardPath(id)}, nil
}

func (s *BoardService) put(ctx context.Context, id int64, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.store.PutMeta(ctx, id, name, raw); err != nil {
		return fmt.Errorf("storing %s for board %d: %w", name, id, err)
	}
	s.logger.Info("configuration stored", zap.Int64("board_id", id), zap.String("name", name))
	return nil
}

func checkListConfig(cfg types.ListViewConfig, cols *assemble.ColumnSet) error {
	if len(cfg.Columns) == 0 {
		return invalid("At least one display column is required")
	}
	for _, name := range cfg.ReferencedNames() {
		if _, ok := cols.Lookup(name); !ok {
			return invalid("Unknown column: %s", name)
		}
	}
	for _, s := range cfg.DefaultSort {
		if s.Order != "asc" && s.Order != "desc" {
			return invalid("Sort order must be asc or desc, got %q", s.Order)
		}
	}
	for _, n := range types.PageSizeOptions {
		if n == cfg.Pagination.PageSize {
			return nil
		}
	}
	return invalid("Page size %d is not one of %v", cfg.Pagination.PageSize, types.PageSizeOptions)
}

// checkOrder enforces a dense 1-based order.
func checkOrder(name string, got, want int) error {
	if got != want {
		return invalid("Field %s has order %d, want %d", name, got, want)
	}
	return nil
}

func checkCreateEdit(cfg types.CreateEditConfig, cols *assemble.ColumnSet) error {
	if len(cfg.Columns) == 0 {
		return invalid(validate.MsgFieldsEmpty)
	}
	seen := make(map[string]bool, len(cfg.Columns))
	for i, f := range cfg.Columns {
		c, ok := cols.Lookup(f.Name)
		if !ok {
			return invalid("Unknown column: %s", f.Name)
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return &ValidationError{Message: validate.DuplicateNamesMessage([]string{key})}
		}
		seen[key] = true
		if err := checkOrder(f.Name, f.Order, i+1); err != nil {
			return err
		}
		if !sameDataType(f.DataType, c.DataType) {
			return invalid("Field %s has data type %q, column is %q", f.Name, f.DataType, c.DataType)
		}
		info, ok := fieldtype.LookupElement(f.ElementType)
		if !ok {
			return invalid("Unknown element type %q for field %s", f.ElementType, f.Name)
		}
		if err := checkAttrs(f.Name, string(info.Value), info.Attrs, f.Attrs); err != nil {
			return err
		}
	}
	return nil
}

func checkView(cfg types.ViewConfig, cols *assemble.ColumnSet) error {
	if len(cfg.Columns) == 0 {
		return invalid(validate.MsgFieldsEmpty)
	}
	for i, f := range cfg.Columns {
		if _, ok := cols.Lookup(f.Name); !ok {
			return invalid("Unknown column: %s", f.Name)
		}
		if err := checkOrder(f.Name, f.Order, i+1); err != nil {
			return err
		}
		info, ok := fieldtype.LookupDisplay(f.DisplayType)
		if !ok {
			return invalid("Unknown display type %q for field %s", f.DisplayType, f.Name)
		}
		if err := checkAttrs(f.Name, string(info.Value), info.Attrs, f.Attrs); err != nil {
			return err
		}
	}
	return nil
}

func checkAttrs(field, kind string, specs []fieldtype.AttrSpec, attrs types.Attrs) error {
	for _, a := range attrs {
		spec, ok := fieldtype.FindAttr(specs, a.Key)
		if !ok {
			return invalid("Attribute %s is not allowed for %s on field %s", a.Key, kind, field)
		}
		if s, isString := a.Value.(string); isString && !spec.AllowsValue(s) {
			return invalid("Attribute %s of field %s must be one of %s", a.Key, field, strings.Join(spec.Enum, ", "))
		}
	}
	return nil
}

func sameDataType(a, b string) bool {
	ia, okA := fieldtype.LookupDataType(a)
	ib, okB := fieldtype.LookupDataType(b)
	if !okA || !okB {
		return strings.EqualFold(a, b)
	}
	return ia.SQLType == ib.SQLType && (ia.Value == ib.Value || ia.Alias || ib.Alias)
}

// Board returns one board.
func (s *BoardService) Board(ctx context.Context, id int64) (types.Board, error) {
	b, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return types.Board{}, notFound(err, MsgBoardNotFound)
	}
	return b, nil
}

// Boards lists every board.
func (s *BoardService) Boards(ctx context.Context) ([]types.Board, error) {
	return s.store.ListBoards(ctx)
}

// Columns returns the stored columns document.
func (s *BoardService) Columns(ctx context.Context, id int64) (types.ColumnsMeta, error) {
	meta, err := store.Columns(ctx, s.store, id)
	if err != nil {
		return types.ColumnsMeta{}, notFound(err, MsgColumnsNotFound)
	}
	return meta, nil
}

// Config returns one stored configuration document by name.
func (s *BoardService) Config(ctx context.Context, id int64, name string) (types.MetaRecord, error) {
	switch name {
	case types.MetaColumns, types.MetaList, types.MetaCreateEdit, types.MetaView:
	default:
		return types.MetaRecord{}, &NotFoundError{Message: MsgConfigNotFound}
	}
	if _, err := s.Board(ctx, id); err != nil {
		return types.MetaRecord{}, err
	}
	rec, err := s.store.GetMeta(ctx, id, name)
	if err != nil {
		return types.MetaRecord{}, notFound(err, MsgConfigNotFound)
	}
	return rec, nil
}

// Definition is everything stored for one board.
type Definition struct {
	Board      types.Board
	Columns    types.ColumnsMeta
	List       *types.ListViewConfig
	CreateEdit *types.CreateEditConfig
	View       *types.ViewConfig
	Meta       []types.MetaRecord
}

// Definition loads a board with all of its documents. Documents not yet
// stored are left nil.
func (s *BoardService) Definition(ctx context.Context, id int64) (*Definition, error) {
	board, err := s.Board(ctx, id)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.ListMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing meta for board %d: %w", id, err)
	}
	def := &Definition{Board: board, Meta: recs}
	for _, r := range recs {
		var dst any
		switch r.Name {
		case types.MetaColumns:
			dst = &def.Columns
		case types.MetaList:
			def.List = &types.ListViewConfig{}
			dst = def.List
		case types.MetaCreateEdit:
			def.CreateEdit = &types.CreateEditConfig{}
			dst = def.CreateEdit
		case types.MetaView:
			def.View = &types.ViewConfig{}
			dst = def.View
		default:
			continue
		}
		if err := json.Unmarshal(r.Meta, dst); err != nil {
			return nil, fmt.Errorf("decoding %s for board %d: %w", r.Name, id, err)
		}
	}
	return def, nil
}

// HTTPStatus maps a service error to a status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
