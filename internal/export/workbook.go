// Package export writes a board definition as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/types"
)

// Sheet names, in workbook order.
const (
	SheetBoard      = "Board"
	SheetColumns    = "Columns"
	SheetList       = "List"
	SheetCreateEdit = "CreateEdit"
	SheetView       = "View"
)

var (
	columnsHeader    = []string{"Order", "Name", "Label", "Data Type", "Required", "Comment"}
	listHeader       = []string{"Name", "Label", "Width", "Align", "Sortable"}
	createEditHeader = []string{"Order", "Name", "Label", "Data Type", "Element Type", "Required", "Attributes"}
	viewHeader       = []string{"Order", "Section", "Name", "Label", "Display Type", "Width", "Inline Group", "Full Width", "Hide Label", "Attributes"}
)

// Workbook renders def into xlsx bytes. Documents not yet stored produce a
// sheet holding only the header row.
func Workbook(def *service.Definition) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	w := &sheetWriter{f: f, headerStyle: headerStyle}
	w.board(def)
	w.columns(def.Columns)
	w.list(def.List)
	w.createEdit(def.CreateEdit)
	w.view(def.View)
	if w.err != nil {
		return nil, w.err
	}

	// NewFile starts with Sheet1.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("deleting default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetBoard); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error and skips every later write.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) sheet(name string, header []string) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("creating sheet %s: %w", name, err)
		return
	}
	if header == nil {
		return
	}
	w.row(name, 1, toCells(header))
	if w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.f.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
		w.err = fmt.Errorf("styling header of %s: %w", name, err)
	}
}

func (w *sheetWriter) row(sheet string, n int, cells []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &cells); err != nil {
		w.err = fmt.Errorf("writing %s row %d: %w", sheet, n, err)
	}
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func (w *sheetWriter) board(def *service.Definition) {
	w.sheet(SheetBoard, nil)
	b := def.Board
	rows := [][]any{
		{"ID", b.ID},
		{"Name", b.Name},
		{"Physical Table Name", b.PhysicalTableName},
		{"Note", b.Note},
		{"File Attach", yesNo(b.IsFileAttach)},
		{"Created At", b.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Updated At", b.UpdatedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	for i, r := range rows {
		w.row(SheetBoard, i+1, r)
	}
	if w.err == nil {
		_ = w.f.SetColWidth(SheetBoard, "A", "A", 22)
		_ = w.f.SetColWidth(SheetBoard, "B", "B", 40)
	}
}

func (w *sheetWriter) columns(meta types.ColumnsMeta) {
	w.sheet(SheetColumns, columnsHeader)
	for i, c := range meta.Fields {
		w.row(SheetColumns, i+2, []any{c.Order, c.Name, c.Label, c.DataType, yesNo(c.Required), c.Comment})
	}
}

func (w *sheetWriter) list(cfg *types.ListViewConfig) {
	w.sheet(SheetList, listHeader)
	if cfg == nil {
		return
	}
	for i, c := range cfg.Columns {
		w.row(SheetList, i+2, []any{c.Name, c.Label, c.Width, c.Align, yesNo(c.Sortable)})
	}
}

func (w *sheetWriter) createEdit(cfg *types.CreateEditConfig) {
	w.sheet(SheetCreateEdit, createEditHeader)
	if cfg == nil {
		return
	}
	for i, f := range cfg.Columns {
		w.row(SheetCreateEdit, i+2, []any{
			f.Order, f.Name, f.Label, f.DataType, f.ElementType, yesNo(f.Required), attrText(f.Attrs),
		})
	}
}

func (w *sheetWriter) view(cfg *types.ViewConfig) {
	w.sheet(SheetView, viewHeader)
	if cfg == nil {
		return
	}
	for i, f := range cfg.Columns {
		w.row(SheetView, i+2, []any{
			f.Order, f.Section, f.Name, f.Label, f.DisplayType, f.Width, f.InlineGroup,
			yesNo(f.FullWidth), yesNo(f.HideLabel), attrText(f.Attrs),
		})
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// attrText flattens an attribute bag to "key=value" pairs separated by "; ".
func attrText(attrs types.Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		var v string
		switch val := a.Value.(type) {
		case []types.Option:
			opts := make([]string, len(val))
			for i, o := range val {
				opts[i] = o.Value + ":" + o.Label
			}
			v = strings.Join(opts, ",")
		default:
			v = fmt.Sprint(val)
		}
		parts = append(parts, a.Key+"="+v)
	}
	return strings.Join(parts, "; ")
}
