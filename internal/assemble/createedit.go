package assemble

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/types"
)

// CreateEditRow is one raw create/edit form row. Attrs holds the raw text
// of default_value, min_value and max_value; for a checkbox element,
// default_value holds the "true"/"false" choice.
type CreateEditRow struct {
	Name        string            `json:"name" yaml:"name"`
	ElementType string            `json:"element_type" yaml:"element_type"`
	Required    bool              `json:"required" yaml:"required"`
	Attrs       map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Options     []OptionRow       `json:"options,omitempty" yaml:"options,omitempty"`
}

func (r CreateEditRow) clone() CreateEditRow {
	if r.Attrs != nil {
		attrs := make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			attrs[k] = v
		}
		r.Attrs = attrs
	}
	r.Options = append([]OptionRow(nil), r.Options...)
	return r
}

// CreateEdit assembles the create/edit document from rows in presentation
// order. Rows without a name or element type are skipped.
func CreateEdit(rows []CreateEditRow, cols *ColumnSet) (types.CreateEditConfig, error) {
	doc := types.CreateEditConfig{Columns: []types.CreateEditField{}}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" || strings.TrimSpace(r.ElementType) == "" {
			continue
		}
		c, ok := cols.Lookup(name)
		if !ok {
			return types.CreateEditConfig{}, unknownColumn(name)
		}
		if seen[c.Name] {
			return types.CreateEditConfig{}, fmt.Errorf("%w: %s", ErrAlreadyAdded, c.Name)
		}
		seen[c.Name] = true

		et := fieldtype.ParseElementType(r.ElementType)
		doc.Columns = append(doc.Columns, types.CreateEditField{
			Name:        c.Name,
			Label:       c.Label,
			DataType:    c.DataType,
			ElementType: string(et),
			Required:    r.Required,
			Order:       len(doc.Columns) + 1,
			Attrs:       extractAttrs(fieldtype.ElementAttrs(et), r.Attrs, r.Options),
		})
	}
	if len(doc.Columns) == 0 {
		return types.CreateEditConfig{}, ErrNoFields
	}
	return doc, nil
}

type draftRow struct {
	key int
	row CreateEditRow
}

// CreateEditDraft is the working create/edit form of one wizard session.
// Row keys come from a counter that only grows.
type CreateEditDraft struct {
	cols    *ColumnSet
	counter int
	rows    []draftRow
}

// NewCreateEditDraft starts an empty form over cols.
func NewCreateEditDraft(cols *ColumnSet) *CreateEditDraft {
	return &CreateEditDraft{cols: cols}
}

// AddField appends a row for the named column with the recommended element
// type and the column's required flag, and returns the row key.
func (d *CreateEditDraft) AddField(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrNoSelection
	}
	c, ok := d.cols.Lookup(name)
	if !ok {
		return 0, unknownColumn(name)
	}
	if d.has(c.Name) {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyAdded, c.Name)
	}
	d.counter++
	d.rows = append(d.rows, draftRow{
		key: d.counter,
		row: CreateEditRow{
			Name:        c.Name,
			ElementType: string(fieldtype.RecommendedElement(c.DataType)),
			Required:    c.Required,
		},
	})
	return d.counter, nil
}

// PopulateFromColumns adds every column not yet on the form.
func (d *CreateEditDraft) PopulateFromColumns() {
	for _, c := range d.Available() {
		_, _ = d.AddField(c.Name)
	}
}

func (d *CreateEditDraft) has(name string) bool {
	for _, r := range d.rows {
		if strings.EqualFold(r.row.Name, name) {
			return true
		}
	}
	return false
}

func (d *CreateEditDraft) index(key int) int {
	for i, r := range d.rows {
		if r.key == key {
			return i
		}
	}
	return -1
}

// Update edits a row in place. The row's column cannot be changed.
func (d *CreateEditDraft) Update(key int, fn func(*CreateEditRow)) error {
	i := d.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, key)
	}
	name := d.rows[i].row.Name
	fn(&d.rows[i].row)
	d.rows[i].row.Name = name
	return nil
}

// MoveUp swaps a row with its predecessor; the first row stays put.
func (d *CreateEditDraft) MoveUp(key int) error {
	i := d.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, key)
	}
	if i > 0 {
		d.rows[i-1], d.rows[i] = d.rows[i], d.rows[i-1]
	}
	return nil
}

// MoveDown swaps a row with its successor; the last row stays put.
func (d *CreateEditDraft) MoveDown(key int) error {
	i := d.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, key)
	}
	if i < len(d.rows)-1 {
		d.rows[i+1], d.rows[i] = d.rows[i], d.rows[i+1]
	}
	return nil
}

// Remove drops a row. Its column becomes available again.
func (d *CreateEditDraft) Remove(key int) error {
	i := d.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, key)
	}
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	return nil
}

// Available returns the columns that can still be added.
func (d *CreateEditDraft) Available() []types.Column {
	var out []types.Column
	for _, c := range d.cols.Columns() {
		if !d.has(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// Keys returns the row keys in presentation order.
func (d *CreateEditDraft) Keys() []int {
	keys := make([]int, len(d.rows))
	for i, r := range d.rows {
		keys[i] = r.key
	}
	return keys
}

// Rows returns copies of the rows in presentation order.
func (d *CreateEditDraft) Rows() []CreateEditRow {
	rows := make([]CreateEditRow, len(d.rows))
	for i, r := range d.rows {
		rows[i] = r.row.clone()
	}
	return rows
}

// Counter returns the last row key handed out.
func (d *CreateEditDraft) Counter() int { return d.counter }

// Assemble builds the document from the current rows.
func (d *CreateEditDraft) Assemble() (types.CreateEditConfig, error) {
	return CreateEdit(d.Rows(), d.cols)
}
