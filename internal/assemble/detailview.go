package assemble

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/types"
)

// ViewRow is one raw detail view row. Attrs is a flat bag holding both the
// common layout keys (width, inline_group, full_width, hide_label,
// style_class) and the keys of the chosen display type.
type ViewRow struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	DisplayType string            `json:"display_type" yaml:"display_type"`
	Attrs       map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

func (r ViewRow) clone() ViewRow {
	if r.Attrs != nil {
		attrs := make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			attrs[k] = v
		}
		r.Attrs = attrs
	}
	return r
}

// ViewSection groups rows under an optional title.
type ViewSection struct {
	Title string    `json:"title" yaml:"title"`
	Rows  []ViewRow `json:"rows" yaml:"rows"`
}

// DetailView assembles the detail view document. Order runs 1..N across
// all sections. Rows without a name are skipped.
func DetailView(sections []ViewSection, cols *ColumnSet) (types.ViewConfig, error) {
	doc := types.ViewConfig{Columns: []types.ViewField{}}
	for _, sec := range sections {
		title := strings.TrimSpace(sec.Title)
		for _, r := range sec.Rows {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			c, ok := cols.Lookup(name)
			if !ok {
				return types.ViewConfig{}, unknownColumn(name)
			}
			doc.Columns = append(doc.Columns, viewField(r, c, title, len(doc.Columns)+1))
		}
	}
	if len(doc.Columns) == 0 {
		return types.ViewConfig{}, ErrNoFields
	}
	return doc, nil
}

func viewField(r ViewRow, c types.Column, section string, order int) types.ViewField {
	dt := fieldtype.ParseDisplayType(r.DisplayType)
	label := strings.TrimSpace(r.Label)
	if label == "" {
		label = c.Label
	}
	if label == "" {
		label = c.Name
	}
	f := types.ViewField{
		Name:        c.Name,
		Label:       label,
		DisplayType: string(dt),
		Order:       order,
		Section:     section,
		Attrs:       extractAttrs(fieldtype.DisplayAttrs(dt), r.Attrs, nil),
	}
	for _, a := range extractAttrs(fieldtype.CommonViewAttrs, r.Attrs, nil) {
		switch a.Key {
		case "width":
			f.Width = a.Value.(string)
		case "inline_group":
			f.InlineGroup = a.Value.(string)
		case "full_width":
			f.FullWidth = true
		case "hide_label":
			f.HideLabel = true
		case "style_class":
			f.StyleClass = a.Value.(string)
		}
	}
	return f
}

// recommendedDisplay picks the display type offered for a column.
func recommendedDisplay(c types.Column) fieldtype.DisplayType {
	if c.Name == types.AttachmentColumn {
		return fieldtype.DisplayFileLink
	}
	return fieldtype.RecommendedDisplay(c.DataType)
}

type draftViewRow struct {
	key int
	row ViewRow
}

type draftSection struct {
	key   int
	title string
	rows  []draftViewRow
}

// ViewDraft is the working detail view of one wizard session. Section keys
// come from one counter, field keys from a counter per section.
type ViewDraft struct {
	cols         *ColumnSet
	sectionCount int
	fieldCount   map[int]int
	sections     []*draftSection
}

// NewViewDraft starts an empty detail view over cols.
func NewViewDraft(cols *ColumnSet) *ViewDraft {
	return &ViewDraft{cols: cols, fieldCount: make(map[int]int)}
}

// AddSection appends a section and returns its key.
func (d *ViewDraft) AddSection(title string) int {
	d.sectionCount++
	d.fieldCount[d.sectionCount] = 0
	d.sections = append(d.sections, &draftSection{key: d.sectionCount, title: title})
	return d.sectionCount
}

func (d *ViewDraft) section(key int) (*draftSection, error) {
	for _, s := range d.sections {
		if s.key == key {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownSection, key)
}

// RenameSection changes a section title.
func (d *ViewDraft) RenameSection(key int, title string) error {
	s, err := d.section(key)
	if err != nil {
		return err
	}
	s.title = title
	return nil
}

// RemoveSection drops a section with all its rows.
func (d *ViewDraft) RemoveSection(key int) error {
	for i, s := range d.sections {
		if s.key == key {
			d.sections = append(d.sections[:i], d.sections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownSection, key)
}

// AddField appends a row for the named column to a section, prefilled with
// the column label and the recommended display type.
func (d *ViewDraft) AddField(section int, name string) (int, error) {
	s, err := d.section(section)
	if err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrNoSelection
	}
	c, ok := d.cols.Lookup(name)
	if !ok {
		return 0, unknownColumn(name)
	}
	d.fieldCount[section]++
	key := d.fieldCount[section]
	s.rows = append(s.rows, draftViewRow{
		key: key,
		row: ViewRow{Name: c.Name, Label: c.Label, DisplayType: string(recommendedDisplay(c))},
	})
	return key, nil
}

// Update edits a row in place. The row's column cannot be changed.
func (d *ViewDraft) Update(section, key int, fn func(*ViewRow)) error {
	s, err := d.section(section)
	if err != nil {
		return err
	}
	for i := range s.rows {
		if s.rows[i].key == key {
			name := s.rows[i].row.Name
			fn(&s.rows[i].row)
			s.rows[i].row.Name = name
			return nil
		}
	}
	return fmt.Errorf("%w: %d/%d", ErrUnknownRow, section, key)
}

// RemoveField drops a row from a section.
func (d *ViewDraft) RemoveField(section, key int) error {
	s, err := d.section(section)
	if err != nil {
		return err
	}
	for i := range s.rows {
		if s.rows[i].key == key {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d/%d", ErrUnknownRow, section, key)
}

// PopulateFromColumns fills the first section (creating it when needed)
// with every column.
func (d *ViewDraft) PopulateFromColumns() {
	if len(d.sections) == 0 {
		d.AddSection("")
	}
	key := d.sections[0].key
	for _, c := range d.cols.Columns() {
		_, _ = d.AddField(key, c.Name)
	}
}

// SectionKeys returns section keys in presentation order.
func (d *ViewDraft) SectionKeys() []int {
	keys := make([]int, len(d.sections))
	for i, s := range d.sections {
		keys[i] = s.key
	}
	return keys
}

// Sections returns copies of the sections in presentation order.
func (d *ViewDraft) Sections() []ViewSection {
	out := make([]ViewSection, len(d.sections))
	for i, s := range d.sections {
		rows := make([]ViewRow, len(s.rows))
		for j, r := range s.rows {
			rows[j] = r.row.clone()
		}
		out[i] = ViewSection{Title: s.title, Rows: rows}
	}
	return out
}

// Counters returns the section counter and the per-section field counters.
func (d *ViewDraft) Counters() (int, map[int]int) {
	fields := make(map[int]int, len(d.fieldCount))
	for k, v := range d.fieldCount {
		fields[k] = v
	}
	return d.sectionCount, fields
}

// Assemble builds the document from the current sections.
func (d *ViewDraft) Assemble() (types.ViewConfig, error) {
	return DetailView(d.Sections(), d.cols)
}
