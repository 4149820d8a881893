package assemble

import (
	"maps"
	"strings"
)

// ReplaceRows swaps the rows of the draft for rows, in order. Rows without a
// name or element type are skipped. The rest go through AddField, so unknown
// and repeated names are refused, and on any error the draft is left as it
// was. Keys keep counting from the current counter.
func (d *CreateEditDraft) ReplaceRows(rows []CreateEditRow) error {
	next := &CreateEditDraft{cols: d.cols, counter: d.counter}
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" || strings.TrimSpace(row.ElementType) == "" {
			continue
		}
		key, err := next.AddField(row.Name)
		if err != nil {
			return err
		}
		if err := next.Update(key, func(dst *CreateEditRow) {
			dst.ElementType = row.ElementType
			dst.Required = row.Required
			dst.Attrs = row.Attrs
			dst.Options = row.Options
		}); err != nil {
			return err
		}
	}
	d.counter, d.rows = next.counter, next.rows
	return nil
}

// ReplaceSections swaps the sections of the draft for sections, in order.
// Rows without a name are skipped; empty labels and display types keep the
// prefilled ones. On any error the draft is left as it was.
func (d *ViewDraft) ReplaceSections(sections []ViewSection) error {
	next := &ViewDraft{
		cols:         d.cols,
		sectionCount: d.sectionCount,
		fieldCount:   maps.Clone(d.fieldCount),
	}
	for _, s := range sections {
		sk := next.AddSection(s.Title)
		for _, row := range s.Rows {
			if strings.TrimSpace(row.Name) == "" {
				continue
			}
			key, err := next.AddField(sk, row.Name)
			if err != nil {
				return err
			}
			if err := next.Update(sk, key, func(dst *ViewRow) {
				if row.Label != "" {
					dst.Label = row.Label
				}
				if row.DisplayType != "" {
					dst.DisplayType = row.DisplayType
				}
				dst.Attrs = row.Attrs
			}); err != nil {
				return err
			}
		}
	}
	d.sectionCount, d.fieldCount, d.sections = next.sectionCount, next.fieldCount, next.sections
	return nil
}
