package assemble

// KeyedCreateEditRow is a create/edit row with its draft key.
type KeyedCreateEditRow struct {
	Key int `json:"key"`
	CreateEditRow
}

// CreateEditDraftState is the serializable form of a CreateEditDraft.
type CreateEditDraftState struct {
	Counter int                  `json:"counter"`
	Rows    []KeyedCreateEditRow `json:"rows"`
}

// State captures the draft, counter included.
func (d *CreateEditDraft) State() CreateEditDraftState {
	st := CreateEditDraftState{Counter: d.counter, Rows: make([]KeyedCreateEditRow, len(d.rows))}
	for i, r := range d.rows {
		st.Rows[i] = KeyedCreateEditRow{Key: r.key, CreateEditRow: r.row.clone()}
	}
	return st
}

// RestoreCreateEditDraft rebuilds a draft captured by State. The counter
// never drops below the largest row key.
func RestoreCreateEditDraft(cols *ColumnSet, st CreateEditDraftState) *CreateEditDraft {
	d := &CreateEditDraft{cols: cols, counter: st.Counter}
	for _, r := range st.Rows {
		d.rows = append(d.rows, draftRow{key: r.Key, row: r.CreateEditRow.clone()})
		if r.Key > d.counter {
			d.counter = r.Key
		}
	}
	return d
}

// KeyedViewRow is a detail view row with its draft key.
type KeyedViewRow struct {
	Key int `json:"key"`
	ViewRow
}

// ViewSectionState is one serialized ViewDraft section.
type ViewSectionState struct {
	Key     int            `json:"key"`
	Title   string         `json:"title"`
	Counter int            `json:"counter"`
	Rows    []KeyedViewRow `json:"rows"`
}

// ViewDraftState is the serializable form of a ViewDraft.
type ViewDraftState struct {
	Counter  int                `json:"counter"`
	Sections []ViewSectionState `json:"sections"`
}

// State captures the draft with its section and field counters.
func (d *ViewDraft) State() ViewDraftState {
	st := ViewDraftState{Counter: d.sectionCount, Sections: make([]ViewSectionState, len(d.sections))}
	for i, s := range d.sections {
		sec := ViewSectionState{Key: s.key, Title: s.title, Counter: d.fieldCount[s.key], Rows: make([]KeyedViewRow, len(s.rows))}
		for j, r := range s.rows {
			sec.Rows[j] = KeyedViewRow{Key: r.key, ViewRow: r.row.clone()}
		}
		st.Sections[i] = sec
	}
	return st
}

// RestoreViewDraft rebuilds a draft captured by State.
func RestoreViewDraft(cols *ColumnSet, st ViewDraftState) *ViewDraft {
	d := &ViewDraft{cols: cols, sectionCount: st.Counter, fieldCount: make(map[int]int, len(st.Sections))}
	for _, s := range st.Sections {
		sec := &draftSection{key: s.Key, title: s.Title}
		count := s.Counter
		for _, r := range s.Rows {
			sec.rows = append(sec.rows, draftViewRow{key: r.Key, row: r.ViewRow.clone()})
			if r.Key > count {
				count = r.Key
			}
		}
		d.fieldCount[s.Key] = count
		d.sections = append(d.sections, sec)
		if s.Key > d.sectionCount {
			d.sectionCount = s.Key
		}
	}
	return d
}
