package wizard

import (
	"time"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/validate"
)

// Snapshot is the serializable state of a Wizard.
type Snapshot struct {
	ID           string                         `json:"session_id"`
	State        State                          `json:"state"`
	Resume       State                          `json:"resume,omitempty"`
	BoardID      int64                          `json:"board_id,omitempty"`
	Board        validate.BoardBasics           `json:"board"`
	Columns      []types.Column                 `json:"columns"`
	Completed    []State                        `json:"completed"`
	CreateEdit   *assemble.CreateEditDraftState `json:"create_edit,omitempty"`
	View         *assemble.ViewDraftState       `json:"view,omitempty"`
	CreatedAt    time.Time                      `json:"created_at"`
	LastActiveAt time.Time                      `json:"last_active_at"`
}

// Snapshot captures the wizard, drafts and counters included.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		ID:           w.id,
		State:        w.state,
		Resume:       w.resume,
		BoardID:      w.boardID,
		Board:        w.basics,
		Columns:      append([]types.Column{}, w.columns...),
		Completed:    []State{},
		CreatedAt:    w.createdAt,
		LastActiveAt: w.lastActiveAt,
	}
	for _, s := range Steps {
		if w.completed[s] {
			snap.Completed = append(snap.Completed, s)
		}
	}
	if w.createEdit != nil {
		st := w.createEdit.State()
		snap.CreateEdit = &st
	}
	if w.view != nil {
		st := w.view.State()
		snap.View = &st
	}
	return snap
}

// Restore rebuilds a wizard from a snapshot.
func Restore(snap Snapshot, sub Submitter) *Wizard {
	w := &Wizard{
		id:           snap.ID,
		state:        snap.State,
		resume:       snap.Resume,
		boardID:      snap.BoardID,
		basics:       snap.Board,
		columns:      append([]types.Column(nil), snap.Columns...),
		completed:    make(map[State]bool, len(snap.Completed)),
		submitter:    sub,
		createdAt:    snap.CreatedAt,
		lastActiveAt: snap.LastActiveAt,
	}
	for _, s := range snap.Completed {
		w.completed[s] = true
	}
	switch w.state {
	case StateCreateEdit:
		if snap.CreateEdit != nil {
			w.createEdit = assemble.RestoreCreateEditDraft(w.columnSet(), *snap.CreateEdit)
		} else {
			w.createEdit = assemble.NewCreateEditDraft(w.columnSet())
		}
	case StateDetailView:
		if snap.View != nil {
			w.view = assemble.RestoreViewDraft(w.columnSet(), *snap.View)
		} else {
			w.view = assemble.NewViewDraft(w.columnSet())
		}
	}
	return w
}
