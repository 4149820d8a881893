package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/validate"
)

// Submitter hands accepted step documents to the persistence layer. One
// call is one request/response exchange; nothing is retried.
type Submitter interface {
	// CreateBoard returns the raw acceptance body of step 1.
	CreateBoard(ctx context.Context, req types.CreateBoardRequest) ([]byte, error)
	SaveListConfig(ctx context.Context, boardID int64, req types.ListConfigRequest) (types.StepResponse, error)
	SaveCreateEdit(ctx context.Context, boardID int64, req types.CreateEditRequest) (types.StepResponse, error)
	SaveView(ctx context.Context, boardID int64, req types.ViewRequest) (types.StepResponse, error)
}

// Wizard is one configuration session. It is safe for concurrent use;
// step submissions are serialized.
type Wizard struct {
	mu sync.Mutex

	id        string
	state     State
	resume    State
	boardID   int64
	basics    validate.BoardBasics
	columns   []types.Column
	completed map[State]bool

	createEdit *assemble.CreateEditDraft
	view       *assemble.ViewDraft

	submitter    Submitter
	createdAt    time.Time
	lastActiveAt time.Time
}

// New starts a wizard at the basics step.
func New(sub Submitter) *Wizard {
	now := time.Now()
	return &Wizard{
		id:           uuid.New().String(),
		state:        StateBasics,
		completed:    make(map[State]bool),
		submitter:    sub,
		createdAt:    now,
		lastActiveAt: now,
	}
}

// ID returns the session id.
func (w *Wizard) ID() string { return w.id }

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// BoardID returns the id assigned at step 1, or zero.
func (w *Wizard) BoardID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.boardID
}

// Columns returns the accepted board columns.
func (w *Wizard) Columns() []types.Column {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]types.Column(nil), w.columns...)
}

// Completed reports whether step has been accepted at least once.
func (w *Wizard) Completed(step State) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed[step]
}

// Touch updates the last activity timestamp.
func (w *Wizard) Touch() {
	w.mu.Lock()
	w.lastActiveAt = time.Now()
	w.mu.Unlock()
}

// IsIdle returns true if the session has been idle longer than timeout.
func (w *Wizard) IsIdle(timeout time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.lastActiveAt) > timeout
}

func (w *Wizard) columnSet() *assemble.ColumnSet {
	return assemble.NewColumnSet(w.columns, w.basics.IsFileAttach)
}

func (w *Wizard) expect(step State) error {
	if w.state != step {
		return fmt.Errorf("%w: at %s, not %s", ErrWrongStep, w.state, step)
	}
	return nil
}

// advance records step as accepted and moves on. A re-entered step goes
// back to where the operator was before reopening it.
func (w *Wizard) advance(step State) error {
	to := next(step)
	if err := validateTransition(step, to); err != nil {
		return err
	}
	w.completed[step] = true
	if w.resume != "" {
		to, w.resume = w.resume, ""
	}
	w.enter(to)
	return nil
}

// enter switches to step with fresh drafts.
func (w *Wizard) enter(step State) {
	w.state = step
	w.lastActiveAt = time.Now()
	switch step {
	case StateCreateEdit:
		w.createEdit = assemble.NewCreateEditDraft(w.columnSet())
		w.view = nil
	case StateDetailView:
		w.view = assemble.NewViewDraft(w.columnSet())
		w.createEdit = nil
	default:
		w.createEdit, w.view = nil, nil
	}
}

// SubmitBasics validates the board and its columns, submits them and, on
// acceptance, stores the assigned board id. After the first acceptance the
// request carries the board id so the persistence layer edits instead of
// creating.
func (w *Wizard) SubmitBasics(ctx context.Context, p validate.BoardParams) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateBasics); err != nil {
		return err
	}

	res := validate.BuildBoardData(p)
	if !res.Success {
		return &StepError{Step: StateBasics, Kind: KindValidation, Message: res.Error}
	}
	req := types.CreateBoardRequest{
		Name:              res.Data.Board.Name,
		PhysicalTableName: res.Data.Board.PhysicalTableName,
		Note:              res.Data.Board.Note,
		IsFileAttach:      res.Data.Board.IsFileAttach,
		Columns:           make([]types.ColumnRequest, len(res.Data.Columns.Fields)),
	}
	for i, c := range res.Data.Columns.Fields {
		req.Columns[i] = types.ColumnRequest{
			Name:     c.Name,
			Label:    c.Label,
			DataType: c.DataType,
			Comment:  c.Comment,
			Required: c.Required,
		}
	}
	if w.boardID != 0 {
		id := w.boardID
		req.BoardID = &id
		req.IsFileAttach = w.basics.IsFileAttach
		req.PhysicalTableName = w.basics.PhysicalTableName
	}

	body, err := w.submitter.CreateBoard(ctx, req)
	if err != nil {
		return submitError(StateBasics, err)
	}
	rr := validate.ValidateCreateBoardResponse(body)
	if !rr.Success {
		return &StepError{Step: StateBasics, Kind: KindResponse, Message: rr.Error}
	}

	w.boardID = rr.BoardID
	if w.completed[StateBasics] {
		res.Data.Board.PhysicalTableName = w.basics.PhysicalTableName
		res.Data.Board.IsFileAttach = w.basics.IsFileAttach
		w.columns = mergeColumns(w.columns, res.Data.Columns.Fields)
	} else {
		w.columns = res.Data.Columns.Fields
	}
	w.basics = res.Data.Board
	return w.advance(StateBasics)
}

// mergeColumns keeps stored columns as they are and appends new names.
func mergeColumns(stored, submitted []types.Column) []types.Column {
	out := append([]types.Column(nil), stored...)
	meta := types.ColumnsMeta{Fields: stored}
	for _, c := range submitted {
		if _, ok := meta.Find(c.Name); ok {
			continue
		}
		c.Order = len(out) + 1
		out = append(out, c)
	}
	return out
}

// SubmitListView assembles and submits the list view.
func (w *Wizard) SubmitListView(ctx context.Context, in assemble.ListViewInput) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateListView); err != nil {
		return err
	}
	cfg, err := assemble.ListView(in, w.columnSet())
	if err != nil {
		return validationError(StateListView, err)
	}
	resp, err := w.submitter.SaveListConfig(ctx, w.boardID, types.ListConfigRequest{ListConfig: cfg})
	if err := checkStepResponse(StateListView, resp, err); err != nil {
		return err
	}
	return w.advance(StateListView)
}

// CreateEditDraft returns the working create/edit form. It exists only
// while the wizard is at the create/edit step.
func (w *Wizard) CreateEditDraft() (*assemble.CreateEditDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateCreateEdit); err != nil {
		return nil, err
	}
	return w.createEdit, nil
}

// EditCreateEdit runs fn against the create/edit draft under the wizard
// lock.
func (w *Wizard) EditCreateEdit(fn func(d *assemble.CreateEditDraft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateCreateEdit); err != nil {
		return err
	}
	w.lastActiveAt = time.Now()
	return fn(w.createEdit)
}

// SubmitCreateEdit assembles the draft form and submits it.
func (w *Wizard) SubmitCreateEdit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateCreateEdit); err != nil {
		return err
	}
	cfg, err := w.createEdit.Assemble()
	if err != nil {
		return validationError(StateCreateEdit, err)
	}
	resp, err := w.submitter.SaveCreateEdit(ctx, w.boardID, types.CreateEditRequest{CreateEdit: cfg})
	if err := checkStepResponse(StateCreateEdit, resp, err); err != nil {
		return err
	}
	return w.advance(StateCreateEdit)
}

// ViewDraft returns the working detail view. It exists only while the
// wizard is at the detail view step.
func (w *Wizard) ViewDraft() (*assemble.ViewDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateDetailView); err != nil {
		return nil, err
	}
	return w.view, nil
}

// EditView runs fn against the detail view draft under the wizard lock.
func (w *Wizard) EditView(fn func(d *assemble.ViewDraft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateDetailView); err != nil {
		return err
	}
	w.lastActiveAt = time.Now()
	return fn(w.view)
}

// SubmitDetailView assembles the draft detail view and submits it.
func (w *Wizard) SubmitDetailView(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateDetailView); err != nil {
		return err
	}
	cfg, err := w.view.Assemble()
	if err != nil {
		return validationError(StateDetailView, err)
	}
	resp, err := w.submitter.SaveView(ctx, w.boardID, types.ViewRequest{View: cfg})
	if err := checkStepResponse(StateDetailView, resp, err); err != nil {
		return err
	}
	return w.advance(StateDetailView)
}

func checkStepResponse(step State, resp types.StepResponse, err error) error {
	if err != nil {
		return submitError(step, err)
	}
	if resp.Detail != "" {
		return &StepError{Step: step, Kind: KindResponse, Message: resp.Detail}
	}
	if resp.Redirect == "" {
		return &StepError{Step: step, Kind: KindResponse, Message: validate.MsgInvalidResponse}
	}
	return nil
}

// Reopen re-enters a completed step with a fresh draft. Once the step is
// accepted again the wizard returns to the step it was at.
func (w *Wizard) Reopen(step State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.completed[step] {
		return fmt.Errorf("%w: %s", ErrStepNotCompleted, step)
	}
	if w.resume == "" {
		w.resume = w.state
	}
	if w.resume == step {
		w.resume = ""
	}
	w.enter(step)
	return nil
}

// IsStepError reports whether err ended a step attempt.
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
