package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/validate"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

const msgSessionNotFound = "Wizard session not found"

// WizardHandler exposes server-side wizard sessions.
type WizardHandler struct {
	mgr    *wizard.Manager
	logger *zap.Logger
}

func NewWizardHandler(mgr *wizard.Manager, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{mgr: mgr, logger: logger.Named("wizard")}
}

// Routes mounts the session endpoints under /api/wizard.
func (h *WizardHandler) Routes(r chi.Router) {
	r.Route("/api/wizard", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{sid}", h.Get)
		r.Post("/{sid}/basics", h.Basics)
		r.Post("/{sid}/list", h.List)
		r.Post("/{sid}/create-edit", h.CreateEdit)
		r.Post("/{sid}/detail", h.Detail)
		r.Post("/{sid}/reopen/{step}", h.Reopen)
	})
}

// CreateEditInput is the body of the create-edit step: form rows in
// presentation order.
type CreateEditInput struct {
	Rows []assemble.CreateEditRow `json:"rows"`
}

// DetailInput is the body of the detail step.
type DetailInput struct {
	Sections []assemble.ViewSection `json:"sections"`
}

func (h *WizardHandler) Create(w http.ResponseWriter, r *http.Request) {
	wz, err := h.mgr.Create(r.Context())
	if err != nil {
		h.logger.Error("creating session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, wz.Snapshot())
}

func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wz.Snapshot())
}

func (h *WizardHandler) Basics(w http.ResponseWriter, r *http.Request) {
	var in validate.BoardParams
	h.run(w, r, &in, func(wz *wizard.Wizard) error {
		return wz.SubmitBasics(r.Context(), in)
	})
}

func (h *WizardHandler) List(w http.ResponseWriter, r *http.Request) {
	var in assemble.ListViewInput
	h.run(w, r, &in, func(wz *wizard.Wizard) error {
		return wz.SubmitListView(r.Context(), in)
	})
}

func (h *WizardHandler) CreateEdit(w http.ResponseWriter, r *http.Request) {
	var in CreateEditInput
	h.run(w, r, &in, func(wz *wizard.Wizard) error {
		if err := wz.EditCreateEdit(func(d *assemble.CreateEditDraft) error {
			return d.ReplaceRows(in.Rows)
		}); err != nil {
			return err
		}
		return wz.SubmitCreateEdit(r.Context())
	})
}

func (h *WizardHandler) Detail(w http.ResponseWriter, r *http.Request) {
	var in DetailInput
	h.run(w, r, &in, func(wz *wizard.Wizard) error {
		if err := wz.EditView(func(d *assemble.ViewDraft) error {
			return d.ReplaceSections(in.Sections)
		}); err != nil {
			return err
		}
		return wz.SubmitDetailView(r.Context())
	})
}

func (h *WizardHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	step, ok := wizard.ParseState(chi.URLParam(r, "step"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_STEP", "Unknown step: "+chi.URLParam(r, "step"))
		return
	}
	h.run(w, r, nil, func(wz *wizard.Wizard) error {
		return wz.Reopen(step)
	})
}

func (h *WizardHandler) session(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	wz, err := h.mgr.Get(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		if wizard.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", msgSessionNotFound)
			return nil, false
		}
		h.logger.Error("loading session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return nil, false
	}
	return wz, true
}

// run decodes the body into in (when non-nil), applies fn to the session and
// answers with the new snapshot. The session is saved only when fn succeeds.
func (h *WizardHandler) run(w http.ResponseWriter, r *http.Request, in any, fn func(*wizard.Wizard) error) {
	wz, ok := h.session(w, r)
	if !ok {
		return
	}
	if in != nil {
		if err := decodeJSON(r, in); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
			return
		}
	}
	if err := fn(wz); err != nil {
		h.writeStepError(w, err)
		return
	}
	if err := h.mgr.Save(r.Context(), wz); err != nil {
		h.logger.Warn("saving session", zap.String("session_id", wz.ID()), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, wz.Snapshot())
}

func (h *WizardHandler) writeStepError(w http.ResponseWriter, err error) {
	var se *wizard.StepError
	switch {
	case errors.As(err, &se):
		status := http.StatusBadRequest
		if se.Kind == wizard.KindTransport {
			status = http.StatusBadGateway
		}
		writeError(w, status, string(se.Kind), se.Message)
	case errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrStepNotCompleted):
		writeError(w, http.StatusConflict, "WRONG_STEP", err.Error())
	default:
		// Draft edits fail on unknown or repeated columns.
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}
}
