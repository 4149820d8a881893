package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/types"
)

const msgInvalidBody = "Invalid request body"

// BoardHandler serves the step endpoints and the read endpoints of stored
// boards.
type BoardHandler struct {
	svc    *service.BoardService
	logger *zap.Logger
}

func NewBoardHandler(svc *service.BoardService, logger *zap.Logger) *BoardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardHandler{svc: svc, logger: logger.Named("boards")}
}

// Routes mounts the board endpoints.
func (h *BoardHandler) Routes(r chi.Router) {
	r.Get("/boards", h.ListBoards)
	r.Post("/boards/new/step1", h.Step1)
	r.Post("/boards/create", h.Step1)
	r.Post("/boards/new/step2/{id}", h.Step2)
	r.Post("/boards/new/step3/{id}", h.Step3)
	r.Post("/boards/new/step4/{id}", h.Step4)
	r.Get("/boards/{id}", h.GetBoard)
	r.Get("/boards/{id}/columns", h.Columns)
	r.Get("/boards/{id}/config/{name}", h.Config)
	r.Get("/boards/{id}/export.xlsx", h.Export)
	r.Get("/checker/{id}", h.Checker)
}

// Step1 creates a board or, with board_id, edits one.
func (h *BoardHandler) Step1(w http.ResponseWriter, r *http.Request) {
	var req types.CreateBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	resp, err := h.svc.CreateOrUpdateBoard(r.Context(), req)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Step2 stores the list view.
func (h *BoardHandler) Step2(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	var req types.ListConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	resp, err := h.svc.SaveListConfig(r.Context(), id, req.ListConfig)
	h.writeStep(w, resp, err)
}

// Step3 stores the create/edit form.
func (h *BoardHandler) Step3(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	var req types.CreateEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	resp, err := h.svc.SaveCreateEdit(r.Context(), id, req.CreateEdit)
	h.writeStep(w, resp, err)
}

// Step4 stores the detail view.
func (h *BoardHandler) Step4(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	var req types.ViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	resp, err := h.svc.SaveView(r.Context(), id, req.View)
	h.writeStep(w, resp, err)
}

func (h *BoardHandler) writeStep(w http.ResponseWriter, resp types.StepResponse, err error) {
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListBoards lists every board.
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.Boards(r.Context())
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	if boards == nil {
		boards = []types.Board{}
	}
	writeJSON(w, http.StatusOK, boards)
}

// GetBoard returns one board.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.svc.Board(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Columns returns the stored columns document.
func (h *BoardHandler) Columns(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	meta, err := h.svc.Columns(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Config returns one stored configuration document as stored.
func (h *BoardHandler) Config(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.svc.Config(r.Context(), id, chi.URLParam(r, "name"))
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.Meta)
}
