package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/records"
)

// RecordHandler serves the records of a board.
type RecordHandler struct {
	svc    *records.Service
	logger *zap.Logger
}

func NewRecordHandler(svc *records.Service, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{svc: svc, logger: logger.Named("records")}
}

// Routes mounts the record endpoints.
func (h *RecordHandler) Routes(r chi.Router) {
	r.Get("/boards/{id}/records", h.List)
	r.Post("/boards/{id}/records", h.Create)
	r.Get("/boards/{id}/records/{rid}", h.Get)
	r.Put("/boards/{id}/records/{rid}", h.Update)
	r.Delete("/boards/{id}/records/{rid}", h.Delete)
}

// recordResult acknowledges a write.
type recordResult struct {
	Success  bool  `json:"success"`
	RecordID int64 `json:"record_id"`
	BoardID  int64 `json:"board_id"`
}

// List answers with one page of records. Query parameters: page,
// page_size, sort, order and search.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	p := records.ListParams{Sort: q.Get("sort"), Order: q.Get("order"), Search: q.Get("search")}
	for _, f := range []struct {
		name string
		dst  *int
	}{{"page", &p.Page}, {"page_size", &p.PageSize}} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", f.name+" must be a positive integer")
			return
		}
		*f.dst = n
	}
	page, err := h.svc.List(r.Context(), id, p)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get returns one record.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, rid, ok := recordIDs(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id, rid)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"board_id": id, "record": rec})
}

// Create inserts a record from a JSON object of field values.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	var values map[string]any
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	rid, err := h.svc.Create(r.Context(), id, values)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResult{Success: true, RecordID: rid, BoardID: id})
}

// Update writes the given field values.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, rid, ok := recordIDs(w, r)
	if !ok {
		return
	}
	var values map[string]any
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidBody)
		return
	}
	if err := h.svc.Update(r.Context(), id, rid, values); err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResult{Success: true, RecordID: rid, BoardID: id})
}

// Delete removes a record.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, rid, ok := recordIDs(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, rid); err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResult{Success: true, RecordID: rid, BoardID: id})
}

func recordIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	rid, ok := parseID(w, r, "rid", "record")
	return id, rid, ok
}
