// Package handler implements the HTTP surface of the board wizard: the four
// step endpoints, read endpoints over stored boards, the field type catalog,
// server-side wizard sessions, the workbook export, and the record and file
// endpoints of finished boards.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/service"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("writeJSON encode error", zap.Error(err))
	}
}

// writeError writes the step contract's error payload. detail is the
// user-facing message; code is a stable machine-readable name.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{
		"detail": detail,
		"error":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseBoardID extracts and validates a board id path parameter.
func parseBoardID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	return parseID(w, r, paramName, "board")
}

// parseID extracts and validates a positive id path parameter. kind names
// the id in the error message.
func parseID(w http.ResponseWriter, r *http.Request, paramName, kind string) (int64, bool) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid "+kind+" id: "+raw)
		return 0, false
	}
	return id, true
}

// serviceErrorToHTTP maps service errors to HTTP responses.
func serviceErrorToHTTP(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
