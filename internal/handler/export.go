package handler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export downloads the board definition as a workbook.
func (h *BoardHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	def, err := h.svc.Definition(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	data, err := export.Workbook(def)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", def.Board.PhysicalTableName+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("export write", zap.Error(err), zap.Int64("board_id", id))
	}
}
