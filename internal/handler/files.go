package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/files"
	"github.com/matthewbaird/autoboard/internal/types"
)

// Multipart bodies above this are refused. Parts past the in-memory share
// spill to temporary files.
const (
	maxUploadBytes   = 64 << 20
	uploadMemorySize = 8 << 20
)

// FileHandler serves attachment upload, download and deletion.
type FileHandler struct {
	svc    *files.Service
	logger *zap.Logger
}

func NewFileHandler(svc *files.Service, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{svc: svc, logger: logger.Named("files")}
}

// Routes mounts the file endpoints.
func (h *FileHandler) Routes(r chi.Router) {
	r.Post("/api/files/upload", h.Upload)
	r.Get("/api/files/{fid}", h.Download)
	r.Delete("/api/files/{fid}", h.Delete)
}

// Upload stores every part of the multipart field "files" and answers with
// their catalogue entries.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemorySize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "Upload is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "No files in field \"files\"")
		return
	}
	out := make([]types.File, 0, len(parts))
	for _, fh := range parts {
		src, err := fh.Open()
		if err != nil {
			h.logger.Error("opening upload part", zap.String("file", fh.Filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "File upload failed")
			return
		}
		f, err := h.svc.Save(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), src)
		src.Close()
		if err != nil {
			h.logger.Error("saving upload", zap.String("file", fh.Filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "File upload failed")
			return
		}
		out = append(out, f)
	}
	writeJSON(w, http.StatusCreated, out)
}

// Download streams a file under its original name.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "fid", "file")
	if !ok {
		return
	}
	f, blob, err := h.svc.Open(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	defer blob.Close()
	w.Header().Set("Content-Type", f.Mime)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.LogicalName}))
	http.ServeContent(w, r, f.LogicalName, f.CreatedAt, blob)
}

// Delete removes a file.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "fid", "file")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
