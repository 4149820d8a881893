package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/files"
	"github.com/matthewbaird/autoboard/internal/records"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

// newRecordRouter serves the step, record and file endpoints over one
// memory store.
func newRecordRouter(t *testing.T) http.Handler {
	t.Helper()
	checker, err := schema.NewChecker()
	require.NoError(t, err)
	st := store.NewMemoryStore()
	svc := service.New(st, checker, nil, zap.NewNop())

	r := chi.NewRouter()
	NewBoardHandler(svc, zap.NewNop()).Routes(r)
	NewRecordHandler(records.New(svc, st, st, nil, zap.NewNop()), zap.NewNop()).Routes(r)
	NewFileHandler(files.New(t.TempDir(), st, zap.NewNop()), zap.NewNop()).Routes(r)
	return r
}

func TestRecordEndpoints(t *testing.T) {
	h := newRecordRouter(t)
	id := runSteps(t, h)
	base := fmt.Sprintf("/boards/%d/records", id)

	rec := do(t, h, http.MethodPost, base, map[string]any{"title": "First entry"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, true, created["success"])
	assert.EqualValues(t, 1, created["record_id"])

	rec = do(t, h, http.MethodPost, base, map[string]any{"title": "Second entry"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page types.RecordPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "Second entry", page.Records[0]["title"])

	rec = do(t, h, http.MethodGet, base+"?sort=title&order=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "First entry", page.Records[0]["title"])

	rec = do(t, h, http.MethodPut, base+"/1", map[string]any{"title": "Edited"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, base+"/1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)["record"].(map[string]any)
	assert.Equal(t, "Edited", got["title"])

	rec = do(t, h, http.MethodDelete, base+"/1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodGet, base+"/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, records.MsgRecordNotFound, decode(t, rec)["detail"])
}

func TestRecordEndpoints_Rejections(t *testing.T) {
	h := newRecordRouter(t)
	id := runSteps(t, h)
	base := fmt.Sprintf("/boards/%d/records", id)

	tests := []struct {
		name, method, path string
		body               any
		status             int
		code               string
	}{
		{"unknown field", http.MethodPost, base, map[string]any{"title": "x", "mood": 3}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad json", http.MethodPost, base, "{", http.StatusBadRequest, "INVALID_JSON"},
		{"bad page", http.MethodGet, base + "?page=0", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad page size", http.MethodGet, base + "?page_size=abc", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"search disabled", http.MethodGet, base + "?search=x", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unsortable", http.MethodGet, base + "?sort=body", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad record id", http.MethodGet, base + "/abc", nil, http.StatusBadRequest, "INVALID_ID"},
		{"missing record", http.MethodPut, base + "/9", map[string]any{"title": "x"}, http.StatusNotFound, "NOT_FOUND"},
		{"missing board", http.MethodGet, "/boards/99/records", nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode(t, rec)["error"])
		})
	}
}

func upload(t *testing.T, h http.Handler, parts map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, body := range parts {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFileEndpoints(t *testing.T) {
	h := newRecordRouter(t)

	rec := upload(t, h, map[string]string{"notes.txt": "dear diary"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved []types.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "notes.txt", saved[0].LogicalName)
	assert.Equal(t, int64(10), saved[0].Size)
	assert.NotContains(t, rec.Body.String(), "physical_name")

	path := fmt.Sprintf("/api/files/%d", saved[0].ID)
	rec = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dear diary", rec.Body.String())
	assert.Equal(t, `attachment; filename=notes.txt`, rec.Header().Get("Content-Disposition"))

	rec = do(t, h, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "File deleted", decode(t, rec)["message"])

	rec = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, files.MsgFileNotFound, decode(t, rec)["detail"])
}

func TestFileUpload_Rejections(t *testing.T) {
	h := newRecordRouter(t)

	rec := upload(t, h, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_UPLOAD", decode(t, rec)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/files/0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", decode(t, rec)["error"])
}
