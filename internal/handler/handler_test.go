package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

func newTestRouter(t *testing.T) (http.Handler, *service.BoardService) {
	t.Helper()
	checker, err := schema.NewChecker()
	require.NoError(t, err)
	svc := service.New(store.NewMemoryStore(), checker, nil, zap.NewNop())
	mgr := wizard.NewManager(wizard.NewLocalSubmitter(svc), wizard.NewMemorySessionStore(), time.Hour, zap.NewNop())

	r := chi.NewRouter()
	NewBoardHandler(svc, zap.NewNop()).Routes(r)
	NewWizardHandler(mgr, zap.NewNop()).Routes(r)
	r.Get("/api/field-types", FieldTypes)
	return r, svc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func diaryBoard() types.CreateBoardRequest {
	return types.CreateBoardRequest{
		Name:              "Diary",
		PhysicalTableName: "diary",
		Note:              "Daily **notes**",
		Columns: []types.ColumnRequest{
			{Name: "title", Label: "Title", DataType: "string", Required: true},
			{Name: "body", Label: "Body", DataType: "text"},
		},
	}
}

// runSteps drives steps 1 to 4 and returns the board id.
func runSteps(t *testing.T, h http.Handler) int64 {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/boards/new/step1", diaryBoard())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created types.CreateBoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.BoardID

	cols := assemble.NewColumnSet([]types.Column{
		{Name: "title", Label: "Title", DataType: "string", Required: true, Order: 1},
		{Name: "body", Label: "Body", DataType: "text", Order: 2},
	}, false)
	list, err := assemble.ListView(assemble.ListViewInput{Columns: []string{"title"}, PageSize: 20}, cols)
	require.NoError(t, err)
	ce, err := assemble.CreateEdit([]assemble.CreateEditRow{{Name: "title", ElementType: "input-text"}}, cols)
	require.NoError(t, err)
	view, err := assemble.DetailView([]assemble.ViewSection{{Rows: []assemble.ViewRow{{Name: "body"}}}}, cols)
	require.NoError(t, err)

	steps := []struct {
		path     string
		body     any
		redirect string
	}{
		{service.Step2Path(id), types.ListConfigRequest{ListConfig: list}, service.Step3Path(id)},
		{service.Step3Path(id), types.CreateEditRequest{CreateEdit: ce}, service.Step4Path(id)},
		{service.Step4Path(id), types.ViewRequest{View: view}, service.BoardPath(id)},
	}
	for _, s := range steps {
		rec := do(t, h, http.MethodPost, s.path, s.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		if got := decode(t, rec)["redirect"]; got != s.redirect {
			t.Errorf("%s: got redirect %q, want %q", s.path, got, s.redirect)
		}
	}
	return id
}

func TestStepEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)
	id := runSteps(t, h)

	rec := do(t, h, http.MethodGet, "/boards/1/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var meta types.ColumnsMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Len(t, meta.Fields, 2)

	rec = do(t, h, http.MethodGet, "/boards/1/config/view", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"body"`)

	rec = do(t, h, http.MethodGet, "/boards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boards []types.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, id, boards[0].ID)
}

func TestStep1Rejections(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/boards/new/step1", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidBody, decode(t, rec)["detail"])

	req := diaryBoard()
	req.Name = " "
	rec = do(t, h, http.MethodPost, "/boards/create", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Board name is required", decode(t, rec)["detail"])
}

func TestNotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		method, path, detail string
		body                 any
	}{
		{http.MethodGet, "/boards/9/columns", "Columns metadata not found", nil},
		{http.MethodGet, "/boards/9", "Board not found", nil},
		{http.MethodPost, "/boards/new/step2/9", "Board not found", types.ListConfigRequest{}},
	}
	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tt.path)
		if got := decode(t, rec)["detail"]; got != tt.detail {
			t.Errorf("%s: got %q, want %q", tt.path, got, tt.detail)
		}
	}

	rec := do(t, h, http.MethodGet, "/boards/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigNotStored(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/boards/new/step1", diaryBoard())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/boards/1/config/list", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Configuration not found", decode(t, rec)["detail"])
}

func TestFieldTypes(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/field-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cat fieldTypeCatalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.NotEmpty(t, cat.DataTypes)
	assert.NotEmpty(t, cat.Elements)
	assert.NotEmpty(t, cat.Displays)
}

func TestCheckerPage(t *testing.T) {
	h, _ := newTestRouter(t)
	runSteps(t, h)

	rec := do(t, h, http.MethodGet, "/checker/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>notes</strong>")
	assert.Contains(t, body, "<h2>create_edit</h2>")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
}

func TestExport(t *testing.T) {
	h, _ := newTestRouter(t)
	runSteps(t, h)

	rec := do(t, h, http.MethodGet, "/boards/1/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `diary.xlsx`)
	// xlsx is a zip archive.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestWizardSession(t *testing.T) {
	h, svc := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sid, _ := decode(t, rec)["session_id"].(string)
	require.NotEmpty(t, sid)
	base := "/api/wizard/" + sid

	rec = do(t, h, http.MethodPost, base+"/list", assemble.ListViewInput{Columns: []string{"title"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/basics", map[string]any{
		"name":                "Diary",
		"physical_table_name": "diary",
		"fields": []map[string]any{
			{"label": "Title", "name": "title", "data_type": "string"},
			{"label": "Body", "name": "body", "data_type": "text"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "list_view", decode(t, rec)["state"])

	rec = do(t, h, http.MethodPost, base+"/list", assemble.ListViewInput{Columns: []string{"title"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, base+"/create-edit", CreateEditInput{Rows: []assemble.CreateEditRow{
		{Name: "title", ElementType: "input-text"}, {Name: "title", ElementType: "input-text"},
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/create-edit", CreateEditInput{Rows: []assemble.CreateEditRow{
		{Name: "title", ElementType: "input-text", Required: true}, {Name: "body", ElementType: "input-html"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, base+"/detail", DetailInput{Sections: []assemble.ViewSection{
		{Title: "Main", Rows: []assemble.ViewRow{{Name: "title"}, {Name: "body", Label: "Text"}}},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode(t, rec)
	assert.Equal(t, "complete", snap["state"])

	def, err := svc.Definition(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, def.View)
	assert.Equal(t, "Text", def.View.Columns[1].Label)
	assert.Equal(t, "Main", def.View.Columns[0].Section)

	rec = do(t, h, http.MethodPost, base+"/reopen/list", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list_view", decode(t, rec)["state"])

	rec = do(t, h, http.MethodPost, base+"/reopen/nowhere", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWizardSessionNotFound(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/wizard/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgSessionNotFound, decode(t, rec)["detail"])
}

type countingSessionStore struct {
	wizard.SessionStore
	saves atomic.Int32
}

func (s *countingSessionStore) Save(ctx context.Context, snap wizard.Snapshot, ttl time.Duration) error {
	s.saves.Add(1)
	return s.SessionStore.Save(ctx, snap, ttl)
}

func TestWizardSession_RejectedStepNotSaved(t *testing.T) {
	checker, err := schema.NewChecker()
	require.NoError(t, err)
	svc := service.New(store.NewMemoryStore(), checker, nil, zap.NewNop())
	sessions := &countingSessionStore{SessionStore: wizard.NewMemorySessionStore()}
	mgr := wizard.NewManager(wizard.NewLocalSubmitter(svc), sessions, time.Hour, zap.NewNop())
	r := chi.NewRouter()
	NewWizardHandler(mgr, zap.NewNop()).Routes(r)

	rec := do(t, r, http.MethodPost, "/api/wizard", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/wizard/" + decode(t, rec)["session_id"].(string)
	saved := sessions.saves.Load()

	rec = do(t, r, http.MethodPost, base+"/list", assemble.ListViewInput{Columns: []string{"title"}})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, r, http.MethodPost, base+"/basics", map[string]any{"name": "", "fields": []map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, saved, sessions.saves.Load(), "rejected steps must not be saved")

	rec = do(t, r, http.MethodPost, base+"/basics", map[string]any{
		"name":   "Diary",
		"fields": []map[string]any{{"label": "Title", "name": "title", "data_type": "string"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, saved+1, sessions.saves.Load())
}
