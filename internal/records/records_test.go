package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/event"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type fixture struct {
	boards *service.BoardService
	store  *store.MemoryStore
	svc    *Service
	pub    *recordingPublisher
	id     int64
}

// newDiary creates a board with a list view and a create/edit form.
func newDiary(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	checker, err := schema.NewChecker()
	require.NoError(t, err)
	st := store.NewMemoryStore()
	boards := service.New(st, checker, nil, zap.NewNop())

	resp, err := boards.CreateOrUpdateBoard(ctx, types.CreateBoardRequest{
		Name:              "Diary",
		PhysicalTableName: "diary_table",
		IsFileAttach:      true,
		Columns: []types.ColumnRequest{
			{Label: "Title", Name: "title", DataType: "string", Required: true},
			{Label: "Mood", Name: "mood", DataType: "integer"},
			{Label: "Due", Name: "due", DataType: "ymd"},
			{Label: "Price", Name: "price", DataType: "float"},
			{Label: "Done", Name: "done", DataType: "boolean"},
			{Label: "Contact", Name: "contact", DataType: "string"},
		},
	})
	require.NoError(t, err)
	id := resp.BoardID
	_, cols, err := boards.ColumnSet(ctx, id)
	require.NoError(t, err)

	list, err := assemble.ListView(assemble.ListViewInput{
		Columns:           []string{"title", "mood", "due"},
		PaginationEnabled: true,
		PageSize:          10,
		SortColumn:        "mood",
		SortOrder:         "asc",
		SearchEnabled:     true,
		SearchFields:      []string{"title", "mood"},
	}, cols)
	require.NoError(t, err)
	_, err = boards.SaveListConfig(ctx, id, list)
	require.NoError(t, err)

	form, err := assemble.CreateEdit([]assemble.CreateEditRow{
		{Name: "title", ElementType: "input-text", Required: true},
		{Name: "mood", ElementType: "radio", Options: []assemble.OptionRow{
			{Value: "1", Label: "Bad"}, {Value: "3", Label: "Okay"}, {Value: "5", Label: "Good"},
		}},
		{Name: "due", ElementType: "input-date"},
		{Name: "price", ElementType: "input-real", Attrs: map[string]string{"min_value": "0", "max_value": "100"}},
		{Name: "done", ElementType: "checkbox"},
		{Name: "contact", ElementType: "input-email"},
		{Name: "attachment", ElementType: "input-text"},
	}, cols)
	require.NoError(t, err)
	_, err = boards.SaveCreateEdit(ctx, id, form)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return &fixture{
		boards: boards,
		store:  st,
		svc:    New(boards, st, st, pub, zap.NewNop()),
		pub:    pub,
		id:     id,
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)

	rid, err := f.svc.Create(ctx, f.id, map[string]any{
		"title":   " First ",
		"mood":    "3",
		"due":     "2026-10-01",
		"price":   12.5,
		"done":    true,
		"contact": "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rid)

	rec, err := f.svc.Get(ctx, f.id, rid)
	require.NoError(t, err)
	assert.Equal(t, "First", rec["title"])
	assert.Equal(t, int64(3), rec["mood"])
	assert.Equal(t, "2026-10-01", rec["due"])
	assert.Equal(t, 12.5, rec["price"])
	assert.Equal(t, int64(1), rec["done"])
	assert.Equal(t, "ada@example.com", rec["contact"])
	assert.Nil(t, rec["attachment"])
	assert.NotNil(t, rec["created_at"])

	assert.Equal(t, []string{event.TypeRecordCreated}, f.pub.eventTypes())
}

func TestCreate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{"missing required", map[string]any{"mood": 1}, "Title is required"},
		{"blank required", map[string]any{"title": "  "}, "Title is required"},
		{"unknown field", map[string]any{"title": "x", "nope": 1}, `Unknown field "nope"`},
		{"not an option", map[string]any{"title": "x", "mood": 4}, `"4" is not one of the options`},
		{"bad date", map[string]any{"title": "x", "due": "01/10/2026"}, "Due must be a date"},
		{"above max", map[string]any{"title": "x", "price": 150}, "Price must be at most 100"},
		{"below min", map[string]any{"title": "x", "price": "-1"}, "Price must be at least 0"},
		{"not a number", map[string]any{"title": "x", "price": "abc"}, "Price must be a number"},
		{"bad email", map[string]any{"title": "x", "contact": "not-an-email"}, "Contact must be an email address"},
		{"bad checkbox", map[string]any{"title": "x", "done": "maybe"}, "Done:"},
		{"missing file", map[string]any{"title": "x", "attachment": "7"}, "file 7 does not exist"},
		{"object value", map[string]any{"title": map[string]any{"a": 1}}, "unsupported value"},
	}
	f := newDiary(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.id, tt.values)
			require.Error(t, err)
			assert.True(t, service.IsValidation(err), "want validation error, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Empty(t, f.pub.eventTypes())
}

func TestCreate_Attachment(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	a, err := f.store.InsertFile(ctx, types.File{BaseFolder: "2026/10", PhysicalName: "a", LogicalName: "a.txt"})
	require.NoError(t, err)
	b, err := f.store.InsertFile(ctx, types.File{BaseFolder: "2026/10", PhysicalName: "b", LogicalName: "b.txt"})
	require.NoError(t, err)

	rid, err := f.svc.Create(ctx, f.id, map[string]any{
		"title":      "with files",
		"attachment": []any{float64(a), float64(b)},
	})
	require.NoError(t, err)
	rec, err := f.svc.Get(ctx, f.id, rid)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d,%d", a, b), rec["attachment"])
}

func TestCreate_WithoutForm(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	resp, err := f.boards.CreateOrUpdateBoard(ctx, types.CreateBoardRequest{
		Name:    "Bare",
		Columns: []types.ColumnRequest{{Label: "Title", Name: "title", DataType: "string"}},
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, resp.BoardID, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, err.Error(), MsgFormNotFound)

	_, err = f.svc.Create(ctx, 999, map[string]any{"title": "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	rid, err := f.svc.Create(ctx, f.id, map[string]any{"title": "Draft", "mood": "1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Update(ctx, f.id, rid, map[string]any{"mood": 5}))
	rec, err := f.svc.Get(ctx, f.id, rid)
	require.NoError(t, err)
	assert.Equal(t, "Draft", rec["title"], "fields left out keep their value")
	assert.Equal(t, int64(5), rec["mood"])

	// echoed system columns are ignored
	require.NoError(t, f.svc.Update(ctx, f.id, rid, map[string]any{"id": rid, "created_at": "whenever"}))

	err = f.svc.Update(ctx, f.id, rid, map[string]any{"title": ""})
	assert.True(t, service.IsValidation(err), "got %v", err)

	err = f.svc.Update(ctx, f.id, 42, map[string]any{"mood": 1})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Contains(t, err.Error(), MsgRecordNotFound)

	err = f.svc.Update(ctx, f.id, 42, map[string]any{})
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.Equal(t, []string{event.TypeRecordCreated, event.TypeRecordUpdated}, f.pub.eventTypes())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	rid, err := f.svc.Create(ctx, f.id, map[string]any{"title": "gone soon"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.id, rid))
	_, err = f.svc.Get(ctx, f.id, rid)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.id, rid), service.ErrNotFound)

	assert.Equal(t, []string{event.TypeRecordCreated, event.TypeRecordDeleted}, f.pub.eventTypes())
}

// seed creates n records titled "apple <i>" for even i and "Banana <i>"
// otherwise, with moods cycling 1, 3, 5.
func seed(t *testing.T, f *fixture, n int) {
	t.Helper()
	moods := []string{"1", "3", "5"}
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("Banana %d", i)
		if i%2 == 0 {
			title = fmt.Sprintf("apple %d", i)
		}
		_, err := f.svc.Create(context.Background(), f.id, map[string]any{
			"title": title,
			"mood":  moods[(i-1)%3],
			"due":   fmt.Sprintf("2026-01-%02d", i),
		})
		require.NoError(t, err)
	}
}

func TestList_FollowsListConfig(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	seed(t, f, 12)

	page, err := f.svc.List(ctx, f.id, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "Diary", page.BoardName)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Records, 10)
	assert.Equal(t, types.SortSpec{Column: "mood", Order: "asc"}, page.Sort)
	assert.Equal(t, int64(1), page.Records[0]["mood"])
	// equal moods fall back to newest first
	assert.Equal(t, int64(10), page.Records[0].ID())

	page, err = f.svc.List(ctx, f.id, ListParams{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, int64(5), page.Records[1]["mood"])

	page, err = f.svc.List(ctx, f.id, ListParams{PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, page.Records, 12)

	page, err = f.svc.List(ctx, f.id, ListParams{Sort: "due", Order: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-12", page.Records[0]["due"])

	page, err = f.svc.List(ctx, f.id, ListParams{Search: "APPLE"})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	for _, r := range page.Records {
		assert.Contains(t, r["title"], "apple")
	}
}

func TestList_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	for name, p := range map[string]ListParams{
		"page size not offered": {PageSize: 7},
		"unsortable column":     {Sort: "price"},
		"unknown column":        {Sort: "nope"},
		"bad order":             {Sort: "title", Order: "sideways"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.List(ctx, f.id, p)
			assert.True(t, service.IsValidation(err), "got %v", err)
		})
	}

	_, err := f.svc.List(ctx, 999, ListParams{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestList_SearchDisabled(t *testing.T) {
	ctx := context.Background()
	f := newDiary(t)
	_, cols, err := f.boards.ColumnSet(ctx, f.id)
	require.NoError(t, err)
	list, err := assemble.ListView(assemble.ListViewInput{Columns: []string{"title"}}, cols)
	require.NoError(t, err)
	_, err = f.boards.SaveListConfig(ctx, f.id, list)
	require.NoError(t, err)
	seed(t, f, 3)

	_, err = f.svc.List(ctx, f.id, ListParams{Search: "apple"})
	assert.True(t, service.IsValidation(err), "got %v", err)

	page, err := f.svc.List(ctx, f.id, ListParams{PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, page.Records, 3, "pagination disabled returns every row")
	assert.Equal(t, 3, page.PageSize)
	assert.Equal(t, types.SortSpec{Column: "id", Order: "desc"}, page.Sort)
}

func TestSearchColumns(t *testing.T) {
	cols := []types.Column{
		{Name: "title", DataType: "string"},
		{Name: "mood", DataType: "integer"},
		{Name: "due", DataType: "ymd"},
	}
	cfg := types.ListViewConfig{
		Columns: []types.ListColumn{{Name: "title"}, {Name: "mood"}, {Name: "due"}},
	}
	assert.Equal(t, []string{"title", "due"}, searchColumns(cfg, cols))

	cfg.Search.SimpleFields = []string{"mood", types.AttachmentColumn}
	assert.Equal(t, []string{types.AttachmentColumn}, searchColumns(cfg, cols))
}

func TestPageSize(t *testing.T) {
	cfg := types.Pagination{Enabled: true, PageSize: 50, PageSizeOptions: []int{10, 50}}
	n, err := pageSize(cfg, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	n, err = pageSize(cfg, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	_, err = pageSize(cfg, 20)
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "page_size must be one of 10, 50", ve.Message)
}
