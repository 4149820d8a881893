package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

func newLocal(t *testing.T) (*LocalSubmitter, *service.BoardService) {
	t.Helper()
	checker, err := schema.NewChecker()
	require.NoError(t, err)
	svc := service.New(store.NewMemoryStore(), checker, nil, zap.NewNop())
	return NewLocalSubmitter(svc), svc
}

func TestLocalSubmitter_EndToEnd(t *testing.T) {
	ctx := context.Background()
	sub, svc := newLocal(t)
	w := New(sub)

	require.NoError(t, w.SubmitBasics(ctx, diaryParams()))
	id := w.BoardID()
	assert.Equal(t, int64(1), id)

	require.NoError(t, w.SubmitListView(ctx, assemble.ListViewInput{
		Columns:      []string{"title", "content"},
		SortColumn:   "title",
		SearchFields: []string{"title"},
	}))
	require.NoError(t, w.EditCreateEdit(func(d *assemble.CreateEditDraft) error {
		d.PopulateFromColumns()
		return nil
	}))
	require.NoError(t, w.SubmitCreateEdit(ctx))
	require.NoError(t, w.EditView(func(d *assemble.ViewDraft) error {
		d.PopulateFromColumns()
		return nil
	}))
	require.NoError(t, w.SubmitDetailView(ctx))
	assert.Equal(t, StateComplete, w.State())

	def, err := svc.Definition(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, def.View)
	assert.Len(t, def.View.Columns, 3)
	assert.Equal(t, "file_link", def.View.Columns[2].DisplayType)
	assert.Equal(t, []types.SortSpec{{Column: "title", Order: "desc"}}, def.List.DefaultSort)
}

func TestLocalSubmitter_RejectionIsResponseError(t *testing.T) {
	ctx := context.Background()
	sub, _ := newLocal(t)

	require.NoError(t, New(sub).SubmitBasics(ctx, diaryParams()))

	err := New(sub).SubmitBasics(ctx, diaryParams())
	assert.Equal(t, KindResponse, stepKind(t, err))
	assert.Contains(t, err.Error(), `Table name "diary_table" is already in use`)

	p := diaryParams()
	p.TableName = "other"
	p.Fields[0].Name = "id"
	err = New(sub).SubmitBasics(ctx, p)
	assert.Equal(t, KindResponse, stepKind(t, err))
	assert.Contains(t, err.Error(), "is reserved")
}
