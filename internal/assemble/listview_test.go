package assemble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListView(t *testing.T) {
	cfg, err := ListView(ListViewInput{
		ViewMode:          "card",
		Columns:           []string{"title", "score", "title", "attachment"},
		PaginationEnabled: true,
		PageSize:          50,
		SortColumn:        "due",
		SortOrder:         "ASC",
		SearchEnabled:     true,
		SearchFields:      []string{"title", "content"},
	}, testColumns(true))
	require.NoError(t, err)

	assert.Equal(t, "card", cfg.ViewMode)
	require.Len(t, cfg.Columns, 3)
	assert.Equal(t, "Title", cfg.Columns[0].Label)
	assert.Equal(t, "auto", cfg.Columns[0].Width)
	assert.Equal(t, "left", cfg.Columns[0].Align)
	assert.True(t, cfg.Columns[0].Sortable)
	assert.Equal(t, "attachment", cfg.Columns[2].Name)

	assert.Equal(t, 50, cfg.Pagination.PageSize)
	assert.Equal(t, []int{10, 20, 50, 100}, cfg.Pagination.PageSizeOptions)
	require.Len(t, cfg.DefaultSort, 1)
	assert.Equal(t, "asc", cfg.DefaultSort[0].Order)
	assert.Equal(t, "simple", cfg.Search.Mode)
	assert.True(t, cfg.Search.ShowToggle)
	assert.Equal(t, []string{"title", "content"}, cfg.Search.SimpleFields)
	assert.True(t, cfg.Actions.ShowEdit && cfg.Actions.ShowDelete && cfg.Actions.ShowDetail)
}

func TestListView_Defaults(t *testing.T) {
	cfg, err := ListView(ListViewInput{Columns: []string{"title"}, PageSize: 7}, testColumns(false))
	require.NoError(t, err)
	assert.Equal(t, DefaultViewMode, cfg.ViewMode)
	assert.Equal(t, 20, cfg.Pagination.PageSize)
	assert.NotNil(t, cfg.DefaultSort)
	assert.Empty(t, cfg.DefaultSort)
	assert.NotNil(t, cfg.Search.SimpleFields)
}

func TestListView_Errors(t *testing.T) {
	cols := testColumns(false)

	_, err := ListView(ListViewInput{}, cols)
	assert.ErrorIs(t, err, ErrNoListColumns)

	_, err = ListView(ListViewInput{Columns: []string{"title", "attachment"}}, cols)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ListView(ListViewInput{Columns: []string{"title"}, SearchFields: []string{"nope"}}, cols)
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	_, err = ListView(ListViewInput{Columns: []string{"title"}, SortColumn: "score", SortOrder: "sideways"}, cols)
	assert.ErrorIs(t, err, ErrInvalidSortOrder)
}
