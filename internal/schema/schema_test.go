package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/types"
)

func testColumns() *assemble.ColumnSet {
	return assemble.NewColumnSet([]types.Column{
		{Name: "title", Label: "Title", DataType: "string", Order: 1},
		{Name: "score", Label: "Score", DataType: "integer", Order: 2},
		{Name: "tags", Label: "Tags", DataType: "string", Order: 3},
	}, true)
}

func newChecker(t *testing.T) *Checker {
	t.Helper()
	c, err := NewChecker()
	require.NoError(t, err)
	return c
}

func TestCheckListConfig(t *testing.T) {
	c := newChecker(t)
	cfg, err := assemble.ListView(assemble.ListViewInput{
		Columns:      []string{"title", "attachment"},
		PageSize:     10,
		SortColumn:   "score",
		SortOrder:    "asc",
		SearchFields: []string{"title"},
	}, testColumns())
	require.NoError(t, err)
	assert.NoError(t, c.CheckListConfig(cfg))

	cfg.Columns = nil
	assert.Error(t, c.CheckListConfig(cfg))
}

func TestCheckListConfig_RejectsBadSortOrder(t *testing.T) {
	c := newChecker(t)
	cfg, err := assemble.ListView(assemble.ListViewInput{Columns: []string{"title"}}, testColumns())
	require.NoError(t, err)
	cfg.DefaultSort = []types.SortSpec{{Column: "title", Order: "up"}}
	assert.Error(t, c.CheckListConfig(cfg))
}

func TestCheckCreateEdit(t *testing.T) {
	c := newChecker(t)
	doc, err := assemble.CreateEdit([]assemble.CreateEditRow{
		{Name: "title", ElementType: "input-text", Attrs: map[string]string{"default_value": "x"}},
		{Name: "score", ElementType: "input-integer", Attrs: map[string]string{"min_value": "1", "max_value": "n/a"}},
		{Name: "tags", ElementType: "checkbox-multi", Options: []assemble.OptionRow{{Value: "a", Label: "A"}}},
		{Name: "attachment", ElementType: "checkbox", Attrs: map[string]string{"default_value": "true"}},
	}, testColumns())
	require.NoError(t, err)
	assert.NoError(t, c.CheckCreateEdit(doc))

	doc.Columns[0].ElementType = "slider"
	assert.Error(t, c.CheckCreateEdit(doc))
}

func TestCheckCreateEdit_RejectsUnknownKeys(t *testing.T) {
	c := newChecker(t)
	doc := types.CreateEditConfig{Columns: []types.CreateEditField{{
		Name: "title", Label: "Title", DataType: "string", ElementType: "input-text", Order: 1,
		Attrs: types.Attrs{{Key: "placeholder", Value: "x"}},
	}}}
	assert.Error(t, c.CheckCreateEdit(doc))
}

func TestCheckView(t *testing.T) {
	c := newChecker(t)
	doc, err := assemble.DetailView([]assemble.ViewSection{{Title: "Main", Rows: []assemble.ViewRow{
		{Name: "title", DisplayType: "badge", Attrs: map[string]string{"badge_color_map": `{"a":"red"}`, "full_width": "true"}},
		{Name: "score", DisplayType: "stars", Attrs: map[string]string{"max_stars": "5"}},
		{Name: "tags", DisplayType: "list", Attrs: map[string]string{"display_as": "bullet"}},
		{Name: "attachment", DisplayType: "file_link", Attrs: map[string]string{"show_size": "true"}},
	}}}, testColumns())
	require.NoError(t, err)
	assert.NoError(t, c.CheckView(doc))

	assert.Error(t, c.CheckView(types.ViewConfig{Columns: []types.ViewField{}}))

	bad := types.ViewConfig{Columns: []types.ViewField{{Name: "title", Label: "T", DisplayType: "text", Order: 0}}}
	assert.Error(t, c.CheckView(bad))
}

func TestCheck_UnknownDefinition(t *testing.T) {
	c := newChecker(t)
	assert.Error(t, c.Check("#Nope", map[string]any{}))
}
