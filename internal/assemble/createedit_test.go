package assemble

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEdit_AttributesFollowElementType(t *testing.T) {
	rows := []CreateEditRow{
		{Name: "title", ElementType: "input-text", Required: true, Attrs: map[string]string{
			"default_value": "  hello ",
			"min_value":     "3", // not legal for input-text
		}},
		{Name: "score", ElementType: "input-integer", Attrs: map[string]string{
			"min_value": " 0 ",
			"max_value": "ten",
		}},
		{Name: "content", ElementType: "radio", Options: []OptionRow{
			{Value: "a", Label: "A"},
			{Value: "", Label: "no value"},
			{Value: "b", Label: " "},
			{Value: " c ", Label: " C "},
		}},
		{Name: "price", ElementType: "checkbox-multi", Options: []OptionRow{{Value: "x"}}},
		{Name: "done", ElementType: "checkbox"},
		{Name: "due", ElementType: "checkbox", Attrs: map[string]string{"default_value": "true"}},
	}
	doc, err := CreateEdit(rows, testColumns(false))
	require.NoError(t, err)
	require.Len(t, doc.Columns, 6)

	title := doc.Columns[0]
	assert.Equal(t, []string{"default_value"}, title.Attrs.Keys())
	v, _ := title.Attrs.Get("default_value")
	assert.Equal(t, "hello", v)
	assert.Equal(t, "Title", title.Label)
	assert.Equal(t, "string", title.DataType)

	score := doc.Columns[1]
	assert.Equal(t, []string{"min_value", "max_value"}, score.Attrs.Keys())
	minV, _ := score.Attrs.Get("min_value")
	maxV, _ := score.Attrs.Get("max_value")
	assert.Equal(t, 0.0, minV)
	assert.Equal(t, "ten", maxV)

	radio := doc.Columns[2]
	require.Len(t, radio.Options(), 2)
	assert.Equal(t, "c", radio.Options()[1].Value)
	assert.Equal(t, "C", radio.Options()[1].Label)

	// an option list with no complete pair is omitted entirely
	_, ok := doc.Columns[3].Attrs.Get("options")
	assert.False(t, ok)

	d, ok := doc.Columns[4].Attrs.Get("default_value")
	require.True(t, ok)
	assert.Equal(t, false, d)
	d, _ = doc.Columns[5].Attrs.Get("default_value")
	assert.Equal(t, true, d)

	var orders []int
	for _, f := range doc.Columns {
		orders = append(orders, f.Order)
	}
	assertDenseOrder(t, orders)
}

func TestCreateEdit_SkipsMalformedRows(t *testing.T) {
	rows := []CreateEditRow{
		{Name: "", ElementType: "input-text"},
		{Name: "title", ElementType: "input-text"},
		{Name: "content", ElementType: ""},
		{Name: "score", ElementType: "input-integer"},
	}
	doc, err := CreateEdit(rows, testColumns(false))
	require.NoError(t, err)
	require.Len(t, doc.Columns, 2)
	assert.Equal(t, "score", doc.Columns[1].Name)
	assert.Equal(t, 2, doc.Columns[1].Order)
}

func TestCreateEdit_DocumentLevelFailures(t *testing.T) {
	cols := testColumns(false)

	_, err := CreateEdit([]CreateEditRow{{Name: "", ElementType: ""}}, cols)
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = CreateEdit(nil, cols)
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = CreateEdit([]CreateEditRow{{Name: "ghost", ElementType: "input-text"}}, cols)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = CreateEdit([]CreateEditRow{
		{Name: "title", ElementType: "input-text"},
		{Name: "Title", ElementType: "input-text"},
	}, cols)
	assert.ErrorIs(t, err, ErrAlreadyAdded)
}

func TestCreateEdit_UnknownElementTypeFallsBack(t *testing.T) {
	doc, err := CreateEdit([]CreateEditRow{{Name: "title", ElementType: "slider"}}, testColumns(false))
	require.NoError(t, err)
	assert.Equal(t, "input-text", doc.Columns[0].ElementType)
}

func TestCreateEdit_Attachment(t *testing.T) {
	doc, err := CreateEdit([]CreateEditRow{{Name: "attachment", ElementType: "input-text"}}, testColumns(true))
	require.NoError(t, err)
	assert.Equal(t, "Attachment", doc.Columns[0].Label)
	assert.Equal(t, "string", doc.Columns[0].DataType)
}

func TestCreateEdit_JSON(t *testing.T) {
	doc, err := CreateEdit([]CreateEditRow{
		{Name: "score", ElementType: "input-integer", Required: true, Attrs: map[string]string{"max_value": "100"}},
	}, testColumns(false))
	require.NoError(t, err)
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"columns":[{"name":"score","label":"Score","data_type":"integer","element_type":"input-integer","required":true,"order":1,"max_value":100}]}`,
		string(b))
}

func TestCreateEditDraft(t *testing.T) {
	d := NewCreateEditDraft(testColumns(false))

	k1, err := d.AddField("title")
	require.NoError(t, err)
	k2, err := d.AddField("score")
	require.NoError(t, err)
	k3, err := d.AddField("done")
	require.NoError(t, err)

	_, err = d.AddField("TITLE")
	assert.ErrorIs(t, err, ErrAlreadyAdded)
	_, err = d.AddField("")
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = d.AddField("ghost")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	rows := d.Rows()
	assert.Equal(t, "input-integer", rows[1].ElementType)
	assert.Equal(t, "checkbox", rows[2].ElementType)
	assert.True(t, rows[0].Required)

	require.NoError(t, d.MoveUp(k3))
	require.NoError(t, d.MoveUp(k1)) // already first
	assert.Equal(t, []int{k1, k3, k2}, d.Keys())

	require.NoError(t, d.Update(k2, func(r *CreateEditRow) {
		r.Name = "renamed"
		r.Attrs = map[string]string{"min_value": "1"}
	}))
	assert.Equal(t, "score", d.Rows()[2].Name)

	require.NoError(t, d.Remove(k1))
	assert.ErrorIs(t, d.Remove(k1), ErrUnknownRow)

	// removed columns can be selected again and get a fresh key
	k4, err := d.AddField("title")
	require.NoError(t, err)
	assert.Equal(t, 4, k4)
	assert.Equal(t, 4, d.Counter())

	doc, err := d.Assemble()
	require.NoError(t, err)
	names := []string{}
	for _, f := range doc.Columns {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"done", "score", "title"}, names)
	assert.Equal(t, 3, doc.Columns[2].Order)
}

func TestCreateEditDraft_PopulateFromColumns(t *testing.T) {
	d := NewCreateEditDraft(testColumns(true))
	_, err := d.AddField("due")
	require.NoError(t, err)
	d.PopulateFromColumns()
	assert.Len(t, d.Rows(), 7)
	assert.Empty(t, d.Available())
}

func TestCreateEditDraft_StateRoundTrip(t *testing.T) {
	d := NewCreateEditDraft(testColumns(false))
	_, err := d.AddField("title")
	require.NoError(t, err)
	k, err := d.AddField("score")
	require.NoError(t, err)
	require.NoError(t, d.Remove(k))
	require.NoError(t, d.Update(1, func(r *CreateEditRow) { r.Attrs = map[string]string{"default_value": "x"} }))

	r := RestoreCreateEditDraft(testColumns(false), d.State())
	assert.Equal(t, 2, r.Counter())
	assert.Equal(t, d.Rows(), r.Rows())

	next, err := r.AddField("done")
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}
