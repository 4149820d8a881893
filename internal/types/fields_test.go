package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEditField_KeyOrder(t *testing.T) {
	f := CreateEditField{
		Name:        "score",
		Label:       "Score",
		DataType:    "integer",
		ElementType: "input-integer",
		Required:    true,
		Order:       1,
		Attrs: Attrs{
			{Key: "min_value", Value: 0.0},
			{Key: "max_value", Value: "ten"},
		},
	}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"score","label":"Score","data_type":"integer","element_type":"input-integer","required":true,"order":1,"min_value":0,"max_value":"ten"}`,
		string(b))
}

func TestCreateEditField_DecodeOrdersAttrsBySchema(t *testing.T) {
	in := `{"max_value":10,"name":"n","label":"N","data_type":"integer","element_type":"input-integer","required":false,"order":2,"default_value":"3","min_value":1}`
	var f CreateEditField
	require.NoError(t, json.Unmarshal([]byte(in), &f))

	assert.Equal(t, "n", f.Name)
	assert.Equal(t, 2, f.Order)
	assert.Equal(t, []string{"default_value", "min_value", "max_value"}, f.Attrs.Keys())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"n","label":"N","data_type":"integer","element_type":"input-integer","required":false,"order":2,"default_value":"3","min_value":1,"max_value":10}`,
		string(out))
}

func TestCreateEditField_Options(t *testing.T) {
	in := `{"name":"color","label":"Color","data_type":"string","element_type":"radio","required":false,"order":1,"options":[{"value":"r","label":"Red"}]}`
	var f CreateEditField
	require.NoError(t, json.Unmarshal([]byte(in), &f))
	assert.Equal(t, []Option{{Value: "r", Label: "Red"}}, f.Options())
}

func TestViewField_SparseCommonAttrs(t *testing.T) {
	f := ViewField{Name: "title", Label: "Title", DisplayType: "text", Order: 1}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"title","label":"Title","display_type":"text","order":1}`, string(b))

	f.FullWidth = true
	f.Section = "Main"
	f.Attrs.Set("format", "YYYY-MM-DD")
	b, err = json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"title","label":"Title","display_type":"text","order":1,"section":"Main","full_width":true,"format":"YYYY-MM-DD"}`, string(b))
}

func TestViewField_Decode(t *testing.T) {
	in := `{"name":"tags","label":"Tags","display_type":"list","order":3,"hide_label":true,"hide_if_empty":true,"display_as":"comma"}`
	var f ViewField
	require.NoError(t, json.Unmarshal([]byte(in), &f))
	assert.True(t, f.HideLabel)
	assert.Equal(t, []string{"display_as", "hide_if_empty"}, f.Attrs.Keys())
}

func TestAttrsSet(t *testing.T) {
	var a Attrs
	a.Set("x", 1)
	a.Set("y", 2)
	a.Set("x", 3)
	v, ok := a.Get("x")
	if !ok || v != 3 {
		t.Errorf("Get(x) = %v, %v, want 3, true", v, ok)
	}
	if got := a.Keys(); len(got) != 2 {
		t.Errorf("Keys() = %v, want 2 keys", got)
	}
}

func TestListViewConfig_ReferencedNames(t *testing.T) {
	cfg := ListViewConfig{
		Columns:     []ListColumn{{Name: "a"}, {Name: "b"}},
		DefaultSort: []SortSpec{{Column: "c", Order: "asc"}},
		Search:      SearchConfig{SimpleFields: []string{"d"}},
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, cfg.ReferencedNames())
}
