// Package fieldtype holds the closed set of column data types, input element
// types and detail display types, together with the recommendation tables
// and the per-type attribute schemas the assembler consumes.
//
// Every lookup is total: unknown keys resolve to a defined fallback
// (input-text for element types, text for display types) instead of failing.
package fieldtype

import "strings"

// DataType is the storage type of a board column.
type DataType string

const (
	DataString   DataType = "string"
	DataText     DataType = "text"
	DataInteger  DataType = "integer"
	DataFloat    DataType = "float"
	DataReal     DataType = "real" // alias of float
	DataBoolean  DataType = "boolean"
	DataYMD      DataType = "ymd"
	DataDatetime DataType = "datetime"
)

// ElementType is the input widget offered on the create/edit form.
type ElementType string

const (
	InputText     ElementType = "input-text"
	InputHTML     ElementType = "input-html"
	InputDate     ElementType = "input-date"
	InputInteger  ElementType = "input-integer"
	InputReal     ElementType = "input-real"
	InputEmail    ElementType = "input-email"
	Radio         ElementType = "radio"
	CheckboxMulti ElementType = "checkbox-multi"
	Checkbox      ElementType = "checkbox"
)

// DisplayType is the render kind used on the read-only detail view.
type DisplayType string

const (
	DisplayText     DisplayType = "text"
	DisplayHTML     DisplayType = "html"
	DisplayDate     DisplayType = "date"
	DisplayDatetime DisplayType = "datetime"
	DisplayStars    DisplayType = "stars"
	DisplayCurrency DisplayType = "currency"
	DisplayBoolean  DisplayType = "boolean"
	DisplayBadge    DisplayType = "badge"
	DisplayList     DisplayType = "list"
	DisplayFileLink DisplayType = "file_link"
)

// DataTypeInfo describes one data type.
type DataTypeInfo struct {
	Value   DataType    `json:"value"`
	Label   string      `json:"label"`
	SQLType string      `json:"sql_type"`
	Element ElementType `json:"recommended_element"`
	Display DisplayType `json:"recommended_display"`
	Alias   bool        `json:"alias,omitempty"`
}

// ElementInfo describes one input element type.
type ElementInfo struct {
	Value       ElementType `json:"value"`
	Label       string      `json:"label"`
	HTMLElement string      `json:"html_element"`
	HTMLType    string      `json:"html_type,omitempty"`
	Attrs       []AttrSpec  `json:"attrs"`
}

// HasOptions reports whether the element renders an option list.
func (e ElementInfo) HasOptions() bool {
	for _, a := range e.Attrs {
		if a.Kind == AttrOptions {
			return true
		}
	}
	return false
}

// DisplayInfo describes one detail display type.
type DisplayInfo struct {
	Value DisplayType `json:"value"`
	Label string      `json:"label"`
	Attrs []AttrSpec  `json:"attrs"`
}

var dataTypes = []DataTypeInfo{
	{Value: DataString, Label: "String", SQLType: "TEXT", Element: InputText, Display: DisplayText},
	{Value: DataText, Label: "Long text", SQLType: "TEXT", Element: InputHTML, Display: DisplayHTML},
	{Value: DataInteger, Label: "Integer", SQLType: "INTEGER", Element: InputInteger, Display: DisplayText},
	{Value: DataFloat, Label: "Decimal", SQLType: "REAL", Element: InputReal, Display: DisplayCurrency},
	{Value: DataReal, Label: "Decimal", SQLType: "REAL", Element: InputReal, Display: DisplayCurrency, Alias: true},
	{Value: DataBoolean, Label: "Boolean", SQLType: "INTEGER", Element: Checkbox, Display: DisplayBoolean},
	{Value: DataYMD, Label: "Date", SQLType: "TEXT", Element: InputDate, Display: DisplayDate},
	{Value: DataDatetime, Label: "Date and time", SQLType: "TEXT", Element: InputDate, Display: DisplayDatetime},
}

var elements = []ElementInfo{
	{Value: InputText, Label: "Text input", HTMLElement: "input", HTMLType: "text", Attrs: defaultValueAttrs},
	{Value: InputHTML, Label: "HTML editor", HTMLElement: "textarea", Attrs: defaultValueAttrs},
	{Value: InputDate, Label: "Date input", HTMLElement: "input", HTMLType: "date", Attrs: defaultValueAttrs},
	{Value: InputInteger, Label: "Integer input", HTMLElement: "input", HTMLType: "number", Attrs: numericAttrs},
	{Value: InputReal, Label: "Decimal input", HTMLElement: "input", HTMLType: "number", Attrs: numericAttrs},
	{Value: InputEmail, Label: "Email input", HTMLElement: "input", HTMLType: "email", Attrs: defaultValueAttrs},
	{Value: Radio, Label: "Radio buttons", HTMLElement: "input", HTMLType: "radio", Attrs: optionAttrs},
	{Value: CheckboxMulti, Label: "Checkbox group", HTMLElement: "input", HTMLType: "checkbox", Attrs: optionAttrs},
	{Value: Checkbox, Label: "Single checkbox", HTMLElement: "input", HTMLType: "checkbox", Attrs: checkboxAttrs},
}

var displays = []DisplayInfo{
	{Value: DisplayText, Label: "Plain text"},
	{Value: DisplayHTML, Label: "HTML", Attrs: []AttrSpec{
		{Key: "sanitize", Kind: AttrBool},
	}},
	{Value: DisplayDate, Label: "Date", Attrs: []AttrSpec{
		{Key: "format", Kind: AttrString},
	}},
	{Value: DisplayDatetime, Label: "Date and time", Attrs: []AttrSpec{
		{Key: "format", Kind: AttrString},
		{Key: "relative", Kind: AttrBool},
	}},
	{Value: DisplayStars, Label: "Star rating", Attrs: []AttrSpec{
		{Key: "max_stars", Kind: AttrInt},
		{Key: "show_number", Kind: AttrBool},
	}},
	{Value: DisplayCurrency, Label: "Currency", Attrs: []AttrSpec{
		{Key: "currency_code", Kind: AttrString},
		{Key: "decimal_places", Kind: AttrInt},
		{Key: "thousands_separator", Kind: AttrBool},
	}},
	{Value: DisplayBoolean, Label: "Boolean", Attrs: []AttrSpec{
		{Key: "true_text", Kind: AttrString},
		{Key: "false_text", Kind: AttrString},
		{Key: "true_class", Kind: AttrString},
		{Key: "false_class", Kind: AttrString},
		{Key: "show_icon", Kind: AttrBool},
	}},
	{Value: DisplayBadge, Label: "Badge", Attrs: []AttrSpec{
		{Key: "badge_color_map", Kind: AttrJSONObject},
	}},
	{Value: DisplayList, Label: "List", Attrs: []AttrSpec{
		{Key: "display_as", Kind: AttrEnum, Enum: []string{"badges", "comma", "bullet"}},
		{Key: "separator", Kind: AttrString, KeepSpace: true},
		{Key: "hide_if_empty", Kind: AttrBool},
	}},
	{Value: DisplayFileLink, Label: "File link", Attrs: []AttrSpec{
		{Key: "show_size", Kind: AttrBool},
		{Key: "show_icon", Kind: AttrBool},
		{Key: "download", Kind: AttrBool},
	}},
}

// CommonViewAttrs are extracted for every detail view field regardless of
// its display type.
var CommonViewAttrs = []AttrSpec{
	{Key: "width", Kind: AttrString},
	{Key: "inline_group", Kind: AttrString},
	{Key: "full_width", Kind: AttrBool},
	{Key: "hide_label", Kind: AttrBool},
	{Key: "style_class", Kind: AttrString},
}

var (
	defaultValueAttrs = []AttrSpec{
		{Key: "default_value", Kind: AttrString},
	}
	numericAttrs = []AttrSpec{
		{Key: "default_value", Kind: AttrString},
		{Key: "min_value", Kind: AttrNumeric},
		{Key: "max_value", Kind: AttrNumeric},
	}
	optionAttrs = []AttrSpec{
		{Key: "default_value", Kind: AttrString},
		{Key: "options", Kind: AttrOptions},
	}
	checkboxAttrs = []AttrSpec{
		{Key: "default_value", Kind: AttrBoolChoice},
	}
)

var (
	dataTypeByValue = make(map[DataType]DataTypeInfo, len(dataTypes))
	elementByValue  = make(map[ElementType]ElementInfo, len(elements))
	displayByValue  = make(map[DisplayType]DisplayInfo, len(displays))
)

func init() {
	for _, d := range dataTypes {
		dataTypeByValue[d.Value] = d
	}
	for _, e := range elements {
		elementByValue[e.Value] = e
	}
	for _, d := range displays {
		displayByValue[d.Value] = d
	}
}

// LookupDataType returns the info for a data type key. Keys are matched
// case-insensitively after trimming.
func LookupDataType(s string) (DataTypeInfo, bool) {
	d, ok := dataTypeByValue[DataType(strings.ToLower(strings.TrimSpace(s)))]
	return d, ok
}

// IsDataType reports whether s names a known data type.
func IsDataType(s string) bool {
	_, ok := LookupDataType(s)
	return ok
}

// RecommendedElement returns the element type offered for a data type.
// Unknown data types get input-text.
func RecommendedElement(dataType string) ElementType {
	if d, ok := LookupDataType(dataType); ok {
		return d.Element
	}
	return InputText
}

// RecommendedDisplay returns the display type offered for a data type.
// Unknown data types get text.
func RecommendedDisplay(dataType string) DisplayType {
	if d, ok := LookupDataType(dataType); ok {
		return d.Display
	}
	return DisplayText
}

// SQLType returns the column affinity for a data type, TEXT when unknown.
func SQLType(dataType string) string {
	if d, ok := LookupDataType(dataType); ok {
		return d.SQLType
	}
	return "TEXT"
}

// LookupElement returns the info for an element type key.
func LookupElement(s string) (ElementInfo, bool) {
	e, ok := elementByValue[ElementType(strings.TrimSpace(s))]
	return e, ok
}

// ParseElementType resolves s to an element type, falling back to input-text.
func ParseElementType(s string) ElementType {
	if e, ok := LookupElement(s); ok {
		return e.Value
	}
	return InputText
}

// LookupDisplay returns the info for a display type key.
func LookupDisplay(s string) (DisplayInfo, bool) {
	d, ok := displayByValue[DisplayType(strings.TrimSpace(s))]
	return d, ok
}

// ParseDisplayType resolves s to a display type, falling back to text.
func ParseDisplayType(s string) DisplayType {
	if d, ok := LookupDisplay(s); ok {
		return d.Value
	}
	return DisplayText
}

// ElementAttrs returns the attribute schema of an element type. Unknown
// types use the input-text schema.
func ElementAttrs(et ElementType) []AttrSpec {
	return elementByValue[ParseElementType(string(et))].Attrs
}

// DisplayAttrs returns the attribute schema of a display type. Unknown
// types use the text schema, which has no attributes.
func DisplayAttrs(dt DisplayType) []AttrSpec {
	return displayByValue[ParseDisplayType(string(dt))].Attrs
}

// DataTypes returns the data type table in declaration order.
func DataTypes() []DataTypeInfo { return append([]DataTypeInfo(nil), dataTypes...) }

// Elements returns the element type table in declaration order.
func Elements() []ElementInfo { return append([]ElementInfo(nil), elements...) }

// Displays returns the display type table in declaration order.
func Displays() []DisplayInfo { return append([]DisplayInfo(nil), displays...) }
