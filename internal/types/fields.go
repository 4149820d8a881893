package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
)

// Attr is one extra attribute of a field config.
type Attr struct {
	Key   string
	Value any
}

// Attrs is a sparse, ordered attribute bag. Its legal keys are determined
// by the field's element or display type.
type Attrs []Attr

// Get returns the value stored under key.
func (a Attrs) Get(key string) (any, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key, appending it when absent.
func (a *Attrs) Set(key string, v any) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: v})
}

// Keys returns the attribute keys in order.
func (a Attrs) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// CreateEditField is one field of the create/edit form document.
type CreateEditField struct {
	Name        string
	Label       string
	DataType    string
	ElementType string
	Required    bool
	Order       int
	Attrs       Attrs
}

// Options returns the option list of a radio or checkbox-multi field.
func (f CreateEditField) Options() []Option {
	v, ok := f.Attrs.Get("options")
	if !ok {
		return nil
	}
	opts, _ := v.([]Option)
	return opts
}

// MarshalJSON writes the base keys first, then the attributes in order.
func (f CreateEditField) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("name", f.Name)
	w.field("label", f.Label)
	w.field("data_type", f.DataType)
	w.field("element_type", f.ElementType)
	w.field("required", f.Required)
	w.field("order", f.Order)
	for _, a := range f.Attrs {
		w.field(a.Key, a.Value)
	}
	return w.bytes()
}

// UnmarshalJSON reads a stored field; unknown keys land in Attrs.
func (f *CreateEditField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = CreateEditField{}
	if err := takeFields(raw, map[string]any{
		"name":         &f.Name,
		"label":        &f.Label,
		"data_type":    &f.DataType,
		"element_type": &f.ElementType,
		"required":     &f.Required,
		"order":        &f.Order,
	}); err != nil {
		return err
	}
	attrs, err := takeAttrs(raw, fieldtype.AttrKeys(fieldtype.ElementAttrs(fieldtype.ElementType(f.ElementType))))
	if err != nil {
		return err
	}
	f.Attrs = attrs
	return nil
}

// ViewField is one field of the detail view document.
type ViewField struct {
	Name        string
	Label       string
	DisplayType string
	Order       int
	Section     string
	Width       string
	InlineGroup string
	FullWidth   bool
	HideLabel   bool
	StyleClass  string
	Attrs       Attrs
}

// MarshalJSON writes base keys, then the sparse common keys, then the
// display attributes.
func (f ViewField) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("name", f.Name)
	w.field("label", f.Label)
	w.field("display_type", f.DisplayType)
	w.field("order", f.Order)
	if f.Section != "" {
		w.field("section", f.Section)
	}
	if f.Width != "" {
		w.field("width", f.Width)
	}
	if f.InlineGroup != "" {
		w.field("inline_group", f.InlineGroup)
	}
	if f.FullWidth {
		w.field("full_width", true)
	}
	if f.HideLabel {
		w.field("hide_label", true)
	}
	if f.StyleClass != "" {
		w.field("style_class", f.StyleClass)
	}
	for _, a := range f.Attrs {
		w.field(a.Key, a.Value)
	}
	return w.bytes()
}

// UnmarshalJSON reads a stored field; unknown keys land in Attrs.
func (f *ViewField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = ViewField{}
	if err := takeFields(raw, map[string]any{
		"name":         &f.Name,
		"label":        &f.Label,
		"display_type": &f.DisplayType,
		"order":        &f.Order,
		"section":      &f.Section,
		"width":        &f.Width,
		"inline_group": &f.InlineGroup,
		"full_width":   &f.FullWidth,
		"hide_label":   &f.HideLabel,
		"style_class":  &f.StyleClass,
	}); err != nil {
		return err
	}
	attrs, err := takeAttrs(raw, fieldtype.AttrKeys(fieldtype.DisplayAttrs(fieldtype.DisplayType(f.DisplayType))))
	if err != nil {
		return err
	}
	f.Attrs = attrs
	return nil
}

// takeFields decodes and removes the named keys from raw.
func takeFields(raw map[string]json.RawMessage, dst map[string]any) error {
	for key, ptr := range dst {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, ptr); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		delete(raw, key)
	}
	return nil
}

// takeAttrs decodes what is left of raw into Attrs, schema keys first in
// schema order, any other keys after them in sorted order.
func takeAttrs(raw map[string]json.RawMessage, schemaOrder []string) (Attrs, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, k := range schemaOrder {
		if _, ok := raw[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range raw {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	attrs := make(Attrs, 0, len(keys))
	for _, k := range keys {
		var v any
		if k == "options" {
			var opts []Option
			if err := json.Unmarshal(raw[k], &opts); err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			v = opts
		} else if err := json.Unmarshal(raw[k], &v); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		attrs = append(attrs, Attr{Key: k, Value: v})
	}
	return attrs, nil
}

// objectWriter builds a JSON object with a fixed key order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) field(key string, v any) {
	if w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++
	k, _ := json.Marshal(key)
	b, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("field %q: %w", key, err)
		return
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(b)
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
