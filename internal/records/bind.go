package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/store"
	"github.com/matthewbaird/autoboard/internal/types"
)

var dateLayouts = map[fieldtype.DataType][]string{
	fieldtype.DataYMD: {"2006-01-02"},
	fieldtype.DataDatetime: {
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	},
}

func invalidf(format string, args ...any) error {
	return &service.ValidationError{Message: fmt.Sprintf(format, args...)}
}

// bind turns request values into a row for the record table. Only fields
// on the form are accepted; the system columns are ignored. Unless partial,
// missing fields take their default_value and required fields must be set.
func (s *Service) bind(ctx context.Context, form []types.CreateEditField, values map[string]any, partial bool) (types.Record, error) {
	byName := make(map[string]types.CreateEditField, len(form))
	for _, f := range form {
		byName[f.Name] = f
	}
	for k := range values {
		if _, ok := byName[k]; !ok && !slices.Contains(systemColumns, k) {
			return nil, invalidf("Unknown field %q", k)
		}
	}

	row := types.Record{}
	for _, f := range form {
		raw, present := values[f.Name]
		if !present {
			if partial {
				continue
			}
			if def, ok := f.Attrs.Get("default_value"); ok {
				raw = def
			}
		}
		v, err := s.value(ctx, f, raw)
		if err != nil {
			return nil, err
		}
		if v == nil && f.Required {
			return nil, invalidf("%s is required", label(f))
		}
		if v == nil && !present {
			continue
		}
		row[f.Name] = v
	}
	return row, nil
}

func label(f types.CreateEditField) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// value checks one field value against its element type and converts it
// to the column's storage type. Blank input yields nil.
func (s *Service) value(ctx context.Context, f types.CreateEditField, raw any) (any, error) {
	if f.Name == types.AttachmentColumn {
		return s.attachment(ctx, f, raw)
	}
	if fieldtype.ElementType(f.ElementType) == fieldtype.Checkbox {
		// an unchecked box is a value, not a blank
		b, err := toBool(raw)
		if err != nil {
			return nil, invalidf("%s: %v", label(f), err)
		}
		if !b && f.Required {
			return nil, nil
		}
		return boolValue(b), nil
	}
	if isBlank(raw) {
		return nil, nil
	}

	switch fieldtype.ElementType(f.ElementType) {
	case fieldtype.InputInteger:
		n, err := toFloat(raw)
		if err != nil || n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, invalidf("%s must be a whole number", label(f))
		}
		if err := checkRange(f, n); err != nil {
			return nil, err
		}
		return int64(n), nil
	case fieldtype.InputReal:
		n, err := toFloat(raw)
		if err != nil {
			return nil, invalidf("%s must be a number", label(f))
		}
		if err := checkRange(f, n); err != nil {
			return nil, err
		}
		return store64(f.DataType, n), nil
	case fieldtype.InputEmail:
		text, err := toText(raw)
		if err != nil {
			return nil, invalidf("%s: %v", label(f), err)
		}
		if addr, err := mail.ParseAddress(text); err != nil || addr.Address != text {
			return nil, invalidf("%s must be an email address", label(f))
		}
		return text, nil
	case fieldtype.Radio:
		text, err := toText(raw)
		if err != nil {
			return nil, invalidf("%s: %v", label(f), err)
		}
		if err := checkOption(f, text); err != nil {
			return nil, err
		}
		return storeText(f, text)
	case fieldtype.CheckboxMulti:
		picks, err := toTexts(raw)
		if err != nil {
			return nil, invalidf("%s: %v", label(f), err)
		}
		for _, p := range picks {
			if err := checkOption(f, p); err != nil {
				return nil, err
			}
		}
		return strings.Join(picks, ","), nil
	}

	text, err := toText(raw)
	if err != nil {
		return nil, invalidf("%s: %v", label(f), err)
	}
	return storeText(f, text)
}

// storeText converts text to the column's storage type.
func storeText(f types.CreateEditField, text string) (any, error) {
	dt, _ := fieldtype.LookupDataType(f.DataType)
	switch dt.Value {
	case fieldtype.DataInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, invalidf("%s must be a whole number", label(f))
		}
		return n, nil
	case fieldtype.DataFloat, fieldtype.DataReal:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, invalidf("%s must be a number", label(f))
		}
		return n, nil
	case fieldtype.DataBoolean:
		b, err := toBool(text)
		if err != nil {
			return nil, invalidf("%s: %v", label(f), err)
		}
		return boolValue(b), nil
	case fieldtype.DataYMD, fieldtype.DataDatetime:
		for _, layout := range dateLayouts[dt.Value] {
			if _, err := time.Parse(layout, text); err == nil {
				return text, nil
			}
		}
		if dt.Value == fieldtype.DataYMD {
			return nil, invalidf("%s must be a date (YYYY-MM-DD)", label(f))
		}
		return nil, invalidf("%s must be a date and time", label(f))
	}
	return text, nil
}

// store64 keeps a decimal for real columns and truncates for the rest.
func store64(dataType string, n float64) any {
	if fieldtype.SQLType(dataType) == "INTEGER" {
		return int64(n)
	}
	return n
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func checkRange(f types.CreateEditField, n float64) error {
	if lo, ok := attrNumber(f, "min_value"); ok && n < lo {
		return invalidf("%s must be at least %s", label(f), strconv.FormatFloat(lo, 'f', -1, 64))
	}
	if hi, ok := attrNumber(f, "max_value"); ok && n > hi {
		return invalidf("%s must be at most %s", label(f), strconv.FormatFloat(hi, 'f', -1, 64))
	}
	return nil
}

func attrNumber(f types.CreateEditField, key string) (float64, bool) {
	v, ok := f.Attrs.Get(key)
	if !ok {
		return 0, false
	}
	n, err := toFloat(v)
	return n, err == nil
}

func checkOption(f types.CreateEditField, value string) error {
	opts := f.Options()
	if len(opts) == 0 {
		return nil
	}
	for _, o := range opts {
		if o.Value == value {
			return nil
		}
	}
	return invalidf("%s: %q is not one of the options", label(f), value)
}

// attachment accepts file ids as a list or a comma separated string and
// stores them comma separated. Every id must name an uploaded file.
func (s *Service) attachment(ctx context.Context, f types.CreateEditField, raw any) (any, error) {
	if isBlank(raw) {
		return nil, nil
	}
	parts, err := toTexts(raw)
	if err != nil {
		return nil, invalidf("%s: %v", label(f), err)
	}
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, invalidf("%s: %q is not a file id", label(f), p)
		}
		if s.files != nil {
			if _, err := s.files.GetFile(ctx, id); errors.Is(err, store.ErrNotFound) {
				return nil, invalidf("%s: file %d does not exist", label(f), id)
			} else if err != nil {
				return nil, err
			}
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return strings.Join(ids, ","), nil
}

func toText(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("unsupported value %T", raw)
}

// toTexts accepts a list of scalars or one comma separated string.
func toTexts(raw any) ([]string, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			items = append(items, s)
		}
	default:
		items = []any{raw}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		text, err := toText(it)
		if err != nil {
			return nil, err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

func toFloat(raw any) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int64:
		n = float64(v)
	case int:
		n = float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unsupported value %T", raw)
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, errors.New("not a finite number")
	}
	return n, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off", "no":
			return false, nil
		case "1", "true", "on", "yes", "checked":
			return true, nil
		}
		return false, fmt.Errorf("%q is not a yes/no value", v)
	}
	return false, fmt.Errorf("unsupported value %T", raw)
}
