package assemble

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/types"
)

// OptionRow is one option line of a radio or checkbox-multi row.
type OptionRow struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// extractAttrs keeps only the attributes the schema defines, coerced per
// kind, in schema order. Entries that fail to coerce are omitted.
func extractAttrs(specs []fieldtype.AttrSpec, raw map[string]string, options []OptionRow) types.Attrs {
	var out types.Attrs
	for _, spec := range specs {
		if spec.Kind == fieldtype.AttrOptions {
			if opts := buildOptions(options); len(opts) > 0 {
				out = append(out, types.Attr{Key: spec.Key, Value: opts})
			}
			continue
		}
		if v, ok := coerce(spec, raw[spec.Key]); ok {
			out = append(out, types.Attr{Key: spec.Key, Value: v})
		}
	}
	return out
}

func coerce(spec fieldtype.AttrSpec, raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	switch spec.Kind {
	case fieldtype.AttrString:
		if s == "" {
			return nil, false
		}
		if spec.KeepSpace {
			return raw, true
		}
		return s, true
	case fieldtype.AttrBool:
		if parseBool(s) {
			return true, true
		}
		return nil, false
	case fieldtype.AttrBoolChoice:
		return s == "true", true
	case fieldtype.AttrInt:
		n, ok := parseInt(s)
		return n, ok
	case fieldtype.AttrNumeric:
		if s == "" {
			return nil, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f, true
		}
		return s, true
	case fieldtype.AttrJSONObject:
		if s == "" {
			return nil, false
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
			return nil, false
		}
		return obj, true
	case fieldtype.AttrEnum:
		if s == "" || !spec.AllowsValue(s) {
			return nil, false
		}
		return s, true
	}
	return nil, false
}

func buildOptions(rows []OptionRow) []types.Option {
	var opts []types.Option
	for _, r := range rows {
		v, l := strings.TrimSpace(r.Value), strings.TrimSpace(r.Label)
		if v == "" || l == "" {
			continue
		}
		opts = append(opts, types.Option{Value: v, Label: l})
	}
	return opts
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes", "checked":
		return true
	}
	return false
}

// parseInt accepts plain integers and truncates decimal input. Values
// outside the 32-bit range are refused.
func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
