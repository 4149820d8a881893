package fieldtype

import "fmt"

// AttrKind controls how a raw attribute entry is coerced.
type AttrKind int

const (
	// AttrString keeps the trimmed text, omitted when empty.
	AttrString AttrKind = iota
	// AttrBool is included only when true.
	AttrBool
	// AttrInt is parsed as an integer, omitted when unparsable.
	AttrInt
	// AttrNumeric becomes a number when it parses as one, else the raw text.
	AttrNumeric
	// AttrJSONObject is parsed from JSON object text, omitted on parse failure.
	AttrJSONObject
	// AttrEnum is kept only when it is one of the listed values.
	AttrEnum
	// AttrOptions is an ordered list of value/label pairs, omitted when empty.
	AttrOptions
	// AttrBoolChoice is always present: true only for the "true" choice.
	AttrBoolChoice
)

// String returns the kind name used in the field type catalog.
func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrBool:
		return "bool"
	case AttrInt:
		return "int"
	case AttrNumeric:
		return "number_or_string"
	case AttrJSONObject:
		return "json_object"
	case AttrEnum:
		return "enum"
	case AttrOptions:
		return "options"
	case AttrBoolChoice:
		return "bool_choice"
	default:
		return "unknown"
	}
}

// MarshalText lets catalogs render the kind by name.
func (k AttrKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *AttrKind) UnmarshalText(b []byte) error {
	for c := AttrString; c <= AttrBoolChoice; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown attribute kind %q", b)
}

// AttrSpec is one legal extra attribute of an element or display type.
type AttrSpec struct {
	Key       string   `json:"key"`
	Kind      AttrKind `json:"kind"`
	Enum      []string `json:"enum,omitempty"`
	KeepSpace bool     `json:"-"` // AttrString only: keep surrounding whitespace
}

// AllowsValue reports whether v is legal for an AttrEnum spec. Other kinds
// accept any value.
func (a AttrSpec) AllowsValue(v string) bool {
	if a.Kind != AttrEnum {
		return true
	}
	for _, e := range a.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// AttrKeys returns the keys of specs in schema order.
func AttrKeys(specs []AttrSpec) []string {
	keys := make([]string, len(specs))
	for i, s := range specs {
		keys[i] = s.Key
	}
	return keys
}

// FindAttr returns the spec with the given key.
func FindAttr(specs []AttrSpec, key string) (AttrSpec, bool) {
	for _, s := range specs {
		if s.Key == key {
			return s, true
		}
	}
	return AttrSpec{}, false
}
