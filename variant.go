package renderdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Variant is the tagged-union dynamic value that backs a DocumentTemplate's
// Variables bag. Every value reachable from it is normalised into one of
// these kinds before the templating engine ever sees it.
type Variant struct {
	kind variantKind
	b    bool
	i    int64
	f    float64
	s    string
	list []Variant
	m    *VariantMap
}

type variantKind uint8

const (
	variantNull variantKind = iota
	variantBool
	variantInt
	variantFloat
	variantString
	variantList
	variantMap
)

// NullVariant is the zero Variant, representing a JSON null.
var NullVariant = Variant{kind: variantNull}

func BoolVariant(v bool) Variant  { return Variant{kind: variantBool, b: v} }
func IntVariant(v int64) Variant  { return Variant{kind: variantInt, i: v} }
func FloatVariant(v float64) Variant { return Variant{kind: variantFloat, f: v} }
func StringVariant(v string) Variant { return Variant{kind: variantString, s: v} }
func ListVariant(v []Variant) Variant { return Variant{kind: variantList, list: v} }
func MapVariantValue(v *VariantMap) Variant { return Variant{kind: variantMap, m: v} }

// IsNull reports whether the variant holds a null value.
func (v Variant) IsNull() bool { return v.kind == variantNull }

// String renders the variant as a string, the way every helper that
// stringifies an argument (upper, lower, ifEquals) needs it rendered.
// Null becomes "". Lists and maps render as "" here; helpers that need
// structured access use AsList/AsMap instead.
func (v Variant) String() string {
	switch v.kind {
	case variantNull:
		return ""
	case variantBool:
		if v.b {
			return "true"
		}
		return "false"
	case variantInt:
		return formatInt(v.i)
	case variantFloat:
		return formatFloat(v.f)
	case variantString:
		return v.s
	default:
		return ""
	}
}

// AsList returns the underlying list and whether the variant is a list.
func (v Variant) AsList() ([]Variant, bool) {
	if v.kind != variantList {
		return nil, false
	}
	return v.list, true
}

// AsMap returns the underlying map and whether the variant is a map.
func (v Variant) AsMap() (*VariantMap, bool) {
	if v.kind != variantMap {
		return nil, false
	}
	return v.m, true
}

// AsFloat returns the variant as a float64, converting int/string when
// possible, and whether the conversion succeeded.
func (v Variant) AsFloat() (float64, bool) {
	switch v.kind {
	case variantFloat:
		return v.f, true
	case variantInt:
		return float64(v.i), true
	case variantString:
		return parseFloatLenient(v.s)
	default:
		return 0, false
	}
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloatLenient(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// VariantMap is a string-keyed, case-insensitive, order-preserving map of
// Variant values. Lookups normalise the key with strings.ToLower; iteration
// (Keys) preserves original insertion order and original-cased keys.
type VariantMap struct {
	keys   []string          // original-cased, insertion order
	index  map[string]int    // lower-cased key -> index into keys/values
	values map[string]Variant // lower-cased key -> value
}

// NewEmptyVariantMap builds an empty VariantMap.
func NewEmptyVariantMap() *VariantMap {
	return &VariantMap{index: map[string]int{}, values: map[string]Variant{}}
}

// NewVariantMap deep-converts a decoded JSON-ish value (as produced by
// encoding/json.Unmarshal into an any, or any hand-built map[string]any)
// into a VariantMap.
func NewVariantMap(src map[string]any) *VariantMap {
	vm := NewEmptyVariantMap()
	// map[string]any has no stable order in Go; callers that need
	// deterministic key order should build the VariantMap directly via
	// Set in the order they want, or decode via json.Decoder with
	// UseNumber into an ordered structure upstream. This constructor
	// is for convenience construction (tests, programmatic callers).
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vm.Set(k, convertAny(src[k]))
	}
	return vm
}

// Set stores value under key, preserving key's original case for
// iteration but indexing case-insensitively. Re-setting an existing key
// (case-insensitively) overwrites the value without changing its
// recorded insertion position or original case.
func (m *VariantMap) Set(key string, value Variant) {
	lower := lowerASCII(key)
	if _, ok := m.index[lower]; ok {
		// Key already present: keep the original-cased key from first
		// insertion, only update the value.
		m.values[lower] = value
		return
	}
	m.index[lower] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values[lower] = value
}

// Get looks up key case-insensitively. A missing key returns NullVariant
// and false rather than an error; callers rendering templates treat the
// zero value as empty output.
func (m *VariantMap) Get(key string) (Variant, bool) {
	if m == nil {
		return NullVariant, false
	}
	lower := lowerASCII(key)
	v, ok := m.values[lower]
	return v, ok
}

// Keys returns the map's keys in original insertion order and original
// case.
func (m *VariantMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of entries.
func (m *VariantMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// UnmarshalJSON decodes a JSON object into m, preserving the wire order of
// its keys — a plain `json.Unmarshal` into `map[string]any` would lose
// that order, which the insertion-order iteration promised by Keys
// depends on. A JSON `null` decodes to an empty VariantMap.
func (m *VariantMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeVariantJSON(dec)
	if err != nil {
		return err
	}
	if v.IsNull() {
		*m = *NewEmptyVariantMap()
		return nil
	}
	vm, ok := v.AsMap()
	if !ok {
		return fmt.Errorf("renderdoc: VariantMap must decode from a JSON object, got %s", string(data))
	}
	*m = *vm
	return nil
}

// MarshalJSON encodes m as a JSON object, in insertion order.
func (m *VariantMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		value, _ := m.Get(key)
		vb, err := marshalVariantJSON(value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeVariantJSON reads one JSON value from dec — scalar, object, or
// array — into a Variant, recursing into nested objects/arrays so their
// key order survives too.
func decodeVariantJSON(dec *json.Decoder) (Variant, error) {
	tok, err := dec.Token()
	if err != nil {
		return NullVariant, err
	}
	switch t := tok.(type) {
	case nil:
		return NullVariant, nil
	case bool:
		return BoolVariant(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntVariant(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return NullVariant, fmt.Errorf("renderdoc: decoding number %q: %w", t, err)
		}
		return FloatVariant(f), nil
	case string:
		return StringVariant(t), nil
	case json.Delim:
		switch t {
		case '{':
			vm := NewEmptyVariantMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return NullVariant, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return NullVariant, fmt.Errorf("renderdoc: expected object key, got %v", keyTok)
				}
				value, err := decodeVariantJSON(dec)
				if err != nil {
					return NullVariant, err
				}
				vm.Set(key, value)
			}
			if _, err := dec.Token(); err != nil { // consume closing '}'
				return NullVariant, err
			}
			return MapVariantValue(vm), nil
		case '[':
			var list []Variant
			for dec.More() {
				value, err := decodeVariantJSON(dec)
				if err != nil {
					return NullVariant, err
				}
				list = append(list, value)
			}
			if _, err := dec.Token(); err != nil { // consume closing ']'
				return NullVariant, err
			}
			return ListVariant(list), nil
		}
	}
	return NullVariant, fmt.Errorf("renderdoc: unexpected JSON token %v", tok)
}

// marshalVariantJSON encodes v as JSON, recursing into lists and maps so
// a nested VariantMap's own MarshalJSON keeps its key order.
func marshalVariantJSON(v Variant) ([]byte, error) {
	switch v.kind {
	case variantNull:
		return []byte("null"), nil
	case variantBool:
		return json.Marshal(v.b)
	case variantInt:
		return json.Marshal(v.i)
	case variantFloat:
		return json.Marshal(v.f)
	case variantString:
		return json.Marshal(v.s)
	case variantList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := marshalVariantJSON(e)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case variantMap:
		if v.m == nil {
			return []byte("null"), nil
		}
		return v.m.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// convertAny recursively normalises a decoded-JSON-shaped value into a
// Variant: whole-number floats become int64, everything else is mapped
// to the matching Variant kind.
func convertAny(v any) Variant {
	switch t := v.(type) {
	case nil:
		return NullVariant
	case bool:
		return BoolVariant(t)
	case string:
		return StringVariant(t)
	case int:
		return IntVariant(int64(t))
	case int64:
		return IntVariant(t)
	case float64:
		if isWholeNumber(t) {
			return IntVariant(int64(t))
		}
		return FloatVariant(t)
	case []any:
		out := make([]Variant, len(t))
		for i, e := range t {
			out[i] = convertAny(e)
		}
		return ListVariant(out)
	case map[string]any:
		vm := NewVariantMap(t)
		return MapVariantValue(vm)
	case *VariantMap:
		return MapVariantValue(t)
	case []Variant:
		return ListVariant(t)
	case Variant:
		return t
	default:
		return NullVariant
	}
}

func isWholeNumber(f float64) bool {
	return f == float64(int64(f))
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
