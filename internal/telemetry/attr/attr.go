// Package attr defines the closed scalar value type used for span
// attributes, span events and log record fields.
//
// Attribute bags across the engine map string keys to one of four scalar
// kinds: string, int64, float64 or bool. Unsupported types are stringified
// at the boundary so serialized output stays deterministic.
package attr

import (
	"fmt"
	"strconv"
	"time"
)

// Kind enumerates the scalar variants a Value may hold.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Value is one attribute value. The zero Value is an empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	b    bool
}

// String creates a string Value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Int creates an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, num: v} }

// Float creates a float Value.
func Float(v float64) Value { return Value{kind: KindFloat, flt: v} }

// Bool creates a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Coerce converts an arbitrary Go value into a Value, stringifying
// anything outside the closed scalar set.
func Coerce(v interface{}) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case time.Duration:
		return String(x.String())
	case fmt.Stringer:
		return String(x.String())
	case error:
		return String(x.Error())
	case nil:
		return String("")
	default:
		return String(fmt.Sprint(x))
	}
}

// Kind returns the scalar variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// Any unwraps the value to its native Go type.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.b
	default:
		return v.str
	}
}

// String renders the value as text.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// MarshalJSON renders the value as its native JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(nil, v.num, 10), nil
	case KindFloat:
		return strconv.AppendFloat(nil, v.flt, 'g', -1, 64), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	default:
		return strconv.AppendQuote(nil, v.str), nil
	}
}

// Map is an attribute bag.
type Map map[string]Value

// From coerces a free-form map into an attribute Map. Returns nil for
// empty input so callers can pass attribute bags straight through.
func From(m map[string]interface{}) Map {
	if len(m) == 0 {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = Coerce(v)
	}
	return out
}

// Clone returns a shallow copy of the map.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge overlays other onto a copy of m; keys in other win.
func (m Map) Merge(other Map) Map {
	if len(other) == 0 {
		return m.Clone()
	}
	out := make(Map, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
