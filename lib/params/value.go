package params

import (
	"math"
	"strconv"
	"strings"
)

// LeafType is the fixed numeric type of an editable leaf.
type LeafType int

const (
	Int LeafType = iota + 1
	Float
)

// FloatDigits is the number of fractional digits used when a float value is
// displayed or written back to the document.
const FloatDigits = 6

func (t LeafType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a typed parameter value.
type Value struct {
	typ LeafType
	i   int64
	f   float64
}

func IntValue(v int64) Value {
	return Value{typ: Int, i: v}
}

func FloatValue(v float64) Value {
	return Value{typ: Float, f: v}
}

func (v Value) Type() LeafType { return v.typ }

// Int returns the value as an integer, truncating floats.
func (v Value) Int() int64 {
	if v.typ == Float {
		return int64(v.f)
	}
	return v.i
}

func (v Value) Float() float64 {
	if v.typ == Int {
		return float64(v.i)
	}
	return v.f
}

func (v Value) IsZero() bool { return v.typ == 0 }

// String renders the canonical text of the value. This is what the editor
// shows and what is stored in the document.
func (v Value) String() string {
	switch v.typ {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', FloatDigits, 64)
	default:
		return ""
	}
}

// Wire renders the value for a command line. Floats keep full precision,
// shortest form, always with a decimal point.
func (v Value) Wire() string {
	if v.typ != Float {
		return v.String()
	}
	s := strconv.FormatFloat(v.f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseValue parses text as a value of type t. Surrounding whitespace is
// ignored. An Int accepts base-10 integers only; a Float accepts any finite
// real number.
func ParseValue(t LeafType, text string) (Value, error) {
	s := strings.TrimSpace(text)
	switch t {
	case Int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, &ValidationError{Type: t, Text: text, Err: err}
		}
		return IntValue(n), nil
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, &ValidationError{Type: t, Text: text, Err: err}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, &ValidationError{Type: t, Text: text, Err: ErrNotFinite}
		}
		return FloatValue(f), nil
	default:
		return Value{}, &ValidationError{Type: t, Text: text, Err: ErrUnknownType}
	}
}
