// Package attr provides the typed field values carried by records.
//
// Values are a closed tagged union: there is no open-ended type hierarchy,
// and every consumer (term marshaling, sort keys, facets, payloads) switches
// exhaustively over Kind.
package attr

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindText represents a textual value.
	KindText
	// KindLong represents an integer value.
	KindLong
	// KindFloat represents a floating-point value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
	// KindDate represents a calendar date (time-of-day is ignored).
	KindDate
	// KindDateTime represents a full timestamp.
	KindDateTime
	// KindList represents a multi-valued field.
	KindList
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindList:
		return "List"
	default:
		return "Invalid"
	}
}

// Value is a small typed field value.
//
// The representation avoids reflection and fmt-based stringification so that
// marshaling stays deterministic.
//
// NOTE: This is also used inside persisted payloads; keep the JSON form stable.
type Value struct {
	Kind Kind      `json:"k"`
	S    string    `json:"s,omitempty"`
	I64  int64     `json:"i,omitempty"`
	F64  float64   `json:"f,omitempty"`
	B    bool      `json:"b,omitempty"`
	T    time.Time `json:"t,omitzero"`
	L    []Value   `json:"l,omitempty"`
}

// Map is the prepared attribute mapping of a record, keyed by field name.
type Map map[string]Value

// Text returns a text Value.
func Text(s string) Value { return Value{Kind: KindText, S: s} }

// Long returns an integer Value.
func Long(i int64) Value { return Value{Kind: KindLong, I64: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, B: b} }

// Date returns a calendar-date Value. The time-of-day portion of t is ignored.
func Date(t time.Time) Value { return Value{Kind: KindDate, T: t} }

// DateTime returns a timestamp Value.
func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, T: t} }

// List returns a multi-valued Value.
func List(vs ...Value) Value { return Value{Kind: KindList, L: vs} }

// IsZero reports whether v is the zero (invalid) Value.
func (v Value) IsZero() bool { return v.Kind == KindInvalid }

// AsText returns the text value if Kind is KindText.
func (v Value) AsText() (string, bool) {
	if v.Kind != KindText {
		return "", false
	}
	return v.S, true
}

// AsLong returns the integer value if Kind is KindLong.
func (v Value) AsLong() (int64, bool) {
	if v.Kind != KindLong {
		return 0, false
	}
	return v.I64, true
}

// AsTime returns the timestamp if Kind is KindDate or KindDateTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindDate && v.Kind != KindDateTime {
		return time.Time{}, false
	}
	return v.T, true
}

// Elements returns the list elements for KindList, or the value itself as a
// single-element view for any other kind. Facet tallies rely on this so that
// multi-valued fields count per element.
func (v Value) Elements() []Value {
	if v.Kind == KindList {
		return v.L
	}
	return []Value{v}
}

// Key returns a stable string representation for use as a facet tally key.
//
// It must remain stable across versions: facet output ordering and tests
// depend on it.
func (v Value) Key() string {
	switch v.Kind {
	case KindText:
		return v.S
	case KindLong:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindDate:
		return v.T.Format("2006-01-02")
	case KindDateTime:
		return v.T.Format(time.RFC3339)
	case KindList:
		parts := make([]string, len(v.L))
		for i := range v.L {
			parts[i] = v.L[i].Key()
		}
		return strings.Join(parts, "\x1f")
	default:
		return ""
	}
}
