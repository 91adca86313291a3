// Package marshal converts typed field values into the two string encodings
// the retrieval engine consumes: searchable terms and order-preserving sort
// keys.
//
// Both encodings are pure and deterministic. The sort-key encoding guarantees
// that for two values of the same kind, string comparison of the encodings
// agrees with the semantic ordering of the values — that property is what the
// engine's key sorter relies on.
package marshal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/engine"
)

// ErrNegativeLong is returned by SortKey for negative integers: the
// fixed-width decimal scheme cannot represent them without breaking
// lexicographic order, so they are rejected rather than silently misordered.
var ErrNegativeLong = errors.New("marshal: negative integers have no sortable encoding")

// Term encodes a value as a searchable term.
//
// Dates become the digit string YYYYMMDD000000 and timestamps
// YYYYMMDDHHMMSS, with a six-digit microsecond suffix only when the
// microsecond component is non-zero. Every other kind is its case-folded
// textual form. List values encode per element, joined by single spaces, so
// that free-text indexing sees each element.
func Term(v attr.Value) string {
	switch v.Kind {
	case attr.KindDate:
		return date(v.T)
	case attr.KindDateTime:
		return dateTime(v.T)
	case attr.KindList:
		parts := make([]string, len(v.L))
		for i := range v.L {
			parts[i] = Term(v.L[i])
		}
		return strings.Join(parts, " ")
	default:
		return text(v)
	}
}

// SortKey encodes a value for a sort slot.
//
// Date and timestamp values reuse the term digit strings (lexicographic
// order is chronological by construction). Booleans become 't' or 'f'.
// Floats delegate to the engine's monotonic serialization. Integers become
// fixed-width 12-digit decimals; only non-negative values below 10^12 sort
// correctly, and negatives are rejected with ErrNegativeLong. Text is
// case-folded. List values join their element keys with a unit separator.
func SortKey(v attr.Value) (string, error) {
	switch v.Kind {
	case attr.KindDate:
		return date(v.T), nil
	case attr.KindDateTime:
		return dateTime(v.T), nil
	case attr.KindBool:
		if v.B {
			return "t", nil
		}
		return "f", nil
	case attr.KindFloat:
		return engine.SortableSerialize(v.F64), nil
	case attr.KindLong:
		if v.I64 < 0 {
			return "", fmt.Errorf("%w: %d", ErrNegativeLong, v.I64)
		}
		return fmt.Sprintf("%012d", v.I64), nil
	case attr.KindList:
		parts := make([]string, len(v.L))
		for i := range v.L {
			key, err := SortKey(v.L[i])
			if err != nil {
				return "", err
			}
			parts[i] = key
		}
		return strings.Join(parts, "\x1f"), nil
	default:
		return text(v), nil
	}
}

func text(v attr.Value) string {
	switch v.Kind {
	case attr.KindText:
		return strings.ToLower(v.S)
	case attr.KindLong:
		return strconv.FormatInt(v.I64, 10)
	case attr.KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case attr.KindBool:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func date(t time.Time) string {
	return fmt.Sprintf("%04d%02d%02d000000", t.Year(), t.Month(), t.Day())
}

func dateTime(t time.Time) string {
	s := fmt.Sprintf("%04d%02d%02d%02d%02d%02d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	if micro := t.Nanosecond() / 1000; micro != 0 {
		s += fmt.Sprintf("%06d", micro)
	}
	return s
}
