package engine

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SortableSerialize encodes f as an 8-byte string whose lexicographic order
// equals the numeric order of the inputs, across signs and zero.
//
// Negative values invert every bit so that larger magnitudes sort earlier;
// non-negative values set the sign bit so they sort after every negative
// value. This is the standard IEEE-754 order-preserving transform.
func SortableSerialize(f float64) string {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], bits)
	return string(buf[:])
}

// SortableUnserialize reverses SortableSerialize.
func SortableUnserialize(s string) (float64, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("engine: sortable value must be 8 bytes, got %d", len(s))
	}
	bits := binary.BigEndian.Uint64([]byte(s))
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}
