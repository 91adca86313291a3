package attr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	posted := time.Date(2009, 2, 25, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"text", Text("go"), "go"},
		{"long", Long(42), "42"},
		{"float", Float(2.5), "2.5"},
		{"bool", Bool(true), "true"},
		{"date", Date(posted), "2009-02-25"},
		{"datetime", DateTime(posted), "2009-02-25T10:30:00Z"},
		{"list", List(Text("a"), Text("b")), "a\x1fb"},
		{"invalid", Value{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Key())
		})
	}
}

func TestElements(t *testing.T) {
	assert.Len(t, List(Text("a"), Text("b")).Elements(), 2)
	assert.Equal(t, []Value{Text("a")}, Text("a").Elements())
}

func TestAccessors(t *testing.T) {
	s, ok := Text("x").AsText()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = Long(1).AsText()
	assert.False(t, ok)

	i, ok := Long(7).AsLong()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)

	ts := time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)
	got, ok := Date(ts).AsTime()
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))
}
