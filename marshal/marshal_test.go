package marshal

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/boolgo/attr"
)

func TestTerm(t *testing.T) {
	tests := []struct {
		name     string
		value    attr.Value
		expected string
	}{
		{"text is case folded", attr.Text("Hello World"), "hello world"},
		{"long", attr.Long(42), "42"},
		{"float", attr.Float(2.5), "2.5"},
		{"bool true", attr.Bool(true), "true"},
		{"bool false", attr.Bool(false), "false"},
		{"date", attr.Date(time.Date(2009, 1, 2, 15, 4, 5, 0, time.UTC)), "20090102000000"},
		{"datetime", attr.DateTime(time.Date(2009, 1, 2, 15, 4, 5, 0, time.UTC)), "20090102150405"},
		{
			"datetime with microseconds",
			attr.DateTime(time.Date(2009, 1, 2, 15, 4, 5, 123456000, time.UTC)),
			"20090102150405123456",
		},
		{"list joins elements", attr.List(attr.Text("Go"), attr.Text("Search")), "go search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Term(tt.value))
		})
	}
}

func TestSortKey(t *testing.T) {
	t.Run("long is fixed width", func(t *testing.T) {
		key, err := SortKey(attr.Long(5))
		require.NoError(t, err)
		assert.Equal(t, "000000000005", key)
	})

	t.Run("negative long is rejected", func(t *testing.T) {
		_, err := SortKey(attr.Long(-1))
		require.ErrorIs(t, err, ErrNegativeLong)
	})

	t.Run("bool", func(t *testing.T) {
		key, err := SortKey(attr.Bool(true))
		require.NoError(t, err)
		assert.Equal(t, "t", key)

		key, err = SortKey(attr.Bool(false))
		require.NoError(t, err)
		assert.Equal(t, "f", key)
	})

	t.Run("date reuses the digit string", func(t *testing.T) {
		key, err := SortKey(attr.Date(time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		assert.Equal(t, "20090601000000", key)
	})
}

// Lexicographic order of the encodings must agree with semantic order.
func TestSortKeyOrdering(t *testing.T) {
	tests := []struct {
		name   string
		values []attr.Value
	}{
		{
			name: "longs",
			values: []attr.Value{
				attr.Long(0), attr.Long(5), attr.Long(42), attr.Long(999), attr.Long(100000),
			},
		},
		{
			name: "floats including negatives",
			values: []attr.Value{
				attr.Float(-1000.5), attr.Float(-2.5), attr.Float(0), attr.Float(0.25), attr.Float(314.15),
			},
		},
		{
			name: "dates",
			values: []attr.Value{
				attr.Date(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)),
				attr.Date(time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)),
				attr.Date(time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC)),
				attr.Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
			},
		},
		{
			name: "timestamps",
			values: []attr.Value{
				attr.DateTime(time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)),
				attr.DateTime(time.Date(2009, 1, 2, 15, 4, 5, 0, time.UTC)),
				attr.DateTime(time.Date(2009, 1, 2, 15, 4, 5, 123456000, time.UTC)),
				attr.DateTime(time.Date(2009, 1, 2, 15, 4, 6, 0, time.UTC)),
			},
		},
		{
			name: "text",
			values: []attr.Value{
				attr.Text("alpha"), attr.Text("Beta"), attr.Text("gamma"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := make([]string, len(tt.values))
			for i, v := range tt.values {
				key, err := SortKey(v)
				require.NoError(t, err)
				keys[i] = key
			}
			assert.True(t, sort.StringsAreSorted(keys), "keys out of order: %q", keys)
		})
	}
}
