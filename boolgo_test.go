package boolgo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/marshal"
	"github.com/hupe1980/boolgo/model"
	"github.com/hupe1980/boolgo/query"
	"github.com/hupe1980/boolgo/schema"
)

type testSite struct{}

func (testSite) SearchFields() []schema.Descriptor {
	return []schema.Descriptor{
		{Name: "text", Kind: attr.KindText, Document: true, Indexed: true},
		{Name: "author", Kind: attr.KindText, Indexed: true},
		{Name: "posted", Kind: attr.KindDate, Indexed: true},
		{Name: "views", Kind: attr.KindLong, Indexed: true},
		{Name: "tags", Kind: attr.KindList, Indexed: true},
		{Name: "public", Kind: attr.KindBool, Indexed: true},
	}
}

func (testSite) RegisteredTypes() []string {
	return []string{"blog.post"}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRecords() []model.Record {
	return []model.Record{
		{Type: "blog.post", PK: "1", Data: attr.Map{
			"text":   attr.Text("Hello world of search engines"),
			"author": attr.Text("daniel"),
			"posted": attr.Date(date(2009, 2, 25)),
			"views":  attr.Long(5),
			"tags":   attr.List(attr.Text("go"), attr.Text("search")),
			"public": attr.Bool(true),
		}},
		{Type: "blog.post", PK: "2", Data: attr.Map{
			"text":   attr.Text("Hello again searching the world"),
			"author": attr.Text("daniel"),
			"posted": attr.Date(date(2009, 3, 15)),
			"views":  attr.Long(2),
			"tags":   attr.List(attr.Text("go")),
			"public": attr.Bool(true),
		}},
		{Type: "blog.post", PK: "3", Data: attr.Map{
			"text":   attr.Text("Unrelated cooking recipes"),
			"author": attr.Text("alice"),
			"posted": attr.Date(date(2009, 7, 10)),
			"views":  attr.Long(10),
			"tags":   attr.List(attr.Text("food")),
			"public": attr.Bool(false),
		}},
	}
}

func newTestBackend(t *testing.T, optFns ...Option) *Backend {
	t.Helper()
	b, err := New(Config{Path: t.TempDir(), IncludeSpelling: true}, testSite{}, optFns...)
	require.NoError(t, err)
	return b
}

func indexTestRecords(t *testing.T, b *Backend) {
	t.Helper()
	result, err := b.Update(context.Background(), testRecords())
	require.NoError(t, err)
	require.Empty(t, result.Failures)
	require.Equal(t, 3, result.Indexed)
}

func pks(res *Result) []string {
	out := make([]string, len(res.Results))
	for i, r := range res.Results {
		out[i] = r.PK
	}
	return out
}

// matchAllPosts matches every fixture record regardless of content.
func matchAllPosts() *query.Node {
	return query.Or(
		query.Exact("author", attr.Text("daniel")),
		query.Exact("author", attr.Text("alice")),
	)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{}, testSite{})
	require.ErrorIs(t, err, ErrPathNotConfigured)

	_, err = New(Config{Path: t.TempDir()}, nil)
	require.ErrorIs(t, err, ErrMissingSite)

	_, err = New(Config{Path: t.TempDir(), Codec: "bogus"}, testSite{})
	require.ErrorIs(t, err, ErrUnknownCodec)
}

func TestUpdateAndSearch(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, query.And(query.ContentMatch(attr.Text("hello"))), SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Hits)
	assert.ElementsMatch(t, []string{"1", "2"}, pks(res))

	// Stemming matches "searching" against "search".
	res, err = b.Search(ctx, query.And(query.ContentMatch(attr.Text("search"))), SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Hits)

	// Decoded payloads carry the prepared data.
	views, ok := res.Results[0].Data["views"].AsLong()
	require.True(t, ok)
	assert.Contains(t, []int64{2, 5}, views)
}

func TestUpdateReplacesByIdentifier(t *testing.T) {
	b := newTestBackend(t)
	indexTestRecords(t, b)
	indexTestRecords(t, b)

	count, err := b.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUpdatePerRecordIsolation(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	records := append(testRecords(), model.Record{
		Type: "blog.post", PK: "bad", Data: attr.Map{
			"text":  attr.Text("negative views"),
			"views": attr.Long(-1),
		},
	})

	result, err := b.Update(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "blog.post.bad", result.Failures[0].Identifier)
	assert.ErrorIs(t, result.Failures[0].Err, marshal.ErrNegativeLong)
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	b := newTestBackend(t)
	indexTestRecords(t, b)

	for _, n := range []*query.Node{nil, query.And()} {
		res, err := b.Search(context.Background(), n, SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Hits)
		assert.Empty(t, res.Results)
	}
}

func TestSearchModelRestriction(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	_, err := b.Update(ctx, []model.Record{{
		Type: "other.thing", PK: "9", Data: attr.Map{
			"text": attr.Text("Hello from another type"),
		},
	}})
	require.NoError(t, err)

	q := query.And(query.ContentMatch(attr.Text("hello")))

	res, err := b.Search(ctx, q, SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Hits)

	res, err = b.Search(ctx, q, SearchOptions{AllModels: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Hits)

	res, err = b.Search(ctx, q, SearchOptions{Models: []string{"other.thing"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits)
	assert.Equal(t, "other.thing", res.Results[0].Type)
}

func TestSearchSorting(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, matchAllPosts(), SearchOptions{SortBy: []string{"views"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "3"}, pks(res))

	res, err = b.Search(ctx, matchAllPosts(), SearchOptions{SortBy: []string{"-views"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, pks(res))

	res, err = b.Search(ctx, matchAllPosts(), SearchOptions{SortBy: []string{"posted"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, pks(res))
}

func TestSearchWindow(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, matchAllPosts(), SearchOptions{
		SortBy: []string{"views"},
		Offset: 1,
		Limit:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Hits)
	assert.Equal(t, []string{"1"}, pks(res))
}

func TestSearchHighlight(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, query.And(query.ContentMatch(attr.Text("hello"))), SearchOptions{
		Highlight: true,
		SortBy:    []string{"views"},
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "<em>Hello</em> again searching the world", res.Results[0].Highlighted["text"])
	assert.Equal(t, "<em>Hello</em> world of search engines", res.Results[1].Highlighted["text"])
}

func TestSearchSpellingSuggestion(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, query.And(query.ContentMatch(attr.Text("helo"))), SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Hits)
	assert.Equal(t, "hello", res.SpellingSuggestion)

	// A correctly spelled query yields no suggestion.
	res, err = b.Search(ctx, query.And(query.ContentMatch(attr.Text("hello"))), SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", res.SpellingSuggestion)

	// An explicit spelling query overrides the tree's words.
	res, err = b.Search(ctx, query.And(query.ContentMatch(attr.Text("hello"))), SearchOptions{
		SpellingQuery: "cokking recipes",
	})
	require.NoError(t, err)
	assert.Equal(t, "cooking recipes", res.SpellingSuggestion)
}

func TestSearchFieldFacets(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, matchAllPosts(), SearchOptions{Facets: []string{"author", "tags"}})
	require.NoError(t, err)

	assert.Equal(t, []FacetCount{
		{Value: "daniel", Count: 2},
		{Value: "alice", Count: 1},
	}, res.Facets.Fields["author"])

	// Multi-valued fields tally per element.
	assert.Equal(t, []FacetCount{
		{Value: "go", Count: 2},
		{Value: "food", Count: 1},
		{Value: "search", Count: 1},
	}, res.Facets.Fields["tags"])
}

func TestSearchDateFacets(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, matchAllPosts(), SearchOptions{
		DateFacets: map[string]DateFacetOptions{
			"posted": {
				Start: date(2009, 1, 1),
				End:   date(2009, 6, 1),
				GapBy: "month",
			},
		},
	})
	require.NoError(t, err)

	counts := res.Facets.Dates["posted"]
	require.Len(t, counts, 5)

	// Ranges are reported newest-first.
	starts := make([]time.Time, len(counts))
	for i, c := range counts {
		starts[i] = c.Start
	}
	assert.Equal(t, []time.Time{
		date(2009, 5, 1), date(2009, 4, 1), date(2009, 3, 1), date(2009, 2, 1), date(2009, 1, 1),
	}, starts)

	// 2009-07-10 exceeds every bound and lands in the newest range;
	// 2009-03-15 and 2009-02-25 land in their months.
	assert.Equal(t, []int{1, 0, 1, 1, 0}, []int{
		counts[0].Count, counts[1].Count, counts[2].Count, counts[3].Count, counts[4].Count,
	})
}

// countingCodec counts Unmarshal calls to observe payload decoding.
type countingCodec struct {
	codec.Codec
	unmarshals int
}

func (c *countingCodec) Unmarshal(data []byte, v any) error {
	c.unmarshals++
	return c.Codec.Unmarshal(data, v)
}

func TestFacetsDecodePayloadsOnce(t *testing.T) {
	ctx := context.Background()
	cc := &countingCodec{Codec: codec.Default}
	b := newTestBackend(t, WithCodec(cc))
	indexTestRecords(t, b)

	// Field and date tallies share one payload decode per match, so adding
	// facets must not add decodes.
	_, err := b.Search(ctx, matchAllPosts(), SearchOptions{Facets: []string{"author"}})
	require.NoError(t, err)
	single := cc.unmarshals

	cc.unmarshals = 0
	_, err = b.Search(ctx, matchAllPosts(), SearchOptions{
		Facets: []string{"author", "tags", "views"},
		DateFacets: map[string]DateFacetOptions{
			"posted": {Start: date(2009, 1, 1), End: date(2009, 6, 1), GapBy: "month"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, single, cc.unmarshals)
}

func TestSearchQueryFacets(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	res, err := b.Search(ctx, matchAllPosts(), SearchOptions{
		QueryFacets: map[string]*query.Node{
			"by_daniel": query.And(query.Exact("author", attr.Text("daniel"))),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Facets.Queries["by_daniel"])
}

func TestSearchLookups(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	t.Run("in", func(t *testing.T) {
		res, err := b.Search(ctx, query.And(
			query.In("tags", attr.Text("search"), attr.Text("food")),
		), SearchOptions{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "3"}, pks(res))
	})

	t.Run("startswith", func(t *testing.T) {
		res, err := b.Search(ctx, query.And(
			query.StartsWith("author", attr.Text("dan")),
		), SearchOptions{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2"}, pks(res))
	})

	t.Run("negation", func(t *testing.T) {
		res, err := b.Search(ctx, query.And(
			query.ContentMatch(attr.Text("hello")),
			query.Group(query.Not(query.And(query.Exact("author", attr.Text("daniel"))))),
		), SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, pks(res))
	})

	t.Run("range lookups are rejected", func(t *testing.T) {
		n := query.And(query.Child{Leaf: &query.Leaf{
			Field: "views", Lookup: query.LookupGt, Values: []attr.Value{attr.Long(3)},
		}})
		_, err := b.Search(ctx, n, SearchOptions{})
		require.ErrorIs(t, err, query.ErrUnsupportedLookup)
	})

	t.Run("exact date", func(t *testing.T) {
		res, err := b.Search(ctx, query.And(
			query.Exact("posted", attr.Date(date(2009, 2, 25))),
		), SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, pks(res))
	})

	t.Run("exact boolean", func(t *testing.T) {
		// Boolean terms are stored verbatim; the compiler must not stem
		// "false" into "fals" on the query side.
		res, err := b.Search(ctx, query.And(
			query.Exact("public", attr.Bool(false)),
		), SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, pks(res))

		res, err = b.Search(ctx, query.And(
			query.Exact("public", attr.Bool(true)),
		), SearchOptions{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2"}, pks(res))
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	indexTestRecords(t, b)

	require.NoError(t, b.Remove(ctx, "blog.post", "1"))

	count, err := b.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Removing an unindexed record is not an error.
	require.NoError(t, b.Remove(ctx, "blog.post", "404"))
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	t.Run("typed", func(t *testing.T) {
		b := newTestBackend(t)
		indexTestRecords(t, b)
		_, err := b.Update(ctx, []model.Record{{
			Type: "other.thing", PK: "9", Data: attr.Map{"text": attr.Text("keep me")},
		}})
		require.NoError(t, err)

		require.NoError(t, b.Clear(ctx, []string{"blog.post"}))

		count, err := b.DocCount()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("everything", func(t *testing.T) {
		b := newTestBackend(t)
		indexTestRecords(t, b)

		require.NoError(t, b.Clear(ctx, nil))

		count, err := b.DocCount()
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestMoreLikeThis(t *testing.T) {
	ctx := context.Background()

	t.Run("finds overlapping records", func(t *testing.T) {
		b := newTestBackend(t)
		indexTestRecords(t, b)

		res, err := b.MoreLikeThis(ctx, "blog.post", "1", nil, SearchOptions{})
		require.NoError(t, err)
		assert.Contains(t, pks(res), "2")
		assert.NotContains(t, pks(res), "1")
	})

	t.Run("single document yields nothing", func(t *testing.T) {
		b := newTestBackend(t)
		_, err := b.Update(ctx, testRecords()[:1])
		require.NoError(t, err)

		res, err := b.MoreLikeThis(ctx, "blog.post", "1", nil, SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Hits)
	})

	t.Run("unindexed source yields nothing", func(t *testing.T) {
		b := newTestBackend(t)
		indexTestRecords(t, b)

		res, err := b.MoreLikeThis(ctx, "blog.post", "404", nil, SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Hits)
	})

	t.Run("filter narrows candidates", func(t *testing.T) {
		b := newTestBackend(t)
		indexTestRecords(t, b)

		res, err := b.MoreLikeThis(ctx, "blog.post", "1",
			query.And(query.Exact("author", attr.Text("alice"))), SearchOptions{})
		require.NoError(t, err)
		assert.NotContains(t, pks(res), "2")
	})
}

func TestPersistenceAcrossBackends(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir()

	b1, err := New(Config{Path: path}, testSite{})
	require.NoError(t, err)
	_, err = b1.Update(ctx, testRecords())
	require.NoError(t, err)

	// A fresh backend over the same path sees the committed index and the
	// persisted schema.
	b2, err := New(Config{Path: path}, testSite{})
	require.NoError(t, err)

	res, err := b2.Search(ctx, matchAllPosts(), SearchOptions{SortBy: []string{"views"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "3"}, pks(res))
}
