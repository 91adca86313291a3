package boolgo

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/engine"
	"github.com/hupe1980/boolgo/model"
	"github.com/hupe1980/boolgo/query"
	"github.com/hupe1980/boolgo/schema"
)

// SearchOptions shape a search beyond the filter tree itself.
type SearchOptions struct {
	// Offset is the number of leading matches to skip.
	Offset int
	// Limit bounds the result window; zero or negative returns everything
	// from Offset to the end.
	Limit int

	// SortBy orders results by field names instead of relevance. A leading
	// '-' sorts that field descending.
	SortBy []string

	// Models restricts matches to the given record types. Empty restricts
	// to the site's registered types; AllModels lifts the restriction.
	Models    []string
	AllModels bool

	// Boosts adds weighted optional terms to the query.
	Boosts map[string]float64

	// Facets tallies value counts for the named fields across all matches.
	Facets []string
	// DateFacets tallies matches into date ranges per named field.
	DateFacets map[string]DateFacetOptions
	// QueryFacets counts the matches of named subqueries.
	QueryFacets map[string]*query.Node

	// Highlight marks query words in the content field of each result.
	Highlight bool

	// SpellingQuery, when set, is checked for suggestions instead of the
	// free-text words of the filter tree.
	SpellingQuery string
}

// DateFacetOptions describe one date-range facet.
type DateFacetOptions struct {
	Start time.Time
	End   time.Time
	// GapBy is the range unit: "year", "month", "day", "hour", "minute" or
	// "second".
	GapBy string
	// GapAmount is the number of units per range; values below 1 mean 1.
	GapAmount int
}

func (o DateFacetOptions) step(t time.Time) time.Time {
	amount := o.GapAmount
	if amount < 1 {
		amount = 1
	}
	switch o.GapBy {
	case "year":
		return t.AddDate(amount, 0, 0)
	case "day":
		return t.AddDate(0, 0, amount)
	case "hour":
		return t.Add(time.Duration(amount) * time.Hour)
	case "minute":
		return t.Add(time.Duration(amount) * time.Minute)
	case "second":
		return t.Add(time.Duration(amount) * time.Second)
	default:
		return t.AddDate(0, amount, 0)
	}
}

// FacetCount is one tallied field value.
type FacetCount struct {
	Value string
	Count int
}

// DateFacetCount is one tallied date range, identified by its lower bound.
type DateFacetCount struct {
	Start time.Time
	Count int
}

// FacetCounts groups the three facet flavors of a search result.
type FacetCounts struct {
	Fields  map[string][]FacetCount
	Dates   map[string][]DateFacetCount
	Queries map[string]int
}

// Result is a decoded search result window.
type Result struct {
	// Hits estimates the total number of matches, independent of the window.
	Hits int
	// Results is the requested window in rank order.
	Results []model.SearchResult
	// Facets is populated when the search requested any facet.
	Facets FacetCounts
	// SpellingSuggestion is a corrected query, or "" when spelling is
	// disabled or the query needs no correction.
	SpellingSuggestion string
}

// Search executes a filter tree against the index. A nil or childless tree
// short-circuits to an empty result without touching the index.
func (b *Backend) Search(ctx context.Context, n *query.Node, opts SearchOptions) (*Result, error) {
	start := time.Now()

	res, err := b.search(ctx, n, opts)

	b.metrics.RecordSearch(hitCount(res), time.Since(start), err)
	b.logger.LogSearch(ctx, nodeString(n), hitCount(res), err)
	return res, err
}

func (b *Backend) search(ctx context.Context, n *query.Node, opts SearchOptions) (*Result, error) {
	if n.Empty() {
		return &Result{}, nil
	}

	rd, err := b.openReader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	compiler := b.newCompiler(rd)
	q, err := compiler.BuildQuery(n, b.modelRestriction(opts), opts.Boosts)
	if err != nil {
		return nil, err
	}

	ms, err := rd.Search(q, engine.SearchOptions{
		Offset: opts.Offset,
		Limit:  windowLimit(opts.Limit),
		Sort:   b.sortKeys(opts.SortBy),
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Hits: ms.Estimated}

	highlightTerms := b.contentTermSet(n)
	contentField := b.registry.ContentField()
	for _, m := range ms.Matches {
		sr, err := b.toSearchResult(m, opts.Highlight, contentField, highlightTerms)
		if err != nil {
			return nil, err
		}
		res.Results = append(res.Results, sr)
	}

	if err := b.collectFacets(ctx, rd, compiler, q, opts, res); err != nil {
		return nil, err
	}

	if b.cfg.IncludeSpelling {
		words := contentWords(n)
		if opts.SpellingQuery != "" {
			words = strings.Fields(strings.ToLower(opts.SpellingQuery))
		}
		res.SpellingSuggestion = suggest(rd, words)
	}
	return res, nil
}

func (b *Backend) toSearchResult(m engine.Match, highlight bool, contentField string, terms map[string]struct{}) (model.SearchResult, error) {
	p, err := b.decodePayload(m.Document.Payload)
	if err != nil {
		return model.SearchResult{}, err
	}

	sr := model.SearchResult{
		Type:  p.Type,
		PK:    p.PK,
		Score: m.Weight,
		Data:  p.Data,
	}
	if highlight && contentField != "" {
		if v, ok := p.Data[contentField]; ok {
			if text, ok := v.AsText(); ok {
				sr.Highlighted = map[string]string{
					contentField: b.highlight(text, terms),
				}
			}
		}
	}
	return sr, nil
}

func (b *Backend) newCompiler(rd engine.Reader) *query.Compiler {
	return query.NewCompiler(rd, func(o *query.CompilerOptions) {
		o.Stem = b.stem
		o.TextField = func(field string) bool {
			return b.registry.TypeOf(field) == schema.TypeText
		}
	})
}

// modelRestriction resolves the record types a search is limited to.
func (b *Backend) modelRestriction(opts SearchOptions) []string {
	if opts.AllModels {
		return nil
	}
	if len(opts.Models) > 0 {
		return opts.Models
	}
	return b.site.RegisteredTypes()
}

// sortKeys maps user sort fields onto engine sort keys. The engine's Reverse
// flag means ascending, so the flag is the inverse of the leading '-'.
func (b *Backend) sortKeys(sortBy []string) []engine.SortKey {
	keys := make([]engine.SortKey, 0, len(sortBy))
	for _, field := range sortBy {
		descending := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		keys = append(keys, engine.SortKey{
			Slot:    b.registry.SlotOf(field),
			Reverse: !descending,
		})
	}
	return keys
}

// contentWords collects the raw free-text words of a filter tree.
func contentWords(n *query.Node) []string {
	if n.Empty() {
		return nil
	}
	var words []string
	for _, child := range n.Children {
		switch {
		case child.Node != nil:
			words = append(words, contentWords(child.Node)...)
		case child.Leaf != nil:
			l := child.Leaf
			if l.Field != query.Content && l.Lookup != query.LookupContent {
				continue
			}
			for _, v := range l.Values {
				if text, ok := v.AsText(); ok {
					words = append(words, strings.Fields(strings.ToLower(text))...)
				}
			}
		}
	}
	return words
}

// contentTermSet stems the free-text words of a tree for highlight matching.
func (b *Backend) contentTermSet(n *query.Node) map[string]struct{} {
	words := contentWords(n)
	if len(words) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[b.stem(w)] = struct{}{}
	}
	return set
}

// suggest builds a corrected query string from per-word spelling
// suggestions, or "" when every word is fine.
func suggest(rd engine.Reader, words []string) string {
	if len(words) == 0 {
		return ""
	}

	corrected := false
	out := make([]string, len(words))
	for i, w := range words {
		if s := rd.SpellingSuggestion(w); s != "" {
			out[i] = s
			corrected = true
			continue
		}
		out[i] = w
	}
	if !corrected {
		return ""
	}
	return strings.Join(out, " ")
}

func windowLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func hitCount(res *Result) int {
	if res == nil {
		return 0
	}
	return res.Hits
}

func nodeString(n *query.Node) string {
	if n.Empty() {
		return "<empty>"
	}
	return string(n.Connector)
}

// timeValue extracts the timestamps of a possibly multi-valued field value.
func timeValues(v attr.Value) []time.Time {
	var ts []time.Time
	for _, el := range v.Elements() {
		if t, ok := el.AsTime(); ok {
			ts = append(ts, t)
		}
	}
	return ts
}
