package boolgo

import (
	"context"
	"sort"
	"time"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/engine"
	"github.com/hupe1980/boolgo/query"
)

// collectFacets fills res.Facets for every requested facet flavor. Tallies
// run over the full match set, not the returned window.
func (b *Backend) collectFacets(ctx context.Context, rd engine.Reader, compiler *query.Compiler, q *engine.Query, opts SearchOptions, res *Result) error {
	if len(opts.Facets) == 0 && len(opts.DateFacets) == 0 && len(opts.QueryFacets) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(opts.Facets) > 0 || len(opts.DateFacets) > 0 {
		full, err := rd.Search(q, engine.SearchOptions{Limit: -1})
		if err != nil {
			return err
		}

		// One payload decode per match, shared by the field and date tallies.
		data := make([]attr.Map, len(full.Matches))
		for i, m := range full.Matches {
			p, err := b.decodePayload(m.Document.Payload)
			if err != nil {
				return err
			}
			data[i] = p.Data
		}

		if len(opts.Facets) > 0 {
			res.Facets.Fields = fieldFacets(data, opts.Facets)
		}
		if len(opts.DateFacets) > 0 {
			res.Facets.Dates = dateFacets(data, opts.DateFacets)
		}
	}

	if len(opts.QueryFacets) > 0 {
		queries, err := b.queryFacets(rd, compiler, opts.QueryFacets)
		if err != nil {
			return err
		}
		res.Facets.Queries = queries
	}
	return nil
}

// fieldFacets tallies per-element value counts of the named fields across
// the decoded match data, ordered by descending count and then by value.
func fieldFacets(data []attr.Map, fields []string) map[string][]FacetCount {
	tallies := make(map[string]map[string]int, len(fields))
	for _, f := range fields {
		tallies[f] = make(map[string]int)
	}

	for _, d := range data {
		for _, f := range fields {
			v, ok := d[f]
			if !ok || v.IsZero() {
				continue
			}
			for _, el := range v.Elements() {
				tallies[f][el.Key()]++
			}
		}
	}

	out := make(map[string][]FacetCount, len(fields))
	for f, tally := range tallies {
		counts := make([]FacetCount, 0, len(tally))
		for value, count := range tally {
			counts = append(counts, FacetCount{Value: value, Count: count})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].Value < counts[j].Value
		})
		out[f] = counts
	}
	return out
}

// dateFacets buckets field timestamps into gap ranges. Ranges are reported
// newest-first; a timestamp falls into the first range whose lower bound it
// strictly exceeds.
func dateFacets(data []attr.Map, facets map[string]DateFacetOptions) map[string][]DateFacetCount {
	out := make(map[string][]DateFacetCount, len(facets))

	for field, o := range facets {
		bounds := dateBounds(o)
		counts := make([]DateFacetCount, len(bounds))
		for i, bound := range bounds {
			counts[i] = DateFacetCount{Start: bound}
		}

		for _, d := range data {
			v, ok := d[field]
			if !ok {
				continue
			}
			for _, t := range timeValues(v) {
				for i, bound := range bounds {
					if t.After(bound) {
						counts[i].Count++
						break
					}
				}
			}
		}
		out[field] = counts
	}
	return out
}

// dateBounds generates the range lower bounds from start to end and returns
// them newest-first.
func dateBounds(o DateFacetOptions) []time.Time {
	var bounds []time.Time
	for t := o.Start; t.Before(o.End); t = o.step(t) {
		bounds = append(bounds, t)
	}
	for i, j := 0, len(bounds)-1; i < j; i, j = i+1, j-1 {
		bounds[i], bounds[j] = bounds[j], bounds[i]
	}
	return bounds
}

// queryFacets counts the matches of each named subquery.
func (b *Backend) queryFacets(rd engine.Reader, compiler *query.Compiler, facets map[string]*query.Node) (map[string]int, error) {
	out := make(map[string]int, len(facets))
	for name, n := range facets {
		q, err := compiler.Compile(n)
		if err != nil {
			return nil, err
		}
		ms, err := rd.Search(q, engine.SearchOptions{Limit: 0})
		if err != nil {
			return nil, err
		}
		out[name] = ms.Estimated
	}
	return out, nil
}
