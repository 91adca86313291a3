package boolgo

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/boolgo/engine"
	"github.com/hupe1980/boolgo/model"
	"github.com/hupe1980/boolgo/query"
)

// MoreLikeThis finds records similar to the one identified by
// (recordType, pk): the source document's most characteristic terms are
// expanded into a disjunction, with the source itself excluded from the
// matches. An unindexed source yields an empty result. The optional filter
// narrows the candidates; window and sort options apply as in Search.
func (b *Backend) MoreLikeThis(ctx context.Context, recordType, pk string, filter *query.Node, opts SearchOptions) (*Result, error) {
	start := time.Now()
	identifier := recordType + "." + pk

	res, err := b.moreLikeThis(ctx, recordType, pk, filter, opts)

	b.metrics.RecordMoreLikeThis(time.Since(start), err)
	b.logger.LogMoreLikeThis(ctx, identifier, hitCount(res), err)
	return res, err
}

func (b *Backend) moreLikeThis(ctx context.Context, recordType, pk string, filter *query.Node, opts SearchOptions) (*Result, error) {
	rd, err := b.openReader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	idTerm := model.IdentifierTerm(recordType, pk)
	source, err := rd.Search(engine.Term(idTerm), engine.SearchOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(source.Matches) == 0 {
		return &Result{}, nil
	}
	sourceID := source.Matches[0].DocID

	// Type markers describe every record of a type; expanding them would
	// just return the whole type.
	terms, err := rd.ExpandTerms([]engine.DocID{sourceID}, rd.TermCount(sourceID), func(term string) bool {
		return !strings.HasPrefix(term, model.TypeTermPrefix)
	})
	if err != nil {
		return nil, err
	}

	expanded := make([]*engine.Query, len(terms))
	for i, t := range terms {
		expanded[i] = engine.Term(t)
	}
	q := engine.AndNot(engine.Or(expanded...), engine.Term(idTerm))

	compiler := b.newCompiler(rd)
	if !filter.Empty() {
		fq, err := compiler.Compile(filter)
		if err != nil {
			return nil, err
		}
		q = engine.And(q, fq)
	}

	if types := b.modelRestriction(opts); len(types) > 0 {
		markers := make([]*engine.Query, len(types))
		for i, t := range types {
			markers[i] = engine.ScaleWeight(0, engine.Term(model.TypeTerm(t)))
		}
		q = engine.And(q, engine.Or(markers...))
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
	contentField := b.registry.ContentField()
	for _, m := range ms.Matches {
		sr, err := b.toSearchResult(m, opts.Highlight, contentField, nil)
		if err != nil {
			return nil, err
		}
		res.Results = append(res.Results, sr)
	}
	return res, nil
}
