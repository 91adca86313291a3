package memory

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/boolgo/engine"
)

// BM25 free parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Search implements engine.Reader.
func (h *handle) Search(q *engine.Query, opts engine.SearchOptions) (*engine.MatchSet, error) {
	if q == nil {
		q = engine.MatchNothing()
	}

	weights := h.evaluate(q)

	matches := make([]engine.Match, 0, len(weights))
	for id, w := range weights {
		d := h.db.docs[id]
		matches = append(matches, engine.Match{
			DocID:  id,
			Weight: w,
			Document: engine.Document{
				Terms:     d.Terms,
				Positions: d.Positions,
				Values:    d.Values,
				Payload:   d.Payload,
			},
		})
	}
	h.order(matches, opts.Sort)

	estimated := len(matches)
	matches = window(matches, opts.Offset, opts.Limit)

	return &engine.MatchSet{Matches: matches, Estimated: estimated}, nil
}

// evaluate computes the matching document set with accumulated weights.
func (h *handle) evaluate(q *engine.Query) map[engine.DocID]float64 {
	switch q.Op {
	case engine.OpMatchNothing:
		return nil

	case engine.OpMatchAll:
		out := make(map[engine.DocID]float64, len(h.db.docs))
		for id := range h.db.docs {
			out[id] = 0
		}
		return out

	case engine.OpTerm:
		return h.scoreTerm(q.Term)

	case engine.OpPhrase:
		return h.scorePhrase(q.Terms)

	case engine.OpAnd:
		var out map[engine.DocID]float64
		for i, child := range q.Children {
			cw := h.evaluate(child)
			if i == 0 {
				out = cw
				continue
			}
			for id := range out {
				w, ok := cw[id]
				if !ok {
					delete(out, id)
					continue
				}
				out[id] += w
			}
		}
		return out

	case engine.OpOr:
		out := make(map[engine.DocID]float64)
		for _, child := range q.Children {
			for id, w := range h.evaluate(child) {
				out[id] += w
			}
		}
		return out

	case engine.OpAndNot:
		if len(q.Children) != 2 {
			return nil
		}
		out := h.evaluate(q.Children[0])
		for id := range h.evaluate(q.Children[1]) {
			delete(out, id)
		}
		return out

	case engine.OpScaleWeight:
		if len(q.Children) != 1 {
			return nil
		}
		out := h.evaluate(q.Children[0])
		for id := range out {
			out[id] *= q.Weight
		}
		return out

	default:
		return nil
	}
}

// scoreTerm scores every posting of term with BM25.
func (h *handle) scoreTerm(term string) map[engine.DocID]float64 {
	bm := h.db.postings[term]
	if bm == nil {
		return nil
	}

	idf := h.idf(term)
	avg := h.avgDocLen()

	out := make(map[engine.DocID]float64, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id := engine.DocID(it.Next())
		d := h.db.docs[id]
		out[id] = idf * saturation(termFreq(d, term), float64(d.length()), avg)
	}
	return out
}

// scorePhrase intersects the word postings and keeps documents where the
// words occur at consecutive positions, scored as the sum of the per-word
// BM25 contributions.
func (h *handle) scorePhrase(words []string) map[engine.DocID]float64 {
	if len(words) == 0 {
		return nil
	}

	bms := make([]*roaring.Bitmap, len(words))
	for i, w := range words {
		bm := h.db.postings[w]
		if bm == nil {
			return nil
		}
		bms[i] = bm
	}
	candidates := roaring.FastAnd(bms...)

	idfs := make([]float64, len(words))
	for i, w := range words {
		idfs[i] = h.idf(w)
	}
	avg := h.avgDocLen()

	out := make(map[engine.DocID]float64)
	it := candidates.Iterator()
	for it.HasNext() {
		id := engine.DocID(it.Next())
		d := h.db.docs[id]
		if !phraseAt(d, words) {
			continue
		}
		w := 0.0
		for i, word := range words {
			w += idfs[i] * saturation(termFreq(d, word), float64(d.length()), avg)
		}
		out[id] = w
	}
	return out
}

// phraseAt reports whether words occur consecutively in d.
func phraseAt(d *storedDoc, words []string) bool {
	first := d.Positions[words[0]]
	for _, start := range first {
		ok := true
		for i := 1; i < len(words); i++ {
			if !hasPosition(d.Positions[words[i]], start+i) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func hasPosition(ps []int, p int) bool {
	i := sort.SearchInts(ps, p)
	return i < len(ps) && ps[i] == p
}

func termFreq(d *storedDoc, term string) float64 {
	if tf := len(d.Positions[term]); tf > 0 {
		return float64(tf)
	}
	return 1
}

// saturation is the BM25 term-frequency saturation component.
func saturation(tf, docLen, avgLen float64) float64 {
	norm := bm25K1 * ((1 - bm25B) + bm25B*docLen/avgLen)
	return tf * (bm25K1 + 1) / (tf + norm)
}

func (h *handle) idf(term string) float64 {
	n := float64(0)
	if bm := h.db.postings[term]; bm != nil {
		n = float64(bm.GetCardinality())
	}
	total := float64(len(h.db.docs))
	return math.Log(1 + (total-n+0.5)/(n+0.5))
}

func (h *handle) avgDocLen() float64 {
	if len(h.db.docs) == 0 || h.db.totalLen == 0 {
		return 1
	}
	return float64(h.db.totalLen) / float64(len(h.db.docs))
}

// order sorts matches by the composite sort key, falling back to weight
// descending with the document id as the final tiebreak. Per the engine
// convention a Reverse key sorts ascending.
func (h *handle) order(matches []engine.Match, keys []engine.SortKey) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		for _, k := range keys {
			av := a.Document.Values[k.Slot]
			bv := b.Document.Values[k.Slot]
			if av == bv {
				continue
			}
			if k.Reverse {
				return av < bv
			}
			return av > bv
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.DocID < b.DocID
	})
}

func window(matches []engine.Match, offset, limit int) []engine.Match {
	if offset >= len(matches) {
		return nil
	}
	if offset > 0 {
		matches = matches[offset:]
	}
	if limit >= 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}
