package memory

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/hupe1980/boolgo/engine"
)

// maxEditDistance bounds how far a suggestion may stray from the input.
const maxEditDistance = 2

// SpellingSuggestion implements engine.Reader. A word already present in the
// spelling dictionary needs no correction and yields "".
func (h *handle) SpellingSuggestion(word string) string {
	w := strings.ToLower(word)
	if h.db.spelling[w] > 0 {
		return ""
	}

	best := ""
	bestDist := maxEditDistance + 1
	bestFreq := 0
	for cand, freq := range h.db.spelling {
		d := levenshtein.ComputeDistance(w, cand)
		if d > maxEditDistance {
			continue
		}
		switch {
		case d < bestDist,
			d == bestDist && freq > bestFreq,
			d == bestDist && freq == bestFreq && (best == "" || cand < best):
			best, bestDist, bestFreq = cand, d, freq
		}
	}
	return best
}

// ExpandTerms implements engine.Reader. Candidate terms are scored by their
// summed frequency across the relevance set weighted by inverse document
// frequency, so terms common in the set but rare in the index rank first.
func (h *handle) ExpandTerms(rset []engine.DocID, limit int, decide engine.ExpandDecider) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	scores := make(map[string]float64)
	for _, id := range rset {
		d, ok := h.db.docs[id]
		if !ok {
			continue
		}
		for _, t := range d.Terms {
			if decide != nil && !decide(t) {
				continue
			}
			scores[t] += termFreq(d, t) * h.idf(t)
		}
	}

	terms := make([]string, 0, len(scores))
	for t := range scores {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if scores[terms[i]] != scores[terms[j]] {
			return scores[terms[i]] > scores[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms, nil
}
