package memory

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"

	"github.com/hupe1980/boolgo/engine"
)

// termGenerator tokenizes free text into positional, stemmed terms. Spelling
// words are recorded unstemmed so suggestions read naturally.
type termGenerator struct {
	db       *database
	doc      *engine.Document
	language string
	spelling bool
	pos      int
}

var _ engine.TermGenerator = (*termGenerator)(nil)

// SetDocument implements engine.TermGenerator.
func (g *termGenerator) SetDocument(doc *engine.Document) {
	g.doc = doc
}

// IndexText implements engine.TermGenerator.
func (g *termGenerator) IndexText(text string, weight int, prefix string) {
	if g.doc == nil {
		return
	}
	if weight < 1 {
		weight = 1
	}

	for _, word := range tokenize(text) {
		stemmed, err := snowball.Stem(word, g.language, true)
		if err != nil {
			stemmed = word
		}
		term := prefix + stemmed

		g.pos++
		if g.doc.Positions == nil {
			g.doc.Positions = make(map[string][]int)
		}
		if _, seen := g.doc.Positions[term]; !seen && !contains(g.doc.Terms, term) {
			g.doc.AddTerm(term)
		}
		// The weight multiplies the within-document frequency.
		for i := 0; i < weight; i++ {
			g.doc.Positions[term] = append(g.doc.Positions[term], g.pos)
		}

		if g.spelling && prefix == "" {
			g.db.spelling[word]++
		}
	}
}

// tokenize case-folds text and splits it on every non-alphanumeric rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
