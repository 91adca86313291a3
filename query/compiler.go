package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/engine"
	"github.com/hupe1980/boolgo/marshal"
	"github.com/hupe1980/boolgo/model"
)

// ErrUnsupportedLookup is returned when a filter tree contains a lookup the
// engine algebra cannot express. Range lookups (gt/gte/lt/lte) fall here:
// the boolean algebra has no value-range operation, and rejecting them
// loudly beats dropping them from the compiled query.
var ErrUnsupportedLookup = errors.New("query: unsupported lookup")

// CompilerOptions configure a Compiler.
type CompilerOptions struct {
	// Stem normalizes each query word the same way the indexer normalized
	// document tokens. Defaults to the identity function.
	Stem func(word string) string

	// TextField reports whether a field holds tokenized text. Terms of
	// non-text fields (booleans, numbers, dates) are stored verbatim at
	// indexing time, so their query values must not be stemmed. Defaults
	// to treating every field as text.
	TextField func(field string) bool
}

// Compiler turns filter-expression trees into engine queries.
//
// Prefix (startswith) lookups enumerate stored terms through the reader, so
// the compiler must be constructed against the handle the query will run on.
type Compiler struct {
	reader    engine.Reader
	stem      func(word string) string
	textField func(field string) bool
}

// NewCompiler creates a Compiler bound to reader.
func NewCompiler(reader engine.Reader, optFns ...func(o *CompilerOptions)) *Compiler {
	opts := CompilerOptions{
		Stem:      func(word string) string { return word },
		TextField: func(field string) bool { return true },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Compiler{reader: reader, stem: opts.Stem, textField: opts.TextField}
}

// Compile compiles a filter tree. A nil or childless tree compiles to the
// empty query; callers wanting the universal query for an absent filter use
// BuildQuery.
func (c *Compiler) Compile(n *Node) (*engine.Query, error) {
	if n.Empty() {
		return engine.MatchNothing(), nil
	}
	return c.compileNode(n, n.Negated)
}

// BuildQuery performs the top-level assembly: an empty tree becomes the
// universal query, a non-empty restriction to record types ANDs in an OR of
// zero-weight type-marker subqueries, and boost terms OR the query with an
// AND of scaled-weight term subqueries.
func (c *Compiler) BuildQuery(n *Node, types []string, boosts map[string]float64) (*engine.Query, error) {
	var q *engine.Query
	if n.Empty() {
		q = engine.MatchAll()
	} else {
		var err error
		q, err = c.compileNode(n, n.Negated)
		if err != nil {
			return nil, err
		}
	}

	if len(types) > 0 {
		markers := make([]*engine.Query, len(types))
		for i, t := range types {
			// Zero weight: a pure boolean filter that never affects ranking.
			markers[i] = engine.ScaleWeight(0, engine.Term(model.TypeTerm(t)))
		}
		q = engine.And(q, engine.Or(markers...))
	}

	if len(boosts) > 0 {
		terms := make([]string, 0, len(boosts))
		for term := range boosts {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		scaled := make([]*engine.Query, len(terms))
		for i, term := range terms {
			scaled[i] = engine.ScaleWeight(boosts[term], engine.Term(term))
		}
		q = engine.Or(q, engine.And(scaled...))
	}

	return q, nil
}

// compileNode compiles one node. Nested sub-nodes are always conjoined into
// their parent; only the node's own connector governs how its siblings
// combine.
func (c *Compiler) compileNode(n *Node, isNot bool) (*engine.Query, error) {
	children := make([]*engine.Query, 0, len(n.Children))
	for _, child := range n.Children {
		switch {
		case child.Node != nil:
			sub, err := c.compileNode(child.Node, child.Node.Negated)
			if err != nil {
				return nil, err
			}
			children = append(children, engine.And(sub))
		case child.Leaf != nil:
			sub, err := c.compileLeaf(child.Leaf, isNot)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				children = append(children, sub)
			}
		}
	}

	if n.Connector == ConnectorOr {
		return engine.Or(children...), nil
	}
	return engine.And(children...), nil
}

func (c *Compiler) compileLeaf(l *Leaf, isNot bool) (*engine.Query, error) {
	if l.Field == Content || l.Lookup == LookupContent {
		return negated(c.termOrPhrase(first(l.Values), "", true), isNot), nil
	}

	switch l.Lookup {
	case LookupExact:
		return negated(c.termOrPhrase(first(l.Values), model.FieldPrefix(l.Field), c.textField(l.Field)), isNot), nil
	case LookupIn:
		subs := make([]*engine.Query, 0, len(l.Values))
		for _, v := range l.Values {
			subs = append(subs, c.termOrPhrase(v, model.FieldPrefix(l.Field), c.textField(l.Field)))
		}
		return negated(engine.Or(subs...), isNot), nil
	case LookupStartswith:
		q, err := c.prefixQuery(l.Field, first(l.Values))
		if err != nil {
			return nil, err
		}
		return negated(q, isNot), nil
	case LookupGt, LookupGte, LookupLt, LookupLte:
		return nil, fmt.Errorf("%w: %s on field %q", ErrUnsupportedLookup, l.Lookup, l.Field)
	default:
		return nil, fmt.Errorf("%w: %s on field %q", ErrUnsupportedLookup, l.Lookup, l.Field)
	}
}

// termOrPhrase compiles a marshaled value into a term query, or a phrase
// query over its whitespace-split words when it contains spaces. Words of
// stemmed (text) fields are stemmed to mirror indexing; non-text values are
// matched verbatim. The prefix scopes every word to a field's postings; an
// empty prefix searches all fields.
func (c *Compiler) termOrPhrase(v attr.Value, prefix string, stemmed bool) *engine.Query {
	norm := func(word string) string {
		if stemmed {
			return c.stem(word)
		}
		return word
	}
	encoded := marshal.Term(v)
	if strings.Contains(encoded, " ") {
		words := strings.Fields(encoded)
		for i := range words {
			words[i] = prefix + norm(words[i])
		}
		return engine.Phrase(words)
	}
	return engine.Term(prefix + norm(encoded))
}

// prefixQuery expands a startswith lookup into an OR over every stored term
// whose body begins with the encoded value, scanned from the already-open
// read handle. The partial word is deliberately not stemmed.
func (c *Compiler) prefixQuery(field string, v attr.Value) (*engine.Query, error) {
	prefix := model.FieldPrefix(field) + marshal.Term(v)
	terms, err := c.reader.AllTerms(prefix)
	if err != nil {
		return nil, fmt.Errorf("query: scan terms with prefix %q: %w", prefix, err)
	}
	subs := make([]*engine.Query, len(terms))
	for i, t := range terms {
		subs[i] = engine.Term(t)
	}
	return engine.Or(subs...), nil
}

// negated wraps a positive subquery as AND_NOT(all, positive): the algebra
// has no native NOT.
func negated(q *engine.Query, isNot bool) *engine.Query {
	if !isNot {
		return q
	}
	return engine.AndNot(engine.MatchAll(), q)
}

func first(vs []attr.Value) attr.Value {
	if len(vs) == 0 {
		return attr.Value{}
	}
	return vs[0]
}
