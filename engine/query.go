package engine

import (
	"fmt"
	"strings"
)

// Op identifies a query-algebra operation.
type Op uint8

const (
	// OpMatchNothing is the empty query; it matches no documents.
	OpMatchNothing Op = iota
	// OpMatchAll is the universal query; it matches every document with
	// weight zero.
	OpMatchAll
	// OpTerm matches documents containing a single term.
	OpTerm
	// OpPhrase matches documents containing the terms adjacently and in order.
	OpPhrase
	// OpAnd matches documents matching all children.
	OpAnd
	// OpOr matches documents matching any child.
	OpOr
	// OpAndNot matches documents matching the left child but not the right.
	OpAndNot
	// OpScaleWeight matches like its child but multiplies the child's
	// weight contribution by Weight. A weight of zero turns the child into
	// a pure boolean filter.
	OpScaleWeight
)

// Query is a node in the engine's boolean query algebra.
//
// Queries are immutable after construction; build them with the package
// constructors rather than struct literals.
type Query struct {
	Op       Op
	Term     string   // OpTerm
	Terms    []string // OpPhrase
	Weight   float64  // OpScaleWeight
	Children []*Query // OpAnd, OpOr, OpAndNot, OpScaleWeight
}

// MatchNothing returns the empty query.
func MatchNothing() *Query { return &Query{Op: OpMatchNothing} }

// MatchAll returns the universal query.
func MatchAll() *Query { return &Query{Op: OpMatchAll} }

// Term returns a single-term query.
func Term(term string) *Query { return &Query{Op: OpTerm, Term: term} }

// Phrase returns a phrase query over terms, preserving order and adjacency.
// A single-element phrase degrades to a term query.
func Phrase(terms []string) *Query {
	switch len(terms) {
	case 0:
		return MatchNothing()
	case 1:
		return Term(terms[0])
	}
	return &Query{Op: OpPhrase, Terms: terms}
}

// And returns the conjunction of children. No children yields the empty
// query; a single child is returned unchanged.
func And(children ...*Query) *Query { return compose(OpAnd, children) }

// Or returns the disjunction of children. No children yields the empty
// query; a single child is returned unchanged.
func Or(children ...*Query) *Query { return compose(OpOr, children) }

func compose(op Op, children []*Query) *Query {
	kept := make([]*Query, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return MatchNothing()
	case 1:
		return kept[0]
	}
	return &Query{Op: op, Children: kept}
}

// AndNot matches documents matching left but not right.
func AndNot(left, right *Query) *Query {
	return &Query{Op: OpAndNot, Children: []*Query{left, right}}
}

// ScaleWeight multiplies the weight contribution of q by weight without
// altering which documents match.
func ScaleWeight(weight float64, q *Query) *Query {
	return &Query{Op: OpScaleWeight, Weight: weight, Children: []*Query{q}}
}

// Empty reports whether q is the empty query.
func (q *Query) Empty() bool {
	return q == nil || q.Op == OpMatchNothing
}

// LiteralTerms returns every literal term appearing in q, in construction
// order. Phrase queries contribute each of their words. Duplicates are kept.
func (q *Query) LiteralTerms() []string {
	var terms []string
	q.collectTerms(&terms)
	return terms
}

func (q *Query) collectTerms(out *[]string) {
	if q == nil {
		return
	}
	switch q.Op {
	case OpTerm:
		*out = append(*out, q.Term)
	case OpPhrase:
		*out = append(*out, q.Terms...)
	default:
		for _, c := range q.Children {
			c.collectTerms(out)
		}
	}
}

// String renders the query in a compact parenthesized form, mainly for
// logging and query-facet reporting.
func (q *Query) String() string {
	if q == nil {
		return "<nothing>"
	}
	switch q.Op {
	case OpMatchNothing:
		return "<nothing>"
	case OpMatchAll:
		return "<all>"
	case OpTerm:
		return q.Term
	case OpPhrase:
		return "\"" + strings.Join(q.Terms, " ") + "\""
	case OpAnd:
		return "(" + joinChildren(q.Children, " AND ") + ")"
	case OpOr:
		return "(" + joinChildren(q.Children, " OR ") + ")"
	case OpAndNot:
		return "(" + joinChildren(q.Children, " AND_NOT ") + ")"
	case OpScaleWeight:
		return fmt.Sprintf("%g*%s", q.Weight, q.Children[0])
	default:
		return "<invalid>"
	}
}

func joinChildren(children []*Query, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
