// Package query models caller-constructed filter-expression trees and
// compiles them into the retrieval engine's boolean query algebra.
package query

import (
	"github.com/hupe1980/boolgo/attr"
)

// Content is the field marker for free-text lookups matching any field.
const Content = "content"

// Connector combines the children of a node.
type Connector string

const (
	// ConnectorAnd conjoins sibling children. It is the default.
	ConnectorAnd Connector = "AND"
	// ConnectorOr disjoins sibling children.
	ConnectorOr Connector = "OR"
)

// Lookup is the match kind of a leaf.
type Lookup string

const (
	LookupExact      Lookup = "exact"
	LookupStartswith Lookup = "startswith"
	LookupIn         Lookup = "in"
	LookupContent    Lookup = "content"
	LookupGt         Lookup = "gt"
	LookupGte        Lookup = "gte"
	LookupLt         Lookup = "lt"
	LookupLte        Lookup = "lte"
)

// Node is an inner node of a filter-expression tree: a connector, an
// optional negation flag and an ordered list of children.
type Node struct {
	Connector Connector
	Negated   bool
	Children  []Child
}

// Child is either a nested Node or a Leaf; exactly one is non-nil.
type Child struct {
	Node *Node
	Leaf *Leaf
}

// Leaf is a single lookup against a field (or the content marker).
type Leaf struct {
	Field  string
	Lookup Lookup
	Values []attr.Value
}

// Empty reports whether the tree has no children.
func (n *Node) Empty() bool { return n == nil || len(n.Children) == 0 }

// And returns a node conjoining children.
func And(children ...Child) *Node {
	return &Node{Connector: ConnectorAnd, Children: children}
}

// Or returns a node disjoining children.
func Or(children ...Child) *Node {
	return &Node{Connector: ConnectorOr, Children: children}
}

// Not marks n as negated and returns it.
func Not(n *Node) *Node {
	n.Negated = true
	return n
}

// Group wraps a nested node as a child.
func Group(n *Node) Child { return Child{Node: n} }

// Exact returns an exact-match leaf child on field.
func Exact(field string, v attr.Value) Child {
	return Child{Leaf: &Leaf{Field: field, Lookup: LookupExact, Values: []attr.Value{v}}}
}

// ContentMatch returns a free-text leaf child matching any field.
func ContentMatch(v attr.Value) Child {
	return Child{Leaf: &Leaf{Field: Content, Lookup: LookupContent, Values: []attr.Value{v}}}
}

// In returns a leaf child matching any of vs on field.
func In(field string, vs ...attr.Value) Child {
	return Child{Leaf: &Leaf{Field: field, Lookup: LookupIn, Values: vs}}
}

// StartsWith returns a prefix-match leaf child on field.
func StartsWith(field string, v attr.Value) Child {
	return Child{Leaf: &Leaf{Field: field, Lookup: LookupStartswith, Values: []attr.Value{v}}}
}
