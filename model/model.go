// Package model defines the record and result types exchanged with the host
// search framework, and the term-prefix scheme documents are keyed by.
package model

import (
	"strings"

	"github.com/hupe1980/boolgo/attr"
)

// Term prefixes. Every document carries exactly one identifier term and one
// type-marker term; field-scoped terms carry the custom prefix plus the
// uppercased field name.
const (
	// IDTermPrefix prefixes the globally unique identifier term.
	IDTermPrefix = "Q"
	// CustomTermPrefix prefixes every field-scoped term.
	CustomTermPrefix = "X"
	// TypeTermPrefix prefixes the type-marker term used for model-restricted
	// queries and bulk deletion.
	TypeTermPrefix = CustomTermPrefix + "CONTENTTYPE"
)

// Record is one unit of indexable data: a logical type (e.g. "blog.post"),
// a primary key and the prepared attribute mapping produced by the host
// framework.
type Record struct {
	Type string
	PK   string
	Data attr.Map
}

// Identifier returns the stable identifier string "type.pk".
func (r Record) Identifier() string { return r.Type + "." + r.PK }

// IdentifierTerm returns the unique identifier term for a (type, pk) pair.
func IdentifierTerm(recordType, pk string) string {
	return IDTermPrefix + recordType + "." + pk
}

// TypeTerm returns the type-marker term for a record type.
func TypeTerm(recordType string) string {
	return TypeTermPrefix + recordType
}

// FieldPrefix returns the term prefix scoping terms to field.
func FieldPrefix(field string) string {
	return CustomTermPrefix + strings.ToUpper(field)
}

// SearchResult is one decoded match.
type SearchResult struct {
	Type  string
	PK    string
	Score float64
	Data  attr.Map

	// Highlighted maps the content field name to its marked-up text when
	// highlighting was requested.
	Highlighted map[string]string
}
