package engine

import "errors"

var (
	// ErrNotFound is returned when a document or metadata key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrWriterActive is returned by OpenWritable while another writable
	// handle is open against the same index.
	ErrWriterActive = errors.New("writable handle already open")
)

// DocID is the engine-internal identifier of a stored document. It is only
// meaningful to the handle that produced it.
type DocID uint32

// Document is the unit written to the engine: searchable terms, per-slot
// sort-key values and an opaque payload.
type Document struct {
	// Terms are the searchable terms, including any field-prefixed and
	// marker terms.
	Terms []string
	// Positions holds, for positional terms produced by a TermGenerator,
	// the token positions at which each term occurred. Terms without
	// positions still match term queries but never phrase queries.
	Positions map[string][]int
	// Values maps sort slots to encoded sort-key strings.
	Values map[int]string
	// Payload is an opaque blob stored verbatim and returned with matches.
	Payload []byte
}

// AddTerm records term without positional information.
func (d *Document) AddTerm(term string) {
	d.Terms = append(d.Terms, term)
}

// AddValue stores an encoded sort-key value in the given slot.
func (d *Document) AddValue(slot int, value string) {
	if d.Values == nil {
		d.Values = make(map[int]string)
	}
	d.Values[slot] = value
}

// Match is a single query result.
type Match struct {
	DocID    DocID
	Weight   float64
	Document Document
}

// MatchSet is the result window of a query execution.
type MatchSet struct {
	Matches []Match
	// Estimated is the engine's estimate of the total number of matching
	// documents, independent of the requested window.
	Estimated int
}

// SortKey orders matches by the encoded value in a sort slot.
//
// Reverse follows the boolean engine's historical sorter convention: true
// sorts the key ascending. Callers translating a user-facing descending flag
// must invert it.
type SortKey struct {
	Slot    int
	Reverse bool
}

// SearchOptions bound and order a query execution.
type SearchOptions struct {
	Offset int
	// Limit is the maximum number of matches to return. A negative limit
	// means "to the end of the index".
	Limit int
	// Sort, when non-empty, orders matches by the composite key first and
	// by relevance for ties.
	Sort []SortKey
}

// ExpandDecider filters candidate terms during relevance-set expansion.
// Returning false excludes the term.
type ExpandDecider func(term string) bool

// Provider opens handles against an index at a filesystem path, creating the
// index if absent. Implementations enforce single-writer discipline: at most
// one Writer may be open per index at a time, while Readers open freely and
// observe a snapshot as of open time.
type Provider interface {
	Open(path string) (Reader, error)
	OpenWritable(path string) (Writer, error)
}

// Reader is a read-only handle on an index.
type Reader interface {
	// Search executes q and returns the requested match window together
	// with an estimated total count.
	Search(q *Query, opts SearchOptions) (*MatchSet, error)

	// DocCount returns the number of documents in the snapshot.
	DocCount() int

	// AllTerms returns every stored term beginning with prefix, in
	// lexicographic order. An empty prefix enumerates all terms.
	AllTerms(prefix string) ([]string, error)

	// TermCount returns the number of distinct terms in the given document,
	// or 0 if the document is unknown.
	TermCount(id DocID) int

	// Metadata reads a key from the index's key/value metadata store.
	// Missing keys return ErrNotFound.
	Metadata(key string) ([]byte, error)

	// SpellingSuggestion returns a corrected spelling for word from the
	// index's spelling dictionary, or "" when the dictionary offers none.
	SpellingSuggestion(word string) string

	// ExpandTerms computes an expansion set: up to limit candidate terms
	// statistically associated with the relevance set rset, filtered
	// through decide (nil admits every term).
	ExpandTerms(rset []DocID, limit int, decide ExpandDecider) ([]string, error)

	Close() error
}

// Writer is a writable handle on an index. Mutations become visible to new
// Readers once the Writer is closed successfully.
type Writer interface {
	Reader

	// ReplaceDocument atomically replaces any document carrying idTerm
	// with doc, or adds doc if none exists. doc gains idTerm if missing.
	ReplaceDocument(idTerm string, doc Document) error

	// DeleteByTerm removes every document carrying term.
	DeleteByTerm(term string) error

	// DeleteDocument removes a document by its internal id.
	DeleteDocument(id DocID) error

	// SetMetadata writes a key in the index's key/value metadata store.
	SetMetadata(key string, value []byte) error

	// TermGenerator returns a term generator bound to this writer's
	// stemming configuration. When spelling is true, generated words also
	// populate the index's spelling dictionary.
	TermGenerator(spelling bool) TermGenerator
}

// TermGenerator indexes free text into a Document: tokens are case-folded,
// stemmed and recorded with positions, optionally under a field prefix.
type TermGenerator interface {
	// SetDocument directs subsequently generated terms into doc.
	SetDocument(doc *Document)

	// IndexText indexes text into the current document. Each token is
	// added with the given within-document weight; prefix, when non-empty,
	// is prepended to every generated term.
	IndexText(text string, weight int, prefix string)
}
