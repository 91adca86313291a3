package memory

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/engine"
)

// Options configure a Provider.
type Options struct {
	// Codec encodes the snapshot file. Defaults to codec.Default.
	Codec codec.Codec
	// Language selects the stemming language for term generation.
	// Defaults to "english".
	Language string
}

// Provider opens handles against snapshot-backed indexes. It enforces the
// single-writer discipline per index path.
type Provider struct {
	mu      sync.Mutex
	writers map[string]bool

	codec    codec.Codec
	language string
}

var _ engine.Provider = (*Provider)(nil)

// NewProvider creates a Provider.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Codec:    codec.Default,
		Language: "english",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	return &Provider{
		writers:  make(map[string]bool),
		codec:    opts.Codec,
		language: opts.Language,
	}
}

// Open opens a read-only handle on the index at path, creating the path if
// absent. The handle sees the snapshot as of this call.
func (p *Provider) Open(path string) (engine.Reader, error) {
	db, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return &handle{provider: p, path: path, db: db}, nil
}

// OpenWritable opens the single writable handle on the index at path.
// It fails with engine.ErrWriterActive while another writer is open.
func (p *Provider) OpenWritable(path string) (engine.Writer, error) {
	p.mu.Lock()
	if p.writers[path] {
		p.mu.Unlock()
		return nil, fmt.Errorf("memory: open %s: %w", path, engine.ErrWriterActive)
	}
	p.writers[path] = true
	p.mu.Unlock()

	db, err := p.load(path)
	if err != nil {
		p.release(path)
		return nil, err
	}
	return &handle{provider: p, path: path, db: db, writable: true}, nil
}

func (p *Provider) load(path string) (*database, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("memory: create index path: %w", err)
	}
	return loadDatabase(path, p.codec)
}

func (p *Provider) release(path string) {
	p.mu.Lock()
	delete(p.writers, path)
	p.mu.Unlock()
}

// storedDoc is the persisted form of one document.
type storedDoc struct {
	Terms     []string         `json:"terms"`
	Positions map[string][]int `json:"positions,omitempty"`
	Values    map[int]string   `json:"values,omitempty"`
	Payload   []byte           `json:"payload,omitempty"`
}

// length returns the positional token count used for BM25 normalization.
func (d *storedDoc) length() int {
	n := 0
	for _, ps := range d.Positions {
		n += len(ps)
	}
	return n
}

// database is the decoded index state plus derived posting lists.
type database struct {
	docs     map[engine.DocID]*storedDoc
	meta     map[string][]byte
	spelling map[string]int
	nextID   engine.DocID

	postings map[string]*roaring.Bitmap
	totalLen int64
}

func newDatabase() *database {
	return &database{
		docs:     make(map[engine.DocID]*storedDoc),
		meta:     make(map[string][]byte),
		spelling: make(map[string]int),
		nextID:   1,
		postings: make(map[string]*roaring.Bitmap),
	}
}

func (db *database) addPostings(id engine.DocID, d *storedDoc) {
	for _, t := range d.Terms {
		bm := db.postings[t]
		if bm == nil {
			bm = roaring.New()
			db.postings[t] = bm
		}
		bm.Add(uint32(id))
	}
	db.totalLen += int64(d.length())
}

func (db *database) removeDoc(id engine.DocID) {
	d, ok := db.docs[id]
	if !ok {
		return
	}
	for _, t := range d.Terms {
		if bm := db.postings[t]; bm != nil {
			bm.Remove(uint32(id))
			if bm.IsEmpty() {
				delete(db.postings, t)
			}
		}
	}
	db.totalLen -= int64(d.length())
	delete(db.docs, id)
}

// handle implements engine.Reader and engine.Writer over a database.
type handle struct {
	provider *Provider
	path     string
	db       *database
	writable bool

	mu     sync.Mutex
	closed bool
}

var (
	_ engine.Reader = (*handle)(nil)
	_ engine.Writer = (*handle)(nil)
)

// DocCount implements engine.Reader.
func (h *handle) DocCount() int { return len(h.db.docs) }

// TermCount implements engine.Reader.
func (h *handle) TermCount(id engine.DocID) int {
	d, ok := h.db.docs[id]
	if !ok {
		return 0
	}
	return len(d.Terms)
}

// AllTerms implements engine.Reader.
func (h *handle) AllTerms(prefix string) ([]string, error) {
	terms := make([]string, 0, len(h.db.postings))
	for t := range h.db.postings {
		if strings.HasPrefix(t, prefix) {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)
	return terms, nil
}

// Metadata implements engine.Reader.
func (h *handle) Metadata(key string) ([]byte, error) {
	v, ok := h.db.meta[key]
	if !ok {
		return nil, fmt.Errorf("memory: metadata %q: %w", key, engine.ErrNotFound)
	}
	return v, nil
}

// SetMetadata implements engine.Writer.
func (h *handle) SetMetadata(key string, value []byte) error {
	h.db.meta[key] = value
	return nil
}

// ReplaceDocument implements engine.Writer.
func (h *handle) ReplaceDocument(idTerm string, doc engine.Document) error {
	stored := &storedDoc{
		Terms:     append([]string(nil), doc.Terms...),
		Positions: doc.Positions,
		Values:    doc.Values,
		Payload:   doc.Payload,
	}
	if !contains(stored.Terms, idTerm) {
		stored.Terms = append(stored.Terms, idTerm)
	}

	// Replace-by-identifier: no two documents ever share an identifier term.
	if bm := h.db.postings[idTerm]; bm != nil {
		for _, id := range bm.ToArray() {
			h.db.removeDoc(engine.DocID(id))
		}
	}

	id := h.db.nextID
	h.db.nextID++
	h.db.docs[id] = stored
	h.db.addPostings(id, stored)
	return nil
}

// DeleteByTerm implements engine.Writer.
func (h *handle) DeleteByTerm(term string) error {
	bm := h.db.postings[term]
	if bm == nil {
		return nil
	}
	for _, id := range bm.ToArray() {
		h.db.removeDoc(engine.DocID(id))
	}
	return nil
}

// DeleteDocument implements engine.Writer.
func (h *handle) DeleteDocument(id engine.DocID) error {
	h.db.removeDoc(id)
	return nil
}

// TermGenerator implements engine.Writer.
func (h *handle) TermGenerator(spelling bool) engine.TermGenerator {
	return &termGenerator{
		db:       h.db,
		language: h.provider.language,
		spelling: spelling,
	}
}

// Close releases the handle. A writable handle persists its state before
// releasing the writer slot; the release happens on every path, including
// persistence failure.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	if !h.writable {
		return nil
	}
	defer h.provider.release(h.path)
	return saveDatabase(h.path, h.db, h.provider.codec)
}

func contains(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}
