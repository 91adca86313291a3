package boolgo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kljensen/snowball"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/blobstore"
	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/engine"
	"github.com/hupe1980/boolgo/engine/memory"
	"github.com/hupe1980/boolgo/marshal"
	"github.com/hupe1980/boolgo/model"
	"github.com/hupe1980/boolgo/schema"
)

// Site exposes what the host framework knows about the searchable corpus:
// the declared fields and the registered record types.
type Site interface {
	// SearchFields returns the declared field descriptors, in declaration
	// order.
	SearchFields() []schema.Descriptor

	// RegisteredTypes returns the record types searches are restricted to
	// by default.
	RegisteredTypes() []string
}

// payloadV1 is the stored document payload. The version field guards future
// format changes.
type payloadV1 struct {
	Version int      `json:"v"`
	Type    string   `json:"type"`
	PK      string   `json:"pk"`
	Data    attr.Map `json:"data"`
}

// IndexFailure records one record that could not be indexed.
type IndexFailure struct {
	Identifier string
	Err        error
}

// UpdateResult reports the outcome of a batch indexing operation. Records
// fail individually; one bad record never aborts the batch.
type UpdateResult struct {
	Indexed  int
	Failures []IndexFailure
}

// Backend is a search backend over a single index path. It is safe for
// concurrent use; writes serialize on the engine's single-writer discipline.
type Backend struct {
	cfg      Config
	site     Site
	provider engine.Provider
	registry *schema.Registry
	codec    codec.Codec
	store    blobstore.Store
	logger   *Logger
	metrics  MetricsCollector
	stem     func(word string) string
}

// New creates a Backend for the index at cfg.Path.
func New(cfg Config, site Site, optFns ...Option) (*Backend, error) {
	if cfg.Path == "" {
		return nil, ErrPathNotConfigured
	}
	if site == nil {
		return nil, ErrMissingSite
	}
	cfg.applyDefaults()

	opts := options{
		codec:            codec.Default,
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
	}
	if cfg.Codec != "" {
		c, ok := codec.ByName(cfg.Codec)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, cfg.Codec)
		}
		opts.codec = c
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.provider == nil {
		opts.provider = memory.NewProvider(func(o *memory.Options) {
			o.Codec = opts.codec
			o.Language = cfg.Language
		})
	}

	return &Backend{
		cfg:      cfg,
		site:     site,
		provider: opts.provider,
		registry: schema.NewRegistry(opts.codec),
		codec:    opts.codec,
		store:    opts.blobStore,
		logger:   opts.logger,
		metrics:  opts.metricsCollector,
		stem:     stemmer(cfg.Language),
	}, nil
}

// stemmer normalizes a query word exactly like the indexing tokenizer does.
func stemmer(language string) func(string) string {
	return func(word string) string {
		stemmed, err := snowball.Stem(word, language, true)
		if err != nil {
			return strings.ToLower(word)
		}
		return stemmed
	}
}

// Update indexes records, replacing any previously indexed revision of each.
// The derived schema is refreshed from the site and persisted alongside the
// index before any record is written.
func (b *Backend) Update(ctx context.Context, records []model.Record) (*UpdateResult, error) {
	start := time.Now()

	w, err := b.provider.OpenWritable(b.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("boolgo: open writable index: %w", err)
	}
	defer w.Close()

	b.registry.Set(schema.Build(b.site.SearchFields()))
	if err := b.registry.Persist(w); err != nil {
		return nil, err
	}

	tg := w.TermGenerator(b.cfg.IncludeSpelling)

	result := &UpdateResult{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.indexRecord(w, tg, rec); err != nil {
			result.Failures = append(result.Failures, IndexFailure{
				Identifier: rec.Identifier(),
				Err:        err,
			})
			continue
		}
		result.Indexed++
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("boolgo: commit index: %w", err)
	}

	b.metrics.RecordUpdate(len(records), len(result.Failures), time.Since(start))
	b.logger.LogUpdate(ctx, len(records), len(result.Failures))
	return result, nil
}

// indexRecord builds and writes one document.
func (b *Backend) indexRecord(w engine.Writer, tg engine.TermGenerator, rec model.Record) error {
	var doc engine.Document
	tg.SetDocument(&doc)

	s := b.registry.Current()
	for _, f := range s.Fields {
		v, ok := rec.Data[f.Name]
		if !ok || v.IsZero() {
			continue
		}
		prefix := model.FieldPrefix(f.Name)

		if f.Type == schema.TypeText {
			text := marshal.Term(v)
			tg.IndexText(text, 1, prefix)
			tg.IndexText(text, 1, "")
		} else {
			for _, el := range v.Elements() {
				term := marshal.Term(el)
				if term == "" {
					continue
				}
				doc.AddTerm(prefix + term)
				doc.AddTerm(term)
			}
		}

		key, err := marshal.SortKey(v)
		if err != nil {
			return fmt.Errorf("boolgo: field %q: %w", f.Name, err)
		}
		doc.AddValue(f.Slot, key)
	}

	doc.AddTerm(model.TypeTerm(rec.Type))

	payload, err := b.codec.Marshal(payloadV1{
		Version: 1,
		Type:    rec.Type,
		PK:      rec.PK,
		Data:    rec.Data,
	})
	if err != nil {
		return fmt.Errorf("boolgo: encode payload: %w", err)
	}
	doc.Payload = payload

	if err := w.ReplaceDocument(model.IdentifierTerm(rec.Type, rec.PK), doc); err != nil {
		return fmt.Errorf("boolgo: replace document: %w", err)
	}
	return nil
}

// Remove deletes the record identified by (recordType, pk). Removing an
// unindexed record is not an error.
func (b *Backend) Remove(ctx context.Context, recordType, pk string) error {
	start := time.Now()
	identifier := recordType + "." + pk

	err := b.withWriter(func(w engine.Writer) error {
		return w.DeleteByTerm(model.IdentifierTerm(recordType, pk))
	})

	b.metrics.RecordRemove(time.Since(start), err)
	b.logger.LogRemove(ctx, identifier, err)
	return err
}

// Clear deletes every record of the given types. With no types it empties
// the whole index, keeping the persisted schema.
func (b *Backend) Clear(ctx context.Context, types []string) error {
	start := time.Now()

	err := b.withWriter(func(w engine.Writer) error {
		if len(types) == 0 {
			idTerms, err := w.AllTerms(model.IDTermPrefix)
			if err != nil {
				return err
			}
			for _, t := range idTerms {
				if err := w.DeleteByTerm(t); err != nil {
					return err
				}
			}
			return nil
		}
		for _, recordType := range types {
			if err := w.DeleteByTerm(model.TypeTerm(recordType)); err != nil {
				return err
			}
		}
		return nil
	})

	b.metrics.RecordClear(time.Since(start), err)
	b.logger.LogClear(ctx, types, err)
	return err
}

// DocCount returns the number of indexed documents.
func (b *Backend) DocCount() (int, error) {
	rd, err := b.provider.Open(b.cfg.Path)
	if err != nil {
		return 0, fmt.Errorf("boolgo: open index: %w", err)
	}
	defer rd.Close()
	return rd.DocCount(), nil
}

func (b *Backend) withWriter(fn func(w engine.Writer) error) error {
	w, err := b.provider.OpenWritable(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("boolgo: open writable index: %w", err)
	}
	if err := fn(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("boolgo: commit index: %w", err)
	}
	return nil
}

// openReader opens a read handle and refreshes the schema cache from the
// index metadata, falling back to a site-derived schema for a never-written
// index.
func (b *Backend) openReader() (engine.Reader, error) {
	rd, err := b.provider.Open(b.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("boolgo: open index: %w", err)
	}
	if err := b.registry.Load(rd); err != nil {
		b.registry.Set(schema.Build(b.site.SearchFields()))
	}
	return rd, nil
}

func (b *Backend) decodePayload(data []byte) (payloadV1, error) {
	var p payloadV1
	if err := b.codec.Unmarshal(data, &p); err != nil {
		return payloadV1{}, fmt.Errorf("boolgo: decode payload: %w", err)
	}
	return p, nil
}
