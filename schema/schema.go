// Package schema derives and persists the index schema: which fields are
// indexed, their value types, multi-valued flags and sort-key slots, plus the
// single content field used for highlighting.
package schema

import (
	"fmt"
	"sync"

	"github.com/hupe1980/boolgo/attr"
	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/engine"
)

// Metadata keys under which the schema is persisted alongside the index.
const (
	metaKeySchema  = "schema"
	metaKeyContent = "content"
)

// FieldType classifies an indexed field for marshaling and faceting.
type FieldType string

const (
	TypeText    FieldType = "text"
	TypeDate    FieldType = "date"
	TypeLong    FieldType = "long"
	TypeFloat   FieldType = "float"
	TypeBoolean FieldType = "boolean"
)

// Descriptor describes one field as declared by the host framework.
type Descriptor struct {
	// Name is the field name as it appears in prepared record data.
	Name string
	// Kind is the declared base value kind of the field.
	Kind attr.Kind
	// MultiValued marks fields carrying a list of values.
	MultiValued bool
	// Document marks the content field. At most one descriptor may set it.
	Document bool
	// Indexed fields receive terms and a sort slot; others are skipped.
	Indexed bool
}

// Field is one persisted schema entry.
//
// The JSON field names are part of the persisted index format; keep them
// stable.
type Field struct {
	Name        string    `json:"field_name"`
	Type        FieldType `json:"type"`
	MultiValued bool      `json:"multi_valued"`
	Slot        int       `json:"column"`
}

// Schema is the derived index schema: the content field name plus the
// ordered indexed fields with their dense, zero-based sort slots.
type Schema struct {
	ContentField string
	Fields       []Field
}

// Build derives a Schema from descriptors. Indexed descriptors are assigned
// dense sort slots in declaration order; value types classify by declared
// kind, with multi-valued flagged independently of the base type.
func Build(descriptors []Descriptor) Schema {
	var s Schema
	slot := 0
	for _, d := range descriptors {
		if d.Document {
			s.ContentField = d.Name
		}
		if !d.Indexed {
			continue
		}
		s.Fields = append(s.Fields, Field{
			Name:        d.Name,
			Type:        classify(d.Kind),
			MultiValued: d.MultiValued || d.Kind == attr.KindList,
			Slot:        slot,
		})
		slot++
	}
	return s
}

func classify(k attr.Kind) FieldType {
	switch k {
	case attr.KindDate, attr.KindDateTime:
		return TypeDate
	case attr.KindLong:
		return TypeLong
	case attr.KindFloat:
		return TypeFloat
	case attr.KindBool:
		return TypeBoolean
	default:
		return TypeText
	}
}

// Registry caches the current schema and answers slot and multi-valued
// lookups. Lookups are lenient: unknown fields report slot 0 and
// single-valued rather than an error, so callers must not use them as
// existence checks.
//
// The cache must be refreshed (Set or Load) whenever a new handle is opened;
// a writable open may have just changed the schema.
type Registry struct {
	mu     sync.RWMutex
	schema Schema
	c      codec.Codec
}

// NewRegistry creates a Registry persisting through c. A nil codec falls
// back to codec.Default.
func NewRegistry(c codec.Codec) *Registry {
	if c == nil {
		c = codec.Default
	}
	return &Registry{c: c}
}

// Set replaces the cached schema.
func (r *Registry) Set(s Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schema = s
}

// Current returns the cached schema.
func (r *Registry) Current() Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema
}

// ContentField returns the cached content field name.
func (r *Registry) ContentField() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema.ContentField
}

// SlotOf returns the sort slot of field, or 0 when the field is unknown.
func (r *Registry) SlotOf(field string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.schema.Fields {
		if f.Name == field {
			return f.Slot
		}
	}
	return 0
}

// MultiValued reports whether field is multi-valued, or false when the field
// is unknown.
func (r *Registry) MultiValued(field string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.schema.Fields {
		if f.Name == field {
			return f.MultiValued
		}
	}
	return false
}

// TypeOf returns the declared type of field, or TypeText when unknown.
func (r *Registry) TypeOf(field string) FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.schema.Fields {
		if f.Name == field {
			return f.Type
		}
	}
	return TypeText
}

// Persist writes the cached schema into the index metadata store so that
// read-only handles reconstruct it without re-deriving from descriptors.
func (r *Registry) Persist(w engine.Writer) error {
	s := r.Current()

	fields, err := r.c.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("schema: marshal fields: %w", err)
	}
	if err := w.SetMetadata(metaKeySchema, fields); err != nil {
		return fmt.Errorf("schema: persist fields: %w", err)
	}

	content, err := r.c.Marshal(s.ContentField)
	if err != nil {
		return fmt.Errorf("schema: marshal content field: %w", err)
	}
	if err := w.SetMetadata(metaKeyContent, content); err != nil {
		return fmt.Errorf("schema: persist content field: %w", err)
	}
	return nil
}

// Load replaces the cached schema with the one persisted in the index
// metadata store.
func (r *Registry) Load(rd engine.Reader) error {
	var s Schema

	fields, err := rd.Metadata(metaKeySchema)
	if err != nil {
		return fmt.Errorf("schema: load fields: %w", err)
	}
	if err := r.c.Unmarshal(fields, &s.Fields); err != nil {
		return fmt.Errorf("schema: decode fields: %w", err)
	}

	content, err := rd.Metadata(metaKeyContent)
	if err != nil {
		return fmt.Errorf("schema: load content field: %w", err)
	}
	if err := r.c.Unmarshal(content, &s.ContentField); err != nil {
		return fmt.Errorf("schema: decode content field: %w", err)
	}

	r.Set(s)
	return nil
}
