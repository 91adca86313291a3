package boolgo

import (
	"github.com/hupe1980/boolgo/blobstore"
	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/engine"
)

type options struct {
	codec            codec.Codec
	logger           *Logger
	metricsCollector MetricsCollector
	provider         engine.Provider
	blobStore        blobstore.Store
}

// Option configures backend constructor behavior.
type Option func(*options)

// WithCodec configures the codec used for payloads and the persisted schema.
//
// If nil is passed, codec.Default is used. Overrides any codec named in the
// Config.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures a custom logger. Pass nil to keep the default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metricsCollector = m
	}
}

// WithProvider overrides the retrieval engine. The default is the built-in
// snapshot-backed memory engine.
func WithProvider(p engine.Provider) Option {
	return func(o *options) {
		if p != nil {
			o.provider = p
		}
	}
}

// WithBlobStore configures the destination Backup copies the index to and
// Restore reads it from.
func WithBlobStore(s blobstore.Store) Option {
	return func(o *options) {
		o.blobStore = s
	}
}
