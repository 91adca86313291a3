package boolgo

import "errors"

var (
	// ErrPathNotConfigured is returned by New when the configuration names
	// no index path.
	ErrPathNotConfigured = errors.New("boolgo: index path not configured")

	// ErrMissingSite is returned by New when no site is provided.
	ErrMissingSite = errors.New("boolgo: missing site")

	// ErrUnknownCodec is returned by New when the configuration names a
	// codec that is not registered.
	ErrUnknownCodec = errors.New("boolgo: unknown codec")

	// ErrNoBlobStore is returned by Backup and Restore when no blob store
	// was configured.
	ErrNoBlobStore = errors.New("boolgo: no blob store configured")
)
