// Package blobstore abstracts the destinations index backups are copied to
// and restored from: a local directory, an in-memory map for tests, or any
// S3-compatible object store via the minio subpackage.
package blobstore
