// Package memory provides a complete local implementation of the engine
// contract: an in-memory inverted index with roaring-bitmap postings,
// positional phrase matching, BM25 term weighting, a spelling dictionary,
// relevance-set expansion and a per-index key/value metadata store.
//
// State persists as a single zstd-compressed snapshot file under the index
// path. Readers decode the snapshot at open time and therefore observe the
// index as of that moment; a writer mutates a private copy and commits it
// atomically when closed. At most one writable handle may be open per path.
package memory
