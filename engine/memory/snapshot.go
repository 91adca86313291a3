package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/boolgo/codec"
	"github.com/hupe1980/boolgo/engine"
)

// snapshotFile is the single state file under an index path.
const snapshotFile = "index.zst"

// snapshot is the persisted index state.
type snapshot struct {
	Docs     map[engine.DocID]storedDoc `json:"docs"`
	Meta     map[string][]byte          `json:"meta,omitempty"`
	Spelling map[string]int             `json:"spelling,omitempty"`
	NextID   engine.DocID               `json:"next_id"`
}

// loadDatabase decodes the snapshot under path. A missing snapshot yields an
// empty database.
func loadDatabase(path string, c codec.Codec) (*database, error) {
	db := newDatabase()

	raw, err := os.ReadFile(filepath.Join(path, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: read snapshot: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("memory: create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("memory: decompress snapshot: %w", err)
	}

	var snap snapshot
	if err := c.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("memory: decode snapshot: %w", err)
	}

	for id, d := range snap.Docs {
		stored := d
		db.docs[id] = &stored
		db.addPostings(id, &stored)
	}
	if snap.Meta != nil {
		db.meta = snap.Meta
	}
	if snap.Spelling != nil {
		db.spelling = snap.Spelling
	}
	if db.nextID = snap.NextID; db.nextID == 0 {
		db.nextID = 1
	}
	return db, nil
}

// saveDatabase writes the snapshot atomically: encode, compress, write to a
// temporary file and rename over the live one.
func saveDatabase(path string, db *database, c codec.Codec) error {
	snap := snapshot{
		Docs:     make(map[engine.DocID]storedDoc, len(db.docs)),
		Meta:     db.meta,
		Spelling: db.spelling,
		NextID:   db.nextID,
	}
	for id, d := range db.docs {
		snap.Docs[id] = *d
	}

	data, err := c.Marshal(snap)
	if err != nil {
		return fmt.Errorf("memory: encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("memory: create zstd writer: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("memory: close zstd writer: %w", err)
	}

	tmp := filepath.Join(path, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("memory: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(path, snapshotFile)); err != nil {
		return fmt.Errorf("memory: commit snapshot: %w", err)
	}
	return nil
}
