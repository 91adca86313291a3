package boolgo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// backupConcurrency bounds parallel blob transfers.
const backupConcurrency = 4

// Backup copies every index file under the configured path into the blob
// store, prefixed by name. Requires WithBlobStore.
func (b *Backend) Backup(ctx context.Context, name string) error {
	err := b.backup(ctx, name)
	b.logger.LogBackup(ctx, name, err)
	return err
}

func (b *Backend) backup(ctx context.Context, name string) error {
	if b.store == nil {
		return ErrNoBlobStore
	}

	var files []string
	err := filepath.WalkDir(b.cfg.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.cfg.Path, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("boolgo: walk index path: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backupConcurrency)
	for _, file := range files {
		file := file
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(b.cfg.Path, filepath.FromSlash(file)))
			if err != nil {
				return fmt.Errorf("boolgo: read index file %q: %w", file, err)
			}
			if err := b.store.Put(ctx, path.Join(name, file), data); err != nil {
				return fmt.Errorf("boolgo: upload %q: %w", file, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Restore replaces the index at the configured path with the backup stored
// under name. The backend must be otherwise idle: restoring under an active
// writer corrupts the index.
func (b *Backend) Restore(ctx context.Context, name string) error {
	err := b.restore(ctx, name)
	b.logger.LogRestore(ctx, name, err)
	return err
}

func (b *Backend) restore(ctx context.Context, name string) error {
	if b.store == nil {
		return ErrNoBlobStore
	}

	prefix := name + "/"
	blobs, err := b.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("boolgo: list backup %q: %w", name, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backupConcurrency)
	for _, blob := range blobs {
		blob := blob
		g.Go(func() error {
			data, err := b.store.Get(ctx, blob)
			if err != nil {
				return fmt.Errorf("boolgo: download %q: %w", blob, err)
			}

			rel := strings.TrimPrefix(blob, prefix)
			target := filepath.Join(b.cfg.Path, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("boolgo: create index dir: %w", err)
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("boolgo: write index file %q: %w", rel, err)
			}
			return nil
		})
	}
	return g.Wait()
}
