package storage

import (
	"context"

	"reelsort/internal/media"
)

// Adapter abstracts a storage backend so the transfer pipeline can move
// files without knowing where they live.
type Adapter interface {
	// Type identifies the backend for rule filtering.
	Type() media.StorageType

	// Browse lists the entries directly under dir. Video files and
	// directories only; ordering follows the backend.
	Browse(ctx context.Context, dir string) ([]media.FileInfo, error)

	// Move relocates src to the path relative to the adapter's library
	// root, creating parent directories. Implementations must never
	// overwrite an existing file; collisions get a numbered suffix. The
	// final absolute destination is returned.
	Move(ctx context.Context, src, relTarget string) (string, error)
}
