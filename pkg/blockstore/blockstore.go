// Package blockstore supplies the byte-range backend behind
// BlockResponse: given a path, an offset, and a length, produce the
// bytes to put on the wire. Two backends are provided — local disk and
// S3 — selected by pkg/config's BlockStoreConfig.
package blockstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when path has no corresponding object.
var ErrNotFound = errors.New("blockstore: not found")

// Store reads byte ranges of a path and reports a path's total size.
type Store interface {
	// Size returns the total size in bytes of path.
	Size(ctx context.Context, path string) (uint64, error)

	// ReadRange reads length bytes of path starting at offset. It may
	// return fewer bytes than length if the range runs past end of
	// file; it never returns more.
	ReadRange(ctx context.Context, path string, offset uint64, length uint32) ([]byte, error)

	// WriteRange writes data from reader into path, starting at
	// offset.
	WriteRange(ctx context.Context, path string, offset uint64, reader io.Reader) (int64, error)

	// Backend returns the backend's name, for metrics labeling ("disk", "s3").
	Backend() string
}
