// Package repository stores the metadata the server needs to answer
// DownloadRequests: the name, size, and md5 checksum of each file_id
// it's willing to serve, plus the blockstore path backing it.
//
// Named in spec.md as an external collaborator ("ServerFileInfoRepository")
// reached through an interface; this package supplies that interface
// plus two concrete implementations — an embedded Badger KV store for
// production and an in-memory map for tests.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a file_id has no registered file info.
var ErrNotFound = errors.New("repository: not found")

// FileInfo is the metadata tracked for one servable file_id.
type FileInfo struct {
	FileID    int64
	Path      string // blockstore key backing this file_id
	FileName  string
	FileSize  int64
	MD5Code   string
	UpdatedAt time.Time
}

// Repository looks up and maintains FileInfo records, keyed by file_id.
type Repository interface {
	// Get returns the FileInfo for fileID, or ErrNotFound if fileID has
	// never been registered.
	Get(ctx context.Context, fileID int64) (FileInfo, error)

	// Put registers or replaces the FileInfo for info.FileID.
	Put(ctx context.Context, info FileInfo) error

	// Delete removes fileID's FileInfo. Deleting a fileID that doesn't
	// exist is not an error.
	Delete(ctx context.Context, fileID int64) error

	// List returns every registered FileInfo, in no particular order.
	List(ctx context.Context) ([]FileInfo, error)

	// Close releases any resources held by the repository.
	Close() error
}
