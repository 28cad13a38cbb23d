package blockstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danejoe001/transfer/pkg/metrics"
)

// DiskStore is a local-filesystem-backed Store, rooted at a directory.
type DiskStore struct {
	root    string
	metrics metrics.BlockStoreMetrics
}

// NewDiskStore returns a DiskStore rooted at root. m may be nil to
// disable metrics.
func NewDiskStore(root string, m metrics.BlockStoreMetrics) *DiskStore {
	return &DiskStore{root: root, metrics: m}
}

func (d *DiskStore) Backend() string { return "disk" }

// resolve maps a request path onto a path under root, rejecting any
// path that would escape root via ".." traversal.
func (d *DiskStore) resolve(p string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(p, "/"))
	full := filepath.Join(d.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(d.root)+string(filepath.Separator)) && full != filepath.Clean(d.root) {
		return "", fmt.Errorf("blockstore disk: path %q escapes root", p)
	}
	return full, nil
}

func (d *DiskStore) Size(_ context.Context, p string) (size uint64, err error) {
	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveOperation("disk", "Size", time.Since(start), err)
		}
	}()

	full, err := d.resolve(p)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("blockstore disk: stat %s: %w", full, err)
	}
	return uint64(info.Size()), nil
}

func (d *DiskStore) ReadRange(_ context.Context, p string, offset uint64, length uint32) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveOperation("disk", "ReadRange", time.Since(start), err)
			if len(data) > 0 {
				d.metrics.RecordBytes("disk", "read", int64(len(data)))
			}
		}
	}()

	full, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("blockstore disk: open %s: %w", full, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, length)
	n, readErr := f.ReadAt(buf, int64(offset))
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return nil, fmt.Errorf("blockstore disk: read %s at %d: %w", full, offset, readErr)
	}
	return buf[:n], nil
}

func (d *DiskStore) WriteRange(_ context.Context, p string, offset uint64, reader io.Reader) (n int64, err error) {
	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.ObserveOperation("disk", "WriteRange", time.Since(start), err)
			if n > 0 {
				d.metrics.RecordBytes("disk", "write", n)
			}
		}
	}()

	full, err := d.resolve(p)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("blockstore disk: mkdir for %s: %w", full, err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("blockstore disk: open %s for write: %w", full, err)
	}
	defer func() { _ = f.Close() }()

	n, err = io.Copy(io.NewOffsetWriter(f, int64(offset)), reader)
	if err != nil {
		return n, fmt.Errorf("blockstore disk: write %s at %d: %w", full, offset, err)
	}
	return n, nil
}
