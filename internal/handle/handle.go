// Package handle provides scoped ownership of OS integer descriptors with
// guaranteed release on every exit path, mirroring the original project's
// UniqueHandle<T>. Every socket, eventfd, and epoll descriptor in the
// reactor flows through one of these; raw descriptors never cross a
// package boundary unwrapped.
package handle

import (
	"sync/atomic"

	"github.com/danejoe001/transfer/internal/status"
	"golang.org/x/sys/unix"
)

const domain = "handle"

// Handle owns one OS file descriptor. The zero value is invalid (fd < 0).
// Handle is move-only by convention: never copy a Handle value, pass it by
// pointer, or hand off ownership with Take. Close is idempotent.
type Handle struct {
	fd     int32
	closed atomic.Bool
}

// New takes ownership of fd. fd < 0 constructs an already-invalid handle.
func New(fd int) *Handle {
	return &Handle{fd: int32(fd)}
}

// FD returns the underlying descriptor without transferring ownership.
func (h *Handle) FD() int {
	if h == nil {
		return -1
	}
	return int(h.fd)
}

// IsValid reports whether the handle currently owns a non-negative fd.
func (h *Handle) IsValid() bool {
	return h != nil && !h.closed.Load() && h.fd >= 0
}

// Close releases the descriptor. Closing an invalid or already-closed
// handle is a no-op that returns Ok — close is always idempotent.
func (h *Handle) Close() status.Code {
	if h == nil || h.closed.Swap(true) {
		return status.OK(domain)
	}
	if h.fd < 0 {
		return status.OK(domain)
	}
	fd := h.fd
	h.fd = -1
	if err := unix.Close(int(fd)); err != nil {
		return status.New(status.Error, domain, "close: "+err.Error())
	}
	return status.OK(domain)
}

// Take releases ownership of the descriptor, returning it without closing
// it. The handle becomes invalid and will not close anything on a later
// Close call. Use this when ownership transfers to another Handle or to a
// caller outside the owning package's lifetime management.
func (h *Handle) Take() int {
	if h == nil || h.closed.Swap(true) {
		return -1
	}
	fd := h.fd
	h.fd = -1
	return int(fd)
}
