// Package connection holds per-socket reactor state: the owned file
// descriptor, the frame assembler accumulating inbound bytes, a pending
// write buffer for partial writes, and bookkeeping used for idle
// detection. Exactly one Context exists per accepted socket, owned
// exclusively by the reactor goroutine — nothing here is safe for
// concurrent access from more than one goroutine at a time.
package connection

import (
	"time"

	"github.com/danejoe001/transfer/internal/assembler"
	"github.com/danejoe001/transfer/internal/handle"
)

// Context is one connection's reactor-owned state.
type Context struct {
	ID         uint64
	Handle     *handle.Handle
	Assembler  *assembler.Assembler
	RemoteAddr string

	// writeBuf holds bytes still waiting to be written after a previous
	// write() returned short or EAGAIN. The reactor arms EPOLLOUT while
	// this is non-empty and disarms it once drained.
	writeBuf []byte

	// readPaused is true while the reactor has disarmed EPOLLIN for this
	// connection because the mailbox's inbound queue was full when a
	// frame finished assembling. The reactor retries draining the
	// assembler's buffered bytes and re-arms EPOLLIN once every buffered
	// frame has been pushed.
	readPaused bool

	// pendingFrame holds one fully-assembled frame already popped from
	// Assembler that couldn't be pushed to the mailbox. It must be
	// retried before popping anything further, or the frame would be
	// silently dropped.
	pendingFrame []byte
	hasPending   bool

	LastActivity time.Time
}

// New constructs a connection Context for a freshly accepted socket.
func New(id uint64, h *handle.Handle, remoteAddr string, maxMessageLen int) *Context {
	return &Context{
		ID:           id,
		Handle:       h,
		Assembler:    assembler.New(maxMessageLen),
		RemoteAddr:   remoteAddr,
		LastActivity: time.Now(),
	}
}

// QueueWrite appends b to the pending write buffer. Call this when a
// worker hands back a completed response frame, or when a partial write
// leaves bytes unsent.
func (c *Context) QueueWrite(b []byte) {
	c.writeBuf = append(c.writeBuf, b...)
}

// HasPendingWrite reports whether there are unsent bytes queued.
func (c *Context) HasPendingWrite() bool {
	return len(c.writeBuf) > 0
}

// PendingWrite returns the current unsent bytes for the caller to
// attempt a write() against.
func (c *Context) PendingWrite() []byte {
	return c.writeBuf
}

// ConsumeWritten removes the first n bytes of the pending write buffer,
// called with the return value of a successful write() syscall.
func (c *Context) ConsumeWritten(n int) {
	if n <= 0 {
		return
	}
	if n >= len(c.writeBuf) {
		c.writeBuf = c.writeBuf[:0]
		return
	}
	c.writeBuf = c.writeBuf[n:]
}

// PauseReads marks this connection as paused for inbound backpressure.
func (c *Context) PauseReads() {
	c.readPaused = true
}

// ResumeReads clears the paused-for-backpressure marker.
func (c *Context) ResumeReads() {
	c.readPaused = false
}

// ReadsPaused reports whether this connection's EPOLLIN interest is
// currently disarmed for backpressure.
func (c *Context) ReadsPaused() bool {
	return c.readPaused
}

// SetPendingFrame stashes a frame that was popped off the assembler but
// couldn't be pushed to the mailbox, so it can be retried without
// re-reading from the assembler.
func (c *Context) SetPendingFrame(body []byte) {
	c.pendingFrame = body
	c.hasPending = true
}

// PendingFrame returns the stashed frame, if any.
func (c *Context) PendingFrame() ([]byte, bool) {
	return c.pendingFrame, c.hasPending
}

// ClearPendingFrame drops the stashed frame after it has been
// successfully pushed.
func (c *Context) ClearPendingFrame() {
	c.pendingFrame = nil
	c.hasPending = false
}

// Touch records activity now, resetting the idle-timeout clock.
func (c *Context) Touch() {
	c.LastActivity = time.Now()
}

// IdleFor reports how long this connection has been idle as of now.
func (c *Context) IdleFor() time.Duration {
	return time.Since(c.LastActivity)
}

// Close releases the connection's file descriptor. Idempotent.
func (c *Context) Close() {
	c.Handle.Close()
}
