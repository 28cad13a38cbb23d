// Package mailbox implements the reactor's cross-thread message box,
// carrying parsed inbound frames from the single-threaded reactor to the
// worker pool, and completed outbound frames back from the worker pool to
// the reactor for writing. It is the only sanctioned way data crosses
// from worker goroutines back into the reactor's single-threaded world —
// mirroring the original's ReactorMailBox.
package mailbox

import (
	"encoding/binary"
	"sync"

	"github.com/danejoe001/transfer/internal/handle"
	"github.com/danejoe001/transfer/internal/status"
	"golang.org/x/sys/unix"
)

const domain = "mailbox"

// DefaultInboundCapacity bounds the inbound (to-server) queue. Past this,
// Push blocks the caller — applying backpackpressure to whichever
// goroutine is feeding the mailbox (normally the reactor's read path)
// rather than growing without bound.
const DefaultInboundCapacity = 128

// Inbound is one frame read off a connection, destined for the worker
// pool to process.
type Inbound struct {
	ConnID uint64
	Body   []byte
}

// Outbound is one frame produced by a worker, destined to be written back
// to a specific connection.
type Outbound struct {
	ConnID uint64
	Body   []byte
}

// Mailbox is the reactor's two-direction message box. The zero value is
// not usable; construct with New.
type Mailbox struct {
	toServer chan Inbound

	mu       sync.Mutex
	toClient map[uint64][]Outbound

	notifier *handle.Handle // eventfd, written on every push to a client queue
}

// New constructs a Mailbox with the given inbound capacity (<=0 selects
// DefaultInboundCapacity). The notifier, if non-nil, is an eventfd-backed
// handle the reactor is polling; PushToClient writes to it so a reactor
// blocked in epoll_wait wakes promptly when outbound work appears.
func New(inboundCapacity int, notifier *handle.Handle) *Mailbox {
	if inboundCapacity <= 0 {
		inboundCapacity = DefaultInboundCapacity
	}
	return &Mailbox{
		toServer: make(chan Inbound, inboundCapacity),
		toClient: make(map[uint64][]Outbound),
		notifier: notifier,
	}
}

// NewNotifier creates an eventfd handle suitable for passing to New. The
// returned handle is non-blocking and in semaphore mode is not set — it
// reads back the accumulated counter value, matching the original's
// PosixEventHandle usage as a simple edge-count wakeup source.
func NewNotifier() (*handle.Handle, status.Code) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, status.New(status.Error, domain, "eventfd: "+err.Error())
	}
	return handle.New(fd), status.OK(domain)
}

// AddClientQueue registers connID as a valid outbound destination. Call
// this when a connection is accepted, before any PushToClient for it.
func (m *Mailbox) AddClientQueue(connID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.toClient[connID]; !ok {
		m.toClient[connID] = nil
	}
}

// RemoveClientQueue drops connID's outbound queue, discarding any
// still-queued frames. Call this when a connection is torn down.
func (m *Mailbox) RemoveClientQueue(connID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.toClient, connID)
}

// PushToClient enqueues one outbound frame for connID and wakes the
// reactor via the notifier, if one was configured. Returns a Branch
// status if connID has no registered queue (the connection was torn
// down concurrently) rather than an Error, since this is an expected
// race between worker completion and connection teardown.
func (m *Mailbox) PushToClient(o Outbound) status.Code {
	m.mu.Lock()
	_, ok := m.toClient[o.ConnID]
	if ok {
		m.toClient[o.ConnID] = append(m.toClient[o.ConnID], o)
	}
	m.mu.Unlock()

	if !ok {
		return status.New(status.Branch, domain, "no outbound queue for connection (already closed)")
	}
	m.wake()
	return status.OK(domain)
}

// PopFromClientQueue dequeues the next outbound frame for connID, if any.
// Has is false when the queue is empty — a normal, expected condition,
// never an error.
func (m *Mailbox) PopFromClientQueue(connID uint64) (Outbound, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.toClient[connID]
	if !ok || len(q) == 0 {
		return Outbound{}, false
	}
	o := q[0]
	m.toClient[connID] = q[1:]
	return o, true
}

// HasPendingOutbound reports whether connID has any queued outbound
// frames, used by the reactor to decide whether to arm EPOLLOUT.
func (m *Mailbox) HasPendingOutbound(connID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toClient[connID]) > 0
}

// PushToServer enqueues an inbound frame for the worker pool. Blocks if
// the inbound queue is full at the capacity given to New — applying
// backpressure, per spec.md's "Stop under load" scenario, to the
// reactor's read path rather than growing unbounded memory.
func (m *Mailbox) PushToServer(in Inbound) {
	m.toServer <- in
}

// TryPushToServer is the non-blocking counterpart: ok is false if the
// inbound queue is full, a normal Branch-level condition the caller
// (typically the reactor, which must never block) should handle by
// pausing reads on the connection rather than treating as an error.
func (m *Mailbox) TryPushToServer(in Inbound) bool {
	select {
	case m.toServer <- in:
		return true
	default:
		return false
	}
}

// PopFromServer returns the channel workers range over to receive
// inbound frames. Closed when Stop is called.
func (m *Mailbox) PopFromServer() <-chan Inbound {
	return m.toServer
}

// InboundDepth reports how many frames are currently buffered in the
// to-server queue, for metrics/introspection.
func (m *Mailbox) InboundDepth() int {
	return len(m.toServer)
}

// ClientQueueDepths returns the outbound queue length for every
// currently-registered connection, for admin-API introspection.
func (m *Mailbox) ClientQueueDepths() map[uint64]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	depths := make(map[uint64]int, len(m.toClient))
	for connID, q := range m.toClient {
		depths[connID] = len(q)
	}
	return depths
}

// Stop closes the inbound queue, signaling workers to drain and exit.
// Outbound per-connection queues are left for the reactor to drain on its
// own shutdown path.
func (m *Mailbox) Stop() {
	close(m.toServer)
}

// wake writes to the notifier eventfd, if configured, to break a reactor
// blocked in epoll_wait out of its wait immediately rather than after the
// poll timeout elapses.
func (m *Mailbox) wake() {
	if m.notifier == nil || !m.notifier.IsValid() {
		return
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(m.notifier.FD(), buf[:])
}
