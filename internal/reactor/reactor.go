// Package reactor implements the single-threaded epoll event loop that
// owns every connection's socket state (spec.md §4.H). Exactly one
// goroutine ever calls epoll_wait and touches connect_contexts; all
// cross-thread communication in or out happens through the mailbox,
// never through direct calls into the reactor from another goroutine.
//
// Listener and eventfd descriptors are polled level-triggered; accepted
// client sockets are polled edge-triggered, which means every readable/
// writable event handler must loop until it observes EAGAIN rather than
// relying on a follow-up notification for leftover bytes.
package reactor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/danejoe001/transfer/internal/connection"
	"github.com/danejoe001/transfer/internal/handle"
	"github.com/danejoe001/transfer/internal/logger"
	"github.com/danejoe001/transfer/internal/mailbox"
	"github.com/danejoe001/transfer/internal/status"
	"golang.org/x/sys/unix"
)

const domain = "reactor"

// MaxEventCount bounds how many ready events epoll_wait returns per call.
const MaxEventCount = 1024

// Config configures a Reactor.
type Config struct {
	ListenAddr    string // host:port
	MaxMessageLen int
	IdleTimeout   time.Duration // 0 disables idle eviction
}

// Reactor is the single-threaded epoll core.
type Reactor struct {
	cfg Config
	mb  *mailbox.Mailbox

	epoll    *handle.Handle
	listener *handle.Handle
	notifier *handle.Handle

	running     atomic.Bool
	connCounter atomic.Uint64
	conns       map[int]*connection.Context // keyed by fd

	onFrame      func(connID uint64, body []byte) bool
	onConnOpen   func(connID uint64, remoteAddr string)
	onConnClosed func(connID uint64, reason string)
}

// SetConnOpenHandler registers fn to be called synchronously on the
// reactor goroutine whenever a new connection is accepted. Used by
// external read-only subscribers (e.g. the admin API, per spec.md §9)
// to track connection liveness without touching epoll/socket state.
func (r *Reactor) SetConnOpenHandler(fn func(connID uint64, remoteAddr string)) {
	r.onConnOpen = fn
}

// SetConnClosedHandler registers fn to be called synchronously on the
// reactor goroutine whenever a connection is torn down, with a short
// human-readable reason ("peer closed", "idle timeout", "assembly
// error", "epoll error").
func (r *Reactor) SetConnClosedHandler(fn func(connID uint64, reason string)) {
	r.onConnClosed = fn
}

// New constructs a Reactor. onFrame is called synchronously from the
// reactor goroutine for every fully-assembled inbound frame. It must
// never block — it hands off to the mailbox's inbound queue with a
// non-blocking push and reports whether the push succeeded. When it
// returns false (the inbound queue is full), the reactor stops reading
// that connection's socket until a worker drains the queue, rather than
// stalling the single read loop for every other connection it owns
// (spec.md §4.G/§8.5's "Bounded-queue liveness" property).
func New(cfg Config, mb *mailbox.Mailbox, onFrame func(connID uint64, body []byte) bool) *Reactor {
	return &Reactor{
		cfg:     cfg,
		mb:      mb,
		conns:   make(map[int]*connection.Context),
		onFrame: onFrame,
	}
}

// Run binds the listener, creates the epoll instance and eventfd
// notifier, and blocks processing events until ctx is canceled or Stop
// is called. Run is meant to be the only thing the reactor goroutine
// ever does.
func (r *Reactor) Run(ctx context.Context) status.Code {
	if code := r.setup(); code.IsError() {
		return code
	}
	defer r.teardown()

	r.running.Store(true)
	events := make([]unix.EpollEvent, MaxEventCount)

	for r.running.Load() {
		select {
		case <-ctx.Done():
			return status.OK(domain)
		default:
		}

		n, err := unix.EpollWait(r.epoll.FD(), events, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return status.New(status.Error, domain, "epoll_wait: "+err.Error())
		}
		for i := 0; i < n; i++ {
			r.dispatch(events[i])
		}
		r.drainPausedConns()
		if r.cfg.IdleTimeout > 0 {
			r.evictIdle()
		}
	}
	return status.OK(domain)
}

// Stop requests the loop exit at the next epoll_wait return, and wakes a
// currently-blocked epoll_wait immediately via the eventfd.
func (r *Reactor) Stop() {
	r.running.Store(false)
	if r.notifier != nil && r.notifier.IsValid() {
		var buf [8]byte
		buf[0] = 1
		_, _ = unix.Write(r.notifier.FD(), buf[:])
	}
}

func (r *Reactor) setup() status.Code {
	listenerFD, code := bindListener(r.cfg.ListenAddr)
	if code.IsError() {
		return code
	}
	r.listener = handle.New(listenerFD)

	epollFD, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		r.listener.Close()
		return status.New(status.Error, domain, "epoll_create1: "+err.Error())
	}
	r.epoll = handle.New(epollFD)

	notifierFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		r.epoll.Close()
		r.listener.Close()
		return status.New(status.Error, domain, "eventfd: "+err.Error())
	}
	r.notifier = handle.New(notifierFD)

	if code := r.registerLevelTriggered(r.listener.FD(), unix.EPOLLIN); code.IsError() {
		return code
	}
	if code := r.registerLevelTriggered(r.notifier.FD(), unix.EPOLLIN); code.IsError() {
		return code
	}
	return status.OK(domain)
}

func (r *Reactor) teardown() {
	for fd, c := range r.conns {
		c.Close()
		delete(r.conns, fd)
	}
	r.notifier.Close()
	r.listener.Close()
	r.epoll.Close()
}

func bindListener(addr string) (int, status.Code) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, status.New(status.Error, domain, "socket: "+err.Error())
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, status.New(status.Error, domain, "setsockopt SO_REUSEADDR: "+err.Error())
	}
	sa, err := resolveSockaddr(addr)
	if err != nil {
		unix.Close(fd)
		return -1, status.New(status.Error, domain, "resolve listen address: "+err.Error())
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, status.New(status.Error, domain, "bind: "+err.Error())
	}
	if err := unix.Listen(fd, 1024); err != nil {
		unix.Close(fd)
		return -1, status.New(status.Error, domain, "listen: "+err.Error())
	}
	return fd, status.OK(domain)
}

func (r *Reactor) registerLevelTriggered(fd int, events uint32) status.Code {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epoll.FD(), unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return status.New(status.Error, domain, fmt.Sprintf("epoll_ctl add fd=%d: %v", fd, err))
	}
	return status.OK(domain)
}

func (r *Reactor) registerEdgeTriggered(fd int, events uint32) status.Code {
	return r.registerLevelTriggered(fd, events|unix.EPOLLET)
}

func (r *Reactor) dispatch(ev unix.EpollEvent) {
	fd := int(ev.Fd)
	switch {
	case fd == r.listener.FD():
		r.acceptableEvent()
	case fd == r.notifier.FD():
		r.notifyEvent()
	default:
		c, ok := r.conns[fd]
		if !ok {
			return
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			r.removeConn(fd, "epoll error")
			return
		}
		if ev.Events&unix.EPOLLIN != 0 && !c.ReadsPaused() {
			if !r.readableEvent(c) {
				return // connection was torn down
			}
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			r.writableEvent(c)
		}
	}
}

// acceptableEvent drains the listener's accept backlog (level-triggered,
// so a single notification is enough, but draining fully avoids leaving
// connections stranded in the backlog under bursty load).
func (r *Reactor) acceptableEvent() {
	for {
		fd, sa, err := unix.Accept4(r.listener.FD(), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			logger.Warn("accept4 failed", "error", err.Error())
			return
		}
		connID := r.connCounter.Add(1)
		h := handle.New(fd)
		c := connection.New(connID, h, sockaddrString(sa), r.cfg.MaxMessageLen)
		r.conns[fd] = c
		r.mb.AddClientQueue(connID)

		if code := r.registerEdgeTriggered(fd, unix.EPOLLIN|unix.EPOLLOUT); code.IsError() {
			r.removeConn(fd, "registration failed")
			continue
		}
		logger.Info("connection accepted", "conn_id", connID, "remote_addr", c.RemoteAddr)
		if r.onConnOpen != nil {
			r.onConnOpen(connID, c.RemoteAddr)
		}
	}
}

// readableEvent drains fd until EAGAIN (edge-triggered discipline),
// feeding bytes to the assembler and dispatching complete frames.
// Returns false if the connection was removed during this call. If
// onFrame reports the mailbox's inbound queue is full, reading stops
// immediately and the connection's EPOLLIN interest is disarmed —
// any bytes already buffered in the assembler are left there for
// drainPausedConns to retry.
func (r *Reactor) readableEvent(c *connection.Context) bool {
	buf := make([]byte, 64*1024)
	for {
		n, err := unix.Read(c.Handle.FD(), buf)
		if n > 0 {
			c.Touch()
			c.Assembler.PushData(buf[:n])
			if !r.drainAssembler(c) {
				return true // paused, not torn down
			}
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return true
			}
			if err == unix.EINTR {
				continue
			}
			r.removeConn(c.Handle.FD(), "read error")
			return false
		}
		if n == 0 {
			// Peer closed its write side.
			r.removeConn(c.Handle.FD(), "peer closed")
			return false
		}
	}
}

// drainAssembler pops and dispatches every fully-assembled frame
// currently buffered for c. Returns false if it stopped early because
// the mailbox's inbound queue is full, having paused c's reads; the
// connection itself is still alive in that case. A frame that fails to
// push is stashed on c rather than discarded, and retried first on the
// next call.
func (r *Reactor) drainAssembler(c *connection.Context) bool {
	for {
		var body []byte
		if pending, ok := c.PendingFrame(); ok {
			body = pending
		} else {
			res := c.Assembler.PopFrame()
			if res.Status.IsBranch() {
				return true
			}
			if res.Status.IsError() {
				logger.Warn("frame assembly error, closing connection", "conn_id", c.ID, "error", res.Status.Message())
				r.removeConn(c.Handle.FD(), "assembly error")
				return true
			}
			body = res.Value.Body
		}

		if r.onFrame == nil {
			c.ClearPendingFrame()
			continue
		}
		if !r.onFrame(c.ID, body) {
			c.SetPendingFrame(body)
			r.pauseReads(c)
			return false
		}
		c.ClearPendingFrame()
	}
}

// pauseReads clears EPOLLIN for c's fd via EPOLL_CTL_MOD, leaving
// EPOLLOUT interest untouched, and marks c paused so dispatch skips it
// until drainPausedConns re-arms it.
func (r *Reactor) pauseReads(c *connection.Context) {
	if c.ReadsPaused() {
		return
	}
	ev := unix.EpollEvent{Events: unix.EPOLLOUT | unix.EPOLLET, Fd: int32(c.Handle.FD())}
	if err := unix.EpollCtl(r.epoll.FD(), unix.EPOLL_CTL_MOD, c.Handle.FD(), &ev); err != nil {
		logger.Warn("epoll_ctl mod (pause reads) failed", "conn_id", c.ID, "error", err.Error())
		return
	}
	c.PauseReads()
}

// resumeReads re-arms EPOLLIN|EPOLLOUT for c's fd and clears the paused
// marker.
func (r *Reactor) resumeReads(c *connection.Context) {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET, Fd: int32(c.Handle.FD())}
	if err := unix.EpollCtl(r.epoll.FD(), unix.EPOLL_CTL_MOD, c.Handle.FD(), &ev); err != nil {
		logger.Warn("epoll_ctl mod (resume reads) failed", "conn_id", c.ID, "error", err.Error())
		return
	}
	c.ResumeReads()
}

// drainPausedConns retries every backpressure-paused connection's
// buffered frames, re-arming EPOLLIN for any that fully drain. Called
// once per event-loop iteration so a paused connection resumes as soon
// as a worker frees room in the mailbox's inbound queue, without the
// reactor itself ever blocking to wait for that room (spec.md §5's
// epoll_wait-is-the-only-suspension-point rule, and §8.5's
// Bounded-queue liveness property).
func (r *Reactor) drainPausedConns() {
	for _, c := range r.conns {
		if !c.ReadsPaused() {
			continue
		}
		if r.drainAssembler(c) {
			r.resumeReads(c)
		}
	}
}

// writableEvent flushes c's pending write buffer and pulls any further
// outbound frames queued in the mailbox, looping until EAGAIN per the
// edge-triggered discipline.
func (r *Reactor) writableEvent(c *connection.Context) {
	for {
		if !c.HasPendingWrite() {
			out, ok := r.mb.PopFromClientQueue(c.ID)
			if !ok {
				return
			}
			c.QueueWrite(out.Body)
		}
		n, err := unix.Write(c.Handle.FD(), c.PendingWrite())
		if n > 0 {
			c.ConsumeWritten(n)
			c.Touch()
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			r.removeConn(c.Handle.FD(), "write error")
			return
		}
	}
}

// notifyEvent drains the eventfd counter, then sweeps every connection
// with pending outbound work — a worker may have pushed a response for a
// connection the reactor isn't currently watching EPOLLOUT readiness for.
func (r *Reactor) notifyEvent() {
	var buf [8]byte
	for {
		_, err := unix.Read(r.notifier.FD(), buf[:])
		if err != nil {
			break
		}
	}
	for _, c := range r.conns {
		if r.mb.HasPendingOutbound(c.ID) || c.HasPendingWrite() {
			r.writableEvent(c)
		}
	}
}

func (r *Reactor) evictIdle() {
	for fd, c := range r.conns {
		if c.IdleFor() >= r.cfg.IdleTimeout {
			logger.Info("evicting idle connection", "conn_id", c.ID, "idle_for", c.IdleFor().String())
			r.removeConn(fd, "idle timeout")
		}
	}
}

func (r *Reactor) removeConn(fd int, reason string) {
	c, ok := r.conns[fd]
	if !ok {
		return
	}
	unix.EpollCtl(r.epoll.FD(), unix.EPOLL_CTL_DEL, fd, nil)
	r.mb.RemoveClientQueue(c.ID)
	c.Close()
	delete(r.conns, fd)
	if r.onConnClosed != nil {
		r.onConnClosed(c.ID, reason)
	}
}

// ConnectionCount reports the number of currently-tracked connections,
// for metrics.
func (r *Reactor) ConnectionCount() int {
	return len(r.conns)
}
