// Package adminapi exposes a read-only HTTP introspection surface over
// the reactor core plus JWT bearer-token auth, grounded on the teacher's
// pkg/controlplane/api. It never touches epoll or socket state directly:
// it is wired as an external subscriber of connection-open/frame/
// connection-closed events (spec.md §9's external-subscriber design),
// updating its own small registry from those callbacks.
package adminapi

import (
	"sync"
	"time"
)

// ConnectionInfo is a read-only snapshot of one tracked connection.
type ConnectionInfo struct {
	ConnID       uint64    `json:"conn_id"`
	RemoteAddr   string    `json:"remote_addr"`
	OpenedAt     time.Time `json:"opened_at"`
	LastFrameAt  time.Time `json:"last_frame_at"`
	FramesServed uint64    `json:"frames_served"`
}

// Registry accumulates reactor lifecycle events into a point-in-time
// view the HTTP handlers can serve without ever reaching into the
// reactor's own (single-goroutine-owned) connection map.
type Registry struct {
	mu           sync.RWMutex
	conns        map[uint64]*ConnectionInfo
	totalOpened  uint64
	totalClosed  uint64
	closeReasons map[string]uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:        make(map[uint64]*ConnectionInfo),
		closeReasons: make(map[string]uint64),
	}
}

// OnConnOpen records a newly-accepted connection. Matches the signature
// expected by reactor.Reactor.SetConnOpenHandler.
func (r *Registry) OnConnOpen(connID uint64, remoteAddr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.conns[connID] = &ConnectionInfo{ConnID: connID, RemoteAddr: remoteAddr, OpenedAt: now, LastFrameAt: now}
	r.totalOpened++
}

// OnFrameReceived records that a frame arrived on connID. Intended to be
// called from the server's onFrame dispatch hook, alongside the actual
// worker-pool handoff.
func (r *Registry) OnFrameReceived(connID uint64, _ []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	c.LastFrameAt = time.Now()
	c.FramesServed++
}

// OnConnClosed records a connection's teardown. Matches the signature
// expected by reactor.Reactor.SetConnClosedHandler.
func (r *Registry) OnConnClosed(connID uint64, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	r.totalClosed++
	r.closeReasons[reason]++
}

// Snapshot returns every currently-tracked connection, sorted by ConnID.
func (r *Registry) Snapshot() []ConnectionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnectionInfo, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, *c)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ConnID < out[j-1].ConnID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Stats is a point-in-time summary of lifecycle counters.
type Stats struct {
	ActiveConnections int               `json:"active_connections"`
	TotalOpened       uint64            `json:"total_opened"`
	TotalClosed       uint64            `json:"total_closed"`
	CloseReasons      map[string]uint64 `json:"close_reasons"`
}

// Stats returns the current lifecycle counters.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reasons := make(map[string]uint64, len(r.closeReasons))
	for k, v := range r.closeReasons {
		reasons[k] = v
	}
	return Stats{
		ActiveConnections: len(r.conns),
		TotalOpened:       r.totalOpened,
		TotalClosed:       r.totalClosed,
		CloseReasons:      reasons,
	}
}
