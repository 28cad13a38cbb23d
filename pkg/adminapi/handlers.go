package adminapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/danejoe001/transfer/internal/cli/health"
)

// MailboxStats is the subset of *mailbox.Mailbox the admin API needs for
// introspection, kept as an interface so this package never takes a hard
// dependency on the reactor's internal wiring beyond what it reads.
type MailboxStats interface {
	InboundDepth() int
	ClientQueueDepths() map[uint64]int
}

// Handlers holds the dependencies every admin API route needs.
type Handlers struct {
	registry  *Registry
	mailbox   MailboxStats
	startedAt time.Time
}

// NewHandlers returns route handlers backed by registry and mailbox.
// mailbox may be nil, in which case mailbox-depth endpoints report zero
// values rather than panicking.
func NewHandlers(registry *Registry, mailbox MailboxStats) *Handlers {
	return &Handlers{registry: registry, mailbox: mailbox, startedAt: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Liveness answers GET /health, unauthenticated.
func (h *Handlers) Liveness(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(h.startedAt)
	resp := health.Response{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	resp.Data.Service = "danejoe-server"
	resp.Data.StartedAt = h.startedAt.UTC().Format(time.RFC3339)
	resp.Data.Uptime = uptime.Round(time.Second).String()
	resp.Data.UptimeSec = int64(uptime.Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// Connections answers GET /api/v1/connections: every currently-tracked
// connection.
func (h *Handlers) Connections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"connections": h.registry.Snapshot()})
}

// Stats answers GET /api/v1/stats: connection lifecycle counters plus
// mailbox queue depths.
func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"connections": h.registry.Stats()}
	if h.mailbox != nil {
		resp["mailbox"] = map[string]any{
			"inbound_depth":       h.mailbox.InboundDepth(),
			"client_queue_depths": h.mailbox.ClientQueueDepths(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
