// Package adminclient is a minimal HTTP client for danejoe-server's
// read-only admin API, used by danejoe-client's connections/stats
// commands.
package adminclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danejoe001/transfer/internal/cli/health"
)

// Client talks to one danejoe-server admin API instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for baseURL (e.g. "http://localhost:7701").
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	return &Client{baseURL: c.baseURL, token: token, httpClient: c.httpClient}
}

// APIError represents a non-2xx admin API response. The admin API
// returns plain-text bodies on auth failure (http.Error), so Message
// is often just that text rather than a structured payload.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin API: %d %s", e.StatusCode, e.Message)
}

func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ConnectionsResponse is the decoded body of GET /api/v1/connections.
type ConnectionsResponse struct {
	Connections []ConnectionInfo `json:"connections"`
}

// ConnectionInfo mirrors pkg/adminapi.ConnectionInfo.
type ConnectionInfo struct {
	ConnID       uint64    `json:"conn_id"`
	RemoteAddr   string    `json:"remote_addr"`
	OpenedAt     time.Time `json:"opened_at"`
	LastFrameAt  time.Time `json:"last_frame_at"`
	FramesServed uint64    `json:"frames_served"`
}

// Connections fetches every currently-tracked connection.
func (c *Client) Connections() (ConnectionsResponse, error) {
	var resp ConnectionsResponse
	err := c.get("/api/v1/connections", &resp)
	return resp, err
}

// ConnStats mirrors pkg/adminapi.Stats.
type ConnStats struct {
	ActiveConnections int               `json:"active_connections"`
	TotalOpened       uint64            `json:"total_opened"`
	TotalClosed       uint64            `json:"total_closed"`
	CloseReasons      map[string]uint64 `json:"close_reasons"`
}

// MailboxStats mirrors the optional "mailbox" field of GET /api/v1/stats.
type MailboxStats struct {
	InboundDepth      int           `json:"inbound_depth"`
	ClientQueueDepths map[uint64]int `json:"client_queue_depths"`
}

// StatsResponse is the decoded body of GET /api/v1/stats.
type StatsResponse struct {
	Connections ConnStats     `json:"connections"`
	Mailbox     *MailboxStats `json:"mailbox,omitempty"`
}

// Stats fetches connection lifecycle counters and mailbox queue depths.
func (c *Client) Stats() (StatsResponse, error) {
	var resp StatsResponse
	err := c.get("/api/v1/stats", &resp)
	return resp, err
}

// Liveness fetches GET /health.
func (c *Client) Liveness() (health.Response, error) {
	var resp health.Response
	err := c.get("/health", &resp)
	return resp, err
}
