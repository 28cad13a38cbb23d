package adminclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionsDecodesSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/connections", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ConnectionsResponse{
			Connections: []ConnectionInfo{{ConnID: 1, RemoteAddr: "127.0.0.1:9000", FramesServed: 3}},
		})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")
	resp, err := client.Connections()
	require.NoError(t, err)
	require.Len(t, resp.Connections, 1)
	assert.Equal(t, uint64(1), resp.Connections[0].ConnID)
	assert.Equal(t, uint64(3), resp.Connections[0].FramesServed)
}

func TestStatsDecodesMailboxDepths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"connections": ConnStats{ActiveConnections: 2, TotalOpened: 5},
			"mailbox":     map[string]any{"inbound_depth": 4, "client_queue_depths": map[uint64]int{1: 2}},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Connections.ActiveConnections)
	require.NotNil(t, resp.Mailbox)
	assert.Equal(t, 4, resp.Mailbox.InboundDepth)
}

func TestGetReturnsAPIErrorOnUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Connections()
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
