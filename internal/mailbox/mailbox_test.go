package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushPopServerQueue(t *testing.T) {
	m := New(4, nil)
	m.PushToServer(Inbound{ConnID: 1, Body: []byte("a")})

	select {
	case in := <-m.PopFromServer():
		require.Equal(t, uint64(1), in.ConnID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for inbound frame")
	}
}

func TestTryPushToServerFullQueueReturnsFalse(t *testing.T) {
	m := New(1, nil)
	require.True(t, m.TryPushToServer(Inbound{ConnID: 1}))
	require.False(t, m.TryPushToServer(Inbound{ConnID: 2}))
}

func TestOutboundOrderingPerConnection(t *testing.T) {
	m := New(4, nil)
	m.AddClientQueue(7)

	require.True(t, m.PushToClient(Outbound{ConnID: 7, Body: []byte("1")}).IsOk())
	require.True(t, m.PushToClient(Outbound{ConnID: 7, Body: []byte("2")}).IsOk())

	first, ok := m.PopFromClientQueue(7)
	require.True(t, ok)
	require.Equal(t, []byte("1"), first.Body)

	second, ok := m.PopFromClientQueue(7)
	require.True(t, ok)
	require.Equal(t, []byte("2"), second.Body)

	_, ok = m.PopFromClientQueue(7)
	require.False(t, ok)
}

func TestPushToClientUnknownConnectionIsBranchNotError(t *testing.T) {
	m := New(4, nil)
	code := m.PushToClient(Outbound{ConnID: 99, Body: []byte("x")})
	require.True(t, code.IsBranch())
}

func TestRemoveClientQueueDropsQueued(t *testing.T) {
	m := New(4, nil)
	m.AddClientQueue(1)
	require.True(t, m.PushToClient(Outbound{ConnID: 1, Body: []byte("x")}).IsOk())
	m.RemoveClientQueue(1)

	code := m.PushToClient(Outbound{ConnID: 1, Body: []byte("y")})
	require.True(t, code.IsBranch())
}

func TestStopClosesServerQueue(t *testing.T) {
	m := New(4, nil)
	m.Stop()

	_, ok := <-m.PopFromServer()
	require.False(t, ok)
}

func TestHasPendingOutbound(t *testing.T) {
	m := New(4, nil)
	m.AddClientQueue(1)
	require.False(t, m.HasPendingOutbound(1))

	require.True(t, m.PushToClient(Outbound{ConnID: 1, Body: []byte("x")}).IsOk())
	require.True(t, m.HasPendingOutbound(1))
}

func TestNotifierWakesOnPush(t *testing.T) {
	n, code := NewNotifier()
	require.True(t, code.IsOk())
	defer n.Close()

	m := New(4, n)
	m.AddClientQueue(1)
	require.True(t, m.PushToClient(Outbound{ConnID: 1, Body: []byte("x")}).IsOk())

	// The eventfd counter should now be readable/non-zero; a real reactor
	// would observe this via epoll_wait on n.FD(). We only assert the
	// handle stayed valid and push succeeded without error here; no test
	// observes this eventfd through epoll.
	require.True(t, n.IsValid())
}

func TestInboundDepthAndClientQueueDepths(t *testing.T) {
	m := New(4, nil)
	require.Equal(t, 0, m.InboundDepth())

	m.PushToServer(Inbound{ConnID: 1, Body: []byte("a")})
	m.PushToServer(Inbound{ConnID: 1, Body: []byte("b")})
	require.Equal(t, 2, m.InboundDepth())

	m.AddClientQueue(1)
	m.AddClientQueue(2)
	require.True(t, m.PushToClient(Outbound{ConnID: 1, Body: []byte("x")}).IsOk())
	require.True(t, m.PushToClient(Outbound{ConnID: 1, Body: []byte("y")}).IsOk())

	depths := m.ClientQueueDepths()
	require.Equal(t, 2, depths[1])
	require.Equal(t, 0, depths[2])
}
