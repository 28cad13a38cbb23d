package metrics_test

import (
	"testing"

	"github.com/danejoe001/transfer/pkg/metrics"
	_ "github.com/danejoe001/transfer/pkg/metrics/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledByDefault(t *testing.T) {
	// Each test package gets its own process, but guard against another
	// test in this binary having already called InitRegistry.
	if metrics.IsEnabled() {
		t.Skip("registry already initialized by another test in this binary")
	}
	assert.Nil(t, metrics.NewReactorMetrics())
	assert.Nil(t, metrics.NewWorkerPoolMetrics())
	assert.Nil(t, metrics.NewBlockStoreMetrics())
}

func TestInitRegistryEnablesConstructors(t *testing.T) {
	reg := metrics.InitRegistry()
	require.NotNil(t, reg)
	assert.True(t, metrics.IsEnabled())
	assert.Same(t, reg, metrics.GetRegistry())

	rm := metrics.NewReactorMetrics()
	require.NotNil(t, rm)
	// Must not panic when exercised with real labels.
	rm.RecordConnectionAccepted()
	rm.RecordConnectionClosed("peer_closed")
	rm.SetActiveConnections(3)
	rm.RecordFrameReceived("test", 128)
	rm.RecordFrameSent(64)
	rm.RecordFrameAssemblyError("bad_magic")

	wm := metrics.NewWorkerPoolMetrics()
	require.NotNil(t, wm)
	wm.SetQueueDepth(1)
	wm.RecordJobFailed(0)

	bm := metrics.NewBlockStoreMetrics()
	require.NotNil(t, bm)
	bm.RecordBytes("disk", "read", 4096)
}
