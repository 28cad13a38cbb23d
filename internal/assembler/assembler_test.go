package assembler

import (
	"bytes"
	"testing"

	"github.com/danejoe001/transfer/internal/header"
	"github.com/stretchr/testify/require"
)

func encodeFrame(t *testing.T, body []byte, withChecksum bool) []byte {
	t.Helper()
	var sum uint32
	if withChecksum {
		sum = header.ChecksumBody(body)
	}
	h := header.New(len(body), sum, withChecksum)
	buf := &bytes.Buffer{}
	require.NoError(t, h.Encode(buf))
	buf.Write(body)
	return buf.Bytes()
}

func TestPopFrameWholeFrameInOnePush(t *testing.T) {
	a := New(0)
	body := []byte("echo me")
	a.PushData(encodeFrame(t, body, false))

	r := a.PopFrame()
	require.True(t, r.Status.IsOk())
	require.Equal(t, body, r.Value.Body)
	require.Equal(t, 0, a.Buffered())
}

func TestPopFramePartialHeaderThenBody(t *testing.T) {
	a := New(0)
	full := encodeFrame(t, []byte("partial read test"), true)

	a.PushData(full[:3])
	r := a.PopFrame()
	require.True(t, r.Status.IsBranch())

	a.PushData(full[3:])
	r = a.PopFrame()
	require.True(t, r.Status.IsOk())
	require.Equal(t, []byte("partial read test"), r.Value.Body)
}

func TestPopFrameTwoFramesBackToBack(t *testing.T) {
	a := New(0)
	f1 := encodeFrame(t, []byte("one"), false)
	f2 := encodeFrame(t, []byte("two"), false)
	a.PushData(append(append([]byte{}, f1...), f2...))

	r1 := a.PopFrame()
	require.True(t, r1.Status.IsOk())
	require.Equal(t, []byte("one"), r1.Value.Body)

	r2 := a.PopFrame()
	require.True(t, r2.Status.IsOk())
	require.Equal(t, []byte("two"), r2.Value.Body)

	r3 := a.PopFrame()
	require.True(t, r3.Status.IsBranch())
}

func TestPopFrameResyncsOnGarbagePrefix(t *testing.T) {
	a := New(0)
	good := encodeFrame(t, []byte("after garbage"), false)
	a.PushData(append([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00}, good...))

	r := a.PopFrame()
	require.True(t, r.Status.IsOk())
	require.Equal(t, []byte("after garbage"), r.Value.Body)
}

func TestPopFrameOverLengthIsError(t *testing.T) {
	a := New(16)
	body := make([]byte, 64)
	a.PushData(encodeFrame(t, body, false))

	r := a.PopFrame()
	require.True(t, r.Status.IsError())
}

func TestClearCurrentFrameResetsStateNotBuffer(t *testing.T) {
	a := New(0)
	full := encodeFrame(t, []byte("x"), false)
	a.PushData(full[:header.MinSerializedSize])
	_ = a.PopFrame() // consumes header, wants body

	a.ClearCurrentFrame()
	require.Equal(t, stateHeaderPending, a.state)
}
