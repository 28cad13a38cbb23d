package header

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripNoChecksum(t *testing.T) {
	h := New(128, 0, false)
	buf := &bytes.Buffer{}
	require.NoError(t, h.Encode(buf))
	require.Equal(t, MinSerializedSize, buf.Len())

	got, n, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, MinSerializedSize, n)
	require.Equal(t, h, got)
}

func TestEncodeDecodeRoundTripWithChecksum(t *testing.T) {
	body := []byte("hello, danejoe")
	sum := ChecksumBody(body)
	h := New(len(body), sum, true)
	require.True(t, h.Flag.HasChecksum())

	buf := &bytes.Buffer{}
	require.NoError(t, h.Encode(buf))
	require.Equal(t, MinSerializedSize+4, buf.Len())

	got, n, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, MinSerializedSize+4, n)
	require.Equal(t, sum, got.Checksum)
	require.Equal(t, uint32(len(body)), got.MessageLength)
}

func TestDecodeBadMagic(t *testing.T) {
	h := New(10, 0, false)
	buf := &bytes.Buffer{}
	require.NoError(t, h.Encode(buf))
	b := buf.Bytes()
	b[0] ^= 0xFF // corrupt one byte of the magic number

	_, _, err := Decode(b)
	require.Error(t, err)
}

func TestDecodeShortBuffer(t *testing.T) {
	_, _, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestPeekSize(t *testing.T) {
	h := New(10, ChecksumBody([]byte("x")), true)
	buf := &bytes.Buffer{}
	require.NoError(t, h.Encode(buf))

	size, ok := PeekSize(buf.Bytes())
	require.True(t, ok)
	require.Equal(t, MinSerializedSize+4, size)
}

func TestPeekSizeTooShort(t *testing.T) {
	_, ok := PeekSize([]byte{1, 2, 3})
	require.False(t, ok)
}

func TestChecksumZeroWhenFlagClear(t *testing.T) {
	h := New(5, 0, false)
	require.False(t, h.Flag.HasChecksum())
	require.Equal(t, uint32(0), h.Checksum)
}
