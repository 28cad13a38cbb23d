// Package transfer implements the client side of chunked file transfer:
// issuing a DownloadRequest to learn a file's size, then a sequence of
// BlockRequests to fetch its bytes, reassembling BlockResponse data in
// file order. This is scheduling policy layered above the core
// transport (spec.md's Non-goal excludes chunking *policy* from the
// core itself, not a client that implements one).
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/danejoe001/transfer/internal/envelope"
	"github.com/danejoe001/transfer/internal/header"
)

// Transport sends request envelopes and receives response envelopes over
// a single net.Conn, blocking on each round trip. Unlike the server's
// reactor, a client has no need for the epoll core: spec.md §1 scopes
// the single-threaded event loop to the server side only.
type Transport struct {
	conn          net.Conn
	maxMessageLen int
	nextRequestID atomic.Uint64
}

// NewTransport wraps conn. maxMessageLen bounds the body field of each
// decoded response envelope; <=0 leaves it unbounded.
func NewTransport(conn net.Conn, maxMessageLen int) *Transport {
	return &Transport{conn: conn, maxMessageLen: maxMessageLen}
}

// nextID returns a monotonically increasing request ID for this
// transport, matching the envelope's request_id correlation field.
func (t *Transport) nextID() uint64 {
	return t.nextRequestID.Add(1)
}

// Roundtrip writes req as a frame and blocks for the matching response
// frame, honoring ctx's deadline if one is set.
func (t *Transport) Roundtrip(ctx context.Context, req envelope.Request) (envelope.Response, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetDeadline(deadline)
	} else {
		_ = t.conn.SetDeadline(time.Time{})
	}

	if err := t.writeRequest(req); err != nil {
		return envelope.Response{}, err
	}
	return t.readResponse()
}

func (t *Transport) writeRequest(req envelope.Request) error {
	body, err := req.Encode()
	if err != nil {
		return fmt.Errorf("transfer: encode request: %w", err)
	}
	checksum := header.ChecksumBody(body)
	h := header.New(len(body), checksum, true)

	buf := &bytes.Buffer{}
	if err := h.Encode(buf); err != nil {
		return fmt.Errorf("transfer: encode header: %w", err)
	}
	buf.Write(body)

	if _, err := t.conn.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("transfer: write frame: %w", err)
	}
	return nil
}

// readResponse blocks until one full frame has been read, decoding it as
// a response envelope. It reads directly rather than through
// internal/assembler because the client has exactly one frame in flight
// per Roundtrip call and no edge-triggered-drain discipline to satisfy.
func (t *Transport) readResponse() (envelope.Response, error) {
	// Read.Read on a stream socket may return more bytes than requested
	// whenever the kernel already has them buffered, so the minimal-size
	// header read can overshoot into the start of the body. Track that
	// overshoot explicitly rather than discarding it.
	headerBuf := make([]byte, header.MinSerializedSize+4)
	n, err := readAtLeast(t.conn, headerBuf, header.MinSerializedSize)
	if err != nil {
		return envelope.Response{}, fmt.Errorf("transfer: read header: %w", err)
	}

	size, ok := header.PeekSize(headerBuf[:n])
	if !ok {
		return envelope.Response{}, fmt.Errorf("transfer: short header read")
	}
	if size > n {
		extra := make([]byte, size-n)
		if _, err := readAtLeast(t.conn, extra, len(extra)); err != nil {
			return envelope.Response{}, fmt.Errorf("transfer: read header tail: %w", err)
		}
		headerBuf = append(headerBuf[:n], extra...)
		n = size
	}

	h, _, err := header.Decode(headerBuf[:size])
	if err != nil {
		return envelope.Response{}, fmt.Errorf("transfer: decode header: %w", err)
	}

	overshoot := headerBuf[size:n]
	body := make([]byte, h.MessageLength)
	copied := copy(body, overshoot)
	if copied < len(body) {
		if _, err := readAtLeast(t.conn, body[copied:], len(body)-copied); err != nil {
			return envelope.Response{}, fmt.Errorf("transfer: read body: %w", err)
		}
	}

	resp, err := envelope.DecodeResponse(body, t.maxMessageLen)
	if err != nil {
		return envelope.Response{}, fmt.Errorf("transfer: decode response: %w", err)
	}
	return resp, nil
}

func readAtLeast(conn net.Conn, buf []byte, min int) (int, error) {
	total := 0
	for total < min {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
