// Package assembler turns a stream of arbitrarily-chunked bytes from a
// non-blocking socket read into discrete frames (header + body), mirroring
// the original project's FrameAssembler. It owns no I/O itself: callers
// push whatever bytes a read() returned and pop frames as they become
// available, which may be zero, one, or several per push.
package assembler

import (
	"fmt"

	"github.com/danejoe001/transfer/internal/header"
	"github.com/danejoe001/transfer/internal/status"
)

const domain = "assembler"

// DefaultMaxMessageLength bounds a single frame's body size. It exists so
// a corrupt or hostile peer cannot make the assembler allocate without
// bound; exceeding it is a permanent (non-resyncable) error for the
// connection, per spec.md's "Over-length" scenario.
const DefaultMaxMessageLength = 40 * 1024 * 1024 // 40 MiB

// state is the assembler's two-state machine: waiting for a complete
// header, or waiting for a complete body once the header is known.
type state int

const (
	stateHeaderPending state = iota
	stateBodyPending
)

// Assembler accumulates bytes and yields complete frames. It is not safe
// for concurrent use; each connection owns exactly one.
type Assembler struct {
	buf            []byte
	state          state
	currentHeader  header.Header
	headerSize     int
	maxMessageLen  int
}

// New constructs an Assembler. maxMessageLen <= 0 selects
// DefaultMaxMessageLength.
func New(maxMessageLen int) *Assembler {
	if maxMessageLen <= 0 {
		maxMessageLen = DefaultMaxMessageLength
	}
	return &Assembler{maxMessageLen: maxMessageLen}
}

// PushData appends freshly-read bytes to the assembler's internal buffer.
func (a *Assembler) PushData(b []byte) {
	a.buf = append(a.buf, b...)
}

// Buffered reports how many unconsumed bytes the assembler currently
// holds, for metrics/tests.
func (a *Assembler) Buffered() int { return len(a.buf) }

// Frame is one fully-assembled message: its header and its raw body
// bytes (the envelope layer decodes the body further).
type Frame struct {
	Header header.Header
	Body   []byte
}

// PopFrame attempts to extract one complete frame from the buffered
// bytes. A Branch result (not Error) means "no complete frame yet" —
// normal when a read returned a partial header or body, and the caller
// should simply wait for more data. A header that fails to decode (bad
// magic) is resynced silently by dropping one leading byte at a time;
// once fewer than MinSerializedSize bytes remain, PopFrame returns Branch
// and waits for more data. An Error result means message_length exceeds
// the configured bound: the connection is no longer resyncable and must
// be torn down.
func (a *Assembler) PopFrame() status.Result[Frame] {
	for {
		switch a.state {
		case stateHeaderPending:
			if len(a.buf) < header.MinSerializedSize {
				return status.BranchResult[Frame](domain, "header incomplete")
			}
			size, ok := header.PeekSize(a.buf)
			if !ok {
				return status.BranchResult[Frame](domain, "header incomplete")
			}
			if len(a.buf) < size {
				return status.BranchResult[Frame](domain, "header incomplete")
			}
			h, n, err := header.Decode(a.buf[:size])
			if err != nil {
				if a.resyncOneByte() {
					continue
				}
				return status.BranchResult[Frame](domain, "resyncing: "+err.Error())
			}
			if int(h.MessageLength) > a.maxMessageLen {
				return status.ErrResult[Frame](domain, fmt.Sprintf("message_length %d exceeds max %d", h.MessageLength, a.maxMessageLen))
			}
			a.currentHeader = h
			a.headerSize = n
			a.buf = a.buf[n:]
			a.state = stateBodyPending
			// fall through to try completing the body immediately
		case stateBodyPending:
			need := int(a.currentHeader.MessageLength)
			if len(a.buf) < need {
				return status.BranchResult[Frame](domain, "body incomplete")
			}
			body := make([]byte, need)
			copy(body, a.buf[:need])
			a.buf = a.buf[need:]
			frame := Frame{Header: a.currentHeader, Body: body}
			a.ClearCurrentFrame()
			return status.OkResult[Frame](domain, frame)
		}
	}
}

// resyncOneByte discards a single leading byte from the buffer in an
// attempt to find a valid magic number further along the stream, as the
// original does on a magic mismatch. Returns false if there are not even
// MinSerializedSize bytes left to retry against.
func (a *Assembler) resyncOneByte() bool {
	if len(a.buf) == 0 {
		return false
	}
	a.buf = a.buf[1:]
	return len(a.buf) >= header.MinSerializedSize
}

// ClearCurrentFrame discards any in-progress header state, returning the
// assembler to stateHeaderPending. Buffered bytes not yet consumed into a
// frame are left intact.
func (a *Assembler) ClearCurrentFrame() {
	a.state = stateHeaderPending
	a.currentHeader = header.Header{}
	a.headerSize = 0
}
