// Package wire provides the primitive big-endian read/write helpers shared
// by the header codec and the envelope codec. Unlike RFC 4506 XDR (which
// this project's wire format intentionally does not follow), nothing here
// is padded to a 4-byte boundary: every field is exactly as wide as it
// says it is.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WriteUint16 writes a big-endian uint16.
func WriteUint16(buf *bytes.Buffer, v uint16) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint16: %w", err)
	}
	return nil
}

// WriteUint32 writes a big-endian uint32.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 writes a big-endian uint64.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt64 writes a big-endian two's-complement int64.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	return WriteUint64(buf, uint64(v))
}

// WriteUint8 writes a single byte.
func WriteUint8(buf *bytes.Buffer, v uint8) error {
	return buf.WriteByte(v)
}

// WriteString16 writes a string prefixed with its length as a uint16, with
// no padding. Used for the envelope request path field (§6).
func WriteString16(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long for 16-bit length prefix: %d bytes", len(s))
	}
	if err := WriteUint16(buf, uint16(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

// WriteBytes32 writes a byte slice prefixed with its length as a uint32,
// with no padding. Used for envelope/typed-body "body"/"data" fields (§6).
func WriteBytes32(buf *bytes.Buffer, b []byte) error {
	if err := WriteUint32(buf, uint32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}
