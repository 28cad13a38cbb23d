package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint16 reads a big-endian uint16 from r.
func ReadUint16(r io.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint16: %w", err)
	}
	return v, nil
}

// ReadUint32 reads a big-endian uint32 from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// ReadUint64 reads a big-endian uint64 from r.
func ReadUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// ReadInt64 reads a big-endian two's-complement int64 from r.
func ReadInt64(r io.Reader) (int64, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadUint8 reads a single byte from r.
func ReadUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read uint8: %w", err)
	}
	return b[0], nil
}

// ReadString16 reads a uint16-length-prefixed string from r. maxLen bounds
// the accepted length (0 means unbounded); exceeding it is an error rather
// than an allocation of attacker-controlled size.
func ReadString16(r io.Reader, maxLen int) (string, error) {
	n, err := ReadUint16(r)
	if err != nil {
		return "", fmt.Errorf("read string16 length: %w", err)
	}
	if maxLen > 0 && int(n) > maxLen {
		return "", fmt.Errorf("string16 length %d exceeds max %d", n, maxLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string16 body: %w", err)
	}
	return string(buf), nil
}

// ReadBytes32 reads a uint32-length-prefixed byte slice from r. maxLen
// bounds the accepted length (0 means unbounded).
func ReadBytes32(r io.Reader, maxLen int) ([]byte, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read bytes32 length: %w", err)
	}
	if maxLen > 0 && int(n) > maxLen {
		return nil, fmt.Errorf("bytes32 length %d exceeds max %d", n, maxLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read bytes32 body: %w", err)
	}
	return buf, nil
}
