// Package header implements the fixed-size frame header described in
// spec.md §3: a magic number, version, total message length, a flag
// bitmap, an optional checksum, and a field count. It is the first thing
// the frame assembler (internal/assembler) looks for in an incoming byte
// stream, and the last thing the codec writes before a message body.
package header

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/danejoe001/transfer/internal/wire"
)

// Magic identifies the start of a frame header.
const Magic uint32 = 0x66666666

// Version is the only wire version this implementation speaks.
const Version uint8 = 1

// Flag is the header's bitmap of optional-field indicators.
type Flag uint8

const (
	// FlagNone marks a header with no optional fields present.
	FlagNone Flag = 0
	// FlagHasChecksum marks that Header.Checksum is meaningful and was
	// computed over the message body with CRC32 (IEEE).
	FlagHasChecksum Flag = 1 << 0
)

// HasChecksum reports whether the checksum bit is set.
func (f Flag) HasChecksum() bool { return f&FlagHasChecksum != 0 }

// Header is the fixed-size preamble of every frame on the wire.
//
//	magic_number  uint32
//	version       uint8
//	message_length uint32  // length of the body that follows this header
//	flag          uint8
//	checksum      uint32   // present only if flag&HasChecksum
//	field_count   uint16
type Header struct {
	MagicNumber   uint32
	Version       uint8
	MessageLength uint32
	Flag          Flag
	Checksum      uint32
	FieldCount    uint16
}

// MinSerializedSize is the header size with no optional fields present:
// magic(4) + version(1) + message_length(4) + flag(1) + field_count(2).
const MinSerializedSize = 4 + 1 + 4 + 1 + 2

// SerializedSize returns the size this header occupies on the wire,
// which grows by 4 bytes when the checksum field is present.
func (h Header) SerializedSize() int {
	if h.Flag.HasChecksum() {
		return MinSerializedSize + 4
	}
	return MinSerializedSize
}

// New builds a Header for a body of the given length. fieldCount is
// written as 0 for envelope frames; the original dictionary-bodied codec
// path is out of scope and field_count is otherwise unvalidated on
// decode (see SPEC_FULL.md "SUPPLEMENTED FEATURES").
func New(bodyLen int, checksum uint32, withChecksum bool) Header {
	h := Header{
		MagicNumber:   Magic,
		Version:       Version,
		MessageLength: uint32(bodyLen),
		FieldCount:    0,
	}
	if withChecksum {
		h.Flag |= FlagHasChecksum
		h.Checksum = checksum
	}
	return h
}

// ChecksumBody computes the CRC32 (IEEE polynomial) checksum of body, the
// sole algorithm this implementation defines for the checksum field.
func ChecksumBody(body []byte) uint32 {
	return crc32.ChecksumIEEE(body)
}

// Encode writes h to buf in wire order.
func (h Header) Encode(buf *bytes.Buffer) error {
	if err := wire.WriteUint32(buf, h.MagicNumber); err != nil {
		return err
	}
	if err := wire.WriteUint8(buf, h.Version); err != nil {
		return err
	}
	if err := wire.WriteUint32(buf, h.MessageLength); err != nil {
		return err
	}
	if err := wire.WriteUint8(buf, uint8(h.Flag)); err != nil {
		return err
	}
	if h.Flag.HasChecksum() {
		if err := wire.WriteUint32(buf, h.Checksum); err != nil {
			return err
		}
	}
	if err := wire.WriteUint16(buf, h.FieldCount); err != nil {
		return err
	}
	return nil
}

// Decode reads a Header from buf, which must hold at least
// MinSerializedSize bytes (more, if the flag byte turns out to indicate a
// checksum). Decode does not consume more of buf than the header occupies;
// callers determine the header's actual size from the return value before
// advancing past it, since the presence of a checksum isn't known until
// the flag byte is read.
func Decode(buf []byte) (Header, int, error) {
	if len(buf) < MinSerializedSize {
		return Header{}, 0, fmt.Errorf("header: need at least %d bytes, have %d", MinSerializedSize, len(buf))
	}
	r := bytes.NewReader(buf)

	magic, err := wire.ReadUint32(r)
	if err != nil {
		return Header{}, 0, err
	}
	if magic != Magic {
		return Header{}, 0, fmt.Errorf("header: bad magic number %#x, want %#x", magic, Magic)
	}
	version, err := wire.ReadUint8(r)
	if err != nil {
		return Header{}, 0, err
	}
	msgLen, err := wire.ReadUint32(r)
	if err != nil {
		return Header{}, 0, err
	}
	flagByte, err := wire.ReadUint8(r)
	if err != nil {
		return Header{}, 0, err
	}
	flag := Flag(flagByte)

	h := Header{
		MagicNumber:   magic,
		Version:       version,
		MessageLength: msgLen,
		Flag:          flag,
	}

	if flag.HasChecksum() {
		if len(buf) < MinSerializedSize+4 {
			return Header{}, 0, fmt.Errorf("header: need %d bytes for checksum field, have %d", MinSerializedSize+4, len(buf))
		}
		checksum, err := wire.ReadUint32(r)
		if err != nil {
			return Header{}, 0, err
		}
		h.Checksum = checksum
	}

	fieldCount, err := wire.ReadUint16(r)
	if err != nil {
		return Header{}, 0, err
	}
	h.FieldCount = fieldCount

	return h, h.SerializedSize(), nil
}

// PeekSize reports the header's serialized size without fully decoding
// it, given only the flag byte at its fixed offset (4 bytes of magic + 1
// of version + 4 of message_length). Returns ok=false if buf is too short
// to contain the flag byte yet.
func PeekSize(buf []byte) (size int, ok bool) {
	const flagOffset = 4 + 1 + 4
	if len(buf) <= flagOffset {
		return 0, false
	}
	flag := Flag(buf[flagOffset])
	if flag.HasChecksum() {
		return MinSerializedSize + 4, true
	}
	return MinSerializedSize, true
}

// String renders h for logging.
func (h Header) String() string {
	return fmt.Sprintf("Header{magic=%#x version=%d message_length=%d flag=%#x checksum=%#x field_count=%d}",
		h.MagicNumber, h.Version, h.MessageLength, uint8(h.Flag), h.Checksum, h.FieldCount)
}
