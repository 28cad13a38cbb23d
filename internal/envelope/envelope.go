// Package envelope implements the request/response envelope carried inside
// a frame's body (spec.md §3, §6), and the typed bodies layered on top of
// it: Test, Download, and Block. It is a direct, typed port of the
// original project's EnvelopeRequestTransfer/EnvelopeResponseTransfer
// (_examples/original_source/server/include/model/transfer/envelope_transfer.hpp).
package envelope

import (
	"bytes"
	"fmt"

	"github.com/danejoe001/transfer/internal/wire"
)

// MaxPathLength bounds the envelope request path field.
const MaxPathLength = 4096

// RequestType identifies which typed body a request envelope carries.
type RequestType uint8

const (
	RequestUnknown RequestType = iota
	RequestTest
	RequestDownload
	RequestBlock
)

func (t RequestType) String() string {
	switch t {
	case RequestTest:
		return "Test"
	case RequestDownload:
		return "Download"
	case RequestBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// ContentType identifies how a response/request body is encoded.
type ContentType uint8

const (
	ContentUnknown ContentType = iota
	ContentJSON
	ContentDaneJoe
)

func (c ContentType) String() string {
	switch c {
	case ContentJSON:
		return "Json"
	case ContentDaneJoe:
		return "DaneJoe"
	default:
		return "Unknown"
	}
}

// Status mirrors the original's ResponseStatus enum — HTTP-like status
// codes reused deliberately so operators can reason about them with the
// same vocabulary as any other network service.
type Status uint16

const (
	StatusUnknown             Status = 0
	StatusOk                  Status = 200
	StatusCreated             Status = 201
	StatusAccepted            Status = 202
	StatusNoContent           Status = 204
	StatusBadRequest          Status = 400
	StatusUnauthorized        Status = 401
	StatusForbidden           Status = 403
	StatusNotFound            Status = 404
	StatusMethodNotAllowed    Status = 405
	StatusConflict            Status = 409
	StatusInternalServerError Status = 500
	StatusNotImplemented      Status = 501
	StatusBadGateway          Status = 502
	StatusServiceUnavailable  Status = 503
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusCreated:
		return "Created"
	case StatusAccepted:
		return "Accepted"
	case StatusNoContent:
		return "NoContent"
	case StatusBadRequest:
		return "BadRequest"
	case StatusUnauthorized:
		return "Unauthorized"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "NotFound"
	case StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case StatusConflict:
		return "Conflict"
	case StatusInternalServerError:
		return "InternalServerError"
	case StatusNotImplemented:
		return "NotImplemented"
	case StatusBadGateway:
		return "BadGateway"
	case StatusServiceUnavailable:
		return "ServiceUnavailable"
	default:
		return "Unknown"
	}
}

// Request is the envelope carried in a request frame's body:
//
//	version      uint8
//	request_id   uint64
//	request_type uint8
//	path         string, 2-byte length prefix
//	content_type uint8
//	body         []byte, 4-byte length prefix
type Request struct {
	Version     uint8
	RequestID   uint64
	RequestType RequestType
	Path        string
	ContentType ContentType
	Body        []byte
}

// Response is the envelope carried in a response frame's body:
//
//	version      uint8
//	request_id   uint64
//	status       uint16
//	content_type uint8
//	body         []byte, 4-byte length prefix
type Response struct {
	Version     uint8
	RequestID   uint64
	Status      Status
	ContentType ContentType
	Body        []byte
}

// Encode serializes r in wire order.
func (r Request) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteUint8(buf, r.Version); err != nil {
		return nil, err
	}
	if err := wire.WriteUint64(buf, r.RequestID); err != nil {
		return nil, err
	}
	if err := wire.WriteUint8(buf, uint8(r.RequestType)); err != nil {
		return nil, err
	}
	if err := wire.WriteString16(buf, r.Path); err != nil {
		return nil, err
	}
	if err := wire.WriteUint8(buf, uint8(r.ContentType)); err != nil {
		return nil, err
	}
	if err := wire.WriteBytes32(buf, r.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses a request envelope body. maxBodyLen bounds the
// body field (0 means unbounded); it is typically the connection's
// configured max message length minus whatever has already been consumed
// by the fixed-size fields.
func DecodeRequest(body []byte, maxBodyLen int) (Request, error) {
	r := bytes.NewReader(body)
	var req Request

	version, err := wire.ReadUint8(r)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.Version = version

	reqID, err := wire.ReadUint64(r)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.RequestID = reqID

	reqType, err := wire.ReadUint8(r)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.RequestType = RequestType(reqType)

	path, err := wire.ReadString16(r, MaxPathLength)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.Path = path

	contentType, err := wire.ReadUint8(r)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.ContentType = ContentType(contentType)

	reqBody, err := wire.ReadBytes32(r, maxBodyLen)
	if err != nil {
		return Request{}, fmt.Errorf("envelope request: %w", err)
	}
	req.Body = reqBody

	return req, nil
}

// Encode serializes r in wire order.
func (r Response) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteUint8(buf, r.Version); err != nil {
		return nil, err
	}
	if err := wire.WriteUint64(buf, r.RequestID); err != nil {
		return nil, err
	}
	if err := wire.WriteUint16(buf, uint16(r.Status)); err != nil {
		return nil, err
	}
	if err := wire.WriteUint8(buf, uint8(r.ContentType)); err != nil {
		return nil, err
	}
	if err := wire.WriteBytes32(buf, r.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResponse parses a response envelope body.
func DecodeResponse(body []byte, maxBodyLen int) (Response, error) {
	r := bytes.NewReader(body)
	var resp Response

	version, err := wire.ReadUint8(r)
	if err != nil {
		return Response{}, fmt.Errorf("envelope response: %w", err)
	}
	resp.Version = version

	reqID, err := wire.ReadUint64(r)
	if err != nil {
		return Response{}, fmt.Errorf("envelope response: %w", err)
	}
	resp.RequestID = reqID

	statusCode, err := wire.ReadUint16(r)
	if err != nil {
		return Response{}, fmt.Errorf("envelope response: %w", err)
	}
	resp.Status = Status(statusCode)

	contentType, err := wire.ReadUint8(r)
	if err != nil {
		return Response{}, fmt.Errorf("envelope response: %w", err)
	}
	resp.ContentType = ContentType(contentType)

	respBody, err := wire.ReadBytes32(r, maxBodyLen)
	if err != nil {
		return Response{}, fmt.Errorf("envelope response: %w", err)
	}
	resp.Body = respBody

	return resp, nil
}
