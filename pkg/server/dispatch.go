// Package server wires the reactor's inbound frames to the repository
// and block-store backends: it decodes each frame's envelope request,
// dispatches on RequestType, and hands a framed response back to the
// mailbox for the reactor to write. This is the request-handling
// Handler the workerpool drives (spec.md §4-§8).
package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/danejoe001/transfer/internal/envelope"
	"github.com/danejoe001/transfer/internal/header"
	"github.com/danejoe001/transfer/internal/logger"
	"github.com/danejoe001/transfer/internal/mailbox"
	"github.com/danejoe001/transfer/pkg/adminapi"
	"github.com/danejoe001/transfer/pkg/blockstore"
	"github.com/danejoe001/transfer/pkg/repository"
)

// Dispatcher holds the backends every request handler needs. Its
// Handle method satisfies internal/workerpool.Handler.
type Dispatcher struct {
	repo     repository.Repository
	blocks   blockstore.Store
	registry *adminapi.Registry // may be nil: admin API introspection is optional
}

// New constructs a Dispatcher. registry may be nil to skip admin API
// frame-received notifications.
func New(repo repository.Repository, blocks blockstore.Store, registry *adminapi.Registry) *Dispatcher {
	return &Dispatcher{repo: repo, blocks: blocks, registry: registry}
}

// Handle decodes in's envelope request, dispatches it, and pushes the
// framed response onto the mailbox's outbound queue for in's connection.
func (d *Dispatcher) Handle(ctx context.Context, mb *mailbox.Mailbox, in mailbox.Inbound) {
	if d.registry != nil {
		d.registry.OnFrameReceived(in.ConnID, in.Body)
	}

	req, err := envelope.DecodeRequest(in.Body, 0)
	if err != nil {
		logger.Warn("dispatch: malformed request envelope", "conn_id", in.ConnID, "error", err)
		return
	}

	lc := logger.NewLogContext(in.ConnID, "").WithRequest(req.RequestID, req.Path)
	ctx = logger.WithContext(ctx, lc)

	resp := d.route(ctx, req)
	resp.Version = req.Version
	resp.RequestID = req.RequestID

	logger.DebugCtx(ctx, "dispatch: request handled", "status", resp.Status, "duration_ms", lc.DurationMs())

	framed, err := frameResponse(resp)
	if err != nil {
		logger.Warn("dispatch: encode response", "conn_id", in.ConnID, "error", err)
		return
	}

	if code := mb.PushToClient(mailbox.Outbound{ConnID: in.ConnID, Body: framed}); code.IsError() {
		logger.Warn("dispatch: push response", "conn_id", in.ConnID, "status", code)
	}
}

func (d *Dispatcher) route(ctx context.Context, req envelope.Request) envelope.Response {
	switch req.RequestType {
	case envelope.RequestTest:
		return d.handleTest(req)
	case envelope.RequestDownload:
		return d.handleDownload(ctx, req)
	case envelope.RequestBlock:
		return d.handleBlock(ctx, req)
	default:
		return envelope.Response{Status: envelope.StatusBadRequest, ContentType: envelope.ContentDaneJoe}
	}
}

func (d *Dispatcher) handleTest(req envelope.Request) envelope.Response {
	testReq, err := envelope.DecodeTestRequest(req.Body)
	if err != nil {
		return envelope.Response{Status: envelope.StatusBadRequest, ContentType: envelope.ContentDaneJoe}
	}
	body, err := envelope.TestResponse{Message: testReq.Message}.Encode()
	if err != nil {
		return envelope.Response{Status: envelope.StatusInternalServerError, ContentType: envelope.ContentDaneJoe}
	}
	return envelope.Response{Status: envelope.StatusOk, ContentType: envelope.ContentDaneJoe, Body: body}
}

func (d *Dispatcher) handleDownload(ctx context.Context, req envelope.Request) envelope.Response {
	dlReq, err := envelope.DecodeDownloadRequest(req.Body)
	if err != nil {
		return envelope.Response{Status: envelope.StatusBadRequest, ContentType: envelope.ContentDaneJoe}
	}
	info, err := d.repo.Get(ctx, dlReq.FileID)
	if err != nil {
		logger.Debug("dispatch: download descriptor lookup failed", "file_id", dlReq.FileID, "error", err)
		return envelope.Response{Status: envelope.StatusNotFound, ContentType: envelope.ContentDaneJoe}
	}
	body, err := envelope.DownloadResponse{
		FileID:   dlReq.FileID,
		TaskID:   dlReq.TaskID,
		FileName: info.FileName,
		FileSize: info.FileSize,
		MD5Code:  info.MD5Code,
	}.Encode()
	if err != nil {
		return envelope.Response{Status: envelope.StatusInternalServerError, ContentType: envelope.ContentDaneJoe}
	}
	return envelope.Response{Status: envelope.StatusOk, ContentType: envelope.ContentDaneJoe, Body: body}
}

func (d *Dispatcher) handleBlock(ctx context.Context, req envelope.Request) envelope.Response {
	blockReq, err := envelope.DecodeBlockRequest(req.Body)
	if err != nil {
		return envelope.Response{Status: envelope.StatusBadRequest, ContentType: envelope.ContentDaneJoe}
	}
	info, err := d.repo.Get(ctx, blockReq.FileID)
	if err != nil {
		logger.Debug("dispatch: block file lookup failed", "file_id", blockReq.FileID, "error", err)
		return envelope.Response{Status: envelope.StatusNotFound, ContentType: envelope.ContentDaneJoe}
	}
	data, err := d.blocks.ReadRange(ctx, info.Path, uint64(blockReq.Offset), uint32(blockReq.BlockSize))
	if err != nil {
		logger.Debug("dispatch: block read failed", "file_id", blockReq.FileID, "offset", blockReq.Offset, "error", err)
		return envelope.Response{Status: envelope.StatusNotFound, ContentType: envelope.ContentDaneJoe}
	}
	body, err := envelope.BlockResponse{
		BlockID:   blockReq.BlockID,
		FileID:    blockReq.FileID,
		TaskID:    blockReq.TaskID,
		Offset:    blockReq.Offset,
		BlockSize: int64(len(data)),
		Data:      data,
	}.Encode()
	if err != nil {
		return envelope.Response{Status: envelope.StatusInternalServerError, ContentType: envelope.ContentDaneJoe}
	}
	return envelope.Response{Status: envelope.StatusOk, ContentType: envelope.ContentDaneJoe, Body: body}
}

// frameResponse encodes resp and wraps it in a checksummed frame header,
// matching exactly what pkg/transfer.Transport's client side expects to
// read back.
func frameResponse(resp envelope.Response) ([]byte, error) {
	body, err := resp.Encode()
	if err != nil {
		return nil, fmt.Errorf("server: encode response: %w", err)
	}
	checksum := header.ChecksumBody(body)
	h := header.New(len(body), checksum, true)

	buf := &bytes.Buffer{}
	if err := h.Encode(buf); err != nil {
		return nil, fmt.Errorf("server: encode header: %w", err)
	}
	buf.Write(body)
	return buf.Bytes(), nil
}
