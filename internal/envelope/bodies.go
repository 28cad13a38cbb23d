package envelope

import (
	"bytes"
	"fmt"

	"github.com/danejoe001/transfer/internal/wire"
)

// TestRequest is the body of a RequestTest envelope: an echo message
// with no filesystem side effect, used for the "Echo" scenario
// (spec.md §8) and liveness probing.
type TestRequest struct {
	Message string
}

// TestResponse is the body of the corresponding response: the same
// message, unchanged.
type TestResponse struct {
	Message string
}

func (t TestRequest) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteString16(buf, t.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeTestRequest(body []byte) (TestRequest, error) {
	r := bytes.NewReader(body)
	m, err := wire.ReadString16(r, 0)
	if err != nil {
		return TestRequest{}, fmt.Errorf("test request: %w", err)
	}
	return TestRequest{Message: m}, nil
}

func (t TestResponse) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteString16(buf, t.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeTestResponse(body []byte) (TestResponse, error) {
	r := bytes.NewReader(body)
	m, err := wire.ReadString16(r, 0)
	if err != nil {
		return TestResponse{}, fmt.Errorf("test response: %w", err)
	}
	return TestResponse{Message: m}, nil
}

// DownloadRequest asks the server to describe one task's file: its
// name, total size, and md5 checksum, so a client can plan a sequence
// of BlockRequests against that (file_id, task_id) pair. The core does
// not decide chunking strategy (spec.md Non-goals) — it only reports
// these facts.
type DownloadRequest struct {
	FileID int64
	TaskID int64
}

func (d DownloadRequest) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteInt64(buf, d.FileID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, d.TaskID); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeDownloadRequest(body []byte) (DownloadRequest, error) {
	r := bytes.NewReader(body)
	fileID, err := wire.ReadInt64(r)
	if err != nil {
		return DownloadRequest{}, fmt.Errorf("download request: %w", err)
	}
	taskID, err := wire.ReadInt64(r)
	if err != nil {
		return DownloadRequest{}, fmt.Errorf("download request: %w", err)
	}
	return DownloadRequest{FileID: fileID, TaskID: taskID}, nil
}

// DownloadResponse describes the file named by the request's
// (file_id, task_id) pair.
type DownloadResponse struct {
	FileID   int64
	TaskID   int64
	FileName string
	FileSize int64
	MD5Code  string
}

func (d DownloadResponse) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteInt64(buf, d.FileID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, d.TaskID); err != nil {
		return nil, err
	}
	if err := wire.WriteString16(buf, d.FileName); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, d.FileSize); err != nil {
		return nil, err
	}
	if err := wire.WriteString16(buf, d.MD5Code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeDownloadResponse(body []byte) (DownloadResponse, error) {
	r := bytes.NewReader(body)
	fileID, err := wire.ReadInt64(r)
	if err != nil {
		return DownloadResponse{}, fmt.Errorf("download response: %w", err)
	}
	taskID, err := wire.ReadInt64(r)
	if err != nil {
		return DownloadResponse{}, fmt.Errorf("download response: %w", err)
	}
	fileName, err := wire.ReadString16(r, 0)
	if err != nil {
		return DownloadResponse{}, fmt.Errorf("download response: %w", err)
	}
	fileSize, err := wire.ReadInt64(r)
	if err != nil {
		return DownloadResponse{}, fmt.Errorf("download response: %w", err)
	}
	md5Code, err := wire.ReadString16(r, 0)
	if err != nil {
		return DownloadResponse{}, fmt.Errorf("download response: %w", err)
	}
	return DownloadResponse{
		FileID:   fileID,
		TaskID:   taskID,
		FileName: fileName,
		FileSize: fileSize,
		MD5Code:  md5Code,
	}, nil
}

// BlockRequest asks for one byte range of the file named by
// (file_id, task_id). BlockID identifies the block row the caller is
// filling in (pkg/transfer implements the chunking policy and owns
// block bookkeeping; the core only transports the request). Offset and
// BlockSize are chosen by the caller.
type BlockRequest struct {
	BlockID   int64
	FileID    int64
	TaskID    int64
	Offset    int64
	BlockSize int64
}

func (b BlockRequest) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteInt64(buf, b.BlockID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.FileID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.TaskID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.Offset); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.BlockSize); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeBlockRequest(body []byte) (BlockRequest, error) {
	r := bytes.NewReader(body)
	blockID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockRequest{}, fmt.Errorf("block request: %w", err)
	}
	fileID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockRequest{}, fmt.Errorf("block request: %w", err)
	}
	taskID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockRequest{}, fmt.Errorf("block request: %w", err)
	}
	offset, err := wire.ReadInt64(r)
	if err != nil {
		return BlockRequest{}, fmt.Errorf("block request: %w", err)
	}
	blockSize, err := wire.ReadInt64(r)
	if err != nil {
		return BlockRequest{}, fmt.Errorf("block request: %w", err)
	}
	return BlockRequest{
		BlockID:   blockID,
		FileID:    fileID,
		TaskID:    taskID,
		Offset:    offset,
		BlockSize: blockSize,
	}, nil
}

// BlockResponse carries the requested byte range's data, tagged with
// the same identity fields as the request so a client juggling
// multiple concurrent tasks can match a response back to its block.
// maxBlockLen bounds what a decoder will accept, guarding against a
// peer claiming an implausibly large single block.
type BlockResponse struct {
	BlockID   int64
	FileID    int64
	TaskID    int64
	Offset    int64
	BlockSize int64
	Data      []byte
}

func (b BlockResponse) Encode() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteInt64(buf, b.BlockID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.FileID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.TaskID); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.Offset); err != nil {
		return nil, err
	}
	if err := wire.WriteInt64(buf, b.BlockSize); err != nil {
		return nil, err
	}
	if err := wire.WriteBytes32(buf, b.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeBlockResponse(body []byte, maxBlockLen int) (BlockResponse, error) {
	r := bytes.NewReader(body)
	blockID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	fileID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	taskID, err := wire.ReadInt64(r)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	offset, err := wire.ReadInt64(r)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	blockSize, err := wire.ReadInt64(r)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	data, err := wire.ReadBytes32(r, maxBlockLen)
	if err != nil {
		return BlockResponse{}, fmt.Errorf("block response: %w", err)
	}
	return BlockResponse{
		BlockID:   blockID,
		FileID:    fileID,
		TaskID:    taskID,
		Offset:    offset,
		BlockSize: blockSize,
		Data:      data,
	}, nil
}
