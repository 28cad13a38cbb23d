package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	body, err := TestRequest{Message: "ping"}.Encode()
	require.NoError(t, err)

	req := Request{
		Version:     1,
		RequestID:   42,
		RequestType: RequestTest,
		Path:        "/echo",
		ContentType: ContentDaneJoe,
		Body:        body,
	}
	encoded, err := req.Encode()
	require.NoError(t, err)

	got, err := DecodeRequest(encoded, 0)
	require.NoError(t, err)
	require.Equal(t, req, got)

	tr, err := DecodeTestRequest(got.Body)
	require.NoError(t, err)
	require.Equal(t, "ping", tr.Message)
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{
		Version:     1,
		RequestID:   42,
		Status:      StatusOk,
		ContentType: ContentDaneJoe,
		Body:        []byte("pong"),
	}
	encoded, err := resp.Encode()
	require.NoError(t, err)

	got, err := DecodeResponse(encoded, 0)
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestBlockRequestResponseRoundTrip(t *testing.T) {
	breq := BlockRequest{BlockID: 7, FileID: 1, TaskID: 2, Offset: 4096, BlockSize: 1024}
	encoded, err := breq.Encode()
	require.NoError(t, err)
	got, err := DecodeBlockRequest(encoded)
	require.NoError(t, err)
	require.Equal(t, breq, got)

	bresp := BlockResponse{BlockID: 7, FileID: 1, TaskID: 2, Offset: 4096, BlockSize: 4, Data: []byte{1, 2, 3, 4}}
	encodedResp, err := bresp.Encode()
	require.NoError(t, err)
	gotResp, err := DecodeBlockResponse(encodedResp, 0)
	require.NoError(t, err)
	require.Equal(t, bresp, gotResp)
}

func TestDownloadRequestResponseRoundTrip(t *testing.T) {
	dreq := DownloadRequest{FileID: 1, TaskID: 2}
	encodedReq, err := dreq.Encode()
	require.NoError(t, err)
	gotReq, err := DecodeDownloadRequest(encodedReq)
	require.NoError(t, err)
	require.Equal(t, dreq, gotReq)

	d := DownloadResponse{FileID: 1, TaskID: 2, FileName: "movie.mkv", FileSize: 1 << 30, MD5Code: "d41d8cd98f00b204e9800998ecf8427e"}
	encoded, err := d.Encode()
	require.NoError(t, err)
	got, err := DecodeDownloadResponse(encoded)
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestStatusStringMatchesHTTPLikeVocabulary(t *testing.T) {
	require.Equal(t, "Ok", StatusOk.String())
	require.Equal(t, "NotFound", StatusNotFound.String())
	require.Equal(t, "InternalServerError", StatusInternalServerError.String())
}

func TestDecodeRequestPathTooLong(t *testing.T) {
	req := Request{Version: 1, RequestType: RequestTest, Path: string(make([]byte, 100)), ContentType: ContentDaneJoe}
	encoded, err := req.Encode()
	require.NoError(t, err)
	_, err = DecodeRequest(encoded, 0)
	require.NoError(t, err) // within MaxPathLength

	req.Path = string(make([]byte, MaxPathLength+1))
	encoded, err = req.Encode()
	require.NoError(t, err)
	_, err = DecodeRequest(encoded, 0)
	require.Error(t, err)
}
