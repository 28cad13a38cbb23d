package transfer_test

import (
	"context"
	"net"
	"testing"

	"github.com/danejoe001/transfer/internal/envelope"
	"github.com/danejoe001/transfer/pkg/transfer"
	"github.com/stretchr/testify/require"
)

func TestTransportRoundtripEcho(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		h, body, err := readFrame(serverConn)
		if err != nil {
			return
		}
		_ = h
		req, err := envelope.DecodeRequest(body, 0)
		if err != nil {
			return
		}
		testReq, err := envelope.DecodeTestRequest(req.Body)
		if err != nil {
			return
		}
		respBody, err := envelope.TestResponse{Message: testReq.Message}.Encode()
		if err != nil {
			return
		}
		writeFrame(t, serverConn, envelope.Response{
			Version:     1,
			RequestID:   req.RequestID,
			Status:      envelope.StatusOk,
			ContentType: envelope.ContentDaneJoe,
			Body:        respBody,
		})
	}()

	transport := transfer.NewTransport(clientConn, 0)
	reqBody, err := envelope.TestRequest{Message: "ping"}.Encode()
	require.NoError(t, err)

	resp, err := transport.Roundtrip(context.Background(), envelope.Request{
		Version:     1,
		RequestID:   1,
		RequestType: envelope.RequestTest,
		ContentType: envelope.ContentDaneJoe,
		Body:        reqBody,
	})
	require.NoError(t, err)
	require.Equal(t, envelope.StatusOk, resp.Status)

	testResp, err := envelope.DecodeTestResponse(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ping", testResp.Message)
}
