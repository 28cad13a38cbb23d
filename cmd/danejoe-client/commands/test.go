package commands

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/envelope"
	"github.com/danejoe001/transfer/pkg/transfer"
	"github.com/spf13/cobra"
)

var (
	testAddr    string
	testPayload string
	testTimeout time.Duration
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a Test (echo) request to the reactor",
	Long: `Send a RequestTest envelope over a plain TCP connection and verify
the server echoes the payload back unchanged.

Unlike the other commands, this talks directly to the reactor's listen
address (spec.md's wire protocol), not the admin API, so --server/
--token don't apply here: use --addr instead.

Examples:
  # Echo "hello" off the reactor
  danejoe-client test --addr localhost:7700 --payload hello`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVar(&testAddr, "addr", "localhost:7700", "Reactor listen address")
	testCmd.Flags().StringVar(&testPayload, "payload", "ping", "Payload to echo")
	testCmd.Flags().DurationVar(&testTimeout, "timeout", 10*time.Second, "Round-trip timeout")
}

func runTest(cmd *cobra.Command, args []string) error {
	conn, err := net.DialTimeout("tcp", testAddr, testTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", testAddr, err)
	}
	defer conn.Close()

	transport := transfer.NewTransport(conn, 0)

	body, err := envelope.TestRequest{Message: testPayload}.Encode()
	if err != nil {
		return fmt.Errorf("encode test request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	resp, err := transport.Roundtrip(ctx, envelope.Request{
		Version:     1,
		RequestType: envelope.RequestTest,
		ContentType: envelope.ContentDaneJoe,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	if resp.Status != envelope.StatusOk {
		return fmt.Errorf("server returned status %s", resp.Status)
	}

	echoed, err := envelope.DecodeTestResponse(resp.Body)
	if err != nil {
		return fmt.Errorf("decode test response: %w", err)
	}
	if echoed.Message != testPayload {
		return fmt.Errorf("payload mismatch: sent %q, got %q", testPayload, echoed.Message)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("echoed %q from %s", testPayload, testAddr))
	return nil
}
