package commands

import (
	"fmt"
	"os"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/cli/output"
	"github.com/danejoe001/transfer/pkg/adminclient"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reactor and mailbox statistics",
	Long: `Query GET /api/v1/stats on the admin API for connection lifecycle
counters and mailbox queue depths.

Examples:
  # Show stats
  danejoe-client stats

  # As YAML
  danejoe-client stats -o yaml`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	target, err := cmdutil.ResolveTarget()
	if err != nil {
		return err
	}

	client := adminclient.New(target.ServerURL).WithToken(target.Token)
	resp, err := client.Stats()
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, resp)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, resp)
	default:
		fmt.Printf("Active connections: %d\n", resp.Connections.ActiveConnections)
		fmt.Printf("Total opened:       %d\n", resp.Connections.TotalOpened)
		fmt.Printf("Total closed:       %d\n", resp.Connections.TotalClosed)
		if len(resp.Connections.CloseReasons) > 0 {
			fmt.Println("Close reasons:")
			for reason, count := range resp.Connections.CloseReasons {
				fmt.Printf("  %-20s %d\n", reason, count)
			}
		}
		if resp.Mailbox != nil {
			fmt.Printf("Mailbox inbound depth: %d\n", resp.Mailbox.InboundDepth)
			if len(resp.Mailbox.ClientQueueDepths) > 0 {
				fmt.Println("Mailbox client queue depths:")
				for connID, depth := range resp.Mailbox.ClientQueueDepths {
					fmt.Printf("  conn %-10d %d\n", connID, depth)
				}
			}
		}
	}

	return nil
}
