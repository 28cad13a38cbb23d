package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/cli/timeutil"
	"github.com/danejoe001/transfer/pkg/adminclient"
	"github.com/spf13/cobra"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List the reactor's currently-tracked connections",
	Long: `Query GET /api/v1/connections on the admin API for a snapshot of
every connection currently tracked by the reactor.

Examples:
  # List connections
  danejoe-client connections

  # As JSON
  danejoe-client connections -o json`,
	RunE: runConnections,
}

// connectionList renders adminclient.ConnectionInfo rows as a table.
type connectionList []adminclient.ConnectionInfo

func (l connectionList) Headers() []string {
	return []string{"CONN ID", "REMOTE ADDR", "OPENED AT", "UPTIME", "FRAMES SERVED"}
}

func (l connectionList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ConnID),
			c.RemoteAddr,
			timeutil.FormatTime(c.OpenedAt.Format(time.RFC3339)),
			timeutil.FormatUptime(time.Since(c.OpenedAt).String()),
			fmt.Sprintf("%d", c.FramesServed),
		})
	}
	return rows
}

func runConnections(cmd *cobra.Command, args []string) error {
	target, err := cmdutil.ResolveTarget()
	if err != nil {
		return err
	}

	client := adminclient.New(target.ServerURL).WithToken(target.Token)
	resp, err := client.Connections()
	if err != nil {
		return fmt.Errorf("fetch connections: %w", err)
	}

	list := connectionList(resp.Connections)
	return cmdutil.PrintOutput(os.Stdout, resp.Connections, len(list) == 0, "No active connections.", list)
}
