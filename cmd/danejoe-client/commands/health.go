package commands

import (
	"fmt"
	"os"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/cli/output"
	"github.com/danejoe001/transfer/internal/cli/timeutil"
	"github.com/danejoe001/transfer/pkg/adminclient"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the server is running and healthy",
	Long: `Query GET /health on the admin API, which requires no bearer token.

Examples:
  # Check health
  danejoe-client health

  # As JSON
  danejoe-client health -o json`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	serverURL, err := cmdutil.ResolveServerURL()
	if err != nil {
		return err
	}

	client := adminclient.New(serverURL)
	resp, err := client.Liveness()
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
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
		if resp.Status == "ok" {
			fmt.Printf("Status:  \033[32m%s\033[0m\n", resp.Status)
		} else {
			fmt.Printf("Status:  \033[31m%s\033[0m\n", resp.Status)
		}
		fmt.Printf("Service: %s\n", resp.Data.Service)
		if resp.Data.StartedAt != "" {
			fmt.Printf("Started: %s\n", timeutil.FormatTime(resp.Data.StartedAt))
		}
		if resp.Data.Uptime != "" {
			fmt.Printf("Uptime:  %s\n", timeutil.FormatUptime(resp.Data.Uptime))
		}
		if resp.Error != "" {
			fmt.Printf("Error:   %s\n", resp.Error)
		}
	}

	return nil
}
