package context

import (
	"fmt"
	"os"

	"github.com/danejoe001/transfer/internal/cli/credentials"
	"github.com/danejoe001/transfer/internal/cli/output"
	"github.com/spf13/cobra"
)

var currentOutput string

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current context",
	Long: `Display information about the current active context.

Examples:
  # Show current context
  danejoe-client context current

  # Show as JSON
  danejoe-client context current --output json`,
	RunE: runContextCurrent,
}

func init() {
	currentCmd.Flags().StringVarP(&currentOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		return fmt.Errorf("no current context set\n\n" +
			"Login to a server first:\n" +
			"  danejoe-client login --server http://localhost:7701 --token <token>")
	}

	ctx, err := store.GetContext(contextName)
	if err != nil {
		return fmt.Errorf("failed to get context: %w", err)
	}

	info := Info{
		Name:      contextName,
		Current:   true,
		ServerURL: ctx.ServerURL,
		LoggedIn:  ctx.HasToken() && !ctx.IsExpired(),
	}

	format, err := output.ParseFormat(currentOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	default:
		fmt.Printf("Current context: %s\n", contextName)
		fmt.Printf("  Server: %s\n", ctx.ServerURL)
		if info.LoggedIn {
			fmt.Printf("  Status: Logged in\n")
		} else {
			fmt.Printf("  Status: Not logged in\n")
		}
	}

	return nil
}
