// Package context implements danejoe-client's 'context' command group:
// managing multiple saved server+token pairs.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent 'context' command, registered under rootCmd.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage danejoe-client contexts: named server URL + bearer token
pairs, so you can switch between multiple danejoe-server instances
without re-logging in each time.`,
}

func init() {
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}
