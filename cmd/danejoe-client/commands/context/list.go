package context

import (
	"os"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured contexts",
	Long: `List all configured server contexts.

The current context is marked with an asterisk (*).

Examples:
  # List contexts as table
  danejoe-client context list

  # List as JSON
  danejoe-client context list -o json`,
	RunE: runContextList,
}

// Info describes one saved context for output.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
	LoggedIn  bool   `json:"logged_in" yaml:"logged_in"`
}

// List is a slice of Info for table rendering.
type List []Info

func (l List) Headers() []string {
	return []string{"", "NAME", "SERVER", "LOGGED IN"}
}

func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		current := ""
		if c.Current {
			current = "*"
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, cmdutil.BoolToYesNo(c.LoggedIn)})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return err
	}

	names := store.ListContexts()
	current := store.GetCurrentContextName()

	contexts := make(List, 0, len(names))
	for _, name := range names {
		ctx, err := store.GetContext(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, Info{
			Name:      name,
			Current:   name == current,
			ServerURL: ctx.ServerURL,
			LoggedIn:  ctx.HasToken() && !ctx.IsExpired(),
		})
	}

	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts configured. Use 'danejoe-client login --server <url> --token <token>' to create one.", contexts)
}
