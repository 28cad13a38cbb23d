// Package cmdutil provides shared utilities for danejoe-client commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danejoe001/transfer/internal/cli/credentials"
	"github.com/danejoe001/transfer/internal/cli/output"
	"github.com/danejoe001/transfer/internal/cli/prompt"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// ResolvedTarget is a server URL and bearer token resolved from the
// --server/--token flags or the current stored context.
type ResolvedTarget struct {
	ServerURL string
	Token     string
}

// ResolveTarget returns the server URL and bearer token to use for a
// command, preferring explicit --server/--token flags over the current
// context's stored credentials. Unlike the teacher's
// GetAuthenticatedClient, there is no refresh flow here: the admin API
// issues one non-refreshable token, so an expired token just means
// re-running 'danejoe-client login'.
func ResolveTarget() (ResolvedTarget, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return ResolvedTarget{ServerURL: Flags.ServerURL, Token: Flags.Token}, nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return ResolvedTarget{}, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	ctx, err := store.GetCurrentContext()
	if err != nil {
		return ResolvedTarget{}, credentials.ErrNotLoggedIn
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return ResolvedTarget{}, fmt.Errorf("no server URL configured. Run 'danejoe-client login --server <url> --token <token>' first")
	}

	token := ctx.Token
	if Flags.Token != "" {
		token = Flags.Token
	}
	if token == "" {
		return ResolvedTarget{}, credentials.ErrNotLoggedIn
	}
	if ctx.IsExpired() && Flags.Token == "" {
		return ResolvedTarget{}, fmt.Errorf("session expired. Run 'danejoe-client login' to re-authenticate")
	}

	return ResolvedTarget{ServerURL: url, Token: token}, nil
}

// ResolveServerURL returns just the server URL, for endpoints like
// /health that require no bearer token.
func ResolveServerURL() (string, error) {
	if Flags.ServerURL != "" {
		return Flags.ServerURL, nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return "", fmt.Errorf("failed to initialize credential store: %w", err)
	}

	ctx, err := store.GetCurrentContext()
	if err != nil || ctx.ServerURL == "" {
		return "", fmt.Errorf("no server URL configured. Run 'danejoe-client login --server <url> --token <token>' first")
	}

	return ctx.ServerURL, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is
// true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// BoolToYesNo converts a boolean to "yes" or "no" string.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// HandleAbort checks if err is an abort (Ctrl+C) and prints a message,
// returning nil so callers treat cancellation as a clean exit.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// ParseCommaSeparatedList parses a comma-separated string into a slice
// of trimmed, non-empty strings.
func ParseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
