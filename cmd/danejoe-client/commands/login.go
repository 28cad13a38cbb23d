package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/danejoe001/transfer/cmd/danejoe-client/cmdutil"
	"github.com/danejoe001/transfer/internal/cli/credentials"
	"github.com/danejoe001/transfer/internal/cli/prompt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	loginServer string
	loginToken  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for a danejoe-server instance",
	Long: `Store a bearer token issued by a danejoe-server operator.

The admin API has no username/password login of its own: a token is
minted out-of-band by someone holding the server's admin_api.jwt_secret
(for example, with a small internal signing tool) and handed to the
client operator. This command just validates the token's shape and
records it, alongside the server URL, as a reusable context.

Examples:
  # First login to a server
  danejoe-client login --server http://localhost:7701 --token eyJhbGciOi...

  # Re-login to the stored server with a fresh token
  danejoe-client login --token eyJhbGciOi...`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Admin API URL (required on first login)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token issued by the server operator")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	serverURLStr := loginServer
	if serverURLStr == "" {
		if ctx, err := store.GetCurrentContext(); err == nil && ctx.ServerURL != "" {
			serverURLStr = ctx.ServerURL
		} else {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify a server URL:\n" +
				"  danejoe-client login --server http://localhost:7701 --token <token>")
		}
	}

	parsedURL, err := url.Parse(serverURLStr)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURLStr = parsedURL.String()
	}

	token := loginToken
	if token == "" {
		token, err = prompt.InputRequired("Bearer token")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	expiresAt, subject, err := decodeTokenClaims(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		contextName = credentials.GenerateContextName(serverURLStr)
	}

	ctx := &credentials.Context{
		ServerURL: serverURLStr,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to set current context: %w", err)
	}

	fmt.Printf("Logged in to %s\n", serverURLStr)
	if subject != "" {
		fmt.Printf("Subject: %s\n", subject)
	}
	fmt.Printf("Context: %s\n", contextName)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())

	return nil
}

// decodeTokenClaims reads a JWT's expiry and subject without verifying
// its signature: the client has no way to verify it (it doesn't hold
// admin_api.jwt_secret) and isn't meant to — the server validates it on
// every request. This is purely to let 'context current' warn before a
// token has actually gone stale.
func decodeTokenClaims(token string) (time.Time, string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, "", err
	}
	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	subject, _ := claims.GetSubject()
	return expiresAt, subject, nil
}
