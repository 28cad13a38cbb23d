package commands

import (
	"fmt"
	"time"

	"github.com/danejoe001/transfer/pkg/adminapi/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject  string
	tokenDuration time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage admin API bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Mint a bearer token for the admin API",
	Long: `Mint a bearer token signed with the configured admin_api.jwt_secret.

There is no login endpoint on the admin API: an operator holding the
server's secret runs this command and hands the resulting token to
whoever needs to run 'danejoe-client login --token <token>'.

Examples:
  # Issue a token for the "ops" operator, valid for the default one hour
  danejoe-server token issue --subject ops

  # Issue a token valid for 30 days
  danejoe-server token issue --subject ops --duration 720h`,
	RunE: runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "Subject (sub claim) to embed in the token")
	tokenIssueCmd.Flags().DurationVar(&tokenDuration, "duration", time.Hour, "Token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(GetConfigFile())
	if err != nil {
		return err
	}
	if cfg.AdminAPI.JWTSecret == "" {
		return fmt.Errorf("admin_api.jwt_secret is not configured; set it in the config file or DANEJOE_ADMIN_API_JWT_SECRET before issuing tokens")
	}

	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.AdminAPI.JWTSecret,
		Issuer:        "danejoe-admin",
		TokenDuration: tokenDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	token, err := svc.IssueToken(tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
