package commands

import (
	"os"

	"github.com/danejoe001/transfer/internal/cli/output"
	"github.com/danejoe001/transfer/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage danejoe-server configuration files.

Use 'danejoe-server init' to create a new configuration file.`,
}

var configShowOutput string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved configuration",
	Long: `Display the configuration danejoe-server would start with: built-in
defaults overridden by the config file (if any) and the DANEJOE_*
environment.`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringVarP(&configShowOutput, "output", "o", "yaml", "Output format (yaml|json)")
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(GetConfigFile())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(configShowOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}

// loadConfig loads configuration from configFile, falling back to the
// default location if configFile is empty, and to built-in defaults if
// neither exists.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(nil, configFile)
	}
	if config.DefaultConfigExists() {
		return config.Load(nil, config.GetDefaultConfigPath())
	}
	return config.Load(nil, "")
}
