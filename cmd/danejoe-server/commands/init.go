package commands

import (
	"fmt"

	"github.com/danejoe001/transfer/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample danejoe-server configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/danejoe-server/config.yaml. Use --config to specify a
custom path.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error
	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: danejoe-server start")
	fmt.Println("\nSecurity note:")
	fmt.Println("  admin_api.jwt_secret is empty in the sample file. Set a real secret")
	fmt.Println("  (at least 32 bytes) via the DANEJOE_ADMIN_API_JWT_SECRET environment")
	fmt.Println("  variable before enabling the admin API in production.")

	return nil
}
