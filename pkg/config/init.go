package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const sampleConfig = `# danejoe-server Configuration File
#
# All of these keys can also be set via DANEJOE_<SECTION>_<KEY>
# environment variables (dots become underscores), which take
# precedence over this file.

logging:
  level: INFO
  format: text
  output: stdout

reactor:
  listen_addr: "0.0.0.0:7700"
  max_message_length: 40Mi
  max_path_length: 4096
  require_checksum: false
  idle_timeout: 5m

mailbox:
  inbound_capacity: 128

worker_pool:
  workers: 0 # 0 selects runtime.NumCPU()

metrics:
  enabled: false
  listen_addr: "127.0.0.1:9700"
  path: /metrics

admin_api:
  enabled: true
  listen_addr: "127.0.0.1:7701"
  jwt_secret: ""

repository:
  backend: memory
  badger_dir: /var/lib/danejoe/repository

block_store:
  backend: disk
  disk:
    root_dir: /var/lib/danejoe/blocks
  s3:
    bucket: ""
    region: ""
    prefix: ""

profiling:
  enabled: false
  server_addr: ""
  app_name: danejoe-server

shutdown_timeout: 15s
`

// GetConfigDir returns the configuration directory path, honoring
// XDG_CONFIG_HOME and falling back to ~/.config, or "." as a last
// resort if the home directory can't be determined.
func GetConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "danejoe-server")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "danejoe-server")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// InitConfig writes a sample configuration file to the default
// location, creating the directory if necessary. It refuses to
// overwrite an existing file unless force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a sample configuration file to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}

	// Sanity check: the sample must itself parse as YAML, or a typo
	// here would silently ship a broken default to every operator.
	var probe map[string]any
	if err := yaml.Unmarshal([]byte(sampleConfig), &probe); err != nil {
		return fmt.Errorf("config: sample config is not valid YAML: %w", err)
	}
	return nil
}
