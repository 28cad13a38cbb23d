// Package config loads and validates this server's configuration.
//
// Configuration sources, in precedence order:
//  1. CLI flags (highest priority)
//  2. Environment variables (DANEJOE_*)
//  3. A YAML configuration file
//  4. Built-in defaults (lowest priority)
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/danejoe001/transfer/internal/bytesize"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level, validated configuration for the server binary.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Reactor controls the epoll core: listen address, message size
	// bounds, and idle connection handling.
	Reactor ReactorConfig `mapstructure:"reactor" yaml:"reactor" validate:"required"`

	// Mailbox controls inbound/outbound queue capacities.
	Mailbox MailboxConfig `mapstructure:"mailbox" yaml:"mailbox"`

	// WorkerPool controls the fixed-size request-handling worker pool.
	WorkerPool WorkerPoolConfig `mapstructure:"worker_pool" yaml:"worker_pool"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// AdminAPI contains the read-only HTTP admin surface configuration.
	AdminAPI AdminAPIConfig `mapstructure:"admin_api" yaml:"admin_api"`

	// Repository selects and configures the file-info repository backend.
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`

	// BlockStore selects and configures the block-byte storage backend.
	BlockStore BlockStoreConfig `mapstructure:"block_store" yaml:"block_store"`

	// Profiling controls the optional continuous-profiling hook.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`

	// ShutdownTimeout bounds the graceful shutdown of the metrics HTTP
	// server; connection teardown and worker-pool drain are not bounded
	// by it.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	Output string `mapstructure:"output" yaml:"output"`
}

// ReactorConfig controls the epoll core.
type ReactorConfig struct {
	ListenAddr       string          `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	MaxMessageLength bytesize.ByteSize `mapstructure:"max_message_length" yaml:"max_message_length"`
	MaxPathLength    int             `mapstructure:"max_path_length" yaml:"max_path_length" validate:"gt=0"`
	RequireChecksum  bool            `mapstructure:"require_checksum" yaml:"require_checksum"`
	IdleTimeout      time.Duration   `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// MailboxConfig controls queue capacities.
type MailboxConfig struct {
	InboundCapacity int `mapstructure:"inbound_capacity" yaml:"inbound_capacity" validate:"gt=0"`
}

// WorkerPoolConfig controls the request-handling worker pool.
type WorkerPoolConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Path       string `mapstructure:"path" yaml:"path"`
}

// AdminAPIConfig controls the read-only HTTP admin surface.
type AdminAPIConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	JWTSecret  string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// RepositoryConfig selects the file-info repository backend.
type RepositoryConfig struct {
	Backend   string `mapstructure:"backend" yaml:"backend" validate:"oneof=memory badger"`
	BadgerDir string `mapstructure:"badger_dir" yaml:"badger_dir"`
}

// BlockStoreConfig selects the block-byte storage backend.
type BlockStoreConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend" validate:"oneof=disk s3"`
	Disk    DiskStoreConfig `mapstructure:"disk" yaml:"disk"`
	S3      S3StoreConfig   `mapstructure:"s3" yaml:"s3"`
}

// DiskStoreConfig configures the local-disk block store.
type DiskStoreConfig struct {
	RootDir string `mapstructure:"root_dir" yaml:"root_dir"`
}

// S3StoreConfig configures the S3 block store.
type S3StoreConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Region string `mapstructure:"region" yaml:"region"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// ProfilingConfig controls the optional pyroscope continuous-profiling hook.
type ProfilingConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	AppName    string `mapstructure:"app_name" yaml:"app_name"`
}

// Load reads configuration from (in precedence order) CLI flags already
// bound into v, the DANEJOE_* environment, a YAML file at path (if
// non-empty), and built-in defaults, then validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("danejoe")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := &Config{}
	ApplyDefaults(cfg)

	decoderOpt := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToByteSizeHookFunc(),
	))
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYAMLFile is a narrower entry point used by tests: it reads and
// validates path directly, without touching viper/env/flags.
func LoadYAMLFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := &Config{}
	ApplyDefaults(cfg)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validate.RegisterValidation("hostname_port", validateHostnamePort); err != nil {
		return fmt.Errorf("config: registering validator: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// bindEnvKeys tells viper about every dotted config key so that
// AutomaticEnv applies even though v.Unmarshal never calls v.Get for
// keys that were never otherwise set (a well-known viper limitation:
// unbound nested keys are invisible to Unmarshal's environment lookup).
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"logging.level", "logging.format", "logging.output",
		"reactor.listen_addr", "reactor.max_message_length", "reactor.max_path_length",
		"reactor.require_checksum", "reactor.idle_timeout",
		"mailbox.inbound_capacity",
		"worker_pool.workers",
		"metrics.enabled", "metrics.listen_addr", "metrics.path",
		"admin_api.enabled", "admin_api.listen_addr", "admin_api.jwt_secret",
		"repository.backend", "repository.badger_dir",
		"block_store.backend", "block_store.disk.root_dir",
		"block_store.s3.bucket", "block_store.s3.region", "block_store.s3.prefix",
		"profiling.enabled", "profiling.server_addr", "profiling.app_name",
		"shutdown_timeout",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func validateHostnamePort(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.Contains(s, ":")
}

// stringToByteSizeHookFunc lets mapstructure (and so viper.Unmarshal)
// decode human-readable sizes like "40Mi" directly into a
// bytesize.ByteSize field, the same way StringToTimeDurationHookFunc
// handles time.Duration fields.
func stringToByteSizeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			return bytesize.ParseByteSize(data.(string))
		case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
			return data, nil
		default:
			return data, nil
		}
	}
}
