package config

import (
	"runtime"
	"time"

	"github.com/danejoe001/transfer/internal/bytesize"
)

// ApplyDefaults populates cfg with built-in defaults. Load/LoadYAMLFile
// call this before and again after unmarshaling so that any field left
// unset, or set to zero, by the environment, flags, or file takes on a
// sane default rather than a Go zero value.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyReactorDefaults(&cfg.Reactor)
	applyMailboxDefaults(&cfg.Mailbox)
	applyWorkerPoolDefaults(&cfg.WorkerPool)
	applyMetricsDefaults(&cfg.Metrics)
	applyAdminAPIDefaults(&cfg.AdminAPI)
	applyRepositoryDefaults(&cfg.Repository)
	applyBlockStoreDefaults(&cfg.BlockStore)
	applyProfilingDefaults(&cfg.Profiling)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
}

func applyLoggingDefaults(c *LoggingConfig) {
	if c.Level == "" {
		c.Level = "INFO"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

func applyReactorDefaults(c *ReactorConfig) {
	if c.ListenAddr == "" {
		c.ListenAddr = "0.0.0.0:7700"
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = 40 * bytesize.MiB
	}
	if c.MaxPathLength == 0 {
		c.MaxPathLength = 4096
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	// RequireChecksum defaults to false: the wire format supports an
	// optional per-frame CRC32, but enabling it costs a checksum pass
	// over every frame body.
}

func applyMailboxDefaults(c *MailboxConfig) {
	if c.InboundCapacity == 0 {
		c.InboundCapacity = 128
	}
}

func applyWorkerPoolDefaults(c *WorkerPoolConfig) {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
}

func applyMetricsDefaults(c *MetricsConfig) {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:9700"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func applyAdminAPIDefaults(c *AdminAPIConfig) {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:7701"
	}
}

func applyRepositoryDefaults(c *RepositoryConfig) {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.BadgerDir == "" {
		c.BadgerDir = "/var/lib/danejoe/repository"
	}
}

func applyBlockStoreDefaults(c *BlockStoreConfig) {
	if c.Backend == "" {
		c.Backend = "disk"
	}
	if c.Disk.RootDir == "" {
		c.Disk.RootDir = "/var/lib/danejoe/blocks"
	}
}

func applyProfilingDefaults(c *ProfilingConfig) {
	if c.AppName == "" {
		c.AppName = "danejoe-server"
	}
}
