package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/danejoe001/transfer/internal/logger"
	"github.com/danejoe001/transfer/internal/mailbox"
	"github.com/danejoe001/transfer/internal/reactor"
	"github.com/danejoe001/transfer/internal/telemetry"
	"github.com/danejoe001/transfer/internal/workerpool"
	"github.com/danejoe001/transfer/pkg/adminapi"
	"github.com/danejoe001/transfer/pkg/blockstore"
	"github.com/danejoe001/transfer/pkg/config"
	"github.com/danejoe001/transfer/pkg/metrics"
	"github.com/danejoe001/transfer/pkg/repository"
	"github.com/danejoe001/transfer/pkg/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the danejoe-server",
	Long: `Start the danejoe-server epoll reactor, worker pool, and (if enabled)
the read-only admin API and Prometheus metrics endpoint.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/danejoe-server/config.yaml.

Examples:
  # Start with the default or discovered config
  danejoe-server start

  # Start with a custom config file
  danejoe-server start --config /etc/danejoe/config.yaml

  # Override settings via environment
  DANEJOE_LOGGING_LEVEL=DEBUG danejoe-server start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("danejoe-server starting", "config_source", getConfigSource(GetConfigFile()))

	stopProfiling, err := telemetry.StartProfiling(telemetry.ProfilingConfig{
		Enabled:    cfg.Profiling.Enabled,
		ServerAddr: cfg.Profiling.ServerAddr,
		AppName:    cfg.Profiling.AppName,
	})
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	defer func() { _ = stopProfiling() }()
	if cfg.Profiling.Enabled {
		logger.Info("continuous profiling enabled", "server_addr", cfg.Profiling.ServerAddr)
	}

	if configSource := getConfigSource(GetConfigFile()); configSource != "defaults" {
		if err := config.WatchLogLevel(configSource, func(level string) {
			logger.SetLevel(level)
			logger.Info("logging level reloaded from config file", "level", level)
		}); err != nil {
			logger.Warn("failed to watch config file for log level changes", "error", err)
		}
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "listen_addr", cfg.Metrics.ListenAddr, "path", cfg.Metrics.Path)
	} else {
		logger.Info("metrics disabled")
	}

	repo, err := newRepository(cfg.Repository)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	store, err := newBlockStore(ctx, cfg.BlockStore)
	if err != nil {
		return fmt.Errorf("failed to initialize block store: %w", err)
	}

	notifier, code := mailbox.NewNotifier()
	if code.IsError() {
		return fmt.Errorf("failed to create mailbox notifier: %s", code)
	}
	mb := mailbox.New(cfg.Mailbox.InboundCapacity, notifier)
	defer mb.Stop()

	registry := adminapi.NewRegistry()
	dispatcher := server.New(repo, store, registry)

	reactorCfg := reactor.Config{
		ListenAddr:    cfg.Reactor.ListenAddr,
		MaxMessageLen: int(cfg.Reactor.MaxMessageLength.Int64()),
		IdleTimeout:   cfg.Reactor.IdleTimeout,
	}
	rct := reactor.New(reactorCfg, mb, func(connID uint64, body []byte) bool {
		return mb.TryPushToServer(mailbox.Inbound{ConnID: connID, Body: body})
	})
	rct.SetConnOpenHandler(func(connID uint64, remoteAddr string) {
		mb.AddClientQueue(connID)
		registry.OnConnOpen(connID, remoteAddr)
	})
	rct.SetConnClosedHandler(func(connID uint64, reason string) {
		mb.RemoveClientQueue(connID)
		registry.OnConnClosed(connID, reason)
	})

	pool := workerpool.New(cfg.WorkerPool.Workers, mb, dispatcher.Handle)

	var adminServer *adminapi.Server
	if cfg.AdminAPI.Enabled {
		adminServer, err = adminapi.NewServer(adminapi.Config{
			ListenAddr: cfg.AdminAPI.ListenAddr,
			JWTSecret:  cfg.AdminAPI.JWTSecret,
		}, registry, mb)
		if err != nil {
			return fmt.Errorf("failed to initialize admin API: %w", err)
		}
	} else {
		logger.Info("admin API disabled")
	}

	serverErrs := make(chan error, 3)

	go func() {
		if code := rct.Run(ctx); code.IsError() {
			serverErrs <- fmt.Errorf("reactor: %s", code)
			return
		}
		serverErrs <- nil
	}()

	pool.Start(ctx)
	logger.Info("worker pool started", "workers", cfg.WorkerPool.Workers)

	if adminServer != nil {
		go func() {
			if err := adminServer.Start(ctx); err != nil {
				serverErrs <- fmt.Errorf("admin API: %w", err)
				return
			}
			serverErrs <- nil
		}()
	}

	var metricsHTTPServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
		metricsHTTPServer = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			if err := metricsHTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErrs <- fmt.Errorf("metrics server: %w", err)
				return
			}
			serverErrs <- nil
		}()
	}

	logger.Info("danejoe-server is running", "listen_addr", cfg.Reactor.ListenAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-serverErrs:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	cancel()
	rct.Stop()
	if metricsHTTPServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		_ = metricsHTTPServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	pool.Stop()

	processed, failed := pool.Stats()
	logger.Info("danejoe-server stopped", "requests_processed", processed, "requests_failed", failed)
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

func newRepository(cfg config.RepositoryConfig) (repository.Repository, error) {
	switch cfg.Backend {
	case "badger":
		return repository.NewBadgerRepository(cfg.BadgerDir)
	default:
		return repository.NewMemoryRepository(), nil
	}
}

func newBlockStore(ctx context.Context, cfg config.BlockStoreConfig) (blockstore.Store, error) {
	var blockMetrics metrics.BlockStoreMetrics
	if metrics.IsEnabled() {
		blockMetrics = metrics.NewBlockStoreMetrics()
	}

	switch cfg.Backend {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return blockstore.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix, blockMetrics), nil
	default:
		return blockstore.NewDiskStore(cfg.Disk.RootDir, blockMetrics), nil
	}
}
