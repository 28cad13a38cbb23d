// Package telemetry wires the optional continuous-profiling hook.
package telemetry

import (
	"fmt"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig mirrors pkg/config.ProfilingConfig, kept separate so
// this package doesn't import pkg/config.
type ProfilingConfig struct {
	Enabled    bool
	ServerAddr string
	AppName    string
}

// StartProfiling starts the pyroscope profiler when cfg.Enabled is
// true. The returned shutdown func is always safe to call, even when
// profiling was never started.
func StartProfiling(cfg ProfilingConfig) (shutdown func() error, err error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.AppName,
		ServerAddress:   cfg.ServerAddr,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	return profiler.Stop, nil
}
