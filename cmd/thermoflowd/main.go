// thermoflowd runs the control loop: a sensor sampled at a fixed period,
// transformed through the configured stage chain and driven into an
// actuator, with an optional monitoring broadcast for observers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/config"
	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/input/execsource"
	"github.com/c360/thermoflow/input/filesensor"
	"github.com/c360/thermoflow/metric"
	"github.com/c360/thermoflow/monitor"
	"github.com/c360/thermoflow/natsclient"
	"github.com/c360/thermoflow/output/external"
	"github.com/c360/thermoflow/output/filesink"
	"github.com/c360/thermoflow/output/pwm"
	"github.com/c360/thermoflow/pipeline"
	"github.com/c360/thermoflow/stage"
)

const appName = "thermoflowd"

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cliConfig := parseFlags()

	if cliConfig.ShowVersion {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		return
	}
	if cliConfig.ShowHelp {
		printDetailedHelp()
		return
	}
	if err := validateFlags(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := setupLogger(cliConfig.LogLevel, cliConfig.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.LoadOrDefault(cliConfig.ConfigPath)
	if err != nil {
		slog.Error("Configuration invalid", "path", cliConfig.ConfigPath, "error", err)
		os.Exit(1)
	}
	if cliConfig.Validate {
		slog.Info("Configuration is valid",
			"input", cfg.Input, "output", cfg.Output, "stages", len(cfg.Stages))
		return
	}

	slog.Info("Starting thermoflow",
		"input", cfg.Input,
		"output", cfg.Output,
		"stages", len(cfg.Stages),
		"sample_period", cfg.SamplePeriod(),
		"monitored", cfg.Monitor.Enabled)

	if err := run(cfg, cliConfig.ShutdownTimeout); err != nil {
		slog.Error("Daemon failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

func run(cfg *config.Config, shutdownTimeout time.Duration) error {
	deps := component.Dependencies{Logger: slog.Default()}

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		deps.MetricsRegistry = metric.NewMetricsRegistry()
		metricsServer = metric.NewServer(deps.MetricsRegistry, cfg.Metrics.Address, slog.Default())
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	// Monitoring side: hub plus whichever observer surfaces are configured.
	var (
		hub        *monitor.Hub
		acceptor   *monitor.Acceptor
		wsServer   *monitor.WSServer
		natsConn   *natsclient.Client
		emitterFor pipeline.EmitterFunc
	)
	if cfg.Monitor.Enabled {
		hub = monitor.NewHub(deps)
		if err := hub.Start(signalCtx); err != nil {
			return err
		}
		defer stopQuietly("hub", shutdownTimeout, hub.Stop)
		emitterFor = func(index int) stage.Emitter { return hub.EmitterFor(index) }

		if cfg.Monitor.Listen != nil {
			var err error
			acceptor, err = monitor.NewAcceptor(*cfg.Monitor.Listen, hub, deps)
			if err != nil {
				return err
			}
			if err := acceptor.Initialize(); err != nil {
				return err
			}
			if err := acceptor.Start(signalCtx); err != nil {
				return err
			}
			defer stopQuietly("acceptor", shutdownTimeout, acceptor.Stop)
		}

		if cfg.Monitor.WebSocket != nil {
			var err error
			wsServer, err = monitor.NewWSServer(*cfg.Monitor.WebSocket, hub, deps)
			if err != nil {
				return err
			}
			if err := wsServer.Start(signalCtx); err != nil {
				return err
			}
			defer stopQuietly("websocket", shutdownTimeout, wsServer.Stop)
		}

		if cfg.Monitor.NATS != nil {
			var err error
			natsConn, err = natsclient.NewClient(cfg.Monitor.NATS.URL,
				natsclient.WithName(appName),
				natsclient.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			if err := natsConn.Connect(signalCtx); err != nil {
				return err
			}
			defer func() { _ = natsConn.Close() }()

			relay, err := monitor.NewRelay(*cfg.Monitor.NATS, natsConn, deps)
			if err != nil {
				return err
			}
			hub.Register(relay)
		}
	}

	if metricsServer != nil {
		metricsErr := metricsServer.Start()
		defer stopQuietly("metrics", shutdownTimeout, metricsServer.Stop)
		go func() {
			if err, ok := <-metricsErr; ok && err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Control side: source, chain, sink, scheduler.
	registry := component.NewRegistry()
	if err := registerComponents(registry); err != nil {
		return err
	}

	source, err := registry.CreateSource(cfg.Input, deps)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	sink, err := registry.CreateSink(cfg.Output, deps)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	chain, err := pipeline.Assemble(source, cfg.Stages, emitterFor)
	if err != nil {
		return err
	}

	scheduler, err := pipeline.NewScheduler(
		pipeline.Config{SamplePeriod: cfg.SamplePeriod()}, chain, sink, deps)
	if err != nil {
		return err
	}
	if err := scheduler.Start(signalCtx); err != nil {
		return err
	}

	slog.Info("Control loop running")

	select {
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
		if err := scheduler.Stop(shutdownTimeout); err != nil {
			slog.Warn("Scheduler did not stop cleanly", "error", err)
		}
	case <-scheduler.Done():
		if err := scheduler.Err(); err != nil {
			return errors.Wrap(err, "thermoflowd", "run", "control loop terminated")
		}
		slog.Info("Control loop finished")
	}

	return nil
}

func registerComponents(registry *component.Registry) error {
	if err := filesensor.Register(registry); err != nil {
		return err
	}
	if err := execsource.Register(registry); err != nil {
		return err
	}
	if err := pwm.Register(registry); err != nil {
		return err
	}
	if err := external.Register(registry); err != nil {
		return err
	}
	return filesink.Register(registry)
}

func stopQuietly(name string, timeout time.Duration, stop func(time.Duration) error) {
	if err := stop(timeout); err != nil {
		slog.Warn("Component did not stop cleanly", "component", name, "error", err)
	}
}
