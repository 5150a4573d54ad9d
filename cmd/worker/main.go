// Package main runs a Temporal worker hosting LinkageWorkflow and its activities.
package main

import (
	"log/slog"
	"os"

	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-corroborate/internal/configuration"
	"github.com/ahrav/go-corroborate/internal/worker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "worker")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := configuration.FromEnv(".env")
	if err != nil {
		return err
	}

	sink, closer, err := worker.InitializeEventSink(cfg.Kafka)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close event sink", "error", err)
		}
	}()

	c, err := worker.Dial(cfg.Temporal, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("worker starting",
		"host_port", cfg.Temporal.HostPort,
		"namespace", cfg.Temporal.Namespace,
		"task_queue", cfg.Temporal.TaskQueue,
		"kafka_events", cfg.Kafka.Enabled())

	return worker.Run(c, cfg, sink, sdkworker.InterruptCh())
}
