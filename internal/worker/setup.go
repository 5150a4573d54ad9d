// Package worker provides initialization and setup utilities for Temporal workers.
// This package contains initialization logic that should be executed during
// worker startup, keeping activity packages focused on pure activity logic.
package worker

import (
	"fmt"
	"io"
	"log/slog"

	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-corroborate/internal/configuration"
	"github.com/ahrav/go-corroborate/pkg/events"
)

// InitializeEventSink creates the event sink described by cfg. Without
// brokers it returns a no-op sink. The returned closer is never nil.
func InitializeEventSink(cfg configuration.KafkaConfig) (events.EventSink, io.Closer, error) {
	if !cfg.Enabled() {
		return events.NewNoOpEventSink(), nopCloser{}, nil
	}
	sink, err := events.NewKafkaEventSink(events.KafkaConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize kafka sink: %w", err)
	}
	return sink, sink, nil
}

// Dial connects a Temporal client using the process configuration.
func Dial(cfg configuration.TemporalConfig, logger *slog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial temporal at %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

// Run registers everything on a worker for the configured task queue and
// blocks until interruptCh fires or the worker fails.
func Run(c client.Client, cfg *configuration.Config, sink events.EventSink, interruptCh <-chan any) error {
	w := sdkworker.New(c, cfg.Temporal.TaskQueue, sdkworker.Options{})
	RegisterAll(w, sink)
	if err := w.Run(interruptCh); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
