// Package main links a file of normalized incident records into buckets of
// likely duplicates and prints the result as JSON.
//
// By default the engine runs in-process. With -remote the request is
// submitted to LinkageWorkflow on the configured Temporal task queue.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/go-corroborate/internal/configuration"
	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/gateway"
	"github.com/ahrav/go-corroborate/internal/linkage"
	"github.com/ahrav/go-corroborate/internal/worker"
	"github.com/ahrav/go-corroborate/internal/workflow"
)

func main() {
	recordsPath := flag.String("records", "", "Path to the records JSON file (required)")
	configPath := flag.String("config", "", "Path to a JSON configuration file")
	threshold := flag.Float64("threshold", -1, "Minimum pairwise similarity for an edge (default from config)")
	minBucket := flag.Int("min-bucket", -1, "Smallest bucket size to report (default from config)")
	workers := flag.Int("workers", 0, "Parallel scoring workers (0 = GOMAXPROCS)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall deadline")
	remote := flag.Bool("remote", false, "Run through the Temporal workflow instead of in-process")
	key := flag.String("key", "", "Client idempotency key for -remote (default: random)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "corroborate")
	slog.SetDefault(logger)

	if *recordsPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -records is required.")
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		recordsPath: *recordsPath,
		configPath:  *configPath,
		threshold:   *threshold,
		minBucket:   *minBucket,
		workers:     *workers,
		timeout:     *timeout,
		remote:      *remote,
		key:         *key,
	}
	if err := run(opts, logger); err != nil {
		logger.Error("linkage failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	recordsPath string
	configPath  string
	threshold   float64
	minBucket   int
	workers     int
	timeout     time.Duration
	remote      bool
	key         string
}

func run(opts options, logger *slog.Logger) error {
	cfg, err := configuration.Load(opts.configPath, ".env")
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if opts.threshold >= 0 {
		cfg.Linkage.Threshold = opts.threshold
	}
	if opts.minBucket >= 0 {
		cfg.Linkage.MinBucketSize = opts.minBucket
	}
	if opts.workers > 0 {
		cfg.Linkage.Workers = opts.workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	records, err := gateway.NewJSONRecordReader().ReadRecords(ctx, opts.recordsPath)
	if err != nil {
		return err
	}

	var result *domain.LinkageResult
	if opts.remote {
		result, err = runRemote(ctx, cfg, records, opts.key, logger)
	} else {
		result, err = runLocal(ctx, cfg, records, logger)
	}
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(output))
	return nil
}


func runLocal(
	ctx context.Context,
	cfg *configuration.Config,
	records []domain.Record,
	logger *slog.Logger,
) (*domain.LinkageResult, error) {
	engine, err := linkage.New(cfg.Linkage, linkage.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return engine.Link(ctx, records)
}

func runRemote(
	ctx context.Context,
	cfg *configuration.Config,
	records []domain.Record,
	key string,
	logger *slog.Logger,
) (*domain.LinkageResult, error) {
	if key == "" {
		key = uuid.NewString()
	}
	req := domain.LinkageRequest{Records: records, Config: cfg.Linkage, ClientIdempotencyKey: key}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := worker.Dial(cfg.Temporal, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	we, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "linkage-" + key,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflow.LinkageWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start linkage workflow: %w", err)
	}
	logger.Info("workflow started", "workflow_id", we.GetID(), "run_id", we.GetRunID())

	var result domain.LinkageResult
	if err := we.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("linkage workflow failed: %w", err)
	}
	return &result, nil
}
