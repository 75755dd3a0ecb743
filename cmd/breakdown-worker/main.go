// Command breakdown-worker runs a Temporal worker executing the breakdown
// workflow and its activities.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/internal/logging"
	"github.com/ahrav/go-breakdown/internal/worker"
)

var configPath = flag.String("config", "", "Path to a JSON configuration file")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configuration.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Observability.LogLevel, cfg.Observability.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := worker.InitializeEventSink(ctx, cfg.Events)
	if err != nil {
		return err
	}
	defer closeSink()

	c, err := worker.InitializeClient(cfg.Temporal, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	w := sdkworker.New(c, cfg.Temporal.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, sink, cfg.Events.TenantID)

	logger.Info("Starting breakdown worker",
		"task_queue", cfg.Temporal.TaskQueue,
		"namespace", cfg.Temporal.Namespace,
		"events", cfg.Events.Enabled)

	interrupt := make(chan any)
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	return w.Run(interrupt)
}
