package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/go-breakdown/internal/api"
	"github.com/ahrav/go-breakdown/internal/breakdown"
	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/internal/domain"
	"github.com/ahrav/go-breakdown/internal/logging"
	"github.com/ahrav/go-breakdown/internal/sink"
	"github.com/ahrav/go-breakdown/internal/source"
	"github.com/ahrav/go-breakdown/internal/worker"
	"github.com/ahrav/go-breakdown/internal/workflow"
)

// setup loads configuration with flag overrides and builds the logger.
func setup(common commonFlags) (*configuration.Config, *slog.Logger, error) {
	cfg, err := configuration.Load(common.config)
	if err != nil {
		return nil, nil, err
	}
	if common.input != "" {
		cfg.Source.Path = common.input
	}
	if common.hasHeader {
		cfg.Source.HasHeader = true
	}
	if common.scale != 0 {
		cfg.Scale = common.scale
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// buildRequest reads the input table and resolves features and rules.
func buildRequest(cfg *configuration.Config) (domain.BreakdownRequest, error) {
	if cfg.Source.Path == "" {
		return domain.BreakdownRequest{}, errors.New("no input table: set -input or source.path")
	}
	table, err := source.ReadFile(cfg.Source.Path, source.Options{HasHeader: cfg.Source.HasHeader})
	if err != nil {
		return domain.BreakdownRequest{}, err
	}

	features := cfg.ResolveFeatures(source.Features(table))
	return domain.BreakdownRequest{
		Table:    *table,
		Features: features,
		Rules:    cfg.ResolveRules(features),
		Scale:    cfg.Scale,
	}, nil
}

// buildSinks opens every configured sink. The close function releases them.
func buildSinks(cfg *configuration.Config) (sink.Multi, func(), error) {
	var sinks sink.Multi
	closeFn := func() {}

	if cfg.Sinks.ConsoleRows > 0 {
		sinks = append(sinks, sink.NewConsole(os.Stdout, cfg.Sinks.ConsoleRows))
	}
	if cfg.Sinks.CSVPath != "" {
		sinks = append(sinks, sink.NewCSVFile(cfg.Sinks.CSVPath))
	}
	if cfg.Sinks.SQLitePath != "" {
		db, err := sink.OpenSQLite(cfg.Sinks.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, db)
		closeFn = func() { db.Close() }
	}
	return sinks, closeFn, nil
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	csvPath := fs.String("csv", "", "Write results to this CSV file")
	sqlitePath := fs.String("sqlite", "", "Append results to this SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(common)
	if err != nil {
		return err
	}
	if *csvPath != "" {
		cfg.Sinks.CSVPath = *csvPath
	}
	if *sqlitePath != "" {
		cfg.Sinks.SQLitePath = *sqlitePath
	}

	req, err := buildRequest(cfg)
	if err != nil {
		return err
	}

	assembler := breakdown.NewAssembler(breakdown.WithLogger(logger), breakdown.WithConcurrency(cfg.Concurrency))
	result, err := assembler.Assemble(ctx, req)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks()
	return sinks.Write(ctx, result.Rows)
}

func serveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "Listen address (default from configuration)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(common)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	assembler := breakdown.NewAssembler(breakdown.WithLogger(logger), breakdown.WithConcurrency(cfg.Concurrency))
	server := api.NewServer(assembler, logger, cfg.HTTP, api.Defaults{
		Scale:       cfg.Scale,
		Rules:       cfg.Rules,
		DefaultRule: cfg.DefaultRule,
	})
	return server.Run(ctx, cfg.HTTP.Addr)
}

func submitCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(common)
	if err != nil {
		return err
	}
	req, err := buildRequest(cfg)
	if err != nil {
		return err
	}

	c, err := worker.InitializeClient(cfg.Temporal, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       "breakdown-" + uuid.NewString(),
		TaskQueue:                cfg.Temporal.TaskQueue,
		WorkflowExecutionTimeout: cfg.Temporal.WorkflowTimeout,
	}, workflow.BreakdownWorkflow, req)
	if err != nil {
		return fmt.Errorf("start breakdown workflow: %w", err)
	}
	logger.Info("Breakdown workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var result domain.BreakdownResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("breakdown workflow %s: %w", run.GetID(), err)
	}

	sinks, closeSinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks()
	return sinks.Write(ctx, result.Rows)
}
