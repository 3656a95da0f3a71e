package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/trip-planner/internal/application"
	"github.com/eugenenazirov/trip-planner/internal/compare"
	"github.com/eugenenazirov/trip-planner/internal/config"
	"github.com/eugenenazirov/trip-planner/internal/logging"
)

const defaultDataFile = "data/items.txt"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logging.New); err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		os.Exit(1)
	}
}

// run loads the item file, plans it with the greedy and exhaustive solvers
// and writes the comparison report to stdout.
func run(ctx context.Context, args []string, stdout io.Writer, newLogger func(level string) (*zap.Logger, error)) error {
	kingpinApp := kingpin.New("trip-compare", "Compares the greedy and exhaustive trip planners on one item file")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file with environment defaults").String()
	dataFile := kingpinApp.Flag("data", "Item file with one name,weight record per line").String()
	var capacitySet, maxPartitionsSet bool
	capacity := kingpinApp.Flag("capacity", "Weight capacity of a trip").Short('c').IsSetByUser(&capacitySet).Int()
	maxPartitions := kingpinApp.Flag("max-partitions", "Partitions the exhaustive search may examine (0 for no limit)").IsSetByUser(&maxPartitionsSet).Uint64()
	timeout := kingpinApp.Flag("timeout", "Time limit for the whole comparison").Duration()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	if _, err := kingpinApp.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	overrides := &config.CLIOverrides{
		ConfigFile:    *configFile,
		EnvFile:       *envFile,
		DataFile:      dataFile,
		SearchTimeout: timeout,
		LogLevel:      logLevel,
	}
	if capacitySet {
		overrides.Capacity = capacity
	}
	if maxPartitionsSet {
		overrides.MaxPartitions = maxPartitions
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.DataFile == "" {
		cfg.DataFile = defaultDataFile
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	items, err := application.LoadItems(cfg.DataFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.SearchTimeout)
	defer cancel()

	harness := compare.New(logger, compare.WithSolvers(application.Solvers(cfg)...))
	report, err := harness.Run(ctx, items, cfg.Capacity)
	if err != nil {
		return err
	}

	return compare.WriteReport(stdout, report)
}
