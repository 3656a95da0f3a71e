package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/trip-planner/internal/application"
	"github.com/eugenenazirov/trip-planner/internal/config"
	"github.com/eugenenazirov/trip-planner/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("trip-planner", "Trip Planner - splits weighted items into the fewest capacity-bounded trips")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file with environment defaults").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	dataFile := kingpinApp.Flag("data", "Item file with one name,weight record per line").String()
	var capacitySet, maxPartitionsSet bool
	capacity := kingpinApp.Flag("capacity", "Default weight capacity of a trip").IsSetByUser(&capacitySet).Int()
	maxPartitions := kingpinApp.Flag("max-partitions", "Partitions the exhaustive search may examine (0 for no limit)").IsSetByUser(&maxPartitionsSet).Uint64()
	searchTimeout := kingpinApp.Flag("search-timeout", "Time limit for a single plan or comparison").Duration()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile:    *configFile,
		EnvFile:       *envFile,
		Port:          port,
		DataFile:      dataFile,
		SearchTimeout: searchTimeout,
		LogLevel:      logLevel,
	}

	if capacitySet {
		overrides.Capacity = capacity
	}

	if maxPartitionsSet {
		overrides.MaxPartitions = maxPartitions
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
