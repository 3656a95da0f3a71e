package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/eugenenazirov/trip-planner/internal/api"
	"github.com/eugenenazirov/trip-planner/internal/compare"
	"github.com/eugenenazirov/trip-planner/internal/config"
	"github.com/eugenenazirov/trip-planner/internal/loader"
	"github.com/eugenenazirov/trip-planner/internal/metrics"
	"github.com/eugenenazirov/trip-planner/internal/planner"
	"github.com/eugenenazirov/trip-planner/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.ItemStore
	solvers  []planner.Solver
	harness  *compare.Harness
	handler  *api.Handler
	router   http.Handler
	registry *prometheus.Registry
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if cfg.DataFile != "" {
		items, err := LoadItems(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		if err := store.SetItems(items); err != nil {
			return nil, fmt.Errorf("failed to apply initial items: %w", err)
		}
		logger.Info("items loaded",
			zap.String("file", cfg.DataFile),
			zap.Int("count", len(items)),
			zap.Int("total_weight", items.TotalWeight()),
		)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	solvers := Solvers(cfg)
	harness := compare.New(logger, compare.WithSolvers(solvers...), compare.WithMetrics(m))
	handler, err := api.NewHandler(store, harness,
		api.WithSolvers(solvers...),
		api.WithDefaultCapacity(cfg.Capacity),
		api.WithSearchTimeout(cfg.SearchTimeout),
		api.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build handler: %w", err)
	}
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(apiRouter, metrics.Handler(registry))

	return &App{
		storage:  store,
		solvers:  solvers,
		harness:  harness,
		handler:  handler,
		router:   apiRouter,
		registry: registry,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// Solvers builds the greedy and exhaustive solvers, bounding the exhaustive
// search by the configured partition limit.
func Solvers(cfg config.Config) []planner.Solver {
	return []planner.Solver{
		planner.NewGreedy(),
		planner.NewExhaustive(planner.WithPartitionLimit(cfg.MaxPartitions)),
	}
}

// LoadItems reads the item file at path, resolving relative paths against the
// working directory and its parents.
func LoadItems(path string) (planner.Items, error) {
	resolved, err := resolveProjectPath(path)
	if err != nil {
		return nil, err
	}
	items, err := loader.Load(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return items, nil
}

// BuildRootHandler routes API requests and exposes the metrics endpoint.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("GET /metrics", metricsHandler)
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	if filepath.IsAbs(relative) {
		if _, err := os.Stat(relative); err != nil {
			return "", fmt.Errorf("unable to locate %s: %w", relative, err)
		}
		return relative, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
