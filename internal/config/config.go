package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = "8080"
	defaultCapacity       = 10
	defaultMaxPartitions  = 50_000_000
	defaultEnvFile        = ".env"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	DataFile             string
	Capacity             int
	MaxPartitions        uint64
	SearchTimeout        time.Duration
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure. Pointers
// distinguish an absent key from an explicit zero value.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	DataFile             string        `yaml:"data_file"`
	Capacity             *int          `yaml:"capacity"`
	MaxPartitions        *uint64       `yaml:"max_partitions"`
	SearchTimeout        string        `yaml:"search_timeout"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	DataFile       *string
	Capacity       *int
	MaxPartitions  *uint64
	SearchTimeout  *time.Duration
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults.
// Environment variables may be supplied through a dotenv file; variables
// already present in the process environment win over the file.
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	envFile := defaultEnvFile
	if overrides != nil && overrides.EnvFile != "" {
		envFile = overrides.EnvFile
	}
	env, err := newEnvSource(envFile)
	if err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	if err := applyEnvConfig(&cfg, env); err != nil {
		return Config{}, err
	}

	// Load from YAML file if specified (overrides environment)
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Capacity:             defaultCapacity,
		MaxPartitions:        defaultMaxPartitions,
		SearchTimeout:        30 * time.Second,
		LogLevel:             "info",
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         45 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// envSource resolves variables from the process environment first and a
// dotenv file second.
type envSource struct {
	file map[string]string
}

func newEnvSource(path string) (envSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return envSource{}, nil
		}
		return envSource{}, err
	}
	return envSource{file: values}, nil
}

func (e envSource) get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(e.file[key])
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.DataFile != "" {
		cfg.DataFile = yamlCfg.DataFile
	}
	if yamlCfg.Capacity != nil {
		cfg.Capacity = *yamlCfg.Capacity
	}
	if yamlCfg.MaxPartitions != nil {
		cfg.MaxPartitions = *yamlCfg.MaxPartitions
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{yamlCfg.SearchTimeout, &cfg.SearchTimeout, "search_timeout"},
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config, env envSource) error {
	if port := env.get("PORT"); port != "" {
		cfg.Port = port
	}

	if dataFile := env.get("DATA_FILE"); dataFile != "" {
		cfg.DataFile = dataFile
	}

	if raw := env.get("CAPACITY"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("CAPACITY: invalid integer %q", raw)
		}
		cfg.Capacity = value
	}

	if raw := env.get("MAX_PARTITIONS"); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_PARTITIONS: invalid integer %q", raw)
		}
		cfg.MaxPartitions = value
	}

	if raw := env.get("SEARCH_TIMEOUT"); raw != "" {
		value, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("SEARCH_TIMEOUT: %w", err)
		}
		cfg.SearchTimeout = value
	}

	if level := env.get("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if raw := env.get("ENABLE_REQUEST_LOGGING"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.EnableRequestLogging = value
		}
	}

	if rps := env.get("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env.get("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.DataFile != nil && *overrides.DataFile != "" {
		cfg.DataFile = *overrides.DataFile
	}
	if overrides.Capacity != nil {
		cfg.Capacity = *overrides.Capacity
	}
	if overrides.MaxPartitions != nil {
		cfg.MaxPartitions = *overrides.MaxPartitions
	}
	if overrides.SearchTimeout != nil && *overrides.SearchTimeout > 0 {
		cfg.SearchTimeout = *overrides.SearchTimeout
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0, got %d", cfg.Capacity)
	}
	if cfg.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
