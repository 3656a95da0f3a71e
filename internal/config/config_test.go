package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate clears every variable Load reads and points the dotenv lookup at
// an empty directory so the developer's environment cannot leak in.
func isolate(t *testing.T) *CLIOverrides {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATA_FILE", "CAPACITY", "MAX_PARTITIONS", "SEARCH_TIMEOUT",
		"LOG_LEVEL", "ENABLE_REQUEST_LOGGING", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return &CLIOverrides{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(isolate(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Capacity != defaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", defaultCapacity, cfg.Capacity)
	}
	if cfg.MaxPartitions != defaultMaxPartitions {
		t.Fatalf("unexpected max partitions: %d", cfg.MaxPartitions)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging enabled by default")
	}
}

func TestLoadNilOverrides(t *testing.T) {
	isolate(t)

	if _, err := Load(nil); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestLoadEnvironment(t *testing.T) {
	overrides := isolate(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CAPACITY", " 100 ")
	t.Setenv("DATA_FILE", "data/items.txt")
	t.Setenv("MAX_PARTITIONS", "1000")
	t.Setenv("SEARCH_TIMEOUT", "2s")
	t.Setenv("ENABLE_REQUEST_LOGGING", "false")

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" || cfg.Capacity != 100 || cfg.DataFile != "data/items.txt" {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if cfg.MaxPartitions != 1000 || cfg.SearchTimeout != 2*time.Second {
		t.Fatalf("search budget not applied: %+v", cfg)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled")
	}
}

func TestLoadInvalidEnvironment(t *testing.T) {
	overrides := isolate(t)
	t.Setenv("CAPACITY", "ten")

	if _, err := Load(overrides); err == nil {
		t.Fatalf("expected error for non-integer capacity")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	overrides := isolate(t)
	overrides.EnvFile = writeFile(t, ".env", "CAPACITY=42\nPORT=7000\n")
	t.Setenv("PORT", "7100")

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Capacity != 42 {
		t.Fatalf("expected capacity from dotenv file, got %d", cfg.Capacity)
	}
	if cfg.Port != "7100" {
		t.Fatalf("expected process environment to win over dotenv, got %s", cfg.Port)
	}
}

func TestLoadYAMLOverridesEnvironment(t *testing.T) {
	overrides := isolate(t)
	t.Setenv("CAPACITY", "50")
	overrides.ConfigFile = writeFile(t, "config.yaml", `
port: "8181"
capacity: 20
data_file: cows.txt
max_partitions: 5000
search_timeout: 3s
enable_request_logging: false
rate_limit:
  rps: 0
`)

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Capacity != 20 || cfg.Port != "8181" || cfg.DataFile != "cows.txt" {
		t.Fatalf("YAML not applied: %+v", cfg)
	}
	if cfg.MaxPartitions != 5000 || cfg.SearchTimeout != 3*time.Second {
		t.Fatalf("YAML search budget not applied: %+v", cfg)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled by YAML")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadInvalidYAMLDuration(t *testing.T) {
	overrides := isolate(t)
	overrides.ConfigFile = writeFile(t, "config.yaml", "search_timeout: soon\n")

	if _, err := Load(overrides); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadCLIOverridesEverything(t *testing.T) {
	overrides := isolate(t)
	t.Setenv("CAPACITY", "50")
	overrides.ConfigFile = writeFile(t, "config.yaml", "capacity: 20\n")

	capacity := 7
	timeout := 500 * time.Millisecond
	level := "debug"
	overrides.Capacity = &capacity
	overrides.SearchTimeout = &timeout
	overrides.LogLevel = &level

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Capacity != 7 || cfg.SearchTimeout != timeout || cfg.LogLevel != "debug" {
		t.Fatalf("CLI overrides not applied: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("negative capacity", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Capacity = -1
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for negative capacity")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.LogLevel = "loud"
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for unknown log level")
		}
	})

	t.Run("zero search timeout", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.SearchTimeout = 0
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for zero search timeout")
		}
	})
}
