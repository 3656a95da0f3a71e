package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/trip-planner/internal/planner"
)

func writeItems(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write items: %v", err)
	}
	return path
}

func testLogger(t *testing.T) func(string) (*zap.Logger, error) {
	return func(string) (*zap.Logger, error) {
		return zaptest.NewLogger(t), nil
	}
}

func runArgs(t *testing.T, args ...string) []string {
	t.Helper()
	// Keep a developer's .env out of the picture.
	return append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
}

func TestRunWritesReport(t *testing.T) {
	path := writeItems(t, "A,2\nB,3\nC,5\nD,7\n")

	var out bytes.Buffer
	err := run(context.Background(), runArgs(t, "--data", path, "--capacity", "10"), &out, testLogger(t))
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"4 items, capacity 10",
		"greedy: 2 trips",
		"exhaustive: 2 trips",
		"  trip 1: D, B",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRunReportsUnplaceableItem(t *testing.T) {
	path := writeItems(t, "Heavy,12\nLight,1\n")

	var out bytes.Buffer
	err := run(context.Background(), runArgs(t, "--data", path, "--capacity", "10"), &out, testLogger(t))
	if !errors.Is(err, planner.ErrUnplaceableItem) {
		t.Fatalf("expected ErrUnplaceableItem, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no report on failure, got %q", out.String())
	}
}

func TestRunHonoursPartitionLimit(t *testing.T) {
	path := writeItems(t, "A,6\nB,6\nC,6\nD,6\nE,6\nF,6\nG,6\n")

	var out bytes.Buffer
	err := run(context.Background(), runArgs(t, "--data", path, "--capacity", "10", "--max-partitions", "10"), &out, testLogger(t))
	if !errors.Is(err, planner.ErrSearchBudgetExceeded) {
		t.Fatalf("expected ErrSearchBudgetExceeded, got %v", err)
	}
}

func TestRunMissingDataFile(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), runArgs(t, "--data", filepath.Join(t.TempDir(), "absent.txt")), &out, testLogger(t))
	if err == nil {
		t.Fatalf("expected error for missing data file")
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--bogus"}, &out, testLogger(t)); err == nil {
		t.Fatalf("expected flag parse error")
	}
}

func TestRunPropagatesLoggerError(t *testing.T) {
	path := writeItems(t, "A,1\n")
	failing := func(string) (*zap.Logger, error) {
		return nil, errors.New("boom")
	}

	var out bytes.Buffer
	err := run(context.Background(), runArgs(t, "--data", path), &out, failing)
	if err == nil || !strings.Contains(err.Error(), "initialize logger") {
		t.Fatalf("expected logger error, got %v", err)
	}
}
