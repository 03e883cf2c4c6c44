package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"moodflow/internal/config"
	applog "moodflow/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	const key = "MOODFLOW_CLI_TEST_KEY"
	t.Setenv(key, "")
	os.Unsetenv(key)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	LoadEnvFile(path)
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s = %q, want from-file", key, got)
	}

	t.Setenv(key, "from-env")
	LoadEnvFile(path)
	if got := os.Getenv(key); got != "from-env" {
		t.Fatalf("existing variables must win, got %q", got)
	}

	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "loud", LogFormat: "json"}, applog.ComponentWorker, &buf)

	if !strings.Contains(buf.String(), `"level":"WARN"`) || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("expected a warning about the bad level, got %s", buf.String())
	}
	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug should be filtered at the fallback info level")
	}
	if logger.Component() != applog.ComponentWorker {
		t.Errorf("component = %q", logger.Component())
	}
}

func TestBootstrap(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_FORMAT", "text")
	var buf bytes.Buffer

	cfg, logger, err := Bootstrap(applog.ComponentCLI, &buf)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if cfg.DataBackend != config.BackendMemory || logger == nil {
		t.Fatalf("unexpected bootstrap result %+v", cfg)
	}

	t.Setenv("DATA_BACKEND", "sheets")
	if _, _, err := Bootstrap(applog.ComponentCLI, &buf); err == nil {
		t.Fatal("expected validation error for an unknown backend")
	}
}

func TestInitBackend_Memory(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{DataBackend: config.BackendMemory}
	res, err := InitBackend(context.Background(), applog.New(applog.Config{Output: &buf}), cfg)
	if err != nil {
		t.Fatalf("InitBackend: %v", err)
	}
	defer res.Cleanup()
	if res.Service == nil {
		t.Fatal("expected a mood service")
	}
}

func TestGracefulShutdown_Signal(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf})

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(logger, time.Second, func(context.Context) { close(cleaned) })

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	WaitForShutdown(ctx, done)
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run")
	}
}
