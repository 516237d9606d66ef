package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Runtime.MaxFlushPasses != reactive.DefaultMaxFlushPasses {
		t.Errorf("Runtime.MaxFlushPasses = %d, want %d", cfg.Runtime.MaxFlushPasses, reactive.DefaultMaxFlushPasses)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, DefaultAddr)
	}
	if cfg.Serve.Path != DefaultPath {
		t.Errorf("Serve.Path = %q, want %q", cfg.Serve.Path, DefaultPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !stderrors.Is(err, errors.New(errors.CodeConfigNotFound)) {
		t.Errorf("Load() error = %v, want C001", err)
	}

	configJSON := `{
  "log": {"level": "debug", "format": "json"},
  "runtime": {"maxFlushPasses": 50},
  "metrics": {"enabled": false},
  "serve": {"addr": "127.0.0.1:9000"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Runtime.MaxFlushPasses != 50 {
		t.Errorf("Runtime.MaxFlushPasses = %d, want 50", cfg.Runtime.MaxFlushPasses)
	}
	if cfg.Runtime.MemoCacheSize != reactive.DefaultMemoCacheSize {
		t.Errorf("Runtime.MemoCacheSize = %d, want default", cfg.Runtime.MemoCacheSize)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Serve.Path != DefaultPath {
		t.Errorf("Serve.Path = %q, want default", cfg.Serve.Path)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"syntax", `{"log": `},
		{"level", `{"log": {"level": "loud"}}`},
		{"format", `{"log": {"format": "xml"}}`},
		{"passes", `{"runtime": {"maxFlushPasses": -1}}`},
		{"path", `{"serve": {"path": "ws"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(tt.json), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !stderrors.Is(err, errors.New(errors.CodeConfigInvalid)) {
				t.Errorf("LoadFile() error = %v, want C002", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("Serve.Addr = %q, want default", cfg.Serve.Addr)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := New()
	cfg.Serve.Addr = ":7000"
	cfg.Tracing.Enabled = true

	if err := cfg.SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if !Exists(tmpDir) {
		t.Fatal("Exists() = false after SaveTo")
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Serve.Addr != ":7000" || !loaded.Tracing.Enabled {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected json output, got %s", out)
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := New()
	cfg.Runtime.MaxFlushPasses = 3

	var reported []error
	opts := append(cfg.RuntimeOptions(cfg.Logger(&bytes.Buffer{})), reactive.WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))
	rt := reactive.NewRuntime(opts...)

	// A self-feeding write loop trips the flush limit after three passes.
	s := reactive.NewState(rt.Root(), 0)
	s.Subscribe(func(n int) { s.Set(n + 1) })
	s.Set(1)

	found := false
	for _, err := range reported {
		if stderrors.Is(err, reactive.ErrFlushLimit) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ErrFlushLimit, got %v", reported)
	}
}
