package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactor.json"

	// DefaultAddr is the default listen address of reactor serve.
	DefaultAddr = ":8080"

	// DefaultPath is the default websocket endpoint.
	DefaultPath = "/ws"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "reactor"
)

// Config represents the complete reactor.json configuration.
type Config struct {
	// Log controls the CLI logger.
	Log LogConfig `json:"log"`

	// Runtime contains reactive runtime limits.
	Runtime RuntimeConfig `json:"runtime"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing"`

	// Serve contains reactor serve settings.
	Serve ServeConfig `json:"serve"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// RuntimeConfig contains reactive runtime limits.
type RuntimeConfig struct {
	// MaxFlushPasses bounds the passes of a single flush.
	MaxFlushPasses int `json:"maxFlushPasses,omitempty"`

	// MemoCacheSize is the per-computed memo cache capacity.
	MemoCacheSize int `json:"memoCacheSize,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// ServeConfig contains reactor serve settings.
type ServeConfig struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty"`

	// Path is the websocket endpoint.
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Runtime: RuntimeConfig{
			MaxFlushPasses: reactive.DefaultMaxFlushPasses,
			MemoCacheSize:  reactive.DefaultMemoCacheSize,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Serve: ServeConfig{
			Addr: DefaultAddr,
			Path: DefaultPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactor.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault is Load, falling back to New when dir has no reactor.json.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if stderrors.Is(err, errors.New(errors.CodeConfigNotFound)) {
		return New(), nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without one to use the defaults")
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Runtime.MaxFlushPasses == 0 {
		c.Runtime.MaxFlushPasses = reactive.DefaultMaxFlushPasses
	}
	if c.Runtime.MemoCacheSize == 0 {
		c.Runtime.MemoCacheSize = reactive.DefaultMemoCacheSize
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
	if c.Serve.Path == "" {
		c.Serve.Path = DefaultPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.level must be one of debug, info, warn, error").
			WithField("level", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.format must be text or json").
			WithField("format", c.Log.Format)
	}
	if c.Runtime.MaxFlushPasses < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("runtime.maxFlushPasses must be positive")
	}
	if c.Runtime.MemoCacheSize < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("runtime.memoCacheSize must be positive")
	}
	if !strings.HasPrefix(c.Serve.Path, "/") {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("serve.path must start with /").
			WithField("path", c.Serve.Path)
	}
	return nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RuntimeOptions returns the reactive runtime options for this config.
func (c *Config) RuntimeOptions(logger *slog.Logger) []reactive.Option {
	return []reactive.Option{
		reactive.WithLogger(logger),
		reactive.WithMaxFlushPasses(c.Runtime.MaxFlushPasses),
		reactive.WithMemoCacheSize(c.Runtime.MemoCacheSize),
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
