package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/render"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configDir string
	logLevel  string
}

// load reads reactor.json from the config directory, or the defaults when
// there is none, and builds the logger it describes.
func (g *globals) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(g.configDir)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return cfg, cfg.Logger(os.Stderr), nil
}

func main() {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Reactive UI composition engine",
		Long: `Reactor drives a host scene graph from reactive state.

Components read signals and return virtual element trees; the
reconciler turns every change into the minimal set of host
operations. The CLI runs the bundled todo demo on an in-memory
host or serves it to websocket peers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.configDir, "config", "c", ".", "Directory containing "+config.ConfigFileName)
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		demoCmd(g),
		serveCmd(g),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		stop()
		os.Exit(1)
	}
}

// newRuntime builds a runtime configured by the runtime and log sections.
func newRuntime(cfg *config.Config, logger *slog.Logger) *reactive.Runtime {
	return reactive.NewRuntime(cfg.RuntimeOptions(logger)...)
}

// rendererOptions maps the metrics and tracing sections to renderer options.
// m is nil when metrics are disabled or not collected by the command.
func rendererOptions(logger *slog.Logger, m *render.Metrics, tracing bool) []render.Option {
	opts := []render.Option{render.WithLogger(logger)}
	if m != nil {
		opts = append(opts, render.WithSharedMetrics(m))
	}
	return append(opts, render.WithTracer(tracerProvider(tracing)))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
