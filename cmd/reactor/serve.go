package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/render"
)

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the todo demo to websocket peers",
		Long: `Serve the todo demo over websocket. Every connection gets its own
runtime and renderer driving the peer's scene graph with host
operation frames; the peer sends input events back.

Routes:
  <serve.path>   websocket endpoint (default /ws)
  /metrics       Prometheus metrics (when metrics.enabled)
  /healthz       liveness probe

Examples:
  reactor serve
  reactor serve --addr=127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from reactor.json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	s := newServer(cfg, logger, prometheus.NewRegistry())

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	success("Serving on http://%s", ln.Addr())
	info("websocket: %s", cfg.Serve.Path)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// tracerProvider returns the globally installed provider when tracing is
// enabled and a no-op provider otherwise.
func tracerProvider(enabled bool) trace.TracerProvider {
	if !enabled {
		return noop.NewTracerProvider()
	}
	return otel.GetTracerProvider()
}

// server runs one demo session per websocket connection.
type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *render.Metrics
	sessions prometheus.Gauge
	upgrader websocket.Upgrader
}

func newServer(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) *server {
	s := &server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		s.metrics = render.NewMetrics(reg, cfg.Metrics.Namespace)
		s.sessions = promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Metrics.Namespace,
			Name:      "active_sessions",
			Help:      "Number of connected websocket peers",
		})
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get(s.cfg.Serve.Path, s.handleWebSocket)
	return r
}

// handleWebSocket mounts a fresh todo app on the peer and runs its input
// loop until the peer disconnects.
func (s *server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("session", middleware.GetReqID(req.Context()), "remote", req.RemoteAddr)
	if s.sessions != nil {
		s.sessions.Inc()
		defer s.sessions.Dec()
	}

	remote := host.NewRemote(conn, host.WithRemoteLogger(logger))
	rt := newRuntime(s.cfg, logger)
	r := render.New(rt, remote, rendererOptions(logger, s.metrics, s.cfg.Tracing.Enabled)...)
	store := newTodoStore(rt, sampleTodos())

	ctx := req.Context()
	// ReadMessage does not watch ctx; closing the socket unblocks it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	rt.Do(func() {
		r.Render(ctx, todoApp(store), remote.Container())
	})
	logger.Info("session started")

	err = remote.ReadLoop(ctx, rt.Do)
	rt.Do(r.Close)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("session ended", "error", err)
		return
	}
	logger.Info("session ended")
}
