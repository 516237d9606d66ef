package vtest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Harness is a component mounted on an in-memory host.
type Harness struct {
	t testing.TB

	Runtime   *reactive.Runtime
	Host      *host.Memory
	Renderer  *render.Renderer
	Container host.Handle

	teardown func()
	errs     []error
}

type config struct {
	container string
	rtOpts    []reactive.Option
	opts      []render.Option
	verbose   bool
}

// Option configures Mount.
type Option func(*config)

// WithContainer sets the kind of the root container (default "root").
func WithContainer(kind string) Option {
	return func(c *config) {
		c.container = kind
	}
}

// WithRuntimeOptions passes options to the runtime.
func WithRuntimeOptions(opts ...reactive.Option) Option {
	return func(c *config) {
		c.rtOpts = append(c.rtOpts, opts...)
	}
}

// WithRenderOptions passes options to the renderer.
func WithRenderOptions(opts ...render.Option) Option {
	return func(c *config) {
		c.opts = append(c.opts, opts...)
	}
}

// WithVerboseLogs sends runtime logs at debug level to t.Log. By default
// only warnings and errors are logged.
func WithVerboseLogs() Option {
	return func(c *config) {
		c.verbose = true
	}
}

// Mount renders comp and registers its teardown with t.Cleanup.
//
// Example:
//
//	h := vtest.Mount(t, TodoList)
//	h.ExpectElement("list")
func Mount(t testing.TB, comp vdom.Component, opts ...Option) *Harness {
	t.Helper()
	cfg := config{container: "root"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: level}))

	h := &Harness{t: t, Host: host.NewMemory()}
	h.Runtime = reactive.NewRuntime(append([]reactive.Option{reactive.WithLogger(logger)}, cfg.rtOpts...)...)
	h.Runtime.OnError(func(err error) { h.errs = append(h.errs, err) })
	h.Renderer = render.New(h.Runtime, h.Host, cfg.opts...)
	h.Container = h.Host.NewContainer(cfg.container)
	h.teardown = h.Renderer.Render(context.Background(), comp, h.Container)
	t.Cleanup(h.Unmount)
	return h
}

// testWriter forwards log lines to t.Log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Ops returns every host operation recorded since the last Take.
func (h *Harness) Ops() []host.Op {
	return h.Host.Log()
}

// Take returns the recorded host operations and clears the log.
func (h *Harness) Take() []host.Op {
	return h.Host.TakeLog()
}

// Dump renders the host tree under the container.
func (h *Harness) Dump() string {
	return h.Host.Dump(h.Container)
}

// Errors returns every error reported so far.
func (h *Harness) Errors() []error {
	out := make([]error, len(h.errs))
	copy(out, h.errs)
	return out
}

// Root returns the single object mounted in the container.
func (h *Harness) Root() host.Handle {
	h.t.Helper()
	kids := h.Host.Children(h.Container)
	if len(kids) != 1 {
		h.t.Fatalf("vtest: container holds %d objects, want 1", len(kids))
	}
	return kids[0]
}

// Find returns the first live object of kind tag whose prop equals v. v is
// converted with vdom.ValueOf. The test fails if there is none.
func (h *Harness) Find(tag, prop string, v any) host.Handle {
	h.t.Helper()
	found := h.Host.Find(tag, prop, vdom.ValueOf(v))
	if len(found) == 0 {
		h.t.Fatalf("vtest: no %s with %s=%v in\n%s", tag, prop, v, h.Dump())
	}
	return found[0]
}

// Fire delivers an input event to target. The test fails if nothing is
// subscribed to it.
func (h *Harness) Fire(target host.Handle, event string, args ...any) {
	h.t.Helper()
	values := make([]vdom.Value, len(args))
	for i, a := range args {
		values[i] = vdom.ValueOf(a)
	}
	if !h.Host.Fire(target, event, values...) {
		h.t.Fatalf("vtest: no %q handler on %d", event, target)
	}
}

// Batch runs fn in a runtime batch.
func (h *Harness) Batch(fn func()) {
	h.Runtime.Batch(fn)
}

// Unmount tears the component down. It is safe to call more than once.
func (h *Harness) Unmount() {
	if h.teardown != nil {
		h.teardown()
	}
}

// ExpectNoOps asserts that no host operation was recorded since the last Take.
func (h *Harness) ExpectNoOps() {
	h.t.Helper()
	if ops := h.Ops(); len(ops) != 0 {
		h.t.Errorf("expected no host operations, got:\n%s", formatOps(ops))
	}
}

// ExpectOps asserts the kinds of the operations recorded since the last
// Take, in order, and clears the log.
func (h *Harness) ExpectOps(kinds ...protocol.HostOpKind) {
	h.t.Helper()
	ops := h.Take()
	ok := len(ops) == len(kinds)
	for i := 0; ok && i < len(ops); i++ {
		ok = ops[i].Kind == kinds[i]
	}
	if !ok {
		h.t.Errorf("expected ops %v, got:\n%s", kinds, formatOps(ops))
	}
}

// ExpectContains asserts that the host tree dump contains s.
func (h *Harness) ExpectContains(s string) {
	h.t.Helper()
	if dump := h.Dump(); !strings.Contains(dump, s) {
		h.t.Errorf("expected host tree to contain %q, got:\n%s", s, dump)
	}
}

// ExpectNotContains asserts that the host tree dump does not contain s.
func (h *Harness) ExpectNotContains(s string) {
	h.t.Helper()
	if dump := h.Dump(); strings.Contains(dump, s) {
		h.t.Errorf("expected host tree to NOT contain %q, got:\n%s", s, dump)
	}
}

// ExpectElement asserts that an object of kind tag is mounted.
func (h *Harness) ExpectElement(tag string) {
	h.t.Helper()
	for _, line := range strings.Split(h.Dump(), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == tag {
			return
		}
	}
	h.t.Errorf("expected a %s in the host tree, got:\n%s", tag, h.Dump())
}

// ExpectNoErrors asserts that nothing was reported.
func (h *Harness) ExpectNoErrors() {
	h.t.Helper()
	for _, err := range h.errs {
		h.t.Errorf("unexpected error: %v", err)
	}
}

// ExpectError asserts that an error matching target was reported.
func (h *Harness) ExpectError(target error) {
	h.t.Helper()
	for _, err := range h.errs {
		if errors.Is(err, target) {
			return
		}
	}
	h.t.Errorf("expected an error matching %v, got %v", target, h.errs)
}

func formatOps(ops []host.Op) string {
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString("  ")
		sb.WriteString(op.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
