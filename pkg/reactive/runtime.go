package reactive

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// DefaultMaxFlushPasses bounds the number of notification passes one
	// flush may run before pending work is dropped and ErrFlushLimit reported.
	DefaultMaxFlushPasses = 1000

	// DefaultMemoCacheSize is the number of memo-keyed results a Computed
	// keeps. One means a single slot.
	DefaultMemoCacheSize = 1
)

// Runtime owns the subscription graph and every scheduling structure of one
// reactive world. Cells, effects and owners created against a Runtime must
// only be used from the goroutine currently holding it (see Do).
type Runtime struct {
	mu sync.Mutex

	graph   *graph
	tracker tracker
	lastID  ID

	batchDepth int
	pending    []ID
	pendingSet map[ID]struct{}
	flushing   bool

	effects  []*Effect
	settlers []settler
	hooks    []errorHook
	hookSeq  int

	logger         *slog.Logger
	maxFlushPasses int
	memoCacheSize  int

	root *Owner
}

type settler struct {
	id int
	fn func() bool
}

type errorHook struct {
	id int
	fn func(error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for reported errors and batch tracing.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithMaxFlushPasses bounds the number of passes a single flush may run.
func WithMaxFlushPasses(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxFlushPasses = n
		}
	}
}

// WithMemoCacheSize sets the LRU capacity used by Computed.WithMemoKey.
func WithMemoCacheSize(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.memoCacheSize = n
		}
	}
}

// WithErrorHandler registers fn to receive every reported error.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) {
		rt.OnError(fn)
	}
}

// NewRuntime creates an empty reactive runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		graph:          newGraph(),
		pendingSet:     make(map[ID]struct{}),
		logger:         slog.Default(),
		maxFlushPasses: DefaultMaxFlushPasses,
		memoCacheSize:  DefaultMemoCacheSize,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.root = &Owner{rt: rt, id: rt.nextID(), committed: true}
	return rt
}

// Root returns the runtime's root owner. Cells created directly against the
// Runtime belong to it.
func (rt *Runtime) Root() *Owner {
	return rt.root
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

func (rt *Runtime) scopeOwner() *Owner {
	return rt.root
}

func (rt *Runtime) nextID() ID {
	rt.lastID++
	return rt.lastID
}

// Do runs fn while holding the runtime's lock. Every goroutine other than the
// one driving the runtime (socket readers, timers, file watchers) must enter
// through Do; fn runs synchronously, including any notification pass its
// writes trigger.
func (rt *Runtime) Do(fn func()) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fn()
}

// Stats returns the current size of the subscription graph.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Cells:       len(rt.graph.cells),
		Subscribers: len(rt.graph.subs),
		Edges:       rt.graph.edges,
	}
}

// OnError registers fn to be called with every error reported by the runtime
// or by code reporting through it. The returned function removes the hook.
func (rt *Runtime) OnError(fn func(error)) (remove func()) {
	if fn == nil {
		return func() {}
	}
	rt.hookSeq++
	id := rt.hookSeq
	rt.hooks = append(rt.hooks, errorHook{id: id, fn: fn})
	return func() {
		for i, h := range rt.hooks {
			if h.id == id {
				rt.hooks = append(rt.hooks[:i:i], rt.hooks[i+1:]...)
				return
			}
		}
	}
}

// OnSettle registers fn to run once the pending notification list drains.
// fn reports whether it did any work; while any settle hook reports work the
// flush loop keeps going. The renderer uses this to re-render dirty
// components after all cell notifications of a pass are delivered.
func (rt *Runtime) OnSettle(fn func() bool) (remove func()) {
	rt.hookSeq++
	id := rt.hookSeq
	rt.settlers = append(rt.settlers, settler{id: id, fn: fn})
	return func() {
		for i, s := range rt.settlers {
			if s.id == id {
				rt.settlers = append(rt.settlers[:i:i], rt.settlers[i+1:]...)
				return
			}
		}
	}
}

// Report logs err and hands it to every error hook. Errors that are not
// *errors.Error are wrapped as unknown.
func (rt *Runtime) Report(err error) {
	if err == nil {
		return
	}
	rt.report(errors.FromError(err, ""))
}

func (rt *Runtime) report(err *errors.Error) {
	if err.Severity == errors.SeverityWarning {
		rt.logger.Warn(err.Message, err.LogAttrs()...)
	} else {
		rt.logger.Error(err.Message, err.LogAttrs()...)
	}
	hooks := make([]errorHook, len(rt.hooks))
	copy(hooks, rt.hooks)
	for _, h := range hooks {
		rt.callHook(h.fn, err)
	}
}

func (rt *Runtime) callHook(fn func(error), err error) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("error hook panicked", "panic", r)
		}
	}()
	fn(err)
}

// linkDeps links sub to each explicit dependency. A derived dependency is
// brought current first so it has edges to its own sources.
func (rt *Runtime) linkDeps(sub ID, deps []ID) {
	for _, d := range deps {
		if rec, ok := rt.graph.cells[d]; ok {
			rec.node.version()
		}
		rt.graph.link(d, sub)
	}
}

// subscribe adds a sink subscriber to cell.
func (rt *Runtime) subscribe(cell ID, fn func()) (unsubscribe func()) {
	if !rt.graph.hasCell(cell) {
		rt.report(errors.New(errors.CodeDisposed).WithField("cell", cell))
		return func() {}
	}
	sid := rt.nextID()
	rt.graph.addSub(sid, &subRecord{kind: sinkSub, notify: fn})
	rt.graph.link(cell, sid)
	return func() {
		rt.graph.removeSub(sid)
	}
}
