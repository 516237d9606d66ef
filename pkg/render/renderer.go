package render

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

const tracerName = "github.com/vango-dev/reactor/pkg/render"

// Renderer mounts component trees onto one host and re-renders them as the
// runtime's cells change.
type Renderer struct {
	rt      *reactive.Runtime
	host    host.Adapter
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	errCh   chan error

	containers map[host.Handle]*node
	roots      []*root
	dirty      []*instance

	ops          int // Host operations issued, for span attributes
	pendingFlush bool
	components   int

	removeSettle func()
	removeError  func()
	closed       bool
}

// New creates a renderer that applies rt's updates to adapter. The renderer
// hooks into rt's flush loop: dirty components are re-rendered after every
// notification pass settles.
func New(rt *reactive.Runtime, adapter host.Adapter, opts ...Option) *Renderer {
	r := &Renderer{
		rt:         rt,
		host:       adapter,
		logger:     rt.Logger().With("component", "render"),
		tracer:     otel.Tracer(tracerName),
		containers: make(map[host.Handle]*node),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.removeSettle = rt.OnSettle(r.settle)
	r.removeError = rt.OnError(r.onError)
	return r
}

// Runtime returns the renderer's runtime.
func (r *Renderer) Runtime() *reactive.Runtime { return r.rt }

// Errors returns the channel configured with WithErrorChannel, or nil.
func (r *Renderer) Errors() <-chan error { return r.errCh }

// Components returns the number of mounted component instances.
func (r *Renderer) Components() int { return r.components }

// Render mounts comp into container and returns a teardown function that
// unmounts it. Teardown is idempotent.
func (r *Renderer) Render(ctx context.Context, comp vdom.Component, container host.Handle) (teardown func()) {
	return r.RenderNode(ctx, vdom.C(comp), container)
}

// RenderNode mounts an arbitrary node into container. See Render.
func (r *Renderer) RenderNode(ctx context.Context, vn *vdom.VNode, container host.Handle) (teardown func()) {
	if r.closed || vn == nil {
		return func() {}
	}
	_, span := r.tracer.Start(ctx, "reactor.mount",
		trace.WithAttributes(attribute.String("reactor.root", vn.Label())))
	start, ops, comps := time.Now(), r.ops, r.components

	ro := &root{owner: reactive.NewOwner(r.rt)}
	ro.owner.Commit()
	r.rt.Batch(func() {
		c := r.container(container)
		top := &node{vnode: vn, parent: c, root: ro}
		ro.container, ro.top = c, top
		r.roots = append(r.roots, ro)

		r.mount(top)
		c.children = append(c.children, top)
		r.place(c, nil)
	})
	r.flushHost()

	span.SetAttributes(
		attribute.Int("reactor.components", r.components-comps),
		attribute.Int("reactor.host_ops", r.ops-ops))
	span.End()
	r.metrics.pass("mount", time.Since(start))
	r.logger.Debug("mounted", "root", vn.Label(), "container", container, "ops", r.ops-ops)

	return func() { r.unmountRoot(ro) }
}

func (r *Renderer) container(h host.Handle) *node {
	c, ok := r.containers[h]
	if !ok {
		c = &node{handle: h, container: true}
		r.containers[h] = c
	}
	return c
}

func (r *Renderer) unmountRoot(ro *root) {
	if ro.disposed {
		return
	}
	ro.disposed = true
	r.rt.Batch(func() {
		r.unmount(ro.top)
		c := ro.container
		c.children = removeNode(c.children, ro.top)
		if len(c.children) == 0 {
			delete(r.containers, c.handle)
		}
		ro.owner.Dispose()
	})
	for i, x := range r.roots {
		if x == ro {
			r.roots = append(r.roots[:i], r.roots[i+1:]...)
			break
		}
	}
	r.flushHost()
}

// Unmount tears down every root rendered so far.
func (r *Renderer) Unmount() {
	roots := make([]*root, len(r.roots))
	copy(roots, r.roots)
	for i := len(roots) - 1; i >= 0; i-- {
		r.unmountRoot(roots[i])
	}
}

// Close unmounts everything and detaches the renderer from its runtime.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.Unmount()
	r.closed = true
	r.removeSettle()
	r.removeError()
}

func (r *Renderer) report(err *errors.Error) {
	r.rt.Report(err)
}

func (r *Renderer) onError(err error) {
	code := ""
	if e, ok := err.(*errors.Error); ok {
		code = e.Code
	}
	r.metrics.error(code)
	if r.errCh == nil {
		return
	}
	select {
	case r.errCh <- err:
	default:
	}
}

func (r *Renderer) markDirty(inst *instance) {
	if inst.dirty || inst.disposed {
		return
	}
	inst.dirty = true
	r.dirty = append(r.dirty, inst)
}

// settle re-renders dirty instances, parents first. It runs as a runtime
// settle hook and reports whether it rendered anything.
func (r *Renderer) settle() bool {
	if len(r.dirty) == 0 {
		r.flushHost()
		return false
	}
	queue := r.dirty
	r.dirty = nil
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].depth < queue[j].depth })

	_, span := r.tracer.Start(context.Background(), "reactor.update")
	start, ops := time.Now(), r.ops
	rendered := 0
	for _, inst := range queue {
		// A parent re-render earlier in the queue may have handled it.
		if !inst.dirty || inst.disposed {
			continue
		}
		r.rerender(inst)
		rendered++
	}
	r.flushHost()

	span.SetAttributes(
		attribute.Int("reactor.components", rendered),
		attribute.Int("reactor.host_ops", r.ops-ops))
	span.End()
	r.metrics.pass("update", time.Since(start))
	return true
}

func removeNode(nodes []*node, n *node) []*node {
	for i, x := range nodes {
		if x == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}
