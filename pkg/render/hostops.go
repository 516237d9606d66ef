package render

import (
	stderrors "errors"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Host calls go through these wrappers so every operation is counted and
// every failure reported with the node it concerns.

func hostError(op string, n *node, err error) *errors.Error {
	e := errors.New(errors.CodeHostFailed).
		WithField("op", op).
		Wrap(err)
	if n != nil {
		e = e.WithField("node", n.path())
		if n.handle != 0 {
			e = e.WithField("handle", n.handle)
		}
	}
	return e
}

func (r *Renderer) hostCreate(n *node, props map[string]vdom.Value) bool {
	h, err := r.host.Create(n.vnode.Tag, props)
	r.counted("create")
	if err != nil {
		r.report(hostError("create", n, err))
		return false
	}
	n.handle = h
	return true
}

func (r *Renderer) hostApply(n *node, name string, v vdom.Value) {
	if n.handle == 0 {
		return
	}
	err := r.host.ApplyProperty(n.handle, name, v)
	r.counted("apply")
	if err != nil {
		r.report(hostError("apply", n, err).WithField("prop", name))
	}
}

func (r *Renderer) hostSetParent(h host.Handle, parent *node, index int) bool {
	err := r.host.SetParent(h, parent.handle, index)
	r.counted("setparent")
	if err != nil {
		r.report(hostError("setparent", parent, err))
		return false
	}
	return true
}

func (r *Renderer) hostDestroy(n *node) {
	if n.handle == 0 {
		return
	}
	err := r.host.Destroy(n.handle)
	r.counted("destroy")
	// A closed host has already lost its objects.
	if err != nil && !stderrors.Is(err, host.ErrClosed) {
		r.report(hostError("destroy", n, err))
	}
	n.handle = 0
}

func (r *Renderer) hostSubscribe(n *node, event string, es *eventSub) {
	if n.handle == 0 {
		return
	}
	stop, err := r.host.SubscribeEvent(n.handle, event, es.fire(r, n, event))
	r.counted("subscribe")
	if err != nil {
		r.report(hostError("subscribe", n, err))
		return
	}
	es.stop = stop
}

func (r *Renderer) counted(op string) {
	r.ops++
	r.pendingFlush = true
	r.metrics.hostOp(op)
}

// flushHost flushes a buffering adapter after a pass.
func (r *Renderer) flushHost() {
	if !r.pendingFlush {
		return
	}
	r.pendingFlush = false
	if err := host.Flush(r.host); err != nil && !stderrors.Is(err, host.ErrClosed) {
		r.report(hostError("flush", nil, err))
	}
}

// fire returns the callback handed to the host. Handler writes are batched
// and a panicking handler is reported without reaching the host.
func (es *eventSub) fire(r *Renderer, n *node, event string) vdom.Handler {
	return func(args ...vdom.Value) {
		h := es.handler
		if h == nil {
			return
		}
		defer func() {
			if p := recover(); p != nil {
				r.report(errors.New(errors.CodeListenerFailed).
					WithField("event", event).
					WithField("node", n.path()).
					WithPanic(p))
			}
		}()
		r.rt.Batch(func() { h(args...) })
	}
}
