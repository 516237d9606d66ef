package reactive

import "github.com/vango-dev/reactor/internal/errors"

// Batch runs fn with notifications deferred. Every cell written inside fn is
// delivered exactly once when the outermost batch returns, in the order the
// cells were first written. Reads inside fn always see the latest writes,
// derived cells included.
//
// Batches nest; only the outermost one flushes. The flush also runs when fn
// panics, before the panic continues to unwind.
//
// Example:
//
//	rt.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// fullName subscribers run once
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
}

// BatchNamed is Batch with its boundaries logged at debug level.
func (rt *Runtime) BatchNamed(name string, fn func()) {
	rt.logger.Debug("batch start", "name", name, "depth", rt.batchDepth)
	defer rt.logger.Debug("batch end", "name", name)
	rt.Batch(fn)
}

// InBatch reports whether a batch is open.
func (rt *Runtime) InBatch() bool {
	return rt.batchDepth > 0
}

// changed is called after a State's value actually changed. Derived cells
// downstream are marked dirty right away so reads inside a batch are never
// stale; sinks are notified by the flush.
func (rt *Runtime) changed(id ID) {
	rt.enqueue(id)
	rt.invalidateFrom(id)
	rt.flush()
}

func (rt *Runtime) enqueue(id ID) {
	if _, ok := rt.pendingSet[id]; ok {
		return
	}
	rt.pendingSet[id] = struct{}{}
	rt.pending = append(rt.pending, id)
}

// invalidateFrom marks every derived cell reachable from id dirty and queues
// it for delivery.
func (rt *Runtime) invalidateFrom(id ID) {
	seen := map[ID]struct{}{id: {}}
	queue := []ID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sid := range rt.graph.subscribers(cur) {
			sub, ok := rt.graph.subs[sid]
			if !ok || sub.kind != derivedSub {
				continue
			}
			if _, ok := seen[sid]; ok {
				continue
			}
			seen[sid] = struct{}{}
			sub.invalidate()
			rt.enqueue(sid)
			queue = append(queue, sid)
		}
	}
}

// flush delivers pending notifications pass by pass. Writes made by a
// listener land in the next pass. When the pending list is empty, settle
// hooks run, then queued effects; any of them may produce more work.
func (rt *Runtime) flush() {
	if rt.batchDepth > 0 || rt.flushing {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	for pass := 0; ; pass++ {
		if pass >= rt.maxFlushPasses {
			rt.dropPending(pass)
			return
		}
		if len(rt.pending) > 0 {
			rt.deliverPass()
			continue
		}
		if rt.settle() {
			continue
		}
		return
	}
}

func (rt *Runtime) dropPending(passes int) {
	dropped := len(rt.pending) + len(rt.effects)
	rt.pending = nil
	clear(rt.pendingSet)
	for _, e := range rt.effects {
		e.queued = false
	}
	rt.effects = nil
	rt.report(errors.New(errors.CodeFlushLimit).
		WithField("passes", passes).
		WithField("dropped", dropped))
}

func (rt *Runtime) deliverPass() {
	batch := rt.pending
	rt.pending = nil
	clear(rt.pendingSet)
	for _, id := range batch {
		rt.deliver(id)
	}
}

func (rt *Runtime) deliver(id ID) {
	rec, ok := rt.graph.cells[id]
	if !ok || !rt.graph.hasSinks(id) {
		return
	}
	if !rec.node.settle() {
		return
	}
	for _, sid := range rt.graph.sinks(id) {
		// A listener earlier in this loop may have unsubscribed this one.
		if !rt.graph.linked(id, sid) {
			continue
		}
		rt.notify(id, sid)
	}
}

func (rt *Runtime) notify(cell, sid ID) {
	defer func() {
		if r := recover(); r != nil {
			rt.report(errors.New(errors.CodeListenerFailed).
				WithField("cell", cell).
				WithField("subscriber", sid).
				WithPanic(r))
		}
	}()
	if sub, ok := rt.graph.subs[sid]; ok {
		sub.notify()
	}
}

// settle runs settle hooks and then the effect queue. It reports whether
// anything ran.
func (rt *Runtime) settle() bool {
	hooks := make([]settler, len(rt.settlers))
	copy(hooks, rt.settlers)
	for _, s := range hooks {
		if s.fn() {
			return true
		}
	}
	if len(rt.effects) == 0 {
		return false
	}
	queue := rt.effects
	rt.effects = nil
	for _, e := range queue {
		e.queued = false
		e.run()
	}
	return true
}

func (rt *Runtime) scheduleEffect(e *Effect) {
	if e.queued || e.state == EffectDisposed {
		return
	}
	e.queued = true
	rt.effects = append(rt.effects, e)
}
