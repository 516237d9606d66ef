package reactive

import (
	"fmt"
	"slices"

	"github.com/vango-dev/reactor/internal/errors"
)

// Cleanup is returned by an effect function and runs before the effect's
// next run and when the effect is disposed.
type Cleanup func()

// EffectState is the lifecycle state of an Effect.
type EffectState uint8

const (
	// EffectPending: created, first run not done yet.
	EffectPending EffectState = iota

	// EffectMounted: has run; its cleanup (if any) is held.
	EffectMounted

	// EffectCleanupPending: a dependency changed; cleanup then rerun is queued.
	EffectCleanupPending

	// EffectDisposed: cleanup has run for the last time.
	EffectDisposed
)

func (s EffectState) String() string {
	switch s {
	case EffectPending:
		return "pending"
	case EffectMounted:
		return "mounted"
	case EffectCleanupPending:
		return "cleanup-pending"
	case EffectDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("EffectState(%d)", s)
	}
}

// Effect is a side effect that reruns when its dependencies change.
// Runs and cleanups are strictly ordered: the previous cleanup always
// completes before the next run starts, and no cleanup runs twice.
type Effect struct {
	rt    *Runtime
	id    ID
	owner *Owner
	fn    func() Cleanup

	explicit bool
	deps     []ID

	cleanup Cleanup
	state   EffectState
	queued  bool
	runs    int
	name    string
}

// EffectOption configures an Effect.
type EffectOption interface {
	applyEffect(*Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// WithDeps binds the effect to an explicit dependency list: it reruns only
// when one of cells notifies, and reads inside the effect are not tracked.
// With no cells the effect runs exactly once.
func WithDeps(cells ...Cell) EffectOption {
	ids := make([]ID, 0, len(cells))
	for _, c := range cells {
		if c != nil {
			ids = append(ids, c.ID())
		}
	}
	return effectOptionFunc(func(e *Effect) {
		e.explicit = true
		e.deps = ids
	})
}

// EffectName labels the effect in log output.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// CreateEffect registers fn as an effect owned by s. By default the cells
// fn reads become its dependencies, rebuilt on every run.
//
// The first run happens once the owner is committed: immediately for the
// runtime root or an already mounted owner, after the subtree mounts for an
// owner whose component is rendering for the first time.
//
// Example:
//
//	reactive.CreateEffect(owner, func() reactive.Cleanup {
//	    id := startTimer(interval.Get())
//	    return func() { stopTimer(id) }
//	})
func CreateEffect(s Scope, fn func() Cleanup, opts ...EffectOption) *Effect {
	o := s.scopeOwner()
	if slot, ok := o.useSlot(); ok {
		e, ok := slot.(*Effect)
		if !ok {
			panic(fmt.Sprintf("reactive: hook slot %d holds %T, want *Effect", o.slotIdx-1, slot))
		}
		e.rebind(fn, opts)
		return e
	}

	e := &Effect{
		rt:    o.rt,
		id:    o.rt.nextID(),
		owner: o,
		fn:    fn,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}
	if o.disposed {
		e.state = EffectDisposed
		return e
	}
	o.rt.graph.addSub(e.id, &subRecord{kind: sinkSub, notify: e.markDirty})
	if e.explicit {
		o.rt.linkDeps(e.id, e.deps)
	}
	o.effects = append(o.effects, e)
	o.setSlot(e)

	if o.committed {
		o.rt.scheduleEffect(e)
		o.rt.flush()
	} else {
		o.pending = append(o.pending, e)
	}
	return e
}

// OnMount runs fn once after the owner's subtree is mounted. The returned
// cleanup, if any, runs when the owner is disposed.
func OnMount(s Scope, fn func() Cleanup) *Effect {
	return CreateEffect(s, fn, WithDeps())
}

// rebind installs the closure from a later render. A changed explicit
// dependency list relinks the effect and schedules a rerun.
func (e *Effect) rebind(fn func() Cleanup, opts []EffectOption) {
	e.fn = fn
	if !e.explicit || e.state == EffectDisposed {
		return
	}
	probe := &Effect{}
	for _, opt := range opts {
		opt.applyEffect(probe)
	}
	if !probe.explicit || slices.Equal(probe.deps, e.deps) {
		return
	}
	e.rt.graph.unlinkSources(e.id)
	e.deps = probe.deps
	e.rt.linkDeps(e.id, e.deps)
	e.markDirty()
}

// ID returns the effect's subscriber identifier.
func (e *Effect) ID() ID { return e.id }

// State returns the current lifecycle state.
func (e *Effect) State() EffectState { return e.state }

// Runs returns how many times the effect function has run.
func (e *Effect) Runs() int { return e.runs }

// Dispose runs the pending cleanup and stops the effect.
func (e *Effect) Dispose() {
	e.dispose()
}

func (e *Effect) markDirty() {
	switch e.state {
	case EffectMounted:
		e.state = EffectCleanupPending
		e.rt.scheduleEffect(e)
	case EffectPending:
		if e.owner.committed {
			e.rt.scheduleEffect(e)
		}
	}
}

func (e *Effect) run() {
	switch e.state {
	case EffectDisposed:
		return
	case EffectMounted, EffectCleanupPending:
		e.runCleanup()
	}

	if e.explicit {
		e.rt.untracked(func() { e.cleanup = e.invoke() })
	} else {
		e.rt.graph.unlinkSources(e.id)
		reads := e.rt.track(func() { e.cleanup = e.invoke() })
		for _, d := range reads {
			e.rt.graph.link(d, e.id)
		}
	}
	e.runs++

	if e.state == EffectDisposed {
		// Disposed from inside its own run.
		e.runCleanup()
		return
	}
	e.state = EffectMounted
}

func (e *Effect) invoke() (c Cleanup) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New(errors.CodeEffectFailed).WithField("effect", e.id).WithPanic(r)
			if e.name != "" {
				err = err.WithField("name", e.name)
			}
			e.rt.report(err)
			c = nil
		}
	}()
	return e.fn()
}

func (e *Effect) runCleanup() {
	c := e.cleanup
	e.cleanup = nil
	if c != nil {
		e.rt.runCleanup(e.owner.id, c)
	}
}

func (e *Effect) dispose() {
	if e.state == EffectDisposed {
		return
	}
	e.state = EffectDisposed
	e.runCleanup()
	e.rt.graph.removeSub(e.id)
}
