package reactive

import (
	"github.com/vango-dev/reactor/internal/errors"
)

// disposer is anything an Owner tears down on Dispose.
type disposer interface {
	Dispose()
}

// Owner is a node in the ownership tree. Component instances each have one;
// it holds the cells, effects and cleanups created while the component
// rendered, and the child owners of nested components.
//
// Owners are created with NewOwner and destroyed with Dispose. Dispose is
// idempotent.
type Owner struct {
	rt     *Runtime
	id     ID
	parent *Owner

	children []*Owner
	owned    []disposer
	effects  []*Effect
	cleanups []*cleanupSlot
	pending  []*Effect

	committed bool
	disposed  bool

	// Hook slots give cells and effects stable identity across renders.
	rendering bool
	renders   int
	slots     []any
	slotIdx   int
}

type cleanupSlot struct {
	fn func()
}

// NewOwner creates an Owner under parent.
func NewOwner(parent Scope) *Owner {
	p := parent.scopeOwner()
	o := &Owner{
		rt:     p.rt,
		id:     p.rt.nextID(),
		parent: p,
	}
	if p.disposed {
		o.disposed = true
		return o
	}
	p.children = append(p.children, o)
	return o
}

func (o *Owner) scopeOwner() *Owner { return o }

// ID returns the owner's identifier.
func (o *Owner) ID() ID { return o.id }

// Parent returns the parent owner, or nil for a runtime root.
func (o *Owner) Parent() *Owner { return o.parent }

// Runtime returns the runtime the owner belongs to.
func (o *Owner) Runtime() *Runtime { return o.rt }

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool { return o.disposed }

// Committed reports whether Commit has run.
func (o *Owner) Committed() bool { return o.committed }

// Children returns a snapshot of the child owners.
func (o *Owner) Children() []*Owner {
	out := make([]*Owner, len(o.children))
	copy(out, o.children)
	return out
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) own(d disposer) {
	if o.disposed {
		return
	}
	o.owned = append(o.owned, d)
}

// Commit marks the owner's subtree as mounted and hands the effects created
// during its first render to the runtime's effect queue. They run once the
// current flush settles.
func (o *Owner) Commit() {
	if o.disposed {
		return
	}
	o.committed = true
	pending := o.pending
	o.pending = nil
	for _, e := range pending {
		o.rt.scheduleEffect(e)
	}
}

// OnCleanup registers fn to run when s is disposed. Inside a component
// render the registration is bound to a hook slot, so re-renders replace fn
// instead of adding another cleanup.
func OnCleanup(s Scope, fn func()) {
	o := s.scopeOwner()
	if o.disposed {
		o.rt.runCleanup(o.id, fn)
		return
	}
	if slot, ok := o.useSlot(); ok {
		if c, ok := slot.(*cleanupSlot); ok {
			c.fn = fn
			return
		}
	}
	c := &cleanupSlot{fn: fn}
	o.cleanups = append(o.cleanups, c)
	o.setSlot(c)
}

// Dispose tears the owner down: child owners first (most recent first), then
// effect cleanups, then OnCleanup callbacks in reverse registration order,
// then every cell the owner created.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := o.effects
	o.effects = nil
	for i := len(effects) - 1; i >= 0; i-- {
		effects[i].dispose()
	}
	o.pending = nil

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		o.rt.runCleanup(o.id, cleanups[i].fn)
	}

	owned := o.owned
	o.owned = nil
	for i := len(owned) - 1; i >= 0; i-- {
		owned[i].Dispose()
	}
	o.slots = nil
}

// StartRender begins a render of the owner's component. Hook slots are
// consumed in call order until EndRender.
func (o *Owner) StartRender() {
	o.rendering = true
	o.slotIdx = 0
}

// EndRender ends a render started with StartRender.
func (o *Owner) EndRender() {
	o.rendering = false
	if o.renders > 0 && o.slotIdx != len(o.slots) {
		o.rt.logger.Warn("hook order changed between renders",
			"owner", o.id, "expected", len(o.slots), "got", o.slotIdx)
	}
	o.renders++
}

// Rendering reports whether the owner is between StartRender and EndRender.
func (o *Owner) Rendering() bool { return o.rendering }

// useSlot returns the value stored in the next hook slot. ok is false when
// the owner is not rendering or the slot has not been filled yet.
func (o *Owner) useSlot() (any, bool) {
	if !o.rendering {
		return nil, false
	}
	idx := o.slotIdx
	o.slotIdx++
	if idx < len(o.slots) {
		return o.slots[idx], true
	}
	return nil, false
}

// setSlot fills the hook slot consumed by the last useSlot miss.
func (o *Owner) setSlot(v any) {
	if !o.rendering {
		return
	}
	if o.slotIdx-1 == len(o.slots) {
		o.slots = append(o.slots, v)
	}
}

func (rt *Runtime) runCleanup(owner ID, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			rt.report(errors.New(errors.CodeEffectFailed).
				WithField("owner", owner).
				WithDetail("cleanup panicked").
				WithPanic(r))
		}
	}()
	fn()
}
