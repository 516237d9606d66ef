package reactive

import (
	"fmt"
	"slices"

	"github.com/vango-dev/reactor/internal/errors"
)

// Computed is a derived, read-only reactive value.
//
// Dirty marks propagate synchronously on every upstream write; the value is
// recomputed lazily on the next read. A Computed with subscribers is
// refreshed when its notification is delivered and notifies only if the
// recomputed value differs from the one last delivered.
type Computed[T any] struct {
	rt       *Runtime
	id       ID
	fn       func() T
	explicit bool
	deps     []ID

	value     T
	has       bool
	ver       uint64
	delivered uint64

	dirty     bool
	computing bool
	broken    bool
	disposed  bool

	equal func(T, T) bool
	keyFn func() any
	cache *memoCache[T]
}

// NewComputed creates a Computed that recomputes only when one of deps
// notifies. fn runs untracked: cells it reads but that are not in deps never
// trigger recomputation.
//
// Example:
//
//	doubled := reactive.NewComputed(owner, func() int {
//	    return count.Get() * 2
//	}, count)
func NewComputed[T any](s Scope, fn func() T, deps ...Cell) *Computed[T] {
	ids := make([]ID, 0, len(deps))
	for _, d := range deps {
		if d != nil {
			ids = append(ids, d.ID())
		}
	}
	return newComputed(s, fn, true, ids)
}

// NewAutoComputed creates a Computed whose dependencies are the cells fn
// read during its latest run. Each recomputation rebuilds the set, so a
// cell that stops being read stops triggering.
//
// Example:
//
//	label := reactive.NewAutoComputed(owner, func() string {
//	    if showFull.Get() {
//	        return first.Get() + " " + last.Get()
//	    }
//	    return first.Get()
//	})
func NewAutoComputed[T any](s Scope, fn func() T) *Computed[T] {
	return newComputed(s, fn, false, nil)
}

func newComputed[T any](s Scope, fn func() T, explicit bool, deps []ID) *Computed[T] {
	o := s.scopeOwner()
	if slot, ok := o.useSlot(); ok {
		c, ok := slot.(*Computed[T])
		if !ok {
			var zero T
			panic(fmt.Sprintf("reactive: hook slot %d holds %T, want *Computed[%T]", o.slotIdx-1, slot, zero))
		}
		c.rebind(fn, deps)
		return c
	}

	rt := o.rt
	c := &Computed[T]{
		rt:       rt,
		id:       rt.nextID(),
		fn:       fn,
		explicit: explicit,
		deps:     deps,
		dirty:    true,
	}
	rt.graph.addCell(c.id, c)
	rt.graph.addSub(c.id, &subRecord{kind: derivedSub, invalidate: c.markDirty})
	if explicit {
		rt.linkDeps(c.id, deps)
	}
	o.own(c)
	o.setSlot(c)
	return c
}

// rebind swaps in the closure from a later render. The closure may capture
// new props, so the cell is invalidated; sinks only hear about it if the
// recomputed value differs.
func (c *Computed[T]) rebind(fn func() T, deps []ID) {
	if c.disposed {
		return
	}
	c.fn = fn
	if c.explicit && !slices.Equal(c.deps, deps) {
		c.rt.graph.unlinkSources(c.id)
		c.deps = deps
		c.rt.linkDeps(c.id, deps)
	}
	c.markDirty()
	c.rt.enqueue(c.id)
	c.rt.invalidateFrom(c.id)
}

// ID returns the cell's identifier.
func (c *Computed[T]) ID() ID { return c.id }

func (c *Computed[T]) cellRuntime() *Runtime { return c.rt }

// Get returns the current value, recomputing first if a dependency changed,
// and records the read in the enclosing computation.
//
// Reading the cell from inside its own computation, directly or through
// other computed cells, reports ErrCycle and marks the cell broken: it keeps
// serving its last value and never recomputes again.
func (c *Computed[T]) Get() T {
	if c.disposed {
		c.rt.report(errors.New(errors.CodeDisposed).WithField("cell", c.id))
		var zero T
		return zero
	}
	c.rt.tracker.record(c.id)
	if c.computing {
		c.markCycle()
		return c.value
	}
	c.refresh()
	return c.value
}

// TryGet is Get with the stale-read and cycle conditions returned.
func (c *Computed[T]) TryGet() (T, error) {
	if c.disposed {
		var zero T
		return zero, errors.New(errors.CodeDisposed).WithField("cell", c.id)
	}
	v := c.Get()
	return v, c.Err()
}

// Peek returns the current value without tracking.
func (c *Computed[T]) Peek() T {
	if c.disposed {
		var zero T
		return zero
	}
	if c.computing {
		c.markCycle()
		return c.value
	}
	c.refresh()
	return c.value
}

// PeekAny implements Source.
func (c *Computed[T]) PeekAny() any {
	return c.Peek()
}

// Set always fails: a Computed cannot be written. The error is reported
// and returned; the value is unchanged.
func (c *Computed[T]) Set(T) error {
	err := errors.New(errors.CodeWriteToDerived).WithField("cell", c.id)
	c.rt.report(err)
	return err
}

// Update always fails, like Set.
func (c *Computed[T]) Update(func(T) T) error {
	return c.Set(c.value)
}

// Subscribe calls fn with the new value after every delivered change.
func (c *Computed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.refresh()
	c.delivered = c.ver
	return c.rt.subscribe(c.id, func() { fn(c.value) })
}

// Watch implements Source.
func (c *Computed[T]) Watch(fn func()) (stop func()) {
	c.refresh()
	c.delivered = c.ver
	return c.rt.subscribe(c.id, fn)
}

// WithEquals replaces the equality function used to decide whether a
// recomputed value is a change.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// WithMemoKey enables result caching. keyFn is evaluated on every
// recomputation; a cached result for the same key is reused without calling
// the compute function as long as none of the dependencies it was computed
// from, other than those the key function reads, changed since. The cache
// is an LRU sized by WithMemoCacheSize.
// Keys that are nil or not comparable are never cached.
func (c *Computed[T]) WithMemoKey(keyFn func() any) *Computed[T] {
	c.keyFn = keyFn
	if keyFn != nil {
		c.cache = newMemoCache[T](c.rt.memoCacheSize)
	} else {
		c.cache = nil
	}
	c.dirty = !c.broken
	return c
}

// Err returns ErrCycle if the cell was marked broken.
func (c *Computed[T]) Err() error {
	if c.broken {
		return errors.New(errors.CodeCycle).WithField("cell", c.id)
	}
	return nil
}

// Version increments on every change of the cached value.
func (c *Computed[T]) Version() uint64 { return c.ver }

// Disposed reports whether the cell has been torn down.
func (c *Computed[T]) Disposed() bool { return c.disposed }

// Dispose removes the cell, its dependency edges and its subscribers.
func (c *Computed[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.rt.graph.removeSub(c.id)
	c.rt.graph.removeCell(c.id)
	c.cache = nil
	var zero T
	c.value = zero
}

func (c *Computed[T]) markDirty() {
	if !c.broken {
		c.dirty = true
	}
}

func (c *Computed[T]) markCycle() {
	if c.broken {
		return
	}
	c.broken = true
	c.dirty = false
	c.rt.report(errors.New(errors.CodeCycle).WithField("cell", c.id))
}

func (c *Computed[T]) refresh() {
	if c.dirty && !c.broken && !c.disposed && !c.computing {
		c.recompute()
	}
}

func (c *Computed[T]) recompute() {
	c.computing = true
	// Cleared before running so an invalidation during fn survives.
	c.dirty = false
	defer func() { c.computing = false }()

	var (
		next T
		ok   bool
	)
	if c.explicit {
		c.rt.untracked(func() { next, ok = c.evaluate() })
	} else {
		c.rt.graph.unlinkSources(c.id)
		reads := c.rt.track(func() { next, ok = c.evaluate() })
		for _, d := range reads {
			if d != c.id {
				c.rt.graph.link(d, c.id)
			}
		}
	}
	if !ok {
		return
	}
	if c.has && c.equals(c.value, next) {
		return
	}
	first := !c.has
	c.value = next
	c.has = true
	c.ver++
	if first {
		c.delivered = c.ver
	}
}

// evaluate runs the compute function, or reuses a memoized result.
// Cells read by the key function are part of the key; a cached entry is
// guarded by the versions of the remaining dependencies.
func (c *Computed[T]) evaluate() (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.rt.report(errors.New(errors.CodeComputeFailed).WithField("cell", c.id).WithPanic(r))
			ok = false
		}
	}()
	if c.cache == nil {
		return c.fn(), true
	}

	var key any
	keyReads := c.rt.track(func() { key = c.keyFn() })
	for _, d := range keyReads {
		c.rt.tracker.record(d)
	}
	if e, hit := c.cache.get(key); hit && c.rt.current(e.deps, e.versions) {
		for _, d := range e.deps {
			c.rt.tracker.record(d)
		}
		return e.value, true
	}

	v = c.fn()
	deps := c.deps
	if !c.explicit {
		if f := c.rt.tracker.current(); f != nil {
			deps = f.reads
		}
	}
	guard := make([]ID, 0, len(deps))
	for _, d := range deps {
		if d != c.id && !slices.Contains(keyReads, d) {
			guard = append(guard, d)
		}
	}
	if vs, found := c.rt.versions(guard); found {
		c.cache.put(&memoEntry[T]{key: key, deps: guard, versions: vs, value: v})
	}
	return v, true
}

func (c *Computed[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

func (c *Computed[T]) version() uint64 {
	if !c.computing {
		c.refresh()
	}
	return c.ver
}

func (c *Computed[T]) settle() bool {
	c.refresh()
	if c.ver == c.delivered {
		return false
	}
	c.delivered = c.ver
	return true
}
