package reactive

import (
	"fmt"

	"github.com/vango-dev/reactor/internal/errors"
)

// State is a mutable reactive value.
// Reading a State inside a tracked computation records it as a dependency;
// writing a different value notifies every subscriber once per pass.
type State[T any] struct {
	rt       *Runtime
	id       ID
	value    T
	ver      uint64
	equal    func(T, T) bool
	disposed bool
}

// NewState creates a State owned by s.
//
// Inside a component render the State is bound to a hook slot: the first
// render creates it, later renders return the same State and ignore initial.
//
// Example:
//
//	count := reactive.NewState(owner, 0)
//	name := reactive.NewState(owner, "Alice")
func NewState[T any](s Scope, initial T) *State[T] {
	o := s.scopeOwner()
	if slot, ok := o.useSlot(); ok {
		st, ok := slot.(*State[T])
		if !ok {
			panic(fmt.Sprintf("reactive: hook slot %d holds %T, want *State[%T]", o.slotIdx-1, slot, initial))
		}
		return st
	}
	st := &State[T]{
		rt:    o.rt,
		id:    o.rt.nextID(),
		value: initial,
		ver:   1,
	}
	o.rt.graph.addCell(st.id, st)
	o.own(st)
	o.setSlot(st)
	return st
}

// ID returns the cell's identifier.
func (s *State[T]) ID() ID { return s.id }

func (s *State[T]) cellRuntime() *Runtime { return s.rt }

// Get returns the current value and records the read in the enclosing
// computation. Reading a disposed State reports ErrDisposed and returns the
// zero value.
func (s *State[T]) Get() T {
	if s.disposed {
		s.rt.report(errors.New(errors.CodeDisposed).WithField("cell", s.id))
		var zero T
		return zero
	}
	s.rt.tracker.record(s.id)
	return s.value
}

// TryGet is Get with the stale-read condition returned instead of reported.
func (s *State[T]) TryGet() (T, error) {
	if s.disposed {
		var zero T
		return zero, errors.New(errors.CodeDisposed).WithField("cell", s.id)
	}
	s.rt.tracker.record(s.id)
	return s.value, nil
}

// Peek returns the current value without tracking.
func (s *State[T]) Peek() T {
	if s.disposed {
		var zero T
		return zero
	}
	return s.value
}

// PeekAny implements Source.
func (s *State[T]) PeekAny() any {
	return s.Peek()
}

// Set assigns v. If v differs from the current value under the equality
// function, subscribers are notified: right away outside a batch, or when the
// outermost batch closes.
func (s *State[T]) Set(v T) {
	if s.disposed {
		s.rt.report(errors.New(errors.CodeDisposed).WithField("cell", s.id).WithDetail("write to disposed cell"))
		return
	}
	if s.equals(s.value, v) {
		return
	}
	s.value = v
	s.ver++
	s.rt.changed(s.id)
}

// Update sets the result of fn applied to the current value.
func (s *State[T]) Update(fn func(T) T) {
	s.Set(fn(s.Peek()))
}

// Subscribe calls fn with the new value after every delivered change.
// Unsubscribing, even from inside a notification, stops delivery at once.
func (s *State[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return s.rt.subscribe(s.id, func() { fn(s.value) })
}

// Watch implements Source.
func (s *State[T]) Watch(fn func()) (stop func()) {
	return s.rt.subscribe(s.id, fn)
}

// WithEquals replaces the equality function used to skip redundant writes.
// Pass NeverEqual to notify on every Set.
func (s *State[T]) WithEquals(fn func(T, T) bool) *State[T] {
	s.equal = fn
	return s
}

// Version increments on every actual change.
func (s *State[T]) Version() uint64 { return s.ver }

// Disposed reports whether the cell has been torn down.
func (s *State[T]) Disposed() bool { return s.disposed }

// Dispose removes the cell and every edge touching it.
func (s *State[T]) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.rt.graph.removeCell(s.id)
	var zero T
	s.value = zero
}

func (s *State[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

func (s *State[T]) version() uint64 { return s.ver }

func (s *State[T]) settle() bool { return true }
