package reactive

import (
	"errors"
	"strings"
	"testing"
)

func TestComputedExplicitScenario(t *testing.T) {
	rt, _ := newTestRuntime()
	state := NewState(rt, 0)
	doubled := NewComputed(rt, func() int { return state.Get() * 2 }, state)

	if doubled.Get() != 0 {
		t.Errorf("expected 0, got %d", doubled.Get())
	}
	state.Set(5)
	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
}

func TestComputedExplicitIgnoresUnlistedReads(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 1)
	b := NewState(rt, 1)

	runs := 0
	sum := NewComputed(rt, func() int {
		runs++
		return a.Get() + b.Get()
	}, a)

	sum.Get()
	b.Set(10)
	if got := sum.Get(); got != 2 {
		t.Errorf("unlisted dependency should not trigger: got %d", got)
	}
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}

	a.Set(2)
	if got := sum.Get(); got != 12 {
		t.Errorf("expected 12 after listed dependency changed, got %d", got)
	}
}

func TestComputedExplicitOverUnreadComputed(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 1)
	parity := NewAutoComputed(rt, func() int { return a.Get() % 2 })

	runs := 0
	label := NewComputed(rt, func() string {
		runs++
		if parity.Get() == 0 {
			return "even"
		}
		return "odd"
	}, parity)

	if got := label.Get(); got != "odd" {
		t.Errorf("label = %q, want odd", got)
	}
	a.Set(2)
	if got := label.Get(); got != "even" {
		t.Errorf("label = %q after parity changed, want even", got)
	}
	if runs != 2 {
		t.Errorf("label recomputed %d times, want 2", runs)
	}
}

func TestComputedLazy(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 1)

	runs := 0
	c := NewAutoComputed(rt, func() int {
		runs++
		return a.Get() + 1
	})
	if runs != 0 {
		t.Errorf("computed should not run before first read, got %d runs", runs)
	}

	c.Get()
	c.Get()
	if runs != 1 {
		t.Errorf("expected cached value on second read, got %d runs", runs)
	}

	a.Set(2)
	a.Set(3)
	if runs != 1 {
		t.Errorf("unread computed should not recompute on write, got %d runs", runs)
	}
	if c.Get() != 4 {
		t.Errorf("expected 4, got %d", c.Get())
	}
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestAutoComputedDynamicDependencies(t *testing.T) {
	rt, _ := newTestRuntime()
	guard := NewState(rt, true)
	a := NewState(rt, "a0")
	b := NewState(rt, "b0")

	runs := 0
	d := NewAutoComputed(rt, func() string {
		runs++
		if guard.Get() {
			return a.Get()
		}
		return b.Get()
	})

	notified := 0
	d.Subscribe(func(string) { notified++ })
	if runs != 1 {
		t.Fatalf("expected 1 run after subscribe, got %d", runs)
	}

	// b is not read yet.
	b.Set("b1")
	if runs != 1 || notified != 0 {
		t.Errorf("unread branch triggered: runs=%d notified=%d", runs, notified)
	}

	guard.Set(false)
	if d.Get() != "b1" {
		t.Errorf("expected b1, got %q", d.Get())
	}
	runsAfterToggle := runs

	// a is no longer read.
	a.Set("a1")
	d.Get()
	if runs != runsAfterToggle {
		t.Errorf("dropped dependency still triggers: runs %d -> %d", runsAfterToggle, runs)
	}

	b.Set("b2")
	if d.Get() != "b2" {
		t.Errorf("expected b2, got %q", d.Get())
	}
	if runs != runsAfterToggle+1 {
		t.Errorf("expected one more run, got %d", runs-runsAfterToggle)
	}
}

func TestComputedNotifiesOnlyOnChange(t *testing.T) {
	rt, _ := newTestRuntime()
	n := NewState(rt, 2)
	even := NewComputed(rt, func() bool { return n.Get()%2 == 0 }, n)

	var got []bool
	even.Subscribe(func(v bool) { got = append(got, v) })

	n.Set(4)
	n.Set(6)
	n.Set(7)

	if len(got) != 1 || got[0] != false {
		t.Errorf("expected a single notification with false, got %v", got)
	}
}

func TestComputedChain(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 1)
	b := NewAutoComputed(rt, func() int { return a.Get() * 2 })
	c := NewAutoComputed(rt, func() int { return b.Get() + 1 })

	var seen []int
	c.Subscribe(func(v int) { seen = append(seen, v) })

	a.Set(2)
	a.Set(3)

	if len(seen) != 2 || seen[0] != 5 || seen[1] != 7 {
		t.Errorf("expected [5 7], got %v", seen)
	}
}

func TestComputedWriteRejected(t *testing.T) {
	rt, log := newTestRuntime()
	a := NewState(rt, 2)
	sq := NewComputed(rt, func() int { return a.Get() * a.Get() }, a)

	err := sq.Set(100)
	if !errors.Is(err, ErrWriteToDerived) {
		t.Errorf("expected ErrWriteToDerived, got %v", err)
	}
	if err := sq.Update(func(int) int { return 1 }); !errors.Is(err, ErrWriteToDerived) {
		t.Errorf("Update: expected ErrWriteToDerived, got %v", err)
	}
	if sq.Get() != 4 {
		t.Errorf("value must be unchanged, got %d", sq.Get())
	}
	if log.count() != 2 {
		t.Errorf("expected 2 reported errors, got %d", log.count())
	}
}

func TestComputedSelfCycle(t *testing.T) {
	rt, log := newTestRuntime()

	var c *Computed[int]
	c = NewAutoComputed(rt, func() int { return c.Get() + 1 })

	if got := c.Get(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if !errors.Is(c.Err(), ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", c.Err())
	}
	if log.count() != 1 {
		t.Errorf("expected cycle reported once, got %d", log.count())
	}
}

func TestComputedTransitiveCycle(t *testing.T) {
	rt, log := newTestRuntime()
	seed := NewState(rt, 1)

	var a, b *Computed[int]
	a = NewAutoComputed(rt, func() int { return seed.Get() + b.Get() })
	b = NewAutoComputed(rt, func() int { return a.Get() + 1 })

	a.Get()
	if !errors.Is(a.Err(), ErrCycle) {
		t.Errorf("expected a to be broken, got %v", a.Err())
	}
	before := a.Get()
	seed.Set(2)
	if a.Get() != before {
		t.Errorf("broken cell must keep serving its last value")
	}
	if log.count() != 1 || !errors.Is(log.errs[0], ErrCycle) {
		t.Errorf("expected one ErrCycle, got %v", log.errs)
	}
}

func TestComputedPanicKeepsLastValue(t *testing.T) {
	rt, log := newTestRuntime()
	a := NewState(rt, 1)
	c := NewAutoComputed(rt, func() int {
		if a.Get() < 0 {
			panic("negative")
		}
		return a.Get() * 10
	})

	if c.Get() != 10 {
		t.Fatalf("expected 10, got %d", c.Get())
	}
	a.Set(-1)
	if c.Get() != 10 {
		t.Errorf("expected last value 10 after panic, got %d", c.Get())
	}
	if log.count() != 1 || !errors.Is(log.errs[0], ErrComputeFailed) {
		t.Errorf("expected ErrComputeFailed, got %v", log.errs)
	}

	a.Set(3)
	if c.Get() != 30 {
		t.Errorf("expected recovery to 30, got %d", c.Get())
	}
}

func TestComputedMemoKey(t *testing.T) {
	rt, _ := newTestRuntime(WithMemoCacheSize(2))
	items := NewState(rt, []string{"apple", "banana", "avocado"})
	query := NewState(rt, "a")

	runs := 0
	filtered := NewAutoComputed(rt, func() []string {
		runs++
		var out []string
		for _, it := range items.Get() {
			if strings.HasPrefix(it, query.Get()) {
				out = append(out, it)
			}
		}
		return out
	}).WithMemoKey(func() any { return query.Get() })

	filtered.Get()
	query.Set("b")
	filtered.Get()
	query.Set("a")
	if got := filtered.Get(); len(got) != 2 {
		t.Errorf("expected 2 items for \"a\", got %v", got)
	}
	if runs != 2 {
		t.Errorf("expected cached result for \"a\", got %d runs", runs)
	}

	// A change to a non-key dependency invalidates the cache.
	items.Set([]string{"apricot"})
	if got := filtered.Get(); len(got) != 1 {
		t.Errorf("expected [apricot], got %v", got)
	}
	if runs != 3 {
		t.Errorf("expected recompute after items changed, got %d runs", runs)
	}
}

func TestComputedMemoSingleSlot(t *testing.T) {
	rt, _ := newTestRuntime()
	mode := NewState(rt, 1)

	runs := 0
	c := NewAutoComputed(rt, func() int {
		runs++
		return mode.Get() * 100
	}).WithMemoKey(func() any { return mode.Get() })

	c.Get()
	mode.Set(2)
	c.Get()
	mode.Set(1)
	c.Get()

	if runs != 3 {
		t.Errorf("default cache holds one entry: expected 3 runs, got %d", runs)
	}
}

func TestMemoCacheEviction(t *testing.T) {
	m := newMemoCache[int](2)
	m.put(&memoEntry[int]{key: "a", value: 1})
	m.put(&memoEntry[int]{key: "b", value: 2})
	m.get("a")
	m.put(&memoEntry[int]{key: "c", value: 3})

	if _, ok := m.get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if e, ok := m.get("a"); !ok || e.value != 1 {
		t.Error("recently used entry should survive")
	}
	if m.len() != 2 {
		t.Errorf("expected 2 entries, got %d", m.len())
	}

	m.put(&memoEntry[int]{key: []int{1}, value: 4})
	if m.len() != 2 {
		t.Error("non-comparable keys must not be cached")
	}
}

func TestComputedDispose(t *testing.T) {
	rt, log := newTestRuntime()
	a := NewState(rt, 1)
	c := NewAutoComputed(rt, func() int { return a.Get() })
	c.Subscribe(func(int) {})

	c.Dispose()
	if got := rt.Stats(); got.Cells != 1 || got.Edges != 0 {
		t.Errorf("expected only a to remain, got %+v", got)
	}
	c.Get()
	if !errors.Is(log.errs[len(log.errs)-1], ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", log.errs)
	}
}
