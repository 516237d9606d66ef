package reactive

import (
	"sync"
	"testing"
)

func TestOwnerDisposeOrder(t *testing.T) {
	rt, _ := newTestRuntime()
	parent := NewOwner(rt)
	child := NewOwner(parent)
	grandchild := NewOwner(child)

	var log []string
	OnCleanup(parent, func() { log = append(log, "parent-1") })
	OnCleanup(parent, func() { log = append(log, "parent-2") })
	OnCleanup(child, func() { log = append(log, "child") })
	OnCleanup(grandchild, func() { log = append(log, "grandchild") })
	OnMount(child, func() Cleanup {
		return func() { log = append(log, "child-effect") }
	})
	rt.Batch(func() {
		parent.Commit()
		child.Commit()
	})

	parent.Dispose()

	want := []string{"grandchild", "child-effect", "child", "parent-2", "parent-1"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if !grandchild.IsDisposed() {
		t.Error("grandchild should be disposed")
	}
	if len(parent.Children()) != 0 {
		t.Error("children should be released")
	}
}

func TestOwnerDisposeSeversCells(t *testing.T) {
	rt, log := newTestRuntime()
	o := NewOwner(rt)
	s := NewState(o, 1)
	c := NewAutoComputed(o, func() int { return s.Get() + 1 })
	c.Subscribe(func(int) {})

	o.Dispose()

	if got := rt.Stats(); got.Cells != 0 || got.Edges != 0 {
		t.Errorf("expected no cells or edges, got %+v", got)
	}
	s.Get()
	if log.count() != 1 {
		t.Errorf("expected stale read to be reported, got %d", log.count())
	}
}

func TestOwnerCleanupPanicIsolated(t *testing.T) {
	rt, log := newTestRuntime()
	o := NewOwner(rt)

	ran := false
	OnCleanup(o, func() { ran = true })
	OnCleanup(o, func() { panic("cleanup failed") })

	o.Dispose()
	if !ran {
		t.Error("remaining cleanups should run after a panic")
	}
	if log.count() != 1 {
		t.Errorf("expected 1 reported error, got %d", log.count())
	}
}

func TestOwnerOnCleanupAfterDispose(t *testing.T) {
	rt, _ := newTestRuntime()
	o := NewOwner(rt)
	o.Dispose()

	ran := false
	OnCleanup(o, func() { ran = true })
	if !ran {
		t.Error("cleanup registered on a disposed owner should run immediately")
	}
}

func TestOwnerHookSlots(t *testing.T) {
	rt, _ := newTestRuntime()
	o := NewOwner(rt)

	render := func(initial int) (*State[int], *Computed[int]) {
		o.StartRender()
		defer o.EndRender()
		s := NewState(o, initial)
		c := NewAutoComputed(o, func() int { return s.Get() * 2 })
		return s, c
	}

	s1, c1 := render(1)
	s1.Set(5)
	s2, c2 := render(100)

	if s1 != s2 || c1 != c2 {
		t.Fatal("hook slots should return the same cells across renders")
	}
	if s2.Peek() != 5 {
		t.Errorf("state should survive re-render, got %d", s2.Peek())
	}
	if c2.Get() != 10 {
		t.Errorf("expected 10, got %d", c2.Get())
	}
	if got := rt.Stats().Cells; got != 2 {
		t.Errorf("re-render should not allocate cells, got %d", got)
	}
}

func TestOwnerHookSlotCleanupReplaced(t *testing.T) {
	rt, _ := newTestRuntime()
	o := NewOwner(rt)

	var got []string
	for _, name := range []string{"first", "second"} {
		name := name
		o.StartRender()
		OnCleanup(o, func() { got = append(got, name) })
		o.EndRender()
	}
	o.Dispose()

	if len(got) != 1 || got[0] != "second" {
		t.Errorf("expected only the latest cleanup, got %v", got)
	}
}

func TestObserverTracksReads(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 0)
	b := NewState(rt, 0)
	useB := NewState(rt, false)

	notified := 0
	ob := NewObserver(rt, func() { notified++ })
	run := func() {
		ob.Run(func() {
			_ = a.Get()
			if useB.Get() {
				_ = b.Get()
			}
		})
	}
	run()

	b.Set(1)
	if notified != 0 {
		t.Errorf("unread cell notified observer")
	}
	a.Set(1)
	if notified != 1 {
		t.Errorf("expected 1 notification, got %d", notified)
	}

	useB.Set(true)
	run()
	b.Set(2)
	if notified != 3 {
		t.Errorf("expected 3 notifications, got %d", notified)
	}
	if len(ob.Sources()) != 3 {
		t.Errorf("expected 3 sources, got %d", len(ob.Sources()))
	}

	ob.Dispose()
	a.Set(2)
	if notified != 3 {
		t.Errorf("disposed observer notified")
	}
}

func TestRuntimeDo(t *testing.T) {
	rt, _ := newTestRuntime()
	count := NewState(rt, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.Do(func() {
				count.Update(func(n int) int { return n + 1 })
			})
		}()
	}
	wg.Wait()

	if count.Peek() != 20 {
		t.Errorf("expected 20, got %d", count.Peek())
	}
}

func TestRuntimeOnErrorRemove(t *testing.T) {
	rt, _ := newTestRuntime()
	calls := 0
	remove := rt.OnError(func(error) { calls++ })

	c := NewComputed(rt, func() int { return 1 })
	c.Set(2)
	remove()
	c.Set(3)

	if calls != 1 {
		t.Errorf("expected 1 call before removal, got %d", calls)
	}
}
