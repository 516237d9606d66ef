package reactive

import (
	"errors"
	"testing"
)

func TestStateBasic(t *testing.T) {
	rt, _ := newTestRuntime()
	count := NewState(rt, 0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
	if count.Version() != 3 {
		t.Errorf("expected version 3, got %d", count.Version())
	}
}

func TestStateEqualWriteDoesNotNotify(t *testing.T) {
	rt, _ := newTestRuntime()
	name := NewState(rt, "alice")
	items := NewState(rt, []string{"a", "b"})

	calls := 0
	name.Subscribe(func(string) { calls++ })
	items.Subscribe(func([]string) { calls++ })

	name.Set("alice")
	items.Set([]string{"a", "b"})

	if calls != 0 {
		t.Errorf("equal writes should not notify, got %d calls", calls)
	}
}

func TestStateNeverEqual(t *testing.T) {
	rt, _ := newTestRuntime()
	tick := NewState(rt, 1).WithEquals(NeverEqual[int])

	calls := 0
	tick.Subscribe(func(int) { calls++ })
	tick.Set(1)
	tick.Set(1)

	if calls != 2 {
		t.Errorf("expected 2 calls with NeverEqual, got %d", calls)
	}
}

func TestStateSubscribeOrder(t *testing.T) {
	rt, _ := newTestRuntime()
	s := NewState(rt, 0)

	var order []string
	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })
	s.Subscribe(func(int) { order = append(order, "third") })

	s.Set(1)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestStateUnsubscribeDuringNotification(t *testing.T) {
	rt, _ := newTestRuntime()
	s := NewState(rt, 0)

	var secondCalls int
	var unsubSecond func()
	s.Subscribe(func(int) { unsubSecond() })
	unsubSecond = s.Subscribe(func(int) { secondCalls++ })

	s.Set(1)
	if secondCalls != 0 {
		t.Errorf("unsubscribed listener should not run, got %d calls", secondCalls)
	}

	// Unsubscribing twice is harmless.
	unsubSecond()
	s.Set(2)
	if secondCalls != 0 {
		t.Errorf("expected 0 calls after unsubscribe, got %d", secondCalls)
	}
}

func TestStateListenerPanicIsolated(t *testing.T) {
	rt, log := newTestRuntime()
	s := NewState(rt, 0)

	var got int
	s.Subscribe(func(int) { panic("boom") })
	s.Subscribe(func(v int) { got = v })

	s.Set(7)

	if got != 7 {
		t.Errorf("second listener should still receive 7, got %d", got)
	}
	if log.count() != 1 || !errors.Is(log.errs[0], ErrListenerFailed) {
		t.Errorf("expected one ErrListenerFailed, got %v", log.errs)
	}

	// Graph is intact: the next write is delivered again.
	s.Set(8)
	if got != 8 {
		t.Errorf("expected 8 after second write, got %d", got)
	}
}

func TestStateReentrantWriteNextPass(t *testing.T) {
	rt, _ := newTestRuntime()
	a := NewState(rt, 0)
	b := NewState(rt, 0)

	var log []string
	a.Subscribe(func(v int) {
		log = append(log, "a1")
		b.Set(v * 10)
	})
	a.Subscribe(func(int) { log = append(log, "a2") })
	b.Subscribe(func(int) { log = append(log, "b") })

	a.Set(1)

	want := []string{"a1", "a2", "b"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if b.Peek() != 10 {
		t.Errorf("expected b = 10, got %d", b.Peek())
	}
}

func TestStateFlushLimit(t *testing.T) {
	rt, log := newTestRuntime(WithMaxFlushPasses(10))
	a := NewState(rt, 0)
	a.Subscribe(func(v int) { a.Set(v + 1) })

	a.Set(1)

	if log.count() != 1 || !errors.Is(log.errs[0], ErrFlushLimit) {
		t.Fatalf("expected ErrFlushLimit, got %v", log.errs)
	}
	if a.Peek() > 11 {
		t.Errorf("runaway loop was not bounded: a = %d", a.Peek())
	}
}

func TestStateStaleRead(t *testing.T) {
	rt, log := newTestRuntime()
	s := NewState(rt, 42)
	s.Dispose()

	if v := s.Get(); v != 0 {
		t.Errorf("expected zero value after dispose, got %d", v)
	}
	if log.count() != 1 || !errors.Is(log.errs[0], ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", log.errs)
	}
	if _, err := s.TryGet(); !errors.Is(err, ErrDisposed) {
		t.Errorf("TryGet: expected ErrDisposed, got %v", err)
	}

	// Dispose is idempotent and writes are ignored.
	s.Dispose()
	s.Set(1)
	if s.Peek() != 0 {
		t.Errorf("write to disposed cell should be ignored")
	}
}

func TestStateDisposeRemovesEdges(t *testing.T) {
	rt, _ := newTestRuntime()
	s := NewState(rt, 0)
	s.Subscribe(func(int) {})
	s.Subscribe(func(int) {})

	if got := rt.Stats().Edges; got != 2 {
		t.Fatalf("expected 2 edges, got %d", got)
	}
	s.Dispose()
	if got := rt.Stats(); got.Edges != 0 || got.Cells != 0 {
		t.Errorf("expected empty graph after dispose, got %+v", got)
	}
}
