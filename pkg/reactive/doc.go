// Package reactive provides the signal engine for reactor.
//
// Reactivity is fine-grained: reading a cell inside a tracked computation
// (an auto-tracked Computed, an Effect, or a component render driven by an
// Observer) records the cell as a dependency, and writing the cell later
// schedules exactly the computations that read it.
//
// # Core Types
//
// State[T] is a mutable reactive value:
//
//	rt := reactive.NewRuntime()
//	count := reactive.NewState(rt, 0)
//	count.Get()                              // read (tracked)
//	count.Set(5)                             // write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a memoized derived value, either with an explicit
// dependency list or with auto-tracked dependencies:
//
//	doubled := reactive.NewComputed(rt, func() int { return count.Get() * 2 }, count)
//	label := reactive.NewAutoComputed(rt, func() string {
//	    if verbose.Get() {
//	        return fmt.Sprintf("count is %d", count.Get())
//	    }
//	    return "hidden"
//	})
//
// Effects run side effects after changes and may return a cleanup:
//
//	reactive.CreateEffect(rt, func() reactive.Cleanup {
//	    log.Println("count:", count.Get())
//	    return func() { /* cleanup */ }
//	})
//
// # Batching
//
// Writes inside Batch are coalesced into a single notification pass:
//
//	rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Ownership
//
// Every cell and effect belongs to an Owner. Owners form the component
// hierarchy; disposing an Owner runs its cleanups (innermost first) and severs
// every subscription it holds.
//
// # Threading
//
// A Runtime is single-threaded and cooperative. Goroutines that produce
// values asynchronously (timers, sockets, file watchers) must enter the
// runtime through Runtime.Do, which serializes them behind one lock.
package reactive
