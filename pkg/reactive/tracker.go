package reactive

// frame is one level of the dependency tracker stack.
type frame struct {
	untracked bool
	reads     []ID
	seen      map[ID]struct{}
}

// tracker records which cells are read while a computation runs.
// Frames are pushed and popped in pairs; exit pops everything above and
// including its frame so an early return or panic in a nested computation
// cannot leave a stale frame on top.
type tracker struct {
	stack []*frame
}

func (t *tracker) enter(untracked bool) *frame {
	f := &frame{untracked: untracked}
	t.stack = append(t.stack, f)
	return f
}

func (t *tracker) exit(f *frame) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == f {
			t.stack = t.stack[:i]
			return
		}
	}
}

// record registers a read of id in the innermost frame.
func (t *tracker) record(id ID) {
	if len(t.stack) == 0 {
		return
	}
	f := t.stack[len(t.stack)-1]
	if f.untracked {
		return
	}
	if f.seen == nil {
		f.seen = make(map[ID]struct{}, 4)
	}
	if _, ok := f.seen[id]; ok {
		return
	}
	f.seen[id] = struct{}{}
	f.reads = append(f.reads, id)
}

func (t *tracker) active() bool {
	return len(t.stack) > 0 && !t.stack[len(t.stack)-1].untracked
}

// track runs fn in a fresh recording frame and returns the cells it read,
// in first-read order.
func (rt *Runtime) track(fn func()) (reads []ID) {
	f := rt.tracker.enter(false)
	defer func() {
		rt.tracker.exit(f)
		reads = f.reads
	}()
	fn()
	return f.reads
}

// untracked runs fn in a frame that records nothing.
func (rt *Runtime) untracked(fn func()) {
	f := rt.tracker.enter(true)
	defer rt.tracker.exit(f)
	fn()
}

// Untracked runs fn without recording any reads as dependencies of the
// enclosing computation.
//
// Example:
//
//	rt.Untracked(func() {
//	    // Reading count here won't subscribe the current computation
//	    log.Println(count.Get())
//	})
//
// For a single cell, Peek is clearer.
func (rt *Runtime) Untracked(fn func()) {
	rt.untracked(fn)
}

// Tracking reports whether a read right now would be recorded as a dependency.
func (rt *Runtime) Tracking() bool {
	return rt.tracker.active()
}

// current returns the innermost frame, or nil.
func (t *tracker) current() *frame {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}
