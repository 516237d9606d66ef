package reactive

// Observer is a tracked sink: every cell read inside Run becomes a
// dependency, and notify is called when any of them changes. The renderer
// drives each component instance with an Observer.
type Observer struct {
	rt       *Runtime
	id       ID
	disposed bool
}

// NewObserver creates an Observer owned by s. notify runs during delivery;
// it should only schedule work.
func NewObserver(s Scope, notify func()) *Observer {
	o := s.scopeOwner()
	ob := &Observer{rt: o.rt, id: o.rt.nextID()}
	if o.disposed {
		ob.disposed = true
		return ob
	}
	o.rt.graph.addSub(ob.id, &subRecord{kind: sinkSub, notify: notify})
	o.own(ob)
	return ob
}

// ID returns the observer's subscriber identifier.
func (ob *Observer) ID() ID { return ob.id }

// Run calls fn, replacing the observer's dependencies with the cells fn reads.
func (ob *Observer) Run(fn func()) {
	if ob.disposed {
		fn()
		return
	}
	ob.rt.graph.unlinkSources(ob.id)
	f := ob.rt.tracker.enter(false)
	defer func() {
		// Runs on panic as well so a failed render keeps what it read.
		ob.rt.tracker.exit(f)
		for _, d := range f.reads {
			ob.rt.graph.link(d, ob.id)
		}
	}()
	fn()
}

// Sources returns the cells read during the last Run.
func (ob *Observer) Sources() []ID {
	return ob.rt.graph.sources(ob.id)
}

// Dispose severs every subscription of the observer.
func (ob *Observer) Dispose() {
	if ob.disposed {
		return
	}
	ob.disposed = true
	ob.rt.graph.removeSub(ob.id)
}
