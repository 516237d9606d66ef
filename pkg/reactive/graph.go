package reactive

// ID identifies a cell or a subscriber within one Runtime.
type ID uint64

type subKind uint8

const (
	// sinkSub runs user code when a source notifies (callbacks, effects,
	// component observers).
	sinkSub subKind = iota

	// derivedSub is a computed cell listening to its own dependencies.
	// Derived subscribers are invalidated synchronously and never run user
	// code during the mark phase.
	derivedSub
)

// cellNode is implemented by State and Computed so the runtime can deliver
// notifications without knowing the value type.
type cellNode interface {
	// version returns the current value version, refreshing derived cells.
	version() uint64

	// settle prepares the cell for delivery and reports whether its sinks
	// should be notified.
	settle() bool
}

type cellRecord struct {
	node cellNode
	subs []ID
}

type subRecord struct {
	kind       subKind
	notify     func()
	invalidate func()
	sources    []ID
}

// graph is the arena of cell and subscriber records. Edges are stored on both
// endpoints; removing either endpoint removes all its edges in the same call.
type graph struct {
	cells map[ID]*cellRecord
	subs  map[ID]*subRecord
	edges int
}

func newGraph() *graph {
	return &graph{
		cells: make(map[ID]*cellRecord),
		subs:  make(map[ID]*subRecord),
	}
}

func (g *graph) addCell(id ID, node cellNode) {
	g.cells[id] = &cellRecord{node: node}
}

func (g *graph) hasCell(id ID) bool {
	_, ok := g.cells[id]
	return ok
}

func (g *graph) removeCell(id ID) {
	rec, ok := g.cells[id]
	if !ok {
		return
	}
	for _, sid := range rec.subs {
		if sub, ok := g.subs[sid]; ok {
			sub.sources = removeID(sub.sources, id)
			g.edges--
		}
	}
	delete(g.cells, id)
}

func (g *graph) addSub(id ID, rec *subRecord) {
	g.subs[id] = rec
}

func (g *graph) hasSub(id ID) bool {
	_, ok := g.subs[id]
	return ok
}

func (g *graph) removeSub(id ID) {
	if _, ok := g.subs[id]; !ok {
		return
	}
	g.unlinkSources(id)
	delete(g.subs, id)
}

// link adds the edge cell -> sub. Returns false if either endpoint is gone
// or the edge already exists.
func (g *graph) link(cell, sub ID) bool {
	c, ok := g.cells[cell]
	if !ok {
		return false
	}
	s, ok := g.subs[sub]
	if !ok {
		return false
	}
	for _, src := range s.sources {
		if src == cell {
			return false
		}
	}
	s.sources = append(s.sources, cell)
	c.subs = append(c.subs, sub)
	g.edges++
	return true
}

func (g *graph) unlink(cell, sub ID) {
	s, ok := g.subs[sub]
	if !ok {
		return
	}
	before := len(s.sources)
	s.sources = removeID(s.sources, cell)
	if len(s.sources) == before {
		return
	}
	if c, ok := g.cells[cell]; ok {
		c.subs = removeID(c.subs, sub)
	}
	g.edges--
}

// unlinkSources removes every edge ending at sub.
func (g *graph) unlinkSources(sub ID) {
	s, ok := g.subs[sub]
	if !ok {
		return
	}
	for _, src := range s.sources {
		if c, ok := g.cells[src]; ok {
			c.subs = removeID(c.subs, sub)
		}
		g.edges--
	}
	s.sources = nil
}

func (g *graph) linked(cell, sub ID) bool {
	s, ok := g.subs[sub]
	if !ok {
		return false
	}
	for _, src := range s.sources {
		if src == cell {
			return true
		}
	}
	return false
}

// subscribers returns a snapshot of the cell's subscribers in subscription order.
func (g *graph) subscribers(cell ID) []ID {
	c, ok := g.cells[cell]
	if !ok || len(c.subs) == 0 {
		return nil
	}
	out := make([]ID, len(c.subs))
	copy(out, c.subs)
	return out
}

// sinks returns a snapshot of the cell's sink subscribers in subscription order.
func (g *graph) sinks(cell ID) []ID {
	c, ok := g.cells[cell]
	if !ok {
		return nil
	}
	var out []ID
	for _, sid := range c.subs {
		if s, ok := g.subs[sid]; ok && s.kind == sinkSub {
			out = append(out, sid)
		}
	}
	return out
}

func (g *graph) hasSinks(cell ID) bool {
	c, ok := g.cells[cell]
	if !ok {
		return false
	}
	for _, sid := range c.subs {
		if s, ok := g.subs[sid]; ok && s.kind == sinkSub {
			return true
		}
	}
	return false
}

func (g *graph) sources(sub ID) []ID {
	s, ok := g.subs[sub]
	if !ok || len(s.sources) == 0 {
		return nil
	}
	out := make([]ID, len(s.sources))
	copy(out, s.sources)
	return out
}

// removeID deletes id from ids preserving order.
func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Stats describes the size of a Runtime's subscription graph.
type Stats struct {
	Cells       int
	Subscribers int
	Edges       int
}
