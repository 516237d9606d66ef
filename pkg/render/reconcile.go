package render

import (
	"context"
	"log/slog"
	"sort"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// mount realizes n.vnode. Host objects are created detached from n's host
// parent; the caller places them.
func (r *Renderer) mount(n *node) {
	switch n.vnode.Kind {
	case vdom.KindElement:
		r.mountElement(n)
	case vdom.KindComponent:
		r.mountComponent(n)
	}
}

func (r *Renderer) mountElement(n *node) {
	vn := n.vnode
	props := make(map[string]vdom.Value, len(vn.Props))
	for name, p := range vn.Props {
		if !valued(p) {
			continue
		}
		if v := p.Resolve(); !v.IsNil() {
			props[name] = v
		}
	}
	if !r.hostCreate(n, props) {
		// Nothing below a failed object can be attached.
		return
	}
	for _, name := range vn.Props.Names() {
		r.wire(n, name, vn.Props[name])
	}
	r.reconcileChildren(n, vn.Children)
	vn.Ref.Attach(n.handle)
}

func (r *Renderer) mountComponent(n *node) {
	inst := &instance{node: n, props: n.vnode.Props}
	inst.owner = reactive.NewOwner(n.scope())
	inst.observer = reactive.NewObserver(inst.owner, func() { r.markDirty(inst) })
	n.inst = inst
	inst.depth = n.depth()
	r.components++
	r.metrics.mounted(1)

	out, ok := r.renderComponent(inst)
	if !ok {
		return
	}
	if out != nil {
		child := &node{vnode: out, parent: n}
		r.mount(child)
		n.children = []*node{child}
	}
	r.commit(inst)
}

// renderComponent invokes the component with its owner's hook slots and
// dependency tracking. A panic is reported and ok is false.
func (r *Renderer) renderComponent(inst *instance) (out *vdom.VNode, ok bool) {
	n := inst.node
	defer func() {
		if p := recover(); p != nil {
			r.report(errors.New(errors.CodeComponentFailed).
				WithField("component", n.vnode.Label()).
				WithField("path", n.path()).
				WithPanic(p))
			out, ok = nil, false
		}
	}()
	inst.owner.StartRender()
	defer inst.owner.EndRender()
	inst.observer.Run(func() {
		out = n.vnode.Comp(inst.owner, inst.props)
	})
	return out, true
}

// commit runs once per instance, after its first successful render is on
// the host. Effects created during that render are scheduled.
func (r *Renderer) commit(inst *instance) {
	if inst.committed {
		return
	}
	inst.committed = true
	inst.owner.Commit()
}

// rerender re-invokes a mounted component and reconciles its output. On a
// panic the previous output stays mounted.
func (r *Renderer) rerender(inst *instance) {
	inst.dirty = false
	out, ok := r.renderComponent(inst)
	if !ok {
		return
	}
	n := inst.node
	var prev *node
	if len(n.children) > 0 {
		prev = n.children[0]
	}

	switch {
	case prev == nil && out == nil:
	case prev != nil && out != nil && vdom.SameType(prev.vnode, out) && prev.vnode.Key == out.Key:
		r.update(prev, out)
	default:
		if prev != nil {
			r.unmount(prev)
			n.children = nil
		}
		if out != nil {
			child := &node{vnode: out, parent: n}
			r.mount(child)
			n.children = []*node{child}
		}
		if hp := n.hostParent(); hp != nil {
			r.place(hp, nil)
		}
	}
	r.commit(inst)
}

// update brings a retained node in line with vn, which has the same type.
func (r *Renderer) update(n *node, vn *vdom.VNode) {
	prev := n.vnode
	n.vnode = vn

	if vn.Kind == vdom.KindComponent {
		inst := n.inst
		same := inst.props.Equal(vn.Props) && vdom.IdenticalComponent(prev.Comp, vn.Comp)
		// Keep the latest closures even when nothing visible changed.
		inst.props = vn.Props
		if !same {
			r.rerender(inst)
		}
		return
	}

	if n.handle == 0 {
		return
	}
	for _, ch := range vdom.DiffProps(prev.Props, vn.Props) {
		if !ch.Added {
			r.unwire(n, ch.Name, ch.Prev)
		}
		switch {
		case !ch.Removed && valued(ch.Next):
			r.hostApply(n, ch.Name, ch.Next.Resolve())
		case !ch.Added && valued(ch.Prev):
			r.hostApply(n, ch.Name, vdom.Nil())
		}
		if !ch.Removed {
			r.wire(n, ch.Name, ch.Next)
		}
	}
	for name, p := range vn.Props {
		if p.Kind != vdom.PropEvent {
			continue
		}
		if es, ok := n.events[name]; ok {
			es.handler = p.Handler
		}
	}

	r.reconcileChildren(n, vn.Children)

	if prev.Ref != vn.Ref {
		prev.Ref.Detach()
		vn.Ref.Attach(n.handle)
	}
}

func valued(p vdom.Property) bool {
	return p.Kind == vdom.PropStatic || p.Kind == vdom.PropBound
}

// wire connects a bound property to its cell or an event prop to the host.
func (r *Renderer) wire(n *node, name string, p vdom.Property) {
	switch p.Kind {
	case vdom.PropBound:
		if p.Source == nil {
			return
		}
		src := p.Source
		if n.bindings == nil {
			n.bindings = make(map[string]func())
		}
		n.bindings[name] = src.Watch(func() {
			r.hostApply(n, name, vdom.ValueOf(src.PeekAny()))
		})
	case vdom.PropEvent:
		if n.events == nil {
			n.events = make(map[string]*eventSub)
		}
		es := &eventSub{handler: p.Handler}
		n.events[name] = es
		r.hostSubscribe(n, name, es)
	}
}

func (r *Renderer) unwire(n *node, name string, p vdom.Property) {
	switch p.Kind {
	case vdom.PropBound:
		if stop, ok := n.bindings[name]; ok {
			stop()
			delete(n.bindings, name)
		}
	case vdom.PropEvent:
		if es, ok := n.events[name]; ok {
			if es.stop != nil {
				es.stop()
			}
			delete(n.events, name)
		}
	}
}

// reconcileChildren reconciles the children of an element node against next.
func (r *Renderer) reconcileChildren(parent *node, next []*vdom.VNode) {
	prevNodes := parent.children
	if len(prevNodes) == 0 && len(next) == 0 {
		return
	}
	prev := make([]*vdom.VNode, len(prevNodes))
	for i, c := range prevNodes {
		prev[i] = c.vnode
	}
	plan := vdom.Reconcile(prev, next)
	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.logger.Debug("reconcile children",
			"parent", parent.path(),
			"create", plan.Count(vdom.OpCreate),
			"destroy", plan.Count(vdom.OpDestroy),
			"move", plan.Count(vdom.OpMove))
	}

	for _, d := range plan.Duplicates {
		r.report(errors.New(errors.CodeDuplicateKey).
			WithField("key", d.Key).
			WithField("parent", parent.path()).
			WithField("index", d.Index).
			WithField("first", d.First))
	}

	parent.placing = true
	for _, i := range plan.Destroy {
		r.unmount(prevNodes[i])
	}

	var moved map[*node]bool
	children := make([]*node, 0, len(plan.Matches))
	for _, m := range plan.Matches {
		vn := next[m.Next]
		if m.Prev >= 0 {
			c := prevNodes[m.Prev]
			r.update(c, vn)
			if m.Moved {
				if moved == nil {
					moved = make(map[*node]bool)
				}
				moved[c] = true
			}
			children = append(children, c)
			continue
		}
		c := &node{vnode: vn, parent: parent}
		r.mount(c)
		children = append(children, c)
	}
	parent.children = children
	parent.placing = false

	r.place(parent, moved)
}

// place brings the host order under parent in line with parent.children.
// It simulates the host order and issues SetParent for every new object,
// every moved node, and every object found out of position.
func (r *Renderer) place(parent *node, moved map[*node]bool) {
	if parent.placing || parent.handle == 0 {
		return
	}
	cur := parent.hostKids
	idx := 0
	for _, c := range parent.children {
		h := c.hostOf()
		if h == 0 {
			continue
		}
		pos := indexOf(cur, h)
		if pos != idx || moved[c] {
			if !r.hostSetParent(h, parent, idx) {
				// Still where it was, or nowhere: idx is free for the next sibling.
				if pos != idx {
					continue
				}
			} else {
				if pos >= 0 {
					cur = append(cur[:pos], cur[pos+1:]...)
				}
				cur = append(cur, 0)
				copy(cur[idx+1:], cur[idx:])
				cur[idx] = h
			}
		}
		idx++
	}
	parent.hostKids = cur
}

func indexOf(hs []host.Handle, h host.Handle) int {
	for i, x := range hs {
		if x == h {
			return i
		}
	}
	return -1
}

// unmount removes n's subtree: cleanups and subscriptions first, innermost
// first, then host objects, children before parents.
func (r *Renderer) unmount(n *node) {
	h := n.hostOf()
	hp := n.hostParent()
	r.teardown(n)
	r.destroy(n)
	if hp != nil && h != 0 {
		if i := indexOf(hp.hostKids, h); i >= 0 {
			hp.hostKids = append(hp.hostKids[:i], hp.hostKids[i+1:]...)
		}
	}
}

func (r *Renderer) teardown(n *node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		r.teardown(n.children[i])
	}
	if inst := n.inst; inst != nil && !inst.disposed {
		inst.disposed = true
		inst.dirty = false
		inst.owner.Dispose()
		r.components--
		r.metrics.mounted(-1)
	}

	names := make([]string, 0, len(n.bindings))
	for name := range n.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n.bindings[name]()
	}
	n.bindings = nil

	names = names[:0]
	for name := range n.events {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if stop := n.events[name].stop; stop != nil {
			stop()
		}
	}
	n.events = nil

	if n.isElement() {
		n.vnode.Ref.Detach()
	}
}

func (r *Renderer) destroy(n *node) {
	for _, c := range n.children {
		r.destroy(c)
	}
	n.children = nil
	n.hostKids = nil
	if n.isElement() {
		r.hostDestroy(n)
	}
}
