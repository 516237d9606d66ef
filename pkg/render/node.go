package render

import (
	"strings"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// node is one mounted VNode.
//
// An element node owns a host object. A component node owns an instance and
// at most one child, the node its last render returned. Either way a node
// contributes at most one top-level object to its host parent.
type node struct {
	vnode    *vdom.VNode
	parent   *node
	children []*node

	// Element state.
	handle   host.Handle
	hostKids []host.Handle // Host order under handle as last issued
	bindings map[string]func()
	events   map[string]*eventSub
	placing  bool // Children are being reconciled; defer placement

	inst *instance

	// container marks the node standing for a host container; its handle
	// is the container and its children are the tops of every root
	// rendered into it.
	container bool

	// root is set on the top node of a Render call.
	root *root
}

func (n *node) isElement() bool {
	return n.vnode != nil && n.vnode.Kind == vdom.KindElement
}

// hostOf returns the top-level host object n contributes, or zero.
func (n *node) hostOf() host.Handle {
	for cur := n; cur != nil; {
		if cur.container || cur.isElement() {
			return cur.handle
		}
		if len(cur.children) == 0 {
			return 0
		}
		cur = cur.children[0]
	}
	return 0
}

// hostParent returns the nearest ancestor that owns a host object.
func (n *node) hostParent() *node {
	p := n.parent
	for p != nil && !p.container && !p.isElement() {
		p = p.parent
	}
	return p
}

// scope returns the owner a component instance mounted at n belongs to:
// the nearest enclosing instance, or the root's owner.
func (n *node) scope() *reactive.Owner {
	for p := n; p != nil; p = p.parent {
		if p != n && p.inst != nil {
			return p.inst.owner
		}
		if p.root != nil {
			return p.root.owner
		}
	}
	return nil
}

// depth counts component ancestors, n included.
func (n *node) depth() int {
	d := 0
	for p := n; p != nil; p = p.parent {
		if p.inst != nil {
			d++
		}
	}
	return d
}

// path renders the node's location for error reports, root first:
// "App > list > item#b".
func (n *node) path() string {
	var parts []string
	for p := n; p != nil && !p.container; p = p.parent {
		parts = append(parts, p.vnode.Label())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// instance is a mounted component.
type instance struct {
	node      *node
	owner     *reactive.Owner
	observer  *reactive.Observer
	props     vdom.Props
	dirty     bool
	committed bool
	disposed  bool
	depth     int
}

// eventSub keeps one host subscription per node and event; re-renders swap
// the handler in place.
type eventSub struct {
	handler vdom.Handler
	stop    func()
}

// root is one Render call.
type root struct {
	container *node
	top       *node
	owner     *reactive.Owner
	disposed  bool
}
