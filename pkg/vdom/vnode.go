package vdom

import (
	"reflect"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // host primitive, identified by Tag
	KindComponent             // user component, identified by Comp
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Component renders props to a single VNode. It runs inside the instance's
// Owner, so cells and effects it creates are slot-stable across re-renders
// and disposed when the instance unmounts. A nil result renders nothing.
type Component func(o *reactive.Owner, props Props) *VNode

// VNode is an immutable description of one node of the UI.
type VNode struct {
	Kind     Kind      // Node type
	Tag      string    // Element kind, e.g. "button" (KindElement)
	Comp     Component // For KindComponent
	Name     string    // Component display name for diagnostics
	Props    Props     // Properties, bindings and event handlers
	Children []*VNode  // Child nodes; for components, passed to the render as props children
	Key      string    // Reconciliation key
	Ref      *Ref      // Receives the host handle once mounted
}

// Label names the node for diagnostics: the tag for elements, the
// component name for components, with the key when present.
func (v *VNode) Label() string {
	if v == nil {
		return "<nil>"
	}
	name := v.Tag
	if v.Kind == KindComponent {
		name = v.Name
		if name == "" {
			name = "component"
		}
	}
	if v.Key != "" {
		return name + "#" + v.Key
	}
	return name
}

// SameType reports whether next can update a node mounted from prev in
// place: same kind and, for elements, the same tag, for components the
// same component function.
func SameType(prev, next *VNode) bool {
	if prev == nil || next == nil || prev.Kind != next.Kind {
		return false
	}
	switch prev.Kind {
	case KindElement:
		return prev.Tag == next.Tag
	case KindComponent:
		return SameComponent(prev.Comp, next.Comp)
	}
	return false
}

// SameComponent compares components by function identity. Closures built
// from the same function literal are the same component.
func SameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// IdenticalComponent reports whether a and b are the same function value,
// captured variables included. Two closures from one literal are the same
// component but not identical.
func IdenticalComponent(a, b Component) bool {
	return sameFunc(a, b)
}

// Ref receives the host handle of the element it is attached to.
type Ref struct {
	current any
}

// NewRef creates an empty Ref.
func NewRef() *Ref {
	return &Ref{}
}

// Current returns the attached host handle, or nil.
func (r *Ref) Current() any {
	if r == nil {
		return nil
	}
	return r.current
}

// Attach sets the handle. Called by the renderer after the element is created.
func (r *Ref) Attach(h any) {
	if r != nil {
		r.current = h
	}
}

// Detach clears the handle. Called by the renderer before the element is destroyed.
func (r *Ref) Detach() {
	if r != nil {
		r.current = nil
	}
}
