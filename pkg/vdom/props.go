package vdom

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// PropKind discriminates Property.
type PropKind uint8

const (
	PropStatic PropKind = iota // fixed Value
	PropBound                  // reactive Source feeding the host property
	PropEvent                  // input event handler
	PropData                   // opaque component data, never sent to a host
)

// String returns the string representation of the PropKind.
func (k PropKind) String() string {
	switch k {
	case PropStatic:
		return "static"
	case PropBound:
		return "bound"
	case PropEvent:
		return "event"
	case PropData:
		return "data"
	default:
		return "unknown"
	}
}

// Handler receives the arguments of a host input event.
type Handler func(args ...Value)

// Property is one entry of a property map.
type Property struct {
	Kind    PropKind
	Value   Value           // PropStatic
	Source  reactive.Source // PropBound
	Handler Handler         // PropEvent
	Data    any             // PropData
}

// Resolve returns the value a host should see: the static value or the
// bound cell's current value read without tracking.
func (p Property) Resolve() Value {
	switch p.Kind {
	case PropStatic:
		return p.Value
	case PropBound:
		if p.Source == nil {
			return Nil()
		}
		return ValueOf(p.Source.PeekAny())
	}
	return Nil()
}

// Same reports whether q needs no host update relative to p: equal static
// values, or the same bound cell. Two event props are always the same
// because handlers are swapped without touching the host.
func (p Property) Same(q Property) bool {
	if p.Kind != q.Kind {
		return false
	}
	switch p.Kind {
	case PropStatic:
		return p.Value.Equal(q.Value)
	case PropBound:
		if p.Source == nil || q.Source == nil {
			return p.Source == nil && q.Source == nil
		}
		return p.Source.ID() == q.Source.ID()
	case PropEvent:
		return true
	case PropData:
		return reflect.DeepEqual(p.Data, q.Data)
	}
	return false
}

// Props maps property names to properties.
type Props map[string]Property

// Names returns the property names in sorted order.
func (p Props) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Get returns the resolved value of name, or nil.
func (p Props) Get(name string) Value {
	prop, ok := p[name]
	if !ok {
		return Nil()
	}
	return prop.Resolve()
}

// Text returns the resolved value of name as text, formatting non-text values.
func (p Props) Text(name string) string {
	v := p.Get(name)
	if s, ok := v.AsText(); ok {
		return s
	}
	if v.IsNil() {
		return ""
	}
	return v.String()
}

// Source returns the cell bound to name, or nil.
func (p Props) Source(name string) reactive.Source {
	if prop, ok := p[name]; ok && prop.Kind == PropBound {
		return prop.Source
	}
	return nil
}

// Handler returns the event handler registered under name, or nil.
func (p Props) Handler(name string) Handler {
	if prop, ok := p[name]; ok && prop.Kind == PropEvent {
		return prop.Handler
	}
	return nil
}

// Data returns the opaque data stored under name, or nil.
func (p Props) Data(name string) any {
	if prop, ok := p[name]; ok && prop.Kind == PropData {
		return prop.Data
	}
	return nil
}

// Children returns the child nodes a component was given.
func (p Props) Children() []*VNode {
	children, _ := p.Data(ChildrenProp).([]*VNode)
	return children
}

// Equal reports whether two component prop maps would render the same.
// Event handlers compare as function values: a closure evaluated again is a
// different handler even when it comes from the same literal.
func (p Props) Equal(o Props) bool {
	if len(p) != len(o) {
		return false
	}
	for name, a := range p {
		b, ok := o[name]
		if !ok || !a.Same(b) {
			return false
		}
		if a.Kind == PropEvent && !sameFunc(a.Handler, b.Handler) {
			return false
		}
	}
	return true
}

// sameFunc compares the closure words of two func values. Top-level
// functions and capture-free literals share a static closure; every other
// evaluation of a literal allocates its own.
func sameFunc[F Handler | Component](a, b F) bool {
	return *(*unsafe.Pointer)(unsafe.Pointer(&a)) == *(*unsafe.Pointer)(unsafe.Pointer(&b))
}

// PropChange is one difference between two element prop maps.
type PropChange struct {
	Name    string
	Prev    Property
	Next    Property
	Added   bool
	Removed bool
}

// DiffProps returns the properties that differ between prev and next, in
// name order. Handler swaps between two event props are not changes.
func DiffProps(prev, next Props) []PropChange {
	var changes []PropChange
	for _, name := range next.Names() {
		n := next[name]
		p, ok := prev[name]
		switch {
		case !ok:
			changes = append(changes, PropChange{Name: name, Next: n, Added: true})
		case !p.Same(n):
			changes = append(changes, PropChange{Name: name, Prev: p, Next: n})
		}
	}
	for _, name := range prev.Names() {
		if _, ok := next[name]; !ok {
			changes = append(changes, PropChange{Name: name, Prev: prev[name], Removed: true})
		}
	}
	return changes
}
