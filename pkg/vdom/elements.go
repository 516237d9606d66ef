package vdom

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Attr is a single named prop passed to a builder.
type Attr struct {
	Name string
	Prop Property
}

// IsEmpty returns true if this is an empty attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

// keyAttr is the reserved prop name that sets VNode.Key.
const keyAttr = "key"

// TextProp is the prop a plain string argument sets.
const TextProp = "text"

// ChildrenProp is the data prop carrying a component node's children.
const ChildrenProp = "children"

type refArg struct{ ref *Ref }

type nameArg string

// El creates an element node.
//
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string (sets the
// "text" prop), or the results of Key and WithRef.
func El(tag string, args ...any) *VNode {
	return createNode(&VNode{Kind: KindElement, Tag: tag}, args)
}

// C creates a component node. Arguments are the same as for El; child
// nodes are passed to the component as the ChildrenProp data prop (see
// Props.Children) and are rendered only if the component places them in
// its output.
func C(comp Component, args ...any) *VNode {
	return createNode(&VNode{Kind: KindComponent, Comp: comp, Name: componentName(comp)}, args)
}

// Named sets a component's display name. Use it with C:
//
//	vdom.C(TodoItem, vdom.Named("TodoItem"), vdom.Key(id))
func Named(name string) any {
	return nameArg(name)
}

func createNode(node *VNode, args []any) *VNode {
	node.Props = make(Props)
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Props[TextProp] = Property{Kind: PropStatic, Value: Text(v)}
		case refArg:
			node.Ref = v.ref
		case nameArg:
			node.Name = string(v)
		default:
			panic(fmt.Sprintf("vdom: unsupported argument %T for %s", arg, node.Label()))
		}
	}
	if node.Kind == KindComponent && len(node.Children) > 0 {
		node.Props[ChildrenProp] = Property{Kind: PropData, Data: node.Children}
	}
	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Name == keyAttr {
		v.Key = a.Prop.Resolve().keyString()
		return
	}
	if a.Prop.Kind == PropData && v.Kind != KindComponent {
		panic(fmt.Sprintf("vdom: data prop %q on element %s", a.Name, v.Tag))
	}
	v.Props[a.Name] = a.Prop
}

func (v Value) keyString() string {
	switch v.kind {
	case ValueText, ValueEnum:
		return v.str
	case ValueNil:
		return ""
	}
	return strings.Trim(v.String(), "\"")
}

// Prop sets a static property. x is converted with ValueOf.
func Prop(name string, x any) Attr {
	return Attr{Name: name, Prop: Property{Kind: PropStatic, Value: ValueOf(x)}}
}

// Bind binds a property to a reactive cell. The host property is updated
// whenever the cell notifies, without re-rendering the component.
func Bind(name string, src reactive.Source) Attr {
	return Attr{Name: name, Prop: Property{Kind: PropBound, Source: src}}
}

// On registers an input event handler.
func On(event string, h Handler) Attr {
	return Attr{Name: event, Prop: Property{Kind: PropEvent, Handler: h}}
}

// Data passes an arbitrary Go value to a component.
func Data(name string, x any) Attr {
	return Attr{Name: name, Prop: Property{Kind: PropData, Data: x}}
}

// Key sets the reconciliation key. Keys must be unique among siblings.
func Key(key any) Attr {
	return Attr{Name: keyAttr, Prop: Property{Kind: PropStatic, Value: ValueOf(key)}}
}

// WithRef attaches ref to the element.
func WithRef(ref *Ref) any {
	return refArg{ref: ref}
}

// componentName derives a display name from the function symbol.
func componentName(comp Component) string {
	if comp == nil {
		return ""
	}
	fn := runtime.FuncForPC(reflect.ValueOf(comp).Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
