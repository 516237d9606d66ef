// Package vdom provides the virtual element tree for reactor.
//
// A render produces an immutable tree of VNodes describing host primitives
// (elements) and user components. The tree is consumed by the renderer,
// which diffs it against what is mounted and drives a host adapter.
//
// # Core Types
//
// VNode is either an element (a host primitive identified by its tag) or a
// component invocation. Props maps property names to a static Value, a
// reactive Source bound to the host property, an event Handler, or, for
// components only, opaque Data.
//
// Value is the closed set of property values a host understands: nil,
// number, text, bool, color, enum and composite.
//
// # Element API
//
// Nodes are created with variadic builders:
//
//	vdom.El("panel", vdom.Prop("title", "Todos"),
//	    vdom.El("label", vdom.Bind("text", count)),
//	    vdom.El("button", vdom.On("click", onAdd), "Add"),
//	    vdom.C(TodoList, vdom.Data("items", items)),
//	)
//
// # Reconciliation
//
// Reconcile compares the previous and next children of one parent and
// returns a Plan: which children are retained (and whether they moved),
// which are created and which are destroyed. Keyed children match by key;
// unkeyed children match by position among the unkeyed siblings only, so
// reordering unkeyed children may recreate them. Duplicate sibling keys are
// reported in the Plan; the first occurrence is kept.
package vdom
