// Package render mounts component trees onto a host and keeps them in sync
// with reactive state.
//
// A Renderer owns the live tree for one reactive.Runtime and one
// host.Adapter:
//
//	rt := reactive.NewRuntime()
//	mem := host.NewMemory()
//	r := render.New(rt, mem)
//	teardown := r.Render(ctx, App, mem.NewContainer("window"))
//	defer teardown()
//
// # Components
//
// A component is a vdom.Component. It runs inside its own reactive.Owner:
// state, computed cells and effects it creates belong to that instance and
// are disposed when the instance unmounts. Every cell the component reads
// while rendering is tracked; when one of them changes the instance is
// marked dirty and re-rendered once the notification pass settles, parents
// before children. A parent re-render also re-renders a child whose props
// changed. Nothing else re-invokes a component.
//
// # Reconciliation
//
// Children of each element are reconciled with vdom.Reconcile. Destroyed
// nodes run their cleanups and drop their subscriptions before the host is
// asked to destroy them. Created nodes are built detached and then placed.
// Retained nodes receive only the properties that changed. Placement issues
// SetParent for every moved node and for any node the host order would
// otherwise get wrong.
//
// Properties bound to a cell with vdom.Bind are applied to the host directly
// when the cell notifies, without re-rendering. Event handlers are swapped in
// place; the host subscription is made once per node and event.
//
// # Errors
//
// Failures are local. A duplicate key (ErrDuplicateKey) skips the later
// sibling, a panicking component (ErrComponentFailed) keeps its previous
// output, and a failing host call (ErrHostFailed) degrades that node only.
// Every error goes through the runtime's reporter and, when configured, to
// the channel returned by Errors.
//
// A Renderer is confined to the goroutine that owns its runtime. Other
// goroutines must go through reactive.Runtime.Do.
package render
