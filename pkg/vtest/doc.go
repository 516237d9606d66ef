// Package vtest provides a harness for testing components.
//
// Mount renders a component on an in-memory host and gives access to the
// recorded host operations, the resulting tree, and the reported errors.
// The harness is torn down when the test ends.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, Counter)
//	    h.ExpectContains(`text=0`)
//
//	    h.Take()
//	    h.Fire(h.Find("button", "text", 0), "click")
//	    h.ExpectOps(protocol.OpApply)
//	    h.ExpectContains(`text=1`)
//	}
//
// # Assertions
//
// Expect helpers report through t.Errorf and keep the test going:
//
//	h.ExpectElement("button")
//	h.ExpectNoOps()
//	h.ExpectNoErrors()
//	h.ExpectError(render.ErrDuplicateKey)
//
// # Options
//
// Runtime and renderer options pass through:
//
//	h := vtest.Mount(t, App,
//	    vtest.WithRuntimeOptions(reactive.WithMaxFlushPasses(10)),
//	    vtest.WithRenderOptions(render.WithErrorChannel(8)),
//	)
package vtest
