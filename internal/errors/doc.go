// Package errors provides structured error values for the reactor engine.
//
// Every error reported by the reactive runtime, the reconciler or a host
// adapter carries a stable code that maps to a category and a short message:
//
//   - reactive: cell, computation, batch and effect failures (R001-R099)
//   - reconcile: virtual tree and component failures (V001-V099)
//   - host: host adapter failures (H001-H099)
//   - config: configuration loading failures (C001-C099)
//
// # Usage
//
//	err := errors.New(errors.CodeDuplicateKey).
//	    WithField("key", "row-3").
//	    WithField("parent", "Frame#list")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR V001: Duplicate sibling key
//	//
//	//   key=row-3 parent=Frame#list
//	//   ...
//
// Errors compare by code, so a registered sentinel can be matched with the
// standard library:
//
//	if errors.Is(err, reactive.ErrCycle) { ... }
package errors
