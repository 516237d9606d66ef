package host

import (
	"strconv"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// Handle identifies a host object. Zero is never a valid handle.
type Handle uint64

// String returns the decimal form of h.
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Adapter is implemented by a concrete UI host.
//
// Implementations own validation of kinds and property names; the renderer
// passes them through unchanged. An error from any method is reported by
// the renderer and degrades only the node it concerns.
type Adapter interface {
	// Create instantiates a host object for a primitive element kind with
	// resolved property values.
	Create(kind string, props map[string]vdom.Value) (Handle, error)

	// ApplyProperty sets a single property on an existing object.
	ApplyProperty(h Handle, name string, v vdom.Value) error

	// SetParent attaches h under parent at index, or moves it there.
	SetParent(h, parent Handle, index int) error

	// Destroy releases h and any event connections bound to it.
	Destroy(h Handle) error

	// SubscribeEvent wires cb to a native input signal of h.
	SubscribeEvent(h Handle, event string, cb vdom.Handler) (unsubscribe func(), err error)
}

// Flusher is implemented by adapters that buffer operations. The renderer
// calls Flush at the end of every mount or update pass.
type Flusher interface {
	Flush() error
}

// Flush flushes a if it buffers operations.
func Flush(a Adapter) error {
	if f, ok := a.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
