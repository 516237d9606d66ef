package reactive

// Scope is where new cells, effects and owners are registered: a Runtime
// (its root owner) or an Owner.
type Scope interface {
	scopeOwner() *Owner
}

// Cell is any reactive container that can be read and subscribed to.
type Cell interface {
	ID() ID
	cellRuntime() *Runtime
}

// Source is a cell whose value can be read without knowing its type.
// The renderer binds element properties to Sources.
type Source interface {
	Cell

	// PeekAny returns the current value without tracking.
	PeekAny() any

	// Watch calls fn after every delivered change until stop is called.
	Watch(fn func()) (stop func())
}

// Readable is the typed read side shared by State and Computed.
type Readable[T any] interface {
	Source
	Get() T
	Peek() T
	Subscribe(fn func(T)) (unsubscribe func())
}

var (
	_ Readable[int] = (*State[int])(nil)
	_ Readable[int] = (*Computed[int])(nil)
)
