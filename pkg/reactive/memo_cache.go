package reactive

import (
	"reflect"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// memoEntry is a cached result together with the dependency versions it was
// computed from. An entry is only reusable while every version still matches.
type memoEntry[T any] struct {
	key      any
	deps     []ID
	versions []uint64
	value    T
}

// memoCache is a bounded LRU of memo-keyed results. It is only touched on
// the runtime goroutine, so it uses the non-locking LRU.
type memoCache[T any] struct {
	lru *simplelru.LRU[any, *memoEntry[T]]
}

func newMemoCache[T any](capacity int) *memoCache[T] {
	if capacity < 1 {
		capacity = 1
	}
	// NewLRU only fails for a non-positive size.
	lru, _ := simplelru.NewLRU[any, *memoEntry[T]](capacity, nil)
	return &memoCache[T]{lru: lru}
}

// cacheable reports whether key can be used as a map key.
func cacheable(key any) bool {
	if key == nil {
		return false
	}
	return reflect.ValueOf(key).Comparable()
}

func (m *memoCache[T]) get(key any) (*memoEntry[T], bool) {
	if !cacheable(key) {
		return nil, false
	}
	return m.lru.Get(key)
}

func (m *memoCache[T]) put(e *memoEntry[T]) {
	if !cacheable(e.key) {
		return
	}
	m.lru.Add(e.key, e)
}

func (m *memoCache[T]) len() int {
	return m.lru.Len()
}

// versions snapshots the current version of each cell. ok is false when one
// of the cells no longer exists.
func (rt *Runtime) versions(ids []ID) (vs []uint64, ok bool) {
	vs = make([]uint64, len(ids))
	for i, id := range ids {
		rec, found := rt.graph.cells[id]
		if !found {
			return nil, false
		}
		vs[i] = rec.node.version()
	}
	return vs, true
}

// current reports whether every cell still has the recorded version.
func (rt *Runtime) current(ids []ID, vs []uint64) bool {
	if len(ids) != len(vs) {
		return false
	}
	for i, id := range ids {
		rec, ok := rt.graph.cells[id]
		if !ok || rec.node.version() != vs[i] {
			return false
		}
	}
	return true
}
