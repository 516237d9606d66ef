package main

import (
	"testing"

	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
	"github.com/vango-dev/reactor/pkg/vtest"
)

// mountTodo mounts the demo with a store created on the harness runtime.
func mountTodo(t *testing.T, initial []todo) (*vtest.Harness, *todoStore) {
	t.Helper()
	var st *todoStore
	h := vtest.Mount(t, func(o *reactive.Owner, p vdom.Props) *vdom.VNode {
		if st == nil {
			st = newTodoStore(o.Runtime(), initial)
		}
		return vdom.C(todoApp(st))
	})
	return h, st
}

func TestTodoMount(t *testing.T) {
	h, _ := mountTodo(t, sampleTodos())
	h.ExpectContains(`text="3 of 3 left"`)
	h.ExpectContains(`label text="write the reconciler"`)
	h.ExpectElement("button")
	h.ExpectNoErrors()
}

func TestTodoToggleEvent(t *testing.T) {
	h, _ := mountTodo(t, sampleTodos())
	h.Take()

	checks := h.Host.Find("check", "checked", vdom.Bool(false))
	if len(checks) != 3 {
		t.Fatalf("found %d unchecked items, want 3", len(checks))
	}
	h.Fire(checks[0], "toggle")

	h.ExpectContains(`text="2 of 3 left"`)
	ops := h.Take()
	if len(ops) != 2 {
		t.Fatalf("toggle issued %d ops, want 2:\n%v", len(ops), ops)
	}
	for _, op := range ops {
		if op.Kind != protocol.OpApply {
			t.Errorf("op %s, want apply", op)
		}
	}
}

func TestTodoReorderMovesOnly(t *testing.T) {
	h, st := mountTodo(t, sampleTodos())
	h.Take()

	h.Batch(func() { st.move(2, 0) })

	for _, op := range h.Take() {
		if op.Kind != protocol.OpSetParent {
			t.Errorf("reorder issued %s, want moves only", op)
		}
	}
}

func TestTodoClearDone(t *testing.T) {
	h, st := mountTodo(t, sampleTodos())
	h.Batch(func() {
		st.toggle("a")
		st.toggle("c")
	})
	h.Take()

	h.Fire(h.Find("button", "text", "clear done"), "click")

	h.ExpectNotContains("design the graph")
	h.ExpectNotContains("ship it")
	h.ExpectContains(`text="1 of 1 left"`)
	if got := len(st.items.Peek()); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestTodoStoreNoOpWrite(t *testing.T) {
	h, st := mountTodo(t, sampleTodos())
	h.Take()

	st.replace(sampleTodos())
	h.ExpectNoOps()
}

func TestTodoStoreAdd(t *testing.T) {
	h, st := mountTodo(t, nil)
	h.ExpectContains(`text="0 of 0 left"`)

	id := st.add("first")
	if id != "t1" {
		t.Errorf("add() id = %q, want t1", id)
	}
	h.ExpectContains(`label text="first"`)
	h.ExpectContains(`text="1 of 1 left"`)
}
