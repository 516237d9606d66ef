package main

import (
	"fmt"
	"slices"

	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// todo is one entry of the demo list. The JSON form is what --watch reads.
type todo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// todoStore holds the list outside any component so that external producers
// (the scripted demo, the file watcher, a remote peer) can write it.
type todoStore struct {
	items   *reactive.State[[]todo]
	summary *reactive.Computed[string]
	seq     int
}

func newTodoStore(s reactive.Scope, initial []todo) *todoStore {
	st := &todoStore{items: reactive.NewState(s, slices.Clone(initial)), seq: len(initial)}
	st.summary = reactive.NewAutoComputed(s, func() string {
		left := 0
		for _, it := range st.items.Get() {
			if !it.Done {
				left++
			}
		}
		return fmt.Sprintf("%d of %d left", left, len(st.items.Get()))
	})
	return st
}

func sampleTodos() []todo {
	return []todo{
		{ID: "a", Title: "design the graph"},
		{ID: "b", Title: "write the reconciler"},
		{ID: "c", Title: "ship it"},
	}
}

func (st *todoStore) add(title string) string {
	st.seq++
	id := fmt.Sprintf("t%d", st.seq)
	st.items.Update(func(items []todo) []todo {
		return append(slices.Clone(items), todo{ID: id, Title: title})
	})
	return id
}

func (st *todoStore) toggle(id string) {
	st.items.Update(func(items []todo) []todo {
		out := slices.Clone(items)
		for i := range out {
			if out[i].ID == id {
				out[i].Done = !out[i].Done
			}
		}
		return out
	})
}

func (st *todoStore) remove(id string) {
	st.items.Update(func(items []todo) []todo {
		return slices.DeleteFunc(slices.Clone(items), func(t todo) bool { return t.ID == id })
	})
}

// move moves the item at from to index to.
func (st *todoStore) move(from, to int) {
	st.items.Update(func(items []todo) []todo {
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
			return items
		}
		out := slices.Clone(items)
		it := out[from]
		out = slices.Delete(out, from, from+1)
		return slices.Insert(out, to, it)
	})
}

func (st *todoStore) clearDone() {
	st.items.Update(func(items []todo) []todo {
		return slices.DeleteFunc(slices.Clone(items), func(t todo) bool { return t.Done })
	})
}

func (st *todoStore) replace(items []todo) {
	st.items.Set(slices.Clone(items))
}

// todoApp is the root component: a bound summary label, the keyed list and
// a button clearing finished items.
func todoApp(st *todoStore) vdom.Component {
	return func(o *reactive.Owner, p vdom.Props) *vdom.VNode {
		items := st.items.Get()
		rows := make([]*vdom.VNode, 0, len(items))
		for _, it := range items {
			rows = append(rows, vdom.C(todoItem,
				vdom.Named("TodoItem"),
				vdom.Key(it.ID),
				vdom.Data("todo", it),
				vdom.Data("store", st),
			))
		}
		return vdom.El("column",
			vdom.El("label", vdom.Prop("role", "summary"), vdom.Bind("text", st.summary)),
			vdom.El("list", rows),
			vdom.El("button", "clear done", vdom.On("click", func(...vdom.Value) { st.clearDone() })),
		)
	}
}

func todoItem(o *reactive.Owner, p vdom.Props) *vdom.VNode {
	it, _ := p.Data("todo").(todo)
	st, _ := p.Data("store").(*todoStore)
	return vdom.El("row",
		vdom.El("check",
			vdom.Prop("checked", it.Done),
			vdom.On("toggle", func(...vdom.Value) { st.toggle(it.ID) }),
		),
		vdom.El("label", it.Title),
	)
}
