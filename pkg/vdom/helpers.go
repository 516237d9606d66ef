package vdom

// If returns node if condition is true, nil otherwise.
// Nil children are skipped by the builders and the reconciler.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns ifTrue if condition is true, ifFalse otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When calls fn only if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Map renders one node per item. Give the nodes keys when items can be
// reordered, inserted or removed.
//
//	vdom.Map(todos, func(t Todo, _ int) *vdom.VNode {
//	    return vdom.C(TodoRow, vdom.Key(t.ID), vdom.Data("todo", t))
//	})
func Map[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if n := fn(item, i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Repeat renders fn(i) for i in [0, n).
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	out := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Compact returns children without nil entries.
func Compact(children []*VNode) []*VNode {
	out := children[:0:0]
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
