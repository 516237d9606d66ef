package vdom

// Match pairs a rendered next child with the previous child it retains.
type Match struct {
	Next  int    // Index in next
	Prev  int    // Index in prev, -1 when the child is created
	Key   string // Child key, if any
	Pos   int    // Position among the rendered next children
	Moved bool   // Retained and Pos differs from the previous index
}

// Duplicate is a next child skipped because an earlier sibling already
// used its key.
type Duplicate struct {
	Key   string
	Index int // Index in next of the skipped child
	First int // Index in next of the canonical child
}

// Plan is the result of reconciling one parent's children.
type Plan struct {
	Matches    []Match     // One per rendered next child, in order
	Destroy    []int       // Previous indices not retained, ascending
	Duplicates []Duplicate // Skipped children, in order

	prevKeys []string
}

// Reconcile plans how to turn the previously rendered children prev into
// next. prev must contain only mounted children, in host order.
//
// Keyed children match the previous child with the same key. Unkeyed
// children match the previous unkeyed children by position, in order; this
// is weaker than keys and recreates nodes when unkeyed children change
// order or type. A match whose kind, tag or component differs is a create
// plus a destroy. Nil entries in next are skipped.
func Reconcile(prev, next []*VNode) Plan {
	plan := Plan{prevKeys: make([]string, len(prev))}

	// Build lookups: key -> prev index, and the unkeyed pool.
	keyed := make(map[string]int, len(prev))
	var pool []int
	for i, child := range prev {
		if child == nil {
			continue
		}
		plan.prevKeys[i] = child.Key
		if child.Key == "" {
			pool = append(pool, i)
			continue
		}
		if _, exists := keyed[child.Key]; !exists {
			keyed[child.Key] = i
		}
	}

	retained := make([]bool, len(prev))
	seen := make(map[string]int, len(next))
	pos := 0

	for ni, child := range next {
		if child == nil {
			continue
		}
		m := Match{Next: ni, Prev: -1, Key: child.Key}

		if child.Key != "" {
			if first, dup := seen[child.Key]; dup {
				plan.Duplicates = append(plan.Duplicates, Duplicate{Key: child.Key, Index: ni, First: first})
				continue
			}
			seen[child.Key] = ni
			if pi, ok := keyed[child.Key]; ok && !retained[pi] && SameType(prev[pi], child) {
				m.Prev = pi
			}
		} else if len(pool) > 0 {
			pi := pool[0]
			pool = pool[1:]
			if SameType(prev[pi], child) {
				m.Prev = pi
			}
		}

		if m.Prev >= 0 {
			retained[m.Prev] = true
			m.Moved = m.Prev != pos
		}
		m.Pos = pos
		pos++
		plan.Matches = append(plan.Matches, m)
	}

	for i, child := range prev {
		if child != nil && !retained[i] {
			plan.Destroy = append(plan.Destroy, i)
		}
	}
	return plan
}
