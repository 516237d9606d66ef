package vdom

// OpKind is the type of a planned child operation.
type OpKind uint8

const (
	OpCreate  OpKind = 0x01 // realize a new subtree
	OpUpdate  OpKind = 0x02 // retain and update properties
	OpMove    OpKind = 0x03 // retained node changed position
	OpDestroy OpKind = 0x04 // tear down a previous subtree
)

// String returns the string representation of the OpKind.
func (op OpKind) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpUpdate:
		return "Update"
	case OpMove:
		return "Move"
	case OpDestroy:
		return "Destroy"
	default:
		return "Unknown"
	}
}

// Op is one planned operation on a parent's children.
type Op struct {
	Kind OpKind
	Key  string // Key of the node, if any
	Prev int    // Index in the previous children, -1 for creates
	Next int    // Index in the next children, -1 for destroys
}

// Ops flattens the plan: destroys first, then for each next child in order
// a create, or an update followed by a move when the child moved.
func (p Plan) Ops() []Op {
	ops := make([]Op, 0, len(p.Destroy)+len(p.Matches))
	for _, i := range p.Destroy {
		ops = append(ops, Op{Kind: OpDestroy, Key: p.prevKeys[i], Prev: i, Next: -1})
	}
	for _, m := range p.Matches {
		if m.Prev < 0 {
			ops = append(ops, Op{Kind: OpCreate, Key: m.Key, Prev: -1, Next: m.Next})
			continue
		}
		ops = append(ops, Op{Kind: OpUpdate, Key: m.Key, Prev: m.Prev, Next: m.Next})
		if m.Moved {
			ops = append(ops, Op{Kind: OpMove, Key: m.Key, Prev: m.Prev, Next: m.Next})
		}
	}
	return ops
}

// Count returns how many ops of kind the plan contains.
func (p Plan) Count(kind OpKind) int {
	n := 0
	for _, op := range p.Ops() {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
