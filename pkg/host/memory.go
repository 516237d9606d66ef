package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Op is one recorded host operation.
type Op = protocol.HostOp

// ErrUnknownHandle is returned for operations on handles the host does not
// know, including destroyed ones.
var ErrUnknownHandle = errors.New("host: unknown handle")

type memNode struct {
	tag      string
	props    map[string]vdom.Value
	parent   Handle
	children []Handle
	events   map[string]map[uint64]vdom.Handler
}

// Memory is an in-memory host. It records every operation in order and
// keeps the resulting object tree. Memory is safe for concurrent use;
// event handlers run outside its lock.
type Memory struct {
	mu       sync.Mutex
	next     Handle
	subSeq   uint64
	nodes    map[Handle]*memNode
	log      []Op
	failures map[protocol.HostOpKind]error
}

// NewMemory creates an empty host.
func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[Handle]*memNode),
		failures: make(map[protocol.HostOpKind]error),
	}
}

// NewContainer creates a root object of the given kind. It is not recorded
// in the op log.
func (m *Memory) NewContainer(kind string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alloc(kind, nil)
}

func (m *Memory) alloc(kind string, props map[string]vdom.Value) Handle {
	m.next++
	n := &memNode{tag: kind, props: make(map[string]vdom.Value, len(props))}
	for k, v := range props {
		n.props[k] = v
	}
	m.nodes[m.next] = n
	return m.next
}

// FailOn makes every later operation of kind fail with err. A nil err
// clears the failure.
func (m *Memory) FailOn(kind protocol.HostOpKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, kind)
		return
	}
	m.failures[kind] = err
}

func (m *Memory) failure(kind protocol.HostOpKind) error {
	return m.failures[kind]
}

// Create implements Adapter.
func (m *Memory) Create(kind string, props map[string]vdom.Value) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(protocol.OpCreate); err != nil {
		return 0, err
	}
	h := m.alloc(kind, props)
	logged := make(map[string]vdom.Value, len(props))
	for k, v := range props {
		logged[k] = v
	}
	m.record(Op{Kind: protocol.OpCreate, Handle: uint64(h), Tag: kind, Props: logged})
	return h, nil
}

// ApplyProperty implements Adapter. A Nil value removes the property.
func (m *Memory) ApplyProperty(h Handle, name string, v vdom.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(protocol.OpApply); err != nil {
		return err
	}
	n, ok := m.nodes[h]
	if !ok {
		return fmt.Errorf("%w: apply %s on %d", ErrUnknownHandle, name, h)
	}
	if v.IsNil() {
		delete(n.props, name)
	} else {
		n.props[name] = v
	}
	m.record(Op{Kind: protocol.OpApply, Handle: uint64(h), Name: name, Value: v})
	return nil
}

// SetParent implements Adapter. index is clamped to the parent's child count.
func (m *Memory) SetParent(h, parent Handle, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(protocol.OpSetParent); err != nil {
		return err
	}
	n, ok := m.nodes[h]
	if !ok {
		return fmt.Errorf("%w: setparent %d", ErrUnknownHandle, h)
	}
	p, ok := m.nodes[parent]
	if !ok {
		return fmt.Errorf("%w: parent %d", ErrUnknownHandle, parent)
	}
	m.detach(h, n)
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = append(p.children, 0)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = h
	n.parent = parent
	m.record(Op{Kind: protocol.OpSetParent, Handle: uint64(h), Parent: uint64(parent), Index: index})
	return nil
}

func (m *Memory) detach(h Handle, n *memNode) {
	if n.parent == 0 {
		return
	}
	if p, ok := m.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = 0
}

// Destroy implements Adapter. Children still attached are orphaned.
func (m *Memory) Destroy(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(protocol.OpDestroy); err != nil {
		return err
	}
	n, ok := m.nodes[h]
	if !ok {
		return fmt.Errorf("%w: destroy %d", ErrUnknownHandle, h)
	}
	m.detach(h, n)
	for _, c := range n.children {
		if cn, ok := m.nodes[c]; ok {
			cn.parent = 0
		}
	}
	delete(m.nodes, h)
	m.record(Op{Kind: protocol.OpDestroy, Handle: uint64(h)})
	return nil
}

// SubscribeEvent implements Adapter. The subscription is recorded once per
// handler.
func (m *Memory) SubscribeEvent(h Handle, event string, cb vdom.Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(protocol.OpSubscribe); err != nil {
		return nil, err
	}
	n, ok := m.nodes[h]
	if !ok {
		return nil, fmt.Errorf("%w: subscribe %s on %d", ErrUnknownHandle, event, h)
	}
	if n.events == nil {
		n.events = make(map[string]map[uint64]vdom.Handler)
	}
	if n.events[event] == nil {
		n.events[event] = make(map[uint64]vdom.Handler)
	}
	m.subSeq++
	id := m.subSeq
	n.events[event][id] = cb
	m.record(Op{Kind: protocol.OpSubscribe, Handle: uint64(h), Name: event})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			n, ok := m.nodes[h]
			if !ok {
				return
			}
			delete(n.events[event], id)
			m.record(Op{Kind: protocol.OpUnsubscribe, Handle: uint64(h), Name: event})
		})
	}, nil
}

func (m *Memory) record(op Op) {
	m.log = append(m.log, op)
}

// Fire delivers an input event to every handler subscribed on h. It
// reports whether any handler ran.
func (m *Memory) Fire(h Handle, event string, args ...vdom.Value) bool {
	m.mu.Lock()
	var handlers []vdom.Handler
	if n, ok := m.nodes[h]; ok {
		ids := make([]uint64, 0, len(n.events[event]))
		for id := range n.events[event] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			handlers = append(handlers, n.events[event][id])
		}
	}
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(args...)
	}
	return len(handlers) > 0
}

// Log returns a copy of the recorded operations.
func (m *Memory) Log() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.log))
	copy(out, m.log)
	return out
}

// TakeLog returns the recorded operations and clears the log.
func (m *Memory) TakeLog() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.log
	m.log = nil
	return out
}

// Exists reports whether h is live.
func (m *Memory) Exists(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[h]
	return ok
}

// Len returns the number of live objects, containers included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// Tag returns the kind h was created with.
func (m *Memory) Tag(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[h]; ok {
		return n.tag
	}
	return ""
}

// Parent returns the parent of h, or zero.
func (m *Memory) Parent(h Handle) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[h]; ok {
		return n.parent
	}
	return 0
}

// Children returns the ordered children of h.
func (m *Memory) Children(h Handle) []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[h]
	if !ok {
		return nil
	}
	out := make([]Handle, len(n.children))
	copy(out, n.children)
	return out
}

// Prop returns the current value of one property of h.
func (m *Memory) Prop(h Handle, name string) vdom.Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[h]; ok {
		return n.props[name]
	}
	return vdom.Nil()
}

// Subscribed reports how many handlers are subscribed to event on h.
func (m *Memory) Subscribed(h Handle, event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[h]; ok {
		return len(n.events[event])
	}
	return 0
}

// Find returns the live handles whose kind is tag and whose prop name
// equals v, in handle order.
func (m *Memory) Find(tag, name string, v vdom.Value) []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Handle
	for h, n := range m.nodes {
		if n.tag == tag && n.props[name].Equal(v) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dump renders the subtree under h, one object per line, indented by
// depth. Properties are listed in name order:
//
//	list
//	  item key="a" text="Apple"
func (m *Memory) Dump(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sb strings.Builder
	m.dump(&sb, h, 0)
	return sb.String()
}

func (m *Memory) dump(sb *strings.Builder, h Handle, depth int) {
	n, ok := m.nodes[h]
	if !ok {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.tag)
	names := make([]string, 0, len(n.props))
	for name := range n.props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(n.props[name].String())
	}
	sb.WriteString("\n")
	for _, c := range n.children {
		m.dump(sb, c, depth+1)
	}
}

// Ensure Memory implements Adapter.
var _ Adapter = (*Memory)(nil)
