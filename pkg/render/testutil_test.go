package render

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type harness struct {
	t    *testing.T
	rt   *reactive.Runtime
	mem  *host.Memory
	r    *Renderer
	root host.Handle
	errs []error
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t}
	h.rt = reactive.NewRuntime(reactive.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	h.rt.OnError(func(err error) { h.errs = append(h.errs, err) })
	h.mem = host.NewMemory()
	h.r = New(h.rt, h.mem, opts...)
	h.root = h.mem.NewContainer("window")
	return h
}

func (h *harness) render(comp vdom.Component) func() {
	return h.r.Render(context.Background(), comp, h.root)
}

func (h *harness) hasError(target error) bool {
	for _, err := range h.errs {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}

// top returns the single object mounted in the container.
func (h *harness) top() host.Handle {
	h.t.Helper()
	kids := h.mem.Children(h.root)
	if len(kids) != 1 {
		h.t.Fatalf("container children = %v, want one", kids)
	}
	return kids[0]
}

func (h *harness) texts(parent host.Handle) []string {
	var out []string
	for _, c := range h.mem.Children(parent) {
		s, _ := h.mem.Prop(c, "text").AsText()
		out = append(out, s)
	}
	return out
}

func opKinds(ops []host.Op) []protocol.HostOpKind {
	out := make([]protocol.HostOpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func countOps(ops []host.Op, kind protocol.HostOpKind) int {
	n := 0
	for _, op := range ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func keyedList(items *reactive.State[[]string]) vdom.Component {
	return func(o *reactive.Owner, p vdom.Props) *vdom.VNode {
		return vdom.El("list", vdom.Map(items.Get(), func(s string, _ int) *vdom.VNode {
			return vdom.El("item", vdom.Key(s), s)
		}))
	}
}
