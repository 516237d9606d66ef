package protocol

import (
	"strings"
	"testing"

	"github.com/vango-dev/reactor/pkg/vdom"
)

func sampleOps() []HostOp {
	return []HostOp{
		{Kind: OpCreate, Handle: 1, Tag: "stack", Props: map[string]vdom.Value{"gap": vdom.Int(4), "axis": vdom.Enum("vertical")}},
		{Kind: OpCreate, Handle: 2, Tag: "label"},
		{Kind: OpApply, Handle: 2, Name: "text", Value: vdom.Text("hello")},
		{Kind: OpSetParent, Handle: 2, Parent: 1, Index: 0},
		{Kind: OpSubscribe, Handle: 2, Name: "click"},
		{Kind: OpUnsubscribe, Handle: 2, Name: "click"},
		{Kind: OpDestroy, Handle: 2},
	}
}

func TestHostOpsRoundTrip(t *testing.T) {
	ops := sampleOps()
	got, err := DecodeHostOps(EncodeHostOps(ops))
	if err != nil {
		t.Fatalf("DecodeHostOps() error = %v", err)
	}
	if len(got) != len(ops) {
		t.Fatalf("len = %d, want %d", len(got), len(ops))
	}
	for i, want := range ops {
		g := got[i]
		if g.Kind != want.Kind || g.Handle != want.Handle || g.Tag != want.Tag ||
			g.Name != want.Name || g.Parent != want.Parent || g.Index != want.Index {
			t.Errorf("op %d = %v, want %v", i, g, want)
		}
		if !g.Value.Equal(want.Value) {
			t.Errorf("op %d value = %s, want %s", i, g.Value, want.Value)
		}
		for name, v := range want.Props {
			if !g.Props[name].Equal(v) {
				t.Errorf("op %d prop %s = %s, want %s", i, name, g.Props[name], v)
			}
		}
	}
}

func TestHostOpsUnknownKind(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteByte(0x7E)
	e.WriteUvarint(1)
	if _, err := DecodeHostOps(e.Bytes()); err == nil {
		t.Error("DecodeHostOps() accepted an unknown op")
	}
}

func TestHostOpFramesSingle(t *testing.T) {
	frames, err := HostOpFrames(sampleOps())
	if err != nil {
		t.Fatalf("HostOpFrames() error = %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
	if frames[0].Flags.Has(FlagContinued) {
		t.Error("last frame carries FlagContinued")
	}
}

func TestHostOpFramesSplit(t *testing.T) {
	text := vdom.Text(strings.Repeat("x", 1000))
	var ops []HostOp
	for i := 0; i < 200; i++ {
		ops = append(ops, HostOp{Kind: OpApply, Handle: uint64(i), Name: "text", Value: text})
	}
	frames, err := HostOpFrames(ops)
	if err != nil {
		t.Fatalf("HostOpFrames() error = %v", err)
	}
	if len(frames) < 2 {
		t.Fatalf("frames = %d, want a split", len(frames))
	}
	var total int
	for i, f := range frames {
		if len(f.Payload) > MaxPayloadSize {
			t.Errorf("frame %d payload %d exceeds limit", i, len(f.Payload))
		}
		last := i == len(frames)-1
		if f.Flags.Has(FlagContinued) == last {
			t.Errorf("frame %d continued = %v", i, f.Flags.Has(FlagContinued))
		}
		batch, err := DecodeHostOps(f.Payload)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		for j, op := range batch {
			if op.Handle != uint64(total+j) {
				t.Fatalf("frame %d op %d handle = %d, want %d", i, j, op.Handle, total+j)
			}
		}
		total += len(batch)
	}
	if total != len(ops) {
		t.Errorf("decoded %d ops, want %d", total, len(ops))
	}
}

func TestHostOpFramesOversizedOp(t *testing.T) {
	op := HostOp{Kind: OpApply, Handle: 1, Name: "text", Value: vdom.Text(strings.Repeat("x", MaxPayloadSize))}
	if _, err := HostOpFrames([]HostOp{op}); err == nil {
		t.Error("HostOpFrames() accepted an op larger than a frame")
	}
}

func TestHostOpString(t *testing.T) {
	op := HostOp{Kind: OpSetParent, Handle: 3, Parent: 1, Index: 2}
	if got := op.String(); got != "setparent 3 -> 1@2" {
		t.Errorf("String() = %q", got)
	}
}
