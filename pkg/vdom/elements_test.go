package vdom

import (
	"testing"

	"github.com/vango-dev/reactor/pkg/reactive"
)

func card(o *reactive.Owner, p Props) *VNode {
	return El("panel", Prop("title", p.Text("title")))
}

func badge(o *reactive.Owner, p Props) *VNode {
	return El("label")
}

func TestElBuilder(t *testing.T) {
	rt := reactive.NewRuntime()
	count := reactive.NewState(rt, 3)
	clicked := false

	n := El("button",
		Key("save"),
		Prop("enabled", true),
		Bind("badge", count),
		On("click", func(...Value) { clicked = true }),
		"Save",
		nil,
		El("icon"),
		[]*VNode{El("label"), nil},
	)

	if n.Kind != KindElement || n.Tag != "button" {
		t.Errorf("unexpected node %s", n.Label())
	}
	if n.Key != "save" {
		t.Errorf("Key = %q, want save", n.Key)
	}
	if _, ok := n.Props["key"]; ok {
		t.Error("key must not be stored as a prop")
	}
	if got := n.Props.Get("text"); !got.Equal(Text("Save")) {
		t.Errorf("text = %v", got)
	}
	if got := n.Props.Get("badge"); !got.Equal(Int(3)) {
		t.Errorf("bound prop should resolve to 3, got %v", got)
	}
	if n.Props.Source("badge") == nil {
		t.Error("expected bound source")
	}
	n.Props.Handler("click")()
	if !clicked {
		t.Error("handler not stored")
	}
	if len(n.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(n.Children))
	}
	if got := n.Props.Names(); len(got) != 4 || got[0] != "badge" {
		t.Errorf("Names() = %v", got)
	}
}

func TestComponentBuilder(t *testing.T) {
	n := C(card, Key(7), Prop("title", "Hello"), Data("model", []int{1, 2}))

	if n.Kind != KindComponent {
		t.Fatalf("expected component, got %s", n.Kind)
	}
	if n.Key != "7" {
		t.Errorf("Key = %q, want 7", n.Key)
	}
	if n.Name != "card" {
		t.Errorf("Name = %q, want card", n.Name)
	}
	if n.Label() != "card#7" {
		t.Errorf("Label = %q", n.Label())
	}
	if d, ok := n.Props.Data("model").([]int); !ok || len(d) != 2 {
		t.Errorf("Data = %v", n.Props.Data("model"))
	}

	named := C(card, Named("Card"))
	if named.Name != "Card" {
		t.Errorf("Named: got %q", named.Name)
	}
}

func TestDataOnElementPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for data prop on element")
		}
	}()
	El("panel", Data("x", 1))
}

func TestSameType(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", El("row"), El("row"), true},
		{"different tag", El("row"), El("cell"), false},
		{"same component", C(card), C(card), true},
		{"different component", C(card), C(badge), false},
		{"element vs component", El("card"), C(card), false},
		{"nil", nil, El("row"), false},
	}
	for _, tt := range tests {
		if got := SameType(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SameType = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRef(t *testing.T) {
	ref := NewRef()
	n := El("canvas", WithRef(ref))
	if n.Ref != ref {
		t.Fatal("ref not attached to node")
	}
	ref.Attach("handle-1")
	if ref.Current() != "handle-1" {
		t.Errorf("Current = %v", ref.Current())
	}
	ref.Detach()
	if ref.Current() != nil {
		t.Error("Detach should clear the handle")
	}
	var nilRef *Ref
	if nilRef.Current() != nil {
		t.Error("nil ref should be safe")
	}
}

func TestHelpers(t *testing.T) {
	if If(false, El("a")) != nil {
		t.Error("If(false) should be nil")
	}
	if IfElse(false, El("a"), El("b")).Tag != "b" {
		t.Error("IfElse picked the wrong branch")
	}
	if When(true, func() *VNode { return El("c") }).Tag != "c" {
		t.Error("When(true) should call fn")
	}
	items := Map([]string{"x", "y"}, func(s string, i int) *VNode {
		return El("row", Key(s))
	})
	if len(items) != 2 || items[1].Key != "y" {
		t.Errorf("Map produced %v", items)
	}
	if got := Repeat(3, func(i int) *VNode { return If(i != 1, El("row")) }); len(got) != 2 {
		t.Errorf("Repeat should skip nil, got %d", len(got))
	}
	if got := Compact([]*VNode{nil, El("a"), nil}); len(got) != 1 {
		t.Errorf("Compact: got %d", len(got))
	}
}

func TestComponentChildrenProp(t *testing.T) {
	n := C(card, El("label", "a"), El("label", "b"))
	kids := n.Props.Children()
	if len(kids) != 2 || kids[0].Props.Text(TextProp) != "a" {
		t.Fatalf("Children() = %v", kids)
	}
	if got := El("box", El("label")).Props.Children(); got != nil {
		t.Errorf("element Children() = %v, want nil", got)
	}
}
