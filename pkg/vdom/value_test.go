package vdom

import (
	"math"
	"testing"
	"time"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil", Nil(), Value{}, true},
		{"numbers", Number(1.5), Number(1.5), true},
		{"int and number", Int(2), Number(2), true},
		{"nan", Number(math.NaN()), Number(math.NaN()), true},
		{"different numbers", Number(1), Number(2), false},
		{"text", Text("a"), Text("a"), true},
		{"text vs enum", Text("row"), Enum("row"), false},
		{"bool", Bool(true), Bool(false), false},
		{"color", RGBA(1, 2, 3, 255), RGBA(1, 2, 3, 255), true},
		{"composite", Compose("inset", Int(1), Int(2)), Compose("inset", Int(1), Int(2)), true},
		{"composite name", Compose("inset", Int(1)), Compose("point", Int(1)), false},
		{"composite items", Compose("inset", Int(1)), Compose("inset", Int(1), Int(2)), false},
		{"kind mismatch", Int(0), Bool(false), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Number(2.5), "2.5"},
		{Text("hi"), `"hi"`},
		{Bool(true), "true"},
		{RGBA(255, 0, 16, 255), "#ff0010ff"},
		{Enum("center"), ":center"},
		{Compose("point", Int(1), Int(2)), "point(1, 2)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want Value
	}{
		{nil, Nil()},
		{Text("x"), Text("x")},
		{"x", Text("x")},
		{true, Bool(true)},
		{42, Number(42)},
		{int64(-3), Number(-3)},
		{uint8(7), Number(7)},
		{float32(0.5), Number(0.5)},
		{Color{R: 1, A: 255}, RGBA(1, 0, 0, 255)},
		{[]Value{Int(1)}, Compose("list", Int(1))},
		{time.Second, Text("1s")},
		{struct{ A int }{1}, Text("{1}")},
	}
	for _, tt := range tests {
		if got := ValueOf(tt.in); !got.Equal(tt.want) {
			t.Errorf("ValueOf(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if f, ok := Number(3).AsNumber(); !ok || f != 3 {
		t.Error("AsNumber failed")
	}
	if _, ok := Text("3").AsNumber(); ok {
		t.Error("AsNumber on text should fail")
	}
	if s, ok := Enum("row").AsEnum(); !ok || s != "row" {
		t.Error("AsEnum failed")
	}
	if c, ok := Compose("p", Int(1)).AsComposite(); !ok || c.Name != "p" || len(c.Items) != 1 {
		t.Error("AsComposite failed")
	}
	if Compose("p").Kind() != ValueComposite {
		t.Error("Kind mismatch")
	}
	if ValueComposite.String() != "composite" {
		t.Error("ValueKind.String mismatch")
	}
}
