package vdom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates Value.
type ValueKind uint8

const (
	ValueNil ValueKind = iota
	ValueNumber
	ValueText
	ValueBool
	ValueColor
	ValueEnum
	ValueComposite
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case ValueNil:
		return "nil"
	case ValueNumber:
		return "number"
	case ValueText:
		return "text"
	case ValueBool:
		return "bool"
	case ValueColor:
		return "color"
	case ValueEnum:
		return "enum"
	case ValueComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// String formats the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Composite is a named tuple of values, e.g. an edge inset or a point.
type Composite struct {
	Name  string
	Items []Value
}

// Value is a host property value. The zero Value is nil.
// Values are immutable and compared with Equal.
type Value struct {
	kind  ValueKind
	num   float64
	str   string
	b     bool
	color Color
	comp  *Composite
}

// Nil returns the nil Value.
func Nil() Value { return Value{} }

// Number returns a number Value.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// Int returns a number Value from an integer.
func Int(i int) Value { return Number(float64(i)) }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: ValueText, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: ValueBool, b: b} }

// RGBA returns a color Value.
func RGBA(r, g, b, a uint8) Value {
	return Value{kind: ValueColor, color: Color{R: r, G: g, B: b, A: a}}
}

// Enum returns an enum Value. Enums are symbolic names such as "row" or
// "center"; hosts map them to native constants.
func Enum(name string) Value { return Value{kind: ValueEnum, str: name} }

// Compose returns a composite Value.
func Compose(name string, items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: ValueComposite, comp: &Composite{Name: name, Items: cp}}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNil reports whether v is the nil Value.
func (v Value) IsNil() bool { return v.kind == ValueNil }

// AsNumber returns the number and whether v is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == ValueNumber }

// AsText returns the text and whether v is text.
func (v Value) AsText() (string, bool) { return v.str, v.kind == ValueText }

// AsBool returns the boolean and whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == ValueBool }

// AsColor returns the color and whether v is a color.
func (v Value) AsColor() (Color, bool) { return v.color, v.kind == ValueColor }

// AsEnum returns the enum name and whether v is an enum.
func (v Value) AsEnum() (string, bool) { return v.str, v.kind == ValueEnum }

// AsComposite returns the composite and whether v is one.
func (v Value) AsComposite() (Composite, bool) {
	if v.kind != ValueComposite || v.comp == nil {
		return Composite{}, false
	}
	return *v.comp, true
}

// Equal reports whether v and o hold the same value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueNil:
		return true
	case ValueNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case ValueText, ValueEnum:
		return v.str == o.str
	case ValueBool:
		return v.b == o.b
	case ValueColor:
		return v.color == o.color
	case ValueComposite:
		if v.comp == o.comp {
			return true
		}
		if v.comp == nil || o.comp == nil {
			return false
		}
		if v.comp.Name != o.comp.Name || len(v.comp.Items) != len(o.comp.Items) {
			return false
		}
		for i := range v.comp.Items {
			if !v.comp.Items[i].Equal(o.comp.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for logs and test dumps.
func (v Value) String() string {
	switch v.kind {
	case ValueNil:
		return "nil"
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueText:
		return strconv.Quote(v.str)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueColor:
		return v.color.String()
	case ValueEnum:
		return ":" + v.str
	case ValueComposite:
		if v.comp == nil {
			return "()"
		}
		var b strings.Builder
		b.WriteString(v.comp.Name)
		b.WriteByte('(')
		for i, it := range v.comp.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(it.String())
		}
		b.WriteByte(')')
		return b.String()
	}
	return "?"
}

// ValueOf converts a Go value to a Value. Values pass through unchanged;
// numeric kinds become numbers; fmt.Stringers and unknown types become text.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Nil()
	case Value:
		return v
	case string:
		return Text(v)
	case bool:
		return Bool(v)
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case Color:
		return Value{kind: ValueColor, color: v}
	case Composite:
		return Compose(v.Name, v.Items...)
	case []Value:
		return Compose("list", v...)
	case fmt.Stringer:
		return Text(v.String())
	default:
		return Text(fmt.Sprint(v))
	}
}
