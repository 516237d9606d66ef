package protocol

import (
	"fmt"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// WriteValue appends a tagged vdom.Value. The tag byte is the ValueKind.
func (e *Encoder) WriteValue(v vdom.Value) {
	e.WriteByte(byte(v.Kind()))
	switch v.Kind() {
	case vdom.ValueNil:
	case vdom.ValueNumber:
		f, _ := v.AsNumber()
		e.WriteFloat64(f)
	case vdom.ValueText:
		s, _ := v.AsText()
		e.WriteString(s)
	case vdom.ValueBool:
		b, _ := v.AsBool()
		e.WriteBool(b)
	case vdom.ValueColor:
		c, _ := v.AsColor()
		e.WriteBytes([]byte{c.R, c.G, c.B, c.A})
	case vdom.ValueEnum:
		s, _ := v.AsEnum()
		e.WriteString(s)
	case vdom.ValueComposite:
		c, _ := v.AsComposite()
		e.WriteString(c.Name)
		e.WriteUvarint(uint64(len(c.Items)))
		for _, it := range c.Items {
			e.WriteValue(it)
		}
	}
}

// ReadValue reads a value written by WriteValue.
func (d *Decoder) ReadValue() (vdom.Value, error) {
	return d.readValue(0)
}

func (d *Decoder) readValue(depth int) (vdom.Value, error) {
	if depth > MaxValueDepth {
		return vdom.Nil(), ErrTooDeep
	}
	tag, err := d.ReadByte()
	if err != nil {
		return vdom.Nil(), err
	}
	switch vdom.ValueKind(tag) {
	case vdom.ValueNil:
		return vdom.Nil(), nil
	case vdom.ValueNumber:
		f, err := d.ReadFloat64()
		return vdom.Number(f), err
	case vdom.ValueText:
		s, err := d.ReadString()
		return vdom.Text(s), err
	case vdom.ValueBool:
		b, err := d.ReadBool()
		return vdom.Bool(b), err
	case vdom.ValueColor:
		var rgba [4]byte
		for i := range rgba {
			if rgba[i], err = d.ReadByte(); err != nil {
				return vdom.Nil(), err
			}
		}
		return vdom.RGBA(rgba[0], rgba[1], rgba[2], rgba[3]), nil
	case vdom.ValueEnum:
		s, err := d.ReadString()
		return vdom.Enum(s), err
	case vdom.ValueComposite:
		name, err := d.ReadString()
		if err != nil {
			return vdom.Nil(), err
		}
		n, err := d.ReadCollectionCount()
		if err != nil {
			return vdom.Nil(), err
		}
		items := make([]vdom.Value, n)
		for i := range items {
			if items[i], err = d.readValue(depth + 1); err != nil {
				return vdom.Nil(), err
			}
		}
		return vdom.Compose(name, items...), nil
	default:
		return vdom.Nil(), fmt.Errorf("protocol: unknown value tag 0x%02x", tag)
	}
}
