package protocol

import (
	"fmt"
	"sort"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// HostOpKind identifies a host operation.
type HostOpKind uint8

const (
	OpCreate      HostOpKind = 0x01 // Instantiate a host object
	OpApply       HostOpKind = 0x02 // Set one property
	OpSetParent   HostOpKind = 0x03 // Attach or move within a parent
	OpDestroy     HostOpKind = 0x04 // Release a host object
	OpSubscribe   HostOpKind = 0x05 // Start reporting an input event
	OpUnsubscribe HostOpKind = 0x06 // Stop reporting an input event
)

// String returns the string representation of the HostOpKind.
func (k HostOpKind) String() string {
	switch k {
	case OpCreate:
		return "Create"
	case OpApply:
		return "Apply"
	case OpSetParent:
		return "SetParent"
	case OpDestroy:
		return "Destroy"
	case OpSubscribe:
		return "Subscribe"
	case OpUnsubscribe:
		return "Unsubscribe"
	default:
		return "Unknown"
	}
}

// HostOp is one host operation addressed by handle.
//
// Wire format per op:
//
//	kind (1 byte) + handle (varint) + kind-specific body
//	  Create:      tag (string) + prop count (varint) + (name, value)*
//	  Apply:       name (string) + value
//	  SetParent:   parent (varint) + index (varint)
//	  Destroy:     -
//	  Subscribe:   event (string)
//	  Unsubscribe: event (string)
type HostOp struct {
	Kind   HostOpKind
	Handle uint64
	Tag    string                // Create
	Props  map[string]vdom.Value // Create
	Name   string                // Apply property name, Subscribe/Unsubscribe event name
	Value  vdom.Value            // Apply
	Parent uint64                // SetParent
	Index  int                   // SetParent
}

// String renders the op for logs.
func (op HostOp) String() string {
	switch op.Kind {
	case OpCreate:
		return fmt.Sprintf("create %d %s", op.Handle, op.Tag)
	case OpApply:
		return fmt.Sprintf("apply %d %s=%s", op.Handle, op.Name, op.Value)
	case OpSetParent:
		return fmt.Sprintf("setparent %d -> %d@%d", op.Handle, op.Parent, op.Index)
	case OpDestroy:
		return fmt.Sprintf("destroy %d", op.Handle)
	case OpSubscribe, OpUnsubscribe:
		return fmt.Sprintf("%s %d %s", op.Kind, op.Handle, op.Name)
	}
	return "unknown"
}

// EncodeHostOp appends a single op.
func EncodeHostOp(e *Encoder, op HostOp) {
	e.WriteByte(byte(op.Kind))
	e.WriteUvarint(op.Handle)
	switch op.Kind {
	case OpCreate:
		e.WriteString(op.Tag)
		names := make([]string, 0, len(op.Props))
		for name := range op.Props {
			names = append(names, name)
		}
		sort.Strings(names)
		e.WriteUvarint(uint64(len(names)))
		for _, name := range names {
			e.WriteString(name)
			e.WriteValue(op.Props[name])
		}
	case OpApply:
		e.WriteString(op.Name)
		e.WriteValue(op.Value)
	case OpSetParent:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(uint64(op.Index))
	case OpSubscribe, OpUnsubscribe:
		e.WriteString(op.Name)
	}
}

// DecodeHostOp reads a single op.
func DecodeHostOp(d *Decoder) (HostOp, error) {
	var op HostOp
	kind, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = HostOpKind(kind)
	if op.Handle, err = d.ReadUvarint(); err != nil {
		return op, err
	}
	switch op.Kind {
	case OpCreate:
		if op.Tag, err = d.ReadString(); err != nil {
			return op, err
		}
		n, err := d.ReadCollectionCount()
		if err != nil {
			return op, err
		}
		op.Props = make(map[string]vdom.Value, n)
		for i := 0; i < n; i++ {
			name, err := d.ReadString()
			if err != nil {
				return op, err
			}
			v, err := d.ReadValue()
			if err != nil {
				return op, err
			}
			op.Props[name] = v
		}
	case OpApply:
		if op.Name, err = d.ReadString(); err != nil {
			return op, err
		}
		if op.Value, err = d.ReadValue(); err != nil {
			return op, err
		}
	case OpSetParent:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return op, err
		}
		idx, err := d.ReadUvarint()
		if err != nil {
			return op, err
		}
		op.Index = int(idx)
	case OpDestroy:
	case OpSubscribe, OpUnsubscribe:
		if op.Name, err = d.ReadString(); err != nil {
			return op, err
		}
	default:
		return op, fmt.Errorf("protocol: unknown host op 0x%02x", kind)
	}
	return op, nil
}

// EncodeHostOps encodes ops as a count-prefixed batch.
func EncodeHostOps(ops []HostOp) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(len(ops)))
	for _, op := range ops {
		EncodeHostOp(e, op)
	}
	return e.Bytes()
}

// DecodeHostOps decodes a batch written by EncodeHostOps.
func DecodeHostOps(payload []byte) ([]HostOp, error) {
	d := NewDecoder(payload)
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ops := make([]HostOp, 0, n)
	for i := 0; i < n; i++ {
		op, err := DecodeHostOp(d)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// HostOpFrames packs ops into as few FrameHostOps frames as fit within
// MaxPayloadSize. Every frame except the last carries FlagContinued.
// A single op larger than a frame is an error.
func HostOpFrames(ops []HostOp) ([]*Frame, error) {
	var (
		frames []*Frame
		batch  []HostOp
		size   int
	)
	scratch := NewEncoder()
	flush := func() {
		if len(batch) == 0 {
			return
		}
		frames = append(frames, &Frame{Type: FrameHostOps, Flags: FlagContinued, Payload: EncodeHostOps(batch)})
		batch, size = nil, 0
	}
	for _, op := range ops {
		scratch.Reset()
		EncodeHostOp(scratch, op)
		n := scratch.Len()
		if n+MaxVarintLen > MaxPayloadSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrFrameTooLarge, op.Kind, n)
		}
		if size+n+MaxVarintLen > MaxPayloadSize {
			flush()
		}
		batch = append(batch, op)
		size += n
	}
	flush()
	if len(frames) > 0 {
		frames[len(frames)-1].Flags &^= FlagContinued
	}
	return frames, nil
}

// MaxVarintLen is the maximum number of bytes a varint can occupy.
const MaxVarintLen = 10
