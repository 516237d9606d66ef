package protocol

import "github.com/vango-dev/reactor/pkg/vdom"

// Event is an input event reported by the peer for a subscribed handle.
//
// Wire format: handle (varint) + name (string) + arg count (varint) + values
type Event struct {
	Handle uint64
	Name   string
	Args   []vdom.Value
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Handle)
	e.WriteString(ev.Name)
	e.WriteUvarint(uint64(len(ev.Args)))
	for _, a := range ev.Args {
		e.WriteValue(a)
	}
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(payload []byte) (*Event, error) {
	d := NewDecoder(payload)
	var (
		ev  Event
		err error
	)
	if ev.Handle, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ev.Args = make([]vdom.Value, n)
	for i := range ev.Args {
		if ev.Args[i], err = d.ReadValue(); err != nil {
			return nil, err
		}
	}
	return &ev, nil
}

// Hello is sent by the peer when it connects.
//
// Wire format: container handle (varint) + client name (string)
type Hello struct {
	Container uint64
	Client    string
}

// EncodeHello encodes a hello payload.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteUvarint(h.Container)
	e.WriteString(h.Client)
	return e.Bytes()
}

// DecodeHello decodes a hello payload.
func DecodeHello(payload []byte) (*Hello, error) {
	d := NewDecoder(payload)
	var (
		h   Hello
		err error
	)
	if h.Container, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if h.Client, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &h, nil
}

// ErrorMessage is the payload of a FrameError.
//
// Wire format: code (string) + message (string)
type ErrorMessage struct {
	Code    string
	Message string
}

// EncodeErrorMessage encodes an error payload.
func EncodeErrorMessage(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(m.Code)
	e.WriteString(m.Message)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error payload.
func DecodeErrorMessage(payload []byte) (*ErrorMessage, error) {
	d := NewDecoder(payload)
	var (
		m   ErrorMessage
		err error
	)
	if m.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if m.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &m, nil
}
