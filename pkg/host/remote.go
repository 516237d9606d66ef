package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Conn is the message transport Remote runs on. *websocket.Conn
// implements it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
}

// deadlineConn is implemented by transports with write deadlines.
type deadlineConn interface {
	SetWriteDeadline(t time.Time) error
}

// ContainerHandle is the handle of the peer's root container. Remote
// allocates object handles above it.
const ContainerHandle Handle = 1

// ErrClosed is returned by operations on a closed Remote. Other adapters may
// return it once their host is gone; renderers do not report it on teardown.
var ErrClosed = errors.New("host: remote closed")

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithRemoteLogger sets the logger for transport errors.
func WithRemoteLogger(l *slog.Logger) RemoteOption {
	return func(r *Remote) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithWriteTimeout sets the write deadline applied before each message
// when the transport supports deadlines.
func WithWriteTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		r.writeTimeout = d
	}
}

// Remote is a host living on the other side of a websocket. Operations are
// buffered and sent as FrameHostOps frames by Flush; input events read by
// ReadLoop are dispatched to subscribed handlers.
type Remote struct {
	conn         Conn
	logger       *slog.Logger
	writeTimeout time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	next    Handle
	subSeq  uint64
	live    map[Handle]struct{}
	events  map[Handle]map[string]map[uint64]vdom.Handler
	ops     []protocol.HostOp
	closed  bool
	client  string
}

// NewRemote wraps conn.
func NewRemote(conn Conn, opts ...RemoteOption) *Remote {
	r := &Remote{
		conn:         conn,
		logger:       slog.Default(),
		writeTimeout: 10 * time.Second,
		next:         ContainerHandle,
		live:         map[Handle]struct{}{ContainerHandle: {}},
		events:       make(map[Handle]map[string]map[uint64]vdom.Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Container returns the handle of the peer's root container.
func (r *Remote) Container() Handle { return ContainerHandle }

// Client returns the name the peer sent in its hello, if any.
func (r *Remote) Client() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client
}

func (r *Remote) enqueue(op protocol.HostOp) {
	r.ops = append(r.ops, op)
}

func (r *Remote) check(h Handle) error {
	if r.closed {
		return ErrClosed
	}
	if _, ok := r.live[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return nil
}

// Create implements Adapter.
func (r *Remote) Create(kind string, props map[string]vdom.Value) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	r.next++
	h := r.next
	r.live[h] = struct{}{}
	copied := make(map[string]vdom.Value, len(props))
	for k, v := range props {
		copied[k] = v
	}
	r.enqueue(protocol.HostOp{Kind: protocol.OpCreate, Handle: uint64(h), Tag: kind, Props: copied})
	return h, nil
}

// ApplyProperty implements Adapter.
func (r *Remote) ApplyProperty(h Handle, name string, v vdom.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(h); err != nil {
		return err
	}
	r.enqueue(protocol.HostOp{Kind: protocol.OpApply, Handle: uint64(h), Name: name, Value: v})
	return nil
}

// SetParent implements Adapter.
func (r *Remote) SetParent(h, parent Handle, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(h); err != nil {
		return err
	}
	if err := r.check(parent); err != nil {
		return err
	}
	r.enqueue(protocol.HostOp{Kind: protocol.OpSetParent, Handle: uint64(h), Parent: uint64(parent), Index: index})
	return nil
}

// Destroy implements Adapter. Event subscriptions on h are dropped locally;
// the peer releases its own connections.
func (r *Remote) Destroy(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(h); err != nil {
		return err
	}
	delete(r.live, h)
	delete(r.events, h)
	r.enqueue(protocol.HostOp{Kind: protocol.OpDestroy, Handle: uint64(h)})
	return nil
}

// SubscribeEvent implements Adapter. The peer is asked to report event
// only while at least one handler is subscribed.
func (r *Remote) SubscribeEvent(h Handle, event string, cb vdom.Handler) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(h); err != nil {
		return nil, err
	}
	if r.events[h] == nil {
		r.events[h] = make(map[string]map[uint64]vdom.Handler)
	}
	handlers := r.events[h][event]
	if handlers == nil {
		handlers = make(map[uint64]vdom.Handler)
		r.events[h][event] = handlers
		r.enqueue(protocol.HostOp{Kind: protocol.OpSubscribe, Handle: uint64(h), Name: event})
	}
	r.subSeq++
	id := r.subSeq
	handlers[id] = cb

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			handlers, ok := r.events[h][event]
			if !ok {
				return
			}
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(r.events[h], event)
				if !r.closed {
					r.enqueue(protocol.HostOp{Kind: protocol.OpUnsubscribe, Handle: uint64(h), Name: event})
				}
			}
		})
	}, nil
}

// Pending returns the number of buffered operations.
func (r *Remote) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// Flush sends buffered operations. Batches larger than one frame are split
// with FlagContinued set on every frame but the last.
func (r *Remote) Flush() error {
	r.mu.Lock()
	ops := r.ops
	r.ops = nil
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if len(ops) == 0 {
		return nil
	}
	frames, err := protocol.HostOpFrames(ops)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := r.write(f); err != nil {
			return err
		}
	}
	r.logger.Debug("sent host ops", "count", len(ops), "frames", len(frames))
	return nil
}

// SendError reports an error to the peer.
func (r *Remote) SendError(code, message string) error {
	payload := protocol.EncodeErrorMessage(&protocol.ErrorMessage{Code: code, Message: message})
	return r.write(protocol.NewFrame(protocol.FrameError, payload))
}

func (r *Remote) write(f *protocol.Frame) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if dc, ok := r.conn.(deadlineConn); ok && r.writeTimeout > 0 {
		if err := dc.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
			r.logger.Warn("set write deadline", "error", err)
		}
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
		r.logger.Error("write error", "error", err)
		return err
	}
	return nil
}

// ReadLoop reads frames from the peer until the connection fails or ctx is
// done. Each input event becomes a func handed to dispatch, which must run
// it on the goroutine that owns the renderer's runtime.
//
// A normal websocket close returns nil.
func (r *Remote) ReadLoop(ctx context.Context, dispatch func(func())) error {
	defer r.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			r.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			r.handleEvent(frame.Payload, dispatch)
		case protocol.FrameHello:
			hello, err := protocol.DecodeHello(frame.Payload)
			if err != nil {
				r.logger.Error("hello decode error", "error", err)
				continue
			}
			r.mu.Lock()
			r.client = hello.Client
			r.mu.Unlock()
			r.logger.Info("peer connected", "client", hello.Client)
		case protocol.FrameError:
			if m, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
				r.logger.Warn("peer error", "code", m.Code, "message", m.Message)
			}
		default:
			r.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

func (r *Remote) handleEvent(payload []byte, dispatch func(func())) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		r.logger.Error("event decode error", "error", err)
		return
	}
	h := Handle(ev.Handle)
	dispatch(func() {
		// Looked up at dispatch time so a handler removed in between is not called.
		for _, fn := range r.handlers(h, ev.Name) {
			fn(ev.Args...)
		}
	})
}

func (r *Remote) handlers(h Handle, event string) []vdom.Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.events[h][event]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]vdom.Handler, 0, len(ids))
	for _, id := range ids {
		out = append(out, set[id])
	}
	return out
}

// Close marks the remote closed. Buffered operations are discarded. The
// underlying connection is left to its owner.
func (r *Remote) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.ops = nil
}

// Ensure Remote implements Adapter and Flusher.
var (
	_ Adapter = (*Remote)(nil)
	_ Flusher = (*Remote)(nil)
)
