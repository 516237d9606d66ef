// Package protocol implements the binary wire format used to drive a remote
// host.
//
// A renderer running against host.Remote turns every host operation
// (create, apply property, set parent, destroy, subscribe, unsubscribe)
// into a HostOp and streams batches of them to the peer. The peer reports
// input events back as Event frames addressed by handle and event name.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): peer introduction, carries the root container handle
//   - FrameEvent (0x01): peer → renderer input events
//   - FrameHostOps (0x02): renderer → peer host operations
//   - FrameError (0x05): error report
//
// Integers are varints (ZigZag for signed values), strings are
// length-prefixed UTF-8 and floats are IEEE 754 big-endian.
package protocol
