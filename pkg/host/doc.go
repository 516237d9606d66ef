// Package host defines the contract between the renderer and a concrete UI
// host, and ships two hosts.
//
// The renderer never touches host objects directly. It asks an Adapter to
// create objects for primitive element kinds, set single properties, order
// objects under their parents, destroy them, and report input events:
//
//	h, _ := adapter.Create("label", map[string]vdom.Value{"text": vdom.Text("hi")})
//	adapter.SetParent(h, container, 0)
//	stop, _ := adapter.SubscribeEvent(h, "click", onClick)
//
// Memory records every operation and keeps an inspectable tree; it backs
// tests and the demo CLI. Remote streams operations to a peer over a
// websocket connection using the protocol package and dispatches the input
// events the peer reports back.
package host
