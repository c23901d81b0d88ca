// Package protocol implements the binary wire protocol spoken between a
// browser tab running the hashnav client script and a wsbrowser.Window.
//
// # Wire Format
//
// Every WebSocket message is one frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): client → server, the tab's address and capabilities
//   - FrameEvent (0x01): client → server, a popstate or hashchange
//   - FrameCommand (0x02): server → client, an address or history operation
//   - FrameRoute (0x03): server → client, the committed route for display
//   - FrameError (0x05): either direction, a fatal error message
//
// # Encoding
//
// Strings are varint length-prefixed UTF-8, signed integers are ZigZag
// varints, booleans are a single 0x00/0x01 byte.
package protocol
