package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned when a command or event kind is not recognized.
var ErrUnknownOp = errors.New("protocol: unknown operation")

// Hello is the first frame a tab sends.
type Hello struct {
	Href      string
	BaseHref  string
	PushState bool
}

// Encode encodes the hello payload.
func (h *Hello) Encode() []byte {
	e := NewEncoder()
	e.WriteString(h.Href)
	e.WriteString(h.BaseHref)
	e.WriteBool(h.PushState)
	return e.Bytes()
}

// DecodeHello decodes a hello payload.
func DecodeHello(payload []byte) (*Hello, error) {
	d := NewDecoder(payload)
	var h Hello
	var err error
	if h.Href, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("protocol: hello href: %w", err)
	}
	if h.BaseHref, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("protocol: hello base: %w", err)
	}
	if h.PushState, err = d.ReadBool(); err != nil {
		return nil, fmt.Errorf("protocol: hello pushState: %w", err)
	}
	return &h, nil
}

// EventKind identifies a browser navigation event.
type EventKind uint8

const (
	EventPopState   EventKind = 0x00
	EventHashChange EventKind = 0x01
)

// Event reports a navigation event that fired in the tab, with the
// address after it.
type Event struct {
	Kind EventKind
	Href string
}

// Encode encodes the event payload.
func (ev *Event) Encode() []byte {
	e := NewEncoder()
	e.WriteUint8(byte(ev.Kind))
	e.WriteString(ev.Href)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(payload []byte) (*Event, error) {
	d := NewDecoder(payload)
	kind, err := d.ReadUint8()
	if err != nil {
		return nil, err
	}
	if EventKind(kind) != EventPopState && EventKind(kind) != EventHashChange {
		return nil, fmt.Errorf("%w: event kind %d", ErrUnknownOp, kind)
	}
	href, err := d.ReadString()
	if err != nil {
		return nil, fmt.Errorf("protocol: event href: %w", err)
	}
	return &Event{Kind: EventKind(kind), Href: href}, nil
}

// Op identifies an address command.
type Op uint8

const (
	OpPushState       Op = 0x01
	OpReplaceState    Op = 0x02
	OpSetHash         Op = 0x03
	OpLocationReplace Op = 0x04
	OpGo              Op = 0x05
)

// String returns the DOM name of the operation.
func (op Op) String() string {
	switch op {
	case OpPushState:
		return "pushState"
	case OpReplaceState:
		return "replaceState"
	case OpSetHash:
		return "setHash"
	case OpLocationReplace:
		return "locationReplace"
	case OpGo:
		return "go"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Command asks the tab to change its address. OpGo carries N; every other
// op carries Arg (a URL, or a fragment for OpSetHash).
type Command struct {
	Op  Op
	Arg string
	N   int
}

// Encode encodes the command payload.
func (c *Command) Encode() []byte {
	e := NewEncoder()
	e.WriteUint8(byte(c.Op))
	if c.Op == OpGo {
		e.WriteSvarint(int64(c.N))
	} else {
		e.WriteString(c.Arg)
	}
	return e.Bytes()
}

// DecodeCommand decodes a command payload.
func DecodeCommand(payload []byte) (*Command, error) {
	d := NewDecoder(payload)
	b, err := d.ReadUint8()
	if err != nil {
		return nil, err
	}
	c := &Command{Op: Op(b)}
	switch c.Op {
	case OpGo:
		n, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		c.N = int(n)
	case OpPushState, OpReplaceState, OpSetHash, OpLocationReplace:
		if c.Arg, err = d.ReadString(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, c.Op)
	}
	return c, nil
}

// Route tells the tab which route is current.
type Route struct {
	FullPath string
	Name     string
}

// Encode encodes the route payload.
func (r *Route) Encode() []byte {
	e := NewEncoder()
	e.WriteString(r.FullPath)
	e.WriteString(r.Name)
	return e.Bytes()
}

// DecodeRoute decodes a route payload.
func DecodeRoute(payload []byte) (*Route, error) {
	d := NewDecoder(payload)
	var r Route
	var err error
	if r.FullPath, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeError encodes an error frame payload.
func EncodeError(message string) []byte {
	e := NewEncoder()
	e.WriteString(message)
	return e.Bytes()
}

// DecodeError decodes an error frame payload.
func DecodeError(payload []byte) (string, error) {
	return NewDecoder(payload).ReadString()
}
