package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	f := NewFrame(FrameCommand, []byte{1, 2, 3})
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := []byte{0x02, 0x00, 0x00, 0x03, 1, 2, 3}
	if !bytes.Equal(data, want) {
		t.Errorf("Encode() = %v, want %v", data, want)
	}

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got.Type != FrameCommand || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("DecodeFrame() = %+v", got)
	}
}

func TestFrameErrors(t *testing.T) {
	if _, err := NewFrame(FrameEvent, make([]byte, MaxPayloadSize+1)).Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("Encode() error = %v, want ErrFrameTooLarge", err)
	}
	if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short header error = %v, want io.ErrUnexpectedEOF", err)
	}
	if _, err := DecodeFrame([]byte{0x01, 0x00, 0x00, 0x05, 1}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := map[FrameType]string{
		FrameHello:      "Hello",
		FrameEvent:      "Event",
		FrameCommand:    "Command",
		FrameRoute:      "Route",
		FrameError:      "Error",
		FrameType(0x7f): "Unknown",
	}
	for ft, want := range tests {
		if got := ft.String(); got != want {
			t.Errorf("FrameType(%d).String() = %q, want %q", ft, got, want)
		}
	}
}

func TestSvarint(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, 1 << 20, -(1 << 40)} {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("ReadSvarint() = %d, %v, want %d", got, err, v)
		}
	}
}

func TestZigZagLayout(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x01}},
		{1, []byte{0x02}},
		{-2, []byte{0x03}},
		{64, []byte{0x80, 0x01}},
	}
	for _, tt := range tests {
		e := NewEncoder()
		e.WriteSvarint(tt.v)
		if !bytes.Equal(e.Bytes(), tt.want) {
			t.Errorf("WriteSvarint(%d) = %v, want %v", tt.v, e.Bytes(), tt.want)
		}
	}
}

func TestDecoderErrors(t *testing.T) {
	if _, err := NewDecoder([]byte{0x80, 0x80}).ReadUvarint(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("incomplete varint error = %v", err)
	}
	overflow := bytes.Repeat([]byte{0xff}, 11)
	if _, err := NewDecoder(overflow).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("overflow error = %v, want ErrVarintOverflow", err)
	}
	if _, err := NewDecoder([]byte{0x05, 'a'}).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short string error = %v", err)
	}
	e := NewEncoder()
	e.WriteUvarint(MaxStringLen + 1)
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("huge string error = %v, want ErrAllocationTooLarge", err)
	}
	if _, err := NewDecoder([]byte{0x02}).ReadBool(); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("bool error = %v, want ErrInvalidBool", err)
	}
}

func TestUint8AndBool(t *testing.T) {
	e := NewEncoder()
	e.WriteUint8(7)
	e.WriteBool(true)
	e.WriteBool(false)
	if !bytes.Equal(e.Bytes(), []byte{7, 1, 0}) {
		t.Fatalf("Bytes() = %v, want [7 1 0]", e.Bytes())
	}

	d := NewDecoder(e.Bytes())
	if v, err := d.ReadUint8(); err != nil || v != 7 {
		t.Errorf("ReadUint8() = %d, %v, want 7, nil", v, err)
	}
	if v, err := d.ReadBool(); err != nil || !v {
		t.Errorf("ReadBool() = %v, %v, want true, nil", v, err)
	}
	if v, err := d.ReadBool(); err != nil || v {
		t.Errorf("ReadBool() = %v, %v, want false, nil", v, err)
	}
	if _, err := d.ReadUint8(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint8() at end error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestHello(t *testing.T) {
	h := &Hello{Href: "http://x/app#/home", BaseHref: "/app/", PushState: true}
	got, err := DecodeHello(h.Encode())
	if err != nil {
		t.Fatalf("DecodeHello() error = %v", err)
	}
	if *got != *h {
		t.Errorf("DecodeHello() = %+v, want %+v", got, h)
	}
	if _, err := DecodeHello([]byte{0x01, 'x'}); err == nil {
		t.Error("DecodeHello() accepted a truncated payload")
	}
}

func TestEvent(t *testing.T) {
	ev := &Event{Kind: EventHashChange, Href: "http://x/#/a"}
	got, err := DecodeEvent(ev.Encode())
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if *got != *ev {
		t.Errorf("DecodeEvent() = %+v, want %+v", got, ev)
	}
	if _, err := DecodeEvent([]byte{0x09, 0x00}); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("DecodeEvent() error = %v, want ErrUnknownOp", err)
	}
}

func TestCommand(t *testing.T) {
	tests := []Command{
		{Op: OpPushState, Arg: "http://x/#/a"},
		{Op: OpReplaceState, Arg: "http://x/#/b"},
		{Op: OpSetHash, Arg: "/c"},
		{Op: OpLocationReplace, Arg: "/app/#/d"},
		{Op: OpGo, N: -2},
	}
	for _, c := range tests {
		got, err := DecodeCommand(c.Encode())
		if err != nil {
			t.Fatalf("%s: DecodeCommand() error = %v", c.Op, err)
		}
		if *got != c {
			t.Errorf("DecodeCommand() = %+v, want %+v", got, c)
		}
	}
	if _, err := DecodeCommand([]byte{0x42}); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("DecodeCommand() error = %v, want ErrUnknownOp", err)
	}
	if !strings.HasPrefix(Op(0x42).String(), "Op(") {
		t.Errorf("Op(0x42).String() = %q", Op(0x42).String())
	}
}

func TestRouteAndError(t *testing.T) {
	r := &Route{FullPath: "/users/1?tab=2", Name: "user"}
	got, err := DecodeRoute(r.Encode())
	if err != nil || *got != *r {
		t.Errorf("DecodeRoute() = %+v, %v, want %+v", got, err, r)
	}
	msg, err := DecodeError(EncodeError("bad hello"))
	if err != nil || msg != "bad hello" {
		t.Errorf("DecodeError() = %q, %v", msg, err)
	}
}
