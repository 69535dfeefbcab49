package ws

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// MessageType distinguishes text from binary messages.
type MessageType int

const (
	MessageText MessageType = iota + 1
	MessageBinary
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Message is a complete data message.
type Message struct {
	Type MessageType
	Data []byte
}

// Text returns a text message holding s.
func Text(s string) Message {
	return Message{Type: MessageText, Data: []byte(s)}
}

// Binary returns a binary message holding b.
func Binary(b []byte) Message {
	return Message{Type: MessageBinary, Data: b}
}

func (m Message) IsText() bool   { return m.Type == MessageText }
func (m Message) IsBinary() bool { return m.Type == MessageBinary }
func (m Message) Len() int       { return len(m.Data) }

// String returns the payload for text messages and a short description for
// binary ones.
func (m Message) String() string {
	if m.IsText() && utf8.Valid(m.Data) {
		return string(m.Data)
	}
	return fmt.Sprintf("<%s message, %d bytes>", m.Type, len(m.Data))
}

// Opcode is the RFC 6455 frame opcode.
type Opcode uint8

const (
	OpContinue Opcode = 0x0
	OpText     Opcode = 0x1
	OpBinary   Opcode = 0x2
	OpClose    Opcode = 0x8
	OpPing     Opcode = 0x9
	OpPong     Opcode = 0xA
)

// IsControl reports whether op is a close, ping or pong opcode.
func (op Opcode) IsControl() bool { return op >= OpClose }

func (op Opcode) String() string {
	switch op {
	case OpContinue:
		return "continue"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return fmt.Sprintf("Opcode(%#x)", uint8(op))
	}
}

// Frame is a single protocol frame as seen by FrameHandler.
type Frame struct {
	Final   bool
	Opcode  Opcode
	Payload []byte
}

// FrameOf returns msg as a single final frame.
func FrameOf(msg Message) Frame {
	op := OpBinary
	if msg.IsText() {
		op = OpText
	}
	return Frame{Final: true, Opcode: op, Payload: msg.Data}
}

// Message converts a final text or binary frame back into a message.
func (f Frame) Message() (Message, error) {
	if !f.Final {
		return Message{}, NewError(KindProtocol, "fragmented frame cannot be delivered as a message")
	}
	switch f.Opcode {
	case OpText:
		return Text(string(f.Payload)), nil
	case OpBinary:
		return Binary(f.Payload), nil
	default:
		return Message{}, NewError(KindProtocol, fmt.Sprintf("%s frame cannot be delivered as a message", f.Opcode))
	}
}

// CloseCode is a close status code from the RFC 6455 registry.
type CloseCode uint16

const (
	CloseNormal      CloseCode = 1000
	CloseAway        CloseCode = 1001
	CloseProtocol    CloseCode = 1002
	CloseUnsupported CloseCode = 1003
	CloseStatus      CloseCode = 1005
	CloseAbnormal    CloseCode = 1006
	CloseInvalid     CloseCode = 1007
	ClosePolicy      CloseCode = 1008
	CloseSize        CloseCode = 1009
	CloseExtension   CloseCode = 1010
	CloseError       CloseCode = 1011
	CloseRestart     CloseCode = 1012
	CloseAgain       CloseCode = 1013
)

var closeCodeNames = map[CloseCode]string{
	CloseNormal:      "normal",
	CloseAway:        "going away",
	CloseProtocol:    "protocol error",
	CloseUnsupported: "unsupported data",
	CloseStatus:      "no status",
	CloseAbnormal:    "abnormal closure",
	CloseInvalid:     "invalid payload",
	ClosePolicy:      "policy violation",
	CloseSize:        "message too big",
	CloseExtension:   "extension required",
	CloseError:       "internal error",
	CloseRestart:     "service restart",
	CloseAgain:       "try again later",
}

func (c CloseCode) String() string {
	if name, ok := closeCodeNames[c]; ok {
		return fmt.Sprintf("%d (%s)", uint16(c), name)
	}
	return fmt.Sprintf("%d", uint16(c))
}

// Handshake describes the connection a handler was built for.
type Handshake struct {
	Token       Token
	Role        Role
	RemoteAddr  string
	Path        string
	Subprotocol string
	Header      http.Header
}
