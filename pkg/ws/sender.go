package ws

import "fmt"

// Token identifies a connection within its runtime.
type Token uint64

func (t Token) String() string { return fmt.Sprintf("#%d", uint64(t)) }

// CommandKind says what an outbound Command asks the runtime to do.
type CommandKind int

const (
	CommandSend CommandKind = iota
	CommandBroadcast
	CommandClose
	CommandPing
	CommandShutdown
)

func (k CommandKind) String() string {
	switch k {
	case CommandSend:
		return "send"
	case CommandBroadcast:
		return "broadcast"
	case CommandClose:
		return "close"
	case CommandPing:
		return "ping"
	case CommandShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a request travelling from a Sender to its runtime.
type Command struct {
	Token   Token
	Kind    CommandKind
	Message Message
	Code    CloseCode
	Reason  string
	Data    []byte
}

// Outbound is the command path of a runtime. Enqueue must not block.
type Outbound interface {
	Enqueue(cmd Command) error
}

// Channel is an Outbound backed by a buffered Go channel.
type Channel chan Command

// Enqueue adds cmd to the channel, failing with ErrQueueFull instead of
// blocking.
func (ch Channel) Enqueue(cmd Command) error {
	select {
	case ch <- cmd:
		return nil
	default:
		return Wrap(KindCapacity, fmt.Sprintf("enqueue %s for %s", cmd.Kind, cmd.Token), ErrQueueFull)
	}
}

// Sender enqueues outbound commands for one connection. It is a small value:
// copy it freely and use it from any goroutine, also after the connection's
// handler is gone.
type Sender struct {
	token Token
	out   Outbound
}

// NewSender binds token to the runtime's command path.
func NewSender(token Token, out Outbound) Sender {
	return Sender{token: token, out: out}
}

// Token returns the connection this sender addresses.
func (s Sender) Token() Token { return s.token }

// Send queues msg on this sender's connection.
func (s Sender) Send(msg Message) error {
	return s.enqueue(Command{Kind: CommandSend, Message: msg})
}

// Broadcast queues msg on every connection of the runtime.
func (s Sender) Broadcast(msg Message) error {
	return s.enqueue(Command{Kind: CommandBroadcast, Message: msg})
}

// Close starts the closing handshake with code.
func (s Sender) Close(code CloseCode) error {
	return s.CloseWithReason(code, "")
}

// CloseWithReason starts the closing handshake with code and reason.
func (s Sender) CloseWithReason(code CloseCode, reason string) error {
	return s.enqueue(Command{Kind: CommandClose, Code: code, Reason: reason})
}

// Ping queues a ping on this sender's connection.
func (s Sender) Ping(data []byte) error {
	return s.enqueue(Command{Kind: CommandPing, Data: data})
}

// Shutdown asks the runtime to shut down gracefully.
func (s Sender) Shutdown() error {
	return s.enqueue(Command{Kind: CommandShutdown})
}

func (s Sender) enqueue(cmd Command) error {
	if s.out == nil {
		return Wrap(KindInternal, cmd.Kind.String(), ErrNoOutbound)
	}
	cmd.Token = s.token
	return s.out.Enqueue(cmd)
}
