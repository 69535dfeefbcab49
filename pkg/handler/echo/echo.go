// Package echo sends every message back to the connection it came from.
package echo

import (
	"sync"

	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/ws"
)

// Factory builds echo handlers. Handlers of accepted connections prefix
// their replies; the factory keeps totals of the handlers it got back.
type Factory struct {
	Prefix string
	Logger *log.Logger

	mu          sync.Mutex
	connections int
	messages    int
}

// New returns a factory whose server side handlers prepend prefix.
func New(prefix string, logger *log.Logger) *Factory {
	return &Factory{Prefix: prefix, Logger: logger}
}

// ConnectionMade builds a handler that echoes verbatim.
func (f *Factory) ConnectionMade(out ws.Sender) *Handler {
	return &Handler{out: out}
}

// ServerConnected builds a handler that prefixes its replies.
func (f *Factory) ServerConnected(out ws.Sender) *Handler {
	return &Handler{out: out, prefix: f.Prefix}
}

// ConnectionLost adds h's count to the totals.
func (f *Factory) ConnectionLost(h *Handler) {
	f.mu.Lock()
	f.connections++
	f.messages += h.echoed
	connections, messages := f.connections, f.messages
	f.mu.Unlock()

	f.Logger.VerboseMsg("Connection %s echoed %d messages (%d connections, %d messages in total)",
		h.out.Token(), h.echoed, connections, messages)
}

// Totals returns how many connections ended and how many messages they
// echoed.
func (f *Factory) Totals() (connections, messages int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connections, f.messages
}

// Handler echoes the messages of one connection.
type Handler struct {
	out    ws.Sender
	prefix string
	echoed int
}

func (h *Handler) OnMessage(msg ws.Message) error {
	reply := msg
	if h.prefix != "" {
		reply.Data = append([]byte(h.prefix), msg.Data...)
	}

	if err := h.out.Send(reply); err != nil {
		return err
	}
	h.echoed++
	return nil
}

// Echoed returns the number of messages sent back so far.
func (h *Handler) Echoed() int {
	return h.echoed
}

var (
	_ ws.Factory[*Handler]       = (*Factory)(nil)
	_ ws.ServerFactory[*Handler] = (*Factory)(nil)
	_ ws.LossObserver[*Handler]  = (*Factory)(nil)
	_ ws.MessageHandler          = (*Handler)(nil)
)
