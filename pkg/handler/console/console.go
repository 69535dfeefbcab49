// Package console connects a terminal to a dialed WebSocket connection:
// received messages are printed, input lines are sent.
package console

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/ws"
)

// Factory builds console handlers and publishes the Sender of each new
// connection on Senders.
type Factory struct {
	out        io.Writer
	transcript *log.Transcript
	logger     *log.Logger

	senders  chan ws.Sender
	done     chan struct{}
	doneOnce sync.Once

	mu       sync.Mutex
	received int
}

// New returns a factory printing to out. transcript may be nil.
func New(out io.Writer, transcript *log.Transcript, logger *log.Logger) *Factory {
	return &Factory{
		out:        out,
		transcript: transcript,
		logger:     logger,
		senders:    make(chan ws.Sender, 1),
		done:       make(chan struct{}),
	}
}

// ConnectionMade is used for attached connections; it behaves like
// ClientConnected.
func (f *Factory) ConnectionMade(out ws.Sender) *Handler {
	return f.ClientConnected(out)
}

// ClientConnected builds the handler and publishes out. If the previous
// sender was never picked up it is replaced.
func (f *Factory) ClientConnected(out ws.Sender) *Handler {
	for {
		select {
		case f.senders <- out:
			return &Handler{f: f, out: out}
		default:
		}
		select {
		case <-f.senders:
		default:
		}
	}
}

// Senders delivers the Sender of every new connection.
func (f *Factory) Senders() <-chan ws.Sender {
	return f.senders
}

// Done is closed when the runtime shuts down.
func (f *Factory) Done() <-chan struct{} {
	return f.done
}

func (f *Factory) OnShutdown() {
	f.doneOnce.Do(func() { close(f.done) })
}

func (f *Factory) ConnectionLost(h *Handler) {
	f.mu.Lock()
	f.received += h.received
	f.mu.Unlock()

	f.logger.VerboseMsg("Connection %s received %d messages", h.out.Token(), h.received)
}

// Received returns the number of messages received by finished connections.
func (f *Factory) Received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received
}

// SendLine interprets one input line. "/ping" pings, "/close [reason]"
// closes normally, "/quit" shuts the runtime down, "//text" sends "/text";
// everything else is sent as a text message.
func (f *Factory) SendLine(out ws.Sender, line string) error {
	switch {
	case line == "/ping":
		return out.Ping(nil)
	case line == "/close" || strings.HasPrefix(line, "/close "):
		return out.CloseWithReason(ws.CloseNormal, strings.TrimSpace(strings.TrimPrefix(line, "/close")))
	case line == "/quit":
		return out.Shutdown()
	case strings.HasPrefix(line, "//"):
		line = line[1:]
	}

	if err := out.Send(ws.Text(line)); err != nil {
		return err
	}
	if err := f.transcript.Record(log.Outbound, []byte(line)); err != nil {
		f.logger.ErrorMsg("%s", err)
	}
	return nil
}

// Handler prints the messages of one connection.
type Handler struct {
	f        *Factory
	out      ws.Sender
	received int
}

func (h *Handler) OnOpen(hs ws.Handshake) error {
	if hs.Subprotocol != "" {
		h.f.logger.InfoMsg("Connected to %s (subprotocol %s)", hs.RemoteAddr, hs.Subprotocol)
	} else {
		h.f.logger.InfoMsg("Connected to %s", hs.RemoteAddr)
	}
	return nil
}

func (h *Handler) OnMessage(msg ws.Message) error {
	h.received++

	if err := h.f.transcript.Record(log.Inbound, msg.Data); err != nil {
		h.f.logger.ErrorMsg("%s", err)
	}

	if _, err := fmt.Fprintln(h.f.out, render(msg)); err != nil {
		return ws.Wrap(ws.KindIO, "printing message", err)
	}
	return nil
}

func (h *Handler) OnClose(code ws.CloseCode, reason string) {
	if reason != "" {
		h.f.logger.InfoMsg("Connection closed: %s: %s", code, reason)
		return
	}
	h.f.logger.InfoMsg("Connection closed: %s", code)
}

func (h *Handler) OnError(err error) {
	h.f.logger.ErrorMsg("%s", err)
}

// render prints text as is and binary data as hex.
func render(msg ws.Message) string {
	if msg.IsText() && utf8.Valid(msg.Data) {
		return string(msg.Data)
	}
	return fmt.Sprintf("[binary %d bytes] %s", msg.Len(), hex.EncodeToString(msg.Data))
}

var (
	_ ws.ClientFactory[*Handler] = (*Factory)(nil)
	_ ws.ShutdownObserver        = (*Factory)(nil)
	_ ws.LossObserver[*Handler]  = (*Factory)(nil)
	_ ws.OpenHandler             = (*Handler)(nil)
	_ ws.MessageHandler          = (*Handler)(nil)
	_ ws.CloseHandler            = (*Handler)(nil)
	_ ws.ErrorHandler            = (*Handler)(nil)
)
