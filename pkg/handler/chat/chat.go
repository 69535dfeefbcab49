// Package chat relays every text message to all connections of a node.
//
// Lines starting with "/nick " rename the sender. Joins, leaves and renames
// are announced to everyone.
package chat

import (
	"fmt"
	"strings"

	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/ws"
)

const maxNameLen = 32

// New returns a factory for chat members.
func New(logger *log.Logger) ws.FactoryFunc[*Member] {
	return ws.FromFn(func(out ws.Sender) *Member {
		return &Member{
			out:    out,
			name:   fmt.Sprintf("user%d", uint64(out.Token())),
			logger: logger,
		}
	})
}

// Member is the handler of one chat connection.
type Member struct {
	out    ws.Sender
	name   string
	logger *log.Logger
}

// Name returns the member's current nickname.
func (m *Member) Name() string {
	return m.name
}

func (m *Member) OnOpen(hs ws.Handshake) error {
	m.logger.VerboseMsg("%s joined from %s", m.name, hs.RemoteAddr)
	return m.announce("%s joined", m.name)
}

func (m *Member) OnMessage(msg ws.Message) error {
	if !msg.IsText() {
		return ws.NewError(ws.KindCustom, "chat accepts text messages only")
	}

	text := string(msg.Data)
	if nick, ok := strings.CutPrefix(text, "/nick "); ok {
		return m.rename(nick)
	}

	return m.out.Broadcast(ws.Text(fmt.Sprintf("[%s] %s", m.name, text)))
}

func (m *Member) OnClose(code ws.CloseCode, reason string) {
	if err := m.announce("%s left (%s)", m.name, code); err != nil {
		m.logger.VerboseMsg("Announcing %s leaving: %s", m.name, err)
	}
}

func (m *Member) rename(nick string) error {
	nick = strings.TrimSpace(nick)
	if nick == "" || len(nick) > maxNameLen || strings.ContainsAny(nick, "[] \t") {
		return m.out.Send(ws.Text(fmt.Sprintf("* invalid name %q", nick)))
	}

	old := m.name
	m.name = nick
	return m.announce("%s is now known as %s", old, nick)
}

func (m *Member) announce(format string, args ...any) error {
	return m.out.Broadcast(ws.Text("* " + fmt.Sprintf(format, args...)))
}

var (
	_ ws.OpenHandler    = (*Member)(nil)
	_ ws.MessageHandler = (*Member)(nil)
	_ ws.CloseHandler   = (*Member)(nil)
)
