package ws

import (
	"dominicbreuker/wscat/pkg/log"
)

// Role says which entry point constructed a connection's handler.
type Role int

const (
	RoleUnspecified Role = iota
	RoleClient
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unspecified"
	}
}

// Factory manufactures one handler per connection.
//
// ConnectionMade must not block and has no error return. A factory that
// cannot build a usable handler returns one whose callbacks report the
// failure, or panics.
type Factory[H any] interface {
	ConnectionMade(out Sender) H
}

// ClientFactory is implemented by factories that build handlers for dialed
// connections differently.
type ClientFactory[H any] interface {
	ClientConnected(out Sender) H
}

// ServerFactory is implemented by factories that build handlers for accepted
// connections differently.
type ServerFactory[H any] interface {
	ServerConnected(out Sender) H
}

// ShutdownObserver is implemented by factories that want to know when the
// runtime begins a graceful shutdown. Connections may still be open when
// OnShutdown runs.
type ShutdownObserver interface {
	OnShutdown()
}

// LossObserver is implemented by factories that finalize per-connection
// state. ConnectionLost receives the exact handler constructed for the
// connection, after the runtime has detached it.
type LossObserver[H any] interface {
	ConnectionLost(h H)
}

// DefaultConnected is the behavior of ClientConnected and ServerConnected for
// factories that do not implement them.
func DefaultConnected[H any](f Factory[H], out Sender) H {
	return f.ConnectionMade(out)
}

// ClientConnected builds the handler for a dialed connection.
func ClientConnected[H any](f Factory[H], out Sender) H {
	if cf, ok := f.(ClientFactory[H]); ok {
		return cf.ClientConnected(out)
	}
	return DefaultConnected(f, out)
}

// ServerConnected builds the handler for an accepted connection.
func ServerConnected[H any](f Factory[H], out Sender) H {
	if sf, ok := f.(ServerFactory[H]); ok {
		return sf.ServerConnected(out)
	}
	return DefaultConnected(f, out)
}

// Construct calls exactly one of the construction entry points, chosen by role.
func Construct[H any](f Factory[H], role Role, out Sender) H {
	switch role {
	case RoleClient:
		return ClientConnected(f, out)
	case RoleServer:
		return ServerConnected(f, out)
	default:
		return f.ConnectionMade(out)
	}
}

// Shutdown notifies f that its runtime is shutting down. Factories without
// an OnShutdown method only get a debug line on logger, which may be nil.
func Shutdown[H any](f Factory[H], logger *log.Logger) {
	if so, ok := f.(ShutdownObserver); ok {
		so.OnShutdown()
		return
	}
	logger.DebugMsg("Factory received websocket shutdown request")
}

// ConnectionLost hands h back to f. Without a ConnectionLost method the
// handler is simply dropped. Panics propagate to the caller.
func ConnectionLost[H any](f Factory[H], h H) {
	if lo, ok := f.(LossObserver[H]); ok {
		lo.ConnectionLost(h)
	}
}
