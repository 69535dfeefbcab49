// Package ws defines how per-connection WebSocket handlers are manufactured.
//
// A Factory is a long-lived value owned by a runtime (see package node). Every
// time the runtime establishes a connection it binds a Sender to the new
// connection's Token and asks the factory for a handler:
//
//   - ConnectionMade for connections of unspecified role,
//   - ClientConnected for connections the runtime dialed,
//   - ServerConnected for connections the runtime accepted.
//
// Only ConnectionMade is required. The other hooks are optional interfaces
// (ClientFactory, ServerFactory, ShutdownObserver, LossObserver); the
// package-level functions of the same name fall back to the default behavior
// when a factory does not implement them.
//
// Handlers follow the same pattern: a handler is any value, and it opts into
// the callbacks it cares about by implementing MessageHandler, FrameHandler,
// OpenHandler, CloseHandler or ErrorHandler.
//
// Nothing in this package performs I/O. Factory and handler methods run on the
// runtime's dispatch path and must return promptly.
package ws
