package ws

// Handler capabilities. A handler implements any subset of these interfaces;
// the dispatch functions below supply no-op defaults for the rest. The
// runtime never calls a capability before the handler's construction returns.

// OpenHandler is notified once the connection is ready.
type OpenHandler interface {
	OnOpen(hs Handshake) error
}

// MessageHandler receives complete messages.
type MessageHandler interface {
	OnMessage(msg Message) error
}

// FrameHandler inspects frames before they become messages. Returning a nil
// frame consumes it; returning a frame passes it on, possibly transformed.
type FrameHandler interface {
	OnFrame(f Frame) (*Frame, error)
}

// CloseHandler is notified when the connection has closed.
type CloseHandler interface {
	OnClose(code CloseCode, reason string)
}

// ErrorHandler is notified of a failure before the runtime closes the
// connection because of it.
type ErrorHandler interface {
	OnError(err error)
}

// HandlerFunc lets a plain function serve as a message handler.
type HandlerFunc func(msg Message) error

// OnMessage calls fn(msg).
func (fn HandlerFunc) OnMessage(msg Message) error {
	return fn(msg)
}

// Open dispatches OnOpen.
func Open(h any, hs Handshake) error {
	if oh, ok := h.(OpenHandler); ok {
		return oh.OnOpen(hs)
	}
	return nil
}

// Deliver dispatches OnMessage.
func Deliver(h any, msg Message) error {
	if mh, ok := h.(MessageHandler); ok {
		return mh.OnMessage(msg)
	}
	return nil
}

// InspectFrame dispatches OnFrame. Handlers without it pass f through.
func InspectFrame(h any, f Frame) (*Frame, error) {
	if fh, ok := h.(FrameHandler); ok {
		return fh.OnFrame(f)
	}
	return &f, nil
}

// Closed dispatches OnClose.
func Closed(h any, code CloseCode, reason string) {
	if ch, ok := h.(CloseHandler); ok {
		ch.OnClose(code, reason)
	}
}

// Failed dispatches OnError.
func Failed(h any, err error) {
	if eh, ok := h.(ErrorHandler); ok {
		eh.OnError(err)
	}
}
