package node

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"dominicbreuker/wscat/pkg/ws"

	"github.com/coder/websocket"
)

type state int32

const (
	stateUnconstructed state = iota
	stateActive
	stateRelinquished
)

func (s state) String() string {
	switch s {
	case stateUnconstructed:
		return "unconstructed"
	case stateActive:
		return "active"
	case stateRelinquished:
		return "relinquished"
	default:
		return "unknown"
	}
}

// maxReasonLen is the longest close reason that fits a control frame.
const maxReasonLen = 123

// connection is the runtime side of one WebSocket connection.
type connection[H any] struct {
	token ws.Token
	role  ws.Role
	conn  *websocket.Conn
	queue chan ws.Command

	// done is closed once the connection no longer accepts commands.
	done       chan struct{}
	detachOnce sync.Once

	state   atomic.Int32
	handler H

	cancel     context.CancelFunc
	writerDone chan struct{}
}

func (c *connection[H]) current() state {
	return state(c.state.Load())
}

// push queues cmd without blocking.
func (c *connection[H]) push(cmd ws.Command) error {
	select {
	case <-c.done:
		return ws.Wrap(ws.KindQueue, cmd.Kind.String()+" to "+c.token.String(), ws.ErrConnectionClosed)
	default:
	}

	select {
	case c.queue <- cmd:
		return nil
	case <-c.done:
		return ws.Wrap(ws.KindQueue, cmd.Kind.String()+" to "+c.token.String(), ws.ErrConnectionClosed)
	default:
		return ws.Wrap(ws.KindCapacity, cmd.Kind.String()+" to "+c.token.String(), ws.ErrQueueFull)
	}
}

func (c *connection[H]) detach() {
	c.detachOnce.Do(func() { close(c.done) })
}

// callbackError marks errors returned by handler callbacks, as opposed to
// errors of the connection itself.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }

// errWriterStop ends the writer after it sent a close frame.
var errWriterStop = errors.New("writer stopped")

// register adds a connection unless the node is shutting down.
func (n *Node[H]) register(wc *websocket.Conn, role ws.Role) (*connection[H], error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	select {
	case <-n.stopping:
		return nil, ws.ErrShutdown
	default:
	}

	n.next++
	c := &connection[H]{
		token: n.next,
		role:  role,
		conn:  wc,
		queue: make(chan ws.Command, n.cfg.QueueSize),
		done:  make(chan struct{}),
	}
	n.conns[c.token] = c
	n.wg.Add(1)
	return c, nil
}

func (n *Node[H]) unregister(token ws.Token) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.conns, token)
}

// serve runs one upgraded connection until it ends. The connection is
// registered before the factory is asked for a handler, so the Sender given
// to the factory works from the start. The returned error is the one a
// handler callback failed with, if any.
func (n *Node[H]) serve(ctx context.Context, wc *websocket.Conn, role ws.Role, hs ws.Handshake) error {
	c, err := n.register(wc, role)
	if err != nil {
		_ = wc.Close(websocket.StatusGoingAway, "shutting down")
		return err
	}
	defer n.teardown(c)

	wc.SetReadLimit(n.cfg.ReadLimit)
	hs.Token, hs.Role = c.token, role

	n.dispatch(func() {
		c.handler = ws.Construct(n.factory, role, ws.NewSender(c.token, n))
	})
	c.state.Store(int32(stateActive))
	n.metrics.ConnectionOpened(role.String())
	n.logger.VerboseMsg("Connection %s (%s) with %s is %s", c.token, role, hs.RemoteAddr, c.current())

	var connCtx context.Context
	connCtx, c.cancel = context.WithCancel(ctx)
	c.writerDone = make(chan struct{})
	go func() {
		defer close(c.writerDone)
		n.writeLoop(connCtx, c)
	}()

	if err = ws.Open(c.handler, hs); err != nil {
		err = &callbackError{err: err}
	} else {
		err = n.readLoop(connCtx, c)
	}

	code, reason := n.finish(c, err)
	n.stopWriter(c)
	n.unregister(c.token)
	c.detach()
	ws.Closed(c.handler, code, reason)
	n.logger.VerboseMsg("Connection %s closed: %s %s", c.token, code, reason)

	var cbErr *callbackError
	if errors.As(err, &cbErr) {
		return cbErr.err
	}
	return nil
}

// finish closes the connection after the reader stopped and returns the
// close status the handler is told about.
func (n *Node[H]) finish(c *connection[H], err error) (ws.CloseCode, string) {
	var cbErr *callbackError
	if !errors.As(err, &cbErr) {
		return closeStatus(err)
	}

	ws.Failed(c.handler, cbErr.err)
	code := ws.KindOf(cbErr.err).CloseCode()
	reason := truncateReason(cbErr.err.Error())
	if cerr := c.conn.Close(websocket.StatusCode(code), reason); cerr != nil {
		n.logger.VerboseMsg("Closing %s: %s", c.token, cerr)
	}
	return code, reason
}

// closeStatus extracts the close frame the peer sent, if any.
func closeStatus(err error) (ws.CloseCode, string) {
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return ws.CloseCode(ce.Code), ce.Reason
	}
	return ws.CloseAbnormal, ""
}

func truncateReason(s string) string {
	if len(s) <= maxReasonLen {
		return s
	}
	s = s[:maxReasonLen]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func (n *Node[H]) stopWriter(c *connection[H]) {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.writerDone
}

// teardown releases the connection on every exit path of serve, including
// panics in handler callbacks. The handler goes back to the factory at most
// once, and only if it was constructed.
func (n *Node[H]) teardown(c *connection[H]) {
	defer n.wg.Done()

	n.stopWriter(c)
	n.unregister(c.token)
	c.detach()
	_ = c.conn.CloseNow()

	if !c.state.CompareAndSwap(int32(stateActive), int32(stateRelinquished)) {
		return
	}
	n.metrics.ConnectionLost(c.role.String())
	n.dispatch(func() { ws.ConnectionLost(n.factory, c.handler) })
	n.logger.VerboseMsg("Connection %s %s", c.token, c.current())
}

// readLoop delivers inbound messages until the connection or a callback
// fails.
func (n *Node[H]) readLoop(ctx context.Context, c *connection[H]) error {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}
		n.metrics.MessageReceived(len(data))

		f, err := ws.InspectFrame(c.handler, ws.FrameOf(ws.Message{Type: messageType(typ), Data: data}))
		if err != nil {
			return &callbackError{err: err}
		}
		if f == nil {
			continue
		}

		msg, err := f.Message()
		if err != nil {
			return &callbackError{err: err}
		}
		if err := ws.Deliver(c.handler, msg); err != nil {
			return &callbackError{err: err}
		}
	}
}

// writeLoop executes queued commands until ctx is done or a write fails.
func (n *Node[H]) writeLoop(ctx context.Context, c *connection[H]) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.queue:
			err := n.execute(ctx, c, cmd)
			if errors.Is(err, errWriterStop) {
				return
			}
			if err != nil {
				n.logger.VerboseMsg("Connection %s: %s failed: %s", c.token, cmd.Kind, err)
				_ = c.conn.CloseNow()
				return
			}
		}
	}
}

func (n *Node[H]) execute(ctx context.Context, c *connection[H], cmd ws.Command) error {
	switch cmd.Kind {
	case ws.CommandSend:
		wctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
		if err := c.conn.Write(wctx, wireType(cmd.Message.Type), cmd.Message.Data); err != nil {
			return ws.Wrap(ws.KindIO, "write", err)
		}
		n.metrics.MessageSent(cmd.Message.Len())
		return nil

	case ws.CommandPing:
		// Ping blocks until the pong arrives, which needs the reader.
		go n.ping(ctx, c)
		return nil

	case ws.CommandClose:
		code := cmd.Code
		if code == 0 {
			code = ws.CloseNormal
		}
		if err := c.conn.Close(websocket.StatusCode(code), truncateReason(cmd.Reason)); err != nil {
			n.logger.VerboseMsg("Closing %s: %s", c.token, err)
		}
		return errWriterStop

	default:
		return ws.NewError(ws.KindInternal, "unexpected command "+cmd.Kind.String())
	}
}

func (n *Node[H]) ping(ctx context.Context, c *connection[H]) {
	pctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := c.conn.Ping(pctx); err != nil {
		n.logger.VerboseMsg("Ping %s: %s", c.token, err)
		return
	}
	n.logger.DebugMsg("Pong from %s after %s", c.token, time.Since(start))
}

func messageType(t websocket.MessageType) ws.MessageType {
	if t == websocket.MessageBinary {
		return ws.MessageBinary
	}
	return ws.MessageText
}

func wireType(t ws.MessageType) websocket.MessageType {
	if t == ws.MessageBinary {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}
