// Package node is the runtime that drives a ws.Factory: it owns every
// connection, builds a handler per connection through the factory, pumps
// messages between the socket and the handler, and hands each handler back
// to the factory when its connection is gone.
package node

import (
	"context"
	"sync"

	"dominicbreuker/wscat/pkg/config"
	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/metrics"
	"dominicbreuker/wscat/pkg/semaphore"
	"dominicbreuker/wscat/pkg/ws"
)

// Node runs connections for one factory. Factory methods are never called
// concurrently: the node serializes them.
type Node[H any] struct {
	cfg     config.Node
	factory ws.Factory[H]
	logger  *log.Logger
	metrics metrics.Collector
	slots   *semaphore.Slots

	dispatchMu sync.Mutex

	mu       sync.Mutex
	conns    map[ws.Token]*connection[H]
	next     ws.Token
	stopping chan struct{}

	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// Option customizes a Node.
type Option func(*settings)

type settings struct {
	metrics metrics.Collector
}

// WithMetrics reports connection events to c.
func WithMetrics(c metrics.Collector) Option {
	return func(s *settings) { s.metrics = c }
}

// New returns a node serving factory. Zero limits in cfg fall back to the
// config defaults.
func New[H any](cfg *config.Node, factory ws.Factory[H], opts ...Option) *Node[H] {
	s := settings{metrics: metrics.Noop()}
	for _, opt := range opts {
		opt(&s)
	}

	c := withDefaults(cfg)
	return &Node[H]{
		cfg:      c,
		factory:  factory,
		logger:   c.Logger,
		metrics:  s.metrics,
		slots:    semaphore.New(c.MaxConnections, c.Timeout),
		conns:    make(map[ws.Token]*connection[H]),
		stopping: make(chan struct{}),
	}
}

func withDefaults(cfg *config.Node) config.Node {
	var c config.Node
	if cfg != nil {
		c = *cfg
	}
	if c.Timeout <= 0 {
		c.Timeout = config.DefaultTimeout
	}
	if c.QueueSize < 1 {
		c.QueueSize = config.DefaultQueueSize
	}
	if c.MaxConnections < 1 {
		c.MaxConnections = config.DefaultMaxConnections
	}
	if c.ReadLimit < 1 {
		c.ReadLimit = config.DefaultReadLimit
	}
	return c
}

// dispatch runs fn while holding the factory lock.
func (n *Node[H]) dispatch(fn func()) {
	n.dispatchMu.Lock()
	defer n.dispatchMu.Unlock()
	fn()
}

// Len returns the number of registered connections.
func (n *Node[H]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.conns)
}

// Stopping is closed once Shutdown has been called.
func (n *Node[H]) Stopping() <-chan struct{} {
	return n.stopping
}

// Enqueue routes a command from a Sender: broadcasts fan out, shutdown
// requests stop the node, everything else goes to the connection named by
// the command's token.
func (n *Node[H]) Enqueue(cmd ws.Command) error {
	switch cmd.Kind {
	case ws.CommandBroadcast:
		return n.Broadcast(cmd.Message)
	case ws.CommandShutdown:
		// Senders may be used inside factory methods, which hold the
		// dispatch lock that Shutdown needs.
		go n.Shutdown()
		return nil
	}

	c := n.lookup(cmd.Token)
	if c == nil {
		n.metrics.CommandDropped(cmd.Kind.String())
		return ws.Wrap(ws.KindQueue, cmd.Kind.String()+" to "+cmd.Token.String(), ws.ErrConnectionClosed)
	}
	if err := c.push(cmd); err != nil {
		n.metrics.CommandDropped(cmd.Kind.String())
		return err
	}
	return nil
}

// Broadcast queues msg on every connection. Connections whose queue is
// full miss the message.
func (n *Node[H]) Broadcast(msg ws.Message) error {
	for _, c := range n.snapshot() {
		if err := c.push(ws.Command{Token: c.token, Kind: ws.CommandSend, Message: msg}); err != nil {
			n.metrics.CommandDropped(ws.CommandBroadcast.String())
			n.logger.VerboseMsg("Broadcast to %s dropped: %s", c.token, err)
		}
	}
	return nil
}

// Shutdown notifies the factory, stops accepting connections and asks every
// open connection to close with CloseAway. Only the first call has an
// effect. It does not wait; use Wait for that.
func (n *Node[H]) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.dispatch(func() { ws.Shutdown(n.factory, n.logger) })

		n.mu.Lock()
		close(n.stopping)
		open := n.snapshotLocked()
		n.mu.Unlock()

		n.logger.VerboseMsg("Shutting down, closing %d connections", len(open))
		for _, c := range open {
			cmd := ws.Command{Token: c.token, Kind: ws.CommandClose, Code: ws.CloseAway, Reason: "shutting down"}
			if err := c.push(cmd); err != nil {
				_ = c.conn.CloseNow()
			}
		}
	})
}

// Wait blocks until every connection has been handed back to the factory
// or ctx is done. Call it after Shutdown.
func (n *Node[H]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Node[H]) lookup(token ws.Token) *connection[H] {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conns[token]
}

func (n *Node[H]) snapshot() []*connection[H] {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Node[H]) snapshotLocked() []*connection[H] {
	out := make([]*connection[H], 0, len(n.conns))
	for _, c := range n.conns {
		out = append(out, c)
	}
	return out
}
