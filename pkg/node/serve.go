package node

import (
	"context"
	"fmt"
	"net"
	"net/http"
	neturl "net/url"

	"dominicbreuker/wscat/pkg/config"
	"dominicbreuker/wscat/pkg/transport"
	kcptransport "dominicbreuker/wscat/pkg/transport/kcp"
	wstransport "dominicbreuker/wscat/pkg/transport/ws"
	"dominicbreuker/wscat/pkg/ws"

	"github.com/coder/websocket"
)

// Attach runs an already upgraded connection without a role, so the
// factory's ConnectionMade builds its handler. It blocks until the
// connection has been handed back to the factory.
func (n *Node[H]) Attach(ctx context.Context, c *websocket.Conn, hs ws.Handshake) error {
	return n.serve(ctx, c, ws.RoleUnspecified, hs)
}

// Handler serves accepted connections in the server role.
func (n *Node[H]) Handler() transport.Handler {
	return func(ctx context.Context, c *websocket.Conn, r *http.Request) error {
		return n.serve(ctx, c, ws.RoleServer, requestHandshake(c, r))
	}
}

// HTTPHandler mounts the node in another HTTP server. Connections end when
// ctx is cancelled.
func (n *Node[H]) HTTPHandler(ctx context.Context) http.Handler {
	return wstransport.NewHandler(ctx, n.Handler(), n.listenOptions())
}

// ListenAndServe listens with the configured protocol and serves until ctx
// is cancelled or Shutdown is called. Shutdown only stops the listener:
// open connections close through their own handshake.
func (n *Node[H]) ListenAndServe(ctx context.Context) error {
	lctx, cancel := n.listenContext(ctx)
	defer cancel()

	handler := n.handlerWith(ctx)
	opts := n.listenOptions()
	addr := n.cfg.Addr()

	switch n.cfg.Protocol {
	case config.ProtoWS:
		return wstransport.ListenAndServeWS(lctx, addr, handler, opts)
	case config.ProtoWSS:
		return wstransport.ListenAndServeWSS(lctx, addr, handler, opts)
	case config.ProtoKCP:
		return kcptransport.ListenAndServe(lctx, addr, handler, opts)
	default:
		return fmt.Errorf("listen: unsupported protocol %d", int(n.cfg.Protocol))
	}
}

// Serve is ListenAndServe on an existing listener, which is closed on return.
func (n *Node[H]) Serve(ctx context.Context, nl net.Listener) error {
	lctx, cancel := n.listenContext(ctx)
	defer cancel()

	return wstransport.Serve(lctx, nl, n.handlerWith(ctx), n.listenOptions())
}

// Connect dials url in the client role and serves the connection until it
// ends.
func (n *Node[H]) Connect(ctx context.Context, url string) error {
	u, err := neturl.Parse(url)
	if err != nil {
		return fmt.Errorf("url.Parse(%s): %w", url, err)
	}

	dctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	opts := &wstransport.DialOptions{Insecure: n.cfg.Insecure}
	var (
		c    *websocket.Conn
		resp *http.Response
	)
	if n.cfg.Protocol == config.ProtoKCP {
		c, resp, err = kcptransport.Dial(dctx, url, opts)
	} else {
		c, resp, err = wstransport.Dial(dctx, url, opts)
	}
	if err != nil {
		return err
	}
	defer c.CloseNow()

	hs := ws.Handshake{
		RemoteAddr:  u.Host,
		Path:        u.Path,
		Subprotocol: c.Subprotocol(),
	}
	if resp != nil {
		hs.Header = resp.Header
	}

	n.logger.VerboseMsg("Connected to %s", url)
	return n.serve(ctx, c, ws.RoleClient, hs)
}

// handlerWith serves connections with ctx instead of the listener's
// context, so stopping the listener does not cut open connections.
func (n *Node[H]) handlerWith(ctx context.Context) transport.Handler {
	return func(_ context.Context, c *websocket.Conn, r *http.Request) error {
		return n.serve(ctx, c, ws.RoleServer, requestHandshake(c, r))
	}
}

// listenContext is cancelled with ctx or when the node stops.
func (n *Node[H]) listenContext(ctx context.Context) (context.Context, context.CancelFunc) {
	lctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-n.stopping:
			cancel()
		case <-lctx.Done():
		}
	}()
	return lctx, cancel
}

func (n *Node[H]) listenOptions() *transport.Options {
	return &transport.Options{
		Logger:            n.logger,
		Slots:             n.slots,
		Path:              n.cfg.Path,
		ReadHeaderTimeout: n.cfg.Timeout,
	}
}

func requestHandshake(c *websocket.Conn, r *http.Request) ws.Handshake {
	return ws.Handshake{
		RemoteAddr:  r.RemoteAddr,
		Path:        r.URL.Path,
		Subprotocol: c.Subprotocol(),
		Header:      r.Header.Clone(),
	}
}
