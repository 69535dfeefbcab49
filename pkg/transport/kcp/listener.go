// Package kcp carries WebSocket connections over KCP sessions, giving a
// reliable stream on top of UDP.
package kcp

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/wscat/pkg/transport"
	"dominicbreuker/wscat/pkg/transport/ws"

	kcp "github.com/xtaci/kcp-go/v5"
)

// ListenAndServe listens for KCP sessions on the UDP address addr and
// serves WebSocket upgrades on them until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, handler transport.Handler, opts *transport.Options) error {
	nl, err := Listen(addr)
	if err != nil {
		return err
	}
	defer nl.Close()

	if opts != nil {
		opts.Logger.InfoMsg("Listening on %s (kcp)\n", nl.Addr())
	}
	return ws.Serve(ctx, nl, handler, opts)
}

// Listen returns a net.Listener yielding tuned KCP sessions.
func Listen(addr string) (net.Listener, error) {
	if _, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	// No block cipher and no FEC: TLS is not offered on this transport.
	l, err := kcp.ListenWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp.ListenWithOptions(%s): %w", addr, err)
	}
	return &listener{l: l}, nil
}

type listener struct {
	l *kcp.Listener
}

func (l *listener) Accept() (net.Conn, error) {
	sess, err := l.l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	tune(sess)
	return sess, nil
}

func (l *listener) Close() error   { return l.l.Close() }
func (l *listener) Addr() net.Addr { return l.l.Addr() }

// tune configures a session for interactive traffic.
// SetNoDelay(nodelay, interval ms, fast resend, no congestion control)
func tune(sess *kcp.UDPSession) {
	sess.SetNoDelay(1, 10, 2, 1)
	sess.SetStreamMode(true)
	sess.SetWindowSize(1024, 1024)
}
