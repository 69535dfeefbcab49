package kcp

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"dominicbreuker/wscat/pkg/transport/ws"

	"github.com/coder/websocket"
	kcp "github.com/xtaci/kcp-go/v5"
)

// Dial opens a WebSocket connection to url, carrying the upgrade request
// and all later traffic over a KCP session.
func Dial(ctx context.Context, url string, opts *ws.DialOptions) (*websocket.Conn, *http.Response, error) {
	dialOpts := ws.DialOptions{}
	if opts != nil {
		dialOpts = *opts
	}
	dialOpts.HTTPClient = &http.Client{
		Transport: &http.Transport{
			DialContext: dialSession,
		},
	}
	return ws.Dial(ctx, url, &dialOpts)
}

// dialSession ignores network: KCP always runs over UDP.
func dialSession(ctx context.Context, _, addr string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := kcp.DialWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp.DialWithOptions(%s): %w", addr, err)
	}
	tune(sess)
	return sess, nil
}
