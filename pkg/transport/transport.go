// Package transport moves WebSocket connections in and out of a node.
// Every transport offers two functions instead of interfaces:
//
// ListenAndServe functions:
//   - Create a listener, upgrade incoming HTTP requests and serve them
//   - Accept: context, address, handler and Options
//   - Block until the context is cancelled or the listener fails
//   - Limit concurrent connections with the slots in Options (HTTP 503 when full)
//
// Dial functions:
//   - Establish an outbound WebSocket connection
//   - Accept: context, URL and dial options
//   - Return the connection and the upgrade response
//
// Transports:
//   - ws: ListenAndServeWS / ListenAndServeWSS, Serve for existing listeners,
//     NewHandler to mount the upgrade in any HTTP server, Dial
//   - kcp: WebSocket over a KCP session on UDP, ListenAndServe / Dial
//
// Framing, masking and the closing handshake are done by coder/websocket.
package transport

import (
	"context"
	"net/http"
	"time"

	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/semaphore"

	"github.com/coder/websocket"
)

// Handler serves one upgraded connection and returns when it is done.
// The connection is closed after the handler returns.
type Handler func(ctx context.Context, c *websocket.Conn, r *http.Request) error

// Options configure listeners. The zero value serves every path with no
// connection limit and no logging.
type Options struct {
	Logger *log.Logger
	Slots  *semaphore.Slots

	// Path restricts upgrades to one request path. Empty accepts any path.
	Path string

	Subprotocols   []string
	OriginPatterns []string

	ReadHeaderTimeout time.Duration
}

