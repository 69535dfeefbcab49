package ws

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
)

// DialOptions configure Dial.
type DialOptions struct {
	// Insecure skips certificate verification for wss URLs.
	Insecure     bool
	Subprotocols []string
	Header       http.Header

	// HTTPClient replaces the client used for the upgrade request, e.g. to
	// route it over another transport. Insecure is ignored when set.
	HTTPClient *http.Client
}

// Dial opens a WebSocket connection to url.
func Dial(ctx context.Context, url string, opts *DialOptions) (*websocket.Conn, *http.Response, error) {
	if opts == nil {
		opts = &DialOptions{}
	}

	wsOpts := &websocket.DialOptions{
		Subprotocols: opts.Subprotocols,
		HTTPHeader:   opts.Header,
		HTTPClient:   opts.HTTPClient,
	}
	if wsOpts.HTTPClient == nil && opts.Insecure {
		wsOpts.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	c, resp, err := websocket.Dial(ctx, url, wsOpts)
	if err != nil {
		return nil, resp, fmt.Errorf("websocket.Dial(%s): %w", url, err)
	}
	return c, resp, nil
}
