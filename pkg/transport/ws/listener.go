// Package ws serves and dials WebSocket connections over TCP, optionally
// with TLS.
package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dominicbreuker/wscat/pkg/crypto"
	"dominicbreuker/wscat/pkg/transport"

	"github.com/coder/websocket"
)

// ListenAndServeWS listens on addr with plain HTTP and serves WebSocket
// upgrades until ctx is cancelled.
func ListenAndServeWS(ctx context.Context, addr string, handler transport.Handler, opts *transport.Options) error {
	return listenAndServe(ctx, addr, handler, opts, false)
}

// ListenAndServeWSS is ListenAndServeWS over TLS with an ephemeral
// self-signed certificate.
func ListenAndServeWSS(ctx context.Context, addr string, handler transport.Handler, opts *transport.Options) error {
	return listenAndServe(ctx, addr, handler, opts, true)
}

func listenAndServe(ctx context.Context, addr string, handler transport.Handler, opts *transport.Options, useTLS bool) error {
	nl, err := createNetListener(addr, useTLS)
	if err != nil {
		return err
	}
	defer nl.Close()

	opts.Logger.InfoMsg("Listening on %s\n", nl.Addr())
	return Serve(ctx, nl, handler, opts)
}

// createNetListener creates a TCP listener with optional TLS.
func createNetListener(addr string, useTLS bool) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", addr, err)
	}

	var nl net.Listener
	nl, err = net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("net.ListenTCP(tcp, %s): %w", tcpAddr.String(), err)
	}

	if useTLS {
		cert, err := crypto.EphemeralCertificate(tcpAddr.IP.String(), "localhost")
		if err != nil {
			nl.Close()
			return nil, fmt.Errorf("crypto.EphemeralCertificate(): %w", err)
		}
		nl = tls.NewListener(nl, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
	}

	return nl, nil
}

// Serve serves WebSocket upgrades on an existing listener until ctx is
// cancelled. The listener is closed on return.
func Serve(ctx context.Context, nl net.Listener, handler transport.Handler, opts *transport.Options) error {
	server := &http.Server{
		Handler: NewHandler(ctx, handler, opts),

		// Long-lived connections: only the header phase is bounded.
		ReadHeaderTimeout: headerTimeout(opts),
		ReadTimeout:       0,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	return serveWithContext(ctx, server, nl)
}

func headerTimeout(opts *transport.Options) time.Duration {
	if opts == nil || opts.ReadHeaderTimeout <= 0 {
		return 10 * time.Second
	}
	return opts.ReadHeaderTimeout
}

// NewHandler returns an http.Handler that upgrades requests and passes the
// connection to handler. Requests beyond the configured slots get 503.
func NewHandler(ctx context.Context, handler transport.Handler, opts *transport.Options) http.Handler {
	if opts == nil {
		opts = &transport.Options{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if opts.Path != "" && r.URL.Path != opts.Path {
			http.NotFound(w, r)
			return
		}

		if !opts.Slots.TryAcquire() {
			opts.Logger.VerboseMsg("Rejecting %s: all %d connection slots busy", r.RemoteAddr, opts.Slots.Cap())
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		defer opts.Slots.Release()

		handleUpgrade(ctx, w, r, handler, opts)
	})
}

// handleUpgrade upgrades the request and runs handler on the connection.
// Handler panics are not recovered here.
func handleUpgrade(ctx context.Context, w http.ResponseWriter, r *http.Request, handler transport.Handler, opts *transport.Options) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   opts.Subprotocols,
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		opts.Logger.ErrorMsg("websocket.Accept(%s): %s\n", r.RemoteAddr, err)
		return
	}
	defer c.CloseNow()

	opts.Logger.VerboseMsg("New WS connection from %s\n", r.RemoteAddr)

	if err := handler(ctx, c, r); err != nil {
		opts.Logger.ErrorMsg("Handling %s: %s\n", r.RemoteAddr, err)
	}
}

// serveWithContext runs the HTTP server until ctx is cancelled or it fails.
func serveWithContext(ctx context.Context, server *http.Server, nl net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(nl)
	}()

	select {
	case <-ctx.Done():
		// Stop accepting; hijacked WebSocket connections are not affected by
		// Close and end through ctx instead.
		_ = server.Close()
		err := <-errCh
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving after cancellation: %w", err)

	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http.Server.Serve(): %w", err)
	}
}
