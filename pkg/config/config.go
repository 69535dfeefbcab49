// Package config holds the settings of a wscat node and their validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"dominicbreuker/wscat/pkg/format"
	"dominicbreuker/wscat/pkg/log"
)

// Protocol selects the transport under the WebSocket connection.
type Protocol int

const (
	ProtoWS  Protocol = 1 // plain WebSocket over TCP
	ProtoWSS Protocol = 2 // WebSocket over TLS
	ProtoKCP Protocol = 3 // WebSocket over a KCP session on UDP
)

func (p Protocol) String() string {
	switch p {
	case ProtoWS:
		return "ws"
	case ProtoWSS:
		return "wss"
	case ProtoKCP:
		return "kcp"
	default:
		return ""
	}
}

// Scheme is the URL scheme of the HTTP upgrade request.
func (p Protocol) Scheme() string {
	if p == ProtoWSS {
		return "wss"
	}
	return "ws"
}

// Node configures one runtime, listening or connecting.
type Node struct {
	Protocol Protocol
	Host     string
	Port     int
	Path     string

	Timeout        time.Duration // dial, write and close handshake timeout
	QueueSize      int           // outbound commands buffered per connection
	MaxConnections int           // concurrent connections accepted by a listener
	ReadLimit      int64         // maximum inbound message size in bytes
	Insecure       bool          // skip certificate verification when dialing wss

	Verbose bool
	Logger  *log.Logger
}

// Defaults, also used by Load for keys missing from the file.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultQueueSize      = 64
	DefaultMaxConnections = 100
	DefaultReadLimit      = 32768
)

// Addr returns host:port, bracketing IPv6 hosts.
func (c *Node) Addr() string {
	return format.Addr(c.Host, c.Port)
}

// URL returns the URL a client dials for this node.
func (c *Node) URL() string {
	return format.URL(c.Protocol.Scheme(), c.Host, c.Port, c.Path)
}

// Validate reports every invalid field.
func (c *Node) Validate() []error {
	var errs []error

	if c.Protocol.String() == "" {
		errs = append(errs, fmt.Errorf("protocol: %d is not one of ws, wss, kcp", int(c.Protocol)))
	}
	if err := validatePort(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("port: %w", err))
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path: %q must start with '/'", c.Path))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout: must be positive, got %s", c.Timeout))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue size: must be at least 1, got %d", c.QueueSize))
	}
	if c.MaxConnections < 1 {
		errs = append(errs, fmt.Errorf("max connections: must be at least 1, got %d", c.MaxConnections))
	}
	if c.ReadLimit < 1 {
		errs = append(errs, fmt.Errorf("read limit: must be at least 1, got %d", c.ReadLimit))
	}
	if c.Insecure && c.Protocol != ProtoWSS {
		errs = append(errs, fmt.Errorf("insecure: only meaningful with wss"))
	}

	return errs
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%d not in [1, 65535]", port)
	}

	return nil
}
