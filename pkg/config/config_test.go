package config

import (
	"strings"
	"testing"
	"time"
)

func TestProtocol_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		protocol Protocol
		want     string
		scheme   string
	}{
		{"WebSocket", ProtoWS, "ws", "ws"},
		{"WebSocket Secure", ProtoWSS, "wss", "wss"},
		{"KCP", ProtoKCP, "kcp", "ws"},
		{"Invalid", Protocol(999), "", "ws"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.protocol.String(); got != tc.want {
				t.Errorf("Protocol.String() = %q, want %q", got, tc.want)
			}
			if got := tc.protocol.Scheme(); got != tc.scheme {
				t.Errorf("Protocol.Scheme() = %q, want %q", got, tc.scheme)
			}
		})
	}
}

func validNode() *Node {
	return &Node{
		Protocol:       ProtoWS,
		Host:           "127.0.0.1",
		Port:           8080,
		Timeout:        DefaultTimeout,
		QueueSize:      DefaultQueueSize,
		MaxConnections: DefaultMaxConnections,
		ReadLimit:      DefaultReadLimit,
	}
}

func TestNode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Node)
		wantErr string
	}{
		{"valid", func(*Node) {}, ""},
		{"valid with path", func(n *Node) { n.Path = "/chat" }, ""},
		{"valid insecure wss", func(n *Node) { n.Protocol = ProtoWSS; n.Insecure = true }, ""},
		{"bad protocol", func(n *Node) { n.Protocol = 0 }, "protocol"},
		{"port zero", func(n *Node) { n.Port = 0 }, "port"},
		{"port too high", func(n *Node) { n.Port = 70000 }, "port"},
		{"relative path", func(n *Node) { n.Path = "chat" }, "path"},
		{"no timeout", func(n *Node) { n.Timeout = 0 }, "timeout"},
		{"no queue", func(n *Node) { n.QueueSize = 0 }, "queue size"},
		{"no connections", func(n *Node) { n.MaxConnections = 0 }, "max connections"},
		{"no read limit", func(n *Node) { n.ReadLimit = 0 }, "read limit"},
		{"insecure without tls", func(n *Node) { n.Insecure = true }, "insecure"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			n := validNode()
			tc.mutate(n)
			errs := n.Validate()

			if tc.wantErr == "" {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate() = %v, want exactly one error", errs)
			}
			if !strings.HasPrefix(errs[0].Error(), tc.wantErr) {
				t.Errorf("Validate() error = %q, want prefix %q", errs[0], tc.wantErr)
			}
		})
	}
}

func TestNode_ValidateReportsAll(t *testing.T) {
	t.Parallel()

	n := &Node{}
	if errs := n.Validate(); len(errs) != 6 {
		t.Errorf("Validate() on zero Node returned %d errors, want 6: %v", len(errs), errs)
	}
}

func TestNode_AddrAndURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     Node
		wantAddr string
		wantURL  string
	}{
		{"ipv4", Node{Protocol: ProtoWS, Host: "127.0.0.1", Port: 80}, "127.0.0.1:80", "ws://127.0.0.1:80/"},
		{"ipv6", Node{Protocol: ProtoWSS, Host: "::1", Port: 443, Path: "/x"}, "[::1]:443", "wss://[::1]:443/x"},
		{"all interfaces", Node{Protocol: ProtoKCP, Port: 9000, Path: "/chat"}, ":9000", "ws://localhost:9000/chat"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.node.Addr(); got != tc.wantAddr {
				t.Errorf("Addr() = %q, want %q", got, tc.wantAddr)
			}
			if got := tc.node.URL(); got != tc.wantURL {
				t.Errorf("URL() = %q, want %q", got, tc.wantURL)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	if DefaultTimeout != 10*time.Second {
		t.Errorf("DefaultTimeout = %s, want 10s", DefaultTimeout)
	}
	if errs := validNode().Validate(); len(errs) != 0 {
		t.Errorf("defaults do not validate: %v", errs)
	}
}
