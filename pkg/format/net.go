// Package format renders network addresses and WebSocket URLs.
package format

import (
	"fmt"
	"strings"
)

// Addr joins host and port, bracketing IPv6 hosts.
func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// URL returns scheme://host:port/path. An empty host becomes localhost and
// an empty path becomes "/".
func URL(scheme, host string, port int, path string) string {
	if host == "" {
		host = "localhost"
	}
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s://%s%s", scheme, Addr(host, port), path)
}
