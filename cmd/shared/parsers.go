package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dominicbreuker/wscat/pkg/config"
)

var transportRe = regexp.MustCompile(`^(ws|wss|kcp)://(\[[0-9a-fA-F:.]*\]|[^:/\[\]]*):(\d+)(/\S*)?$`)

// ParseTransport parses a transport string in the format
// "protocol://host:port[/path]" where protocol is one of ws, wss or kcp. The
// host can be empty or "*" to bind to all interfaces; IPv6 hosts go in
// brackets. Returns the protocol, host, port, path and any parsing error.
func ParseTransport(s string) (proto config.Protocol, host string, port int, path string, err error) {
	matches := transportRe.FindStringSubmatch(s)

	if len(matches) != 5 {
		err = parsingError(s)
		return
	}

	switch matches[1] {
	case "ws":
		proto = config.ProtoWS
	case "wss":
		proto = config.ProtoWSS
	case "kcp":
		proto = config.ProtoKCP
	default:
		err = parsingError(s)
		return
	}
	host = strings.Trim(matches[2], "[]")
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[3])
	if err != nil || port < 1 || port > 65535 {
		err = parsingError(s)
		return
	}

	path = matches[4]
	return
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'protocol://host:port[/path]', where protocol = ws|wss|kcp", s)
}
