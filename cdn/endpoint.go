package cdn

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint is a parsed connection-mode argument, grounded on
// proj-net's parse_connection_mode: "<ip>:<port>" means dial out as a
// client, "<port>" alone means listen on all interfaces as a server.
type Endpoint struct {
	Server bool
	IP     net.IP // zero value when Server is true
	Port   uint16
}

// ParseEndpoint parses a --connect/--listen flag value of the form
// "ip:port" (client) or "port" (server).
func ParseEndpoint(s string) (Endpoint, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		port, err := parsePort(parts[0])
		if err != nil {
			return Endpoint{}, fmt.Errorf("cdn: invalid port %q: %w", parts[0], err)
		}
		return Endpoint{Server: true, Port: port}, nil

	case 2:
		ip := net.ParseIP(parts[0]).To4()
		if ip == nil {
			return Endpoint{}, fmt.Errorf("cdn: invalid IPv4 address %q", parts[0])
		}
		port, err := parsePort(parts[1])
		if err != nil {
			return Endpoint{}, fmt.Errorf("cdn: invalid port %q: %w", parts[1], err)
		}
		return Endpoint{Server: false, IP: ip, Port: port}, nil

	default:
		return Endpoint{}, fmt.Errorf("cdn: invalid connection mode %q", s)
	}
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// Addr renders the endpoint as a net.Dial/net.Listen address string.
func (e Endpoint) Addr() string {
	if e.Server {
		return fmt.Sprintf(":%d", e.Port)
	}
	return fmt.Sprintf("%s:%d", e.IP.String(), e.Port)
}
