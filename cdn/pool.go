package cdn

import (
	"fmt"
	"net"
)

// DialPool opens n TCP connections to addr, grounded on proj-net's
// new_as_client. Every connection has TCP_NODELAY set, since the wire
// protocol is small fixed-size frames where Nagle's algorithm would only
// add latency.
func DialPool(addr string, n int) ([]net.Conn, error) {
	conns := make([]net.Conn, 0, n)
	for i := 0; i < n; i++ {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("cdn: dial %s (connection %d/%d): %w", addr, i+1, n, err)
		}
		setNoDelay(conn)
		conns = append(conns, conn)
	}
	return conns, nil
}

// AcceptPool listens on addr and accepts exactly n connections before
// returning, grounded on proj-net's new_as_server.
func AcceptPool(addr string, n int) ([]net.Conn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cdn: listen on %s: %w", addr, err)
	}
	defer ln.Close()

	conns := make([]net.Conn, 0, n)
	for i := 0; i < n; i++ {
		conn, err := ln.Accept()
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("cdn: accept connection %d/%d: %w", i+1, n, err)
		}
		setNoDelay(conn)
		conns = append(conns, conn)
	}
	return conns, nil
}

func closeAll(conns []net.Conn) {
	for _, c := range conns {
		c.Close()
	}
}
