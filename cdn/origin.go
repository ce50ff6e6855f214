package cdn

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
)

// ServeOrigin runs the toy origin's echo loop on one accepted connection:
// for every CdnRequest it reads, it writes back an OriginResponse for the
// same key with a randomly filled payload. Grounded on proj-toy-origin's
// per-connection echo task; payload fill uses math/rand instead of
// rand_xorshift since no payload byte carries any simulated meaning, only
// its size does.
func ServeOrigin(conn net.Conn) error {
	defer conn.Close()
	r := rand.New(rand.NewSource(rand.Int63()))

	for {
		key, err := ReadRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("cdn: origin read request: %w", err)
		}

		var payload [ResponsePayloadSize]byte
		r.Read(payload[:])

		if err := WriteResponse(conn, key, payload); err != nil {
			return fmt.Errorf("cdn: origin write response: %w", err)
		}
	}
}

// ListenOrigin accepts connections on addr until the listener is closed,
// serving each on its own goroutine.
func ListenOrigin(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cdn: listen on %s: %w", addr, err)
	}
	defer ln.Close()
	log.Printf("cdn origin: listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("cdn: accept: %w", err)
		}
		setNoDelay(conn)
		go func() {
			if err := ServeOrigin(conn); err != nil {
				log.Printf("cdn origin: connection error: %v", err)
			}
		}()
	}
}

func setNoDelay(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}
