package server

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrAddrInUse is returned by Listen when another process already holds the
// address.
var ErrAddrInUse = errors.New("address already in use")

// Listen opens the TCP listener the server will accept connections on. A
// port held by another process is reported as ErrAddrInUse; pass the
// listener straight to Serve.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s", ErrAddrInUse, addr)
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}
