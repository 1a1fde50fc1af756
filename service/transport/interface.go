package transport

import (
	"net"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ConnHandleFunc handles one accepted connection end-to-end.
// It owns the connection and is responsible for closing it.
type ConnHandleFunc func(conn net.Conn)

// IServerTransport is the interface of a listening endpoint (tcp, unix)
type IServerTransport interface {
	// RegisterHandler registers the handler that is started (in its own
	// goroutine) for every accepted connection
	RegisterHandler(handler ConnHandleFunc)
	// Listen binds the endpoint. After Listen returns, Addr reports the bound address.
	Listen() error
	// Serve runs the accept loop until the transport is closed (returns nil)
	// or accepting fails (returns an error wrapping common.ErrAccept)
	Serve() error
	// Addr returns the bound address, or nil before Listen
	Addr() net.Addr
	// ActiveConnections returns the number of connections whose handler is still running
	ActiveConnections() int
	// Close closes the listener and all live connections. It is idempotent.
	Close() error
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}
