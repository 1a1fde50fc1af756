// Package tcp implements the public data channel endpoint of dCaps on top of
// the base transport.
//
// The listener binds an IPv4 TCP socket on the requested interface (a host
// name or IP literal, resolved once at startup) and port. Port 0 asks the
// operating system for an ephemeral port; use Port to read the bound port
// back after Listen. A name that does not resolve is reported as
// common.ErrBadInterface, a failing bind as common.ErrBind.
//
// Accepted connections get TCP_NODELAY and keep-alive enabled before they are
// handed to the registered handler.
package tcp
