// Package unix implements the control channel endpoint of dCaps using Unix
// domain sockets.
//
// Key Components:
//
//   - serverConnector: validates the path against the sun_path limit (before
//     any socket is created), removes a stale socket file and binds a new one.
//     The socket is created through golang.org/x/sys/unix so the listen
//     backlog can be kept small; the runtime would always use SOMAXCONN.
//
//   - ReadStatus: a minimal client that reads the single status line the
//     server writes on connect (same as `socat - UNIX-CONNECT:<path>`).
//
// The listener never unlinks its path on Close. Removing the socket file is
// the job of the lifecycle owner (see service/server).
package unix
