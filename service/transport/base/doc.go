// Package base provides the foundation for the listening endpoints of dCaps,
// implementing the accept loop independent of the specific network protocol
// (TCP, Unix sockets). Protocol specifics are injected via IServerConnector.
//
// Key Components:
//
//   - IServerConnector: creates the bound listener for one protocol.
//
//   - serverTransport: runs the accept loop and starts one detached goroutine
//     per accepted connection. Handlers communicate with the rest of the
//     system only through whatever state they were constructed with.
//
// Behaviour:
//
//   - Accept errors stop the loop and are returned to the caller wrapped in
//     common.ErrAccept. Closing the transport ends the loop with a nil error.
//   - Live connections are tracked in an xsync.MapOf so Close can tear them
//     down; the process itself never waits for them.
//   - An optional admission limit (maxConnections > 0) acts as a counting
//     semaphore: the loop does not accept while all slots are taken.
//
// Thread Safety:
//
//	Listen, Addr, ActiveConnections and Close are safe for concurrent use.
//	Serve must be called at most once.
package base
