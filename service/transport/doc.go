// Package transport defines the contract shared by the two listening
// endpoints of dCaps: the public TCP data channel and the Unix domain control
// socket.
//
// A transport is used in three steps:
//
//	t.RegisterHandler(worker.Serve) // one goroutine per accepted connection
//	if err := t.Listen(); err != nil { ... } // bind, Addr() is now valid
//	go t.Serve()                       // accept loop
//
// Implementations:
//
//   - base: the protocol-agnostic accept loop, session tracking and admission limit
//   - tcp: binds a TCP endpoint on a resolved interface and (possibly ephemeral) port
//   - unix: binds a Unix domain socket with a small listen backlog
package transport
