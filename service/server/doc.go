// Package server implements the lifecycle of a dCaps process: it wires the
// shared stats.Registry into both listeners, sequences their startup and owns
// the teardown of the control socket file.
//
// Startup order:
//
//  1. the TCP data channel is bound (ephemeral port if 0 was requested) and
//     the resolved port is reported
//  2. its accept loop is started in its own goroutine
//  3. the control socket is bound and its path registered for cleanup
//  4. its accept loop is started in its own goroutine
//  5. (optional) the metrics endpoint is started
//
// Shutdown:
//
//	Run blocks until SIGINT/SIGTERM (cleanup, then exit with 128+signal),
//	an accept loop dies (returns a *common.FatalError with ExitAccept) or the
//	context is cancelled (Close, then return). SIGHUP triggers the log
//	rotation hook. In-flight connections are never awaited.
//
//	Cleanup is idempotent: it is called on the signal path and again on the
//	normal exit path, only the first call removes the file.
//
// Usage Example:
//
//	config := common.DefaultServerConfig()
//	config.Port = 4000
//	config.SocketPath = "/run/dcaps.sock"
//
//	s := server.NewServer(config)
//	if err := s.Start(); err != nil {
//	  log.Fatalf("startup failed: %v", err)
//	}
//	if err := s.Run(context.Background()); err != nil {
//	  log.Fatalf("server error: %v", err)
//	}
package server
