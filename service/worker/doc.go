// Package worker implements the per-connection handlers of dCaps.
//
//   - EchoWorker owns one public connection: it registers itself in the
//     stats.Registry, answers every read with one write of the transformed
//     bytes and unregisters itself when the peer disconnects or I/O fails.
//
//   - AdminWorker owns one control connection: it takes the next admin id,
//     writes a single status line with the current user count and closes.
//
// Worker errors are logged and never leave the worker.
package worker
