// Package common contains the types and helpers shared by all service
// packages: the server configuration, the logger setup, the auth file reader
// and the error taxonomy with its exit codes.
//
// Error Taxonomy:
//
//   - Startup-fatal: bind, listen, interface resolution and control path
//     errors. They are wrapped into a *FatalError whose Code is the exit status.
//   - Accept-loop-fatal: ErrAccept, returned when an accept loop dies.
//   - Per-connection: never leave the worker that hit them, they are only logged.
//
// Logging:
//
//	All packages obtain their logger through dragonboat's logger.GetLogger.
//	InitLoggers replaces the factory with a custom one that writes
//	"LEVEL | package | message" lines to stdout and, if configured, a log file.
package common
