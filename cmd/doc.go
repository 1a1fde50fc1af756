// Package cmd implements the command-line interface of dCaps.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the server (data channel and control socket)
//   - status: Reads the status line from the control socket of a running server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Fatal startup errors are printed to stderr and mapped to their exit status
// (see common.FatalError). See dcaps -help for a list of all commands.
package cmd
