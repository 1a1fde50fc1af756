package common

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// --------------------------------------------------------------------------
// Exit codes
// --------------------------------------------------------------------------

// Every startup-fatal condition maps to its own exit status
const (
	ExitOK           = 0
	ExitUsage        = 1
	ExitAuth         = 2
	ExitLogFile      = 3
	ExitInvalidPort  = 4
	ExitBadInterface = 5
	ExitBind         = 6
	ExitListen       = 7
	ExitPathTooLong  = 8
	ExitAccept       = 9

	// exitSignalBase is added to the signal number, following the shell convention
	exitSignalBase = 128
)

// --------------------------------------------------------------------------
// Sentinel errors
// --------------------------------------------------------------------------

var (
	ErrUsage         = errors.New("invalid usage")
	ErrAuth          = errors.New("invalid name/auth")
	ErrLogFile       = errors.New("unable to open log")
	ErrInvalidPort   = errors.New("invalid port")
	ErrBadInterface  = errors.New("bad interface")
	ErrBind          = errors.New("bind failed")
	ErrListen        = errors.New("listen failed")
	ErrPathTooLong   = errors.New("control socket path is too long")
	ErrAccept        = errors.New("accept failed")
	ErrNotListening  = errors.New("transport is not listening")
	ErrNoHandler     = errors.New("no handler registered")
	ErrAlreadyListen = errors.New("transport is already listening")
)

// ExitCodeFor returns the exit status for an error.
// Unknown errors map to ExitUsage.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrAuth):
		return ExitAuth
	case errors.Is(err, ErrLogFile):
		return ExitLogFile
	case errors.Is(err, ErrInvalidPort):
		return ExitInvalidPort
	case errors.Is(err, ErrBadInterface):
		return ExitBadInterface
	case errors.Is(err, ErrBind):
		return ExitBind
	case errors.Is(err, ErrListen):
		return ExitListen
	case errors.Is(err, ErrPathTooLong):
		return ExitPathTooLong
	case errors.Is(err, ErrAccept):
		return ExitAccept
	default:
		return ExitUsage
	}
}

// ExitCodeForSignal returns 128 + the signal number (130 for SIGINT)
func ExitCodeForSignal(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return exitSignalBase + int(s)
	}
	return exitSignalBase + int(syscall.SIGINT)
}

// --------------------------------------------------------------------------
// FatalError
// --------------------------------------------------------------------------

// FatalError is returned for conditions that must terminate the process.
// Code is the exit status the process should terminate with.
type FatalError struct {
	Code int
	Err  error
}

// NewFatalError wraps err and derives the exit code from it
func NewFatalError(err error) *FatalError {
	return &FatalError{Code: ExitCodeFor(err), Err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal (exit %d): %v", e.Code, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
