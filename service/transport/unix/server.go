//go:build unix

package unix

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/transport"
	"github.com/ValentinKolb/dCaps/service/transport/base"
	sysunix "golang.org/x/sys/unix"
)

const (
	// MaxPathLen is the size of sun_path on the BSD family (including the
	// trailing NUL), the smallest limit among the supported platforms
	MaxPathLen = 104

	// listenBacklog is the queue depth of the control socket, admin traffic is
	// low-volume and human-operated
	listenBacklog = 5
)

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct {
	path string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen() (net.Listener, error) {
	if err := ValidatePath(c.path); err != nil {
		return nil, err
	}

	// Remove a stale socket file from a previous run
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to remove existing socket %s: %v", common.ErrBind, c.path, err)
	}

	fd, err := sysunix.Socket(sysunix.AF_UNIX, sysunix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: creating socket: %v", common.ErrBind, err)
	}
	sysunix.CloseOnExec(fd)

	if err := sysunix.Bind(fd, &sysunix.SockaddrUnix{Name: c.path}); err != nil {
		_ = sysunix.Close(fd)
		return nil, fmt.Errorf("%w: control socket %s: %v", common.ErrBind, c.path, err)
	}

	if err := sysunix.Listen(fd, listenBacklog); err != nil {
		_ = sysunix.Close(fd)
		_ = os.Remove(c.path)
		return nil, fmt.Errorf("%w: control socket %s: %v", common.ErrListen, c.path, err)
	}

	// net.FileListener dups the descriptor, ours is closed right after
	f := os.NewFile(uintptr(fd), c.path)
	defer f.Close()

	listener, err := net.FileListener(f)
	if err != nil {
		_ = os.Remove(c.path)
		return nil, fmt.Errorf("%w: control socket %s: %v", common.ErrListen, c.path, err)
	}

	return listener, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ValidatePath rejects control socket paths that do not fit into sun_path.
// It never touches the filesystem.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty control socket path", common.ErrUsage)
	}
	if len(path) >= MaxPathLen {
		return fmt.Errorf("%w: %d bytes, the limit is %d", common.ErrPathTooLong, len(path), MaxPathLen-1)
	}
	return nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixServerTransport creates the control channel transport bound to path
func NewUnixServerTransport(path string) transport.IServerTransport {
	return base.NewBaseServerTransport(&serverConnector{path: path}, 0)
}
