package unix

import (
	"fmt"
	"io"
	"net"
	"time"
)

// ReadStatus connects to the control socket at path and returns everything
// the server writes before it closes the connection. The client never writes.
func ReadStatus(path string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return "", fmt.Errorf("failed to connect to control socket %s: %v", path, err)
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", fmt.Errorf("failed to set read deadline: %v", err)
		}
	}

	status, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("failed to read status: %v", err)
	}
	return string(status), nil
}
