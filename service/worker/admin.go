package worker

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/dCaps/lib/stats"
)

// statusFormat is the single line written to every admin connection
const statusFormat = "hello! we have %d users! goodbye!\n"

// FormatStatus renders the status line for the given user count
func FormatStatus(users int64) string {
	return fmt.Sprintf(statusFormat, users)
}

// ParseStatus extracts the user count from a status line
func ParseStatus(line string) (int64, error) {
	var users int64
	if _, err := fmt.Sscanf(line, statusFormat, &users); err != nil {
		return 0, fmt.Errorf("malformed status line %q: %v", line, err)
	}
	return users, nil
}

// AdminWorker serves the control channel: one status line, then close
type AdminWorker struct {
	registry     *stats.Registry
	metrics      *stats.Metrics
	writeTimeout time.Duration
}

// NewAdminWorker creates the handler for admin connections.
// writeTimeout bounds the status write, 0 disables the bound.
func NewAdminWorker(registry *stats.Registry, metrics *stats.Metrics, writeTimeout time.Duration) *AdminWorker {
	return &AdminWorker{
		registry:     registry,
		metrics:      metrics,
		writeTimeout: writeTimeout,
	}
}

// Serve writes the status line and closes conn. It implements transport.ConnHandleFunc.
func (w *AdminWorker) Serve(conn net.Conn) {
	id := w.registry.NextAdminID()
	w.metrics.ConnectionAccepted("unix")
	Logger.Infof("Admin %d connected", id)

	defer func() {
		_ = conn.Close()
		Logger.Infof("Admin %d disconnected", id)
	}()

	status := FormatStatus(w.registry.SnapshotUsers())

	if w.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
			Logger.Warningf("Admin %d: failed to set write deadline: %v", id, err)
		}
	}

	if _, err := conn.Write([]byte(status)); err != nil {
		w.metrics.ConnectionErrors.Inc()
		Logger.Errorf("Admin %d: failed to write status: %v", id, err)
	}
}
