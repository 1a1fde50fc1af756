package worker

import (
	"errors"
	"io"
	"net"

	"github.com/ValentinKolb/dCaps/lib/stats"
	"github.com/ValentinKolb/dCaps/lib/transform"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("worker")

// EchoWorker serves the public data channel: every read is transformed and
// answered by exactly one write of the same length
type EchoWorker struct {
	registry   *stats.Registry
	metrics    *stats.Metrics
	transform  transform.Func
	bufferSize int
	greeting   []byte
}

// NewEchoWorker creates the handler for public connections.
// An empty greeting disables the greeting.
func NewEchoWorker(registry *stats.Registry, metrics *stats.Metrics, fn transform.Func, bufferSize int, greeting string) *EchoWorker {
	w := &EchoWorker{
		registry:   registry,
		metrics:    metrics,
		transform:  fn,
		bufferSize: bufferSize,
	}
	if greeting != "" {
		w.greeting = []byte(greeting)
	}
	return w
}

// Serve owns conn until it is closed. It implements transport.ConnHandleFunc.
func (w *EchoWorker) Serve(conn net.Conn) {
	w.registry.IncrementUsers()
	w.metrics.ConnectionAccepted("tcp")

	peer := conn.RemoteAddr()
	Logger.Infof("Accepted connection from %s", peer)

	// always close and unregister, also on the error path
	defer func() {
		_ = conn.Close()
		w.registry.DecrementUsers()
		Logger.Infof("Connection from %s closed", peer)
	}()

	err := w.loop(conn)
	switch {
	case err == nil:
	case errors.Is(err, net.ErrClosed):
		// closed by the server during shutdown
		Logger.Debugf("Connection from %s closed by the server", peer)
	default:
		w.metrics.ConnectionErrors.Inc()
		Logger.Errorf("Connection from %s closed abnormally: %v", peer, err)
	}
}

// loop reads, transforms and writes until EOF (nil) or an I/O error
func (w *EchoWorker) loop(conn net.Conn) error {
	if w.greeting != nil {
		if _, err := conn.Write(w.greeting); err != nil {
			return err
		}
	}

	buf := make([]byte, w.bufferSize)
	for {
		n, err := conn.Read(buf)

		// a reader may return data together with an error, answer the data first
		if n > 0 {
			out := w.transform(buf[:n])
			if _, werr := conn.Write(out[:n]); werr != nil {
				return werr
			}
			w.metrics.BytesEchoed.Add(n)
		}

		// Case EOF: connection closed by client
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
