package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/dCaps/lib/stats"
	"github.com/ValentinKolb/dCaps/lib/transform"
	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/transport"
	"github.com/ValentinKolb/dCaps/service/transport/tcp"
	"github.com/ValentinKolb/dCaps/service/transport/unix"
	"github.com/ValentinKolb/dCaps/service/worker"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("server")

// Option configures optional collaborators of a Server
type Option func(s *Server)

// WithSignals replaces the OS signal subscription, e.g. to inject signals in tests
func WithSignals(ch <-chan os.Signal) Option {
	return func(s *Server) { s.signals = ch }
}

// WithExit replaces os.Exit, which is called after cleanup on a termination signal
func WithExit(exit func(code int)) Option {
	return func(s *Server) { s.exit = exit }
}

// WithLogRotateHook replaces the action run on SIGHUP (default: common.FlushLogs)
func WithLogRotateHook(hook func()) Option {
	return func(s *Server) { s.onLogRotate = hook }
}

// WithDataTransport replaces the TCP data channel transport, e.g. to inject
// a failing listener in tests. The echo handler is registered on it by Start.
func WithDataTransport(t transport.IServerTransport) Option {
	return func(s *Server) { s.data = t }
}

// WithOutput sets where the startup lines for the operator are printed (default: stdout)
func WithOutput(w io.Writer) Option {
	return func(s *Server) { s.out = w }
}

// Server owns the startup order of both listeners, the shared registry and
// the teardown of the control socket file
type Server struct {
	config   common.ServerConfig
	registry *stats.Registry
	metrics  *stats.Metrics

	data          transport.IServerTransport
	admin         transport.IServerTransport
	metricsServer *http.Server
	metricsAddr   net.Addr

	// accept loop failures, buffered so a dying loop never blocks
	errs chan error

	signals     <-chan os.Signal
	notify      chan os.Signal // own subscription, nil if signals were injected
	exit        func(code int)
	onLogRotate func()
	out         io.Writer

	// control socket path registered for cleanup, empty when nothing to remove
	cleanupMutex sync.Mutex
	controlPath  string

	closeOnce sync.Once
}

// NewServer creates a new server. Nothing is bound until Start is called.
//
// Usage:
//
//	s := server.NewServer(config)
//	if err := s.Start(); err != nil {
//		return err
//	}
//	return s.Run(ctx)
func NewServer(config common.ServerConfig, opts ...Option) *Server {
	registry := stats.NewRegistry()

	s := &Server{
		config:   config,
		registry: registry,
		metrics:  stats.NewMetrics(registry),
		errs:     make(chan error, 2),
		exit:     os.Exit,
		out:      os.Stdout,
		onLogRotate: func() {
			if err := common.FlushLogs(); err != nil {
				Logger.Errorf("failed to flush log file: %v", err)
			}
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the shared registry of this server
func (s *Server) Registry() *stats.Registry {
	return s.registry
}

// Metrics returns the metric set of this server
func (s *Server) Metrics() *stats.Metrics {
	return s.metrics
}

// Port returns the bound data channel port (0 before Start)
func (s *Server) Port() int {
	if s.data == nil {
		return 0
	}
	return tcp.Port(s.data)
}

// ControlPath returns the control socket path registered for cleanup, or
// an empty string if none is registered (anymore)
func (s *Server) ControlPath() string {
	s.cleanupMutex.Lock()
	defer s.cleanupMutex.Unlock()
	return s.controlPath
}

// Start binds the data channel, starts its accept loop, then binds the
// control socket and starts its accept loop. Every error is a *common.FatalError.
func (s *Server) Start() (err error) {
	if err := s.config.Validate(); err != nil {
		return common.NewFatalError(err)
	}

	// subscribe before anything is bound, a signal before Run is queued
	s.subscribe()
	defer func() {
		if err != nil {
			s.unsubscribe()
		}
	}()

	Logger.Infof("Starting dCaps server")
	Logger.Infof("%s", s.config.String())

	// Data channel first
	if s.data == nil {
		s.data = tcp.NewTCPServerTransport(s.config.Port, s.config.Interface, s.config.MaxConnections)
	}
	s.data.RegisterHandler(worker.NewEchoWorker(
		s.registry,
		s.metrics,
		transform.Capitalise,
		s.config.BufferSize,
		s.config.Greeting,
	).Serve)

	if err := s.data.Listen(); err != nil {
		return common.NewFatalError(err)
	}

	iface := s.config.Interface
	if iface == "" {
		iface = "INADDR_ANY"
	}
	Logger.Infof("Listening on port %d on interface %s", s.Port(), iface)
	_, _ = fmt.Fprintf(s.out, "Listening on port %d on interface %s\n", s.Port(), iface)

	go s.serve(s.data)

	// Control channel only once the data channel is serving
	s.admin = unix.NewUnixServerTransport(s.config.SocketPath)
	s.admin.RegisterHandler(worker.NewAdminWorker(s.registry, s.metrics, s.config.AdminTimeout()).Serve)

	if err := s.admin.Listen(); err != nil {
		_ = s.data.Close()
		return common.NewFatalError(err)
	}
	s.registerControlPath(s.config.SocketPath)

	Logger.Infof("Bound to control socket at %s", s.config.SocketPath)
	_, _ = fmt.Fprintf(s.out, "Bound to control socket at %s\n", s.config.SocketPath)

	if s.config.Secret == "" {
		Logger.Warningf("control socket is unauthenticated")
	}

	go s.serve(s.admin)

	// Optional metrics endpoint
	if s.config.MetricsEndpoint != "" {
		if err := s.startMetrics(); err != nil {
			s.Close()
			return common.NewFatalError(err)
		}
	}

	return nil
}

// Run blocks until a termination signal, a fatal accept loop error or the
// cancellation of ctx.
//
//   - SIGINT/SIGTERM: cleanup, then exit with 128+signal
//   - SIGHUP: runs the log rotation hook and keeps running
//   - accept loop failure: returns a *common.FatalError (ExitAccept)
//   - ctx done: closes everything and returns nil
func (s *Server) Run(ctx context.Context) error {
	s.subscribe()

	// normal-exit path, a no-op if the signal path already cleaned up
	defer func() {
		if err := s.Cleanup(); err != nil {
			Logger.Errorf("cleanup failed: %v", err)
		}
	}()

	for {
		select {
		case sig := <-s.signals:
			if sig == syscall.SIGHUP {
				Logger.Infof("Received %s, flushing logs", sig)
				s.onLogRotate()
				continue
			}

			Logger.Infof("Received %s, shutting down", sig)
			if err := s.Cleanup(); err != nil {
				Logger.Errorf("cleanup failed: %v", err)
			}
			s.exit(common.ExitCodeForSignal(sig))
			return nil

		case err := <-s.errs:
			s.Close()
			return common.NewFatalError(err)

		case <-ctx.Done():
			Logger.Infof("Context cancelled, shutting down")
			s.Close()
			return nil
		}
	}
}

// Cleanup removes the control socket file if one is registered. It is safe
// to call any number of times, from any goroutine; only the first call after
// registration touches the filesystem and a missing file is not an error.
func (s *Server) Cleanup() error {
	s.cleanupMutex.Lock()
	defer s.cleanupMutex.Unlock()

	if s.controlPath == "" {
		return nil
	}
	path := s.controlPath
	s.controlPath = ""

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove control socket %s: %v", path, err)
	}
	Logger.Infof("Removed control socket %s", path)
	return nil
}

// Close stops both accept loops, closes all live connections, stops the
// metrics endpoint and removes the control socket file. It is idempotent.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		if s.data != nil {
			_ = s.data.Close()
		}
		if s.admin != nil {
			_ = s.admin.Close()
		}
		if s.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = s.metricsServer.Shutdown(ctx)
		}
	})
	if err := s.Cleanup(); err != nil {
		Logger.Errorf("cleanup failed: %v", err)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// subscribe installs the OS signal subscription unless signals were injected
func (s *Server) subscribe() {
	if s.signals != nil {
		return
	}
	s.notify = make(chan os.Signal, 1)
	signal.Notify(s.notify, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	s.signals = s.notify
}

func (s *Server) unsubscribe() {
	if s.notify != nil {
		signal.Stop(s.notify)
	}
}

func (s *Server) registerControlPath(path string) {
	s.cleanupMutex.Lock()
	defer s.cleanupMutex.Unlock()
	s.controlPath = path
}

// serve runs the accept loop of t and reports a fatal failure
func (s *Server) serve(t transport.IServerTransport) {
	if err := t.Serve(); err != nil {
		Logger.Errorf("%s accept loop died: %v", t.GetName(), err)
		s.errs <- err
	}
}

// startMetrics serves GET /metrics on the configured endpoint
func (s *Server) startMetrics() error {
	listener, err := net.Listen("tcp", s.config.MetricsEndpoint)
	if err != nil {
		return fmt.Errorf("%w: metrics endpoint %s: %v", common.ErrBind, s.config.MetricsEndpoint, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		s.metrics.WritePrometheus(w)
	})

	s.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.metricsAddr = listener.Addr()
	Logger.Infof("Serving metrics on http://%s/metrics", listener.Addr())

	go func() {
		if err := s.metricsServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics endpoint stopped: %v", err)
		}
	}()
	return nil
}

// MetricsAddr returns the bound metrics address, or nil if metrics are disabled
func (s *Server) MetricsAddr() net.Addr {
	return s.metricsAddr
}
