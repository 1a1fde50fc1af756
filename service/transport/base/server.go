package base

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a bound, listening listener and returns it
	Listen() (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the accept loop shared by all transports
type serverTransport struct {
	connector IServerConnector
	handler   transport.ConnHandleFunc

	mutex    sync.Mutex
	listener net.Listener
	closed   bool

	// live connections, keyed by a per-transport connection id
	sessions *xsync.MapOf[uint64, net.Conn]
	nextID   atomic.Uint64

	// counting semaphore bounding concurrent handlers, nil if unlimited
	slots chan struct{}
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport.
// maxConnections bounds the number of concurrently running handlers,
// 0 means unlimited.
func NewBaseServerTransport(connector IServerConnector, maxConnections int) transport.IServerTransport {
	t := &serverTransport{
		connector: connector,
		sessions:  xsync.NewMapOf[uint64, net.Conn](),
	}
	if maxConnections > 0 {
		t.slots = make(chan struct{}, maxConnections)
	}
	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ConnHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) GetName() string {
	return t.connector.GetName()
}

func (t *serverTransport) Listen() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return fmt.Errorf("%s: %w", t.GetName(), net.ErrClosed)
	}
	if t.listener != nil {
		return fmt.Errorf("%s: %w", t.GetName(), common.ErrAlreadyListen)
	}

	listener, err := t.connector.Listen()
	if err != nil {
		return err
	}
	t.listener = listener

	Logger.Debugf("%s transport bound to %s", t.GetName(), listener.Addr())
	return nil
}

func (t *serverTransport) Addr() net.Addr {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) ActiveConnections() int {
	return t.sessions.Size()
}

func (t *serverTransport) Serve() error {
	t.mutex.Lock()
	listener := t.listener
	t.mutex.Unlock()

	if listener == nil {
		return fmt.Errorf("%s: %w", t.GetName(), common.ErrNotListening)
	}
	if t.handler == nil {
		return fmt.Errorf("%s: %w", t.GetName(), common.ErrNoHandler)
	}

	if t.slots != nil {
		Logger.Infof("Starting %s accept loop on %s (max %d connections)", t.GetName(), listener.Addr(), cap(t.slots))
	} else {
		Logger.Infof("Starting %s accept loop on %s", t.GetName(), listener.Addr())
	}

	// Accept connections
	for {
		// Acquire a slot (blocks if the admission limit is reached)
		if t.slots != nil {
			t.slots <- struct{}{}
		}

		conn, err := listener.Accept()
		if err != nil {
			t.release()

			// Case closed: the transport was shut down on purpose
			if errors.Is(err, net.ErrClosed) {
				Logger.Infof("%s accept loop stopped", t.GetName())
				return nil
			}

			// Case error: a dead accept loop silently stops serving, so this is fatal
			Logger.Errorf("%s accept error: %v", t.GetName(), err)
			return fmt.Errorf("%w on %s transport: %v", common.ErrAccept, t.GetName(), err)
		}

		id := t.nextID.Add(1)
		t.sessions.Store(id, conn)

		// Close may have run its sweep between Accept and Store
		if t.isClosed() {
			_ = conn.Close()
		}

		// Handle the connection in a goroutine
		go t.handleConnection(id, conn)
	}
}

func (t *serverTransport) Close() error {
	t.mutex.Lock()
	if t.closed {
		t.mutex.Unlock()
		return nil
	}
	t.closed = true
	listener := t.listener
	t.mutex.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}

	// Close in-flight connections, their handlers exit on the next read/write
	t.sessions.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})

	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection runs the handler for one connection. A panicking handler
// only takes down its own connection.
func (t *serverTransport) handleConnection(id uint64, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("%s handler for %s panicked: %v", t.GetName(), conn.RemoteAddr(), r)
			_ = conn.Close()
		}
		t.sessions.Delete(id)
		t.release()
	}()

	t.handler(conn)
}

func (t *serverTransport) isClosed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.closed
}

// release frees an admission slot
func (t *serverTransport) release() {
	if t.slots != nil {
		<-t.slots
	}
}
