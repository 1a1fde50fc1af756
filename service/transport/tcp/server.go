package tcp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/ValentinKolb/dCaps/service/common"
	"github.com/ValentinKolb/dCaps/service/transport"
	"github.com/ValentinKolb/dCaps/service/transport/base"
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct {
	port      int
	iface     string
	noDelay   bool
	keepAlive bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen() (net.Listener, error) {
	// Resolve the interface (empty = all interfaces)
	host := ""
	if c.iface != "" {
		ip, err := ResolveInterface(c.iface)
		if err != nil {
			return nil, err
		}
		host = ip.String()
	}

	// Create TCP socket listener (port 0 = ephemeral)
	addr := net.JoinHostPort(host, strconv.Itoa(c.port))
	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: tcp socket on %s: %v", common.ErrBind, addr, err)
	}

	return &tcpListener{TCPListener: listener.(*net.TCPListener), connector: c}, nil
}

// --------------------------------------------------------------------------
// Listener wrapper applying socket options on accept
// --------------------------------------------------------------------------

type tcpListener struct {
	*net.TCPListener
	connector *serverConnector
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.TCPListener.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err := l.connector.UpgradeConnection(conn); err != nil {
		base.Logger.Warningf("failed to set socket options for %s: %v", conn.RemoteAddr(), err)
	}
	return conn, nil
}

// UpgradeConnection applies the configured socket options to an accepted connection
func (c *serverConnector) UpgradeConnection(conn *net.TCPConn) error {
	// Disable Nagle's algorithm: each read is answered by one small write
	if err := conn.SetNoDelay(c.noDelay); err != nil {
		return err
	}
	if err := conn.SetKeepAlive(c.keepAlive); err != nil {
		return err
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ResolveInterface turns a host name or IP literal into the IPv4 address to bind
func ResolveInterface(iface string) (net.IP, error) {
	ipAddr, err := net.ResolveIPAddr("ip4", iface)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", common.ErrBadInterface, iface, err)
	}
	return ipAddr.IP, nil
}

// Port returns the port a transport is bound to, or 0 if it is not a bound tcp transport
func Port(t transport.IServerTransport) int {
	addr, ok := t.Addr().(*net.TCPAddr)
	if !ok || addr == nil {
		return 0
	}
	return addr.Port
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPServerTransport creates the data channel transport. port 0 requests
// an ephemeral port, an empty iface binds all interfaces and maxConnections 0
// disables the admission limit.
func NewTCPServerTransport(port int, iface string, maxConnections int) transport.IServerTransport {
	return base.NewBaseServerTransport(&serverConnector{
		port:      port,
		iface:     iface,
		noDelay:   true,
		keepAlive: true,
	}, maxConnections)
}
