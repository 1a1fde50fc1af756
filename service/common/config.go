package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSocketPath is used when no control socket path is configured
	DefaultSocketPath = "./control-socket"
	// DefaultBufferSize is the read size of a connection worker
	DefaultBufferSize = 1024
	// DefaultAdminTimeoutSecond bounds the status write on the control socket
	DefaultAdminTimeoutSecond = 5

	maxPort = 65535
)

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the dCaps server
type ServerConfig struct {
	// Data channel
	Port           int    // 0 requests an ephemeral port
	Interface      string // host name or IP, empty binds all interfaces
	BufferSize     int
	MaxConnections int // 0 means unlimited
	Greeting       string

	// Control channel
	SocketPath         string
	AdminTimeoutSecond int64

	// Auth (read but not enforced)
	AuthFile string
	Secret   string

	// Metrics endpoint, empty disables it
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
	LogFile  string
}

// DefaultServerConfig returns a configuration with all defaults applied
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:               0,
		BufferSize:         DefaultBufferSize,
		SocketPath:         DefaultSocketPath,
		AdminTimeoutSecond: DefaultAdminTimeoutSecond,
		LogLevel:           "info",
	}
}

// AdminTimeout returns the admin write timeout as a duration
func (c *ServerConfig) AdminTimeout() time.Duration {
	return time.Duration(c.AdminTimeoutSecond) * time.Second
}

// Validate checks the configuration values that can be checked without
// touching the network or the filesystem
func (c *ServerConfig) Validate() error {
	// 0 is the ephemeral sentinel, 65535 is never accepted
	if c.Port < 0 || c.Port >= maxPort {
		return fmt.Errorf("%w: %d (expected 1-%d, or 0 for an ephemeral port)", ErrInvalidPort, c.Port, maxPort-1)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrUsage, c.BufferSize)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("%w: max connections must not be negative, got %d", ErrUsage, c.MaxConnections)
	}
	if c.AdminTimeoutSecond < 0 {
		return fmt.Errorf("%w: admin timeout must not be negative, got %d", ErrUsage, c.AdminTimeoutSecond)
	}
	if c.SocketPath == "" {
		return fmt.Errorf("%w: control socket path must not be empty", ErrUsage)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// String returns a formatted string representation of the configuration.
// The secret is never included.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	orDefault := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}

	// Data channel
	addSection("Data Channel")
	if c.Port == 0 {
		addField("Port", "ephemeral")
	} else {
		addField("Port", strconv.Itoa(c.Port))
	}
	addField("Interface", orDefault(c.Interface, "INADDR_ANY"))
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.BufferSize))
	if c.MaxConnections > 0 {
		addField("Max Connections", strconv.Itoa(c.MaxConnections))
	} else {
		addField("Max Connections", "unlimited")
	}
	addField("Greeting", strconv.Quote(c.Greeting))

	// Control channel
	addSection("Control Channel")
	addField("Socket Path", c.SocketPath)
	addField("Write Timeout", fmt.Sprintf("%d sec", c.AdminTimeoutSecond))
	addField("Auth File", orDefault(c.AuthFile, "none (unauthenticated)"))

	// Metrics
	addSection("Metrics")
	addField("Endpoint", orDefault(c.MetricsEndpoint, "disabled"))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Log File", orDefault(c.LogFile, "stdout only"))

	return sb.String()
}
