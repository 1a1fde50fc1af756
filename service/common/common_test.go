package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ErrAuth, ExitAuth},
		{ErrLogFile, ExitLogFile},
		{ErrInvalidPort, ExitInvalidPort},
		{fmt.Errorf("resolving eth9: %w", ErrBadInterface), ExitBadInterface},
		{fmt.Errorf("%w: address in use", ErrBind), ExitBind},
		{ErrListen, ExitListen},
		{ErrPathTooLong, ExitPathTooLong},
		{ErrAccept, ExitAccept},
		{errors.New("something else"), ExitUsage},
	}

	seen := map[int]error{}
	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
		if tt.err == nil || tt.want == ExitUsage {
			continue
		}
		if other, ok := seen[tt.want]; ok {
			t.Errorf("Exit code %d shared by %v and %v", tt.want, other, tt.err)
		}
		seen[tt.want] = tt.err
	}
}

func TestExitCodeForSignal(t *testing.T) {
	if got := ExitCodeForSignal(syscall.SIGINT); got != 130 {
		t.Errorf("Expected 130 for SIGINT, got %d", got)
	}
	if got := ExitCodeForSignal(syscall.SIGTERM); got != 143 {
		t.Errorf("Expected 143 for SIGTERM, got %d", got)
	}
	if got := ExitCodeForSignal(os.Interrupt); got != 130 {
		t.Errorf("Expected 130 for os.Interrupt, got %d", got)
	}
}

func TestFatalError(t *testing.T) {
	err := NewFatalError(fmt.Errorf("binding: %w", ErrPathTooLong))
	if err.Code != ExitPathTooLong {
		t.Errorf("Expected code %d, got %d", ExitPathTooLong, err.Code)
	}
	if !errors.Is(err, ErrPathTooLong) {
		t.Errorf("Expected FatalError to unwrap to ErrPathTooLong")
	}

	var wrapped error = fmt.Errorf("startup: %w", err)
	var fatal *FatalError
	if !errors.As(wrapped, &fatal) || fatal.Code != ExitPathTooLong {
		t.Errorf("Expected errors.As to find the FatalError")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultServerConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr error
	}{
		{"ephemeral port", func(c *ServerConfig) { c.Port = 0 }, nil},
		{"explicit port", func(c *ServerConfig) { c.Port = 8080 }, nil},
		{"highest port", func(c *ServerConfig) { c.Port = 65534 }, nil},
		{"negative port", func(c *ServerConfig) { c.Port = -1 }, ErrInvalidPort},
		{"port 65535", func(c *ServerConfig) { c.Port = 65535 }, ErrInvalidPort},
		{"zero buffer", func(c *ServerConfig) { c.BufferSize = 0 }, ErrUsage},
		{"negative max connections", func(c *ServerConfig) { c.MaxConnections = -1 }, ErrUsage},
		{"empty socket path", func(c *ServerConfig) { c.SocketPath = "" }, ErrUsage},
		{"bad log level", func(c *ServerConfig) { c.LogLevel = "loud" }, ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultServerConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigStringHidesSecret(t *testing.T) {
	c := DefaultServerConfig()
	c.AuthFile = "/etc/dcaps/auth"
	c.Secret = "hunter2"

	out := c.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("Config string leaks the secret:\n%s", out)
	}
	for _, want := range []string{"ephemeral", "INADDR_ANY", DefaultSocketPath, "/etc/dcaps/auth", "unlimited"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected config string to contain %q:\n%s", want, out)
		}
	}
}

func TestLoadSecret(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", p, err)
		}
		return p
	}

	t.Run("first line", func(t *testing.T) {
		got, err := LoadSecret(write("ok", "s3cret\nignored\n"))
		if err != nil || got != "s3cret" {
			t.Errorf("Expected s3cret, got %q (%v)", got, err)
		}
	})

	t.Run("crlf", func(t *testing.T) {
		got, err := LoadSecret(write("crlf", "s3cret\r\n"))
		if err != nil || got != "s3cret" {
			t.Errorf("Expected s3cret, got %q (%v)", got, err)
		}
	})

	t.Run("long line", func(t *testing.T) {
		long := strings.Repeat("x", 100_000)
		got, err := LoadSecret(write("long", long))
		if err != nil || got != long {
			t.Errorf("Expected the full long line, got %d bytes (%v)", len(got), err)
		}
	})

	for name, path := range map[string]string{
		"empty file":   write("empty", ""),
		"empty line":   write("blank", "\nsecond"),
		"missing file": filepath.Join(dir, "missing"),
		"empty path":   "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSecret(path); !errors.Is(err, ErrAuth) {
				t.Errorf("Expected ErrAuth, got %v", err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected an error for an unknown level")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var sb strings.Builder
	l := CreateLogger("test").(*dCapsLogger)
	l.logger.SetOutput(&sb)

	l.SetLevel(logger.WARNING)
	l.Infof("hidden %d", 1)
	l.Warningf("shown %d", 2)
	l.Errorf("shown %d", 3)

	out := sb.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message should have been filtered:\n%s", out)
	}
	if !strings.Contains(out, "WARN  | test       | shown 2") || !strings.Contains(out, "ERROR | test       | shown 3") {
		t.Errorf("Unexpected log output:\n%s", out)
	}
}

func TestFlushLogsWithoutFile(t *testing.T) {
	if err := FlushLogs(); err != nil {
		t.Errorf("Expected no error without a log file, got %v", err)
	}
}
