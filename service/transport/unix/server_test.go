//go:build unix

package unix

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dCaps/service/common"
)

// socketPath returns a short socket path inside a temp dir
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dcaps")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func greet(conn net.Conn) {
	defer conn.Close()
	_, _ = fmt.Fprintf(conn, "hello from %s\n", conn.LocalAddr().Network())
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"default", common.DefaultSocketPath, nil},
		{"longest allowed", strings.Repeat("a", MaxPathLen-1), nil},
		{"at limit", strings.Repeat("a", MaxPathLen), common.ErrPathTooLong},
		{"way too long", "/tmp/" + strings.Repeat("a", 300), common.ErrPathTooLong},
		{"empty", "", common.ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPathTooLongRejectedBeforeBind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, strings.Repeat("s", MaxPathLen))

	tr := NewUnixServerTransport(path)
	err := tr.Listen()
	if !errors.Is(err, common.ErrPathTooLong) {
		t.Fatalf("Expected ErrPathTooLong, got %v", err)
	}
	if common.ExitCodeFor(err) != common.ExitPathTooLong {
		t.Errorf("Expected exit code %d", common.ExitPathTooLong)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("Expected no socket file to be created, stat returned %v", statErr)
	}
}

func TestListenAndReadStatus(t *testing.T) {
	path := socketPath(t)

	tr := NewUnixServerTransport(path)
	tr.RegisterHandler(greet)
	if err := tr.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer tr.Close()
	go func() { _ = tr.Serve() }()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected socket file at %s: %v", path, err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		t.Fatalf("Expected %s to be a socket, mode %v", path, info.Mode())
	}
	if got := tr.Addr().String(); got != path {
		t.Errorf("Expected Addr %s, got %s", path, got)
	}

	for i := 0; i < 3; i++ {
		status, err := ReadStatus(path, 2*time.Second)
		if err != nil {
			t.Fatalf("ReadStatus failed: %v", err)
		}
		if status != "hello from unix\n" {
			t.Errorf("Unexpected status %q", status)
		}
	}
}

func TestStaleSocketFileIsReplaced(t *testing.T) {
	path := socketPath(t)

	// leftover from a crashed run: a plain file at the path
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("Failed to create stale file: %v", err)
	}

	tr := NewUnixServerTransport(path)
	tr.RegisterHandler(greet)
	if err := tr.Listen(); err != nil {
		t.Fatalf("Listen over stale file failed: %v", err)
	}
	defer tr.Close()
	go func() { _ = tr.Serve() }()

	if _, err := ReadStatus(path, 2*time.Second); err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
}

func TestRebindAfterClose(t *testing.T) {
	path := socketPath(t)

	first := NewUnixServerTransport(path)
	first.RegisterHandler(greet)
	if err := first.Listen(); err != nil {
		t.Fatalf("First Listen failed: %v", err)
	}
	_ = first.Close()

	// the listener does not unlink, the file stays behind like after a crash
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected the socket file to survive Close: %v", err)
	}

	second := NewUnixServerTransport(path)
	second.RegisterHandler(greet)
	if err := second.Listen(); err != nil {
		t.Fatalf("Rebinding failed: %v", err)
	}
	defer second.Close()
	go func() { _ = second.Serve() }()

	if _, err := ReadStatus(path, 2*time.Second); err != nil {
		t.Fatalf("ReadStatus after rebind failed: %v", err)
	}
}

func TestCloseStopsServe(t *testing.T) {
	path := socketPath(t)

	tr := NewUnixServerTransport(path)
	tr.RegisterHandler(greet)
	if err := tr.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- tr.Serve() }()

	_ = tr.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected nil from Serve after Close, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}
}

func TestReadStatusNoServer(t *testing.T) {
	if _, err := ReadStatus(socketPath(t), time.Second); err == nil {
		t.Fatalf("Expected an error without a server")
	}
}
