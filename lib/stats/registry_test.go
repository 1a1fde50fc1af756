package stats

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// TestUsersCounter tests basic increment and decrement functionality
func TestUsersCounter(t *testing.T) {
	r := NewRegistry()

	if got := r.SnapshotUsers(); got != 0 {
		t.Fatalf("Expected 0 users on a new registry, got %d", got)
	}

	r.IncrementUsers()
	r.IncrementUsers()
	if got := r.SnapshotUsers(); got != 2 {
		t.Errorf("Expected 2 users, got %d", got)
	}

	r.DecrementUsers()
	if got := r.SnapshotUsers(); got != 1 {
		t.Errorf("Expected 1 user, got %d", got)
	}
}

// TestUsersCounterNeverNegative makes sure an unmatched decrement does not underflow
func TestUsersCounterNeverNegative(t *testing.T) {
	r := NewRegistry()
	r.DecrementUsers()
	if got := r.SnapshotUsers(); got != 0 {
		t.Errorf("Expected 0 users after unmatched decrement, got %d", got)
	}
}

// TestConcurrentUsersStorm verifies that the counter returns to zero after
// many goroutines connect and disconnect concurrently
func TestConcurrentUsersStorm(t *testing.T) {
	r := NewRegistry()

	const workers = 64
	const iterations = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				r.IncrementUsers()
				if r.SnapshotUsers() < 1 {
					t.Errorf("Observed less than one user while holding a session")
					return
				}
				r.DecrementUsers()
			}
		}()
	}
	wg.Wait()

	if got := r.SnapshotUsers(); got != 0 {
		t.Errorf("Expected 0 users after storm, got %d", got)
	}
}

// TestNextAdminIDConcurrent verifies that admin ids are unique, dense and that
// the final count equals the number of calls
func TestNextAdminIDConcurrent(t *testing.T) {
	r := NewRegistry()

	const producers = 16
	const perProducer = 500
	total := producers * perProducer

	var mu sync.Mutex
	seen := make(map[int64]bool, total)

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := int64(0)
			for j := 0; j < perProducer; j++ {
				id := r.NextAdminID()
				if id <= last {
					t.Errorf("Admin id not increasing within one goroutine: %d after %d", id, last)
				}
				last = id

				mu.Lock()
				if seen[id] {
					t.Errorf("Duplicate admin id %d", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if got := r.SnapshotAdmins(); got != int64(total) {
		t.Errorf("Expected %d admin connections, got %d", total, got)
	}
	for id := int64(1); id <= int64(total); id++ {
		if !seen[id] {
			t.Fatalf("Admin id %d was never handed out", id)
		}
	}
}

// TestCountersIndependent checks that admin ids do not influence the user counter
func TestCountersIndependent(t *testing.T) {
	r := NewRegistry()
	r.IncrementUsers()
	for i := 0; i < 5; i++ {
		r.NextAdminID()
	}
	if got := r.SnapshotUsers(); got != 1 {
		t.Errorf("Expected 1 user, got %d", got)
	}
	if got := r.SnapshotAdmins(); got != 5 {
		t.Errorf("Expected 5 admins, got %d", got)
	}
}

// TestMetricsExposition checks that the registry is visible through the metric set
func TestMetricsExposition(t *testing.T) {
	r := NewRegistry()
	m := NewMetrics(r)

	r.IncrementUsers()
	r.IncrementUsers()
	r.NextAdminID()
	m.BytesEchoed.Add(5)
	m.ConnectionAccepted("tcp")
	m.ConnectionAccepted("unix")

	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	out := buf.String()

	for _, want := range []string{
		"dcaps_current_users 2",
		"dcaps_admin_connections_total 1",
		"dcaps_bytes_echoed_total 5",
		`dcaps_connections_total{listener="tcp"} 1`,
		`dcaps_connections_total{listener="unix"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected metrics output to contain %q, got:\n%s", want, out)
		}
	}
}

// TestMetricsSetsAreIsolated makes sure two metric sets can coexist
func TestMetricsSetsAreIsolated(t *testing.T) {
	a := NewMetrics(NewRegistry())
	b := NewMetrics(NewRegistry())
	a.BytesEchoed.Add(3)
	if got := b.BytesEchoed.Get(); got != 0 {
		t.Errorf("Expected isolated counter, got %d", got)
	}
}
