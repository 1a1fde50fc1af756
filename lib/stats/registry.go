package stats

import (
	"sync"
)

// ----------------------------------------------------------------------------
// Process statistics
// ----------------------------------------------------------------------------

// ProcessStats holds the number of public connections that are currently
// between "accepted" and "closed".
type ProcessStats struct {
	mutex        sync.Mutex
	currentUsers int64
}

// AdminStats holds the total number of admin connections ever accepted.
// The value never decreases.
type AdminStats struct {
	mutex          sync.Mutex
	connectedCount int64
}

// ----------------------------------------------------------------------------
// Registry
// ----------------------------------------------------------------------------

// Registry is the shared state between the data listener, the admin listener
// and all of their workers. Each field has its own lock, locks are never nested
// and never held across I/O.
type Registry struct {
	process ProcessStats
	admin   AdminStats
}

// NewRegistry creates a new registry with all counters set to zero
func NewRegistry() *Registry {
	return &Registry{}
}

// IncrementUsers registers a newly started connection worker
//
// Thread-safe: This method is safe for concurrent use
func (r *Registry) IncrementUsers() {
	r.process.mutex.Lock()
	r.process.currentUsers++
	r.process.mutex.Unlock()
}

// DecrementUsers unregisters an exiting connection worker.
// The counter never drops below zero.
//
// Thread-safe: This method is safe for concurrent use
func (r *Registry) DecrementUsers() {
	r.process.mutex.Lock()
	if r.process.currentUsers > 0 {
		r.process.currentUsers--
	}
	r.process.mutex.Unlock()
}

// SnapshotUsers returns the number of currently connected users
//
// Thread-safe: This method is safe for concurrent use
func (r *Registry) SnapshotUsers() int64 {
	r.process.mutex.Lock()
	defer r.process.mutex.Unlock()
	return r.process.currentUsers
}

// NextAdminID increments the admin connection count and returns the new value,
// which doubles as the ordinal of the admin session.
//
// Thread-safe: This method is safe for concurrent use
func (r *Registry) NextAdminID() int64 {
	r.admin.mutex.Lock()
	defer r.admin.mutex.Unlock()
	r.admin.connectedCount++
	return r.admin.connectedCount
}

// SnapshotAdmins returns the total number of admin connections accepted so far
//
// Thread-safe: This method is safe for concurrent use
func (r *Registry) SnapshotAdmins() int64 {
	r.admin.mutex.Lock()
	defer r.admin.mutex.Unlock()
	return r.admin.connectedCount
}
