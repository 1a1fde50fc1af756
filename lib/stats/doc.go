// Package stats holds the process wide state that is shared between the
// data listener, the admin listener and every connection worker.
//
// The package provides:
//   - Registry: the two shared counters (currently connected users and the
//     total number of admin connections), each guarded by its own mutex
//   - Metrics: a VictoriaMetrics set exposing the registry together with
//     traffic counters in the Prometheus text format
//
// Locking Rules:
//
//	Each counter has its own lock. A lock is acquired for a single field
//	access only, locks are never nested and never held across I/O. Operations
//	on the user counter therefore never block operations on the admin counter
//	and vice versa.
//
// Usage Example:
//
//	registry := stats.NewRegistry()
//	registry.IncrementUsers()
//	defer registry.DecrementUsers()
//
//	id := registry.NextAdminID() // 1, 2, 3, ...
//	users := registry.SnapshotUsers()
package stats
