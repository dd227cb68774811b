package harness

import "runtime"

// MemorySnapshot is a point-in-time view of the Go runtime's memory and
// garbage collector counters.
type MemorySnapshot struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	HeapObjects     uint64 `json:"heap_objects"`
	NumGC           uint32 `json:"num_gc"`
	PauseTotalNs    uint64 `json:"pause_total_ns"`
}

// MemoryBytes returns the bytes of live heap objects.
func (s MemorySnapshot) MemoryBytes() uint64 {
	return s.AllocBytes
}

// MeasureResourceUsage reads the current runtime memory statistics.
// ReadMemStats stops the world briefly, so callers keep it outside any
// timed interval.
func MeasureResourceUsage() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemorySnapshot{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		HeapObjects:     m.HeapObjects,
		NumGC:           m.NumGC,
		PauseTotalNs:    m.PauseTotalNs,
	}
}

// GCDelta returns the number of GC cycles that completed between two
// snapshots.
func GCDelta(before, after *MemorySnapshot) uint32 {
	if before == nil || after == nil || after.NumGC < before.NumGC {
		return 0
	}

	return after.NumGC - before.NumGC
}
