package metrics

import "runtime"

// MemorySnapshot is a point-in-time reading of the Go runtime's memory
// statistics, taken after an estimation run.
type MemorySnapshot struct {
	HeapAlloc  uint64 `yaml:"heap_alloc_bytes"`
	TotalAlloc uint64 `yaml:"total_alloc_bytes"`
	Sys        uint64 `yaml:"sys_bytes"`
	NumGC      uint32 `yaml:"gc_cycles"`
	Goroutines int    `yaml:"goroutines"`
}

// ReadMemory reads the current runtime memory statistics.
func ReadMemory() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:  m.HeapAlloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}
