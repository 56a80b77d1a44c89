// Package exec implements compute executors and the operation dispatch
// contract.
//
// An Executor owns memory on one backend and runs Operations. Every
// Operation carries one body per executor kind; Executor.Run invokes the
// body for its own kind and nothing else, so results never silently come
// from a different backend than the one the caller selected.
//
// All calls are synchronous: Run returns once the kernel has completed and
// its writes are visible to the next call on the same goroutine.
package exec

import (
	"fmt"
	"sync/atomic"

	"github.com/born-ml/linalg/internal/log"
	"github.com/born-ml/linalg/internal/parallel"
)

// Executor represents a compute backend together with its memory.
//
// Executors are shared handles: many matrices may reference one executor.
// Concurrent Run calls on distinct data are safe on host executors; device
// executors serialize submissions internally.
type Executor interface {
	fmt.Stringer

	// Kind returns the backend kind used to select operation bodies.
	Kind() Kind
	// DeviceID returns the device index, 0 for host executors.
	DeviceID() int
	// Master returns the host executor associated with this executor.
	// Host executors are their own master.
	Master() Executor

	// Alloc allocates nbytes of backend memory.
	Alloc(nbytes int) (Buffer, error)
	// Free releases a buffer allocated by this executor.
	Free(buf Buffer)
	// RawCopyTo copies nbytes from src (owned by this executor) into dstBuf
	// (owned by dst). Use Copy instead of calling this directly.
	RawCopyTo(dst Executor, nbytes int, src, dstBuf Buffer) error

	// Run executes op with the body registered for Kind().
	Run(op Operation) error
	// Synchronize blocks until all submitted work has completed.
	Synchronize() error

	// Observers returns the loggers attached to this executor.
	Observers() *log.Observers
	// MemoryStats returns allocation counters.
	MemoryStats() MemoryStats
}

// Config configures executors created by this package.
type Config struct {
	// MemoryLimit caps the live bytes an executor may hold. 0 means no limit.
	MemoryLimit int64 `yaml:"memory_limit"`
	// Parallel controls row-parallel kernels on the CPU executor.
	Parallel parallel.Config `yaml:"parallel"`
}

// DefaultConfig returns an unlimited configuration with parallel defaults
// derived from the CPU count.
func DefaultConfig() Config {
	return Config{
		Parallel: parallel.DefaultConfig(),
	}
}

// MemoryStats reports allocation counters of one executor.
type MemoryStats struct {
	LiveBytes   int64 // Bytes currently allocated.
	PeakBytes   int64 // Highest LiveBytes value observed.
	Allocations int64 // Number of successful allocations.
	Frees       int64 // Number of frees.
}

// memoryTracker keeps allocation counters and enforces the memory limit.
type memoryTracker struct {
	limit       int64
	live        atomic.Int64
	peak        atomic.Int64
	allocations atomic.Int64
	frees       atomic.Int64
}

// reserve accounts for nbytes, failing if the limit would be exceeded.
func (m *memoryTracker) reserve(exec string, nbytes int) error {
	if nbytes < 0 {
		return &AllocationError{Executor: exec, Bytes: nbytes, Reason: "negative size"}
	}
	live := m.live.Add(int64(nbytes))
	if m.limit > 0 && live > m.limit {
		m.live.Add(-int64(nbytes))
		return &AllocationError{
			Executor: exec,
			Bytes:    nbytes,
			Reason:   fmt.Sprintf("memory limit of %d bytes exceeded (%d bytes live)", m.limit, live-int64(nbytes)),
		}
	}
	for {
		peak := m.peak.Load()
		if live <= peak || m.peak.CompareAndSwap(peak, live) {
			break
		}
	}
	m.allocations.Add(1)
	return nil
}

func (m *memoryTracker) release(nbytes int) {
	m.live.Add(-int64(nbytes))
	m.frees.Add(1)
}

func (m *memoryTracker) stats() MemoryStats {
	return MemoryStats{
		LiveBytes:   m.live.Load(),
		PeakBytes:   m.peak.Load(),
		Allocations: m.allocations.Load(),
		Frees:       m.frees.Load(),
	}
}

// SameFamily reports whether a and b can be operands of one operation.
// Host executors share memory with each other; device executors must be the
// same kind and device.
func SameFamily(a, b Executor) bool {
	if a.Kind().IsHost() && b.Kind().IsHost() {
		return true
	}
	return a.Kind() == b.Kind() && a.DeviceID() == b.DeviceID()
}

// CheckFamily returns an ErrExecutorMismatch error naming op if any operand
// executor is outside the family of the first.
func CheckFamily(op string, execs ...Executor) error {
	if len(execs) == 0 {
		return nil
	}
	for _, e := range execs[1:] {
		if !SameFamily(execs[0], e) {
			return MismatchError(op, execs[0], e)
		}
	}
	return nil
}
