//go:build windows

// Package webgpu holds the device-memory helpers of the WebGPU executor.
// It carries no kernel bodies: every operation dispatched to a WebGPU
// executor reports that it is not implemented.
package webgpu

import (
	"math/bits"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	// CopyAlignment is the granularity of buffer-to-buffer copies.
	CopyAlignment = 4
	// minBucket is the smallest pooled buffer size (256 bytes).
	minBucket = 8
	// maxPerBucket caps idle buffers kept per size class.
	maxPerBucket = 16
)

// StorageUsage is the usage every pooled buffer is created with.
const StorageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Align rounds n up to CopyAlignment.
func Align(n uint64) uint64 {
	return (n + CopyAlignment - 1) &^ (CopyAlignment - 1)
}

// bucket returns the power-of-two size class serving n bytes.
func bucket(n uint64) int {
	if n <= 1<<minBucket {
		return minBucket
	}
	return bits.Len64(n - 1)
}

// BufferPool reuses storage buffers by power-of-two size class so repeated
// matrix allocations of similar sizes do not hit the driver.
type BufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	idle map[int][]*wgpu.Buffer

	// Statistics
	created  uint64
	released uint64
	hits     uint64
	misses   uint64
}

// PoolStats reports pool counters.
type PoolStats struct {
	Created  uint64 // Buffers created on the device.
	Released uint64 // Buffers returned to the pool.
	Hits     uint64 // Acquires served from idle buffers.
	Misses   uint64 // Acquires that created a buffer.
	Idle     int    // Buffers currently idle in the pool.
}

// NewBufferPool creates a pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		idle:   make(map[int][]*wgpu.Buffer),
	}
}

// Acquire returns a storage buffer of at least size bytes, and the capacity
// actually reserved.
func (p *BufferPool) Acquire(size uint64) (*wgpu.Buffer, uint64) {
	b := bucket(Align(size))
	capacity := uint64(1) << b

	p.mu.Lock()
	defer p.mu.Unlock()

	if free := p.idle[b]; len(free) > 0 {
		buf := free[len(free)-1]
		p.idle[b] = free[:len(free)-1]
		p.hits++
		return buf, capacity
	}

	p.misses++
	p.created++
	buf := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: StorageUsage,
		Size:  capacity,
	})
	return buf, capacity
}

// Release hands a buffer of the given capacity back to the pool. If the
// size class is full the buffer is destroyed immediately.
func (p *BufferPool) Release(buf *wgpu.Buffer, capacity uint64) {
	b := bucket(capacity)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.released++
	if len(p.idle[b]) >= maxPerBucket {
		buf.Release()
		return
	}
	p.idle[b] = append(p.idle[b], buf)
}

// Clear destroys every idle buffer.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for b, free := range p.idle {
		for _, buf := range free {
			buf.Release()
		}
		delete(p.idle, b)
	}
}

// Stats returns pool counters.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := 0
	for _, free := range p.idle {
		idle += len(free)
	}
	return PoolStats{
		Created:  p.created,
		Released: p.released,
		Hits:     p.hits,
		Misses:   p.misses,
		Idle:     idle,
	}
}
