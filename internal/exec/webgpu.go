package exec

import (
	"fmt"

	"github.com/born-ml/linalg/internal/log"
)

// WebGPU is a device executor owning memory on a WebGPU adapter.
//
// It allocates, uploads and downloads device buffers, but no kernel ships a
// WebGPU body: every operation run on it fails with ErrNotImplemented. Its
// master executor performs host-side work such as Matrix Market ingestion.
//
// Only windows builds link the native bindings; elsewhere NewWebGPU reports
// ErrBackendUnavailable.
type WebGPU struct {
	gpu       webgpuDevice
	deviceID  int
	master    Executor
	memory    memoryTracker
	observers log.Observers
}

var _ Executor = (*WebGPU)(nil)

// NewWebGPU opens device deviceID and attaches it to master. A nil master
// gets a fresh CPU executor.
func NewWebGPU(deviceID int, master Executor, cfg Config) (*WebGPU, error) {
	if master == nil {
		master = NewCPU(cfg)
	}
	w := &WebGPU{deviceID: deviceID, master: master}
	w.memory.limit = cfg.MemoryLimit
	if err := w.gpu.open(deviceID); err != nil {
		return nil, err
	}
	return w, nil
}

// String returns the executor name including the device index.
func (w *WebGPU) String() string { return fmt.Sprintf("webgpu:%d", w.deviceID) }

// Kind implements Executor.
func (w *WebGPU) Kind() Kind { return KindWebGPU }

// DeviceID implements Executor.
func (w *WebGPU) DeviceID() int { return w.deviceID }

// Master implements Executor.
func (w *WebGPU) Master() Executor {
	if w.master == nil {
		return w
	}
	return w.master
}

// Alloc implements Executor.
func (w *WebGPU) Alloc(nbytes int) (Buffer, error) {
	w.observers.AllocationStarted(w, nbytes)
	if err := w.memory.reserve(w.String(), nbytes); err != nil {
		w.observers.AllocationCompleted(w, nbytes, err)
		return nil, err
	}
	buf, err := w.gpu.alloc(nbytes)
	if err != nil {
		w.memory.release(nbytes)
		err = &AllocationError{Executor: w.String(), Bytes: nbytes, Reason: err.Error()}
		w.observers.AllocationCompleted(w, nbytes, err)
		return nil, err
	}
	w.observers.AllocationCompleted(w, nbytes, nil)
	return buf, nil
}

// Free implements Executor.
func (w *WebGPU) Free(buf Buffer) {
	if buf == nil {
		return
	}
	if n, ok := w.gpu.free(buf); ok {
		w.memory.release(n)
		w.observers.FreeCompleted(w, n)
	}
}

// RawCopyTo implements Executor.
func (w *WebGPU) RawCopyTo(dst Executor, nbytes int, src, dstBuf Buffer) error {
	if dst == Executor(w) {
		return w.gpu.copyDevice(src, dstBuf, nbytes)
	}
	staging := make([]byte, nbytes)
	if err := w.gpu.download(src, staging); err != nil {
		return err
	}
	return copyFromHost(staging, dst, nbytes, dstBuf)
}

// upload writes host bytes into a buffer owned by w.
func (w *WebGPU) upload(dst Buffer, data []byte) error {
	return w.gpu.upload(dst, data)
}

// Run implements Executor.
func (w *WebGPU) Run(op Operation) error {
	w.observers.OperationLaunched(w, op.Name())
	err := op.RunWebGPU(w)
	w.observers.OperationCompleted(w, op.Name(), err)
	return err
}

// Synchronize implements Executor.
func (w *WebGPU) Synchronize() error { return w.gpu.flush() }

// Observers implements Executor.
func (w *WebGPU) Observers() *log.Observers { return &w.observers }

// MemoryStats implements Executor.
func (w *WebGPU) MemoryStats() MemoryStats { return w.memory.stats() }

// Close releases the device. Buffers still allocated become invalid.
func (w *WebGPU) Close() {
	w.gpu.close()
}
