package exec

import (
	"github.com/born-ml/linalg/internal/log"
	"github.com/cockroachdb/errors"
)

// Buffer is a block of memory owned by one executor.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() int
}

// HostBuffer is memory allocated by a host executor.
type HostBuffer struct {
	data  []byte
	owner Executor
}

// Size implements Buffer.
func (b *HostBuffer) Size() int { return len(b.data) }

// Bytes returns the underlying memory.
func (b *HostBuffer) Bytes() []byte { return b.data }

// host carries the state shared by the host executors.
type host struct {
	cfg       Config
	memory    memoryTracker
	observers log.Observers
}

func (h *host) init(cfg Config) {
	h.cfg = cfg
	h.memory.limit = cfg.MemoryLimit
}

func (h *host) alloc(self Executor, nbytes int) (Buffer, error) {
	h.observers.AllocationStarted(self, nbytes)
	if err := h.memory.reserve(self.String(), nbytes); err != nil {
		h.observers.AllocationCompleted(self, nbytes, err)
		return nil, err
	}
	buf := &HostBuffer{data: make([]byte, nbytes), owner: self}
	h.observers.AllocationCompleted(self, nbytes, nil)
	return buf, nil
}

func (h *host) free(self Executor, buf Buffer) {
	hb, ok := buf.(*HostBuffer)
	if !ok || hb == nil || hb.data == nil || hb.owner != self {
		return
	}
	n := len(hb.data)
	hb.data = nil
	h.memory.release(n)
	h.observers.FreeCompleted(self, n)
}

// copyFromHost copies nbytes from a host buffer into dstBuf on dst.
func copyFromHost(src []byte, dst Executor, nbytes int, dstBuf Buffer) error {
	switch d := dst.(type) {
	case *WebGPU:
		return d.upload(dstBuf, src[:nbytes])
	default:
		if !dst.Kind().IsHost() {
			return errors.AssertionFailedf("exec: no copy path from host to %s", dst)
		}
		hb, ok := dstBuf.(*HostBuffer)
		if !ok {
			return errors.Wrapf(ErrForeignBuffer, "copy to %s", dst)
		}
		copy(hb.data[:nbytes], src[:nbytes])
		return nil
	}
}

// Copy moves nbytes from srcBuf on src into dstBuf on dst. It is the only
// path data takes between executors.
func Copy(dst Executor, dstBuf Buffer, src Executor, srcBuf Buffer, nbytes int) error {
	if nbytes == 0 {
		return nil
	}
	if nbytes < 0 || srcBuf == nil || dstBuf == nil || nbytes > srcBuf.Size() || nbytes > dstBuf.Size() {
		return errors.AssertionFailedf("exec: invalid copy of %d bytes from %s to %s", nbytes, src, dst)
	}
	dst.Observers().CopyStarted(src, dst, nbytes)
	err := src.RawCopyTo(dst, nbytes, srcBuf, dstBuf)
	dst.Observers().CopyCompleted(src, dst, nbytes, err)
	return err
}
