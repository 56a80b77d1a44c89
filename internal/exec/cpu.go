package exec

import (
	"github.com/born-ml/linalg/internal/log"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/cockroachdb/errors"
)

// CPU is the host executor running optimized kernels: BLAS for dense
// products and row-parallel loops for sparse ones.
type CPU struct {
	host
}

var _ Executor = (*CPU)(nil)

// NewCPU creates a CPU executor.
func NewCPU(cfg Config) *CPU {
	c := &CPU{}
	c.init(cfg)
	return c
}

// String returns the executor name.
func (c *CPU) String() string { return "cpu" }

// Kind implements Executor.
func (c *CPU) Kind() Kind { return KindCPU }

// DeviceID implements Executor.
func (c *CPU) DeviceID() int { return 0 }

// Master implements Executor.
func (c *CPU) Master() Executor { return c }

// Config returns the executor configuration.
func (c *CPU) Config() Config { return c.cfg }

// Parallel returns the worker configuration kernels should use.
func (c *CPU) Parallel() parallel.Config { return c.cfg.Parallel }

// Alloc implements Executor.
func (c *CPU) Alloc(nbytes int) (Buffer, error) { return c.alloc(c, nbytes) }

// Free implements Executor.
func (c *CPU) Free(buf Buffer) { c.free(c, buf) }

// RawCopyTo implements Executor.
func (c *CPU) RawCopyTo(dst Executor, nbytes int, src, dstBuf Buffer) error {
	hb, ok := src.(*HostBuffer)
	if !ok {
		return errors.Wrapf(ErrForeignBuffer, "copy from %s", c)
	}
	return copyFromHost(hb.data, dst, nbytes, dstBuf)
}

// Run implements Executor.
func (c *CPU) Run(op Operation) error {
	c.observers.OperationLaunched(c, op.Name())
	err := op.RunCPU(c)
	c.observers.OperationCompleted(c, op.Name(), err)
	return err
}

// Synchronize implements Executor. CPU kernels join their workers before
// returning, so there is nothing to wait for.
func (c *CPU) Synchronize() error { return nil }

// Observers implements Executor.
func (c *CPU) Observers() *log.Observers { return &c.observers }

// MemoryStats implements Executor.
func (c *CPU) MemoryStats() MemoryStats { return c.memory.stats() }
