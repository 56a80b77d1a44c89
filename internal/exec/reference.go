package exec

import (
	"github.com/born-ml/linalg/internal/log"
	"github.com/cockroachdb/errors"
)

// Reference is the host executor running sequential reference kernels.
// Its results are the baseline other backends are tested against.
type Reference struct {
	host
}

var _ Executor = (*Reference)(nil)

// NewReference creates a reference executor.
func NewReference(cfg Config) *Reference {
	r := &Reference{}
	r.init(cfg)
	return r
}

// String returns the executor name.
func (r *Reference) String() string { return "reference" }

// Kind implements Executor.
func (r *Reference) Kind() Kind { return KindReference }

// DeviceID implements Executor.
func (r *Reference) DeviceID() int { return 0 }

// Master implements Executor.
func (r *Reference) Master() Executor { return r }

// Config returns the executor configuration.
func (r *Reference) Config() Config { return r.cfg }

// Alloc implements Executor.
func (r *Reference) Alloc(nbytes int) (Buffer, error) { return r.alloc(r, nbytes) }

// Free implements Executor.
func (r *Reference) Free(buf Buffer) { r.free(r, buf) }

// RawCopyTo implements Executor.
func (r *Reference) RawCopyTo(dst Executor, nbytes int, src, dstBuf Buffer) error {
	hb, ok := src.(*HostBuffer)
	if !ok {
		return errors.Wrapf(ErrForeignBuffer, "copy from %s", r)
	}
	return copyFromHost(hb.data, dst, nbytes, dstBuf)
}

// Run implements Executor.
func (r *Reference) Run(op Operation) error {
	r.observers.OperationLaunched(r, op.Name())
	err := op.RunReference(r)
	r.observers.OperationCompleted(r, op.Name(), err)
	return err
}

// Synchronize implements Executor. Reference kernels complete before Run
// returns, so there is nothing to wait for.
func (r *Reference) Synchronize() error { return nil }

// Observers implements Executor.
func (r *Reference) Observers() *log.Observers { return &r.observers }

// MemoryStats implements Executor.
func (r *Reference) MemoryStats() MemoryStats { return r.memory.stats() }
