package exec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Match them with errors.Is; the typed errors below carry
// the details.
var (
	// ErrNotImplemented is returned when the executor's backend has no body
	// for a dispatched operation.
	ErrNotImplemented = errors.New("exec: operation not implemented for this backend")

	// ErrAllocation is returned when an executor cannot satisfy an allocation.
	ErrAllocation = errors.New("exec: allocation failed")

	// ErrExecutorMismatch is returned when operands of one operation live on
	// executors of different backend families.
	ErrExecutorMismatch = errors.New("exec: operands live on incompatible executors")

	// ErrBackendUnavailable is returned when a backend cannot be created on
	// this machine (no adapter, no native library, unsupported platform).
	ErrBackendUnavailable = errors.New("exec: backend unavailable")

	// ErrForeignBuffer is returned when a buffer is handed to an executor
	// that did not allocate it.
	ErrForeignBuffer = errors.New("exec: buffer does not belong to this executor")
)

// NotImplementedError reports which operation is missing on which backend.
type NotImplementedError struct {
	Op   string
	Kind Kind
}

// Error implements the error interface.
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("exec: operation %s not implemented for %s backend", e.Op, e.Kind)
}

// Is makes errors.Is(err, ErrNotImplemented) hold.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// AllocationError describes a failed allocation request.
type AllocationError struct {
	Executor string
	Bytes    int
	Reason   string
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	return fmt.Sprintf("exec: %s: cannot allocate %d bytes: %s", e.Executor, e.Bytes, e.Reason)
}

// Is makes errors.Is(err, ErrAllocation) hold.
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocation
}

// MismatchError reports two executors that cannot share an operation.
func MismatchError(op string, a, b Executor) error {
	return errors.Wrapf(ErrExecutorMismatch, "%s: %s and %s", op, a, b)
}
