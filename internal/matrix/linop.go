// Package matrix implements dense, CSR and COO matrices whose operations are
// dispatched to the executor that owns their storage.
//
// A matrix never picks a backend on its own: every numeric operation is
// bound to its operands and handed to the matrix's executor, which runs the
// body for its own kind or fails with exec.ErrNotImplemented. Sizes are
// checked before anything is dispatched.
package matrix

import (
	"fmt"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/scalar"
)

// LinOp is a linear operator.
type LinOp interface {
	fmt.Stringer

	// Executor returns the executor owning the operator's storage.
	Executor() exec.Executor
	// Size returns the operator size.
	Size() Dim
	// Apply computes x = op * b, overwriting x.
	Apply(b, x LinOp) error
	// ApplyScaled computes x = alpha * op * b + beta * x. Alpha and beta
	// must be 1x1 dense matrices.
	ApplyScaled(alpha, b, beta, x LinOp) error
}

// checkApply validates the sizes of x = a * b.
func checkApply(op string, a, b, x LinOp) error {
	if err := checkConformant(op, "A", a.Size(), "b", b.Size()); err != nil {
		return err
	}
	if err := checkEqualRows(op, "A", a.Size(), "x", x.Size()); err != nil {
		return err
	}
	return checkEqualCols(op, "b", b.Size(), "x", x.Size())
}

// checkApplyScaled validates the sizes of x = alpha * a * b + beta * x.
func checkApplyScaled(op string, alpha, a, b, beta, x LinOp) error {
	if err := checkApply(op, a, b, x); err != nil {
		return err
	}
	if err := checkScalar(op, "alpha", alpha.Size()); err != nil {
		return err
	}
	return checkScalar(op, "beta", beta.Size())
}

// denseOperands asserts that every operand is a dense matrix of value
// type V and lives in the executor family of e.
func denseOperands[V scalar.Value](op string, e exec.Executor, ops ...LinOp) ([]*Dense[V], error) {
	out := make([]*Dense[V], len(ops))
	execs := []exec.Executor{e}
	for i, o := range ops {
		d, ok := o.(*Dense[V])
		if !ok {
			return nil, notSupported(op, o, "Dense["+scalar.TypeName[V]()+"]")
		}
		out[i] = d
		execs = append(execs, d.exec)
	}
	if err := exec.CheckFamily(op, execs...); err != nil {
		return nil, err
	}
	return out, nil
}

// runApply dispatches op on e surrounded by apply events.
func runApply(e exec.Executor, linop, b, x LinOp, op exec.Operation) error {
	obs := e.Observers()
	obs.ApplyStarted(linop, b, x)
	err := e.Run(op)
	obs.ApplyCompleted(linop, b, x, err)
	return err
}

// adopt returns arr on e, copying and releasing it if it lives elsewhere.
func adopt[T scalar.Element](arr *exec.Array[T], e exec.Executor) (*exec.Array[T], error) {
	if arr.Executor() == e {
		return arr, nil
	}
	out, err := arr.CopyTo(e)
	arr.Release()
	return out, err
}

// releaseAll frees every array, ignoring nil entries.
func releaseAll(arrs ...interface{ Release() }) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}

func typeName[V scalar.Value, I scalar.Index](format string) string {
	return fmt.Sprintf("%s[%s,%s]", format, scalar.TypeName[V](), scalar.TypeName[I]())
}

// zeroedArray allocates n zero elements on e. Host memory is zeroed by the
// allocator; device memory is cleared with an upload.
func zeroedArray[T scalar.Element](e exec.Executor, n int) (*exec.Array[T], error) {
	if e.Kind().IsHost() {
		return exec.NewArray[T](e, n)
	}
	return exec.ArrayFromSlice(e, make([]T, n))
}

// emptyArray returns an array of length zero. It never allocates.
func emptyArray[T scalar.Element](e exec.Executor) *exec.Array[T] {
	arr, _ := exec.NewArray[T](e, 0)
	return arr
}
