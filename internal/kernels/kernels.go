// Package kernels defines the storage views and argument records handed to
// backend kernel bodies.
//
// Views hold executor arrays, not matrices, so backends can depend on this
// package without depending on the matrix types. Every output is allocated
// by the caller before dispatch; bodies only fill it.
package kernels

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// Errors kernel bodies report about their inputs.
var (
	// ErrDuplicateEntry is returned when a sparse row stores the same column
	// twice and the operation needs unique positions.
	ErrDuplicateEntry = errors.New("duplicate entry in sparse row")

	// ErrUnsortedRows is returned when coordinate storage must be grouped by
	// row but its row indices decrease.
	ErrUnsortedRows = errors.New("row indices are not sorted")
)

// Dense is a row-major view of dense storage. Element (i, j) lives at
// Values[i*Stride+j].
type Dense[V scalar.Value] struct {
	Rows, Cols, Stride int
	Values             *exec.Array[V]
}

// Data returns the host elements.
func (d Dense[V]) Data() []V { return d.Values.Data() }

// Row returns the host slice of row i without the padding.
func (d Dense[V]) Row(i int) []V {
	return d.Values.Data()[i*d.Stride : i*d.Stride+d.Cols]
}

// Csr is a view of compressed sparse row storage.
type Csr[V scalar.Value, I scalar.Index] struct {
	Rows, Cols int
	RowPtrs    *exec.Array[I]
	ColIdxs    *exec.Array[I]
	Values     *exec.Array[V]
}

// Nnz returns the number of stored elements.
func (c Csr[V, I]) Nnz() int { return c.Values.Len() }

// Coo is a view of coordinate storage.
type Coo[V scalar.Value, I scalar.Index] struct {
	Rows, Cols int
	RowIdxs    *exec.Array[I]
	ColIdxs    *exec.Array[I]
	Values     *exec.Array[V]
}

// Nnz returns the number of stored elements.
func (c Coo[V, I]) Nnz() int { return c.Values.Len() }

// CsrSpmv computes C = A * B.
type CsrSpmv[V scalar.Value, I scalar.Index] struct {
	A Csr[V, I]
	B Dense[V]
	C Dense[V]
}

// CsrAdvancedSpmv computes C = Alpha * A * B + Beta * C with 1x1 Alpha and
// Beta.
type CsrAdvancedSpmv[V scalar.Value, I scalar.Index] struct {
	Alpha Dense[V]
	A     Csr[V, I]
	B     Dense[V]
	Beta  Dense[V]
	C     Dense[V]
}

// RowPtrsToIdxs expands NumRows+1 row pointers into one row index per
// stored element.
type RowPtrsToIdxs[I scalar.Index] struct {
	RowPtrs *exec.Array[I]
	NumRows int
	RowIdxs *exec.Array[I]
}

// CsrToDense scatters Source into the zeroed Result.
type CsrToDense[V scalar.Value, I scalar.Index] struct {
	Source Csr[V, I]
	Result Dense[V]
}

// CsrTranspose writes the (optionally conjugated) transpose of Source into
// Result, whose arrays are already sized.
type CsrTranspose[V scalar.Value, I scalar.Index] struct {
	Source Csr[V, I]
	Result Csr[V, I]
}

// DenseSimpleApply computes C = A * B.
type DenseSimpleApply[V scalar.Value] struct {
	A, B, C Dense[V]
}

// DenseApply computes C = Alpha * A * B + Beta * C.
type DenseApply[V scalar.Value] struct {
	Alpha, A, B, Beta, C Dense[V]
}

// DenseScale multiplies X by Alpha, either one scalar or one per column.
type DenseScale[V scalar.Value] struct {
	Alpha, X Dense[V]
}

// DenseAddScaled computes X = X + Alpha * B, Alpha one scalar or one per
// column.
type DenseAddScaled[V scalar.Value] struct {
	Alpha, B, X Dense[V]
}

// DenseComputeDot stores the dot product of column j of X and Y into
// Result[0, j].
type DenseComputeDot[V scalar.Value] struct {
	X, Y, Result Dense[V]
}

// DenseTranspose writes the (optionally conjugated) transpose of Source into
// Result.
type DenseTranspose[V scalar.Value] struct {
	Source, Result Dense[V]
}

// DenseCountNonzeros counts the nonzero entries of Source into Result.
type DenseCountNonzeros[V scalar.Value] struct {
	Source Dense[V]
	Result *int
}

// DenseToCsr compacts the nonzeros of Source into Result, whose arrays are
// sized by a prior count.
type DenseToCsr[V scalar.Value, I scalar.Index] struct {
	Source Dense[V]
	Result Csr[V, I]
}

// DenseToCoo compacts the nonzeros of Source into Result.
type DenseToCoo[V scalar.Value, I scalar.Index] struct {
	Source Dense[V]
	Result Coo[V, I]
}

// CooSpmv computes C = A * B.
type CooSpmv[V scalar.Value, I scalar.Index] struct {
	A Coo[V, I]
	B Dense[V]
	C Dense[V]
}

// CooAdvancedSpmv computes C = Alpha * A * B + Beta * C.
type CooAdvancedSpmv[V scalar.Value, I scalar.Index] struct {
	Alpha Dense[V]
	A     Coo[V, I]
	B     Dense[V]
	Beta  Dense[V]
	C     Dense[V]
}

// RowIdxsToPtrs compresses row-sorted row indices into NumRows+1 row
// pointers.
type RowIdxsToPtrs[I scalar.Index] struct {
	RowIdxs *exec.Array[I]
	NumRows int
	RowPtrs *exec.Array[I]
}

// CooToDense scatters Source into the zeroed Result.
type CooToDense[V scalar.Value, I scalar.Index] struct {
	Source Coo[V, I]
	Result Dense[V]
}
