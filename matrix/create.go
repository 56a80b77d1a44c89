// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"github.com/born-ml/linalg/exec"
	"github.com/born-ml/linalg/internal/matrix"
)

// Dense creation functions

// EmptyDense returns a 0x0 dense matrix on e, usable as a conversion result.
func EmptyDense[V Value](e exec.Executor) *Dense[V] {
	return matrix.EmptyDense[V](e)
}

// NewDense allocates a zeroed dense matrix.
func NewDense[V Value](e exec.Executor, size Dim) (*Dense[V], error) {
	return matrix.NewDense[V](e, size)
}

// NewDenseWithStride allocates a zeroed dense matrix whose rows start stride
// elements apart.
func NewDenseWithStride[V Value](e exec.Executor, size Dim, stride int) (*Dense[V], error) {
	return matrix.NewDenseWithStride[V](e, size, stride)
}

// DenseFromSlice copies row-major values into a new dense matrix.
//
// Example:
//
//	d, err := matrix.DenseFromSlice(cpu, matrix.Dim{Rows: 2, Cols: 2}, []float64{1, 2, 3, 4})
func DenseFromSlice[V Value](e exec.Executor, size Dim, values []V) (*Dense[V], error) {
	return matrix.DenseFromSlice(e, size, values)
}

// DenseFromRows copies rows of equal length into a new dense matrix.
func DenseFromRows[V Value](e exec.Executor, rows [][]V) (*Dense[V], error) {
	return matrix.DenseFromRows(e, rows)
}

// Scalar returns a 1x1 dense matrix, the form alpha and beta take in
// ApplyScaled.
func Scalar[V Value](e exec.Executor, v V) (*Dense[V], error) {
	return matrix.Scalar(e, v)
}

// Sparse creation functions

// EmptyCsr returns a 0x0 CSR matrix on e.
func EmptyCsr[V Value, I Index](e exec.Executor) *Csr[V, I] {
	return matrix.EmptyCsr[V, I](e)
}

// NewCsr allocates a CSR matrix with room for nnz stored elements.
func NewCsr[V Value, I Index](e exec.Executor, size Dim, nnz int) (*Csr[V, I], error) {
	return matrix.NewCsr[V, I](e, size, nnz)
}

// CsrFromSlices validates raw CSR storage and copies it onto e.
//
// Example:
//
//	// diag(2, 3)
//	a, err := matrix.CsrFromSlices(cpu, matrix.Dim{Rows: 2, Cols: 2},
//	    []int32{0, 1, 2}, []int32{0, 1}, []float64{2, 3})
func CsrFromSlices[V Value, I Index](e exec.Executor, size Dim, rowPtrs, colIdxs []I, values []V) (*Csr[V, I], error) {
	return matrix.CsrFromSlices(e, size, rowPtrs, colIdxs, values)
}

// EmptyCoo returns a 0x0 COO matrix on e.
func EmptyCoo[V Value, I Index](e exec.Executor) *Coo[V, I] {
	return matrix.EmptyCoo[V, I](e)
}

// NewCoo allocates a COO matrix with room for nnz stored elements.
func NewCoo[V Value, I Index](e exec.Executor, size Dim, nnz int) (*Coo[V, I], error) {
	return matrix.NewCoo[V, I](e, size, nnz)
}

// CooFromSlices checks and copies coordinate storage onto e.
func CooFromSlices[V Value, I Index](e exec.Executor, size Dim, rowIdxs, colIdxs []I, values []V) (*Coo[V, I], error) {
	return matrix.CooFromSlices(e, size, rowIdxs, colIdxs, values)
}

// Kernels lists the kernels registered for V and I together with the
// executor kinds that implement them.
func Kernels[V Value, I Index]() []KernelInfo {
	return matrix.Kernels[V, I]()
}
