// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense, CSR and COO matrices whose numeric work runs
// on the executor that owns their storage.
//
// Value types are float32, float64, complex64 and complex128; sparse index
// types are int32 and int64. Both are fixed at compile time:
//
//	cpu := exec.NewCPU(exec.DefaultConfig())
//	a := matrix.EmptyCsr[float64, int32](cpu)
//	if err := a.ReadFromMtx("a.mtx"); err != nil {
//	    return err
//	}
//	b, _ := matrix.DenseFromRows(cpu, [][]float64{{1}, {1}})
//	x, _ := matrix.NewDense[float64](cpu, matrix.Dim{Rows: a.Size().Rows, Cols: 1})
//	err := a.Apply(b, x) // x = A * b
//
// Operations check operand sizes before dispatch and fail with
// ErrDimensionMismatch. An executor without a body for an operation fails
// with exec.ErrNotImplemented rather than falling back to another backend.
package matrix

import (
	"github.com/born-ml/linalg/internal/matrix"
	"github.com/born-ml/linalg/internal/scalar"
)

// Value is the constraint on matrix entry types.
type Value = scalar.Value

// Index is the constraint on sparse index types.
type Index = scalar.Index

// Dim is a matrix size.
type Dim = matrix.Dim

// LinOp is a linear operator: x = op * b.
type LinOp = matrix.LinOp

// Dense is a row-major dense matrix with a row stride.
type Dense[V Value] = matrix.Dense[V]

// Csr is a compressed sparse row matrix.
type Csr[V Value, I Index] = matrix.Csr[V, I]

// Coo is a coordinate (triplet) sparse matrix.
type Coo[V Value, I Index] = matrix.Coo[V, I]

// FromDense is implemented by every matrix a dense matrix converts to.
type FromDense[V Value] = matrix.FromDense[V]

// DimensionMismatchError names the operands whose sizes disagree.
type DimensionMismatchError = matrix.DimensionMismatchError

// KernelInfo describes one registered kernel.
type KernelInfo = matrix.KernelInfo

// Sentinel errors, matched with errors.Is.
var (
	ErrDimensionMismatch = matrix.ErrDimensionMismatch
	ErrNotSupported      = matrix.ErrNotSupported
	ErrInvalidStructure  = matrix.ErrInvalidStructure
	ErrDuplicateEntry    = matrix.ErrDuplicateEntry
	ErrUnsortedRows      = matrix.ErrUnsortedRows
)
