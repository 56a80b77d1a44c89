// Package cpu implements the kernel bodies of the CPU executor: BLAS for
// dense products and row-parallel loops for sparse storage.
package cpu

import (
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/blas/cblas64"
)

// The helpers below switch on the element type once and forward to the
// matching gonum BLAS package. V is always one of the four value types, so
// the assertions on alpha and beta cannot fail.

// gemm computes C = alpha * A * B + beta * C. All dimensions must be
// non-zero.
func gemm[V scalar.Value](alpha V, a, b kernels.Dense[V], beta V, c kernels.Dense[V]) {
	switch cd := any(c.Data()).(type) {
	case []float32:
		blas32.Gemm(blas.NoTrans, blas.NoTrans, any(alpha).(float32),
			blas32.General{Rows: a.Rows, Cols: a.Cols, Stride: a.Stride, Data: any(a.Data()).([]float32)},
			blas32.General{Rows: b.Rows, Cols: b.Cols, Stride: b.Stride, Data: any(b.Data()).([]float32)},
			any(beta).(float32),
			blas32.General{Rows: c.Rows, Cols: c.Cols, Stride: c.Stride, Data: cd})
	case []float64:
		blas64.Gemm(blas.NoTrans, blas.NoTrans, any(alpha).(float64),
			blas64.General{Rows: a.Rows, Cols: a.Cols, Stride: a.Stride, Data: any(a.Data()).([]float64)},
			blas64.General{Rows: b.Rows, Cols: b.Cols, Stride: b.Stride, Data: any(b.Data()).([]float64)},
			any(beta).(float64),
			blas64.General{Rows: c.Rows, Cols: c.Cols, Stride: c.Stride, Data: cd})
	case []complex64:
		cblas64.Gemm(blas.NoTrans, blas.NoTrans, any(alpha).(complex64),
			cblas64.General{Rows: a.Rows, Cols: a.Cols, Stride: a.Stride, Data: any(a.Data()).([]complex64)},
			cblas64.General{Rows: b.Rows, Cols: b.Cols, Stride: b.Stride, Data: any(b.Data()).([]complex64)},
			any(beta).(complex64),
			cblas64.General{Rows: c.Rows, Cols: c.Cols, Stride: c.Stride, Data: cd})
	case []complex128:
		cblas128.Gemm(blas.NoTrans, blas.NoTrans, any(alpha).(complex128),
			cblas128.General{Rows: a.Rows, Cols: a.Cols, Stride: a.Stride, Data: any(a.Data()).([]complex128)},
			cblas128.General{Rows: b.Rows, Cols: b.Cols, Stride: b.Stride, Data: any(b.Data()).([]complex128)},
			any(beta).(complex128),
			cblas128.General{Rows: c.Rows, Cols: c.Cols, Stride: c.Stride, Data: cd})
	}
}

// scal multiplies n elements of x spaced inc apart by alpha.
func scal[V scalar.Value](n int, alpha V, x []V, inc int) {
	switch xs := any(x).(type) {
	case []float32:
		blas32.Scal(any(alpha).(float32), blas32.Vector{N: n, Inc: inc, Data: xs})
	case []float64:
		blas64.Scal(any(alpha).(float64), blas64.Vector{N: n, Inc: inc, Data: xs})
	case []complex64:
		cblas64.Scal(any(alpha).(complex64), cblas64.Vector{N: n, Inc: inc, Data: xs})
	case []complex128:
		cblas128.Scal(any(alpha).(complex128), cblas128.Vector{N: n, Inc: inc, Data: xs})
	}
}

// axpy computes y += alpha * x over n elements spaced inc apart.
func axpy[V scalar.Value](n int, alpha V, x []V, incX int, y []V, incY int) {
	switch ys := any(y).(type) {
	case []float32:
		blas32.Axpy(any(alpha).(float32),
			blas32.Vector{N: n, Inc: incX, Data: any(x).([]float32)},
			blas32.Vector{N: n, Inc: incY, Data: ys})
	case []float64:
		blas64.Axpy(any(alpha).(float64),
			blas64.Vector{N: n, Inc: incX, Data: any(x).([]float64)},
			blas64.Vector{N: n, Inc: incY, Data: ys})
	case []complex64:
		cblas64.Axpy(any(alpha).(complex64),
			cblas64.Vector{N: n, Inc: incX, Data: any(x).([]complex64)},
			cblas64.Vector{N: n, Inc: incY, Data: ys})
	case []complex128:
		cblas128.Axpy(any(alpha).(complex128),
			cblas128.Vector{N: n, Inc: incX, Data: any(x).([]complex128)},
			cblas128.Vector{N: n, Inc: incY, Data: ys})
	}
}

// dotu returns the unconjugated dot product of n elements of x and y.
func dotu[V scalar.Value](n int, x []V, incX int, y []V, incY int) V {
	var out any
	switch xs := any(x).(type) {
	case []float32:
		out = blas32.Dot(
			blas32.Vector{N: n, Inc: incX, Data: xs},
			blas32.Vector{N: n, Inc: incY, Data: any(y).([]float32)})
	case []float64:
		out = blas64.Dot(
			blas64.Vector{N: n, Inc: incX, Data: xs},
			blas64.Vector{N: n, Inc: incY, Data: any(y).([]float64)})
	case []complex64:
		out = cblas64.Dotu(
			cblas64.Vector{N: n, Inc: incX, Data: xs},
			cblas64.Vector{N: n, Inc: incY, Data: any(y).([]complex64)})
	case []complex128:
		out = cblas128.Dotu(
			cblas128.Vector{N: n, Inc: incX, Data: xs},
			cblas128.Vector{N: n, Inc: incY, Data: any(y).([]complex128)})
	}
	return out.(V)
}
