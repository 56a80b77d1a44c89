package reference

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
)

// DenseSimpleApply computes C = A * B.
func DenseSimpleApply[V scalar.Value](_ *exec.Reference, args kernels.DenseSimpleApply[V]) error {
	a, b, c := args.A, args.B, args.C
	ad, bd, cd := a.Data(), b.Data(), c.Data()
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			var sum V
			for k := 0; k < a.Cols; k++ {
				sum += ad[i*a.Stride+k] * bd[k*b.Stride+j]
			}
			cd[i*c.Stride+j] = sum
		}
	}
	return nil
}

// DenseApply computes C = alpha * A * B + beta * C. As in BLAS gemm, C is
// not read when beta is zero, so NaN or Inf in C does not propagate.
func DenseApply[V scalar.Value](_ *exec.Reference, args kernels.DenseApply[V]) error {
	a, b, c := args.A, args.B, args.C
	alpha, beta := args.Alpha.Data()[0], args.Beta.Data()[0]
	ad, bd, cd := a.Data(), b.Data(), c.Data()
	overwrite := scalar.IsZero(beta)
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			var sum V
			for k := 0; k < a.Cols; k++ {
				sum += ad[i*a.Stride+k] * bd[k*b.Stride+j]
			}
			if overwrite {
				cd[i*c.Stride+j] = alpha * sum
				continue
			}
			cd[i*c.Stride+j] = beta*cd[i*c.Stride+j] + alpha*sum
		}
	}
	return nil
}

// columnFactor returns the factor applied to column j: a single scalar, or
// one entry per column.
func columnFactor[V scalar.Value](alpha kernels.Dense[V], j int) V {
	if alpha.Cols == 1 {
		return alpha.Data()[0]
	}
	return alpha.Data()[j]
}

// DenseScale multiplies X by alpha.
func DenseScale[V scalar.Value](_ *exec.Reference, args kernels.DenseScale[V]) error {
	x := args.X
	xd := x.Data()
	for i := 0; i < x.Rows; i++ {
		for j := 0; j < x.Cols; j++ {
			xd[i*x.Stride+j] *= columnFactor(args.Alpha, j)
		}
	}
	return nil
}

// DenseAddScaled computes X = X + alpha * B.
func DenseAddScaled[V scalar.Value](_ *exec.Reference, args kernels.DenseAddScaled[V]) error {
	b, x := args.B, args.X
	bd, xd := b.Data(), x.Data()
	for i := 0; i < x.Rows; i++ {
		for j := 0; j < x.Cols; j++ {
			xd[i*x.Stride+j] += columnFactor(args.Alpha, j) * bd[i*b.Stride+j]
		}
	}
	return nil
}

// DenseComputeDot stores sum_i X[i, j] * Y[i, j] into Result[0, j]. Complex
// values are not conjugated.
func DenseComputeDot[V scalar.Value](_ *exec.Reference, args kernels.DenseComputeDot[V]) error {
	x, y := args.X, args.Y
	xd, yd, rd := x.Data(), y.Data(), args.Result.Data()
	for j := 0; j < x.Cols; j++ {
		var sum V
		for i := 0; i < x.Rows; i++ {
			sum += xd[i*x.Stride+j] * yd[i*y.Stride+j]
		}
		rd[j] = sum
	}
	return nil
}

// DenseTranspose writes the transpose of Source into Result.
func DenseTranspose[V scalar.Value](_ *exec.Reference, args kernels.DenseTranspose[V]) error {
	denseTranspose(args.Source, args.Result, false)
	return nil
}

// DenseConjTranspose writes the conjugate transpose of Source into Result.
func DenseConjTranspose[V scalar.Value](_ *exec.Reference, args kernels.DenseTranspose[V]) error {
	denseTranspose(args.Source, args.Result, true)
	return nil
}

func denseTranspose[V scalar.Value](src, dst kernels.Dense[V], conj bool) {
	sd, dd := src.Data(), dst.Data()
	for i := 0; i < src.Rows; i++ {
		for j := 0; j < src.Cols; j++ {
			v := sd[i*src.Stride+j]
			if conj {
				v = scalar.Conj(v)
			}
			dd[j*dst.Stride+i] = v
		}
	}
}

// DenseCountNonzeros counts the entries different from zero.
func DenseCountNonzeros[V scalar.Value](_ *exec.Reference, args kernels.DenseCountNonzeros[V]) error {
	src := args.Source
	sd := src.Data()
	n := 0
	for i := 0; i < src.Rows; i++ {
		for j := 0; j < src.Cols; j++ {
			if !scalar.IsZero(sd[i*src.Stride+j]) {
				n++
			}
		}
	}
	*args.Result = n
	return nil
}

// DenseConvertToCsr stores the nonzero entries row by row, in ascending
// column order.
func DenseConvertToCsr[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.DenseToCsr[V, I]) error {
	src, dst := args.Source, args.Result
	sd := src.Data()
	ptrs, cols, vals := dst.RowPtrs.Data(), dst.ColIdxs.Data(), dst.Values.Data()

	nnz := 0
	ptrs[0] = 0
	for i := 0; i < src.Rows; i++ {
		for j := 0; j < src.Cols; j++ {
			v := sd[i*src.Stride+j]
			if scalar.IsZero(v) {
				continue
			}
			cols[nnz] = I(j)
			vals[nnz] = v
			nnz++
		}
		ptrs[i+1] = I(nnz)
	}
	return nil
}

// DenseConvertToCoo stores the nonzero entries in row-major order.
func DenseConvertToCoo[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.DenseToCoo[V, I]) error {
	src, dst := args.Source, args.Result
	sd := src.Data()
	rows, cols, vals := dst.RowIdxs.Data(), dst.ColIdxs.Data(), dst.Values.Data()

	nnz := 0
	for i := 0; i < src.Rows; i++ {
		for j := 0; j < src.Cols; j++ {
			v := sd[i*src.Stride+j]
			if scalar.IsZero(v) {
				continue
			}
			rows[nnz] = I(i)
			cols[nnz] = I(j)
			vals[nnz] = v
			nnz++
		}
	}
	return nil
}
