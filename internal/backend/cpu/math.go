package cpu

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/born-ml/linalg/internal/scalar"
)

// DenseScale multiplies X by alpha, one scalar or one factor per column.
func DenseScale[V scalar.Value](e *exec.CPU, args kernels.DenseScale[V]) error {
	x, alpha := args.X, args.Alpha
	if x.Rows == 0 || x.Cols == 0 {
		return nil
	}
	xd := x.Data()
	if alpha.Cols == 1 {
		a := alpha.Data()[0]
		return parallel.For(x.Rows, e.Parallel(), func(i int) error {
			scal(x.Cols, a, xd[i*x.Stride:], 1)
			return nil
		})
	}
	factors := alpha.Data()
	return parallel.For(x.Cols, e.Parallel(), func(j int) error {
		scal(x.Rows, factors[j], xd[j:], x.Stride)
		return nil
	})
}

// DenseAddScaled computes X = X + alpha * B.
func DenseAddScaled[V scalar.Value](e *exec.CPU, args kernels.DenseAddScaled[V]) error {
	b, x, alpha := args.B, args.X, args.Alpha
	if x.Rows == 0 || x.Cols == 0 {
		return nil
	}
	bd, xd := b.Data(), x.Data()
	if alpha.Cols == 1 {
		a := alpha.Data()[0]
		return parallel.For(x.Rows, e.Parallel(), func(i int) error {
			axpy(x.Cols, a, bd[i*b.Stride:], 1, xd[i*x.Stride:], 1)
			return nil
		})
	}
	factors := alpha.Data()
	return parallel.For(x.Cols, e.Parallel(), func(j int) error {
		axpy(x.Rows, factors[j], bd[j:], b.Stride, xd[j:], x.Stride)
		return nil
	})
}

// DenseComputeDot stores the unconjugated dot product of column j of X and
// Y into Result[0, j].
func DenseComputeDot[V scalar.Value](e *exec.CPU, args kernels.DenseComputeDot[V]) error {
	x, y := args.X, args.Y
	rd := args.Result.Data()
	if x.Rows == 0 {
		clear(rd)
		return nil
	}
	xd, yd := x.Data(), y.Data()
	return parallel.For(x.Cols, e.Parallel(), func(j int) error {
		rd[j] = dotu(x.Rows, xd[j:], x.Stride, yd[j:], y.Stride)
		return nil
	})
}

// DenseTranspose writes the transpose of Source into Result.
func DenseTranspose[V scalar.Value](e *exec.CPU, args kernels.DenseTranspose[V]) error {
	return denseTranspose(e, args.Source, args.Result, false)
}

// DenseConjTranspose writes the conjugate transpose of Source into Result.
func DenseConjTranspose[V scalar.Value](e *exec.CPU, args kernels.DenseTranspose[V]) error {
	return denseTranspose(e, args.Source, args.Result, true)
}

// denseTranspose parallelizes over result rows so every worker writes one
// contiguous block.
func denseTranspose[V scalar.Value](e *exec.CPU, src, dst kernels.Dense[V], conj bool) error {
	sd, dd := src.Data(), dst.Data()
	return parallel.For(dst.Rows, e.Parallel(), func(i int) error {
		row := dd[i*dst.Stride : i*dst.Stride+dst.Cols]
		for j := range row {
			v := sd[j*src.Stride+i]
			if conj {
				v = scalar.Conj(v)
			}
			row[j] = v
		}
		return nil
	})
}
