package cpu

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
)

// DenseSimpleApply computes C = A * B through BLAS gemm.
func DenseSimpleApply[V scalar.Value](e *exec.CPU, args kernels.DenseSimpleApply[V]) error {
	return denseApply(e, scalar.One[V](), args.A, args.B, scalar.Zero[V](), args.C)
}

// DenseApply computes C = alpha * A * B + beta * C through BLAS gemm.
func DenseApply[V scalar.Value](e *exec.CPU, args kernels.DenseApply[V]) error {
	return denseApply(e, args.Alpha.Data()[0], args.A, args.B, args.Beta.Data()[0], args.C)
}

func denseApply[V scalar.Value](_ *exec.CPU, alpha V, a, b kernels.Dense[V], beta V, c kernels.Dense[V]) error {
	if c.Rows == 0 || c.Cols == 0 {
		return nil
	}
	if a.Cols == 0 {
		// Empty inner dimension: the product is zero and only the beta
		// term survives.
		cd := c.Data()
		for i := 0; i < c.Rows; i++ {
			row := cd[i*c.Stride : i*c.Stride+c.Cols]
			if scalar.IsZero(beta) {
				clear(row)
				continue
			}
			scal(c.Cols, beta, row, 1)
		}
		return nil
	}
	gemm(alpha, a, b, beta, c)
	return nil
}
