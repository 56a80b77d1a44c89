package cpu

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// Coordinate storage is not grouped by row, so the products split the
// columns of B across workers instead: every worker owns a disjoint column
// range of C.

// CooSpmv computes C = A * B. Repeated coordinates are summed.
func CooSpmv[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CooSpmv[V, I]) error {
	return cooSpmv(e, args.A, args.B, scalar.One[V](), scalar.Zero[V](), args.C, true)
}

// CooAdvancedSpmv computes C = alpha * A * B + beta * C.
func CooAdvancedSpmv[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CooAdvancedSpmv[V, I]) error {
	return cooSpmv(e, args.A, args.B, args.Alpha.Data()[0], args.Beta.Data()[0], args.C, false)
}

func cooSpmv[V scalar.Value, I scalar.Index](e *exec.CPU, a kernels.Coo[V, I], b kernels.Dense[V], alpha, beta V, c kernels.Dense[V], overwrite bool) error {
	if c.Rows == 0 {
		return nil
	}
	rows, cols, vals := a.RowIdxs.Data(), a.ColIdxs.Data(), a.Values.Data()
	bd, cd := b.Data(), c.Data()

	return parallel.Range(c.Cols, e.Parallel(), func(start, end int) error {
		for i := 0; i < c.Rows; i++ {
			out := cd[i*c.Stride+start : i*c.Stride+end]
			if overwrite {
				clear(out)
			} else {
				for j := range out {
					out[j] *= beta
				}
			}
		}
		for k, v := range vals {
			v *= alpha
			out := cd[int(rows[k])*c.Stride+start : int(rows[k])*c.Stride+end]
			in := bd[int(cols[k])*b.Stride+start:]
			for j := range out {
				out[j] += v * in[j]
			}
		}
		return nil
	})
}

// ConvertRowIdxsToPtrs compresses row indices sorted in non-decreasing order
// into row pointers.
func ConvertRowIdxsToPtrs[I scalar.Index](_ *exec.CPU, args kernels.RowIdxsToPtrs[I]) error {
	idxs, ptrs := args.RowIdxs.Data(), args.RowPtrs.Data()
	// Walk the sorted indices once, closing every row passed on the way.
	row := 0
	ptrs[0] = 0
	for k, r := range idxs {
		if k > 0 && r < idxs[k-1] {
			return errors.Wrapf(kernels.ErrUnsortedRows, "row %d after row %d at element %d", r, idxs[k-1], k)
		}
		for ; row < int(r); row++ {
			ptrs[row+1] = I(k)
		}
	}
	for ; row < args.NumRows; row++ {
		ptrs[row+1] = I(len(idxs))
	}
	return nil
}

// CooConvertToDense scatters the stored elements into a zeroed dense matrix.
// Repeated coordinates are summed, matching CooSpmv.
func CooConvertToDense[V scalar.Value, I scalar.Index](_ *exec.CPU, args kernels.CooToDense[V, I]) error {
	src, dst := args.Source, args.Result
	rows, cols, vals := src.RowIdxs.Data(), src.ColIdxs.Data(), src.Values.Data()
	out := dst.Data()
	clear(out)
	for k, v := range vals {
		out[int(rows[k])*dst.Stride+int(cols[k])] += v
	}
	return nil
}
