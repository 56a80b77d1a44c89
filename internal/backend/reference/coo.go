package reference

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// CooSpmv computes C = A * B. Repeated coordinates are summed.
func CooSpmv[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CooSpmv[V, I]) error {
	c := args.C
	cd := c.Data()
	for i := 0; i < c.Rows; i++ {
		clear(cd[i*c.Stride : i*c.Stride+c.Cols])
	}
	cooAccumulate(args.A, args.B, c, scalar.One[V]())
	return nil
}

// CooAdvancedSpmv computes C = alpha * A * B + beta * C.
func CooAdvancedSpmv[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CooAdvancedSpmv[V, I]) error {
	c := args.C
	cd := c.Data()
	beta := args.Beta.Data()[0]
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			cd[i*c.Stride+j] *= beta
		}
	}
	cooAccumulate(args.A, args.B, c, args.Alpha.Data()[0])
	return nil
}

// cooAccumulate adds alpha * A * B to C.
func cooAccumulate[V scalar.Value, I scalar.Index](a kernels.Coo[V, I], b, c kernels.Dense[V], alpha V) {
	rows, cols, vals := a.RowIdxs.Data(), a.ColIdxs.Data(), a.Values.Data()
	bd, cd := b.Data(), c.Data()
	for k := range vals {
		row, col := int(rows[k]), int(cols[k])
		v := alpha * vals[k]
		for j := 0; j < c.Cols; j++ {
			cd[row*c.Stride+j] += v * bd[col*b.Stride+j]
		}
	}
}

// ConvertRowIdxsToPtrs compresses row indices sorted in non-decreasing order
// into row pointers.
func ConvertRowIdxsToPtrs[I scalar.Index](_ *exec.Reference, args kernels.RowIdxsToPtrs[I]) error {
	idxs, ptrs := args.RowIdxs.Data(), args.RowPtrs.Data()
	clear(ptrs)
	for k, r := range idxs {
		if k > 0 && r < idxs[k-1] {
			return errors.Wrapf(kernels.ErrUnsortedRows, "row %d after row %d at element %d", r, idxs[k-1], k)
		}
		ptrs[r+1]++
	}
	for i := 1; i <= args.NumRows; i++ {
		ptrs[i] += ptrs[i-1]
	}
	return nil
}

// CooConvertToDense scatters the stored elements into a zeroed dense matrix.
// Repeated coordinates are summed, matching CooSpmv.
func CooConvertToDense[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CooToDense[V, I]) error {
	src, dst := args.Source, args.Result
	rows, cols, vals := src.RowIdxs.Data(), src.ColIdxs.Data(), src.Values.Data()
	out := dst.Data()
	clear(out)
	for k, v := range vals {
		out[int(rows[k])*dst.Stride+int(cols[k])] += v
	}
	return nil
}
