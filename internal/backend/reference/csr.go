// Package reference holds the sequential kernel bodies run by the reference
// executor. They favour obvious loops over speed and serve as the baseline
// the optimized backends are tested against.
package reference

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// CsrSpmv computes C = A * B.
func CsrSpmv[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CsrSpmv[V, I]) error {
	a, b, c := args.A, args.B, args.C
	ptrs, cols, vals := a.RowPtrs.Data(), a.ColIdxs.Data(), a.Values.Data()
	bd, cd := b.Data(), c.Data()

	for row := 0; row < a.Rows; row++ {
		for j := 0; j < c.Cols; j++ {
			cd[row*c.Stride+j] = 0
		}
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			v := vals[k]
			col := int(cols[k])
			for j := 0; j < c.Cols; j++ {
				cd[row*c.Stride+j] += v * bd[col*b.Stride+j]
			}
		}
	}
	return nil
}

// CsrAdvancedSpmv computes C = alpha * A * B + beta * C.
func CsrAdvancedSpmv[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CsrAdvancedSpmv[V, I]) error {
	a, b, c := args.A, args.B, args.C
	alpha, beta := args.Alpha.Data()[0], args.Beta.Data()[0]
	ptrs, cols, vals := a.RowPtrs.Data(), a.ColIdxs.Data(), a.Values.Data()
	bd, cd := b.Data(), c.Data()

	for row := 0; row < a.Rows; row++ {
		for j := 0; j < c.Cols; j++ {
			cd[row*c.Stride+j] *= beta
		}
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			v := alpha * vals[k]
			col := int(cols[k])
			for j := 0; j < c.Cols; j++ {
				cd[row*c.Stride+j] += v * bd[col*b.Stride+j]
			}
		}
	}
	return nil
}

// ConvertRowPtrsToIdxs writes row r once for every element stored in row r.
func ConvertRowPtrsToIdxs[I scalar.Index](_ *exec.Reference, args kernels.RowPtrsToIdxs[I]) error {
	ptrs, idxs := args.RowPtrs.Data(), args.RowIdxs.Data()
	for row := 0; row < args.NumRows; row++ {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			idxs[k] = I(row)
		}
	}
	return nil
}

// CsrConvertToDense scatters the stored elements into a zeroed dense matrix.
// A column stored twice in one row is rejected with ErrDuplicateEntry.
func CsrConvertToDense[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CsrToDense[V, I]) error {
	src, dst := args.Source, args.Result
	ptrs, cols, vals := src.RowPtrs.Data(), src.ColIdxs.Data(), src.Values.Data()
	out := dst.Data()
	clear(out)

	// seen[c] holds the last row that wrote column c.
	seen := make([]int, src.Cols)
	for i := range seen {
		seen[i] = -1
	}
	for row := 0; row < src.Rows; row++ {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			col := int(cols[k])
			if seen[col] == row {
				return errors.Wrapf(kernels.ErrDuplicateEntry, "row %d, column %d", row, col)
			}
			seen[col] = row
			out[row*dst.Stride+col] = vals[k]
		}
	}
	return nil
}

// CsrTranspose writes the transpose of Source into Result.
func CsrTranspose[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CsrTranspose[V, I]) error {
	transpose(args.Source, args.Result, false)
	return nil
}

// CsrConjTranspose writes the conjugate transpose of Source into Result.
func CsrConjTranspose[V scalar.Value, I scalar.Index](_ *exec.Reference, args kernels.CsrTranspose[V, I]) error {
	transpose(args.Source, args.Result, true)
	return nil
}

// transpose is a counting sort on column index. Elements of one result row
// appear in ascending source row order.
func transpose[V scalar.Value, I scalar.Index](src, dst kernels.Csr[V, I], conj bool) {
	ptrs, cols, vals := src.RowPtrs.Data(), src.ColIdxs.Data(), src.Values.Data()
	outPtrs, outCols, outVals := dst.RowPtrs.Data(), dst.ColIdxs.Data(), dst.Values.Data()

	clear(outPtrs)
	for _, c := range cols {
		outPtrs[c+1]++
	}
	for i := 1; i < len(outPtrs); i++ {
		outPtrs[i] += outPtrs[i-1]
	}

	next := make([]I, dst.Rows)
	copy(next, outPtrs)
	for row := 0; row < src.Rows; row++ {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			c := cols[k]
			dest := next[c]
			next[c]++
			outCols[dest] = I(row)
			if conj {
				outVals[dest] = scalar.Conj(vals[k])
			} else {
				outVals[dest] = vals[k]
			}
		}
	}
}
