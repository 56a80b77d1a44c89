package cpu

import (
	"slices"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// CsrSpmv computes C = A * B with rows split across workers.
func CsrSpmv[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CsrSpmv[V, I]) error {
	return spmv(e, args.A, args.B, scalar.One[V](), scalar.Zero[V](), args.C, true)
}

// CsrAdvancedSpmv computes C = alpha * A * B + beta * C.
func CsrAdvancedSpmv[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CsrAdvancedSpmv[V, I]) error {
	return spmv(e, args.A, args.B, args.Alpha.Data()[0], args.Beta.Data()[0], args.C, false)
}

// spmv writes each output row exactly once, so rows need no
// synchronization. With overwrite set the previous contents of C are
// ignored.
func spmv[V scalar.Value, I scalar.Index](e *exec.CPU, a kernels.Csr[V, I], b kernels.Dense[V], alpha, beta V, c kernels.Dense[V], overwrite bool) error {
	if c.Cols == 0 {
		return nil
	}
	ptrs, cols, vals := a.RowPtrs.Data(), a.ColIdxs.Data(), a.Values.Data()
	bd, cd := b.Data(), c.Data()

	return parallel.Range(a.Rows, e.Parallel(), func(start, end int) error {
		acc := make([]V, c.Cols)
		for row := start; row < end; row++ {
			clear(acc)
			for k := ptrs[row]; k < ptrs[row+1]; k++ {
				v := vals[k]
				brow := bd[int(cols[k])*b.Stride:]
				for j := range acc {
					acc[j] += v * brow[j]
				}
			}
			out := cd[row*c.Stride : row*c.Stride+c.Cols]
			if overwrite {
				copy(out, acc)
				continue
			}
			for j := range out {
				out[j] = beta*out[j] + alpha*acc[j]
			}
		}
		return nil
	})
}

// ConvertRowPtrsToIdxs writes row r once for every element stored in row r.
func ConvertRowPtrsToIdxs[I scalar.Index](e *exec.CPU, args kernels.RowPtrsToIdxs[I]) error {
	ptrs, idxs := args.RowPtrs.Data(), args.RowIdxs.Data()
	return parallel.For(args.NumRows, e.Parallel(), func(row int) error {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			idxs[k] = I(row)
		}
		return nil
	})
}

// CsrConvertToDense scatters every row into a zeroed dense matrix. Each
// worker sorts a copy of the row's column indices to reject duplicates.
func CsrConvertToDense[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CsrToDense[V, I]) error {
	src, dst := args.Source, args.Result
	ptrs, cols, vals := src.RowPtrs.Data(), src.ColIdxs.Data(), src.Values.Data()
	out := dst.Data()

	return parallel.Range(src.Rows, e.Parallel(), func(start, end int) error {
		var scratch []I
		for row := start; row < end; row++ {
			lo, hi := ptrs[row], ptrs[row+1]
			scratch = append(scratch[:0], cols[lo:hi]...)
			slices.Sort(scratch)
			for k := 1; k < len(scratch); k++ {
				if scratch[k] == scratch[k-1] {
					return errors.Wrapf(kernels.ErrDuplicateEntry, "row %d, column %d", row, scratch[k])
				}
			}
			line := out[row*dst.Stride : row*dst.Stride+dst.Cols]
			clear(line)
			for k := lo; k < hi; k++ {
				line[cols[k]] = vals[k]
			}
		}
		return nil
	})
}

// CsrTranspose writes the transpose of Source into Result.
func CsrTranspose[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CsrTranspose[V, I]) error {
	return transpose(e, args.Source, args.Result, false)
}

// CsrConjTranspose writes the conjugate transpose of Source into Result.
func CsrConjTranspose[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.CsrTranspose[V, I]) error {
	return transpose(e, args.Source, args.Result, true)
}

// transpose expands the source row pointers, then places every element with
// a counting sort on its column. The placement pass is sequential to keep
// ascending source row order within each result row; the value pass runs in
// parallel over the placement permutation.
func transpose[V scalar.Value, I scalar.Index](e *exec.CPU, src, dst kernels.Csr[V, I], conj bool) error {
	ptrs, cols, vals := src.RowPtrs.Data(), src.ColIdxs.Data(), src.Values.Data()
	outPtrs, outCols, outVals := dst.RowPtrs.Data(), dst.ColIdxs.Data(), dst.Values.Data()
	nnz := len(vals)

	rows := make([]I, nnz)
	if err := parallel.For(src.Rows, e.Parallel(), func(row int) error {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			rows[k] = I(row)
		}
		return nil
	}); err != nil {
		return err
	}

	counts := make([]int, dst.Rows+1)
	for _, c := range cols {
		counts[c+1]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	for i, n := range counts {
		outPtrs[i] = I(n)
	}

	perm := make([]int, nnz)
	for k, c := range cols {
		perm[k] = counts[c]
		counts[c]++
	}
	return parallel.For(nnz, e.Parallel(), func(k int) error {
		dest := perm[k]
		outCols[dest] = rows[k]
		if conj {
			outVals[dest] = scalar.Conj(vals[k])
		} else {
			outVals[dest] = vals[k]
		}
		return nil
	})
}
