package cpu

import (
	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/born-ml/linalg/internal/scalar"
)

// rowNonzeros counts the nonzeros of every row of src in parallel.
func rowNonzeros[V scalar.Value](e *exec.CPU, src kernels.Dense[V]) ([]int, error) {
	counts := make([]int, src.Rows)
	sd := src.Data()
	err := parallel.For(src.Rows, e.Parallel(), func(i int) error {
		n := 0
		for _, v := range sd[i*src.Stride : i*src.Stride+src.Cols] {
			if !scalar.IsZero(v) {
				n++
			}
		}
		counts[i] = n
		return nil
	})
	return counts, err
}

// DenseCountNonzeros counts the entries different from zero.
func DenseCountNonzeros[V scalar.Value](e *exec.CPU, args kernels.DenseCountNonzeros[V]) error {
	counts, err := rowNonzeros(e, args.Source)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	*args.Result = total
	return nil
}

// rowOffsets turns per-row counts into exclusive prefix sums.
func rowOffsets(counts []int) []int {
	offsets := make([]int, len(counts)+1)
	for i, n := range counts {
		offsets[i+1] = offsets[i] + n
	}
	return offsets
}

// DenseConvertToCsr counts the nonzeros of every row, then fills each row
// independently.
func DenseConvertToCsr[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.DenseToCsr[V, I]) error {
	src, dst := args.Source, args.Result
	counts, err := rowNonzeros(e, src)
	if err != nil {
		return err
	}
	offsets := rowOffsets(counts)

	ptrs, cols, vals := dst.RowPtrs.Data(), dst.ColIdxs.Data(), dst.Values.Data()
	for i, off := range offsets {
		ptrs[i] = I(off)
	}
	sd := src.Data()
	return parallel.For(src.Rows, e.Parallel(), func(i int) error {
		k := offsets[i]
		for j, v := range sd[i*src.Stride : i*src.Stride+src.Cols] {
			if scalar.IsZero(v) {
				continue
			}
			cols[k] = I(j)
			vals[k] = v
			k++
		}
		return nil
	})
}

// DenseConvertToCoo stores the nonzero entries in row-major order.
func DenseConvertToCoo[V scalar.Value, I scalar.Index](e *exec.CPU, args kernels.DenseToCoo[V, I]) error {
	src, dst := args.Source, args.Result
	counts, err := rowNonzeros(e, src)
	if err != nil {
		return err
	}
	offsets := rowOffsets(counts)

	rows, cols, vals := dst.RowIdxs.Data(), dst.ColIdxs.Data(), dst.Values.Data()
	sd := src.Data()
	return parallel.For(src.Rows, e.Parallel(), func(i int) error {
		k := offsets[i]
		for j, v := range sd[i*src.Stride : i*src.Stride+src.Cols] {
			if scalar.IsZero(v) {
				continue
			}
			rows[k] = I(i)
			cols[k] = I(j)
			vals[k] = v
			k++
		}
		return nil
	})
}
