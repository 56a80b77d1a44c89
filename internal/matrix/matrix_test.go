package matrix

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/log"
	"github.com/born-ml/linalg/internal/mtx"
	"github.com/born-ml/linalg/internal/parallel"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExecutors returns one executor per host kind. The CPU executor splits
// even tiny inputs across workers so the parallel paths run.
func testExecutors() []exec.Executor {
	cfg := exec.DefaultConfig()
	cfg.Parallel = parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	return []exec.Executor{exec.NewReference(exec.DefaultConfig()), exec.NewCPU(cfg)}
}

func forEachExecutor(t *testing.T, f func(t *testing.T, e exec.Executor)) {
	for _, e := range testExecutors() {
		t.Run(e.String(), func(t *testing.T) { f(t, e) })
	}
}

func mustRows[V float32 | float64 | complex64 | complex128](t *testing.T, d *Dense[V]) [][]V {
	t.Helper()
	rows, err := d.ToRows()
	require.NoError(t, err)
	return rows
}

func diag23(t *testing.T, e exec.Executor) *Csr[float64, int32] {
	t.Helper()
	a, err := CsrFromSlices(e, Dim{Rows: 2, Cols: 2}, []int32{0, 1, 2}, []int32{0, 1}, []float64{2, 3})
	require.NoError(t, err)
	return a
}

func TestCsrApplyDiagonal(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a := diag23(t, e)
		b, err := DenseFromRows(e, [][]float64{{1}, {1}})
		require.NoError(t, err)
		x, err := NewDense[float64](e, Dim{Rows: 2, Cols: 1})
		require.NoError(t, err)

		require.NoError(t, a.Apply(b, x))
		assert.Equal(t, [][]float64{{2}, {3}}, mustRows(t, x))
	})
}

func TestCsrApplyOverwrites(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		// [[1 0 2], [0 0 0], [-1 3 0]]
		a, err := CsrFromSlices(e, Dim{Rows: 3, Cols: 3},
			[]int64{0, 2, 2, 4}, []int64{2, 0, 1, 0}, []float64{2, 1, 3, -1})
		require.NoError(t, err)
		b, err := DenseFromRows(e, [][]float64{{1, 2}, {3, 4}, {5, 6}})
		require.NoError(t, err)
		x, err := DenseFromRows(e, [][]float64{{9, 9}, {9, 9}, {9, 9}})
		require.NoError(t, err)

		require.NoError(t, a.Apply(b, x))
		assert.Equal(t, [][]float64{{11, 14}, {0, 0}, {8, 10}}, mustRows(t, x))
	})
}

func TestCsrApplyScaled(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a := diag23(t, e)
		b, err := DenseFromRows(e, [][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		x, err := DenseFromRows(e, [][]float64{{1, 1}, {1, 1}})
		require.NoError(t, err)
		alpha, err := Scalar(e, 2.0)
		require.NoError(t, err)
		beta, err := Scalar(e, -1.0)
		require.NoError(t, err)

		require.NoError(t, a.ApplyScaled(alpha, b, beta, x))
		assert.Equal(t, [][]float64{{3, 7}, {17, 23}}, mustRows(t, x))
	})
}

func TestApplyDimensionChecksInOrder(t *testing.T) {
	e := exec.NewReference(exec.DefaultConfig())
	a, err := NewCsr[float64, int32](e, Dim{Rows: 2, Cols: 3}, 0)
	require.NoError(t, err)
	dense := func(r, c int) *Dense[float64] {
		d, err := NewDense[float64](e, Dim{Rows: r, Cols: c})
		require.NoError(t, err)
		return d
	}
	one := dense(1, 1)

	tests := []struct {
		name              string
		alpha, b, beta, x *Dense[float64]
		first, second     string
	}{
		{"columns of A", one, dense(2, 1), one, dense(5, 5), "A", "b"},
		{"rows of x", one, dense(3, 1), one, dense(3, 1), "A", "x"},
		{"columns of x", one, dense(3, 1), one, dense(2, 2), "b", "x"},
		{"alpha", dense(1, 2), dense(3, 1), dense(2, 2), dense(2, 1), "alpha", ""},
		{"beta", one, dense(3, 1), dense(2, 2), dense(2, 1), "beta", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.ApplyScaled(tt.alpha, tt.b, tt.beta, tt.x)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDimensionMismatch))

			var dm *DimensionMismatchError
			require.True(t, errors.As(err, &dm))
			assert.Equal(t, "Csr.ApplyScaled", dm.Op)
			assert.Equal(t, tt.first, dm.First)
			assert.Equal(t, tt.second, dm.Second)
		})
	}

	err = a.Apply(dense(2, 1), dense(2, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A is 2x3, b is 2x1")
}

func TestApplyRejectsForeignOperands(t *testing.T) {
	cpu := exec.NewCPU(exec.DefaultConfig())
	a := diag23(t, cpu)

	coo, err := NewCoo[float64, int32](cpu, Dim{Rows: 2, Cols: 1}, 0)
	require.NoError(t, err)
	x, err := NewDense[float64](cpu, Dim{Rows: 2, Cols: 1})
	require.NoError(t, err)
	err = a.Apply(coo, x)
	assert.True(t, errors.Is(err, ErrNotSupported))

	wrongType, err := NewDense[float32](cpu, Dim{Rows: 2, Cols: 1})
	require.NoError(t, err)
	err = a.Apply(wrongType, x)
	assert.True(t, errors.Is(err, ErrNotSupported))

	gpu := &exec.WebGPU{}
	shell := EmptyCsr[float64, int32](cpu)
	err = shell.Apply(EmptyDense[float64](gpu), EmptyDense[float64](cpu))
	assert.True(t, errors.Is(err, exec.ErrExecutorMismatch))
}

func TestWebGPUReportsNotImplemented(t *testing.T) {
	gpu := &exec.WebGPU{}
	b, x := EmptyDense[float64](gpu), EmptyDense[float64](gpu)

	tests := []struct {
		name string
		op   LinOp
		want string
	}{
		{"csr", EmptyCsr[float64, int32](gpu), "csr::spmv"},
		{"coo", EmptyCoo[float64, int64](gpu), "coo::spmv"},
		{"dense", EmptyDense[float64](gpu), "dense::simple_apply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Apply(b, x)
			require.Error(t, err)
			assert.True(t, errors.Is(err, exec.ErrNotImplemented))

			var nie *exec.NotImplementedError
			require.True(t, errors.As(err, &nie))
			assert.Equal(t, tt.want, nie.Op)
			assert.Equal(t, exec.KindWebGPU, nie.Kind)
		})
	}
}

func TestKernelsCoverHostBackends(t *testing.T) {
	infos := Kernels[complex64, int64]()
	require.Len(t, infos, 21)
	for _, info := range infos {
		assert.Equal(t, []exec.Kind{exec.KindReference, exec.KindCPU}, info.Implemented, info.Name)
	}
	assert.Equal(t, "csr::spmv", infos[0].Name)
	assert.Same(t, csrOps[complex64, int64](), csrOps[complex64, int64](), "kernels are registered once")
}

func TestCsrReadMtxDropsZeros(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a := EmptyCsr[float64, int32](e)
		require.NoError(t, a.ReadMtx(strings.NewReader("2 2 2\n1 1 5\n2 2 0")))

		assert.Equal(t, Dim{Rows: 2, Cols: 2}, a.Size())
		assert.Equal(t, 1, a.NumStoredElements())
		assert.Equal(t, []int32{0, 1, 1}, a.RowPtrs())
		assert.Equal(t, []int32{0}, a.ColIdxs())
		assert.Equal(t, []float64{5}, a.Values())
		assert.NoError(t, a.Validate())
	})
}

func TestCsrReadMtxRejectsMalformed(t *testing.T) {
	a := EmptyCsr[float64, int32](exec.NewCPU(exec.DefaultConfig()))
	err := a.ReadMtx(strings.NewReader("2 2 2\n2 1 1\n1 1 1\n"))
	require.Error(t, err)
	assert.Equal(t, Dim{}, a.Size(), "no partially built matrix")

	err = a.ReadFromMtx("testdata/does-not-exist.mtx")
	assert.Error(t, err)
}

func TestReadMtxRejectsOversizedSize(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a := EmptyCsr[float64, int32](e)
		err := a.ReadMtx(strings.NewReader("9223372036854775807 1 0\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, mtx.ErrMalformed))
		assert.Equal(t, Dim{}, a.Size())

		c := EmptyCoo[float64, int32](e)
		err = c.ReadMtx(strings.NewReader("2147483648 1 0\n"))
		assert.True(t, errors.Is(err, mtx.ErrMalformed))

		d := EmptyDense[float64](e)
		err = d.ReadMtx(strings.NewReader("4294967296 4294967296 0\n"))
		assert.True(t, errors.Is(err, mtx.ErrMalformed))
		assert.Equal(t, Dim{}, d.Size())

		// Fits int64 indices, but the dense buffer does not fit in bytes.
		err = d.ReadMtx(strings.NewReader("2147483648 2147483648 0\n"))
		assert.True(t, errors.Is(err, ErrInvalidStructure))
		assert.Equal(t, Dim{}, d.Size())
	})
}

func TestDenseSizeOverflow(t *testing.T) {
	e := exec.NewReference(exec.DefaultConfig())

	_, err := DenseFromSlice[float64](e, Dim{Rows: 1 << 32, Cols: 1 << 32}, nil)
	assert.True(t, errors.Is(err, ErrInvalidStructure))

	_, err = NewDenseWithStride[float64](e, Dim{Rows: 1 << 31, Cols: 1}, 1<<31)
	assert.True(t, errors.Is(err, ErrInvalidStructure))

	_, err = NewDense[complex128](e, Dim{Rows: 1 << 30, Cols: 1 << 30})
	assert.True(t, errors.Is(err, ErrInvalidStructure))

	d, err := NewDense[float64](e, Dim{Rows: 1 << 40, Cols: 0})
	require.NoError(t, err)
	assert.Empty(t, d.Values())
}

func TestCsrConvertToCoo(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a, err := CsrFromSlices(e, Dim{Rows: 3, Cols: 4},
			[]int32{0, 2, 2, 3}, []int32{3, 1, 0}, []float64{1, 2, 3})
		require.NoError(t, err)

		coo := EmptyCoo[float64, int32](e)
		require.NoError(t, a.ConvertToCoo(coo))
		assert.Equal(t, []int32{0, 0, 2}, coo.RowIdxs())
		assert.Equal(t, []int32{3, 1, 0}, coo.ColIdxs())
		assert.Equal(t, []float64{1, 2, 3}, coo.Values())
		assert.Equal(t, 3, a.NumStoredElements(), "convert keeps the source")

		moved := EmptyCoo[float64, int32](e)
		require.NoError(t, a.MoveToCoo(moved))
		assert.Equal(t, coo.RowIdxs(), moved.RowIdxs())
		assert.Equal(t, Dim{}, a.Size())
		assert.Equal(t, 0, a.NumStoredElements())

		back := EmptyCsr[float64, int32](e)
		require.NoError(t, moved.MoveToCsr(back))
		assert.Equal(t, []int32{0, 2, 2, 3}, back.RowPtrs())
		assert.Equal(t, []int32{3, 1, 0}, back.ColIdxs())
		assert.Equal(t, 0, moved.NumStoredElements())
	})
}

func TestCsrConvertToDense(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a, err := CsrFromSlices(e, Dim{Rows: 2, Cols: 3},
			[]int32{0, 2, 3}, []int32{2, 0, 1}, []complex128{1i, 2, 3 - 1i})
		require.NoError(t, err)

		d := EmptyDense[complex128](e)
		require.NoError(t, a.ConvertToDense(d))
		assert.Equal(t, [][]complex128{{2, 0, 1i}, {0, 3 - 1i, 0}}, mustRows(t, d))
		assert.Equal(t, 3, d.Stride())

		require.NoError(t, a.MoveToDense(d))
		assert.Equal(t, 0, a.NumStoredElements())
		assert.Equal(t, Dim{Rows: 2, Cols: 3}, d.Size())
	})
}

func TestCsrConvertToDenseRejectsDuplicates(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a, err := CsrFromSlices(e, Dim{Rows: 2, Cols: 2},
			[]int32{0, 1, 3}, []int32{0, 1, 1}, []float64{1, 2, 3})
		require.NoError(t, err)

		d := EmptyDense[float64](e)
		err = a.ConvertToDense(d)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateEntry))
		assert.Contains(t, err.Error(), "row 1, column 1")
		assert.Equal(t, Dim{}, d.Size(), "result untouched on failure")
	})
}

func TestCsrTranspose(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		// [[0 1i 2], [3 0 4-1i]]
		a, err := CsrFromSlices(e, Dim{Rows: 2, Cols: 3},
			[]int32{0, 2, 4}, []int32{2, 1, 2, 0}, []complex64{2, 1i, 4 - 1i, 3})
		require.NoError(t, err)

		tr, err := a.Transpose()
		require.NoError(t, err)
		assert.Equal(t, Dim{Rows: 3, Cols: 2}, tr.Size())
		assert.Equal(t, []int32{0, 1, 2, 4}, tr.RowPtrs())
		assert.Equal(t, []int32{1, 0, 0, 1}, tr.ColIdxs())
		assert.Equal(t, []complex64{3, 1i, 2, 4 - 1i}, tr.Values())
		assert.NoError(t, tr.Validate())

		ct, err := a.ConjTranspose()
		require.NoError(t, err)
		assert.Equal(t, []complex64{3, -1i, 2, 4 + 1i}, ct.Values())
		assert.Equal(t, tr.RowPtrs(), ct.RowPtrs())
	})
}

func TestCsrFromSlicesValidates(t *testing.T) {
	e := exec.NewReference(exec.DefaultConfig())
	size := Dim{Rows: 2, Cols: 2}
	tests := []struct {
		name    string
		ptrs    []int32
		cols    []int32
		values  []float64
		message string
	}{
		{"short row pointers", []int32{0, 1}, []int32{0}, []float64{1}, "2 row pointers for 2 rows"},
		{"nonzero start", []int32{1, 1, 1}, nil, nil, "first row pointer is 1"},
		{"decreasing", []int32{0, 2, 1}, []int32{0}, []float64{1}, "row pointers decrease at row 1"},
		{"wrong end", []int32{0, 1, 1}, []int32{0, 1}, []float64{1, 2}, "last row pointer is 1"},
		{"value count", []int32{0, 1, 1}, []int32{0}, nil, "0 values for 1 column indices"},
		{"column bound", []int32{0, 1, 1}, []int32{2}, []float64{1}, "column index 2 at position 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CsrFromSlices(e, size, tt.ptrs, tt.cols, tt.values)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStructure))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCooApplyAndConvert(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		// Unsorted, with a repeated coordinate: (1,0) holds 1+2.
		a, err := CooFromSlices(e, Dim{Rows: 2, Cols: 2},
			[]int64{1, 0, 1}, []int64{0, 1, 0}, []float32{1, 4, 2})
		require.NoError(t, err)
		b, err := DenseFromRows(e, [][]float32{{1, 10}, {2, 20}})
		require.NoError(t, err)
		x, err := NewDense[float32](e, Dim{Rows: 2, Cols: 2})
		require.NoError(t, err)

		require.NoError(t, a.Apply(b, x))
		assert.Equal(t, [][]float32{{8, 80}, {3, 30}}, mustRows(t, x))

		alpha, err := Scalar[float32](e, 0.5)
		require.NoError(t, err)
		beta, err := Scalar[float32](e, 1)
		require.NoError(t, err)
		require.NoError(t, a.ApplyScaled(alpha, b, beta, x))
		assert.Equal(t, [][]float32{{12, 120}, {4.5, 45}}, mustRows(t, x))

		d := EmptyDense[float32](e)
		require.NoError(t, a.ConvertToDense(d))
		assert.Equal(t, [][]float32{{0, 4}, {3, 0}}, mustRows(t, d))

		err = a.ConvertToCsr(EmptyCsr[float32, int64](e))
		assert.True(t, errors.Is(err, ErrUnsortedRows))
	})
}

func TestDenseConvertsToSparse(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		d, err := DenseFromRows(e, [][]float64{{0, 1, 0}, {0, 0, 0}, {2, 0, 3}})
		require.NoError(t, err)

		csr := EmptyCsr[float64, int32](e)
		require.NoError(t, d.ConvertTo(csr))
		assert.Equal(t, []int32{0, 1, 1, 3}, csr.RowPtrs())
		assert.Equal(t, []int32{1, 0, 2}, csr.ColIdxs())
		assert.Equal(t, []float64{1, 2, 3}, csr.Values())

		coo := EmptyCoo[float64, int64](e)
		require.NoError(t, d.MoveTo(coo))
		assert.Equal(t, []int64{0, 2, 2}, coo.RowIdxs())
		assert.Equal(t, []int64{1, 0, 2}, coo.ColIdxs())
		assert.Equal(t, Dim{}, d.Size())
	})
}

func TestConversionAcrossExecutors(t *testing.T) {
	ref := exec.NewReference(exec.DefaultConfig())
	cpu := exec.NewCPU(exec.DefaultConfig())
	rec := log.NewRecord(log.CopyEvents)
	cpu.Observers().AddLogger(rec)

	a := diag23(t, ref)
	d := EmptyDense[float64](cpu)
	require.NoError(t, a.ConvertToDense(d))

	assert.Same(t, cpu, d.Executor().(*exec.CPU))
	assert.Equal(t, [][]float64{{2, 0}, {0, 3}}, mustRows(t, d))
	assert.Equal(t, 1, rec.Count(log.CopyCompleted))
	// Only the CSR storage itself stays live on the source executor.
	assert.Equal(t, int64(3*4+2*4+2*8), ref.MemoryStats().LiveBytes)
}

func TestApplyEmitsEvents(t *testing.T) {
	cpu := exec.NewCPU(exec.DefaultConfig())
	rec := log.NewRecord(log.ApplyEvents | log.OperationEvents)
	cpu.Observers().AddLogger(rec)

	a := diag23(t, cpu)
	b, err := DenseFromRows(cpu, [][]float64{{1}, {1}})
	require.NoError(t, err)
	x, err := NewDense[float64](cpu, Dim{Rows: 2, Cols: 1})
	require.NoError(t, err)
	require.NoError(t, a.Apply(b, x))

	events := make([]log.EventMask, 0, 4)
	for _, entry := range rec.Entries() {
		events = append(events, entry.Event)
	}
	want := []log.EventMask{log.ApplyStarted, log.OperationLaunched, log.OperationCompleted, log.ApplyCompleted}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Csr[float64,int32](2x2, nnz=2) * Dense[float64](2x1)", rec.Entries()[0].Operation)
}

func TestDenseOperations(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		x, err := DenseFromRows(e, [][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		b, err := DenseFromRows(e, [][]float64{{1, 1}, {2, 0}})
		require.NoError(t, err)

		perColumn, err := DenseFromRows(e, [][]float64{{2, -1}})
		require.NoError(t, err)
		require.NoError(t, x.Scale(perColumn))
		assert.Equal(t, [][]float64{{2, -2}, {6, -4}}, mustRows(t, x))

		half, err := Scalar(e, 0.5)
		require.NoError(t, err)
		require.NoError(t, x.Scale(half))
		assert.Equal(t, [][]float64{{1, -1}, {3, -2}}, mustRows(t, x))

		two, err := Scalar(e, 2.0)
		require.NoError(t, err)
		require.NoError(t, x.AddScaled(two, b))
		assert.Equal(t, [][]float64{{3, 1}, {7, -2}}, mustRows(t, x))

		dot, err := NewDense[float64](e, Dim{Rows: 1, Cols: 2})
		require.NoError(t, err)
		require.NoError(t, x.ComputeDot(b, dot))
		assert.Equal(t, [][]float64{{17, 1}}, mustRows(t, dot))

		tr, err := x.Transpose()
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{3, 7}, {1, -2}}, mustRows(t, tr))

		n, err := b.CountNonzeros()
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		bad, err := NewDense[float64](e, Dim{Rows: 2, Cols: 2})
		require.NoError(t, err)
		assert.True(t, errors.Is(x.Scale(bad), ErrDimensionMismatch))
		assert.True(t, errors.Is(x.ComputeDot(b, bad), ErrDimensionMismatch))
	})
}

func TestDenseConjTransposeWithStride(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		d, err := NewDenseWithStride[complex128](e, Dim{Rows: 2, Cols: 2}, 3)
		require.NoError(t, err)
		vals := d.Values()
		copy(vals, []complex128{1i, 2, 99, 3, 4 - 2i, 99})

		ct, err := d.ConjTranspose()
		require.NoError(t, err)
		assert.Equal(t, [][]complex128{{-1i, 3}, {2, 4 + 2i}}, mustRows(t, ct))
		assert.Equal(t, 4 - 2i, d.At(1, 1))

		_, err = NewDenseWithStride[float64](e, Dim{Rows: 1, Cols: 3}, 2)
		assert.True(t, errors.Is(err, ErrInvalidStructure))
	})
}

func TestDenseApplyScaled(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a, err := DenseFromRows(e, [][]float32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		b, err := DenseFromRows(e, [][]float32{{1}, {0}, {-1}})
		require.NoError(t, err)
		x, err := DenseFromRows(e, [][]float32{{1}, {1}})
		require.NoError(t, err)
		alpha, err := Scalar[float32](e, 3)
		require.NoError(t, err)
		beta, err := Scalar[float32](e, 2)
		require.NoError(t, err)

		require.NoError(t, a.ApplyScaled(alpha, b, beta, x))
		assert.Equal(t, [][]float32{{-4}, {-4}}, mustRows(t, x))

		require.NoError(t, a.Apply(b, x))
		assert.Equal(t, [][]float32{{-2}, {-2}}, mustRows(t, x))
	})
}

func TestDenseApplyScaledIgnoresXWhenBetaIsZero(t *testing.T) {
	forEachExecutor(t, func(t *testing.T, e exec.Executor) {
		a, err := DenseFromRows(e, [][]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		b, err := DenseFromRows(e, [][]float64{{1}, {1}})
		require.NoError(t, err)
		x, err := DenseFromRows(e, [][]float64{{math.NaN()}, {math.Inf(1)}})
		require.NoError(t, err)
		alpha, err := Scalar[float64](e, 2)
		require.NoError(t, err)
		beta, err := Scalar[float64](e, 0)
		require.NoError(t, err)

		require.NoError(t, a.ApplyScaled(alpha, b, beta, x))
		assert.Equal(t, [][]float64{{6}, {14}}, mustRows(t, x))
	})
}

func TestMtxRoundTrip(t *testing.T) {
	e := exec.NewCPU(exec.DefaultConfig())
	a, err := CsrFromSlices(e, Dim{Rows: 3, Cols: 3},
		[]int32{0, 1, 1, 3}, []int32{2, 0, 1}, []float64{1.5, -2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteMtx(&buf))

	b := EmptyCsr[float64, int32](e)
	require.NoError(t, b.ReadMtx(&buf))
	assert.Equal(t, a.RowPtrs(), b.RowPtrs())
	assert.Equal(t, a.ColIdxs(), b.ColIdxs())
	assert.Equal(t, a.Values(), b.Values())

	d := EmptyDense[float64](e)
	require.NoError(t, d.ReadMtx(strings.NewReader("2 2 1\n2 1 7\n")))
	assert.Equal(t, [][]float64{{0, 0}, {7, 0}}, mustRows(t, d))
}

func TestCloneIsDeep(t *testing.T) {
	ref := exec.NewReference(exec.DefaultConfig())
	cpu := exec.NewCPU(exec.DefaultConfig())
	a := diag23(t, ref)

	c, err := a.Clone(cpu)
	require.NoError(t, err)
	c.Values()[0] = 42
	assert.Equal(t, 2.0, a.Values()[0])
	assert.Same(t, cpu, c.Executor().(*exec.CPU))
}

func TestMemoryLimitSurfacesAllocationError(t *testing.T) {
	cfg := exec.DefaultConfig()
	cfg.MemoryLimit = 16
	e := exec.NewCPU(cfg)
	_, err := NewDense[float64](e, Dim{Rows: 3, Cols: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrAllocation))
}
