package matrix

import (
	"fmt"
	"io"
	"os"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/mtx"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// Coo is a coordinate matrix: element k sits at (RowIdxs()[k],
// ColIdxs()[k]). Elements may appear in any order; repeated coordinates
// add up in products and dense conversion.
type Coo[V scalar.Value, I scalar.Index] struct {
	exec    exec.Executor
	size    Dim
	rowIdxs *exec.Array[I]
	colIdxs *exec.Array[I]
	values  *exec.Array[V]
}

var _ LinOp = (*Coo[float64, int32])(nil)

// EmptyCoo returns a 0x0 matrix on e, usable as a conversion result.
func EmptyCoo[V scalar.Value, I scalar.Index](e exec.Executor) *Coo[V, I] {
	return &Coo[V, I]{
		exec:    e,
		rowIdxs: emptyArray[I](e),
		colIdxs: emptyArray[I](e),
		values:  emptyArray[V](e),
	}
}

// NewCoo allocates a matrix with room for nnz stored elements.
func NewCoo[V scalar.Value, I scalar.Index](e exec.Executor, size Dim, nnz int) (*Coo[V, I], error) {
	if size.Rows < 0 || size.Cols < 0 || nnz < 0 {
		return nil, invalidStructure("negative size %s with %d elements", size, nnz)
	}
	rowIdxs, err := exec.NewArray[I](e, nnz)
	if err != nil {
		return nil, err
	}
	colIdxs, err := exec.NewArray[I](e, nnz)
	if err != nil {
		releaseAll(rowIdxs)
		return nil, err
	}
	values, err := exec.NewArray[V](e, nnz)
	if err != nil {
		releaseAll(rowIdxs, colIdxs)
		return nil, err
	}
	return &Coo[V, I]{exec: e, size: size, rowIdxs: rowIdxs, colIdxs: colIdxs, values: values}, nil
}

// CooFromSlices validates raw coordinate storage and copies it onto e.
func CooFromSlices[V scalar.Value, I scalar.Index](e exec.Executor, size Dim, rowIdxs, colIdxs []I, values []V) (*Coo[V, I], error) {
	if size.Rows < 0 || size.Cols < 0 {
		return nil, invalidStructure("negative size %s", size)
	}
	if len(rowIdxs) != len(values) || len(colIdxs) != len(values) {
		return nil, invalidStructure("%d row indices, %d column indices, %d values",
			len(rowIdxs), len(colIdxs), len(values))
	}
	for k := range values {
		if r := rowIdxs[k]; r < 0 || int(r) >= size.Rows {
			return nil, invalidStructure("row index %d at position %d outside [0, %d)", r, k, size.Rows)
		}
		if c := colIdxs[k]; c < 0 || int(c) >= size.Cols {
			return nil, invalidStructure("column index %d at position %d outside [0, %d)", c, k, size.Cols)
		}
	}
	rows, err := exec.ArrayFromSlice(e, rowIdxs)
	if err != nil {
		return nil, err
	}
	cols, err := exec.ArrayFromSlice(e, colIdxs)
	if err != nil {
		releaseAll(rows)
		return nil, err
	}
	vals, err := exec.ArrayFromSlice(e, values)
	if err != nil {
		releaseAll(rows, cols)
		return nil, err
	}
	return &Coo[V, I]{exec: e, size: size, rowIdxs: rows, colIdxs: cols, values: vals}, nil
}

// Executor implements LinOp.
func (m *Coo[V, I]) Executor() exec.Executor { return m.exec }

// Size implements LinOp.
func (m *Coo[V, I]) Size() Dim { return m.size }

// String implements fmt.Stringer.
func (m *Coo[V, I]) String() string {
	return fmt.Sprintf("%s(%s, nnz=%d)", typeName[V, I]("Coo"), m.size, m.NumStoredElements())
}

// NumStoredElements returns the number of explicitly stored elements.
func (m *Coo[V, I]) NumStoredElements() int { return m.values.Len() }

// RowIdxs returns the host row indices, nil on device executors.
func (m *Coo[V, I]) RowIdxs() []I { return m.rowIdxs.Data() }

// ColIdxs returns the host column indices, nil on device executors.
func (m *Coo[V, I]) ColIdxs() []I { return m.colIdxs.Data() }

// Values returns the host values, nil on device executors.
func (m *Coo[V, I]) Values() []V { return m.values.Data() }

func (m *Coo[V, I]) view() kernels.Coo[V, I] {
	return kernels.Coo[V, I]{
		Rows: m.size.Rows, Cols: m.size.Cols,
		RowIdxs: m.rowIdxs, ColIdxs: m.colIdxs, Values: m.values,
	}
}

func (m *Coo[V, I]) replace(size Dim, rowIdxs, colIdxs *exec.Array[I], values *exec.Array[V]) {
	if m.rowIdxs != rowIdxs {
		m.rowIdxs.Release()
	}
	if m.colIdxs != colIdxs {
		m.colIdxs.Release()
	}
	if m.values != values {
		m.values.Release()
	}
	m.size, m.rowIdxs, m.colIdxs, m.values = size, rowIdxs, colIdxs, values
}

// Release frees the storage and leaves a 0x0 matrix with no stored
// elements.
func (m *Coo[V, I]) Release() {
	releaseAll(m.rowIdxs, m.colIdxs, m.values)
	m.size = Dim{}
}

// Apply computes x = m * b.
func (m *Coo[V, I]) Apply(b, x LinOp) error {
	const op = "Coo.Apply"
	if err := checkApply(op, m, b, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, m.exec, b, x)
	if err != nil {
		return err
	}
	return runApply(m.exec, m, b, x, cooOps[V, I]().spmv.Bind(kernels.CooSpmv[V, I]{
		A: m.view(), B: ops[0].view(), C: ops[1].view(),
	}))
}

// ApplyScaled computes x = alpha * m * b + beta * x.
func (m *Coo[V, I]) ApplyScaled(alpha, b, beta, x LinOp) error {
	const op = "Coo.ApplyScaled"
	if err := checkApplyScaled(op, alpha, m, b, beta, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, m.exec, alpha, b, beta, x)
	if err != nil {
		return err
	}
	return runApply(m.exec, m, b, x, cooOps[V, I]().advancedSpmv.Bind(kernels.CooAdvancedSpmv[V, I]{
		Alpha: ops[0].view(), A: m.view(), B: ops[1].view(), Beta: ops[2].view(), C: ops[3].view(),
	}))
}

// ConvertToCsr compresses the row indices into row pointers, leaving m
// unchanged. The elements must be grouped by non-decreasing row, otherwise
// it fails with ErrUnsortedRows.
func (m *Coo[V, I]) ConvertToCsr(result *Csr[V, I]) error {
	return m.toCsr(result, false)
}

// MoveToCsr converts like ConvertToCsr, handing over the column index and
// value storage, and leaves m empty.
func (m *Coo[V, I]) MoveToCsr(result *Csr[V, I]) error {
	return m.toCsr(result, true)
}

func (m *Coo[V, I]) toCsr(result *Csr[V, I], move bool) error {
	rowPtrs, err := zeroedArray[I](m.exec, m.size.Rows+1)
	if err != nil {
		return err
	}
	if err := m.exec.Run(cooOps[V, I]().rowIdxsToPtrs.Bind(kernels.RowIdxsToPtrs[I]{
		RowIdxs: m.rowIdxs, NumRows: m.size.Rows, RowPtrs: rowPtrs,
	})); err != nil {
		rowPtrs.Release()
		return err
	}

	tmp := &Csr[V, I]{exec: m.exec, size: m.size, rowPtrs: rowPtrs}
	if move {
		tmp.colIdxs, tmp.values = m.colIdxs.Take(), m.values.Take()
		m.Release()
	} else {
		if tmp.colIdxs, err = m.colIdxs.CopyTo(m.exec); err != nil {
			releaseAll(rowPtrs)
			return err
		}
		if tmp.values, err = m.values.CopyTo(m.exec); err != nil {
			releaseAll(rowPtrs, tmp.colIdxs)
			return err
		}
	}
	return result.adoptFrom(tmp)
}

// ConvertToDense scatters m into result, leaving m unchanged.
func (m *Coo[V, I]) ConvertToDense(result *Dense[V]) error {
	return m.toDense(result, false)
}

// MoveToDense scatters m into result and leaves m empty.
func (m *Coo[V, I]) MoveToDense(result *Dense[V]) error {
	return m.toDense(result, true)
}

func (m *Coo[V, I]) toDense(result *Dense[V], move bool) error {
	tmp, err := NewDense[V](m.exec, m.size)
	if err != nil {
		return err
	}
	if err := m.exec.Run(cooOps[V, I]().convertToDense.Bind(kernels.CooToDense[V, I]{
		Source: m.view(), Result: tmp.view(),
	})); err != nil {
		tmp.Release()
		return err
	}
	values, err := adopt(tmp.values, result.exec)
	if err != nil {
		return err
	}
	size := m.size
	if move {
		m.Release()
	}
	result.replace(size, size.Cols, values)
	return nil
}

// readDense stores the nonzeros of src into m in row-major order.
func (m *Coo[V, I]) readDense(src *Dense[V]) error {
	e := src.exec
	nnz, err := src.CountNonzeros()
	if err != nil {
		return err
	}
	tmp, err := NewCoo[V, I](e, src.size, nnz)
	if err != nil {
		return err
	}
	if err := e.Run(denseSparseOps[V, I]().convertToCoo.Bind(kernels.DenseToCoo[V, I]{
		Source: src.view(), Result: tmp.view(),
	})); err != nil {
		tmp.Release()
		return err
	}
	return m.adoptFrom(tmp)
}

func (m *Coo[V, I]) adoptFrom(tmp *Coo[V, I]) error {
	size := tmp.size
	rowIdxs, err := adopt(tmp.rowIdxs.Take(), m.exec)
	if err != nil {
		tmp.Release()
		return err
	}
	colIdxs, err := adopt(tmp.colIdxs.Take(), m.exec)
	if err != nil {
		releaseAll(rowIdxs)
		tmp.Release()
		return err
	}
	values, err := adopt(tmp.values.Take(), m.exec)
	if err != nil {
		releaseAll(rowIdxs, colIdxs)
		return err
	}
	tmp.Release()
	m.replace(size, rowIdxs, colIdxs, values)
	return nil
}

// Clone returns a deep copy of m on e.
func (m *Coo[V, I]) Clone(e exec.Executor) (*Coo[V, I], error) {
	rowIdxs, err := m.rowIdxs.CopyTo(e)
	if err != nil {
		return nil, err
	}
	colIdxs, err := m.colIdxs.CopyTo(e)
	if err != nil {
		releaseAll(rowIdxs)
		return nil, err
	}
	values, err := m.values.CopyTo(e)
	if err != nil {
		releaseAll(rowIdxs, colIdxs)
		return nil, err
	}
	return &Coo[V, I]{exec: e, size: m.size, rowIdxs: rowIdxs, colIdxs: colIdxs, values: values}, nil
}

// ReadFromMtx replaces the contents of m with the Matrix Market file at
// path.
func (m *Coo[V, I]) ReadFromMtx(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "matrix: read")
	}
	defer f.Close()
	return errors.Wrapf(m.ReadMtx(f), "matrix: read %s", path)
}

// ReadMtx replaces the contents of m with a Matrix Market stream, dropping
// entries equal to zero.
func (m *Coo[V, I]) ReadMtx(r io.Reader) error {
	data, err := mtx.Read[V, I](r)
	if err != nil {
		return err
	}
	var rows, cols []I
	var vals []V
	for _, e := range data.Entries {
		if scalar.IsZero(e.Value) {
			continue
		}
		rows = append(rows, e.Row)
		cols = append(cols, e.Col)
		vals = append(vals, e.Value)
	}
	tmp, err := CooFromSlices(m.exec.Master(), Dim{Rows: data.Rows, Cols: data.Cols}, rows, cols, vals)
	if err != nil {
		return err
	}
	return m.adoptFrom(tmp)
}

// WriteMtx writes the stored elements of m in storage order. Unsorted
// storage produces a stream ReadMtx rejects.
func (m *Coo[V, I]) WriteMtx(w io.Writer) error {
	rows, err := m.rowIdxs.ToSlice()
	if err != nil {
		return err
	}
	cols, err := m.colIdxs.ToSlice()
	if err != nil {
		return err
	}
	vals, err := m.values.ToSlice()
	if err != nil {
		return err
	}
	data := &mtx.Data[V, I]{Rows: m.size.Rows, Cols: m.size.Cols, Entries: make([]mtx.Entry[V, I], len(vals))}
	for k := range vals {
		data.Entries[k] = mtx.Entry[V, I]{Row: rows[k], Col: cols[k], Value: vals[k]}
	}
	return mtx.Write(w, data)
}
