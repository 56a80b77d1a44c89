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

// Csr is a compressed sparse row matrix.
//
// Row r stores its elements at positions RowPtrs()[r] up to
// RowPtrs()[r+1] of ColIdxs() and Values(). Column indices within a row are
// not required to be sorted. A 0x0 matrix produced by EmptyCsr or left
// behind by a move has no row pointers at all.
type Csr[V scalar.Value, I scalar.Index] struct {
	exec    exec.Executor
	size    Dim
	rowPtrs *exec.Array[I]
	colIdxs *exec.Array[I]
	values  *exec.Array[V]
}

var _ LinOp = (*Csr[float64, int32])(nil)

// EmptyCsr returns a 0x0 matrix on e, usable as a conversion result.
func EmptyCsr[V scalar.Value, I scalar.Index](e exec.Executor) *Csr[V, I] {
	return &Csr[V, I]{
		exec:    e,
		rowPtrs: emptyArray[I](e),
		colIdxs: emptyArray[I](e),
		values:  emptyArray[V](e),
	}
}

// NewCsr allocates a matrix with room for nnz stored elements. The row
// pointers start zeroed; the caller fills the storage.
func NewCsr[V scalar.Value, I scalar.Index](e exec.Executor, size Dim, nnz int) (*Csr[V, I], error) {
	if size.Rows < 0 || size.Cols < 0 || nnz < 0 {
		return nil, invalidStructure("negative size %s with %d elements", size, nnz)
	}
	rowPtrs, err := zeroedArray[I](e, size.Rows+1)
	if err != nil {
		return nil, err
	}
	colIdxs, err := exec.NewArray[I](e, nnz)
	if err != nil {
		releaseAll(rowPtrs)
		return nil, err
	}
	values, err := exec.NewArray[V](e, nnz)
	if err != nil {
		releaseAll(rowPtrs, colIdxs)
		return nil, err
	}
	return &Csr[V, I]{exec: e, size: size, rowPtrs: rowPtrs, colIdxs: colIdxs, values: values}, nil
}

// CsrFromSlices validates raw CSR storage and copies it onto e.
func CsrFromSlices[V scalar.Value, I scalar.Index](e exec.Executor, size Dim, rowPtrs, colIdxs []I, values []V) (*Csr[V, I], error) {
	if err := validateCsr(size, rowPtrs, colIdxs, len(values)); err != nil {
		return nil, err
	}
	return csrFromHost(e, size, rowPtrs, colIdxs, values)
}

// csrFromHost copies already validated storage onto e.
func csrFromHost[V scalar.Value, I scalar.Index](e exec.Executor, size Dim, rowPtrs, colIdxs []I, values []V) (*Csr[V, I], error) {
	ptrs, err := exec.ArrayFromSlice(e, rowPtrs)
	if err != nil {
		return nil, err
	}
	cols, err := exec.ArrayFromSlice(e, colIdxs)
	if err != nil {
		releaseAll(ptrs)
		return nil, err
	}
	vals, err := exec.ArrayFromSlice(e, values)
	if err != nil {
		releaseAll(ptrs, cols)
		return nil, err
	}
	return &Csr[V, I]{exec: e, size: size, rowPtrs: ptrs, colIdxs: cols, values: vals}, nil
}

func validateCsr[I scalar.Index](size Dim, rowPtrs, colIdxs []I, numValues int) error {
	if size.Rows < 0 || size.Cols < 0 {
		return invalidStructure("negative size %s", size)
	}
	if len(rowPtrs) == 0 && size.Rows == 0 && len(colIdxs) == 0 && numValues == 0 {
		return nil
	}
	if len(rowPtrs) != size.Rows+1 {
		return invalidStructure("%d row pointers for %d rows", len(rowPtrs), size.Rows)
	}
	if rowPtrs[0] != 0 {
		return invalidStructure("first row pointer is %d", rowPtrs[0])
	}
	for r := 0; r < size.Rows; r++ {
		if rowPtrs[r+1] < rowPtrs[r] {
			return invalidStructure("row pointers decrease at row %d", r)
		}
	}
	nnz := int(rowPtrs[size.Rows])
	if nnz != len(colIdxs) {
		return invalidStructure("last row pointer is %d, %d column indices stored", nnz, len(colIdxs))
	}
	if numValues != len(colIdxs) {
		return invalidStructure("%d values for %d column indices", numValues, len(colIdxs))
	}
	for k, c := range colIdxs {
		if c < 0 || int(c) >= size.Cols {
			return invalidStructure("column index %d at position %d outside [0, %d)", c, k, size.Cols)
		}
	}
	return nil
}

// Executor implements LinOp.
func (m *Csr[V, I]) Executor() exec.Executor { return m.exec }

// Size implements LinOp.
func (m *Csr[V, I]) Size() Dim { return m.size }

// String implements fmt.Stringer.
func (m *Csr[V, I]) String() string {
	return fmt.Sprintf("%s(%s, nnz=%d)", typeName[V, I]("Csr"), m.size, m.NumStoredElements())
}

// NumStoredElements returns the number of explicitly stored elements.
func (m *Csr[V, I]) NumStoredElements() int { return m.values.Len() }

// RowPtrs returns the host row pointers, nil on device executors.
func (m *Csr[V, I]) RowPtrs() []I { return m.rowPtrs.Data() }

// ColIdxs returns the host column indices, nil on device executors.
func (m *Csr[V, I]) ColIdxs() []I { return m.colIdxs.Data() }

// Values returns the host values, nil on device executors.
func (m *Csr[V, I]) Values() []V { return m.values.Data() }

// Validate checks the structural invariants of the storage, downloading it
// first if it lives on a device.
func (m *Csr[V, I]) Validate() error {
	ptrs, err := m.rowPtrs.ToSlice()
	if err != nil {
		return err
	}
	cols, err := m.colIdxs.ToSlice()
	if err != nil {
		return err
	}
	return validateCsr(m.size, ptrs, cols, m.values.Len())
}

func (m *Csr[V, I]) view() kernels.Csr[V, I] {
	return kernels.Csr[V, I]{
		Rows: m.size.Rows, Cols: m.size.Cols,
		RowPtrs: m.rowPtrs, ColIdxs: m.colIdxs, Values: m.values,
	}
}

// replace installs new storage, freeing the old one. All arrays must live
// on m's executor.
func (m *Csr[V, I]) replace(size Dim, rowPtrs, colIdxs *exec.Array[I], values *exec.Array[V]) {
	if m.rowPtrs != rowPtrs {
		m.rowPtrs.Release()
	}
	if m.colIdxs != colIdxs {
		m.colIdxs.Release()
	}
	if m.values != values {
		m.values.Release()
	}
	m.size, m.rowPtrs, m.colIdxs, m.values = size, rowPtrs, colIdxs, values
}

// Release frees the storage and leaves a 0x0 matrix with no stored
// elements.
func (m *Csr[V, I]) Release() {
	releaseAll(m.rowPtrs, m.colIdxs, m.values)
	m.size = Dim{}
}

// Apply computes x = m * b.
func (m *Csr[V, I]) Apply(b, x LinOp) error {
	const op = "Csr.Apply"
	if err := checkApply(op, m, b, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, m.exec, b, x)
	if err != nil {
		return err
	}
	return runApply(m.exec, m, b, x, csrOps[V, I]().spmv.Bind(kernels.CsrSpmv[V, I]{
		A: m.view(), B: ops[0].view(), C: ops[1].view(),
	}))
}

// ApplyScaled computes x = alpha * m * b + beta * x.
func (m *Csr[V, I]) ApplyScaled(alpha, b, beta, x LinOp) error {
	const op = "Csr.ApplyScaled"
	if err := checkApplyScaled(op, alpha, m, b, beta, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, m.exec, alpha, b, beta, x)
	if err != nil {
		return err
	}
	return runApply(m.exec, m, b, x, csrOps[V, I]().advancedSpmv.Bind(kernels.CsrAdvancedSpmv[V, I]{
		Alpha: ops[0].view(), A: m.view(), B: ops[1].view(), Beta: ops[2].view(), C: ops[3].view(),
	}))
}

// ConvertToCoo fills result with the elements of m in storage order,
// leaving m unchanged.
func (m *Csr[V, I]) ConvertToCoo(result *Coo[V, I]) error {
	return m.toCoo(result, false)
}

// MoveToCoo fills result like ConvertToCoo, handing over the column index
// and value storage, and leaves m empty.
func (m *Csr[V, I]) MoveToCoo(result *Coo[V, I]) error {
	return m.toCoo(result, true)
}

func (m *Csr[V, I]) toCoo(result *Coo[V, I], move bool) error {
	nnz := m.NumStoredElements()
	rowIdxs, err := exec.NewArray[I](m.exec, nnz)
	if err != nil {
		return err
	}
	if err := m.exec.Run(csrOps[V, I]().rowPtrsToIdxs.Bind(kernels.RowPtrsToIdxs[I]{
		RowPtrs: m.rowPtrs, NumRows: m.size.Rows, RowIdxs: rowIdxs,
	})); err != nil {
		rowIdxs.Release()
		return err
	}

	var colIdxs *exec.Array[I]
	var values *exec.Array[V]
	if move {
		colIdxs, values = m.colIdxs.Take(), m.values.Take()
	} else {
		if colIdxs, err = m.colIdxs.CopyTo(m.exec); err != nil {
			releaseAll(rowIdxs)
			return err
		}
		if values, err = m.values.CopyTo(m.exec); err != nil {
			releaseAll(rowIdxs, colIdxs)
			return err
		}
	}

	size := m.size
	if rowIdxs, err = adopt(rowIdxs, result.exec); err != nil {
		releaseAll(colIdxs, values)
		return err
	}
	if colIdxs, err = adopt(colIdxs, result.exec); err != nil {
		releaseAll(rowIdxs, values)
		return err
	}
	if values, err = adopt(values, result.exec); err != nil {
		releaseAll(rowIdxs, colIdxs)
		return err
	}
	if move {
		m.Release()
	}
	result.replace(size, rowIdxs, colIdxs, values)
	return nil
}

// ConvertToDense scatters m into result, leaving m unchanged. A column
// stored twice in one row fails with ErrDuplicateEntry.
func (m *Csr[V, I]) ConvertToDense(result *Dense[V]) error {
	return m.toDense(result, csrOps[V, I]().convertToDense, false)
}

// MoveToDense scatters m into result and leaves m empty.
func (m *Csr[V, I]) MoveToDense(result *Dense[V]) error {
	return m.toDense(result, csrOps[V, I]().moveToDense, true)
}

func (m *Csr[V, I]) toDense(result *Dense[V], k *exec.Kernel[kernels.CsrToDense[V, I]], move bool) error {
	tmp, err := NewDense[V](m.exec, m.size)
	if err != nil {
		return err
	}
	if err := m.exec.Run(k.Bind(kernels.CsrToDense[V, I]{Source: m.view(), Result: tmp.view()})); err != nil {
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

// readDense compacts the nonzeros of src into m.
func (m *Csr[V, I]) readDense(src *Dense[V]) error {
	e := src.exec
	nnz, err := src.CountNonzeros()
	if err != nil {
		return err
	}
	tmp, err := NewCsr[V, I](e, src.size, nnz)
	if err != nil {
		return err
	}
	if err := e.Run(denseSparseOps[V, I]().convertToCsr.Bind(kernels.DenseToCsr[V, I]{
		Source: src.view(), Result: tmp.view(),
	})); err != nil {
		tmp.Release()
		return err
	}
	return m.adoptFrom(tmp)
}

// adoptFrom takes the storage of tmp, copying it if tmp lives on another
// executor.
func (m *Csr[V, I]) adoptFrom(tmp *Csr[V, I]) error {
	size := tmp.size
	rowPtrs, err := adopt(tmp.rowPtrs.Take(), m.exec)
	if err != nil {
		tmp.Release()
		return err
	}
	colIdxs, err := adopt(tmp.colIdxs.Take(), m.exec)
	if err != nil {
		releaseAll(rowPtrs)
		tmp.Release()
		return err
	}
	values, err := adopt(tmp.values.Take(), m.exec)
	if err != nil {
		releaseAll(rowPtrs, colIdxs)
		return err
	}
	tmp.Release()
	m.replace(size, rowPtrs, colIdxs, values)
	return nil
}

// Transpose returns a new matrix holding the transpose of m. Within each
// result row, elements appear in ascending source row order.
func (m *Csr[V, I]) Transpose() (*Csr[V, I], error) {
	return m.transpose(csrOps[V, I]().transpose)
}

// ConjTranspose returns a new matrix holding the conjugate transpose of m.
func (m *Csr[V, I]) ConjTranspose() (*Csr[V, I], error) {
	return m.transpose(csrOps[V, I]().conjTranspose)
}

func (m *Csr[V, I]) transpose(k *exec.Kernel[kernels.CsrTranspose[V, I]]) (*Csr[V, I], error) {
	out, err := NewCsr[V, I](m.exec, m.size.Transposed(), m.NumStoredElements())
	if err != nil {
		return nil, err
	}
	if err := m.exec.Run(k.Bind(kernels.CsrTranspose[V, I]{Source: m.view(), Result: out.view()})); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Clone returns a deep copy of m on e.
func (m *Csr[V, I]) Clone(e exec.Executor) (*Csr[V, I], error) {
	rowPtrs, err := m.rowPtrs.CopyTo(e)
	if err != nil {
		return nil, err
	}
	colIdxs, err := m.colIdxs.CopyTo(e)
	if err != nil {
		releaseAll(rowPtrs)
		return nil, err
	}
	values, err := m.values.CopyTo(e)
	if err != nil {
		releaseAll(rowPtrs, colIdxs)
		return nil, err
	}
	return &Csr[V, I]{exec: e, size: m.size, rowPtrs: rowPtrs, colIdxs: colIdxs, values: values}, nil
}

// ReadFromMtx replaces the contents of m with the Matrix Market file at
// path.
func (m *Csr[V, I]) ReadFromMtx(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "matrix: read")
	}
	defer f.Close()
	return errors.Wrapf(m.ReadMtx(f), "matrix: read %s", path)
}

// ReadMtx replaces the contents of m with a Matrix Market stream. Entries
// equal to zero are not stored. The matrix is assembled on the host and
// then moved to m's executor.
func (m *Csr[V, I]) ReadMtx(r io.Reader) error {
	data, err := mtx.Read[V, I](r)
	if err != nil {
		return err
	}
	nnz := 0
	for _, e := range data.Entries {
		if !scalar.IsZero(e.Value) {
			nnz++
		}
	}

	// Entries arrive grouped by ascending row.
	rowPtrs := make([]I, data.Rows+1)
	colIdxs := make([]I, 0, nnz)
	values := make([]V, 0, nnz)
	k := 0
	for row := 0; row < data.Rows; row++ {
		for ; k < len(data.Entries) && int(data.Entries[k].Row) <= row; k++ {
			e := data.Entries[k]
			if scalar.IsZero(e.Value) {
				continue
			}
			colIdxs = append(colIdxs, e.Col)
			values = append(values, e.Value)
		}
		rowPtrs[row+1] = I(len(values))
	}

	tmp, err := csrFromHost(m.exec.Master(), Dim{Rows: data.Rows, Cols: data.Cols}, rowPtrs, colIdxs, values)
	if err != nil {
		return err
	}
	return m.adoptFrom(tmp)
}

// WriteMtx writes the stored elements of m, in row order, as a Matrix
// Market stream.
func (m *Csr[V, I]) WriteMtx(w io.Writer) error {
	ptrs, err := m.rowPtrs.ToSlice()
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
	data := &mtx.Data[V, I]{Rows: m.size.Rows, Cols: m.size.Cols, Entries: make([]mtx.Entry[V, I], 0, len(vals))}
	for row := 0; row+1 < len(ptrs); row++ {
		for k := ptrs[row]; k < ptrs[row+1]; k++ {
			data.Entries = append(data.Entries, mtx.Entry[V, I]{Row: I(row), Col: cols[k], Value: vals[k]})
		}
	}
	return mtx.Write(w, data)
}
