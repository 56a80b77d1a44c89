package matrix

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/born-ml/linalg/internal/kernels"
	"github.com/born-ml/linalg/internal/mtx"
	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// Dense is a row-major dense matrix. Element (i, j) is stored at
// i*Stride()+j; the stride is at least the number of columns.
type Dense[V scalar.Value] struct {
	exec   exec.Executor
	size   Dim
	stride int
	values *exec.Array[V]
}

var _ LinOp = (*Dense[float64])(nil)

// FromDense is implemented by every matrix type a dense matrix converts to.
type FromDense[V scalar.Value] interface {
	LinOp
	readDense(src *Dense[V]) error
}

// EmptyDense returns a 0x0 matrix on e, usable as a conversion result.
func EmptyDense[V scalar.Value](e exec.Executor) *Dense[V] {
	return &Dense[V]{exec: e, values: emptyArray[V](e)}
}

// NewDense allocates a zeroed matrix with stride equal to its columns.
func NewDense[V scalar.Value](e exec.Executor, size Dim) (*Dense[V], error) {
	return NewDenseWithStride[V](e, size, size.Cols)
}

// NewDenseWithStride allocates a zeroed matrix with the given stride.
func NewDenseWithStride[V scalar.Value](e exec.Executor, size Dim, stride int) (*Dense[V], error) {
	if size.Rows < 0 || size.Cols < 0 {
		return nil, invalidStructure("negative size %s", size)
	}
	if stride < size.Cols {
		return nil, invalidStructure("stride %d is smaller than %d columns", stride, size.Cols)
	}
	n, err := storageLen[V](size, stride)
	if err != nil {
		return nil, err
	}
	values, err := zeroedArray[V](e, n)
	if err != nil {
		return nil, err
	}
	return &Dense[V]{exec: e, size: size, stride: stride, values: values}, nil
}

// storageLen returns rows*stride, the element count of a dense buffer. It
// fails when the buffer size in bytes does not fit an int.
func storageLen[V scalar.Value](size Dim, stride int) (int, error) {
	if stride != 0 && size.Rows > math.MaxInt/scalar.SizeOf[V]()/stride {
		return 0, invalidStructure("%s matrix with stride %d overflows int", size, stride)
	}
	return size.Rows * stride, nil
}

// DenseFromSlice copies row-major values into a new matrix on e.
func DenseFromSlice[V scalar.Value](e exec.Executor, size Dim, values []V) (*Dense[V], error) {
	if size.Rows < 0 || size.Cols < 0 {
		return nil, invalidStructure("negative size %s", size)
	}
	n, err := storageLen[V](size, size.Cols)
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, invalidStructure("%d values for a %s matrix", len(values), size)
	}
	arr, err := exec.ArrayFromSlice(e, values)
	if err != nil {
		return nil, err
	}
	return &Dense[V]{exec: e, size: size, stride: size.Cols, values: arr}, nil
}

// DenseFromRows copies rows of equal length into a new matrix on e.
func DenseFromRows[V scalar.Value](e exec.Executor, rows [][]V) (*Dense[V], error) {
	size := Dim{Rows: len(rows)}
	if len(rows) > 0 {
		size.Cols = len(rows[0])
	}
	n, err := storageLen[V](size, size.Cols)
	if err != nil {
		return nil, err
	}
	flat := make([]V, 0, n)
	for i, row := range rows {
		if len(row) != size.Cols {
			return nil, invalidStructure("row %d has %d values, row 0 has %d", i, len(row), size.Cols)
		}
		flat = append(flat, row...)
	}
	return DenseFromSlice(e, size, flat)
}

// Scalar returns a 1x1 matrix holding v, the form alpha and beta take.
func Scalar[V scalar.Value](e exec.Executor, v V) (*Dense[V], error) {
	return DenseFromSlice(e, Dim{Rows: 1, Cols: 1}, []V{v})
}

// Executor implements LinOp.
func (d *Dense[V]) Executor() exec.Executor { return d.exec }

// Size implements LinOp.
func (d *Dense[V]) Size() Dim { return d.size }

// Stride returns the distance between the starts of two rows.
func (d *Dense[V]) Stride() int { return d.stride }

// String implements fmt.Stringer.
func (d *Dense[V]) String() string {
	return fmt.Sprintf("Dense[%s](%s)", scalar.TypeName[V](), d.size)
}

// Values returns the host storage including row padding. It is nil for
// device-resident matrices.
func (d *Dense[V]) Values() []V { return d.values.Data() }

// At returns element (i, j). It reads host storage and panics for
// device-resident matrices or indices out of range.
func (d *Dense[V]) At(i, j int) V {
	if i < 0 || i >= d.size.Rows || j < 0 || j >= d.size.Cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for %s", i, j, d.size))
	}
	return d.values.Data()[i*d.stride+j]
}

// ToRows returns a host copy of the matrix, downloading it if needed.
func (d *Dense[V]) ToRows() ([][]V, error) {
	flat, err := d.values.ToSlice()
	if err != nil {
		return nil, err
	}
	rows := make([][]V, d.size.Rows)
	for i := range rows {
		rows[i] = flat[i*d.stride : i*d.stride+d.size.Cols : i*d.stride+d.size.Cols]
	}
	return rows, nil
}

func (d *Dense[V]) view() kernels.Dense[V] {
	return kernels.Dense[V]{Rows: d.size.Rows, Cols: d.size.Cols, Stride: d.stride, Values: d.values}
}

// replace installs new storage, freeing the old one. values must live on
// d's executor.
func (d *Dense[V]) replace(size Dim, stride int, values *exec.Array[V]) {
	if d.values != values {
		d.values.Release()
	}
	d.size, d.stride, d.values = size, stride, values
}

// Release frees the storage and leaves a 0x0 matrix.
func (d *Dense[V]) Release() {
	d.values.Release()
	d.size, d.stride = Dim{}, 0
}

// Apply computes x = d * b.
func (d *Dense[V]) Apply(b, x LinOp) error {
	const op = "Dense.Apply"
	if err := checkApply(op, d, b, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, d.exec, b, x)
	if err != nil {
		return err
	}
	return runApply(d.exec, d, b, x, denseOps[V]().simpleApply.Bind(kernels.DenseSimpleApply[V]{
		A: d.view(), B: ops[0].view(), C: ops[1].view(),
	}))
}

// ApplyScaled computes x = alpha * d * b + beta * x. When beta is zero x is
// overwritten without being read.
func (d *Dense[V]) ApplyScaled(alpha, b, beta, x LinOp) error {
	const op = "Dense.ApplyScaled"
	if err := checkApplyScaled(op, alpha, d, b, beta, x); err != nil {
		return err
	}
	ops, err := denseOperands[V](op, d.exec, alpha, b, beta, x)
	if err != nil {
		return err
	}
	return runApply(d.exec, d, b, x, denseOps[V]().apply.Bind(kernels.DenseApply[V]{
		Alpha: ops[0].view(), A: d.view(), B: ops[1].view(), Beta: ops[2].view(), C: ops[3].view(),
	}))
}

// Scale multiplies d by alpha: a 1x1 matrix scales everything, a 1 x cols
// matrix scales every column by its own factor.
func (d *Dense[V]) Scale(alpha *Dense[V]) error {
	const op = "Dense.Scale"
	if err := checkColumnFactors(op, "alpha", alpha.size, d.size.Cols); err != nil {
		return err
	}
	if err := exec.CheckFamily(op, d.exec, alpha.exec); err != nil {
		return err
	}
	return d.exec.Run(denseOps[V]().scale.Bind(kernels.DenseScale[V]{Alpha: alpha.view(), X: d.view()}))
}

// AddScaled computes d = d + alpha * b, alpha 1x1 or 1 x cols.
func (d *Dense[V]) AddScaled(alpha, b *Dense[V]) error {
	const op = "Dense.AddScaled"
	if err := checkColumnFactors(op, "alpha", alpha.size, d.size.Cols); err != nil {
		return err
	}
	if err := checkSameSize(op, "b", b.size, "x", d.size); err != nil {
		return err
	}
	if err := exec.CheckFamily(op, d.exec, alpha.exec, b.exec); err != nil {
		return err
	}
	return d.exec.Run(denseOps[V]().addScaled.Bind(kernels.DenseAddScaled[V]{
		Alpha: alpha.view(), B: b.view(), X: d.view(),
	}))
}

// ComputeDot stores the dot product of column j of d and b into
// result[0, j]. Complex values are not conjugated.
func (d *Dense[V]) ComputeDot(b, result *Dense[V]) error {
	const op = "Dense.ComputeDot"
	if err := checkSameSize(op, "x", d.size, "y", b.size); err != nil {
		return err
	}
	if err := checkEqualCols(op, "x", d.size, "result", result.size); err != nil {
		return err
	}
	if result.size.Rows != 1 {
		return &DimensionMismatchError{
			Op: op, First: "result", FirstSize: result.size,
			Requirement: fmt.Sprintf("expected 1x%d", d.size.Cols),
		}
	}
	if err := exec.CheckFamily(op, d.exec, b.exec, result.exec); err != nil {
		return err
	}
	return d.exec.Run(denseOps[V]().computeDot.Bind(kernels.DenseComputeDot[V]{
		X: d.view(), Y: b.view(), Result: result.view(),
	}))
}

// Transpose returns a new matrix holding the transpose of d.
func (d *Dense[V]) Transpose() (*Dense[V], error) {
	return d.transpose(denseOps[V]().transpose)
}

// ConjTranspose returns a new matrix holding the conjugate transpose of d.
func (d *Dense[V]) ConjTranspose() (*Dense[V], error) {
	return d.transpose(denseOps[V]().conjTranspose)
}

func (d *Dense[V]) transpose(k *exec.Kernel[kernels.DenseTranspose[V]]) (*Dense[V], error) {
	out, err := NewDense[V](d.exec, d.size.Transposed())
	if err != nil {
		return nil, err
	}
	if err := d.exec.Run(k.Bind(kernels.DenseTranspose[V]{Source: d.view(), Result: out.view()})); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// CountNonzeros returns the number of entries different from zero.
func (d *Dense[V]) CountNonzeros() (int, error) {
	var n int
	err := d.exec.Run(denseOps[V]().countNonzeros.Bind(kernels.DenseCountNonzeros[V]{Source: d.view(), Result: &n}))
	return n, err
}

// ConvertTo fills result with the contents of d, leaving d unchanged.
// Sparse results store only the nonzero entries.
func (d *Dense[V]) ConvertTo(result FromDense[V]) error {
	return result.readDense(d)
}

// MoveTo fills result like ConvertTo and then releases d.
func (d *Dense[V]) MoveTo(result FromDense[V]) error {
	if err := result.readDense(d); err != nil {
		return err
	}
	if LinOp(d) != LinOp(result) {
		d.Release()
	}
	return nil
}

func (d *Dense[V]) readDense(src *Dense[V]) error {
	if src == d {
		return nil
	}
	values, err := src.values.CopyTo(d.exec)
	if err != nil {
		return err
	}
	d.replace(src.size, src.stride, values)
	return nil
}

// Clone returns a deep copy of d on e.
func (d *Dense[V]) Clone(e exec.Executor) (*Dense[V], error) {
	out := EmptyDense[V](e)
	if err := out.readDense(d); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadFromMtx replaces the contents of d with the Matrix Market file at
// path.
func (d *Dense[V]) ReadFromMtx(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "matrix: read")
	}
	defer f.Close()
	return errors.Wrapf(d.ReadMtx(f), "matrix: read %s", path)
}

// ReadMtx replaces the contents of d with a Matrix Market stream. The
// matrix is assembled on the host and then moved to d's executor.
func (d *Dense[V]) ReadMtx(r io.Reader) error {
	data, err := mtx.Read[V, int64](r)
	if err != nil {
		return err
	}
	tmp, err := NewDense[V](d.exec.Master(), Dim{Rows: data.Rows, Cols: data.Cols})
	if err != nil {
		return err
	}
	values := tmp.Values()
	for _, e := range data.Entries {
		values[int(e.Row)*tmp.stride+int(e.Col)] = e.Value
	}
	return tmp.MoveTo(d)
}

// WriteMtx writes the nonzero entries of d as a Matrix Market stream.
func (d *Dense[V]) WriteMtx(w io.Writer) error {
	rows, err := d.ToRows()
	if err != nil {
		return err
	}
	data := &mtx.Data[V, int64]{Rows: d.size.Rows, Cols: d.size.Cols}
	for i, row := range rows {
		for j, v := range row {
			if !scalar.IsZero(v) {
				data.Entries = append(data.Entries, mtx.Entry[V, int64]{Row: int64(i), Col: int64(j), Value: v})
			}
		}
	}
	return mtx.Write(w, data)
}
