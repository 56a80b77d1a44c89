package exec

import (
	"unsafe"

	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

// Array is a typed, contiguous block of elements owned by one executor.
//
// An Array is exclusively owned by the matrix holding it. Take transfers
// ownership; Release returns the memory to the executor.
type Array[T scalar.Element] struct {
	exec Executor
	buf  Buffer
	n    int
}

// NewArray allocates n zero-initialized elements on e. Device memory is not
// cleared.
func NewArray[T scalar.Element](e Executor, n int) (*Array[T], error) {
	if n < 0 {
		return nil, errors.AssertionFailedf("exec: negative array length %d", n)
	}
	a := &Array[T]{exec: e, n: n}
	if n == 0 {
		return a, nil
	}
	buf, err := e.Alloc(n * scalar.SizeOf[T]())
	if err != nil {
		return nil, err
	}
	a.buf = buf
	return a, nil
}

// ArrayFromSlice allocates an array on e holding a copy of vals.
func ArrayFromSlice[T scalar.Element](e Executor, vals []T) (*Array[T], error) {
	a, err := NewArray[T](e, len(vals))
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return a, nil
	}
	if err := copyFromHost(sliceBytes(vals), e, a.Bytes(), a.buf); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// sliceBytes views vals as raw bytes without copying.
func sliceBytes[T scalar.Element](vals []T) []byte {
	if len(vals) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, length derived from len(vals)
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*scalar.SizeOf[T]())
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.n
}

// Bytes returns the array size in bytes.
func (a *Array[T]) Bytes() int { return a.Len() * scalar.SizeOf[T]() }

// Executor returns the executor owning the memory.
func (a *Array[T]) Executor() Executor { return a.exec }

// Buffer returns the underlying buffer, nil for an empty array.
func (a *Array[T]) Buffer() Buffer { return a.buf }

// Data returns the elements as a slice aliasing host memory. It returns nil
// for empty arrays and for arrays held by device executors.
func (a *Array[T]) Data() []T {
	if a == nil || a.n == 0 {
		return nil
	}
	hb, ok := a.buf.(*HostBuffer)
	if !ok || len(hb.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by Len()
	return unsafe.Slice((*T)(unsafe.Pointer(&hb.data[0])), a.n)
}

// ToSlice returns a fresh host copy of the elements, downloading from the
// device when needed.
func (a *Array[T]) ToSlice() ([]T, error) {
	out := make([]T, a.Len())
	if len(out) == 0 {
		return out, nil
	}
	if data := a.Data(); data != nil {
		copy(out, data)
		return out, nil
	}
	master := a.exec.Master()
	tmp, err := a.CopyTo(master)
	if err != nil {
		return nil, err
	}
	defer tmp.Release()
	copy(out, tmp.Data())
	return out, nil
}

// Fill sets every element of a host array to v.
func (a *Array[T]) Fill(v T) {
	data := a.Data()
	for i := range data {
		data[i] = v
	}
}

// CopyTo allocates an array on e and copies the elements into it.
func (a *Array[T]) CopyTo(e Executor) (*Array[T], error) {
	out, err := NewArray[T](e, a.Len())
	if err != nil {
		return nil, err
	}
	if err := Copy(e, out.buf, a.exec, a.buf, a.Bytes()); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Assign replaces the contents of a with a copy of src, keeping a on its
// own executor. The storage is reallocated only when the length differs.
func (a *Array[T]) Assign(src *Array[T]) error {
	if a.Len() != src.Len() {
		fresh, err := NewArray[T](a.exec, src.Len())
		if err != nil {
			return err
		}
		a.Release()
		a.buf, a.n = fresh.buf, fresh.n
	}
	return Copy(a.exec, a.buf, src.exec, src.buf, src.Bytes())
}

// Take moves the storage into a new Array and leaves a empty. No data is
// copied.
func (a *Array[T]) Take() *Array[T] {
	out := &Array[T]{exec: a.exec, buf: a.buf, n: a.n}
	a.buf = nil
	a.n = 0
	return out
}

// Release frees the storage. The array stays usable as an empty array.
func (a *Array[T]) Release() {
	if a == nil || a.buf == nil {
		return
	}
	a.exec.Free(a.buf)
	a.buf = nil
	a.n = 0
}
