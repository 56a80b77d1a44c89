package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unsafe"

	"github.com/born-ml/linalg/exec"
	"github.com/born-ml/linalg/internal/mtx"
	"github.com/born-ml/linalg/matrix"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// runner executes the subcommands for one value and index type.
type runner interface {
	info(path string) error
	spmv(aPath, bPath string, scaled bool, alpha, beta string) error
	convert(path, to string) error
	transpose(path string, conj bool) error
	kernels() []matrix.KernelInfo
}

func newRunner(precision, index string, e exec.Executor, out io.Writer) (runner, error) {
	switch precision + "/" + index {
	case "float32/int32":
		return &typed[float32, int32]{e: e, out: out}, nil
	case "float32/int64":
		return &typed[float32, int64]{e: e, out: out}, nil
	case "float64/int32":
		return &typed[float64, int32]{e: e, out: out}, nil
	case "float64/int64":
		return &typed[float64, int64]{e: e, out: out}, nil
	case "complex64/int32":
		return &typed[complex64, int32]{e: e, out: out}, nil
	case "complex64/int64":
		return &typed[complex64, int64]{e: e, out: out}, nil
	case "complex128/int32":
		return &typed[complex128, int32]{e: e, out: out}, nil
	case "complex128/int64":
		return &typed[complex128, int64]{e: e, out: out}, nil
	default:
		return nil, errors.Newf("unsupported precision %q with index %q", precision, index)
	}
}

type typed[V matrix.Value, I matrix.Index] struct {
	e   exec.Executor
	out io.Writer
}

func (t *typed[V, I]) readCsr(path string) (*matrix.Csr[V, I], error) {
	a := matrix.EmptyCsr[V, I](t.e)
	if err := a.ReadFromMtx(path); err != nil {
		return nil, err
	}
	return a, nil
}

func (t *typed[V, I]) info(path string) error {
	a, err := t.readCsr(path)
	if err != nil {
		return err
	}
	defer a.Release()

	size, nnz := a.Size(), a.NumStoredElements()
	var density float64
	if cells := size.Rows * size.Cols; cells > 0 {
		density = float64(nnz) / float64(cells)
	}
	var v V
	var i I
	bytes := uint64(size.Rows+1)*uint64(unsafe.Sizeof(i)) + uint64(nnz)*uint64(unsafe.Sizeof(i)+unsafe.Sizeof(v))

	fmt.Fprintf(t.out, "matrix:   %s\n", a)
	fmt.Fprintf(t.out, "size:     %s\n", size)
	fmt.Fprintf(t.out, "stored:   %s\n", humanize.Comma(int64(nnz)))
	fmt.Fprintf(t.out, "density:  %.4g\n", density)
	fmt.Fprintf(t.out, "storage:  %s\n", humanize.IBytes(bytes))
	fmt.Fprintf(t.out, "executor: %s\n", t.e)
	return nil
}

func (t *typed[V, I]) spmv(aPath, bPath string, scaled bool, alphaText, betaText string) error {
	a, err := t.readCsr(aPath)
	if err != nil {
		return err
	}
	defer a.Release()
	b := matrix.EmptyDense[V](t.e)
	if err := b.ReadFromMtx(bPath); err != nil {
		return err
	}
	defer b.Release()

	x, err := matrix.NewDense[V](t.e, matrix.Dim{Rows: a.Size().Rows, Cols: b.Size().Cols})
	if err != nil {
		return err
	}
	defer x.Release()

	if !scaled {
		err = a.Apply(b, x)
	} else {
		err = t.applyScaled(a, b, x, alphaText, betaText)
	}
	if err != nil {
		return err
	}
	return x.WriteMtx(t.out)
}

func (t *typed[V, I]) applyScaled(a *matrix.Csr[V, I], b, x *matrix.Dense[V], alphaText, betaText string) error {
	av, err := parseValue[V](alphaText)
	if err != nil {
		return errors.Wrap(err, "alpha")
	}
	bv, err := parseValue[V](betaText)
	if err != nil {
		return errors.Wrap(err, "beta")
	}
	alpha, err := matrix.Scalar(t.e, av)
	if err != nil {
		return err
	}
	defer alpha.Release()
	beta, err := matrix.Scalar(t.e, bv)
	if err != nil {
		return err
	}
	defer beta.Release()
	return a.ApplyScaled(alpha, b, beta, x)
}

func (t *typed[V, I]) convert(path, to string) error {
	a, err := t.readCsr(path)
	if err != nil {
		return err
	}
	defer a.Release()

	switch to {
	case "dense":
		d := matrix.EmptyDense[V](t.e)
		if err := a.MoveToDense(d); err != nil {
			return err
		}
		defer d.Release()
		rows, err := d.ToRows()
		if err != nil {
			return err
		}
		for _, row := range rows {
			fields := make([]string, len(row))
			for j, v := range row {
				fields[j] = mtx.FormatValue(v)
			}
			fmt.Fprintln(t.out, strings.Join(fields, " "))
		}
	case "coo":
		c := matrix.EmptyCoo[V, I](t.e)
		if err := a.MoveToCoo(c); err != nil {
			return err
		}
		defer c.Release()
		fmt.Fprintf(t.out, "%s\n", c)
		rows, cols, vals := c.RowIdxs(), c.ColIdxs(), c.Values()
		for k := range vals {
			fmt.Fprintf(t.out, "%d %d %s\n", rows[k], cols[k], mtx.FormatValue(vals[k]))
		}
	default:
		fmt.Fprintf(t.out, "%s\n", a)
		fmt.Fprintf(t.out, "row_ptrs: %v\n", a.RowPtrs())
		fmt.Fprintf(t.out, "col_idxs: %v\n", a.ColIdxs())
		vals := make([]string, len(a.Values()))
		for k, v := range a.Values() {
			vals[k] = mtx.FormatValue(v)
		}
		fmt.Fprintf(t.out, "values: [%s]\n", strings.Join(vals, " "))
	}
	return nil
}

func (t *typed[V, I]) transpose(path string, conj bool) error {
	a, err := t.readCsr(path)
	if err != nil {
		return err
	}
	defer a.Release()
	var tr *matrix.Csr[V, I]
	if conj {
		tr, err = a.ConjTranspose()
	} else {
		tr, err = a.Transpose()
	}
	if err != nil {
		return err
	}
	defer tr.Release()
	return tr.WriteMtx(t.out)
}

func (t *typed[V, I]) kernels() []matrix.KernelInfo {
	return matrix.Kernels[V, I]()
}

// parseValue accepts a real number or a complex literal such as (1+2i).
// Real value types reject a nonzero imaginary part.
func parseValue[V matrix.Value](s string) (V, error) {
	var zero V
	c, err := strconv.ParseComplex(strings.TrimSpace(s), 128)
	if err != nil {
		return zero, errors.Wrapf(err, "invalid value %q", s)
	}
	switch any(zero).(type) {
	case float32:
		if imag(c) != 0 {
			return zero, errors.Newf("value %q is complex", s)
		}
		return any(float32(real(c))).(V), nil
	case float64:
		if imag(c) != 0 {
			return zero, errors.Newf("value %q is complex", s)
		}
		return any(real(c)).(V), nil
	case complex64:
		return any(complex64(c)).(V), nil
	default:
		return any(c).(V), nil
	}
}
