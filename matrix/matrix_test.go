// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/born-ml/linalg/exec"
	"github.com/born-ml/linalg/matrix"
	"github.com/cockroachdb/errors"
)

// TestLinOpInterface verifies that every matrix type is a LinOp.
func TestLinOpInterface(_ *testing.T) {
	var _ matrix.LinOp = (*matrix.Dense[float32])(nil)
	var _ matrix.LinOp = (*matrix.Csr[complex64, int64])(nil)
	var _ matrix.LinOp = (*matrix.Coo[float64, int32])(nil)
	var _ matrix.FromDense[float64] = (*matrix.Csr[float64, int32])(nil)
}

func TestPublicAPI(t *testing.T) {
	for _, kind := range []exec.Kind{exec.KindReference, exec.KindCPU} {
		e, err := exec.New(kind, exec.DefaultConfig())
		if err != nil {
			t.Fatalf("New(%s) failed: %v", kind, err)
		}

		a := matrix.EmptyCsr[float64, int32](e)
		if err := a.ReadMtx(strings.NewReader("2 2 2\n1 1 2\n2 2 3\n")); err != nil {
			t.Fatalf("ReadMtx failed: %v", err)
		}
		b, err := matrix.DenseFromRows(e, [][]float64{{1}, {1}})
		if err != nil {
			t.Fatal(err)
		}
		x, err := matrix.NewDense[float64](e, matrix.Dim{Rows: 2, Cols: 1})
		if err != nil {
			t.Fatal(err)
		}
		if err := a.Apply(b, x); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if x.At(0, 0) != 2 || x.At(1, 0) != 3 {
			t.Errorf("%s: x = [%v %v], want [2 3]", kind, x.At(0, 0), x.At(1, 0))
		}

		wrong, err := matrix.NewDense[float64](e, matrix.Dim{Rows: 3, Cols: 1})
		if err != nil {
			t.Fatal(err)
		}
		if err := a.Apply(wrong, x); !errors.Is(err, matrix.ErrDimensionMismatch) {
			t.Errorf("Apply with 3x1 b: got %v, want ErrDimensionMismatch", err)
		}
	}
}

func TestWebGPUUnavailableOrEmpty(t *testing.T) {
	gpu, err := exec.NewWebGPU(0, nil, exec.DefaultConfig())
	if err != nil {
		if !errors.Is(err, exec.ErrBackendUnavailable) {
			t.Fatalf("NewWebGPU: got %v, want ErrBackendUnavailable", err)
		}
		t.Skip("no WebGPU adapter")
	}
	defer gpu.Close()

	a := matrix.EmptyCsr[float32, int32](gpu)
	err = a.Apply(matrix.EmptyDense[float32](gpu), matrix.EmptyDense[float32](gpu))
	if !errors.Is(err, exec.ErrNotImplemented) {
		t.Errorf("Apply on WebGPU: got %v, want ErrNotImplemented", err)
	}
}

func ExampleCsr_Apply() {
	cpu := exec.NewCPU(exec.DefaultConfig())
	a, _ := matrix.CsrFromSlices(cpu, matrix.Dim{Rows: 2, Cols: 2},
		[]int32{0, 1, 2}, []int32{0, 1}, []float64{2, 3})
	b, _ := matrix.DenseFromRows(cpu, [][]float64{{1}, {1}})
	x, _ := matrix.NewDense[float64](cpu, matrix.Dim{Rows: 2, Cols: 1})

	if err := a.Apply(b, x); err != nil {
		fmt.Println(err)
		return
	}
	rows, _ := x.ToRows()
	fmt.Println(rows)
	// Output: [[2] [3]]
}

func ExampleDense_ConvertTo() {
	ref := exec.NewReference(exec.DefaultConfig())
	d, _ := matrix.DenseFromRows(ref, [][]float64{{0, 1}, {2, 0}})
	csr := matrix.EmptyCsr[float64, int64](ref)

	if err := d.ConvertTo(csr); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(csr, csr.RowPtrs(), csr.ColIdxs(), csr.Values())
	// Output: Csr[float64,int64](2x2, nnz=2) [0 1 2] [1 0] [1 2]
}
