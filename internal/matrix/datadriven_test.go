package matrix

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/born-ml/linalg/internal/exec"
	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func renderCsr(m *Csr[float64, int32]) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "size: %s\n", m.Size())
	fmt.Fprintf(&sb, "nnz: %d\n", m.NumStoredElements())
	fmt.Fprintf(&sb, "row_ptrs: %v\n", m.RowPtrs())
	fmt.Fprintf(&sb, "col_idxs: %v\n", m.ColIdxs())
	fmt.Fprintf(&sb, "values: %v\n", m.Values())
	return sb.String()
}

func renderDense(d *Dense[float64]) (string, error) {
	rows, err := d.ToRows()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, row := range rows {
		fmt.Fprintln(&sb, row)
	}
	return sb.String(), nil
}

func parseRows(t *testing.T, input string) [][]float64 {
	var rows [][]float64
	for _, line := range strings.Split(strings.TrimSpace(input), "\n") {
		var row []float64
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			require.NoError(t, err)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// csrSession runs one command against the current matrix of an executor.
type csrSession struct {
	e   exec.Executor
	csr *Csr[float64, int32]
}

func (s *csrSession) run(t *testing.T, d *datadriven.TestData) (string, error) {
	switch d.Cmd {
	case "read-mtx":
		m := EmptyCsr[float64, int32](s.e)
		if err := m.ReadMtx(strings.NewReader(d.Input)); err != nil {
			return "", err
		}
		s.csr = m
		return renderCsr(m), nil

	case "from-dense":
		dense, err := DenseFromRows(s.e, parseRows(t, d.Input))
		if err != nil {
			return "", err
		}
		m := EmptyCsr[float64, int32](s.e)
		if err := dense.MoveTo(m); err != nil {
			return "", err
		}
		s.csr = m
		return renderCsr(m), nil

	case "transpose":
		tr, err := s.csr.Transpose()
		if err != nil {
			return "", err
		}
		return renderCsr(tr), nil

	case "to-dense":
		out := EmptyDense[float64](s.e)
		if err := s.csr.ConvertToDense(out); err != nil {
			return "", err
		}
		return renderDense(out)

	case "to-coo":
		coo := EmptyCoo[float64, int32](s.e)
		if err := s.csr.ConvertToCoo(coo); err != nil {
			return "", err
		}
		var sb strings.Builder
		for k := range coo.Values() {
			fmt.Fprintf(&sb, "(%d, %d) %v\n", coo.RowIdxs()[k], coo.ColIdxs()[k], coo.Values()[k])
		}
		return sb.String(), nil

	case "apply":
		b, err := DenseFromRows(s.e, parseRows(t, d.Input))
		if err != nil {
			return "", err
		}
		x, err := NewDense[float64](s.e, Dim{Rows: s.csr.Size().Rows, Cols: b.Size().Cols})
		if err != nil {
			return "", err
		}
		if err := s.csr.Apply(b, x); err != nil {
			return "", err
		}
		return renderDense(x)

	default:
		d.Fatalf(t, "unknown command %s", d.Cmd)
		return "", nil
	}
}

func TestCsrDataDriven(t *testing.T) {
	var sessions []*csrSession
	for _, e := range testExecutors() {
		sessions = append(sessions, &csrSession{e: e})
	}

	datadriven.RunTest(t, "testdata/csr", func(t *testing.T, d *datadriven.TestData) string {
		var outputs []string
		for _, s := range sessions {
			out, err := s.run(t, d)
			if err != nil {
				out = "error: " + err.Error() + "\n"
			}
			outputs = append(outputs, out)
		}
		for i, out := range outputs[1:] {
			require.Equal(t, outputs[0], out, "%s disagrees with %s", sessions[i+1].e, sessions[0].e)
		}
		return outputs[0]
	})
}
