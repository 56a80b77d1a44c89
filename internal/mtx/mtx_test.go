package mtx

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render[V scalar.Value, I scalar.Index](d *Data[V, I], err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d %s\n", d.Rows, d.Cols, d.Field)
	for _, e := range d.Entries {
		fmt.Fprintf(&sb, "%d %d %s\n", int64(e.Row)+1, int64(e.Col)+1, FormatValue(e.Value))
	}
	return sb.String()
}

func TestReadDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/read", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "read":
			value := "float64"
			if d.HasArg("value") {
				d.ScanArgs(t, "value", &value)
			}
			in := strings.NewReader(d.Input)
			switch value {
			case "float32":
				return render(Read[float32, int32](in))
			case "float64":
				return render(Read[float64, int32](in))
			case "complex64":
				return render(Read[complex64, int64](in))
			case "complex128":
				return render(Read[complex128, int64](in))
			default:
				d.Fatalf(t, "unknown value type %s", value)
			}
		default:
			d.Fatalf(t, "unknown command %s", d.Cmd)
		}
		return ""
	})
}

func TestReadErrorsMatchSentinels(t *testing.T) {
	_, err := Read[float64, int32](strings.NewReader("2 2 1\n3 1 1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "3 1 1", pe.Text)

	_, err = Read[float64, int32](strings.NewReader("%%MatrixMarket matrix array real general\n2 2\n"))
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.False(t, errors.Is(err, ErrMalformed))

	_, err = Read[float64, int32](strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestReadRejectsOversizedSizeLine(t *testing.T) {
	for _, in := range []string{
		"9223372036854775807 1 0\n",
		"1 9223372036854775807 0\n",
		"3037000500 3037000500 0\n",
		"2147483648 1 0\n",
		"1 2147483648 0\n",
	} {
		_, err := Read[float64, int32](strings.NewReader(in))
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrMalformed), in)

		var pe *ParseError
		require.True(t, errors.As(err, &pe), in)
		assert.Equal(t, 1, pe.Line, in)
	}

	d, err := Read[float64, int64](strings.NewReader("2147483648 2 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 2147483648, d.Rows)
}

func TestReadDropsNothing(t *testing.T) {
	d, err := Read[float64, int64](strings.NewReader("2 2 2\n1 1 5\n2 2 0"))
	require.NoError(t, err)
	assert.Equal(t, []Entry[float64, int64]{
		{Row: 0, Col: 0, Value: 5},
		{Row: 1, Col: 1, Value: 0},
	}, d.Entries)
}

func TestWriteRoundTrip(t *testing.T) {
	in := &Data[complex64, int32]{
		Rows: 3, Cols: 2,
		Entries: []Entry[complex64, int32]{
			{Row: 0, Col: 1, Value: complex(0.1, -2)},
			{Row: 2, Col: 0, Value: 7},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "%%MatrixMarket matrix coordinate complex general\n3 2 2\n"))

	out, err := Read[complex64, int32](&buf)
	require.NoError(t, err)
	assert.Equal(t, Complex, out.Field)
	assert.Equal(t, in.Entries, out.Entries)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, 2, out.Cols)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.1", FormatValue(float32(0.1)))
	assert.Equal(t, "0.1", FormatValue(0.1))
	assert.Equal(t, "1 -2", FormatValue(complex128(complex(1, -2))))
	assert.Equal(t, "1e+100", FormatValue(1e100))
}
