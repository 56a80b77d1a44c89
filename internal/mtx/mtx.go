// Package mtx reads and writes the coordinate flavour of the Matrix Market
// exchange format.
//
// A stream is an optional banner
//
//	%%MatrixMarket matrix coordinate <real|integer|complex|pattern> general
//
// followed by any number of % comment or blank lines, a size line
// "rows cols nnz", and exactly nnz 1-indexed "row col value" lines whose
// rows never decrease. Entries are returned 0-indexed and in input order;
// zero values are kept.
package mtx

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/linalg/internal/scalar"
	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformed matches every ParseError.
	ErrMalformed = errors.New("mtx: malformed input")
	// ErrUnsupported is returned for valid banners this package cannot read,
	// such as array storage or symmetric matrices.
	ErrUnsupported = errors.New("mtx: unsupported matrix market variant")
)

// ParseError identifies the offending line of a rejected stream.
type ParseError struct {
	Line   int    // 1-based line number.
	Text   string // Line contents, empty at end of input.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("mtx: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("mtx: line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Is makes errors.Is(err, ErrMalformed) hold.
func (e *ParseError) Is(target error) bool { return target == ErrMalformed }

// Field is the value type declared by the banner.
type Field int

// Supported fields.
const (
	Real Field = iota
	Integer
	Complex
	Pattern
)

var fieldNames = map[string]Field{
	"real":    Real,
	"integer": Integer,
	"complex": Complex,
	"pattern": Pattern,
}

// String returns the banner spelling of f.
func (f Field) String() string {
	switch f {
	case Real:
		return "real"
	case Integer:
		return "integer"
	case Complex:
		return "complex"
	case Pattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Entry is one stored element.
type Entry[V scalar.Value, I scalar.Index] struct {
	Row, Col I
	Value    V
}

// Data is the content of one coordinate stream.
type Data[V scalar.Value, I scalar.Index] struct {
	Rows, Cols int
	Field      Field
	Entries    []Entry[V, I]
}

const banner = "%%matrixmarket"

// maxIndex returns the largest value representable in I.
func maxIndex[I scalar.Index]() int64 {
	var zero I
	switch any(zero).(type) {
	case int32:
		return math.MaxInt32
	default:
		return math.MaxInt64
	}
}

type reader struct {
	scanner *bufio.Scanner
	line    int
	text    string
}

// next advances to the next line that is neither blank nor a comment. It
// reports false at end of input.
func (r *reader) next() (bool, error) {
	for r.scanner.Scan() {
		r.line++
		r.text = r.scanner.Text()
		trimmed := strings.TrimSpace(r.text)
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			continue
		}
		return true, nil
	}
	r.line++
	r.text = ""
	return false, r.scanner.Err()
}

func (r *reader) fail(format string, args ...any) error {
	return &ParseError{Line: r.line, Text: strings.TrimSpace(r.text), Reason: fmt.Sprintf(format, args...)}
}

// Read parses a coordinate stream into entries of value type V and index
// type I.
func Read[V scalar.Value, I scalar.Index](in io.Reader) (*Data[V, I], error) {
	r := &reader{scanner: bufio.NewScanner(in)}
	data := &Data[V, I]{Field: Real}

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "mtx: read")
		}
		return nil, &ParseError{Line: 1, Reason: "missing size line"}
	}
	r.line = 1
	r.text = r.scanner.Text()
	first := strings.TrimSpace(r.text)
	haveSize := true
	if strings.HasPrefix(strings.ToLower(first), banner) {
		field, err := parseBanner(first)
		if err != nil {
			return nil, err
		}
		if field == Complex && !scalar.IsComplex[V]() {
			return nil, r.fail("complex field cannot be read as %s", scalar.TypeName[V]())
		}
		data.Field = field
		haveSize = false
	} else if first == "" || strings.HasPrefix(first, "%") {
		haveSize = false
	}
	if !haveSize {
		ok, err := r.next()
		if err != nil {
			return nil, errors.Wrap(err, "mtx: read")
		}
		if !ok {
			return nil, r.fail("missing size line")
		}
	}

	rows, cols, nnz, err := r.parseSize()
	if err != nil {
		return nil, err
	}
	// Row pointers need rows+1 slots and dense storage rows*cols elements.
	if rows == math.MaxInt || (rows != 0 && cols > math.MaxInt/rows) {
		return nil, r.fail("size %dx%d overflows int", rows, cols)
	}
	if limit := maxIndex[I](); int64(rows) > limit || int64(cols) > limit || int64(nnz) > limit {
		return nil, r.fail("size %dx%d with %d entries does not fit %s", rows, cols, nnz, scalar.TypeName[I]())
	}
	data.Rows, data.Cols = rows, cols
	if nnz > 0 {
		data.Entries = make([]Entry[V, I], 0, min(nnz, 1<<20))
	}

	prevRow := int64(-1)
	for len(data.Entries) < nnz {
		ok, err := r.next()
		if err != nil {
			return nil, errors.Wrap(err, "mtx: read")
		}
		if !ok {
			return nil, r.fail("truncated input: expected %d entries, found %d", nnz, len(data.Entries))
		}
		e, row, err := parseEntry[V, I](r, data)
		if err != nil {
			return nil, err
		}
		if row < prevRow {
			return nil, r.fail("row %d follows row %d", row+1, prevRow+1)
		}
		prevRow = row
		data.Entries = append(data.Entries, e)
	}

	ok, err := r.next()
	if err != nil {
		return nil, errors.Wrap(err, "mtx: read")
	}
	if ok {
		return nil, r.fail("more than %d entries", nnz)
	}
	return data, nil
}

// parseBanner validates the banner line and returns its field.
func parseBanner(line string) (Field, error) {
	tokens := strings.Fields(strings.ToLower(line))
	if len(tokens) != 5 || tokens[0] != banner || tokens[1] != "matrix" {
		return 0, &ParseError{Line: 1, Text: line, Reason: "invalid banner"}
	}
	if tokens[2] != "coordinate" {
		return 0, errors.Wrapf(ErrUnsupported, "storage %q", tokens[2])
	}
	field, ok := fieldNames[tokens[3]]
	if !ok {
		return 0, errors.Wrapf(ErrUnsupported, "field %q", tokens[3])
	}
	if tokens[4] != "general" {
		return 0, errors.Wrapf(ErrUnsupported, "symmetry %q", tokens[4])
	}
	return field, nil
}

// parseSize parses the "rows cols nnz" line.
func (r *reader) parseSize() (rows, cols, nnz int, err error) {
	tokens := strings.Fields(r.text)
	if len(tokens) != 3 {
		return 0, 0, 0, r.fail("size line needs rows, cols and nnz")
	}
	var dims [3]int
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return 0, 0, 0, r.fail("invalid size %q", tok)
		}
		dims[i] = n
	}
	return dims[0], dims[1], dims[2], nil
}

// parseEntry parses one triplet and returns it 0-indexed, with its row.
func parseEntry[V scalar.Value, I scalar.Index](r *reader, data *Data[V, I]) (Entry[V, I], int64, error) {
	var e Entry[V, I]
	tokens := strings.Fields(r.text)
	want := 3
	switch data.Field {
	case Pattern:
		want = 2
	case Complex:
		want = 4
	}
	if len(tokens) != want {
		return e, 0, r.fail("expected %d fields, found %d", want, len(tokens))
	}

	row, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil || row < 1 || row > int64(data.Rows) {
		return e, 0, r.fail("row index %s out of bounds [1, %d]", tokens[0], data.Rows)
	}
	col, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil || col < 1 || col > int64(data.Cols) {
		return e, 0, r.fail("column index %s out of bounds [1, %d]", tokens[1], data.Cols)
	}
	if row-1 > maxIndex[I]() || col-1 > maxIndex[I]() {
		return e, 0, r.fail("index does not fit %s", scalar.TypeName[I]())
	}
	e.Row, e.Col = I(row-1), I(col-1)

	switch data.Field {
	case Pattern:
		e.Value = scalar.One[V]()
	case Complex:
		re, err1 := strconv.ParseFloat(tokens[2], 64)
		im, err2 := strconv.ParseFloat(tokens[3], 64)
		if err1 != nil || err2 != nil {
			return e, 0, r.fail("invalid complex value")
		}
		e.Value = fromComplex[V](complex(re, im))
	default:
		v, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return e, 0, r.fail("invalid value %q", tokens[2])
		}
		e.Value = fromComplex[V](complex(v, 0))
	}
	return e, row - 1, nil
}

// fromComplex narrows c to V. Real types keep the real part.
func fromComplex[V scalar.Value](c complex128) V {
	var v V
	switch p := any(&v).(type) {
	case *float32:
		*p = float32(real(c))
	case *float64:
		*p = real(c)
	case *complex64:
		*p = complex64(c)
	case *complex128:
		*p = c
	}
	return v
}

// Write emits d as a general coordinate stream. Complex value types use the
// complex field, all others the real field.
func Write[V scalar.Value, I scalar.Index](out io.Writer, d *Data[V, I]) error {
	w := bufio.NewWriter(out)
	field := Real
	if scalar.IsComplex[V]() {
		field = Complex
	}
	fmt.Fprintf(w, "%%%%MatrixMarket matrix coordinate %s general\n", field)
	fmt.Fprintf(w, "%d %d %d\n", d.Rows, d.Cols, len(d.Entries))
	for _, e := range d.Entries {
		fmt.Fprintf(w, "%d %d %s\n", int64(e.Row)+1, int64(e.Col)+1, FormatValue(e.Value))
	}
	return errors.Wrap(w.Flush(), "mtx: write")
}

// FormatValue renders v the way Write does: the shortest representation
// that parses back exactly, with complex values as "re im".
func FormatValue[V scalar.Value](v V) string {
	switch x := any(v).(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case complex64:
		return strconv.FormatFloat(float64(real(x)), 'g', -1, 32) + " " +
			strconv.FormatFloat(float64(imag(x)), 'g', -1, 32)
	case complex128:
		return strconv.FormatFloat(real(x), 'g', -1, 64) + " " +
			strconv.FormatFloat(imag(x), 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
