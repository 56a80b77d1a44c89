package matrix

import (
	"fmt"

	"github.com/born-ml/linalg/internal/kernels"
	"github.com/cockroachdb/errors"
)

var (
	// ErrDimensionMismatch is returned when operand sizes are not
	// conformable. It is raised before anything is dispatched.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNotSupported is returned when an operand has a storage format or
	// value type an operation does not accept.
	ErrNotSupported = errors.New("matrix: operand type not supported")

	// ErrInvalidStructure is returned when raw storage handed to a
	// constructor violates the format invariants.
	ErrInvalidStructure = errors.New("matrix: invalid storage structure")

	// ErrDuplicateEntry is returned when a sparse row stores one column
	// twice and the operation needs unique positions, as dense conversion
	// does.
	ErrDuplicateEntry = kernels.ErrDuplicateEntry

	// ErrUnsortedRows is returned when coordinate storage must be grouped by
	// row but is not.
	ErrUnsortedRows = kernels.ErrUnsortedRows
)

// DimensionMismatchError names the offending operand pair.
type DimensionMismatchError struct {
	Op          string
	First       string
	FirstSize   Dim
	Second      string
	SecondSize  Dim
	Requirement string
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	if e.Second == "" {
		return fmt.Sprintf("matrix: %s: dimension mismatch: %s is %s, %s",
			e.Op, e.First, e.FirstSize, e.Requirement)
	}
	return fmt.Sprintf("matrix: %s: dimension mismatch: %s is %s, %s is %s, %s",
		e.Op, e.First, e.FirstSize, e.Second, e.SecondSize, e.Requirement)
}

// Is makes errors.Is(err, ErrDimensionMismatch) hold.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// checkConformant requires the columns of a to match the rows of b.
func checkConformant(op, a string, aSize Dim, b string, bSize Dim) error {
	if aSize.Cols != bSize.Rows {
		return &DimensionMismatchError{
			Op: op, First: a, FirstSize: aSize, Second: b, SecondSize: bSize,
			Requirement: fmt.Sprintf("columns of %s must equal rows of %s", a, b),
		}
	}
	return nil
}

// checkEqualRows requires a and b to have the same number of rows.
func checkEqualRows(op, a string, aSize Dim, b string, bSize Dim) error {
	if aSize.Rows != bSize.Rows {
		return &DimensionMismatchError{
			Op: op, First: a, FirstSize: aSize, Second: b, SecondSize: bSize,
			Requirement: fmt.Sprintf("rows of %s must equal rows of %s", a, b),
		}
	}
	return nil
}

// checkEqualCols requires a and b to have the same number of columns.
func checkEqualCols(op, a string, aSize Dim, b string, bSize Dim) error {
	if aSize.Cols != bSize.Cols {
		return &DimensionMismatchError{
			Op: op, First: a, FirstSize: aSize, Second: b, SecondSize: bSize,
			Requirement: fmt.Sprintf("columns of %s must equal columns of %s", a, b),
		}
	}
	return nil
}

// checkScalar requires a to be 1x1.
func checkScalar(op, a string, aSize Dim) error {
	if aSize != (Dim{Rows: 1, Cols: 1}) {
		return &DimensionMismatchError{
			Op: op, First: a, FirstSize: aSize,
			Requirement: "expected 1x1",
		}
	}
	return nil
}

// checkColumnFactors requires a to be 1x1 or 1 x cols.
func checkColumnFactors(op, a string, aSize Dim, cols int) error {
	if aSize.Rows != 1 || (aSize.Cols != 1 && aSize.Cols != cols) {
		return &DimensionMismatchError{
			Op: op, First: a, FirstSize: aSize,
			Requirement: fmt.Sprintf("expected 1x1 or 1x%d", cols),
		}
	}
	return nil
}

func checkSameSize(op, a string, aSize Dim, b string, bSize Dim) error {
	if err := checkEqualRows(op, a, aSize, b, bSize); err != nil {
		return err
	}
	return checkEqualCols(op, a, aSize, b, bSize)
}

func invalidStructure(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidStructure, format, args...)
}

func notSupported(op string, operand LinOp, want string) error {
	return errors.Wrapf(ErrNotSupported, "%s: got %s, want %s", op, operand, want)
}
