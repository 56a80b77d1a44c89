package matrix

import "fmt"

// Dim is the size of a matrix.
type Dim struct {
	Rows, Cols int
}

// String returns the size as "rowsxcols".
func (d Dim) String() string { return fmt.Sprintf("%dx%d", d.Rows, d.Cols) }

// Transposed returns the size with rows and columns swapped.
func (d Dim) Transposed() Dim { return Dim{Rows: d.Cols, Cols: d.Rows} }

// IsEmpty reports whether the matrix holds no elements.
func (d Dim) IsEmpty() bool { return d.Rows == 0 || d.Cols == 0 }
