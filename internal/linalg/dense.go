// Package linalg holds the dense row operations shared by the reduction
// stages. Matrices are gonum *mat.Dense values; a matrix with a zero
// dimension is represented by an empty mat.Dense.
package linalg

import (
	"gonum.org/v1/gonum/mat"
)

// NewDense returns a zeroed r x c matrix, or an empty matrix when either
// dimension is zero.
func NewDense(r, c int) *mat.Dense {
	if r <= 0 || c <= 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, nil)
}

// FromRows builds a matrix from row slices of equal length.
func FromRows(rows [][]float64, cols int) *mat.Dense {
	m := NewDense(len(rows), cols)
	if m.IsEmpty() {
		return m
	}
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return m
}

// Clone returns a deep copy of m.
func Clone(m *mat.Dense) *mat.Dense {
	if m == nil || m.IsEmpty() {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}

// Dims is m.Dims() that tolerates nil and empty matrices.
func Dims(m *mat.Dense) (int, int) {
	if m == nil || m.IsEmpty() {
		return 0, 0
	}
	return m.Dims()
}

// Row returns a copy of row i.
func Row(m *mat.Dense, i int) []float64 {
	_, c := m.Dims()
	return mat.Row(make([]float64, c), i, m)
}

// SwapRows exchanges rows i and j in place.
func SwapRows(m *mat.Dense, i, j int) {
	if i == j {
		return
	}
	ri := m.RawRowView(i)
	rj := m.RawRowView(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// SwapCols exchanges columns i and j in place.
func SwapCols(m *mat.Dense, i, j int) {
	if i == j {
		return
	}
	r, _ := m.Dims()
	for k := 0; k < r; k++ {
		a, b := m.At(k, i), m.At(k, j)
		m.Set(k, i, b)
		m.Set(k, j, a)
	}
}

// PermuteCols returns a new matrix whose column k is column order[k] of m.
func PermuteCols(m *mat.Dense, order []int) *mat.Dense {
	r, _ := Dims(m)
	out := NewDense(r, len(order))
	if out.IsEmpty() {
		return out
	}
	for k, src := range order {
		for i := 0; i < r; i++ {
			out.Set(i, k, m.At(i, src))
		}
	}
	return out
}

// AppendRows returns m with rows appended below it.
func AppendRows(m *mat.Dense, rows [][]float64) *mat.Dense {
	r, c := Dims(m)
	if len(rows) == 0 {
		return Clone(m)
	}
	if c == 0 {
		c = len(rows[0])
	}
	out := NewDense(r+len(rows), c)
	if out.IsEmpty() {
		return out
	}
	for i := 0; i < r; i++ {
		out.SetRow(i, m.RawRowView(i))
	}
	for i, row := range rows {
		out.SetRow(r+i, row)
	}
	return out
}

// Sub copies the block formed by the given rows and columns into a new matrix.
func Sub(m *mat.Dense, rows, cols []int) *mat.Dense {
	out := NewDense(len(rows), len(cols))
	if out.IsEmpty() {
		return out
	}
	for i, ri := range rows {
		for j, cj := range cols {
			out.Set(i, j, m.At(ri, cj))
		}
	}
	return out
}

// EqualApprox reports whether a and b have equal shape and entries within tol.
func EqualApprox(a, b *mat.Dense, tol float64) bool {
	ar, ac := Dims(a)
	br, bc := Dims(b)
	if ar != br || ac != bc {
		return false
	}
	if ar == 0 || ac == 0 {
		return true
	}
	return mat.EqualApprox(a, b, tol)
}
