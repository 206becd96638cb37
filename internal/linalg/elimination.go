package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussJordan reduces m in place to reduced row-echelon form over the columns
// starting at startCol. Rows are scanned top-down from the current pivot row
// and the first entry above tol is taken as pivot. A column without a pivot
// candidate is left free. The returned map assigns each pivot column its row.
func GaussJordan(m *mat.Dense, startCol int, tol float64) map[int]int {
	pivots := make(map[int]int)
	rows, cols := Dims(m)
	pivotRow := 0

	for col := startCol; col < cols && pivotRow < rows; col++ {
		found := -1
		for r := pivotRow; r < rows; r++ {
			if math.Abs(m.At(r, col)) > tol {
				found = r
				break
			}
		}
		if found < 0 {
			continue
		}

		SwapRows(m, found, pivotRow)
		normalize(m, pivotRow, col)
		eliminate(m, pivotRow, col)

		pivots[col] = pivotRow
		pivotRow++
	}

	return pivots
}

// FullPivot reduces m in place using row and column exchanges, always taking
// the largest remaining entry as pivot. It returns the column order after the
// exchanges and the rank; order[:rank] are the pivot columns.
func FullPivot(m *mat.Dense, tol float64) (order []int, rank int) {
	rows, cols := Dims(m)
	order = make([]int, cols)
	for j := range order {
		order[j] = j
	}

	for k := 0; k < rows && k < cols; k++ {
		pi, pj, best := -1, -1, tol
		for i := k; i < rows; i++ {
			for j := k; j < cols; j++ {
				if v := math.Abs(m.At(i, j)); v > best {
					pi, pj, best = i, j, v
				}
			}
		}
		if pi < 0 {
			break
		}

		SwapRows(m, pi, k)
		SwapCols(m, pj, k)
		order[k], order[pj] = order[pj], order[k]

		normalize(m, k, k)
		eliminate(m, k, k)
	}

	// Pivot columns carry a unit diagonal after the reduction.
	for rank < rows && rank < cols && math.Abs(m.At(rank, rank)-1) < tol {
		rank++
	}
	return order, rank
}

func normalize(m *mat.Dense, row, col int) {
	r := m.RawRowView(row)
	p := r[col]
	for j := range r {
		r[j] /= p
	}
	r[col] = 1
}

func eliminate(m *mat.Dense, row, col int) {
	rows, _ := m.Dims()
	pr := m.RawRowView(row)
	for i := 0; i < rows; i++ {
		if i == row {
			continue
		}
		r := m.RawRowView(i)
		f := r[col]
		if f == 0 {
			continue
		}
		for j := range r {
			r[j] -= f * pr[j]
		}
		r[col] = 0
	}
}
