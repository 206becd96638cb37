// Package matrix wraps the sparse LU solver for the linear systems of the
// implicit integrators. Indices are 1-based.
package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/mat"
)

type CircuitMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	solution []float64
	config   *sparse.Configuration
}

func NewMatrix(size int) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		Translate:      false,
		ModifiedNodal:  false,
		TiesMultiplier: 5,
		PrinterWidth:   140,
		Annotate:       0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
		config:   config,
	}, nil
}

// SetupElements creates the diagonal so every row has a structural pivot.
func (m *CircuitMatrix) SetupElements() {
	for i := 1; i <= m.Size; i++ {
		m.matrix.GetElement(int64(i), int64(i))
	}
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) error {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return fmt.Errorf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
	return nil
}

// SetRHS replaces the right-hand side with a 0-based vector.
func (m *CircuitMatrix) SetRHS(values []float64) error {
	if len(values) != m.Size {
		return fmt.Errorf("RHS length %d for size %d", len(values), m.Size)
	}
	copy(m.rhs[1:], values)
	return nil
}

// LoadDense stamps scale*I + a into the matrix.
func (m *CircuitMatrix) LoadDense(scale float64, a mat.Matrix) error {
	r, c := a.Dims()
	if r != m.Size || c != m.Size {
		return fmt.Errorf("dense matrix %dx%d for size %d", r, c, m.Size)
	}
	m.SetupElements()
	for i := 1; i <= r; i++ {
		if err := m.AddElement(i, i, scale); err != nil {
			return err
		}
		for j := 1; j <= c; j++ {
			if v := a.At(i-1, j-1); v != 0 {
				if err := m.AddElement(i, j, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Factor orders and factors the matrix on first use; later calls keep the
// factorization.
func (m *CircuitMatrix) Factor() error {
	if m.matrix.Factored {
		return nil
	}
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}
	return nil
}

func (m *CircuitMatrix) Solve() error {
	if err := m.Factor(); err != nil {
		return err
	}

	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}
	m.solution = solution
	return nil
}

// Solution returns the 1-based solution vector of the last Solve.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
