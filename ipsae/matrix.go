package ipsae

import "fmt"

// Matrix is a dense N x N matrix stored in row-major order. It holds both
// PAE values and pairwise distances.
type Matrix struct {
	N    int
	Data []float64
}

// NewMatrix returns an N x N matrix of zeros.
func NewMatrix(n int) *Matrix {
	return &Matrix{N: n, Data: make([]float64, n*n)}
}

// MatrixFromRows copies a slice of rows into a new Matrix. An error
// wrapping ErrShape is returned unless every row has exactly len(rows)
// columns.
func MatrixFromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	m := NewMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, Errorf(ErrShape, "build matrix",
				"row %d has %d columns but the matrix has %d rows",
				i, len(row), n)
		}
		copy(m.Data[i*n:(i+1)*n], row)
	}
	return m, nil
}

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

// Set sets entry (i, j) to v.
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.N+j] = v
}

// Rows returns the matrix as a freshly allocated slice of rows.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.N)
	for i := range rows {
		rows[i] = make([]float64, m.N)
		copy(rows[i], m.Data[i*m.N:(i+1)*m.N])
	}
	return rows
}

func (m *Matrix) check() error {
	if m.N < 0 || (m.N == 0 && len(m.Data) != 0) ||
		(m.N > 0 && (len(m.Data)%m.N != 0 || len(m.Data)/m.N != m.N)) {
		return Errorf(ErrShape, "check matrix",
			"%d values cannot fill a %dx%d matrix", len(m.Data), m.N, m.N)
	}
	return nil
}

func (m *Matrix) String() string {
	return fmt.Sprintf("%dx%d matrix", m.N, m.N)
}
