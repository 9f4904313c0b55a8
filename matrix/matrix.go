// Package matrix provides small dense matrix helpers shared by the estimators.
package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// RowSums returns a slice containing m row sums.
// It panics if m is nil.
func RowSums(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sum := make([]float64, rows)

	for i := 0; i < rows; i++ {
		sum[i] = floats.Sum(m.RawRowView(i))
	}

	return sum
}

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// Eye returns n x n identity matrix.
func Eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1.0)
	}

	return m
}

// Outer returns the outer product a * b'.
func Outer(a, b mat.Vector) *mat.Dense {
	m := mat.NewDense(a.Len(), b.Len(), nil)
	m.Outer(1.0, a, b)

	return m
}

// AddOuter adds alpha * a * a' to dst in place.
func AddOuter(dst *mat.Dense, alpha float64, a mat.Vector) {
	n := a.Len()
	for i := 0; i < n; i++ {
		ai := alpha * a.AtVec(i)
		for j := 0; j < n; j++ {
			dst.Set(i, j, dst.At(i, j)+ai*a.AtVec(j))
		}
	}
}

// Symmetrize returns the symmetric part (m + m')/2 of the square matrix m.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	n, _ := m.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return s
}

// IsSymmetric reports whether the square matrix m is symmetric within tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if !scalar.EqualWithinAbsOrRel(m.At(i, j), m.At(j, i), tol, tol) {
				return false
			}
		}
	}

	return true
}

// BlockDiag returns a block diagonal matrix built from the square blocks.
func BlockDiag(blocks ...mat.Matrix) *mat.Dense {
	n := 0
	for _, b := range blocks {
		r, _ := b.Dims()
		n += r
	}

	m := mat.NewDense(n, n, nil)
	off := 0
	for _, b := range blocks {
		r, c := b.Dims()
		m.Slice(off, off+r, off, off+c).(*mat.Dense).Copy(b)
		off += r
	}

	return m
}
