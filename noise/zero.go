package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Zero is a noise source of fixed dimension which always samples zero.
// It stands in for Gaussian noise in deterministic simulations.
type Zero struct {
	n int
}

// NewZero creates new zero noise of dimension n.
// It returns error if n is negative.
func NewZero(n int) (*Zero, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", n)
	}

	return &Zero{n: n}, nil
}

// Sample returns a zero vector.
func (z *Zero) Sample() mat.Vector {
	if z.n == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(z.n, nil)
}

// Cov returns a zero covariance matrix.
func (z *Zero) Cov() mat.Symmetric {
	if z.n == 0 {
		return &mat.SymDense{}
	}
	return mat.NewSymDense(z.n, nil)
}

// Mean returns a zero mean.
func (z *Zero) Mean() []float64 {
	return make([]float64, z.n)
}

// Reset does nothing.
func (z *Zero) Reset() error { return nil }

// String implements the Stringer interface.
func (z *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", z.Mean(), mat.Formatted(z.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
