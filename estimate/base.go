// Package estimate provides immutable posterior estimates returned by the filters.
package estimate

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-physim/matrix"
	"gonum.org/v1/gonum/mat"
)

// Base is a state estimate: posterior mean and covariance
type Base struct {
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// NewBase returns base estimate given val with zero covariance
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	return &Base{
		val: v,
		cov: mat.NewSymDense(v.Len(), nil),
	}, nil
}

// NewBaseWithCov returns base estimate given val and covariance cov.
// Any square matrix is accepted as cov; its symmetric part is stored.
// It returns error if val and cov dimensions do not match.
func NewBaseWithCov(val mat.Vector, cov mat.Matrix) (*Base, error) {
	rv := val.Len()
	rc, cc := cov.Dims()

	if rc != cc || rv != rc {
		return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", rv, rc, cc)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	return &Base{
		val: v,
		cov: matrix.Symmetrize(cov),
	}, nil
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}

// Std returns the standard deviations of the estimated components.
func (b *Base) Std() []float64 {
	std := make([]float64, b.val.Len())
	for i := range std {
		std[i] = math.Sqrt(math.Max(b.cov.At(i, i), 0))
	}

	return std
}

// String implements the Stringer interface.
func (b *Base) String() string {
	return fmt.Sprintf("Estimate{\nVal=%v\nCov=%v\n}",
		mat.Formatted(b.val.T(), mat.Squeeze()),
		mat.Formatted(b.cov, mat.Prefix("    "), mat.Squeeze()))
}
