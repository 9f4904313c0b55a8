package kalman

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-physim/matrix"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// MinLikelihood is the smallest likelihood reported by Likelihood.
const MinLikelihood = 0x1p-1022

// LogLikelihood returns the log density of residual y under N(0, S).
// It returns error if S is not positive definite.
func LogLikelihood(y mat.Vector, s mat.Matrix) (float64, error) {
	n := y.Len()
	dist, ok := distmv.NewNormal(make([]float64, n), matrix.Symmetrize(s), nil)
	if !ok {
		return 0, fmt.Errorf("invalid innovation covariance")
	}

	return dist.LogProb(mat.Col(nil, 0, y)), nil
}

// Likelihood returns the density of residual y under N(0, S) floored at MinLikelihood.
// It returns error if S is not positive definite.
func Likelihood(y mat.Vector, s mat.Matrix) (float64, error) {
	logLH, err := LogLikelihood(y, s)
	if err != nil {
		return 0, err
	}

	return math.Max(math.Exp(logLH), MinLikelihood), nil
}

// likelihood never fails: a degenerate S yields MinLikelihood.
func likelihood(y mat.Vector, s mat.Matrix) (logLH, lh float64) {
	logLH, err := LogLikelihood(y, s)
	if err != nil {
		return math.Log(MinLikelihood), MinLikelihood
	}

	return logLH, math.Max(math.Exp(logLH), MinLikelihood)
}

// NIS returns the normalized innovation squared y' * S^-1 * y.
// It returns +Inf if S is singular.
func NIS(y mat.Vector, s mat.Matrix) float64 {
	x := &mat.VecDense{}
	if err := x.SolveVec(s, y); err != nil {
		if c, ok := err.(mat.Condition); !ok || math.IsInf(float64(c), 1) {
			return math.Inf(1)
		}
	}

	return mat.Dot(y, x)
}
