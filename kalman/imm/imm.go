// Package imm implements the Interacting Multiple Model estimator which runs
// a bank of Kalman-type filters, one per motion mode, and blends their estimates
// by the posterior mode probabilities.
package imm

import (
	"fmt"

	"github.com/milosgajdos/go-physim/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IMM holds the mode probabilities and the mixing state of n filters of dimension dimX
type IMM struct {
	// Mu are mode probabilities
	Mu []float64
	// M is mode transition matrix: M[i,j] is probability of switching from mode i to j
	M *mat.Dense
	// Omega are mixing probabilities
	Omega *mat.Dense
	// Cbar is the mode probability normalizer M' * Mu
	Cbar []float64
	// L are measurement likelihoods of the last update, one per filter
	L []float64
	// FX are filter state means
	FX []*mat.VecDense
	// FP are filter state covariances
	FP []*mat.Dense
	// X is mixed state mean
	X *mat.VecDense
	// P is mixed state covariance
	P *mat.Dense
}

// New creates new IMM with initial mode probabilities mu0, mode transition matrix m
// and filter state dimension dimX and returns it. Mode probabilities are normalized.
// It returns error if the dimensions are inconsistent or if mu0 is not a valid distribution.
func New(mu0 []float64, m *mat.Dense, dimX int) (*IMM, error) {
	n := len(mu0)
	if n == 0 {
		return nil, fmt.Errorf("empty mode probabilities")
	}

	if r, c := m.Dims(); r != n || c != n {
		return nil, fmt.Errorf("invalid transition matrix dimensions: [%d x %d]", r, c)
	}

	if dimX <= 0 {
		return nil, fmt.Errorf("invalid state dimension: %d", dimX)
	}

	for _, p := range mu0 {
		if p < 0 {
			return nil, fmt.Errorf("negative mode probability: %f", p)
		}
	}

	sum := floats.Sum(mu0)
	if sum <= 0 {
		return nil, fmt.Errorf("invalid mode probabilities: %v", mu0)
	}

	mu := make([]float64, n)
	floats.ScaleTo(mu, 1/sum, mu0)

	fx := make([]*mat.VecDense, n)
	fp := make([]*mat.Dense, n)
	l := make([]float64, n)
	for i := range fx {
		fx[i] = mat.NewVecDense(dimX, nil)
		fp[i] = matrix.Eye(dimX)
		l[i] = 1.0
	}

	imm := &IMM{
		Mu:    mu,
		M:     mat.DenseCopyOf(m),
		Omega: mat.NewDense(n, n, nil),
		Cbar:  make([]float64, n),
		L:     l,
		FX:    fx,
		FP:    fp,
		X:     mat.NewVecDense(dimX, nil),
		P:     mat.NewDense(dimX, dimX, nil),
	}
	imm.mixing()

	return imm, nil
}

// Modes returns the number of modes.
func (imm *IMM) Modes() int {
	return len(imm.Mu)
}

// Predict replaces FX and FP with the mixed initial conditions of every filter:
//
//	x_j = sum_i Omega[i,j] * x_i
//	P_j = sum_i Omega[i,j] * ((x_i - x_j)(x_i - x_j)' + P_i)
func (imm *IMM) Predict() {
	n := imm.Modes()
	dimX := imm.X.Len()

	xs := make([]*mat.VecDense, n)
	ps := make([]*mat.Dense, n)

	for j := 0; j < n; j++ {
		x := mat.NewVecDense(dimX, nil)
		for i := 0; i < n; i++ {
			x.AddScaledVec(x, imm.Omega.At(i, j), imm.FX[i])
		}

		xs[j] = x
		ps[j] = spread(x, imm.FX, imm.FP, mat.Col(nil, j, imm.Omega))
	}

	for j := 0; j < n; j++ {
		imm.FX[j].CopyVec(xs[j])
		imm.FP[j].Copy(ps[j])
	}
}

// Update recomputes mode probabilities from the likelihoods in L,
// refreshes the mixing probabilities and the mixed estimate.
// It returns error if all the mode probabilities vanish.
func (imm *IMM) Update() error {
	mu := make([]float64, len(imm.Mu))
	floats.MulTo(mu, imm.L, imm.Cbar)

	sum := floats.Sum(mu)
	if sum <= 0 {
		return fmt.Errorf("degenerate mode probabilities: %v", mu)
	}
	floats.ScaleTo(imm.Mu, 1/sum, mu)

	imm.mixing()
	imm.Estimate()

	return nil
}

// Estimate computes the mixed estimate from FX and FP:
//
//	x = sum_i Mu[i] * x_i
//	P = sum_i Mu[i] * ((x_i - x)(x_i - x)' + P_i)
func (imm *IMM) Estimate() {
	imm.X.Zero()
	for i, x := range imm.FX {
		imm.X.AddScaledVec(imm.X, imm.Mu[i], x)
	}

	imm.P.Copy(spread(imm.X, imm.FX, imm.FP, imm.Mu))
}

// mixing computes Cbar = M' * Mu and Omega[i,j] = M[i,j] * Mu[i] / Cbar[j].
// Modes which can not be reached keep Mu as their mixing weights.
func (imm *IMM) mixing() {
	n := imm.Modes()

	cbar := mat.NewVecDense(n, imm.Cbar)
	cbar.MulVec(imm.M.T(), mat.NewVecDense(n, imm.Mu))

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			w := imm.Mu[i]
			if imm.Cbar[j] > 0 {
				w = imm.M.At(i, j) * imm.Mu[i] / imm.Cbar[j]
			}
			imm.Omega.Set(i, j, w)
		}
	}
}

// spread returns sum_i w[i] * ((xs[i] - x)(xs[i] - x)' + ps[i])
func spread(x mat.Vector, xs []*mat.VecDense, ps []*mat.Dense, w []float64) *mat.Dense {
	dimX := x.Len()
	p := mat.NewDense(dimX, dimX, nil)
	d := mat.NewVecDense(dimX, nil)

	for i := range xs {
		d.SubVec(xs[i], x)
		matrix.AddOuter(p, w[i], d)

		wp := &mat.Dense{}
		wp.Scale(w[i], ps[i])
		p.Add(p, wp)
	}

	return p
}
