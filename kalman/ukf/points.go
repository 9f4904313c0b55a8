package ukf

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualFunc returns the difference a - b of two state or measurement vectors.
type ResidualFunc func(a, b []float64) []float64

// AddFunc returns the sum x + dx of a state vector and a state increment.
type AddFunc func(x, dx []float64) []float64

// Residual is the arithmetic ResidualFunc.
func Residual(a, b []float64) []float64 {
	d := make([]float64, len(a))
	floats.SubTo(d, a, b)

	return d
}

// Add is the arithmetic AddFunc.
func Add(x, dx []float64) []float64 {
	s := make([]float64, len(x))
	floats.AddTo(s, x, dx)

	return s
}

// MerweScaled generates Van der Merwe's scaled sigma points
type MerweScaled struct {
	// N is state dimension
	N int
	// Alpha controls the spread of the sigma points
	Alpha float64
	// Beta incorporates prior knowledge of the distribution (2 is optimal for Gaussian)
	Beta float64
	// Kappa is secondary scaling parameter
	Kappa float64
	// Wm are mean weights
	Wm []float64
	// Wc are covariance weights
	Wc []float64
	// Subtract computes state residuals when spreading the sigma points
	Subtract ResidualFunc
}

// NewMerweScaled creates new sigma point generator for n dimensional states and returns it.
// It returns error if n is not positive or alpha is not positive.
func NewMerweScaled(n int, alpha, beta, kappa float64) (*MerweScaled, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid sigma point dimension: %d", n)
	}

	if alpha <= 0 {
		return nil, fmt.Errorf("invalid alpha: %f", alpha)
	}

	m := &MerweScaled{
		N:        n,
		Alpha:    alpha,
		Beta:     beta,
		Kappa:    kappa,
		Subtract: Residual,
	}

	if c := float64(n) + m.Lambda(); c == 0 {
		return nil, fmt.Errorf("invalid sigma point scaling: n + lambda = %f", c)
	}

	m.weights()

	return m, nil
}

// NumSigmas returns the number of sigma points: 2N+1.
func (m *MerweScaled) NumSigmas() int {
	return 2*m.N + 1
}

// Lambda returns the scaling parameter alpha^2 * (N + kappa) - N.
func (m *MerweScaled) Lambda() float64 {
	n := float64(m.N)
	return m.Alpha*m.Alpha*(n+m.Kappa) - n
}

func (m *MerweScaled) weights() {
	n := float64(m.N)
	lambda := m.Lambda()
	g := m.NumSigmas()

	w := 1 / (2 * (n + lambda))
	m.Wm = make([]float64, g)
	m.Wc = make([]float64, g)
	for i := range m.Wm {
		m.Wm[i] = w
		m.Wc[i] = w
	}

	m.Wm[0] = lambda / (n + lambda)
	m.Wc[0] = lambda/(n+lambda) + (1 - m.Alpha*m.Alpha + m.Beta)
}

// SigmaPoints returns 2N+1 sigma points for the distribution with mean x and covariance P,
// one sigma point per row. Row 0 is x, rows 1..N are x + U[k] and rows N+1..2N are x - U[k],
// where U is the upper triangular Cholesky factor of (N + lambda) * P.
// It returns error if x or P have invalid dimensions or if (N + lambda) * P is not positive definite.
func (m *MerweScaled) SigmaPoints(x mat.Vector, p mat.Matrix) (*mat.Dense, error) {
	if x.Len() != m.N {
		return nil, fmt.Errorf("invalid state dimension: %d", x.Len())
	}

	if r, c := p.Dims(); r != m.N || c != m.N {
		return nil, fmt.Errorf("invalid covariance dimensions: [%d x %d]", r, c)
	}

	scale := float64(m.N) + m.Lambda()
	sp := mat.NewSymDense(m.N, nil)
	for i := 0; i < m.N; i++ {
		for j := i; j < m.N; j++ {
			sp.SetSym(i, j, 0.5*scale*(p.At(i, j)+p.At(j, i)))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sp); !ok {
		return nil, fmt.Errorf("failed to factorize sigma point covariance")
	}

	u := &mat.TriDense{}
	chol.UTo(u)

	sub := m.Subtract
	if sub == nil {
		sub = Residual
	}

	xs := mat.Col(nil, 0, x)
	sigmas := mat.NewDense(m.NumSigmas(), m.N, nil)
	sigmas.SetRow(0, xs)

	row := make([]float64, m.N)
	for k := 0; k < m.N; k++ {
		mat.Row(row, k, u)
		sigmas.SetRow(m.N+k+1, sub(xs, row))
		floats.Scale(-1, row)
		sigmas.SetRow(k+1, sub(xs, row))
	}

	return sigmas, nil
}
