package noise

import (
	"fmt"

	"github.com/milosgajdos/go-physim/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is gaussian noise
type Gaussian struct {
	// dist is a multivariate normal distribution
	dist *distmv.Normal
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov mat.Symmetric
	// seed seeds the noise source; zero seeds from the clock
	seed uint64
}

// NewGaussian creates new Gaussian noise with given mean and covariance
// seeded from the current time.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	return NewGaussianSeeded(mean, cov, 0)
}

// NewGaussianSeeded creates new Gaussian noise with given mean and covariance
// whose samples are reproducible for a non-zero seed.
// It returns error if mean and cov dimensions differ or cov is not positive definite.
func NewGaussianSeeded(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid noise dimensions: mean %d, cov %d", len(mean), cov.SymmetricDim())
	}

	dist, ok := newGaussianDist(mean, cov, seed)
	if !ok {
		return nil, fmt.Errorf("failed to create new Gaussian noise")
	}

	return &Gaussian{
		dist: dist,
		mean: mean,
		cov:  cov,
		seed: seed,
	}, nil
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	r := g.dist.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	return g.cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	return g.mean
}

// Reset restarts the noise source; seeded noise replays the same samples.
// It returns error if it fails to reset the noise.
func (g *Gaussian) Reset() error {
	dist, ok := newGaussianDist(g.mean, g.cov, g.seed)
	if !ok {
		return fmt.Errorf("failed to reset Gaussian noise")
	}
	g.dist = dist

	return nil
}

func newGaussianDist(mean []float64, cov mat.Symmetric, seed uint64) (*distmv.Normal, bool) {
	return distmv.NewNormal(mean, cov, rand.NewSource(seed))
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
