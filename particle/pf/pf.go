// Package pf implements a generic Sequential Monte Carlo (particle) filter
// assembled from the hooks defined in package particle.
// For more information about particle filters see:
// https://en.wikipedia.org/wiki/Particle_filter
package pf

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-physim/particle"
	"github.com/milosgajdos/go-physim/rand"
	"github.com/milosgajdos/matrix"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Config configures the particle filter dimensions
type Config struct {
	// PM is particle state dimension
	PM int `yaml:"pm"`
	// PC is control input dimension
	PC int `yaml:"pc"`
	// PG is number of particles
	PG int `yaml:"pg"`
	// PD is number of position components used by Estimate and observations
	PD int `yaml:"pd"`
	// PN is measurement dimension per landmark
	PN int `yaml:"pn"`
	// Dt is time step
	Dt float64 `yaml:"dt"`
}

// PF is particle filter
type PF struct {
	c Config
	// pt stores particles in rows
	pt *mat.Dense
	// pts is resampling scratch space
	pts *mat.Dense
	// wg stores particle weights
	wg []float64
	// u is control input
	u []float64
	// src is the source of randomness
	src xrand.Source

	// Q is process noise passed to Fx
	Q []float64
	// R is measurement noise standard deviation, one per measurement component
	R []float64
	// Create initializes particles
	Create particle.CreateFunc
	// Fx is motion model
	Fx particle.MotionFunc
	// Hx is measurement model
	Hx particle.ObserveFunc
	// Resampler draws particle indices from weights
	Resampler rand.ResampleFunc
}

// New creates new particle filter with uniform particle creation, identity motion,
// range observation and systematic resampling and returns it.
// It returns error if the config is invalid.
func New(c Config) (*PF, error) {
	if c.PM <= 0 || c.PG <= 0 || c.PN <= 0 {
		return nil, fmt.Errorf("invalid filter dimensions: %+v", c)
	}

	if c.PD <= 0 || c.PD > c.PM {
		return nil, fmt.Errorf("invalid position dimension: %d", c.PD)
	}

	if c.PC < 0 || c.Dt < 0 {
		return nil, fmt.Errorf("invalid config supplied: %+v", c)
	}

	r := make([]float64, c.PN)
	for i := range r {
		r[i] = 1.0
	}

	p := &PF{
		c:         c,
		pt:        mat.NewDense(c.PG, c.PM, nil),
		pts:       mat.NewDense(c.PG, c.PM, nil),
		wg:        make([]float64, c.PG),
		u:         make([]float64, c.PC),
		src:       rand.NewSource(0),
		Q:         make([]float64, max(c.PC, 1)),
		R:         r,
		Create:    particle.CreateUniform,
		Fx:        particle.Identity,
		Hx:        particle.RangeObserve,
		Resampler: rand.Systematic,
	}
	p.resetWeights()

	return p, nil
}

// Config returns filter config.
func (p *PF) Config() Config {
	return p.c
}

// SetU sets control input.
// It returns error if u has invalid dimension.
func (p *PF) SetU(u []float64) error {
	if len(u) != p.c.PC {
		return fmt.Errorf("invalid control dimension: %d", len(u))
	}
	copy(p.u, u)

	return nil
}

// SetRandomSeed reseeds the filter source of randomness.
func (p *PF) SetRandomSeed(seed uint64) {
	p.src = rand.NewSource(seed)
}

// CreateParticles draws new particles using param and resets the weights.
func (p *PF) CreateParticles(param []float64) error {
	if err := p.Create(p.pt, param, p.src); err != nil {
		return fmt.Errorf("failed to create particles: %w", err)
	}
	p.resetWeights()

	return nil
}

// Predict moves all particles with the motion model.
func (p *PF) Predict() {
	p.Fx(p.pt, p.u, p.Q, p.c.Dt, p.src)
}

// Update reweights the particles given landmark positions lms and measurements z,
// one row per landmark, and normalizes the weights.
// It returns error if lms and z have invalid dimensions.
func (p *PF) Update(lms, z mat.Matrix) error {
	lr, lc := lms.Dims()
	zr, zc := z.Dims()
	if lr != zr || lc < p.c.PD || zc != p.c.PN {
		return fmt.Errorf("invalid landmark [%d x %d] or measurement [%d x %d] dimensions", lr, lc, zr, zc)
	}

	lm := make([]float64, lc)
	zl := make([]float64, zc)
	for i := range p.wg {
		row := p.pt.RawRowView(i)
		for l := 0; l < lr; l++ {
			mat.Row(lm, l, lms)
			mat.Row(zl, l, z)
			h := p.Hx(row, lm, p.c.PD)
			p.wg[i] *= particle.Weight(h, zl, p.R)
		}
		p.wg[i] += particle.WeightFloor
	}

	floats.Scale(1/floats.Sum(p.wg), p.wg)

	return nil
}

// Neff returns the effective number of particles 1 / sum(w^2).
func (p *PF) Neff() float64 {
	return 1 / floats.Dot(p.wg, p.wg)
}

// Resample replaces the particles with a set drawn by the resampler
// and resets the weights to 1/PG.
func (p *PF) Resample() error {
	indices := p.Resampler(p.wg, p.src)
	if len(indices) != p.c.PG {
		return fmt.Errorf("invalid resampled particle count: %d", len(indices))
	}

	for i, idx := range indices {
		p.pts.SetRow(i, p.pt.RawRowView(idx))
	}
	p.pt, p.pts = p.pts, p.pt
	p.resetWeights()

	return nil
}

// Regularize perturbs the particles with Gaussian kernel noise scaled by alpha
// whose covariance is the particle covariance.
// If alpha is not positive the optimal value for Gaussian kernel is used.
// It returns error if the perturbations fail to be drawn.
func (p *PF) Regularize(alpha float64) error {
	cov, err := matrix.Cov(mat.DenseCopyOf(p.pt.T()), "cols")
	if err != nil {
		return fmt.Errorf("failed to calculate covariance matrix: %v", err)
	}

	m, err := rand.WithCovN(cov, p.c.PG, p.src)
	if err != nil {
		return fmt.Errorf("failed to draw random particle pertrubations: %v", err)
	}

	if alpha <= 0 {
		alpha = AlphaGauss(p.c.PM, p.c.PG)
	}
	m.Scale(alpha, m)

	p.pt.Add(p.pt, m.T())

	return nil
}

// Estimate returns weighted mean and variance of the PD position components.
func (p *PF) Estimate() (mean, variance []float64) {
	mean = make([]float64, p.c.PD)
	variance = make([]float64, p.c.PD)

	col := make([]float64, p.c.PG)
	for d := 0; d < p.c.PD; d++ {
		mat.Col(col, d, p.pt)
		mean[d], variance[d] = stat.PopMeanVariance(col, p.wg)
	}

	return mean, variance
}

// Weights returns a copy of particle weights.
func (p *PF) Weights() []float64 {
	return append([]float64(nil), p.wg...)
}

// Particles returns a copy of the particles, one per row.
func (p *PF) Particles() *mat.Dense {
	return mat.DenseCopyOf(p.pt)
}

// SetParticles copies pt into the filter particles and resets the weights.
// It returns error if pt has invalid dimensions.
func (p *PF) SetParticles(pt mat.Matrix) error {
	if r, c := pt.Dims(); r != p.c.PG || c != p.c.PM {
		return fmt.Errorf("invalid particle dimensions: [%d x %d]", r, c)
	}
	p.pt.Copy(pt)
	p.resetWeights()

	return nil
}

func (p *PF) resetWeights() {
	for i := range p.wg {
		p.wg[i] = 1 / float64(p.c.PG)
	}
}

// AlphaGauss computes optimal regulariation parameter for Gaussian kernel and returns it.
func AlphaGauss(r, c int) float64 {
	return math.Pow(4.0/(float64(c)*(float64(r)+2.0)), 1/(float64(r)+4.0))
}
