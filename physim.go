// Package physim provides numerical kernels for small physical simulations
// (lid-driven cavity flow, lattice-Boltzmann vortex shedding) and a family
// of Bayesian state estimators (Kalman, unscented Kalman, IMM and particle filters).
package physim

import "gonum.org/v1/gonum/mat"

// InitCond is initial state condition of a filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
