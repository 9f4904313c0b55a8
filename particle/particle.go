// Package particle defines the hooks a particle filter is assembled from
// together with their default implementations. Particles are stored in the
// rows of a matrix: one row per particle, one column per state component.
package particle

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CreateFunc fills particles pt with initial draws parametrized by param
type CreateFunc func(pt *mat.Dense, param []float64, src rand.Source) error

// MotionFunc propagates particles pt in place given control u,
// process noise q and time step dt
type MotionFunc func(pt *mat.Dense, u, q []float64, dt float64, src rand.Source)

// ObserveFunc returns the measurement expected from particle p for landmark lm
// using the first pd particle components as position
type ObserveFunc func(p, lm []float64, pd int) []float64

// WeightFloor is added to every particle weight before normalization
const WeightFloor = 1e-32

// CreateUniform draws every component i uniformly from [param[2i], param[2i+1]).
// It returns error if param does not hold a range for every component.
func CreateUniform(pt *mat.Dense, param []float64, src rand.Source) error {
	rows, cols := pt.Dims()
	if len(param) != 2*cols {
		return fmt.Errorf("invalid uniform parameter count: %d", len(param))
	}

	for c := 0; c < cols; c++ {
		lo, hi := param[2*c], param[2*c+1]
		if hi < lo {
			return fmt.Errorf("invalid range for component %d: [%f, %f]", c, lo, hi)
		}

		u := distuv.Uniform{Min: lo, Max: hi, Src: src}
		for r := 0; r < rows; r++ {
			pt.Set(r, c, u.Rand())
		}
	}

	return nil
}

// CreateGaussian draws every component i from a normal distribution
// with mean param[2i] and standard deviation param[2i+1].
// It returns error if param does not hold both for every component.
func CreateGaussian(pt *mat.Dense, param []float64, src rand.Source) error {
	rows, cols := pt.Dims()
	if len(param) != 2*cols {
		return fmt.Errorf("invalid gaussian parameter count: %d", len(param))
	}

	for c := 0; c < cols; c++ {
		mu, sigma := param[2*c], param[2*c+1]
		if sigma < 0 {
			return fmt.Errorf("invalid standard deviation for component %d: %f", c, sigma)
		}

		n := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
		for r := 0; r < rows; r++ {
			pt.Set(r, c, n.Rand())
		}
	}

	return nil
}

// Identity leaves the particles unchanged.
func Identity(pt *mat.Dense, u, q []float64, dt float64, src rand.Source) {}

// MoveDiffDrive moves differential drive robots with state (x, y, heading)
// given control u = (speed, angular velocity) and noise q holding standard
// deviations of (angular velocity, speed). Heading is kept in [0, 2*pi).
func MoveDiffDrive(pt *mat.Dense, u, q []float64, dt float64, src rand.Source) {
	n := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	rows, _ := pt.Dims()

	for r := 0; r < rows; r++ {
		heading := pt.At(r, 2) + u[1]*dt + n.Rand()*q[0]
		heading = WrapHeading(heading)

		dist := u[0]*dt + n.Rand()*q[1]
		pt.Set(r, 0, pt.At(r, 0)+math.Cos(heading)*dist)
		pt.Set(r, 1, pt.At(r, 1)+math.Sin(heading)*dist)
		pt.Set(r, 2, heading)
	}
}

// MoveLinear advances the first component by dt and perturbs the second
// with zero mean Gaussian noise of standard deviation q[0].
func MoveLinear(pt *mat.Dense, u, q []float64, dt float64, src rand.Source) {
	n := distuv.Normal{Mu: 0, Sigma: q[0], Src: src}
	rows, _ := pt.Dims()

	for r := 0; r < rows; r++ {
		pt.Set(r, 0, pt.At(r, 0)+dt)
		pt.Set(r, 1, pt.At(r, 1)+n.Rand())
	}
}

// RangeObserve returns the Euclidean distance between the first pd
// components of particle p and landmark lm.
func RangeObserve(p, lm []float64, pd int) []float64 {
	return []float64{floats.Distance(p[:pd], lm[:pd], 2)}
}

// WrapHeading wraps angle a into [0, 2*pi).
func WrapHeading(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}

	return a
}

// Weight returns the weight factor of a predicted measurement h given the
// measurement z and noise r: the product over components c of the normal
// density of z[c] around h[c] with standard deviation r[c], divided by r[c].
func Weight(h, z, r []float64) float64 {
	w := 1.0
	for c := range h {
		n := distuv.Normal{Mu: h[c], Sigma: r[c]}
		w *= n.Prob(z[c]) / r[c]
	}

	return w
}
