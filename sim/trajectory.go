package sim

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Segment is a part of a trajectory flown with constant acceleration Acc for Steps steps.
type Segment struct {
	Steps int
	Acc   []float64
}

// Kinematic generates a point mass trajectory starting at position x0 with velocity v0
// sampled every dt through the given segments. It returns the positions and the velocities
// after every step, one step per row.
// It returns error if x0 and v0 differ in length or a segment is invalid.
func Kinematic(x0, v0 []float64, dt float64, segs ...Segment) (pos, vel *mat.Dense, err error) {
	dim := len(x0)
	if dim == 0 || len(v0) != dim {
		return nil, nil, fmt.Errorf("invalid initial condition dimensions: %d, %d", len(x0), len(v0))
	}

	steps := 0
	for _, s := range segs {
		if s.Steps <= 0 {
			return nil, nil, fmt.Errorf("invalid segment length: %d", s.Steps)
		}
		if s.Acc != nil && len(s.Acc) != dim {
			return nil, nil, fmt.Errorf("invalid segment acceleration dimension: %d", len(s.Acc))
		}
		steps += s.Steps
	}

	if steps == 0 {
		return nil, nil, fmt.Errorf("empty trajectory")
	}

	pos = mat.NewDense(steps, dim, nil)
	vel = mat.NewDense(steps, dim, nil)

	p := append([]float64(nil), x0...)
	v := append([]float64(nil), v0...)

	row := 0
	for _, s := range segs {
		for k := 0; k < s.Steps; k++ {
			for d := 0; d < dim; d++ {
				a := 0.0
				if s.Acc != nil {
					a = s.Acc[d]
				}
				p[d] += v[d]*dt + 0.5*a*dt*dt
				v[d] += a * dt
			}
			pos.SetRow(row, p)
			vel.SetRow(row, v)
			row++
		}
	}

	return pos, vel, nil
}

// ConstantVelocity generates steps positions of a point moving from x0 with velocity v0.
func ConstantVelocity(x0, v0 []float64, dt float64, steps int) (*mat.Dense, error) {
	pos, _, err := Kinematic(x0, v0, dt, Segment{Steps: steps})
	return pos, err
}

// Measure returns a copy of truth with zero mean Gaussian noise of standard deviation std
// added to every element. The noise is reproducible for a given seed.
func Measure(truth mat.Matrix, std float64, seed uint64) *mat.Dense {
	noise := distuv.Normal{
		Mu:    0,
		Sigma: std,
		Src:   rand.NewSource(seed),
	}

	r, c := truth.Dims()
	z := mat.NewDense(r, c, nil)
	z.Apply(func(i, j int, v float64) float64 {
		return v + noise.Rand()
	}, truth)

	return z
}
