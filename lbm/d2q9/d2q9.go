// Package d2q9 implements a two dimensional D2Q9 lattice Boltzmann vortex solver.
// The grid is indexed (y, x) with x the streamwise axis; fluid enters through the
// column x = 0 and the flow is periodic in both directions otherwise.
package d2q9

import (
	"fmt"
	"iter"

	"github.com/milosgajdos/go-physim/array"
	"github.com/milosgajdos/go-physim/lbm"
)

// Config configures the D2Q9 solver
type Config struct {
	// Ny is the number of rows
	Ny int `yaml:"ny"`
	// Nx is the number of columns (streamwise)
	Nx int `yaml:"nx"`
	// Nu is kinematic viscosity in lattice units
	Nu float64 `yaml:"nu"`
	// U0 is the inflow speed
	U0 float64 `yaml:"u0"`
	// Barrier lists (y, x) barrier cells
	Barrier [][2]int `yaml:"barrier"`
	// Workers is the number of goroutines used per step
	Workers int `yaml:"workers"`
}

// Vortex is a D2Q9 BGK vortex solver
type Vortex struct {
	s    *lbm.Solver
	curl *array.Array
	// scratch for roll differences
	r1, r2 *array.Array
	steps  int
}

// New creates new D2Q9 solver and returns it.
// It returns error if the grid is empty or a barrier cell lies outside it.
func New(c Config) (*Vortex, error) {
	if c.Ny <= 0 || c.Nx <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: [%d x %d]", c.Ny, c.Nx)
	}

	barrier := make([][]int, len(c.Barrier))
	for i, b := range c.Barrier {
		barrier[i] = []int{b[0], b[1]}
	}

	s, err := lbm.NewSolver(lbm.D2Q9(), lbm.Config{
		Shape:   []int{c.Ny, c.Nx},
		Nu:      c.Nu,
		U0:      c.U0,
		Barrier: barrier,
		Workers: c.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &Vortex{
		s:    s,
		curl: array.MustNew(c.Ny, c.Nx),
		r1:   array.MustNew(c.Ny, c.Nx),
		r2:   array.MustNew(c.Ny, c.Nx),
	}, nil
}

// Step advances the solver by one step and returns the curl field.
// The returned array is owned by the solver and is overwritten by the next step.
func (v *Vortex) Step() (*array.Array, error) {
	if err := v.s.Step(); err != nil {
		return nil, err
	}
	v.steps++

	if err := v.computeCurl(); err != nil {
		return nil, err
	}

	return v.curl, nil
}

// Next advances the solver by one step and returns a copy of the curl field.
func (v *Vortex) Next() (*array.Array, error) {
	curl, err := v.Step()
	if err != nil {
		return nil, err
	}

	return curl.Clone(), nil
}

// All returns an infinite sequence of curl field copies.
// The sequence stops early only if a step fails.
func (v *Vortex) All() iter.Seq2[*array.Array, error] {
	return func(yield func(*array.Array, error) bool) {
		for {
			curl, err := v.Next()
			if !yield(curl, err) || err != nil {
				return
			}
		}
	}
}

// computeCurl stores dvy/dx - dvx/dy as roll differences without the 1/2 factor.
func (v *Vortex) computeCurl() error {
	vy, vx := v.s.Velocity(0), v.s.Velocity(1)

	// roll(vy, -1, 1) - roll(vy, 1, 1)
	if err := rollDiff(v.curl, vy, 1, v.r1, v.r2); err != nil {
		return err
	}
	// - roll(vx, -1, 0) + roll(vx, 1, 0)
	if err := rollDiff(v.r1, vx, 0, v.r1, v.r2); err != nil {
		return err
	}

	return array.Sub(v.curl, v.curl, v.r1)
}

// rollDiff stores roll(a, -1, axis) - roll(a, 1, axis) in dst using scratch arrays s1 and s2.
// dst may alias s1.
func rollDiff(dst, a *array.Array, axis int, s1, s2 *array.Array) error {
	if err := array.RollTo(s1, a, -1, axis); err != nil {
		return err
	}
	if err := array.RollTo(s2, a, 1, axis); err != nil {
		return err
	}

	return array.Sub(dst, s1, s2)
}

// Steps returns the number of completed steps.
func (v *Vortex) Steps() int {
	return v.steps
}

// Density returns the density field of the last step.
func (v *Vortex) Density() *array.Array {
	return v.s.Density()
}

// Velocity returns the (vy, vx) velocity fields of the last step.
func (v *Vortex) Velocity() (vy, vx *array.Array) {
	return v.s.Velocity(0), v.s.Velocity(1)
}

// Distributions returns the distribution array of shape [9, Ny, Nx].
func (v *Vortex) Distributions() *array.Array {
	return v.s.Distributions()
}
