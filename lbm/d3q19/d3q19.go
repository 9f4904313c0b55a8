// Package d3q19 implements a three dimensional D3Q19 lattice Boltzmann vortex solver.
// Internally fields are indexed (z, y, x) with x the streamwise axis;
// fluid enters through the plane x = 0.
package d3q19

import (
	"fmt"
	"iter"

	"github.com/milosgajdos/go-physim/array"
	"github.com/milosgajdos/go-physim/lbm"
	"gonum.org/v1/gonum/floats"
)

// Config configures the D3Q19 solver
type Config struct {
	Ny int `yaml:"ny"`
	Nx int `yaml:"nx"`
	Nz int `yaml:"nz"`
	// Nu is kinematic viscosity in lattice units
	Nu float64 `yaml:"nu"`
	// U0 is the inflow speed along x
	U0 float64 `yaml:"u0"`
	// Barrier lists (y, x, z) barrier cells
	Barrier [][3]int `yaml:"barrier"`
	// Workers is the number of goroutines used per step
	Workers int `yaml:"workers"`
}

// Curl holds the three vorticity components emitted by every step.
type Curl struct {
	Y *array.Array
	X *array.Array
	Z *array.Array
}

// Clone returns a deep copy of c.
func (c Curl) Clone() Curl {
	return Curl{Y: c.Y.Clone(), X: c.X.Clone(), Z: c.Z.Clone()}
}

// term is one signed roll of a velocity component
type term struct {
	sign  float64
	field int
	shift int
	axis  int
}

const (
	vz = iota
	vy
	vx
)

// The component formulas below are reproduced as-is; they are not the
// textbook curl: axis arguments are mixed within the x and z components.
var (
	curlY = []term{{1, vz, -1, 1}, {-1, vz, 1, 1}, {-1, vx, -1, 2}, {1, vx, 1, 2}}
	curlX = []term{{1, vy, -1, 1}, {-1, vy, 1, 2}, {-1, vz, -1, 0}, {1, vz, 1, 0}}
	curlZ = []term{{1, vy, -1, 2}, {-1, vy, 1, 1}, {-1, vx, -1, 0}, {1, vx, 1, 0}}
)

// Vortex is a D3Q19 BGK vortex solver
type Vortex struct {
	s       *lbm.Solver
	curl    Curl
	scratch *array.Array
	steps   int
}

// New creates new D3Q19 solver and returns it.
// It returns error if the grid is empty or a barrier cell lies outside it.
func New(c Config) (*Vortex, error) {
	if c.Ny <= 0 || c.Nx <= 0 || c.Nz <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: [%d x %d x %d]", c.Ny, c.Nx, c.Nz)
	}

	barrier := make([][]int, len(c.Barrier))
	for i, b := range c.Barrier {
		// (y, x, z) -> (z, y, x)
		barrier[i] = []int{b[2], b[0], b[1]}
	}

	s, err := lbm.NewSolver(lbm.D3Q19(), lbm.Config{
		Shape:   []int{c.Nz, c.Ny, c.Nx},
		Nu:      c.Nu,
		U0:      c.U0,
		Barrier: barrier,
		Workers: c.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &Vortex{
		s: s,
		curl: Curl{
			Y: array.MustNew(c.Nz, c.Ny, c.Nx),
			X: array.MustNew(c.Nz, c.Ny, c.Nx),
			Z: array.MustNew(c.Nz, c.Ny, c.Nx),
		},
		scratch: array.MustNew(c.Nz, c.Ny, c.Nx),
	}, nil
}

// Step advances the solver by one step and returns the (curl_y, curl_x, curl_z) fields.
// The returned arrays are owned by the solver and are overwritten by the next step.
func (v *Vortex) Step() (Curl, error) {
	if err := v.s.Step(); err != nil {
		return Curl{}, err
	}
	v.steps++

	for _, c := range []struct {
		dst   *array.Array
		terms []term
	}{
		{v.curl.Y, curlY},
		{v.curl.X, curlX},
		{v.curl.Z, curlZ},
	} {
		if err := v.combine(c.dst, c.terms); err != nil {
			return Curl{}, err
		}
	}

	return v.curl, nil
}

// Next advances the solver by one step and returns copies of the curl fields.
func (v *Vortex) Next() (Curl, error) {
	c, err := v.Step()
	if err != nil {
		return Curl{}, err
	}

	return c.Clone(), nil
}

// All returns an infinite sequence of curl field copies.
func (v *Vortex) All() iter.Seq2[Curl, error] {
	return func(yield func(Curl, error) bool) {
		for {
			c, err := v.Next()
			if !yield(c, err) || err != nil {
				return
			}
		}
	}
}

func (v *Vortex) combine(dst *array.Array, terms []term) error {
	dst.Fill(0)
	for _, t := range terms {
		if err := array.RollTo(v.scratch, v.s.Velocity(t.field), t.shift, t.axis); err != nil {
			return err
		}
		floats.AddScaled(dst.Data(), t.sign, v.scratch.Data())
	}

	return nil
}

// Steps returns the number of completed steps.
func (v *Vortex) Steps() int {
	return v.steps
}

// Density returns the density field of the last step, indexed (z, y, x).
func (v *Vortex) Density() *array.Array {
	return v.s.Density()
}

// Velocity returns the (vz, vy, vx) velocity fields of the last step.
func (v *Vortex) Velocity() (z, y, x *array.Array) {
	return v.s.Velocity(vz), v.s.Velocity(vy), v.s.Velocity(vx)
}
