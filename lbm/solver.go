package lbm

import (
	"errors"
	"fmt"

	"github.com/milosgajdos/go-physim/array"
)

// ErrZeroDensity is returned when a cell density vanishes and velocities can not be computed.
var ErrZeroDensity = errors.New("zero density cell")

// Config configures a Solver.
type Config struct {
	// Shape is the grid shape in array axis order; the last axis is streamwise
	Shape []int
	// Nu is the kinematic viscosity in lattice units
	Nu float64
	// U0 is the inflow speed along the streamwise axis
	U0 float64
	// Barrier lists barrier cells in array axis order
	Barrier [][]int
	// Workers is the number of goroutines used per step; values <= 1 run serially
	Workers int
}

// transfer is a single precomputed bounce-back assignment f[dst] = f[src].
type transfer struct {
	dst int
	src int
}

// Solver is a BGK lattice Boltzmann solver with bounce-back barriers
// and a steady equilibrium inflow at index 0 of the streamwise axis.
type Solver struct {
	lat     *Lattice
	shape   []int
	cells   int
	omega   float64
	workers int
	// f stores the distributions with shape [Q, shape...]
	f *array.Array
	// tmp is streaming scratch space with the same shape as f
	tmp *array.Array
	// rho is the density field
	rho *array.Array
	// vel stores one velocity component per axis
	vel []*array.Array
	// usqr caches |v|² per cell
	usqr []float64
	// bounce is the bounce-back table replayed every step
	bounce []transfer
	// inflow lists directions with non-zero streamwise component
	inflow []int
	// inflowSrc holds the inflow equilibrium of inflow[n] in every cell
	inflowSrc []*array.Array
	// inlet selects the cells of the inflow face
	inlet *array.Mask
}

// NewSolver creates a new solver for lattice l and returns it.
// All distributions are initialised to the equilibrium of a unit density flow
// moving with speed c.U0 along the streamwise axis.
// It returns error if the grid shape does not match the lattice dimension,
// if any barrier cell lies outside the grid or if the viscosity is not positive.
func NewSolver(l *Lattice, c Config) (*Solver, error) {
	d := l.Dim()
	if len(c.Shape) != d {
		return nil, fmt.Errorf("invalid grid rank: %d != %d", len(c.Shape), d)
	}

	cells := 1
	for _, n := range c.Shape {
		if n <= 0 {
			return nil, fmt.Errorf("invalid grid shape: %v", c.Shape)
		}
		cells *= n
	}

	if c.Nu <= 0 {
		return nil, fmt.Errorf("invalid viscosity: %v", c.Nu)
	}

	shape := append([]int{l.Q()}, c.Shape...)
	f, err := array.New(shape...)
	if err != nil {
		return nil, err
	}

	rho, err := array.New(c.Shape...)
	if err != nil {
		return nil, err
	}

	vel := make([]*array.Array, d)
	for a := range vel {
		vel[a] = array.MustNew(c.Shape...)
	}

	s := &Solver{
		lat:     l,
		shape:   append([]int(nil), c.Shape...),
		cells:   cells,
		omega:   Omega(c.Nu),
		workers: c.Workers,
		f:       f,
		tmp:     array.MustNew(shape...),
		rho:     rho,
		vel:     vel,
		usqr:    make([]float64, cells),
	}

	x := d - 1
	for i := 0; i < l.Q(); i++ {
		cu := float64(l.C[i][x]) * c.U0
		s.f.Slab(i).Fill(l.Equilibrium(i, 1, cu, c.U0*c.U0))

		if l.C[i][x] != 0 {
			s.inflow = append(s.inflow, i)
		}
	}

	for _, i := range s.inflow {
		src := array.MustNew(c.Shape...)
		src.Fill(l.Equilibrium(i, 1, float64(l.C[i][x])*c.U0, c.U0*c.U0))
		s.inflowSrc = append(s.inflowSrc, src)
	}

	if s.inlet, err = array.NewMask(c.Shape...); err != nil {
		return nil, err
	}
	in := s.inlet.Data()
	for cell := 0; cell < cells; cell += c.Shape[x] {
		in[cell] = true
	}

	if err := s.buildBounce(c.Barrier); err != nil {
		return nil, err
	}

	return s, nil
}

// buildBounce precomputes the bounce-back table: for every non-rest direction i
// and every barrier cell b whose neighbour b + c[opp(i)] lies inside the grid
// it records f[opp(i), neighbour] = f[i, b].
func (s *Solver) buildBounce(barrier [][]int) error {
	for _, b := range barrier {
		if !s.inside(b) {
			return fmt.Errorf("barrier cell outside grid: %v", b)
		}
	}

	nb := make([]int, len(s.shape))
	for i := 1; i < s.lat.Q(); i++ {
		o := s.lat.Opp[i]
		for _, b := range barrier {
			for a := range nb {
				nb[a] = b[a] + s.lat.C[o][a]
			}
			if !s.inside(nb) {
				continue
			}
			s.bounce = append(s.bounce, transfer{
				dst: s.f.Offset(append([]int{o}, nb...)...),
				src: s.f.Offset(append([]int{i}, b...)...),
			})
		}
	}

	return nil
}

func (s *Solver) inside(idx []int) bool {
	if len(idx) != len(s.shape) {
		return false
	}
	for a, i := range idx {
		if i < 0 || i >= s.shape[a] {
			return false
		}
	}

	return true
}

// Lattice returns the solver lattice.
func (s *Solver) Lattice() *Lattice {
	return s.lat
}

// Distributions returns the distribution array of shape [Q, grid...].
// The returned array is owned by the solver and changes on every step.
func (s *Solver) Distributions() *array.Array {
	return s.f
}

// Density returns the density field computed in the last step.
func (s *Solver) Density() *array.Array {
	return s.rho
}

// Velocity returns the velocity component along axis a computed in the last step.
func (s *Solver) Velocity(a int) *array.Array {
	return s.vel[a]
}

// Step advances the solver by one time step:
// streaming, bounce-back, macroscopic moments, BGK collision and inflow.
// It returns error if some cell density is zero.
func (s *Solver) Step() error {
	if err := ForEach(s.lat.Q(), s.workers, s.stream); err != nil {
		return err
	}

	data := s.f.Data()
	for _, t := range s.bounce {
		data[t.dst] = data[t.src]
	}

	if err := ForRange(s.cells, s.workers, s.moments); err != nil {
		return err
	}

	if err := ForEach(s.lat.Q(), s.workers, s.collide); err != nil {
		return err
	}

	return ForEach(len(s.inflow), s.workers, s.applyInflow)
}

// stream rolls the distribution slab of direction i by its velocity along every axis.
func (s *Solver) stream(i int) error {
	slab, tmp := s.f.Slab(i), s.tmp.Slab(i)
	for a, c := range s.lat.C[i] {
		if c == 0 {
			continue
		}
		if err := array.RollTo(tmp, slab, c, a); err != nil {
			return err
		}
		if err := slab.CopyFrom(tmp); err != nil {
			return err
		}
	}

	return nil
}

// moments computes density and velocity for cells in [lo, hi).
// Sums over directions start from zero and run in direction order.
func (s *Solver) moments(lo, hi int) error {
	data := s.f.Data()
	rho := s.rho.Data()
	q := s.lat.Q()

	for cell := lo; cell < hi; cell++ {
		r := 0.0
		for i := 0; i < q; i++ {
			r += data[i*s.cells+cell]
		}
		if r == 0 {
			return fmt.Errorf("%w at cell %d", ErrZeroDensity, cell)
		}
		rho[cell] = r

		usqr := 0.0
		for a, v := range s.vel {
			m := 0.0
			for i := 0; i < q; i++ {
				if c := s.lat.C[i][a]; c != 0 {
					m += float64(c) * data[i*s.cells+cell]
				}
			}
			m /= r
			v.Data()[cell] = m
			usqr += m * m
		}
		s.usqr[cell] = usqr
	}

	return nil
}

// collide relaxes direction i towards the local equilibrium.
func (s *Solver) collide(i int) error {
	fi := s.f.Slab(i).Data()
	rho := s.rho.Data()
	c := s.lat.C[i]

	for cell := range fi {
		cu := 0.0
		for a, v := range s.vel {
			if c[a] != 0 {
				cu += float64(c[a]) * v.Data()[cell]
			}
		}
		fi[cell] = (1-s.omega)*fi[cell] + s.omega*s.lat.Equilibrium(i, rho[cell], cu, s.usqr[cell])
	}

	return nil
}

// applyInflow resets the n-th inflow direction on the inlet face.
func (s *Solver) applyInflow(n int) error {
	_, err := array.MaskedCopy(s.f.Slab(s.inflow[n]), s.inlet, s.inflowSrc[n], s.inlet)

	return err
}

// Inlet returns the mask selecting the inflow face cells.
func (s *Solver) Inlet() *array.Mask {
	return s.inlet
}
