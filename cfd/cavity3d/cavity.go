// Package cavity3d implements a three dimensional cavity flow solver.
// Fields have shape (Nx, Ny, Nz) and are indexed (i, j, k); the face k = Nz-1
// drifts with velocity (0.95, 0.15, 0) while the other five faces are at rest.
// Each step computes a tentative velocity, iterates the pressure Poisson equation
// until the correction falls below a threshold and projects the velocity.
package cavity3d

import (
	"fmt"
	"iter"
	"math"

	"github.com/milosgajdos/go-physim/array"
)

// Lid velocity of the face k = Nz-1.
const (
	LidU = 0.95
	LidV = 0.15
	LidW = 0.0
)

// Config configures the cavity solver
type Config struct {
	Nx int `yaml:"nx"`
	Ny int `yaml:"ny"`
	Nz int `yaml:"nz"`
	// Lm is the maximum number of pressure iterations per step
	Lm int `yaml:"lm"`
	// Re is Reynolds number
	Re float64 `yaml:"re"`
	// Dt is time step
	Dt float64 `yaml:"dt"`
	Dx float64 `yaml:"dx"`
	Dy float64 `yaml:"dy"`
	Dz float64 `yaml:"dz"`
	// Eps is the pressure convergence threshold
	Eps float64 `yaml:"eps"`
}

// Cavity is a 3D cavity flow solver
type Cavity struct {
	c          Config
	u, v, w    *array.Array
	ut, vt, wt *array.Array
	p, q, d    *array.Array
	// iters is the number of pressure iterations used by the last step
	iters int
	steps int
}

// New creates new solver with zero initial fields and returns it.
// It returns error if any grid dimension is smaller than 3 or the parameters are invalid.
func New(c Config) (*Cavity, error) {
	if c.Nx < 3 || c.Ny < 3 || c.Nz < 3 {
		return nil, fmt.Errorf("invalid grid dimensions: [%d x %d x %d]", c.Nx, c.Ny, c.Nz)
	}

	if c.Lm <= 0 {
		return nil, fmt.Errorf("invalid pressure iteration count: %d", c.Lm)
	}

	if c.Re <= 0 || c.Dt <= 0 || c.Dx <= 0 || c.Dy <= 0 || c.Dz <= 0 || c.Eps < 0 {
		return nil, fmt.Errorf("invalid config supplied: %+v", c)
	}

	f := func() *array.Array { return array.MustNew(c.Nx, c.Ny, c.Nz) }

	return &Cavity{
		c:  c,
		u:  f(),
		v:  f(),
		w:  f(),
		ut: f(),
		vt: f(),
		wt: f(),
		p:  f(),
		q:  f(),
		d:  f(),
	}, nil
}

// Step advances the flow by one time step and returns the (u, v, w) velocity fields.
// The returned arrays are owned by the solver and are overwritten by the next step.
func (c *Cavity) Step() (u, v, w *array.Array) {
	c.applyVelocityBC(c.u, c.v, c.w)
	c.applyVelocityBC(c.ut, c.vt, c.wt)
	c.tentative()
	c.source()
	c.solvePressure()
	c.project()
	c.steps++

	return c.u, c.v, c.w
}

// Next advances the flow by one time step and returns copies of the velocity fields.
func (c *Cavity) Next() (u, v, w *array.Array) {
	u, v, w = c.Step()
	return u.Clone(), v.Clone(), w.Clone()
}

// Velocity groups the three velocity components.
type Velocity struct {
	U, V, W *array.Array
}

// All returns an infinite sequence of velocity field copies.
func (c *Cavity) All() iter.Seq[Velocity] {
	return func(yield func(Velocity) bool) {
		for {
			u, v, w := c.Next()
			if !yield(Velocity{U: u, V: v, W: w}) {
				return
			}
		}
	}
}

// Pressure returns the pressure field of the last step.
func (c *Cavity) Pressure() *array.Array {
	return c.p
}

// Steps returns the number of completed steps.
func (c *Cavity) Steps() int {
	return c.steps
}

func (c *Cavity) idx(i, j, k int) int {
	return (i*c.c.Ny+j)*c.c.Nz + k
}

// applyVelocityBC zeroes five faces and sets the drifting face k = Nz-1 last.
func (c *Cavity) applyVelocityBC(ua, va, wa *array.Array) {
	nx, ny, nz := c.c.Nx, c.c.Ny, c.c.Nz
	u, v, w := ua.Data(), va.Data(), wa.Data()

	set := func(n int, uu, vv, ww float64) {
		u[n], v[n], w[n] = uu, vv, ww
	}

	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			set(c.idx(0, j, k), 0, 0, 0)
			set(c.idx(nx-1, j, k), 0, 0, 0)
		}
	}
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			set(c.idx(i, 0, k), 0, 0, 0)
			set(c.idx(i, ny-1, k), 0, 0, 0)
		}
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			set(c.idx(i, j, 0), 0, 0, 0)
			set(c.idx(i, j, nz-1), LidU, LidV, LidW)
		}
	}
}

// tentative computes V* = V + dt(-(V·∇)V + ΔV/Re) on the interior.
func (c *Cavity) tentative() {
	nx, ny, nz := c.c.Nx, c.c.Ny, c.c.Nz
	dx, dy, dz, dt, re := c.c.Dx, c.c.Dy, c.c.Dz, c.c.Dt, c.c.Re
	si, sj := ny*nz, nz
	u, v, w := c.u.Data(), c.v.Data(), c.w.Data()

	adv := func(f []float64, n int) float64 {
		return u[n]*(f[n+si]-f[n-si])/(2*dx) +
			v[n]*(f[n+sj]-f[n-sj])/(2*dy) +
			w[n]*(f[n+1]-f[n-1])/(2*dz)
	}
	lap := func(f []float64, n int) float64 {
		return (f[n+si]-2*f[n]+f[n-si])/(dx*dx) +
			(f[n+sj]-2*f[n]+f[n-sj])/(dy*dy) +
			(f[n+1]-2*f[n]+f[n-1])/(dz*dz)
	}

	ut, vt, wt := c.ut.Data(), c.vt.Data(), c.wt.Data()
	for i := 1; i < nx-1; i++ {
		for j := 1; j < ny-1; j++ {
			for k := 1; k < nz-1; k++ {
				n := c.idx(i, j, k)
				ut[n] = u[n] + dt*(-adv(u, n)+lap(u, n)/re)
				vt[n] = v[n] + dt*(-adv(v, n)+lap(v, n)/re)
				wt[n] = w[n] + dt*(-adv(w, n)+lap(w, n)/re)
			}
		}
	}
}

// divergence returns the centered divergence of (a, b, e) at n.
func (c *Cavity) divergence(a, b, e []float64, n int) float64 {
	si, sj := c.c.Ny*c.c.Nz, c.c.Nz
	return (a[n+si]-a[n-si])/(2*c.c.Dx) +
		(b[n+sj]-b[n-sj])/(2*c.c.Dy) +
		(e[n+1]-e[n-1])/(2*c.c.Dz)
}

// source stores div(V*)/dt in q on the interior.
func (c *Cavity) source() {
	ut, vt, wt, q := c.ut.Data(), c.vt.Data(), c.wt.Data(), c.q.Data()
	c.interior(func(n int) {
		q[n] = c.divergence(ut, vt, wt, n) / c.c.Dt
	})
}

func (c *Cavity) interior(fn func(n int)) {
	for i := 1; i < c.c.Nx-1; i++ {
		for j := 1; j < c.c.Ny-1; j++ {
			for k := 1; k < c.c.Nz-1; k++ {
				fn(c.idx(i, j, k))
			}
		}
	}
}

// solvePressure iterates the pressure equation at most Lm times and stops early
// once the squared norm of the correction drops to Eps·Nz.
func (c *Cavity) solvePressure() {
	dx2, dy2, dz2 := c.c.Dx*c.c.Dx, c.c.Dy*c.c.Dy, c.c.Dz*c.c.Dz
	coef := 0.5 * dx2 * dy2 * dz2 / (dy2*dz2 + dx2*dz2 + dx2*dy2)
	si, sj := c.c.Ny*c.c.Nz, c.c.Nz
	p, q, d := c.p.Data(), c.q.Data(), c.d.Data()
	tol := c.c.Eps * float64(c.c.Nz)

	c.iters = 0
	for l := 0; l < c.c.Lm; l++ {
		c.iters++
		c.applyPressureBC()

		c.interior(func(n int) {
			rhs := (p[n+si]+p[n-si])/dx2 + (p[n+sj]+p[n-sj])/dy2 + (p[n+1]+p[n-1])/dz2
			d[n] = (rhs-q[n])*coef - p[n]
		})

		norm := 0.0
		c.interior(func(n int) {
			p[n] += d[n]
			norm += d[n] * d[n]
		})

		if norm <= tol {
			break
		}
	}
}

// applyPressureBC copies neighbouring interior pressures onto all six faces.
func (c *Cavity) applyPressureBC() {
	nx, ny, nz := c.c.Nx, c.c.Ny, c.c.Nz
	p := c.p.Data()

	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			p[c.idx(0, j, k)] = p[c.idx(1, j, k)]
			p[c.idx(nx-1, j, k)] = p[c.idx(nx-2, j, k)]
		}
	}
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			p[c.idx(i, 0, k)] = p[c.idx(i, 1, k)]
			p[c.idx(i, ny-1, k)] = p[c.idx(i, ny-2, k)]
		}
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			p[c.idx(i, j, 0)] = p[c.idx(i, j, 1)]
			p[c.idx(i, j, nz-1)] = p[c.idx(i, j, nz-2)]
		}
	}
}

// project subtracts the pressure gradient from the tentative velocity on the interior.
func (c *Cavity) project() {
	si, sj := c.c.Ny*c.c.Nz, c.c.Nz
	dt := c.c.Dt
	p := c.p.Data()
	u, v, w := c.u.Data(), c.v.Data(), c.w.Data()
	ut, vt, wt := c.ut.Data(), c.vt.Data(), c.wt.Data()

	c.interior(func(n int) {
		u[n] = ut[n] - dt*(p[n+si]-p[n-si])/(2*c.c.Dx)
		v[n] = vt[n] - dt*(p[n+sj]-p[n-sj])/(2*c.c.Dy)
		w[n] = wt[n] - dt*(p[n+1]-p[n-1])/(2*c.c.Dz)
	})
}

// Divergence returns the largest absolute centered divergence of the velocity
// over the interior cells.
func (c *Cavity) Divergence() float64 {
	u, v, w := c.u.Data(), c.v.Data(), c.w.Data()
	m := 0.0
	c.interior(func(n int) {
		m = math.Max(m, math.Abs(c.divergence(u, v, w, n)))
	})

	return m
}
