// Package cavity2d implements a two dimensional lid-driven cavity flow solver:
// explicit finite differences for momentum and a Jacobi pressure Poisson solve
// (Chorin projection). Fields have shape (Ny, Nx), axis 0 is y and axis 1 is x;
// the lid is the row y = Ny-1 and moves with unit speed along x.
package cavity2d

import (
	"fmt"
	"iter"

	"github.com/milosgajdos/go-physim/array"
)

// Config configures the cavity solver
type Config struct {
	// Nx is the number of grid points along x
	Nx int `yaml:"nx"`
	// Ny is the number of grid points along y
	Ny int `yaml:"ny"`
	// Nit is the number of pressure Poisson sweeps per step
	Nit int `yaml:"nit"`
	// Rho is fluid density
	Rho float64 `yaml:"rho"`
	// Nu is kinematic viscosity
	Nu float64 `yaml:"nu"`
	// Dt is time step
	Dt float64 `yaml:"dt"`
	// Dx is grid spacing along x
	Dx float64 `yaml:"dx"`
	// Dy is grid spacing along y
	Dy float64 `yaml:"dy"`
}

// Cavity is a lid-driven cavity flow solver
type Cavity struct {
	c     Config
	u, un *array.Array
	v, vn *array.Array
	p, pn *array.Array
	b     *array.Array
	steps int
}

// New creates new cavity solver with zero initial fields and returns it.
// It returns error if the grid has fewer than 3 points along either axis
// or if any of the physical parameters is not positive.
func New(c Config) (*Cavity, error) {
	if c.Nx < 3 || c.Ny < 3 {
		return nil, fmt.Errorf("invalid grid dimensions: [%d x %d]", c.Nx, c.Ny)
	}

	if c.Nit < 0 {
		return nil, fmt.Errorf("invalid pressure iteration count: %d", c.Nit)
	}

	if c.Rho <= 0 || c.Nu < 0 || c.Dt <= 0 || c.Dx <= 0 || c.Dy <= 0 {
		return nil, fmt.Errorf("invalid config supplied: %+v", c)
	}

	f := func() *array.Array { return array.MustNew(c.Ny, c.Nx) }

	return &Cavity{
		c:  c,
		u:  f(),
		un: f(),
		v:  f(),
		vn: f(),
		p:  f(),
		pn: f(),
		b:  f(),
	}, nil
}

// Step advances the flow by one time step and returns the (u, v) velocity fields.
// The returned arrays are owned by the solver and are overwritten by the next step.
func (c *Cavity) Step() (u, v *array.Array) {
	c.u, c.un = c.un, c.u
	c.v, c.vn = c.vn, c.v

	c.buildSource()
	c.solvePressure()
	c.updateMomentum()
	c.applyVelocityBC()
	c.steps++

	return c.u, c.v
}

// Next advances the flow by one time step and returns copies of the velocity fields.
func (c *Cavity) Next() (u, v *array.Array) {
	u, v = c.Step()
	return u.Clone(), v.Clone()
}

// Snapshot returns copies of the current velocity fields without stepping.
func (c *Cavity) Snapshot() (u, v *array.Array) {
	return c.u.Clone(), c.v.Clone()
}

// All returns an infinite sequence of velocity field copies.
func (c *Cavity) All() iter.Seq2[*array.Array, *array.Array] {
	return func(yield func(*array.Array, *array.Array) bool) {
		for {
			if !yield(c.Next()) {
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

// buildSource computes the pressure Poisson right hand side from the previous velocities.
func (c *Cavity) buildSource() {
	nx, ny := c.c.Nx, c.c.Ny
	dx, dy, dt, rho := c.c.Dx, c.c.Dy, c.c.Dt, c.c.Rho
	u, v, b := c.un.Data(), c.vn.Data(), c.b.Data()

	for j := 1; j < ny-1; j++ {
		for i := 1; i < nx-1; i++ {
			n := j*nx + i
			dudx := (u[n+1] - u[n-1]) / (2 * dx)
			dudy := (u[n+nx] - u[n-nx]) / (2 * dy)
			dvdx := (v[n+1] - v[n-1]) / (2 * dx)
			dvdy := (v[n+nx] - v[n-nx]) / (2 * dy)

			b[n] = rho * (1/dt*(dudx+dvdy) - dudx*dudx - 2*dudy*dvdx - dvdy*dvdy)
		}
	}
}

// solvePressure runs Nit Jacobi sweeps and then applies the pressure boundary conditions:
// dp/dx = 0 at x = 0 and x = L, dp/dy = 0 at y = 0 and p = 0 under the lid.
func (c *Cavity) solvePressure() {
	nx, ny := c.c.Nx, c.c.Ny
	dx2, dy2 := c.c.Dx*c.c.Dx, c.c.Dy*c.c.Dy
	den := 2 * (dx2 + dy2)
	p, pn, b := c.p.Data(), c.pn.Data(), c.b.Data()

	for it := 0; it < c.c.Nit; it++ {
		copy(pn, p)
		for j := 1; j < ny-1; j++ {
			for i := 1; i < nx-1; i++ {
				n := j*nx + i
				p[n] = ((pn[n+1]+pn[n-1])*dy2+(pn[n+nx]+pn[n-nx])*dx2)/den -
					dx2*dy2/den*b[n]
			}
		}
	}

	for j := 0; j < ny; j++ {
		p[j*nx+nx-1] = p[j*nx+nx-2]
	}
	for i := 0; i < nx; i++ {
		p[i] = p[nx+i]
	}
	for j := 0; j < ny; j++ {
		p[j*nx] = p[j*nx+1]
	}
	for i := 0; i < nx; i++ {
		p[(ny-1)*nx+i] = 0
	}
}

// updateMomentum advances the interior velocities with centered differences.
func (c *Cavity) updateMomentum() {
	nx, ny := c.c.Nx, c.c.Ny
	dx, dy, dt, rho, nu := c.c.Dx, c.c.Dy, c.c.Dt, c.c.Rho, c.c.Nu
	un, vn, p := c.un.Data(), c.vn.Data(), c.p.Data()
	u, v := c.u.Data(), c.v.Data()

	for j := 1; j < ny-1; j++ {
		for i := 1; i < nx-1; i++ {
			n := j*nx + i

			u[n] = un[n] -
				un[n]*dt/(2*dx)*(un[n+1]-un[n-1]) -
				vn[n]*dt/(2*dy)*(un[n+nx]-un[n-nx]) -
				dt/(2*rho*dx)*(p[n+1]-p[n-1]) +
				nu*(dt/(dx*dx)*(un[n+1]-2*un[n]+un[n-1])+
					dt/(dy*dy)*(un[n+nx]-2*un[n]+un[n-nx]))

			v[n] = vn[n] -
				un[n]*dt/(2*dx)*(vn[n+1]-vn[n-1]) -
				vn[n]*dt/(2*dy)*(vn[n+nx]-vn[n-nx]) -
				dt/(2*rho*dy)*(p[n+nx]-p[n-nx]) +
				nu*(dt/(dx*dx)*(vn[n+1]-2*vn[n]+vn[n-1])+
					dt/(dy*dy)*(vn[n+nx]-2*vn[n]+vn[n-nx]))
		}
	}
}

// applyVelocityBC sets no-slip walls and the moving lid.
// The lid row is written last so the two top corners move with the lid.
func (c *Cavity) applyVelocityBC() {
	nx, ny := c.c.Nx, c.c.Ny
	u, v := c.u.Data(), c.v.Data()

	for i := 0; i < nx; i++ {
		u[i], v[i] = 0, 0
		v[(ny-1)*nx+i] = 0
	}
	for j := 0; j < ny; j++ {
		u[j*nx], v[j*nx] = 0, 0
		u[j*nx+nx-1], v[j*nx+nx-1] = 0, 0
	}
	for i := 0; i < nx; i++ {
		u[(ny-1)*nx+i] = 1
	}
}
