// Package lbm implements the single relaxation time (BGK) lattice Boltzmann
// machinery shared by the D2Q9 and D3Q19 vortex solvers: lattice descriptors,
// equilibrium distributions, streaming, bounce-back barriers and a steady inflow column.
package lbm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Lattice describes a discrete velocity set.
// Velocity components are stored in array axis order, i.e. the last component
// is the streamwise x component.
type Lattice struct {
	// C stores the discrete velocities
	C [][]int
	// W stores the quadrature weights
	W []float64
	// Opp maps every direction to its inverse direction
	Opp []int
}

// NewLattice creates a lattice from velocities c and weights w and returns it.
// It returns error if the weights do not sum to 1, if velocity dimensions are
// inconsistent or if some direction has no inverse.
func NewLattice(c [][]int, w []float64) (*Lattice, error) {
	if len(c) == 0 || len(c) != len(w) {
		return nil, fmt.Errorf("invalid lattice size: %d velocities, %d weights", len(c), len(w))
	}

	if s := floats.Sum(w); s < 1-1e-12 || s > 1+1e-12 {
		return nil, fmt.Errorf("invalid lattice weights: sum %v", s)
	}

	d := len(c[0])
	opp := make([]int, len(c))
	for i := range c {
		if len(c[i]) != d {
			return nil, fmt.Errorf("invalid velocity dimension: %d != %d", len(c[i]), d)
		}

		opp[i] = -1
		for j := range c {
			if isInverse(c[i], c[j]) {
				opp[i] = j
				break
			}
		}
		if opp[i] < 0 {
			return nil, fmt.Errorf("direction %d has no inverse", i)
		}
	}

	return &Lattice{C: c, W: w, Opp: opp}, nil
}

func isInverse(a, b []int) bool {
	for k := range a {
		if a[k] != -b[k] {
			return false
		}
	}

	return true
}

// D2Q9 returns the nine velocity lattice in (y, x) component order:
// rest, four axis directions and four diagonals.
func D2Q9() *Lattice {
	c := [][]int{
		{0, 0},
		{0, 1}, {0, -1}, {1, 0}, {-1, 0},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	w := []float64{
		4.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36,
	}

	l, err := NewLattice(c, w)
	if err != nil {
		panic(err)
	}

	return l
}

// D3Q19 returns the nineteen velocity lattice in (z, y, x) component order:
// rest, six axis directions and twelve face diagonals.
func D3Q19() *Lattice {
	c := [][]int{{0, 0, 0}}
	w := []float64{1.0 / 3}

	for a := 0; a < 3; a++ {
		for _, s := range []int{1, -1} {
			v := make([]int, 3)
			v[a] = s
			c = append(c, v)
			w = append(w, 1.0/18)
		}
	}

	for a := 0; a < 3; a++ {
		for b := a + 1; b < 3; b++ {
			for _, sa := range []int{1, -1} {
				for _, sb := range []int{1, -1} {
					v := make([]int, 3)
					v[a], v[b] = sa, sb
					c = append(c, v)
					w = append(w, 1.0/36)
				}
			}
		}
	}

	l, err := NewLattice(c, w)
	if err != nil {
		panic(err)
	}

	return l
}

// Q returns the number of discrete velocities.
func (l *Lattice) Q() int {
	return len(l.C)
}

// Dim returns the spatial dimension of the lattice.
func (l *Lattice) Dim() int {
	return len(l.C[0])
}

// Equilibrium returns the BGK equilibrium of direction i for density rho,
// projected velocity cu = c_i·v and squared speed usqr = |v|².
func (l *Lattice) Equilibrium(i int, rho, cu, usqr float64) float64 {
	return l.W[i] * rho * (1 + 3*cu + 4.5*cu*cu - 1.5*usqr)
}

// Omega returns the BGK relaxation parameter for kinematic viscosity nu.
func Omega(nu float64) float64 {
	return 1 / (3*nu + 0.5)
}
