package sim

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Continuous is a linear continuous-time system dx/dt = A*x + B*u observed through C.
type Continuous struct {
	A *mat.Dense
	B *mat.Dense
	C *mat.Dense
}

// NewContinuous creates a linear continuous-time model and returns it.
// It returns error if A is nil or not square.
func NewContinuous(A, B, C *mat.Dense) (*Continuous, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	if r, c := A.Dims(); r != c {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", r, c)
	}

	return &Continuous{A: A, B: B, C: C}, nil
}

// Discretize returns the zero-order hold discretization of the system with sampling time dt:
//
//	Ad = exp(A*dt)
//	Bd = integral(exp(A*t), 0, dt) * B
//
// The integral is evaluated as (Ad - I)*A^-1 when A is invertible and
// numerically with the trapezoidal rule otherwise.
func (c *Continuous) Discretize(dt float64) (*Linear, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("invalid sampling time: %f", dt)
	}

	nx, _ := c.A.Dims()

	ad := &mat.Dense{}
	ad.Scale(dt, c.A)
	ad.Exp(ad)

	var bd *mat.Dense
	if c.B != nil {
		eye, err := matrix.NewDenseValIdentity(nx, 1.0)
		if err != nil {
			return nil, err
		}

		integral := mat.NewDense(nx, nx, nil)
		aInv := &mat.Dense{}
		if err := aInv.Inverse(c.A); err == nil {
			integral.Sub(ad, eye)
			integral.Mul(integral, aInv)
		} else {
			const n = 100
			h := dt / float64(n)
			e := &mat.Dense{}
			for i := 0; i <= n; i++ {
				e.Scale(h*float64(i), c.A)
				e.Exp(e)
				w := h
				if i == 0 || i == n {
					w = h / 2
				}
				e.Scale(w, e)
				integral.Add(integral, e)
			}
		}

		bd = &mat.Dense{}
		bd.Mul(integral, c.B)
	}

	cd := c.C
	if cd == nil {
		cd = mat.DenseCopyOf(mat.NewDiagDense(nx, ones(nx)))
	}

	return NewLinear(ad, bd, cd)
}

func ones(n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = 1.0
	}

	return o
}
