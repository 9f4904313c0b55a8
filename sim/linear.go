package sim

import (
	"fmt"

	physim "github.com/milosgajdos/go-physim"
	"gonum.org/v1/gonum/mat"
)

// Linear is a linear discrete-time dynamical system:
//
//	x[n+1] = A*x[n] + B*u[n] + w[n]
//	z[n]   = C*x[n] + v[n]
type Linear struct {
	// A is state transition matrix
	A *mat.Dense
	// B is control matrix; may be nil
	B *mat.Dense
	// C is observation matrix
	C *mat.Dense
}

// NewLinear creates new linear system and returns it.
// It returns error if A is nil or not square or if B or C do not match A.
func NewLinear(A, B, C *mat.Dense) (*Linear, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	r, c := A.Dims()
	if r != c {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", r, c)
	}

	if B != nil {
		if br, _ := B.Dims(); br != r {
			return nil, fmt.Errorf("invalid control matrix rows: %d", br)
		}
	}

	if C == nil {
		return nil, fmt.Errorf("observation matrix must be defined for a model")
	}

	if _, cc := C.Dims(); cc != r {
		return nil, fmt.Errorf("invalid observation matrix columns: %d", cc)
	}

	return &Linear{A: A, B: B, C: C}, nil
}

// Dims returns state, control and output dimensions.
func (l *Linear) Dims() (nx, nu, nz int) {
	nx, _ = l.A.Dims()
	if l.B != nil {
		_, nu = l.B.Dims()
	}
	nz, _ = l.C.Dims()

	return nx, nu, nz
}

// Propagate returns the next state given state x, input u and process noise sample w.
// Both u and w may be nil.
func (l *Linear) Propagate(x, u, w mat.Vector) (*mat.VecDense, error) {
	nx, nu, _ := l.Dims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(l.A, x)

	if u != nil && l.B != nil {
		bu := &mat.VecDense{}
		bu.MulVec(l.B, u)
		out.AddVec(out, bu)
	}

	if w != nil && w.Len() == nx {
		out.AddVec(out, w)
	}

	return out, nil
}

// Observe returns the output of state x with measurement noise sample v added.
// v may be nil.
func (l *Linear) Observe(x, v mat.Vector) (*mat.VecDense, error) {
	nx, _, nz := l.Dims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := mat.NewVecDense(nz, nil)
	out.MulVec(l.C, x)

	if v != nil && v.Len() == nz {
		out.AddVec(out, v)
	}

	return out, nil
}

// Simulate runs the system for steps steps from x0 with constant input u and
// returns the true states and the noisy measurements, one per row.
// Any of u, w and v may be nil.
func (l *Linear) Simulate(x0, u mat.Vector, w, v physim.Noise, steps int) (xs, zs *mat.Dense, err error) {
	if steps <= 0 {
		return nil, nil, fmt.Errorf("invalid step count: %d", steps)
	}

	nx, _, nz := l.Dims()
	xs = mat.NewDense(steps, nx, nil)
	zs = mat.NewDense(steps, nz, nil)

	x := mat.VecDenseCopyOf(x0)
	for i := 0; i < steps; i++ {
		var ws, vs mat.Vector
		if w != nil {
			ws = w.Sample()
		}
		if v != nil {
			vs = v.Sample()
		}

		if x, err = l.Propagate(x, u, ws); err != nil {
			return nil, nil, err
		}

		var z *mat.VecDense
		if z, err = l.Observe(x, vs); err != nil {
			return nil, nil, err
		}

		xs.SetRow(i, x.RawVector().Data)
		zs.SetRow(i, z.RawVector().Data)
	}

	return xs, zs, nil
}
