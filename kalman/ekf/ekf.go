// Package ekf implements the Extended Kalman Filter and its iterated variant.
// Nonlinear models are linearized around the current estimate with central
// finite differences.
package ekf

import (
	"fmt"

	"github.com/milosgajdos/go-physim/kalman"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// PropagateFunc propagates state x with control u over time step dt
type PropagateFunc func(x []float64, u mat.Vector, dt float64) []float64

// ObserveFunc returns the measurement expected in state x
type ObserveFunc func(x []float64) []float64

// EKF is Extended Kalman Filter
type EKF struct {
	*kalman.Base
	// Fx is nonlinear state propagation; F*x + B*u when nil
	Fx PropagateFunc
	// Hx is nonlinear observation; H*x when nil
	Hx ObserveFunc
	// iters is the number of measurement update iterations
	iters int
}

var jacSettings = &fd.JacobianSettings{
	Formula:    fd.Central,
	Concurrent: true,
}

// New creates new EKF with dimX states, dimZ measurements and dimU control inputs and returns it.
// It returns error if the dimensions are invalid.
func New(dimX, dimZ, dimU int) (*EKF, error) {
	return NewIter(dimX, dimZ, dimU, 1)
}

// NewIter creates new Iterated EKF which relinearizes the observation
// n times during every measurement update and returns it.
// It returns error if n is not positive or the dimensions are invalid.
func NewIter(dimX, dimZ, dimU, n int) (*EKF, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of update iterations: %d", n)
	}

	b, err := kalman.NewBase(dimX, dimZ, dimU)
	if err != nil {
		return nil, err
	}

	return &EKF{
		Base:  b,
		iters: n,
	}, nil
}

// State returns the filter state.
func (k *EKF) State() *kalman.Base {
	return k.Base
}

// Iterations returns the number of measurement update iterations.
func (k *EKF) Iterations() int {
	return k.iters
}

// Predict propagates the state through Fx and its covariance through
// the Jacobian of Fx evaluated at the current state, which is stored in F.
func (k *EKF) Predict() error {
	if k.Fx == nil {
		x := &mat.VecDense{}
		x.MulVec(k.F, k.X)
		if k.B != nil && k.U != nil {
			bu := &mat.VecDense{}
			bu.MulVec(k.B, k.U)
			x.AddVec(x, bu)
		}
		k.X.CopyVec(x)
	} else {
		var u mat.Vector
		if k.U != nil {
			u = k.U
		}

		x := mat.Col(nil, 0, k.X)
		dimX, _, _ := k.Dims()

		fd.Jacobian(k.F, func(y, xs []float64) {
			copy(y, k.Fx(xs, u, k.Dt))
		}, x, jacSettings)

		next := k.Fx(x, u, k.Dt)
		if len(next) != dimX {
			return fmt.Errorf("invalid propagated state dimension: %d", len(next))
		}
		k.X.CopyVec(mat.NewVecDense(dimX, next))
	}

	p := &mat.Dense{}
	p.Mul(k.F, k.P)
	p.Mul(p, k.F.T())
	p.Add(p, k.Q)
	k.P.Copy(p)

	return nil
}

// Update corrects the predicted state with the measurement Z.
// Every iteration relinearizes the observation at the latest state
// estimate xi and computes:
//
//	y  = z - h(xi) - H*(x - xi)
//	xi = x + K*y
//
// Covariance is corrected in Joseph form with the final gain.
// It returns error if the innovation covariance can not be inverted.
func (k *EKF) Update() error {
	dimX, dimZ, _ := k.Dims()

	x0 := mat.VecDenseCopyOf(k.X)
	xi := mat.VecDenseCopyOf(k.X)
	pht := mat.NewDense(dimX, dimZ, nil)
	sInv := &mat.Dense{}

	for it := 0; it < k.iters; it++ {
		hx, err := k.observe(xi)
		if err != nil {
			return err
		}

		// y = z - h(xi) - H*(x0 - xi)
		dx := &mat.VecDense{}
		dx.SubVec(x0, xi)
		hdx := &mat.VecDense{}
		hdx.MulVec(k.H, dx)
		k.Y.SubVec(k.Z, hx)
		k.Y.SubVec(k.Y, hdx)

		pht.Mul(k.P, k.H.T())
		k.S.Mul(k.H, pht)
		k.S.Add(k.S, k.R)

		if err := sInv.Inverse(k.S); err != nil {
			return fmt.Errorf("failed to invert innovation covariance: %v", err)
		}
		k.K.Mul(pht, sInv)

		ky := &mat.VecDense{}
		ky.MulVec(k.K, k.Y)
		xi.AddVec(x0, ky)
	}
	k.X.CopyVec(xi)

	// Joseph form: (I-KH)*P*(I-KH)' + K*R*K'
	a := &mat.Dense{}
	a.Mul(k.K, k.H)
	a.Sub(k.I, a)

	p := &mat.Dense{}
	p.Mul(a, k.P)
	p.Mul(p, a.T())

	kr := &mat.Dense{}
	kr.Mul(k.K, k.R)
	krk := &mat.Dense{}
	krk.Mul(kr, k.K.T())

	p.Add(p, krk)
	k.P.Copy(p)

	return nil
}

// observe returns the expected measurement in state x. When Hx is set
// the observation Jacobian at x is stored in H.
func (k *EKF) observe(x *mat.VecDense) (*mat.VecDense, error) {
	_, dimZ, _ := k.Dims()

	if k.Hx == nil {
		hx := &mat.VecDense{}
		hx.MulVec(k.H, x)
		return hx, nil
	}

	xs := mat.Col(nil, 0, x)
	fd.Jacobian(k.H, func(y, v []float64) {
		copy(y, k.Hx(v))
	}, xs, jacSettings)

	z := k.Hx(xs)
	if len(z) != dimZ {
		return nil, fmt.Errorf("invalid observation dimension: %d", len(z))
	}

	return mat.NewVecDense(dimZ, z), nil
}
