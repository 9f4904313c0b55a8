// Package kf implements the linear Kalman filter.
package kf

import (
	"fmt"

	"github.com/milosgajdos/go-physim/kalman"
	"gonum.org/v1/gonum/mat"
)

// KF is Kalman Filter
type KF struct {
	*kalman.Base
	// pht caches P * H'
	pht *mat.Dense
	// sInv caches S^-1
	sInv *mat.Dense
}

// New creates new KF with dimX states, dimZ measurements and dimU control inputs
// and returns it. Filter matrices are initialized by kalman.NewBase and are
// expected to be set by the caller before filtering.
// It returns error if the dimensions are invalid.
func New(dimX, dimZ, dimU int) (*KF, error) {
	b, err := kalman.NewBase(dimX, dimZ, dimU)
	if err != nil {
		return nil, err
	}

	return &KF{
		Base: b,
		pht:  mat.NewDense(dimX, dimZ, nil),
		sInv: mat.NewDense(dimZ, dimZ, nil),
	}, nil
}

// State returns the filter state.
func (k *KF) State() *kalman.Base {
	return k.Base
}

// Predict propagates the state and its covariance to the next step:
// x = F*x + B*u and P = F*P*F' + Q.
func (k *KF) Predict() error {
	x := &mat.VecDense{}
	x.MulVec(k.F, k.X)

	if k.B != nil && k.U != nil {
		bu := &mat.VecDense{}
		bu.MulVec(k.B, k.U)
		x.AddVec(x, bu)
	}
	k.X.CopyVec(x)

	p := &mat.Dense{}
	p.Mul(k.F, k.P)
	p.Mul(p, k.F.T())
	p.Add(p, k.Q)
	k.P.Copy(p)

	return nil
}

// Update corrects the predicted state using the measurement Z.
// Covariance is updated in Joseph form: P = (I-K*H)*P*(I-K*H)' + K*R*K'.
// It returns error if the innovation covariance S can not be inverted.
func (k *KF) Update() error {
	// y = z - H*x
	hx := &mat.VecDense{}
	hx.MulVec(k.H, k.X)
	k.Y.SubVec(k.Z, hx)

	// S = H*P*H' + R
	k.pht.Mul(k.P, k.H.T())
	k.S.Mul(k.H, k.pht)
	k.S.Add(k.S, k.R)

	if err := k.sInv.Inverse(k.S); err != nil {
		return fmt.Errorf("failed to invert innovation covariance: %v", err)
	}

	// K = P*H'*S^-1
	k.K.Mul(k.pht, k.sInv)

	// x = x + K*y
	ky := &mat.VecDense{}
	ky.MulVec(k.K, k.Y)
	k.X.AddVec(k.X, ky)

	ikh := &mat.Dense{}
	ikh.Mul(k.K, k.H)
	ikh.Sub(k.I, ikh)

	p := &mat.Dense{}
	p.Mul(ikh, k.P)
	p.Mul(p, ikh.T())

	kr := &mat.Dense{}
	kr.Mul(k.K, k.R)
	krk := &mat.Dense{}
	krk.Mul(kr, k.K.T())

	p.Add(p, krk)
	k.P.Copy(p)

	return nil
}

// Batch runs the filter over the measurements zs using the kalman.Harness
// and returns the posterior means and covariances after every update.
// It returns error if any of the filter steps fails.
func (k *KF) Batch(zs []mat.Vector) ([]*mat.VecDense, []*mat.Dense, error) {
	h := kalman.NewHarness(k)

	xs := make([]*mat.VecDense, len(zs))
	ps := make([]*mat.Dense, len(zs))

	for i, z := range zs {
		if err := h.Run(z); err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", i, err)
		}

		xs[i] = mat.VecDenseCopyOf(k.X)
		ps[i] = mat.DenseCopyOf(k.P)
	}

	return xs, ps, nil
}
