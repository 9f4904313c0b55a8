// Package rts implements the Rauch-Tung-Striebel fixed interval smoother
// for linear Kalman filter estimates.
package rts

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RTS is Rauch-Tung-Striebel smoother
type RTS struct {
	// f is state transition matrix
	f *mat.Dense
	// q is process noise covariance
	q *mat.Dense
}

// New creates new RTS for a system with state transition matrix f
// and process noise covariance q and returns it.
// It returns error if the matrices are not square of the same size.
func New(f, q mat.Matrix) (*RTS, error) {
	fr, fc := f.Dims()
	if fr != fc || fr == 0 {
		return nil, fmt.Errorf("invalid state transition matrix dimensions: [%d x %d]", fr, fc)
	}

	if qr, qc := q.Dims(); qr != fr || qc != fc {
		return nil, fmt.Errorf("invalid state noise dimensions: [%d x %d]", qr, qc)
	}

	return &RTS{
		f: mat.DenseCopyOf(f),
		q: mat.DenseCopyOf(q),
	}, nil
}

// Smooth runs the backward pass over filtered means xs and covariances ps
// and returns the smoothed means and covariances. The inputs are not modified.
// It returns error if the inputs are inconsistent or a predicted covariance is singular.
func (s *RTS) Smooth(xs []*mat.VecDense, ps []*mat.Dense) ([]*mat.VecDense, []*mat.Dense, error) {
	if len(xs) == 0 || len(xs) != len(ps) {
		return nil, nil, fmt.Errorf("invalid estimate count: %d means, %d covariances", len(xs), len(ps))
	}

	n, _ := s.f.Dims()
	for i := range xs {
		if xs[i].Len() != n {
			return nil, nil, fmt.Errorf("invalid mean %d dimension: %d", i, xs[i].Len())
		}
		if r, c := ps[i].Dims(); r != n || c != n {
			return nil, nil, fmt.Errorf("invalid covariance %d dimensions: [%d x %d]", i, r, c)
		}
	}

	last := len(xs) - 1
	sx := make([]*mat.VecDense, len(xs))
	sp := make([]*mat.Dense, len(ps))
	sx[last] = mat.VecDenseCopyOf(xs[last])
	sp[last] = mat.DenseCopyOf(ps[last])

	for k := last - 1; k >= 0; k-- {
		// predicted covariance F*P*F' + Q
		pp := &mat.Dense{}
		pp.Mul(s.f, ps[k])
		pp.Mul(pp, s.f.T())
		pp.Add(pp, s.q)

		ppInv := &mat.Dense{}
		if err := ppInv.Inverse(pp); err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", k, err)
		}

		// smoother gain P*F'*Pp^-1
		c := &mat.Dense{}
		c.Mul(ps[k], s.f.T())
		c.Mul(c, ppInv)

		xp := &mat.VecDense{}
		xp.MulVec(s.f, xs[k])
		xp.SubVec(sx[k+1], xp)

		x := &mat.VecDense{}
		x.MulVec(c, xp)
		x.AddVec(xs[k], x)
		sx[k] = x

		d := &mat.Dense{}
		d.Sub(sp[k+1], pp)
		d.Mul(c, d)
		d.Mul(d, c.T())
		d.Add(ps[k], d)
		sp[k] = d
	}

	return sx, sp, nil
}

// Smooth runs RTS smoothing with state transition matrix f and process noise q
// over the filtered means xs and covariances ps.
func Smooth(xs []*mat.VecDense, ps []*mat.Dense, f, q mat.Matrix) ([]*mat.VecDense, []*mat.Dense, error) {
	s, err := New(f, q)
	if err != nil {
		return nil, nil, err
	}

	return s.Smooth(xs, ps)
}
