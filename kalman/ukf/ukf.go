// Package ukf implements the Unscented (aka Sigma Point) Kalman Filter
// with Van der Merwe's scaled sigma points.
package ukf

import (
	"fmt"

	"github.com/milosgajdos/go-physim/kalman"
	"gonum.org/v1/gonum/mat"
)

// TransitionFunc propagates a single sigma point x to the next step.
type TransitionFunc func(x []float64, u mat.Vector, F, B *mat.Dense, dt float64) []float64

// MeasureFunc maps a single sigma point x to the measurement space.
type MeasureFunc func(x []float64, H *mat.Dense, landmarks *mat.Dense) []float64

// Transition is the linear TransitionFunc: F*x + B*u.
func Transition(x []float64, u mat.Vector, F, B *mat.Dense, dt float64) []float64 {
	r, _ := F.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(F, mat.NewVecDense(len(x), x))

	if B != nil && u != nil {
		bu := &mat.VecDense{}
		bu.MulVec(B, u)
		out.AddVec(out, bu)
	}

	return out.RawVector().Data
}

// Measure is the linear MeasureFunc: H*x.
func Measure(x []float64, H *mat.Dense, landmarks *mat.Dense) []float64 {
	r, _ := H.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(H, mat.NewVecDense(len(x), x))

	return out.RawVector().Data
}

// UKF is Unscented Kalman Filter
type UKF struct {
	*kalman.Base
	// Points generates sigma points
	Points *MerweScaled
	// StateUT is the unscented transform of the state sigma points
	StateUT *Transform
	// MeasUT is the unscented transform of the measurement sigma points
	MeasUT *Transform
	// SigmasF stores propagated sigma points, one per row
	SigmasF *mat.Dense
	// SigmasH stores sigma points in measurement space, one per row
	SigmasH *mat.Dense
	// Landmarks are passed to Hx
	Landmarks *mat.Dense
	// Fx is state transition function
	Fx TransitionFunc
	// Hx is measurement function
	Hx MeasureFunc
	// ResidualX computes state residuals
	ResidualX ResidualFunc
	// ResidualZ computes measurement residuals
	ResidualZ ResidualFunc
	// StateAdd adds a correction to the state
	StateAdd AddFunc
}

// New creates new UKF with dimX states, dimZ measurements and dimU control inputs
// using the sigma point generator points and returns it.
// If points is nil, sigma points with alpha 1e-3, beta 2 and kappa 0 are used.
// It returns error if the dimensions are invalid or do not match points.
func New(dimX, dimZ, dimU int, points *MerweScaled) (*UKF, error) {
	b, err := kalman.NewBase(dimX, dimZ, dimU)
	if err != nil {
		return nil, err
	}

	if points == nil {
		if points, err = NewMerweScaled(dimX, 1e-3, 2, 0); err != nil {
			return nil, err
		}
	}

	if points.N != dimX {
		return nil, fmt.Errorf("invalid sigma point dimension: %d != %d", points.N, dimX)
	}

	if len(points.Wm) != points.NumSigmas() || len(points.Wc) != points.NumSigmas() {
		return nil, fmt.Errorf("invalid sigma point weights: %d", len(points.Wm))
	}

	return &UKF{
		Base:      b,
		Points:    points,
		StateUT:   NewTransform(),
		MeasUT:    NewTransform(),
		SigmasF:   mat.NewDense(points.NumSigmas(), dimX, nil),
		SigmasH:   mat.NewDense(points.NumSigmas(), dimZ, nil),
		Fx:        Transition,
		Hx:        Measure,
		ResidualX: Residual,
		ResidualZ: Residual,
		StateAdd:  Add,
	}, nil
}

// State returns the filter state.
func (k *UKF) State() *kalman.Base {
	return k.Base
}

// Predict propagates sigma points generated around X through Fx and recovers the
// predicted mean and covariance with the state unscented transform.
// Sigma points are regenerated around the predicted moments afterwards.
// It returns error if the sigma points can not be generated.
func (k *UKF) Predict() error {
	sigmas, err := k.Points.SigmaPoints(k.X, k.P)
	if err != nil {
		return err
	}

	var u mat.Vector
	if k.U != nil {
		u = k.U
	}

	dimX, _, _ := k.Dims()
	for i := 0; i < k.Points.NumSigmas(); i++ {
		y := k.Fx(sigmas.RawRowView(i), u, k.F, k.B, k.Dt)
		if len(y) != dimX {
			return fmt.Errorf("invalid propagated sigma point dimension: %d", len(y))
		}
		k.SigmasF.SetRow(i, y)
	}

	x, p := k.StateUT.Apply(k.SigmasF, k.Points.Wm, k.Points.Wc, k.Q)
	k.X.CopyVec(x)
	k.P.Copy(p)

	if sigmas, err = k.Points.SigmaPoints(k.X, k.P); err != nil {
		return err
	}
	k.SigmasF.Copy(sigmas)

	return nil
}

// Update maps the predicted sigma points through Hx and corrects the state using the measurement Z.
// It returns error if the innovation covariance can not be inverted.
func (k *UKF) Update() error {
	_, dimZ, _ := k.Dims()
	for i := 0; i < k.Points.NumSigmas(); i++ {
		z := k.Hx(k.SigmasF.RawRowView(i), k.H, k.Landmarks)
		if len(z) != dimZ {
			return fmt.Errorf("invalid measurement sigma point dimension: %d", len(z))
		}
		k.SigmasH.SetRow(i, z)
	}

	zp, s := k.MeasUT.Apply(k.SigmasH, k.Points.Wm, k.Points.Wc, k.R)
	k.S.Copy(s)

	sInv := &mat.Dense{}
	if err := sInv.Inverse(k.S); err != nil {
		return fmt.Errorf("failed to invert innovation covariance: %v", err)
	}

	zpData := zp.RawVector().Data
	xData := k.X.RawVector().Data
	k.Y.CopyVec(mat.NewVecDense(dimZ, k.ResidualZ(k.Z.RawVector().Data, zpData)))

	// Pxz = sum(Wc[i] * dx[i] * dz[i]')
	dimX, _, _ := k.Dims()
	pxz := mat.NewDense(dimX, dimZ, nil)
	for i, w := range k.Points.Wc {
		dx := mat.NewVecDense(dimX, k.ResidualX(k.SigmasF.RawRowView(i), xData))
		dz := mat.NewVecDense(dimZ, k.ResidualZ(k.SigmasH.RawRowView(i), zpData))
		pxz.RankOne(pxz, w, dx, dz)
	}

	k.K.Mul(pxz, sInv)

	ky := &mat.VecDense{}
	ky.MulVec(k.K, k.Y)
	k.X.CopyVec(mat.NewVecDense(dimX, k.StateAdd(xData, ky.RawVector().Data)))

	// P = P - K*S*K'
	ks := &mat.Dense{}
	ks.Mul(k.K, k.S)
	ksk := &mat.Dense{}
	ksk.Mul(ks, k.K.T())
	k.P.Sub(k.P, ksk)

	return nil
}
