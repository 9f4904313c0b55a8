// Package kalman provides the state shared by the Kalman family of filters
// and a Harness which runs the per-step bookkeeping around a concrete filter:
// fading memory, measurement likelihood and process noise adjustment.
package kalman

import (
	"fmt"

	"github.com/milosgajdos/go-physim/estimate"
	"github.com/milosgajdos/go-physim/matrix"
	"gonum.org/v1/gonum/mat"
)

// Filter is a Kalman-type filter operating on its Base state in place
type Filter interface {
	// State returns the mutable filter state
	State() *Base
	// Predict propagates the state to the next time step
	Predict() error
	// Update corrects the predicted state with the measurement stored in Base.Z
	Update() error
}

// NoiseAdjustFunc adjusts process noise covariance after a measurement update.
// It may modify Q, Phi and NSCount and reads Y, S, Epsilon, QScaleFactor and QAdjustParam.
type NoiseAdjustFunc func(b *Base)

// Base holds the state of a Kalman-type filter with dimX states,
// dimZ measurements and dimU control inputs. All fields are writable
// by the caller between Predict and Update calls.
type Base struct {
	// X is state mean
	X *mat.VecDense
	// P is state covariance
	P *mat.Dense
	// F is state transition matrix
	F *mat.Dense
	// B is control matrix; nil when the filter has no control input
	B *mat.Dense
	// U is control input; nil when the filter has no control input
	U *mat.VecDense
	// Q is process noise covariance
	Q *mat.Dense
	// H is measurement matrix
	H *mat.Dense
	// R is measurement noise covariance
	R *mat.Dense
	// Z is the measurement consumed by Update
	Z *mat.VecDense
	// K is Kalman gain of the last update
	K *mat.Dense
	// Y is measurement residual of the last update
	Y *mat.VecDense
	// S is innovation covariance of the last update
	S *mat.Dense
	// I is dimX x dimX identity
	I *mat.Dense
	// Dt is time step
	Dt float64

	// Alpha enables fading memory when set
	Alpha *float64
	// CumLH accumulates the product of measurement likelihoods when set
	CumLH *float64
	// NSCount enables process noise adjustment when set
	NSCount *int
	// Phi is the white noise variance used by AdjustByResidual
	Phi *float64
	// QScaleFactor scales or steps the process noise
	QScaleFactor float64
	// QAdjustParam is the threshold which triggers noise adjustment
	QAdjustParam float64
	// NoiseAdjust is the process noise adjustment hook
	NoiseAdjust NoiseAdjustFunc

	// Likelihood is the measurement likelihood of the last update
	Likelihood float64
	// LogLikelihood is the natural log of the measurement likelihood
	LogLikelihood float64
	// Epsilon is the normalized innovation squared y' * S^-1 * y
	Epsilon float64
	// Steps counts completed updates
	Steps int

	dimX, dimZ, dimU int
}

// NewBase creates new filter state with identity P, F, Q, H and R and zero X.
// It returns error if dimX or dimZ is not positive or dimU is negative.
func NewBase(dimX, dimZ, dimU int) (*Base, error) {
	if dimX <= 0 || dimZ <= 0 {
		return nil, fmt.Errorf("invalid filter dimensions: [%d x %d]", dimX, dimZ)
	}

	if dimU < 0 {
		return nil, fmt.Errorf("invalid control dimension: %d", dimU)
	}

	b := &Base{
		X:    mat.NewVecDense(dimX, nil),
		P:    matrix.Eye(dimX),
		F:    matrix.Eye(dimX),
		Q:    matrix.Eye(dimX),
		H:    mat.NewDense(dimZ, dimX, nil),
		R:    matrix.Eye(dimZ),
		Z:    mat.NewVecDense(dimZ, nil),
		K:    mat.NewDense(dimX, dimZ, nil),
		Y:    mat.NewVecDense(dimZ, nil),
		S:    mat.NewDense(dimZ, dimZ, nil),
		I:    matrix.Eye(dimX),
		Dt:   1.0,
		dimX: dimX,
		dimZ: dimZ,
		dimU: dimU,
	}

	for i := 0; i < min(dimX, dimZ); i++ {
		b.H.Set(i, i, 1.0)
	}

	if dimU > 0 {
		b.B = mat.NewDense(dimX, dimU, nil)
		b.U = mat.NewVecDense(dimU, nil)
	}

	return b, nil
}

// Dims returns state, measurement and control dimensions.
func (b *Base) Dims() (dimX, dimZ, dimU int) {
	return b.dimX, b.dimZ, b.dimU
}

// EnableFadingMemory turns on fading memory with factor alpha.
func (b *Base) EnableFadingMemory(alpha float64) {
	b.Alpha = &alpha
}

// EnableCumulativeLikelihood turns on likelihood accumulation starting at 1.
func (b *Base) EnableCumulativeLikelihood() {
	lh := 1.0
	b.CumLH = &lh
}

// EnableNoiseAdjust turns on process noise adjustment using fn.
// If fn is nil AdjustByEpsilon is used.
func (b *Base) EnableNoiseAdjust(fn NoiseAdjustFunc, scale, param float64) {
	if fn == nil {
		fn = AdjustByEpsilon
	}

	count := 0
	b.NSCount = &count
	b.NoiseAdjust = fn
	b.QScaleFactor = scale
	b.QAdjustParam = param
}

// SetPhi sets the white noise variance used by AdjustByResidual.
func (b *Base) SetPhi(phi float64) {
	b.Phi = &phi
}

// SetZ copies z into the measurement consumed by the next update.
// It returns error if z has invalid dimension.
func (b *Base) SetZ(z mat.Vector) error {
	if z.Len() != b.dimZ {
		return fmt.Errorf("invalid measurement dimension: %d", z.Len())
	}
	b.Z.CopyVec(z)

	return nil
}

// SetU copies u into the control input.
// It returns error if u has invalid dimension.
func (b *Base) SetU(u mat.Vector) error {
	if b.U == nil || u.Len() != b.dimU {
		return fmt.Errorf("invalid control dimension: %d", u.Len())
	}
	b.U.CopyVec(u)

	return nil
}

// Estimate returns the current posterior estimate.
func (b *Base) Estimate() (*estimate.Base, error) {
	return estimate.NewBaseWithCov(b.X, b.P)
}
