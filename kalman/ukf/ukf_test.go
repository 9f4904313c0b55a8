package ukf

import (
	"os"
	"testing"

	"github.com/milosgajdos/go-physim/kalman/kf"
	"github.com/milosgajdos/go-physim/noise"
	"github.com/milosgajdos/go-physim/sim"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	dt    float64
	F     *mat.Dense
	H     *mat.Dense
	R     *mat.Dense
	Q     *mat.Dense
	P0    *mat.Dense
	zs    *mat.Dense
	steps int
)

func setup() {
	dt = 0.1
	steps = 50
	F = mat.NewDense(2, 2, []float64{1, dt, 0, 1})
	H = mat.NewDense(1, 2, []float64{1, 0})
	R = mat.NewDense(1, 1, []float64{0.04})
	Q, _ = noise.DiscreteWhite(2, dt, 0.02, 1)
	P0 = mat.NewDense(2, 2, []float64{3, 0, 0, 3})

	truth, _ := sim.ConstantVelocity([]float64{0}, []float64{1}, dt, steps)
	zs = sim.Measure(truth, 0.2, 11)
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	f, err := New(2, 1, 0, nil)
	assert.NotNil(f)
	assert.NoError(err)
	assert.Equal(5, f.Points.NumSigmas())
	assert.Equal(f.Base, f.State())

	p, err := NewMerweScaled(3, 0.1, 2, 0)
	assert.NoError(err)
	f, err = New(2, 1, 0, p)
	assert.Nil(f)
	assert.Error(err)

	p, err = NewMerweScaled(2, 0.1, 2, 0)
	assert.NoError(err)
	p.Wm = p.Wm[:3]
	f, err = New(2, 1, 0, p)
	assert.Nil(f)
	assert.Error(err)

	f, err = New(0, 1, 0, nil)
	assert.Nil(f)
	assert.Error(err)
}

func newLinear(t *testing.T) (*UKF, *kf.KF) {
	p, err := NewMerweScaled(2, 0.1, 2, 1)
	assert.NoError(t, err)

	u, err := New(2, 1, 0, p)
	assert.NoError(t, err)

	k, err := kf.New(2, 1, 0)
	assert.NoError(t, err)

	for _, b := range []*struct{ F, H, R, Q, P *mat.Dense }{
		{u.F, u.H, u.R, u.Q, u.P},
		{k.F, k.H, k.R, k.Q, k.P},
	} {
		b.F.Copy(F)
		b.H.Copy(H)
		b.R.Copy(R)
		b.Q.Copy(Q)
		b.P.Copy(P0)
	}
	u.Dt, k.Dt = dt, dt

	return u, k
}

func TestLinearMatchesKF(t *testing.T) {
	assert := assert.New(t)

	u, k := newLinear(t)

	for i := 0; i < steps; i++ {
		z := zs.RowView(i)

		assert.NoError(u.Predict())
		assert.NoError(k.Predict())
		assert.True(mat.EqualApprox(k.X, u.X, 1e-6), "predict step %d", i)
		assert.True(mat.EqualApprox(k.P, u.P, 1e-4), "predict step %d", i)

		assert.NoError(u.SetZ(z))
		assert.NoError(k.SetZ(z))

		assert.NoError(u.Update())
		assert.NoError(k.Update())
		assert.True(mat.EqualApprox(k.X, u.X, 1e-6), "update step %d", i)
		assert.True(mat.EqualApprox(k.P, u.P, 1e-4), "update step %d", i)
		assert.True(mat.EqualApprox(k.S, u.S, 1e-4), "update step %d", i)
		assert.True(mat.EqualApprox(k.Y, u.Y, 1e-6), "update step %d", i)
	}
}

func TestPredictRegeneratesSigmas(t *testing.T) {
	assert := assert.New(t)

	u, _ := newLinear(t)
	u.X.SetVec(0, 2.0)

	assert.NoError(u.Predict())

	// the center sigma point is the predicted mean
	assert.InDeltaSlice(u.X.RawVector().Data, u.SigmasF.RawRowView(0), 1e-12)

	expected, err := u.Points.SigmaPoints(u.X, u.P)
	assert.NoError(err)
	assert.True(mat.EqualApprox(expected, u.SigmasF, 1e-12))
}

func TestUpdateErrors(t *testing.T) {
	assert := assert.New(t)

	u, _ := newLinear(t)
	u.Hx = func(x []float64, _ *mat.Dense, _ *mat.Dense) []float64 {
		return []float64{x[0], x[1]}
	}
	assert.NoError(u.Predict())
	assert.Error(u.Update())

	u, _ = newLinear(t)
	u.Fx = func(x []float64, _ mat.Vector, _, _ *mat.Dense, _ float64) []float64 {
		return x[:1]
	}
	assert.Error(u.Predict())

	u, _ = newLinear(t)
	u.P.Scale(-1, u.P)
	assert.Error(u.Predict())
}
