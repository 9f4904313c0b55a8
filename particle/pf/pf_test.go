package pf

import (
	"math"
	"os"
	"testing"

	"github.com/milosgajdos/go-physim/particle"
	"github.com/milosgajdos/go-physim/rand"
	"github.com/stretchr/testify/assert"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	c   Config
	lms *mat.Dense
)

func setup() {
	c = Config{PM: 3, PC: 2, PG: 2000, PD: 2, PN: 1, Dt: 1.0}
	lms = mat.NewDense(4, 2, []float64{
		-1, 2,
		5, 10,
		12, 14,
		18, 21,
	})
}

func TestMain(m *testing.M) {
	setup()
	retCode := m.Run()
	os.Exit(retCode)
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	f, err := New(c)
	assert.NotNil(f)
	assert.NoError(err)
	assert.Equal(c, f.Config())
	assert.InDelta(float64(c.PG), f.Neff(), 1e-6)
	assert.InDelta(1.0, floats.Sum(f.Weights()), 1e-12)

	testCases := []Config{
		{PM: 0, PC: 2, PG: 10, PD: 1, PN: 1},
		{PM: 3, PC: 2, PG: 0, PD: 1, PN: 1},
		{PM: 3, PC: 2, PG: 10, PD: 4, PN: 1},
		{PM: 3, PC: 2, PG: 10, PD: 0, PN: 1},
		{PM: 3, PC: 2, PG: 10, PD: 2, PN: 0},
		{PM: 3, PC: -1, PG: 10, PD: 2, PN: 1},
		{PM: 3, PC: 2, PG: 10, PD: 2, PN: 1, Dt: -1},
	}

	for _, tc := range testCases {
		f, err := New(tc)
		assert.Nil(f)
		assert.Error(err)
	}

	assert.Error(f.SetU([]float64{1}))
	assert.NoError(f.SetU([]float64{1, 0}))
	assert.Error(f.CreateParticles([]float64{0, 1}))
	assert.Error(f.SetParticles(mat.NewDense(2, 3, nil)))
}

func TestUpdate(t *testing.T) {
	assert := assert.New(t)

	f, err := New(c)
	assert.NoError(err)
	f.SetRandomSeed(1)
	f.R = []float64{0.5}
	assert.NoError(f.CreateParticles([]float64{0, 20, 0, 20, 0, 2 * math.Pi}))

	z := mat.NewDense(4, 1, nil)
	truth := []float64{10, 10}
	for l := 0; l < 4; l++ {
		z.Set(l, 0, floats.Distance(truth, lms.RawRowView(l), 2))
	}

	assert.Error(f.Update(lms, mat.NewDense(3, 1, nil)))
	assert.Error(f.Update(mat.NewDense(4, 1, nil), z))

	assert.NoError(f.Update(lms, z))
	w := f.Weights()
	assert.InDelta(1.0, floats.Sum(w), 1e-5)
	assert.Less(f.Neff(), float64(c.PG))

	// the heaviest particle sits close to the true position
	best := floats.MaxIdx(w)
	pt := f.Particles()
	assert.Less(floats.Distance(truth, pt.RawRowView(best)[:2], 2), 2.0)

	mean, variance := f.Estimate()
	assert.Len(mean, c.PD)
	assert.Len(variance, c.PD)
	assert.InDeltaSlice(truth, mean, 2.0)
}

func TestResample(t *testing.T) {
	assert := assert.New(t)

	f, err := New(Config{PM: 2, PG: 5, PD: 1, PN: 1, Dt: 1})
	assert.NoError(err)

	pt := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	assert.NoError(f.SetParticles(pt))

	// single landmark at the origin: particles close to range 3 win
	assert.NoError(f.Update(mat.NewDense(1, 1, nil), mat.NewDense(1, 1, []float64{3})))

	var indices []int
	f.Resampler = func(w []float64, src xrand.Source) []int {
		indices = rand.Systematic(w, src)
		return indices
	}
	assert.NoError(f.Resample())
	assert.Len(indices, 5)

	res := f.Particles()
	for i, idx := range indices {
		assert.Equal(pt.RawRowView(idx), res.RawRowView(i))
	}
	for _, w := range f.Weights() {
		assert.Equal(1/5.0, w)
	}

	f.Resampler = func(w []float64, src xrand.Source) []int { return nil }
	assert.Error(f.Resample())
}

func TestEstimate(t *testing.T) {
	assert := assert.New(t)

	f, err := New(Config{PM: 2, PG: 4, PD: 2, PN: 1})
	assert.NoError(err)
	assert.NoError(f.SetParticles(mat.NewDense(4, 2, []float64{
		1, 0,
		2, 0,
		3, 1,
		4, 1,
	})))

	mean, variance := f.Estimate()
	assert.InDeltaSlice([]float64{2.5, 0.5}, mean, 1e-12)
	assert.InDeltaSlice([]float64{1.25, 0.25}, variance, 1e-12)
}

func TestRegularize(t *testing.T) {
	assert := assert.New(t)

	f, err := New(Config{PM: 2, PG: 500, PD: 2, PN: 1})
	assert.NoError(err)
	f.SetRandomSeed(9)
	f.Create = particle.CreateGaussian
	assert.NoError(f.CreateParticles([]float64{1, 1, -1, 0.5}))

	before := f.Particles()
	assert.NoError(f.Regularize(0))
	after := f.Particles()
	assert.False(mat.Equal(before, after))

	mean, _ := f.Estimate()
	assert.InDeltaSlice([]float64{1, -1}, mean, 0.3)
	assert.Less(AlphaGauss(2, 500), 1.0)
}

func TestRobotLocalization(t *testing.T) {
	assert := assert.New(t)

	f, err := New(c)
	assert.NoError(err)
	f.SetRandomSeed(42)
	f.Create = particle.CreateGaussian
	f.Fx = particle.MoveDiffDrive
	f.Q = []float64{0.05, 0.1}
	f.R = []float64{0.1}
	assert.NoError(f.CreateParticles([]float64{0, 0.5, 0, 0.5, math.Pi / 4, 0.1}))

	u := []float64{1.0, 0.0}
	assert.NoError(f.SetU(u))

	noise := distuv.Normal{Mu: 0, Sigma: 0.1, Src: xrand.NewSource(7)}
	robot := []float64{0, 0, math.Pi / 4}
	z := mat.NewDense(4, 1, nil)

	for k := 0; k < 15; k++ {
		robot[0] += math.Cos(robot[2]) * u[0] * c.Dt
		robot[1] += math.Sin(robot[2]) * u[0] * c.Dt
		for l := 0; l < 4; l++ {
			z.Set(l, 0, floats.Distance(robot[:2], lms.RawRowView(l), 2)+noise.Rand())
		}

		f.Predict()
		assert.NoError(f.Update(lms, z))
		assert.InDelta(1.0, floats.Sum(f.Weights()), 1e-5)

		if f.Neff() < float64(c.PG)/2 {
			assert.NoError(f.Resample())
		}
	}

	mean, _ := f.Estimate()
	assert.InDeltaSlice(robot[:2], mean, 0.5)
}
