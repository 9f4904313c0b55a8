package particle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestCreate(t *testing.T) {
	assert := assert.New(t)

	pt := mat.NewDense(1000, 2, nil)
	src := rand.NewSource(1)

	assert.Error(CreateUniform(pt, []float64{0, 1}, src))
	assert.Error(CreateUniform(pt, []float64{0, 1, 3, 2}, src))
	assert.NoError(CreateUniform(pt, []float64{0, 1, -5, 5}, src))

	for r := 0; r < 1000; r++ {
		assert.True(pt.At(r, 0) >= 0 && pt.At(r, 0) < 1)
		assert.True(pt.At(r, 1) >= -5 && pt.At(r, 1) < 5)
	}

	assert.Error(CreateGaussian(pt, []float64{0, 1}, src))
	assert.Error(CreateGaussian(pt, []float64{0, -1, 0, 1}, src))
	assert.NoError(CreateGaussian(pt, []float64{3, 0.5, -2, 0}, src))

	mean, std := stat.MeanStdDev(mat.Col(nil, 0, pt), nil)
	assert.InDelta(3.0, mean, 0.1)
	assert.InDelta(0.5, std, 0.1)
	for _, v := range mat.Col(nil, 1, pt) {
		assert.Equal(-2.0, v)
	}
}

func TestMoveDiffDrive(t *testing.T) {
	assert := assert.New(t)

	pt := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		1, 1, math.Pi,
	})

	// no noise: quarter turn per step at unit speed
	MoveDiffDrive(pt, []float64{1, math.Pi / 2}, []float64{0, 0}, 1.0, rand.NewSource(1))
	assert.InDelta(0.0, pt.At(0, 0), 1e-12)
	assert.InDelta(1.0, pt.At(0, 1), 1e-12)
	assert.InDelta(math.Pi/2, pt.At(0, 2), 1e-12)

	assert.InDelta(1.0, pt.At(1, 0), 1e-12)
	assert.InDelta(0.0, pt.At(1, 1), 1e-12)
	assert.InDelta(3*math.Pi/2, pt.At(1, 2), 1e-12)

	pt = mat.NewDense(500, 3, nil)
	for k := 0; k < 20; k++ {
		MoveDiffDrive(pt, []float64{1, -0.7}, []float64{0.3, 0.1}, 0.5, rand.NewSource(uint64(k+1)))
	}
	for _, h := range mat.Col(nil, 2, pt) {
		assert.True(h >= 0 && h < 2*math.Pi)
	}
}

func TestMoveLinear(t *testing.T) {
	assert := assert.New(t)

	pt := mat.NewDense(5000, 2, nil)
	MoveLinear(pt, nil, []float64{0.5}, 0.1, rand.NewSource(3))

	for _, v := range mat.Col(nil, 0, pt) {
		assert.InDelta(0.1, v, 1e-15)
	}
	_, std := stat.MeanStdDev(mat.Col(nil, 1, pt), nil)
	assert.InDelta(0.5, std, 0.05)

	before := mat.DenseCopyOf(pt)
	Identity(pt, nil, nil, 1.0, nil)
	assert.True(mat.Equal(before, pt))
}

func TestWrapHeading(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		in  float64
		exp float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{2*math.Pi + 1, 1},
		{-1, 2*math.Pi - 1},
		{-4*math.Pi - 1, 2*math.Pi - 1},
	}

	for _, tc := range testCases {
		assert.InDelta(tc.exp, WrapHeading(tc.in), 1e-9)
	}
}

func TestObserveWeight(t *testing.T) {
	assert := assert.New(t)

	h := RangeObserve([]float64{1, 1, 0.3}, []float64{4, 5}, 2)
	assert.Equal([]float64{5}, h)

	w := Weight([]float64{5}, []float64{5}, []float64{0.5})
	assert.InDelta(1/(0.5*0.5*math.Sqrt(2*math.Pi)), w, 1e-12)

	near := Weight([]float64{5}, []float64{5.1}, []float64{0.5})
	far := Weight([]float64{5}, []float64{7}, []float64{0.5})
	assert.Greater(near, far)
}
