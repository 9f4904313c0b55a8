package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestKinematic(t *testing.T) {
	assert := assert.New(t)

	pos, vel, err := Kinematic([]float64{0, 0}, []float64{1, 0}, 1.0,
		Segment{Steps: 3},
		Segment{Steps: 2, Acc: []float64{0, 2}},
	)
	assert.NoError(err)

	r, c := pos.Dims()
	assert.Equal(5, r)
	assert.Equal(2, c)

	assert.Equal([]float64{3, 0}, pos.RawRowView(2))
	assert.Equal([]float64{4, 1}, pos.RawRowView(3))
	assert.Equal([]float64{1, 2}, vel.RawRowView(3))
	assert.Equal([]float64{5, 4}, pos.RawRowView(4))
	assert.Equal([]float64{1, 4}, vel.RawRowView(4))

	for _, tc := range []struct {
		x0, v0 []float64
		segs   []Segment
	}{
		{x0: nil, v0: nil, segs: []Segment{{Steps: 1}}},
		{x0: []float64{0}, v0: []float64{0, 1}, segs: []Segment{{Steps: 1}}},
		{x0: []float64{0}, v0: []float64{1}, segs: []Segment{{Steps: 0}}},
		{x0: []float64{0}, v0: []float64{1}, segs: []Segment{{Steps: 1, Acc: []float64{1, 1}}}},
		{x0: []float64{0}, v0: []float64{1}},
	} {
		_, _, err := Kinematic(tc.x0, tc.v0, 1.0, tc.segs...)
		assert.Error(err)
	}
}

func TestConstantVelocityMeasure(t *testing.T) {
	assert := assert.New(t)

	truth, err := ConstantVelocity([]float64{0}, []float64{2}, 0.5, 1000)
	assert.NoError(err)
	assert.Equal(1000.0, truth.At(999, 0))

	z := Measure(truth, 0.5, 1)
	diff := &mat.Dense{}
	diff.Sub(z, truth)

	d := mat.Col(nil, 0, diff)
	assert.InDelta(0.0, stat.Mean(d, nil), 0.05)
	assert.InDelta(0.5, stat.StdDev(d, nil), 0.05)

	// seeded noise is reproducible
	assert.True(mat.Equal(z, Measure(truth, 0.5, 1)))
	assert.True(mat.Equal(truth, Measure(truth, 0, 1)))
}
