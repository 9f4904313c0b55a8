package sim

import (
	"testing"

	"github.com/milosgajdos/go-physim/array"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewTrackPlot(t *testing.T) {
	assert := assert.New(t)

	truth := mat.NewDense(3, 2, nil)
	measure := mat.NewDense(3, 2, nil)
	filter := mat.NewDense(3, 2, nil)

	plt, err := NewTrackPlot(truth, measure, filter)
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = NewTrackPlot(nil, nil, nil)
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewTrackPlot(truth, mat.NewDense(3, 1, nil), filter)
	assert.Nil(plt)
	assert.Error(err)
}

func TestNewSeriesPlot(t *testing.T) {
	assert := assert.New(t)

	series := mat.NewDense(4, 2, []float64{0.5, 0.5, 0.6, 0.4, 0.7, 0.3, 0.8, 0.2})

	plt, err := NewSeriesPlot("mu", series, "ca", "cv")
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = NewSeriesPlot("mu", series, "ca")
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewSeriesPlot("mu", nil)
	assert.Nil(plt)
	assert.Error(err)
}

func TestNewFieldPlot(t *testing.T) {
	assert := assert.New(t)

	a := array.MustNew(4, 6)
	a.Set(1.5, 1, 2)
	a.Set(-0.5, 3, 5)

	plt, err := NewFieldPlot("curl", a)
	assert.NotNil(plt)
	assert.NoError(err)

	g := field{a: a}
	c, r := g.Dims()
	assert.Equal(6, c)
	assert.Equal(4, r)
	assert.Equal(1.5, g.Z(2, 1))
	assert.Equal(5.0, g.X(5))

	plt, err = NewFieldPlot("curl", nil)
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewFieldPlot("curl", array.MustNew(2, 2, 2))
	assert.Nil(plt)
	assert.Error(err)
}
