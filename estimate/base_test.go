package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewBase(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 1.0})
	cov := mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, 1.0})

	b, err := NewBase(state)
	assert.NotNil(b)
	assert.NoError(err)
	assert.True(mat.Equal(mat.NewSymDense(2, nil), b.Cov()))

	b, err = NewBase(nil)
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(state, cov)
	assert.NotNil(b)
	assert.NoError(err)

	b, err = NewBaseWithCov(state, mat.NewSymDense(1, []float64{1.0}))
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBaseWithCov(state, mat.NewDense(2, 3, nil))
	assert.Nil(b)
	assert.Error(err)
}

func TestValCov(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 2.0})
	cov := mat.NewDense(2, 2, []float64{4.0, 2.0, 2.0, 9.0})

	b, err := NewBaseWithCov(state, cov)
	assert.NoError(err)

	v := b.Val()
	assert.True(mat.Equal(state, v))

	// returned values are copies
	v.(*mat.VecDense).SetVec(0, 10.0)
	assert.Equal(1.0, b.Val().AtVec(0))

	c := b.Cov()
	assert.True(mat.Equal(cov, c))
	c.(*mat.SymDense).SetSym(0, 0, 100.0)
	assert.Equal(4.0, b.Cov().At(0, 0))

	assert.InDeltaSlice([]float64{2.0, 3.0}, b.Std(), 1e-15)
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	str := `Estimate{
Val=[1  2]
Cov=⎡1  0⎤
    ⎣0  1⎦
}`
	b, err := NewBaseWithCov(mat.NewVecDense(2, []float64{1, 2}), mat.NewSymDense(2, []float64{1, 0, 0, 1}))
	assert.NoError(err)
	assert.Equal(str, b.String())
}
