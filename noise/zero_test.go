package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestZero(t *testing.T) {
	assert := assert.New(t)

	for _, n := range []int{1, 2, 4} {
		z, err := NewZero(n)
		assert.NoError(err)

		s := z.Sample()
		assert.Equal(n, s.Len())
		assert.Zero(mat.Norm(s, 2))

		cov := z.Cov()
		assert.Equal(n, cov.SymmetricDim())
		assert.Zero(mat.Norm(cov, 1))

		assert.Equal(make([]float64, n), z.Mean())

		// callers may write to returned values
		z.Mean()[0] = 10
		assert.Zero(z.Mean()[0])

		assert.NoError(z.Reset())
		assert.Zero(mat.Norm(z.Sample(), 2))
	}

	z, err := NewZero(-10)
	assert.Nil(z)
	assert.Error(err)
}

func TestZeroString(t *testing.T) {
	assert := assert.New(t)

	str := `Zero{
Mean=[0 0]
Cov=⎡0  0⎤
    ⎣0  0⎦
}`

	z, err := NewZero(2)
	assert.NoError(err)
	assert.Equal(str, z.String())
}
