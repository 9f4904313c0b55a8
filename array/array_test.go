package array

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(shape ...int) *Array {
	a := MustNew(shape...)
	for i := range a.data {
		a.data[i] = float64(i)
	}

	return a
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	for _, shape := range [][]int{{3}, {2, 3}, {2, 3, 4}, {2, 3, 4, 5}, {0, 3}} {
		a, err := New(shape...)
		assert.NoError(err)
		assert.Equal(shape, a.Shape())
		assert.Equal(len(shape), a.Rank())
	}

	a, err := New()
	assert.Nil(a)
	assert.True(errors.Is(err, ErrRank))

	a, err = New(1, 2, 3, 4, 5)
	assert.Nil(a)
	assert.True(errors.Is(err, ErrRank))

	a, err = New(2, -1)
	assert.Nil(a)
	assert.True(errors.Is(err, ErrShape))

	a, err = FromSlice([]float64{1, 2, 3}, 2, 2)
	assert.Nil(a)
	assert.True(errors.Is(err, ErrShape))
}

func TestAtSet(t *testing.T) {
	assert := assert.New(t)

	a := seq(2, 3, 4)
	assert.Equal(23.0, a.At(1, 2, 3))
	assert.Equal(4.0, a.At(0, 1, 0))

	a.Set(-1, 1, 0, 2)
	assert.Equal(-1.0, a.data[14])

	assert.Panics(func() { a.At(2, 0, 0) })
	assert.Panics(func() { a.At(0, 0) })
}

func TestSlab(t *testing.T) {
	assert := assert.New(t)

	a := seq(3, 2, 2)
	s := a.Slab(1)
	assert.Equal([]int{2, 2}, s.Shape())
	assert.Equal(4.0, s.At(0, 0))
	assert.Equal(7.0, s.At(1, 1))

	// slabs share storage with their parent
	s.Set(100, 0, 1)
	assert.Equal(100.0, a.At(1, 0, 1))

	assert.Panics(func() { a.Slab(3) })
	assert.Panics(func() { MustNew(4).Slab(0) })
}

func TestCloneCopyFrom(t *testing.T) {
	assert := assert.New(t)

	a := seq(2, 3)
	b := a.Clone()
	assert.True(Equal(a, b))

	b.Set(42, 0, 0)
	assert.Equal(0.0, a.At(0, 0))

	assert.NoError(a.CopyFrom(b))
	assert.Equal(42.0, a.At(0, 0))
	assert.Error(a.CopyFrom(MustNew(3, 2)))
}

func TestElementwise(t *testing.T) {
	assert := assert.New(t)

	a := seq(2, 2)
	b := seq(2, 2)
	dst := MustNew(2, 2)

	assert.NoError(Add(dst, a, b))
	assert.Equal([]float64{0, 2, 4, 6}, dst.Data())

	assert.NoError(Sub(dst, a, b))
	assert.Equal([]float64{0, 0, 0, 0}, dst.Data())

	assert.Error(Add(MustNew(4, 1), a, b))

	a.Scale(-2)
	assert.Equal(6.0, a.MaxAbs())
	assert.Equal(-12.0, a.Sum())
	assert.True(a.IsFinite())
}
