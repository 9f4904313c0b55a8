package array

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoll(t *testing.T) {
	assert := assert.New(t)

	a := seq(3, 4)

	r, err := Roll(a, 1, 1)
	assert.NoError(err)
	assert.Equal([]float64{3, 0, 1, 2, 7, 4, 5, 6, 11, 8, 9, 10}, r.Data())

	r, err = Roll(a, -1, 0)
	assert.NoError(err)
	assert.Equal([]float64{4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2, 3}, r.Data())

	// element i of the result holds element (i - s) mod N of the input
	r, err = Roll(a, 2, 1)
	assert.NoError(err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(a.At(i, ((j-2)%4+4)%4), r.At(i, j))
		}
	}
}

func TestRollErrors(t *testing.T) {
	assert := assert.New(t)

	a := seq(3, 4)

	r, err := Roll(a, 1, 2)
	assert.Nil(r)
	assert.True(errors.Is(err, ErrAxis))

	r, err = Roll(a, 1, -1)
	assert.Nil(r)
	assert.True(errors.Is(err, ErrAxis))

	r, err = Roll(seq(5), 1, 0)
	assert.Nil(r)
	assert.True(errors.Is(err, ErrRank))

	assert.True(errors.Is(RollTo(a, a, 1, 0), ErrAlias))

	// partially overlapping views of one buffer
	buf := make([]float64, 8)
	lo, err := FromSlice(buf[0:6], 2, 3)
	assert.NoError(err)
	hi, err := FromSlice(buf[2:8], 2, 3)
	assert.NoError(err)
	assert.True(errors.Is(RollTo(hi, lo, 1, 1), ErrAlias))
	assert.True(errors.Is(RollTo(lo, hi, 1, 1), ErrAlias))

	// adjacent slabs share a backing array but no elements
	b := seq(2, 2, 3)
	assert.NoError(RollTo(b.Slab(1), b.Slab(0), 1, 1))
	assert.Equal([]float64{2, 0, 1, 5, 3, 4}, b.Slab(1).Data())
	assert.True(errors.Is(RollTo(MustNew(4, 3), a, 1, 0), ErrShape))
}

func TestRollZeroExtent(t *testing.T) {
	assert := assert.New(t)

	a := MustNew(0, 3)
	r, err := Roll(a, 5, 0)
	assert.NoError(err)
	assert.Equal([]int{0, 3}, r.Shape())
}

func TestRollProperties(t *testing.T) {
	assert := assert.New(t)

	for _, a := range []*Array{seq(5, 7), seq(3, 4, 5), seq(2, 3, 4, 5)} {
		for k := 0; k < a.Rank(); k++ {
			n := a.Dim(k)

			assert.True(Equal(a, MustRoll(a, 0, k)))
			assert.True(Equal(a, MustRoll(a, n, k)))
			assert.True(Equal(a, MustRoll(a, -3*n, k)))

			for _, s := range []int{1, -1, 2, -4, 9} {
				assert.True(Equal(a, MustRoll(MustRoll(a, s, k), -s, k)))
				for _, s2 := range []int{1, -2, 3} {
					assert.True(Equal(MustRoll(MustRoll(a, s, k), s2, k), MustRoll(a, s+s2, k)))
				}
			}
		}
	}
}

func TestRollToSlab(t *testing.T) {
	assert := assert.New(t)

	f := seq(2, 3, 4)
	dst := MustNew(3, 4)

	assert.NoError(RollTo(dst, f.Slab(1), 1, 0))
	assert.True(Equal(MustRoll(f.Slab(1), 1, 0), dst))

	// roll must not have touched the parent
	assert.True(Equal(seq(2, 3, 4), f))
}
