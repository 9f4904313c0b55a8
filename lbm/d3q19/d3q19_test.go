package d3q19

import (
	"testing"

	"github.com/milosgajdos/go-physim/array"
	"github.com/stretchr/testify/assert"
)

func plate() [][3]int {
	var b [][3]int
	for y := 3; y < 9; y++ {
		for z := 2; z < 6; z++ {
			b = append(b, [3]int{y, 6, z})
		}
	}

	return b
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	v, err := New(Config{Ny: 12, Nx: 0, Nz: 8, Nu: 0.05, U0: 0.05})
	assert.Nil(v)
	assert.Error(err)

	// z out of range
	v, err = New(Config{Ny: 12, Nx: 24, Nz: 8, Nu: 0.05, U0: 0.05, Barrier: [][3]int{{1, 1, 8}}})
	assert.Nil(v)
	assert.Error(err)

	v, err = New(Config{Ny: 12, Nx: 24, Nz: 8, Nu: 0.05, U0: 0.05, Barrier: plate()})
	assert.NotNil(v)
	assert.NoError(err)
}

func TestMassPreservation(t *testing.T) {
	assert := assert.New(t)

	v, err := New(Config{Ny: 6, Nx: 10, Nz: 4, Nu: 0.05, U0: 0.05})
	assert.NoError(err)

	for i := 0; i < 100; i++ {
		_, err := v.Step()
		assert.NoError(err)
	}

	for _, r := range v.Density().Data() {
		assert.InDelta(1.0, r, 0.01)
	}

	_, _, vx := v.Velocity()
	for _, u := range vx.Data() {
		assert.InDelta(0.05, u, 1e-9)
	}
}

func TestPlateWake(t *testing.T) {
	assert := assert.New(t)

	v, err := New(Config{Ny: 12, Nx: 24, Nz: 8, Nu: 0.05, U0: 0.05, Barrier: plate()})
	assert.NoError(err)

	var c Curl
	for i := 0; i < 30; i++ {
		c, err = v.Step()
		assert.NoError(err)
	}

	for _, a := range []*array.Array{c.Y, c.X, c.Z} {
		assert.Equal([]int{8, 12, 24}, a.Shape())
		assert.True(a.IsFinite())
	}
	assert.Greater(c.Y.MaxAbs()+c.X.MaxAbs()+c.Z.MaxAbs(), 0.0)
	assert.Equal(30, v.Steps())
}

func TestCurlFormulas(t *testing.T) {
	assert := assert.New(t)

	v, err := New(Config{Ny: 5, Nx: 6, Nz: 4, Nu: 0.05, U0: 0.05, Barrier: [][3]int{{2, 2, 1}}})
	assert.NoError(err)

	c, err := v.Step()
	assert.NoError(err)

	vz, vy, vx := v.Velocity()
	r := array.MustRoll

	want := array.MustNew(4, 5, 6)
	for _, tt := range []struct {
		sign float64
		a    *array.Array
	}{
		{1, r(vz, -1, 1)}, {-1, r(vz, 1, 1)}, {-1, r(vx, -1, 2)}, {1, r(vx, 1, 2)},
	} {
		tt.a.Scale(tt.sign)
		assert.NoError(array.Add(want, want, tt.a))
	}
	assert.True(array.EqualApprox(want, c.Y, 1e-15))

	want.Fill(0)
	for _, tt := range []struct {
		sign float64
		a    *array.Array
	}{
		{1, r(vy, -1, 1)}, {-1, r(vy, 1, 2)}, {-1, r(vz, -1, 0)}, {1, r(vz, 1, 0)},
	} {
		tt.a.Scale(tt.sign)
		assert.NoError(array.Add(want, want, tt.a))
	}
	assert.True(array.EqualApprox(want, c.X, 1e-15))

	want.Fill(0)
	for _, tt := range []struct {
		sign float64
		a    *array.Array
	}{
		{1, r(vy, -1, 2)}, {-1, r(vy, 1, 1)}, {-1, r(vx, -1, 0)}, {1, r(vx, 1, 0)},
	} {
		tt.a.Scale(tt.sign)
		assert.NoError(array.Add(want, want, tt.a))
	}
	assert.True(array.EqualApprox(want, c.Z, 1e-15))
}

func TestParallelMatchesSerial(t *testing.T) {
	assert := assert.New(t)

	c := Config{Ny: 12, Nx: 24, Nz: 8, Nu: 0.05, U0: 0.05, Barrier: plate()}
	serial, err := New(c)
	assert.NoError(err)

	c.Workers = 3
	parallel, err := New(c)
	assert.NoError(err)

	for i := 0; i < 10; i++ {
		cs, err := serial.Step()
		assert.NoError(err)
		cp, err := parallel.Step()
		assert.NoError(err)
		assert.True(array.Equal(cs.X, cp.X))
		assert.True(array.Equal(cs.Y, cp.Y))
		assert.True(array.Equal(cs.Z, cp.Z))
	}
}
