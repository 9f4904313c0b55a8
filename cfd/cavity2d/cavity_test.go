package cavity2d

import (
	"math"
	"os"
	"testing"

	"github.com/milosgajdos/go-physim/array"
	"github.com/stretchr/testify/assert"
)

var (
	config Config
)

func setup() {
	config = Config{
		Nx:  41,
		Ny:  41,
		Nit: 50,
		Rho: 1.0,
		Nu:  0.1,
		Dt:  0.001,
		Dx:  2.0 / 40,
		Dy:  2.0 / 40,
	}
}

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	c, err := New(config)
	assert.NotNil(c)
	assert.NoError(err)

	invalid := []Config{
		{Nx: 2, Ny: 41, Nit: 50, Rho: 1, Nu: 0.1, Dt: 0.001, Dx: 0.05, Dy: 0.05},
		{Nx: 41, Ny: 0, Nit: 50, Rho: 1, Nu: 0.1, Dt: 0.001, Dx: 0.05, Dy: 0.05},
		{Nx: 41, Ny: 41, Nit: -1, Rho: 1, Nu: 0.1, Dt: 0.001, Dx: 0.05, Dy: 0.05},
		{Nx: 41, Ny: 41, Nit: 50, Rho: 0, Nu: 0.1, Dt: 0.001, Dx: 0.05, Dy: 0.05},
		{Nx: 41, Ny: 41, Nit: 50, Rho: 1, Nu: 0.1, Dt: 0, Dx: 0.05, Dy: 0.05},
		{Nx: 41, Ny: 41, Nit: 50, Rho: 1, Nu: 0.1, Dt: 0.001, Dx: -1, Dy: 0.05},
	}

	for _, ic := range invalid {
		c, err := New(ic)
		assert.Nil(c)
		assert.Error(err)
	}
}

func TestCavityFlow(t *testing.T) {
	assert := assert.New(t)

	c, err := New(config)
	assert.NoError(err)

	for i := 0; i < 700; i++ {
		c.Step()
	}
	assert.Equal(700, c.Steps())

	u, v := c.Snapshot()
	nx, ny := config.Nx, config.Ny

	assert.True(u.IsFinite())
	assert.True(v.IsFinite())

	// lid
	for i := 0; i < nx; i++ {
		assert.Equal(1.0, u.At(ny-1, i))
		assert.Equal(0.0, v.At(ny-1, i))
	}

	// bottom wall
	for i := 0; i < nx; i++ {
		assert.Equal(0.0, u.At(0, i))
		assert.Equal(0.0, v.At(0, i))
	}

	// side walls below the lid
	for j := 0; j < ny-1; j++ {
		assert.Equal(0.0, u.At(j, 0))
		assert.Equal(0.0, u.At(j, nx-1))
		assert.Equal(0.0, v.At(j, 0))
		assert.Equal(0.0, v.At(j, nx-1))
	}

	peak := 0.0
	for j := 1; j < ny-1; j++ {
		for i := 1; i < nx-1; i++ {
			peak = math.Max(peak, math.Abs(u.At(j, i)))
		}
	}
	assert.True(peak >= 0.2 && peak <= 1.0, "peak interior u: %f", peak)

	// lid drags the fluid along in the row just below it
	assert.True(u.At(ny-2, nx/2) > 0)

	// pressure vanishes under the lid
	p := c.Pressure()
	for i := 0; i < nx; i++ {
		assert.Equal(0.0, p.At(ny-1, i))
	}
}

func TestNext(t *testing.T) {
	assert := assert.New(t)

	c, err := New(config)
	assert.NoError(err)

	u1, _ := c.Next()
	u2, _ := c.Next()
	assert.Equal(2, c.Steps())
	assert.False(u1 == u2)
	assert.False(array.Equal(u1, u2))

	count := 0
	for u, v := range c.All() {
		assert.Equal([]int{config.Ny, config.Nx}, u.Shape())
		assert.Equal([]int{config.Ny, config.Nx}, v.Shape())
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(5, c.Steps())
}
