package noise

import (
	"fmt"

	"github.com/milosgajdos/go-physim/matrix"
	"gonum.org/v1/gonum/mat"
)

// DiscreteWhite returns the covariance of discretized continuous white noise
// for a kinematic model of order dim (2: position and velocity, 3: adds acceleration,
// 4: adds jerk) sampled at dt with spectral variance variance.
// The dim x dim block is repeated blocks times along the diagonal, one block per axis.
// It returns error if dim is not 2, 3 or 4 or if blocks is not positive.
func DiscreteWhite(dim int, dt, variance float64, blocks int) (*mat.Dense, error) {
	if blocks <= 0 {
		return nil, fmt.Errorf("invalid block count: %d", blocks)
	}

	var q *mat.Dense
	switch dim {
	case 2:
		q = mat.NewDense(2, 2, []float64{
			0.25 * pow(dt, 4), 0.5 * pow(dt, 3),
			0.5 * pow(dt, 3), pow(dt, 2),
		})
	case 3:
		q = mat.NewDense(3, 3, []float64{
			0.25 * pow(dt, 4), 0.5 * pow(dt, 3), 0.5 * pow(dt, 2),
			0.5 * pow(dt, 3), pow(dt, 2), dt,
			0.5 * pow(dt, 2), dt, 1,
		})
	case 4:
		q = mat.NewDense(4, 4, []float64{
			pow(dt, 6) / 36, pow(dt, 5) / 12, pow(dt, 4) / 6, pow(dt, 3) / 6,
			pow(dt, 5) / 12, pow(dt, 4) / 4, pow(dt, 3) / 2, pow(dt, 2) / 2,
			pow(dt, 4) / 6, pow(dt, 3) / 2, pow(dt, 2), dt,
			pow(dt, 3) / 6, pow(dt, 2) / 2, dt, 1,
		})
	default:
		return nil, fmt.Errorf("invalid white noise dimension: %d", dim)
	}
	q.Scale(variance, q)

	if blocks == 1 {
		return q, nil
	}

	bs := make([]mat.Matrix, blocks)
	for i := range bs {
		bs[i] = q
	}

	return matrix.BlockDiag(bs...), nil
}

func pow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}

	return r
}
