package ukf

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NormalizeAngle wraps angle a into [-pi, pi).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}

	return a - math.Pi
}

// AngularResidual returns a ResidualFunc which subtracts arithmetically
// and wraps the components at the given indices into [-pi, pi).
func AngularResidual(indices ...int) ResidualFunc {
	return func(a, b []float64) []float64 {
		d := Residual(a, b)
		for _, i := range indices {
			d[i] = NormalizeAngle(d[i])
		}

		return d
	}
}

// AngularMean returns a MeanFunc which averages the components at the given
// indices on the unit circle and all other components arithmetically.
func AngularMean(indices ...int) MeanFunc {
	return func(sigmas *mat.Dense, wm []float64) []float64 {
		mean := Mean(sigmas, wm)
		for _, i := range indices {
			var s, c float64
			for k, w := range wm {
				a := sigmas.At(k, i)
				s += w * math.Sin(a)
				c += w * math.Cos(a)
			}
			mean[i] = math.Atan2(s, c)
		}

		return mean
	}
}
