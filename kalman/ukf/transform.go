package ukf

import (
	"gonum.org/v1/gonum/mat"
)

// MeanFunc returns the weighted mean of the sigma points stored in rows of sigmas.
type MeanFunc func(sigmas *mat.Dense, wm []float64) []float64

// Mean is the arithmetic MeanFunc.
func Mean(sigmas *mat.Dense, wm []float64) []float64 {
	_, c := sigmas.Dims()
	mean := make([]float64, c)
	for k, w := range wm {
		row := sigmas.RawRowView(k)
		for j := range mean {
			mean[j] += w * row[j]
		}
	}

	return mean
}

// Transform is the unscented transform
type Transform struct {
	// Mean computes the weighted mean of sigma points
	Mean MeanFunc
	// Residual computes differences between sigma points and the mean
	Residual ResidualFunc
}

// NewTransform returns unscented transform using arithmetic mean and residual.
func NewTransform() *Transform {
	return &Transform{
		Mean:     Mean,
		Residual: Residual,
	}
}

// Apply returns the mean and covariance of the sigma points stored in rows of sigmas
// given the mean weights wm and covariance weights wc. If noise is not nil
// it is added to the covariance.
func (t *Transform) Apply(sigmas *mat.Dense, wm, wc []float64, noise mat.Matrix) (*mat.VecDense, *mat.Dense) {
	meanFn, resFn := t.Mean, t.Residual
	if meanFn == nil {
		meanFn = Mean
	}
	if resFn == nil {
		resFn = Residual
	}

	mean := meanFn(sigmas, wm)
	n := len(mean)

	cov := mat.NewDense(n, n, nil)
	for k, w := range wc {
		d := resFn(sigmas.RawRowView(k), mean)
		for i := 0; i < n; i++ {
			wd := w * d[i]
			for j := 0; j < n; j++ {
				cov.Set(i, j, cov.At(i, j)+wd*d[j])
			}
		}
	}

	if noise != nil {
		cov.Add(cov, noise)
	}

	return mat.NewVecDense(n, mean), cov
}
