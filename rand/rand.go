// Package rand provides correlated Gaussian draws and the resampling
// strategies used by particle filters. All functions draw their randomness
// from the supplied source so that runs are reproducible.
package rand

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResampleFunc returns len(w) indices drawn according to the weights w
type ResampleFunc func(w []float64, src rand.Source) []int

// NewSource returns a source seeded with seed or with the current time if seed is 0.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.NewSource(seed)
}

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov.
// It returns matrix which contains the randomly generated samples stored in its columns.
// It fails with error if n is non-positive or if SVD factorization of cov fails.
func WithCovN(cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	// SVD rather than Cholesky: cov may be (almost) singular
	var svd mat.SVD
	if ok := svd.Factorize(cov, mat.SVDFull); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	U := new(mat.Dense)
	svd.UTo(U)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}
	diag := mat.NewDiagDense(len(vals), vals)
	U.Mul(U, diag)

	rnd := rand.New(src)
	rows, _ := cov.Dims()
	data := make([]float64, rows*n)
	for i := range data {
		data[i] = rnd.NormFloat64()
	}
	samples := mat.NewDense(rows, n, data)
	samples.Mul(U, samples)

	return samples, nil
}

// RouletteDrawN draws n numbers randomly from a probability mass function (PMF) defined by weights in p.
// RouletteDrawN implements the Roulette Wheel Draw a.k.a. Fitness Proportionate Selection:
// - https://en.wikipedia.org/wiki/Fitness_proportionate_selection
// - http://www.keithschwarz.com/darts-dice-coins/
// It returns a slice of n indices into p.
// It fails with error if p is empty.
func RouletteDrawN(p []float64, n int, src rand.Source) ([]int, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("invalid probability weights: %v", p)
	}

	cdf := make([]float64, len(p))
	floats.CumSum(cdf, p)

	rnd := rand.New(src)
	indices := make([]int, n)
	for i := range indices {
		// scale by the total mass instead of normalizing cdf
		val := rnd.Float64() * cdf[len(cdf)-1]
		indices[i] = search(cdf, val)
	}

	return indices, nil
}

// Multinomial draws len(w) indices independently from the weights w.
func Multinomial(w []float64, src rand.Source) []int {
	indices, err := RouletteDrawN(w, len(w), src)
	if err != nil {
		return nil
	}

	return indices
}

// Residual takes floor(N*w[i]) copies of every index deterministically
// and draws the remaining indices from the residual weights.
func Residual(w []float64, src rand.Source) []int {
	n := len(w)
	if n == 0 {
		return nil
	}

	total := floats.Sum(w)
	indices := make([]int, 0, n)
	residual := make([]float64, n)
	for i, wi := range w {
		scaled := float64(n) * wi / total
		copies := int(math.Floor(scaled))
		for k := 0; k < copies; k++ {
			indices = append(indices, i)
		}
		residual[i] = scaled - float64(copies)
	}

	rest := n - len(indices)
	if rest == 0 {
		return indices
	}

	drawn, err := RouletteDrawN(residual, rest, src)
	if err != nil {
		return nil
	}

	return append(indices, drawn...)
}

// Stratified divides [0, 1) into N strata and draws one position from each.
func Stratified(w []float64, src rand.Source) []int {
	rnd := rand.New(src)

	return sweep(w, func(i int) float64 {
		return float64(i) + rnd.Float64()
	})
}

// Systematic draws a single offset and places N evenly spaced positions in [0, 1).
func Systematic(w []float64, src rand.Source) []int {
	u := rand.New(src).Float64()

	return sweep(w, func(i int) float64 {
		return float64(i) + u
	})
}

// sweep walks the weight CDF with the ordered positions pos(i)/N.
func sweep(w []float64, pos func(i int) float64) []int {
	n := len(w)
	if n == 0 {
		return nil
	}

	cdf := make([]float64, n)
	floats.CumSum(cdf, w)
	total := cdf[n-1]

	indices := make([]int, n)
	j := 0
	for i := range indices {
		p := pos(i) / float64(n) * total
		for j < n-1 && cdf[j] <= p {
			j++
		}
		indices[i] = j
	}

	return indices
}

// search returns the smallest index i such that cdf[i] > val.
func search(cdf []float64, val float64) int {
	i := sort.Search(len(cdf), func(i int) bool { return cdf[i] > val })
	if i == len(cdf) {
		i--
	}

	return i
}
