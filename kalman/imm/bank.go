package imm

import (
	"fmt"

	"github.com/milosgajdos/go-physim/estimate"
	"github.com/milosgajdos/go-physim/kalman"
	"gonum.org/v1/gonum/mat"
)

// Bank runs a set of filters through an IMM estimator
type Bank struct {
	imm     *IMM
	filters []*kalman.Harness
}

// NewBank creates new filter bank with initial mode probabilities mu0
// and mode transition matrix m and returns it.
// It returns error if the filters do not share state dimension
// or if the IMM can not be created.
func NewBank(filters []kalman.Filter, mu0 []float64, m *mat.Dense) (*Bank, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("empty filter bank")
	}

	if len(filters) != len(mu0) {
		return nil, fmt.Errorf("filter count %d does not match mode count %d", len(filters), len(mu0))
	}

	dimX, _, _ := filters[0].State().Dims()
	hs := make([]*kalman.Harness, len(filters))
	for i, f := range filters {
		if d, _, _ := f.State().Dims(); d != dimX {
			return nil, fmt.Errorf("invalid filter %d state dimension: %d", i, d)
		}
		hs[i] = kalman.NewHarness(f)
	}

	imm, err := New(mu0, m, dimX)
	if err != nil {
		return nil, err
	}

	b := &Bank{
		imm:     imm,
		filters: hs,
	}
	b.pull()
	imm.Estimate()

	return b, nil
}

// IMM returns the underlying estimator.
func (b *Bank) IMM() *IMM {
	return b.imm
}

// Filters returns the filter harnesses of the bank.
func (b *Bank) Filters() []*kalman.Harness {
	return b.filters
}

// Predict mixes the filter states, runs every filter prediction
// and computes the predicted mixed estimate.
func (b *Bank) Predict() error {
	b.pull()
	b.imm.Predict()
	b.push()

	for i, f := range b.filters {
		if err := f.Predict(); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
	}

	b.pull()
	b.imm.Estimate()

	return nil
}

// Update runs every filter update with measurement z, records
// the filter likelihoods and updates the mode probabilities.
func (b *Bank) Update(z mat.Vector) error {
	for i, f := range b.filters {
		if err := f.State().SetZ(z); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}

		if err := f.Update(); err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
		b.imm.L[i] = f.State().Likelihood
	}

	b.pull()

	return b.imm.Update()
}

// Run runs Predict followed by Update with measurement z.
func (b *Bank) Run(z mat.Vector) error {
	if err := b.Predict(); err != nil {
		return err
	}

	return b.Update(z)
}

// Estimate returns the mixed estimate.
func (b *Bank) Estimate() (*estimate.Base, error) {
	return estimate.NewBaseWithCov(b.imm.X, b.imm.P)
}

// Mu returns a copy of the mode probabilities.
func (b *Bank) Mu() []float64 {
	return append([]float64(nil), b.imm.Mu...)
}

// pull copies filter states into the estimator.
func (b *Bank) pull() {
	for i, f := range b.filters {
		s := f.State()
		b.imm.FX[i].CopyVec(s.X)
		b.imm.FP[i].Copy(s.P)
	}
}

// push copies estimator states into the filters.
func (b *Bank) push() {
	for i, f := range b.filters {
		s := f.State()
		s.X.CopyVec(b.imm.FX[i])
		s.P.Copy(b.imm.FP[i])
	}
}
