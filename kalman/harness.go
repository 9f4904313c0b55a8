package kalman

import (
	"github.com/milosgajdos/go-physim/estimate"
	"gonum.org/v1/gonum/mat"
)

// Harness runs the per-step bookkeeping around a Filter
type Harness struct {
	f Filter
}

// NewHarness wraps f and returns it.
func NewHarness(f Filter) *Harness {
	return &Harness{f: f}
}

// Filter returns the wrapped filter.
func (h *Harness) Filter() Filter {
	return h.f
}

// State returns the wrapped filter state.
func (h *Harness) State() *Base {
	return h.f.State()
}

// Predict runs the filter prediction and applies fading memory when enabled:
// P = (P - Q) * alpha^2 + Q.
func (h *Harness) Predict() error {
	if err := h.f.Predict(); err != nil {
		return err
	}

	b := h.f.State()
	if b.Alpha != nil {
		a2 := *b.Alpha * *b.Alpha
		b.P.Sub(b.P, b.Q)
		b.P.Scale(a2, b.P)
		b.P.Add(b.P, b.Q)
	}

	return nil
}

// Update runs the filter update and then computes the measurement likelihood,
// accumulates it when enabled and adjusts process noise when enabled.
func (h *Harness) Update() error {
	if err := h.f.Update(); err != nil {
		return err
	}

	b := h.f.State()
	b.LogLikelihood, b.Likelihood = likelihood(b.Y, b.S)
	b.Epsilon = NIS(b.Y, b.S)

	if b.CumLH != nil {
		*b.CumLH *= b.Likelihood
	}

	if b.NSCount != nil && b.NoiseAdjust != nil {
		b.NoiseAdjust(b)
	}
	b.Steps++

	return nil
}

// Run sets the measurement z and runs Predict followed by Update.
func (h *Harness) Run(z mat.Vector) error {
	if err := h.Predict(); err != nil {
		return err
	}

	if err := h.f.State().SetZ(z); err != nil {
		return err
	}

	return h.Update()
}

// Estimate returns the current posterior estimate.
func (h *Harness) Estimate() (*estimate.Base, error) {
	return h.f.State().Estimate()
}
