package kalman

import (
	"math"

	"github.com/milosgajdos/go-physim/noise"
)

// AdjustByEpsilon scales Q up by QScaleFactor while the normalized innovation
// exceeds QAdjustParam and scales it back down once it does not.
func AdjustByEpsilon(b *Base) {
	if b.NSCount == nil || b.QScaleFactor == 0 {
		return
	}

	switch {
	case b.Epsilon > b.QAdjustParam:
		b.Q.Scale(b.QScaleFactor, b.Q)
		*b.NSCount++
	case *b.NSCount > 0:
		b.Q.Scale(1/b.QScaleFactor, b.Q)
		*b.NSCount--
	}
}

// AdjustByResidual steps Phi by QScaleFactor while |y[0]| exceeds QAdjustParam
// standard deviations sqrt(S[0,0]) and steps it back once it does not.
// Q is rebuilt as discrete white noise with variance Phi; the block order is
// 2 or 3 and is repeated to fill the state dimension.
func AdjustByResidual(b *Base) {
	if b.NSCount == nil || b.Phi == nil {
		return
	}

	order := blockOrder(b.dimX)
	if order == 0 {
		return
	}

	std := math.Sqrt(b.S.At(0, 0))
	switch {
	case math.Abs(b.Y.AtVec(0)) > b.QAdjustParam*std:
		*b.Phi += b.QScaleFactor
		*b.NSCount++
	case *b.NSCount > 0:
		*b.Phi -= b.QScaleFactor
		*b.NSCount--
	default:
		return
	}

	q, err := noise.DiscreteWhite(order, b.Dt, *b.Phi, b.dimX/order)
	if err != nil {
		return
	}
	b.Q.Copy(q)
}

func blockOrder(dimX int) int {
	switch {
	case dimX%2 == 0 && dimX <= 4:
		return 2
	case dimX%3 == 0:
		return 3
	case dimX%2 == 0:
		return 2
	}

	return 0
}
