package array

import "fmt"

// Mask is a boolean array used to select positions of an Array.
type Mask struct {
	shape []int
	data  []bool
}

// NewMask creates a mask of the given shape with all positions unselected.
func NewMask(shape ...int) (*Mask, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	return &Mask{
		shape: append([]int(nil), shape...),
		data:  make([]bool, n),
	}, nil
}

// Shape returns a copy of the mask shape.
func (m *Mask) Shape() []int {
	return append([]int(nil), m.shape...)
}

// Data returns the underlying row-major storage.
func (m *Mask) Data() []bool {
	return m.data
}

// Set marks position idx as selected (or not).
func (m *Mask) Set(v bool, idx ...int) {
	m.data[offset(m.shape, idx)] = v
}

// At reports whether position idx is selected.
func (m *Mask) At(idx ...int) bool {
	return m.data[offset(m.shape, idx)]
}

// Count returns the number of selected positions.
func (m *Mask) Count() int {
	c := 0
	for _, v := range m.data {
		if v {
			c++
		}
	}

	return c
}

func offset(shape, idx []int) int {
	if len(idx) != len(shape) {
		panic(fmt.Sprintf("array: %d indices for rank %d", len(idx), len(shape)))
	}

	off := 0
	for k, i := range idx {
		if i < 0 || i >= shape[k] {
			panic(fmt.Sprintf("array: index %d out of range [0, %d) on axis %d", i, shape[k], k))
		}
		off = off*shape[k] + i
	}

	return off
}

// MaskedCopy copies the src elements selected by srcMask into the dst positions
// selected by dstMask. Both selections are walked in row-major order and the k-th
// selected destination receives the k-th selected source; copying stops when either
// selection is exhausted. Unselected destination positions are left untouched.
// It returns the number of copied elements and an error if the four shapes differ.
func MaskedCopy(dst *Array, dstMask *Mask, src *Array, srcMask *Mask) (int, error) {
	if !equalShape(dst.shape, dstMask.shape) ||
		!equalShape(dst.shape, src.shape) ||
		!equalShape(dst.shape, srcMask.shape) {
		return 0, fmt.Errorf("%w: dst %v, dst mask %v, src %v, src mask %v",
			ErrShape, dst.shape, dstMask.shape, src.shape, srcMask.shape)
	}

	n, d, s := 0, 0, 0
	for {
		for d < len(dstMask.data) && !dstMask.data[d] {
			d++
		}
		for s < len(srcMask.data) && !srcMask.data[s] {
			s++
		}
		if d == len(dstMask.data) || s == len(srcMask.data) {
			return n, nil
		}
		dst.data[d] = src.data[s]
		n++
		d++
		s++
	}
}
