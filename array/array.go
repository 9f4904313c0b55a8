// Package array implements dense row-major floating point arrays of rank 1 to 4
// together with the periodic shift and masked copy primitives used by the
// finite difference and lattice Boltzmann kernels.
package array

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const maxRank = 4

var (
	// ErrRank is returned when an array of unsupported rank is requested or supplied.
	ErrRank = errors.New("unsupported array rank")
	// ErrAxis is returned when an axis is out of range for the array rank.
	ErrAxis = errors.New("axis out of range")
	// ErrShape is returned when array shapes do not agree.
	ErrShape = errors.New("shape mismatch")
	// ErrAlias is returned when source and destination share storage.
	ErrAlias = errors.New("source and destination alias")
)

// Array is a dense row-major array of float64 values.
// Slabs returned by Slab share storage with their parent.
type Array struct {
	shape   []int
	strides []int
	data    []float64
}

// New creates a zero-valued array of the given shape and returns it.
// It returns error if the rank is not between 1 and 4 or if any dimension is negative.
func New(shape ...int) (*Array, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	return &Array{
		shape:   append([]int(nil), shape...),
		strides: strides(shape),
		data:    make([]float64, n),
	}, nil
}

// FromSlice wraps data into an array of the given shape without copying it.
// It returns error if len(data) does not match the shape.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	if len(data) != n {
		return nil, fmt.Errorf("%w: %d elements for shape %v", ErrShape, len(data), shape)
	}

	return &Array{
		shape:   append([]int(nil), shape...),
		strides: strides(shape),
		data:    data,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(shape ...int) *Array {
	a, err := New(shape...)
	if err != nil {
		panic(err)
	}

	return a
}

func size(shape []int) (int, error) {
	if len(shape) == 0 || len(shape) > maxRank {
		return 0, fmt.Errorf("%w: %d", ErrRank, len(shape))
	}

	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= d
	}

	return n, nil
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}

	return s
}

// Shape returns a copy of the array shape.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Dim returns the extent of axis k.
func (a *Array) Dim(k int) int {
	return a.shape[k]
}

// Rank returns the number of axes.
func (a *Array) Rank() int {
	return len(a.shape)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// Data returns the underlying storage in row-major order.
func (a *Array) Data() []float64 {
	return a.data
}

// Offset returns the storage offset of the element at idx.
// It panics if the number of indices does not match the rank or an index is out of range.
func (a *Array) Offset(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("array: %d indices for rank %d", len(idx), len(a.shape)))
	}

	off := 0
	for k, i := range idx {
		if i < 0 || i >= a.shape[k] {
			panic(fmt.Sprintf("array: index %d out of range [0, %d) on axis %d", i, a.shape[k], k))
		}
		off += i * a.strides[k]
	}

	return off
}

// At returns the element at idx.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.Offset(idx...)]
}

// Set sets the element at idx to v.
func (a *Array) Set(v float64, idx ...int) {
	a.data[a.Offset(idx...)] = v
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	return &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		data:    append([]float64(nil), a.data...),
	}
}

// Fill sets every element to v.
func (a *Array) Fill(v float64) {
	for i := range a.data {
		a.data[i] = v
	}
}

// CopyFrom copies src into a.
// It returns error if the shapes differ.
func (a *Array) CopyFrom(src *Array) error {
	if !SameShape(a, src) {
		return fmt.Errorf("%w: %v != %v", ErrShape, a.shape, src.shape)
	}
	copy(a.data, src.data)

	return nil
}

// Slab returns the sub-array at index i of the leading axis.
// The slab shares storage with a, so writes to it are visible in a.
// It panics if a has rank 1 or i is out of range.
func (a *Array) Slab(i int) *Array {
	if len(a.shape) < 2 {
		panic("array: slab of rank 1 array")
	}
	if i < 0 || i >= a.shape[0] {
		panic(fmt.Sprintf("array: slab %d out of range [0, %d)", i, a.shape[0]))
	}

	n := a.strides[0]

	return &Array{
		shape:   append([]int(nil), a.shape[1:]...),
		strides: append([]int(nil), a.strides[1:]...),
		data:    a.data[i*n : (i+1)*n : (i+1)*n],
	}
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b *Array) bool {
	return equalShape(a.shape, b.shape)
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Add stores a + b in dst. All three arrays must have the same shape.
func Add(dst, a, b *Array) error {
	if !SameShape(dst, a) || !SameShape(dst, b) {
		return fmt.Errorf("%w: %v, %v, %v", ErrShape, dst.shape, a.shape, b.shape)
	}
	floats.AddTo(dst.data, a.data, b.data)

	return nil
}

// Sub stores a - b in dst. All three arrays must have the same shape.
func Sub(dst, a, b *Array) error {
	if !SameShape(dst, a) || !SameShape(dst, b) {
		return fmt.Errorf("%w: %v, %v, %v", ErrShape, dst.shape, a.shape, b.shape)
	}
	floats.SubTo(dst.data, a.data, b.data)

	return nil
}

// Scale multiplies every element of a by c.
func (a *Array) Scale(c float64) {
	floats.Scale(c, a.data)
}

// Sum returns the sum of all elements.
func (a *Array) Sum() float64 {
	return floats.Sum(a.data)
}

// MaxAbs returns the largest absolute element value, or 0 for an empty array.
func (a *Array) MaxAbs() float64 {
	if len(a.data) == 0 {
		return 0
	}

	return max(floats.Max(a.data), -floats.Min(a.data))
}

// IsFinite reports whether all elements are finite numbers.
func (a *Array) IsFinite() bool {
	for _, v := range a.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// Equal reports whether a and b have the same shape and elements.
func Equal(a, b *Array) bool {
	return SameShape(a, b) && floats.Equal(a.data, b.data)
}

// EqualApprox reports whether a and b have the same shape and all
// elements are within tol of each other.
func EqualApprox(a, b *Array, tol float64) bool {
	return SameShape(a, b) && floats.EqualApprox(a.data, b.data, tol)
}
