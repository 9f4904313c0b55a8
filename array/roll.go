package array

import (
	"fmt"
	"unsafe"
)

// Roll shifts the elements of a periodically by s along axis and returns the result
// as a new array. Element i of the result along axis holds element (i - s) mod N of a,
// i.e. rolling by s moves data from index t to index (t + s) mod N.
// Negative shifts follow the same modular rule.
// It returns error if a is not of rank 2, 3 or 4 or if axis is out of range.
func Roll(a *Array, s, axis int) (*Array, error) {
	if err := checkRoll(a, axis); err != nil {
		return nil, err
	}

	out := &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		data:    make([]float64, len(a.data)),
	}
	roll(out, a, s, axis)

	return out, nil
}

// RollTo is like Roll but writes the shifted elements of src into dst instead of
// allocating a new array. src may be any array or slab; dst must have the same shape
// and must not share storage with src.
func RollTo(dst, src *Array, s, axis int) error {
	if err := checkRoll(src, axis); err != nil {
		return err
	}

	if !SameShape(dst, src) {
		return fmt.Errorf("%w: %v != %v", ErrShape, dst.shape, src.shape)
	}

	if overlaps(dst.data, src.data) {
		return ErrAlias
	}
	roll(dst, src, s, axis)

	return nil
}

// MustRoll is like Roll but panics on error.
func MustRoll(a *Array, s, axis int) *Array {
	out, err := Roll(a, s, axis)
	if err != nil {
		panic(err)
	}

	return out
}

func checkRoll(a *Array, axis int) error {
	if r := len(a.shape); r < 2 || r > maxRank {
		return fmt.Errorf("%w: roll of rank %d array", ErrRank, r)
	}

	if axis < 0 || axis >= len(a.shape) {
		return fmt.Errorf("%w: axis %d for rank %d", ErrAxis, axis, len(a.shape))
	}

	return nil
}

// overlaps reports whether a and b share any element of storage.
func overlaps(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if &a[0] == &b[0] {
		return true
	}
	// Offset of b[0] from a[0] in elements; the GC does not move heap objects.
	off := int(uintptr(unsafe.Pointer(&b[0]))-uintptr(unsafe.Pointer(&a[0]))) / int(unsafe.Sizeof(float64(0)))

	return off > -len(b) && off < len(a)
}

// roll copies src into dst shifted by s along axis.
// The array is viewed as [outer, n, inner]; each outer block is moved with two slab copies.
func roll(dst, src *Array, s, axis int) {
	n := src.shape[axis]
	if n == 0 || s%n == 0 {
		copy(dst.data, src.data)
		return
	}

	s = ((s % n) + n) % n
	inner := src.strides[axis]
	block := n * inner
	head := (n - s) * inner

	for base := 0; base < len(src.data); base += block {
		// src[0 : n-s] -> dst[s : n]
		copy(dst.data[base+s*inner:base+block], src.data[base:base+head])
		// src[n-s : n] -> dst[0 : s]
		copy(dst.data[base:base+s*inner], src.data[base+head:base+block])
	}
}
