// Package hmat provides the dense complex vector container used to hold
// solved surface-current and excitation vectors. The matrix counterpart
// is any type exposing complex element access, e.g. gonum's mat.CDense.
package hmat

import "fmt"

// Vector is a dense complex vector.
type Vector struct {
	data []complex128
}

// NewVector returns a zero-initialized vector of length n.
func NewVector(n int) *Vector {
	if n <= 0 {
		panic(fmt.Sprintf("hmat: non-positive vector length %d", n))
	}
	return &Vector{data: make([]complex128, n)}
}

// FromSlice wraps the given entries without copying.
func FromSlice(entries []complex128) *Vector {
	return &Vector{data: entries}
}

// Len returns the number of entries.
func (v *Vector) Len() int { return len(v.data) }

// At returns entry i.
func (v *Vector) At(i int) complex128 { return v.data[i] }

// Set assigns entry i.
func (v *Vector) Set(i int, x complex128) { v.data[i] = x }

// AddAt adds x to entry i.
func (v *Vector) AddAt(i int, x complex128) { v.data[i] += x }
