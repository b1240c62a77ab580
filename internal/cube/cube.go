// Copyright Caltech Optical Observatories, 2026. All rights reserved.

// Package cube loads NIRC2 multi-extension FITS cubes into frame stacks.
// A cube file carries a metadata-only primary HDU followed by one image
// extension per coadd; each extension is a 3-D block of readout samples.
package cube

import "fmt"

// Shape is the (Z, Y, X) dimensions of one extension's sample block,
// taken from the NAXIS3, NAXIS2 and NAXIS1 header keys.
type Shape struct {
	Z int // NAXIS3, readout samples
	Y int // NAXIS2, rows
	X int // NAXIS1, columns
}

// String renders the shape as "ZxYxX".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Z, s.Y, s.X)
}

// planeLen returns the pixel count of one (Y, X) plane.
func (s Shape) planeLen() int {
	return s.Y * s.X
}

// extLen returns the pixel count of one extension's full sample block.
func (s Shape) extLen() int {
	return s.Z * s.Y * s.X
}

// ShapeError reports an extension whose declared dimensions disagree with
// the shape inferred from extension 1. The stack is sized once from
// extension 1, so every later extension must match it exactly.
type ShapeError struct {
	Ext  int   // 1-based extension HDU index
	Want Shape // shape from extension 1
	Got  Shape // shape declared by the offending extension
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("extension %d has shape %s, want %s", e.Ext, e.Got, e.Want)
}

// Stack is a loaded frame stack: NExt extensions of Shape-sized sample
// blocks, stored as a flat int32 array in (E, Z, Y, X) order. A Stack is
// populated once by Load and not mutated afterwards.
type Stack struct {
	NExt int
	Dims Shape
	data []int32
}

// NewStack allocates a zero-filled stack for next extensions of dims.
// Load populates stacks itself; NewStack is exported for callers that
// build stacks from other sources, such as reduction tests.
func NewStack(next int, dims Shape) *Stack {
	return &Stack{
		NExt: next,
		Dims: dims,
		data: make([]int32, next*dims.extLen()),
	}
}

// Empty reports whether the stack carries no frame data. Load returns an
// empty stack, not an error, for cubes whose primary header lacks the
// SAMPMODE keyword.
func (s *Stack) Empty() bool {
	return s.NExt == 0
}

// At returns the pixel at extension e, sample z, row y, column x.
func (s *Stack) At(e, z, y, x int) int32 {
	return s.data[((e*s.Dims.Z+z)*s.Dims.Y+y)*s.Dims.X+x]
}

// Frame returns the (Y, X) plane at extension e, sample z as a row-major
// slice aliasing the stack's backing array.
func (s *Stack) Frame(e, z int) []int32 {
	plane := s.Dims.planeLen()
	off := (e*s.Dims.Z + z) * plane
	return s.data[off : off+plane]
}

// Ext returns extension e's full (Z, Y, X) block as a flat slice aliasing
// the stack's backing array.
func (s *Stack) Ext(e int) []int32 {
	n := s.Dims.extLen()
	return s.data[e*n : (e+1)*n]
}

// Len returns the total pixel count.
func (s *Stack) Len() int {
	return len(s.data)
}
