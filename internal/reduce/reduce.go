// Copyright Caltech Optical Observatories, 2026. All rights reserved.

// Package reduce collapses the Z samples of a loaded cube into one plane
// per extension, according to the detector sampling mode: correlated
// double sampling (CDS), multiple correlated double sampling (MCDS), and
// up-the-ramp (UTR) slope fitting.
package reduce

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/CaltechOpticalObservatories/nirc2-frames/internal/cube"
)

// Image is the reduced result: one (Y, X) int32 plane per extension.
type Image struct {
	NExt   int
	Height int
	Width  int
	Pix    []int32
}

func newImage(next, height, width int) *Image {
	return &Image{
		NExt:   next,
		Height: height,
		Width:  width,
		Pix:    make([]int32, next*height*width),
	}
}

// Frame returns extension e's plane as a row-major slice aliasing Pix.
func (im *Image) Frame(e int) []int32 {
	n := im.Height * im.Width
	return im.Pix[e*n : (e+1)*n]
}

// Apply reduces the stack according to mode. ITime (seconds per coadd) is
// used by UTR to express slopes in counts per second; pass 0 to get
// counts per sample interval.
func Apply(stack *cube.Stack, mode cube.SampMode, itime float64) (*Image, error) {
	switch mode {
	case cube.SampModeSingle:
		return Single(stack)
	case cube.SampModeCDS:
		return CDS(stack)
	case cube.SampModeMCDS:
		return MCDS(stack)
	case cube.SampModeUTR:
		return UTR(stack, itime)
	default:
		return nil, fmt.Errorf("no reduction defined for sample mode %s", mode)
	}
}

// Single takes the last readout sample of each extension.
func Single(stack *cube.Stack) (*Image, error) {
	if stack.Empty() {
		return nil, fmt.Errorf("empty stack")
	}
	out := newImage(stack.NExt, stack.Dims.Y, stack.Dims.X)
	for e := 0; e < stack.NExt; e++ {
		copy(out.Frame(e), stack.Frame(e, stack.Dims.Z-1))
	}
	return out, nil
}

// CDS subtracts the first readout sample from the last, per extension.
func CDS(stack *cube.Stack) (*Image, error) {
	if stack.Empty() {
		return nil, fmt.Errorf("empty stack")
	}
	if stack.Dims.Z < 2 {
		return nil, fmt.Errorf("CDS needs at least 2 samples, cube has %d", stack.Dims.Z)
	}
	out := newImage(stack.NExt, stack.Dims.Y, stack.Dims.X)
	for e := 0; e < stack.NExt; e++ {
		first := stack.Frame(e, 0)
		last := stack.Frame(e, stack.Dims.Z-1)
		dst := out.Frame(e)
		for i := range dst {
			dst[i] = last[i] - first[i]
		}
	}
	return out, nil
}

// MCDS averages the pairwise differences between the signal reads (the
// second half of the sample axis) and the reset reads (the first half).
// The sample count must be even; MULTISAM pairs means Z = 2*MULTISAM.
func MCDS(stack *cube.Stack) (*Image, error) {
	if stack.Empty() {
		return nil, fmt.Errorf("empty stack")
	}
	z := stack.Dims.Z
	if z < 2 || z%2 != 0 {
		return nil, fmt.Errorf("MCDS needs an even sample count of at least 2, cube has %d", z)
	}
	pairs := z / 2
	out := newImage(stack.NExt, stack.Dims.Y, stack.Dims.X)
	for e := 0; e < stack.NExt; e++ {
		dst := out.Frame(e)
		sums := make([]int64, len(dst))
		for p := 0; p < pairs; p++ {
			reset := stack.Frame(e, p)
			signal := stack.Frame(e, pairs+p)
			for i := range sums {
				sums[i] += int64(signal[i]) - int64(reset[i])
			}
		}
		for i := range dst {
			dst[i] = int32(math.Round(float64(sums[i]) / float64(pairs)))
		}
	}
	return out, nil
}

// UTR fits a least-squares slope through each pixel's readout samples.
// With itime > 0 the x axis is seconds and the result is counts per
// second; otherwise the result is counts per sample interval. Slopes are
// rounded to the nearest int32.
func UTR(stack *cube.Stack, itime float64) (*Image, error) {
	if stack.Empty() {
		return nil, fmt.Errorf("empty stack")
	}
	z := stack.Dims.Z
	if z < 2 {
		return nil, fmt.Errorf("UTR needs at least 2 samples, cube has %d", z)
	}

	xs := make([]float64, z)
	for i := range xs {
		if itime > 0 {
			xs[i] = float64(i) * itime
		} else {
			xs[i] = float64(i)
		}
	}

	out := newImage(stack.NExt, stack.Dims.Y, stack.Dims.X)
	ys := make([]float64, z)
	plane := stack.Dims.Y * stack.Dims.X
	for e := 0; e < stack.NExt; e++ {
		dst := out.Frame(e)
		for i := 0; i < plane; i++ {
			for s := 0; s < z; s++ {
				ys[s] = float64(stack.Frame(e, s)[i])
			}
			_, beta := stat.LinearRegression(xs, ys, nil, false)
			dst[i] = int32(math.Round(beta))
		}
	}
	return out, nil
}

// Coadd sums all extensions of a reduced image into a single plane.
func Coadd(im *Image) *Image {
	out := newImage(1, im.Height, im.Width)
	dst := out.Frame(0)
	for e := 0; e < im.NExt; e++ {
		src := im.Frame(e)
		for i := range dst {
			dst[i] += src[i]
		}
	}
	return out
}
