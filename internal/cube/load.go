// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"fmt"
	"io"
	"os"

	"github.com/astrogo/fitsio"
)

// Header keywords read from NIRC2 cubes. SAMPMODE gates frame loading:
// camerad writes it on every exposure, so a cube without it carries no
// extension frame data worth stacking.
const (
	KeySampMode = "SAMPMODE"
	KeyITime    = "ITIME"
	KeyCoadds   = "COADDS"
	KeyMultisam = "MULTISAM"
	KeyObject   = "OBJECT"
)

// Load reads the cube file at path and stacks the pixel data of every
// image extension into a single (E, Z, Y, X) int32 array.
//
// The branch is gated on the presence of the SAMPMODE keyword in the
// primary header: when it is absent, Load writes a notice to w and
// returns an empty Stack with a nil error. Only key absence is tolerated;
// every other failure (unreadable file, malformed FITS, missing NAXIS
// keys on extension 1, an extension whose declared shape disagrees with
// extension 1) is returned as an error and no partial stack is produced.
//
// Progress diagnostics (the computed shape, each extension index) go to w.
func Load(path string, w io.Writer) (*Stack, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cube: %w", err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("reading FITS %s: %w", path, err)
	}
	defer f.Close()

	return readStack(f, w)
}

func readStack(f *fitsio.File, w io.Writer) (*Stack, error) {
	primary := f.HDU(0).Header()
	if primary.Get(KeySampMode) == nil {
		fmt.Fprintln(w, "no SAMPMODE keyword in this cube")
		return &Stack{}, nil
	}

	next := len(f.HDUs()) - 1
	if next < 1 {
		return nil, fmt.Errorf("cube has no extension HDUs")
	}

	dims, err := extShape(f.HDU(1).Header())
	if err != nil {
		return nil, fmt.Errorf("extension 1: %w", err)
	}

	stack := NewStack(next, dims)
	fmt.Fprintf(w, "stack shape (%d, %d, %d, %d)\n", next, dims.Z, dims.Y, dims.X)

	for e := 0; e < next; e++ {
		fmt.Fprintln(w, e)

		hdu := f.HDU(e + 1)
		img, ok := hdu.(fitsio.Image)
		if !ok {
			return nil, fmt.Errorf("extension %d is not an image HDU", e+1)
		}

		got, err := extShape(img.Header())
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", e+1, err)
		}
		if got != dims {
			return nil, &ShapeError{Ext: e + 1, Want: dims, Got: got}
		}

		data, err := readExtInt32(img, dims.extLen())
		if err != nil {
			return nil, fmt.Errorf("reading extension %d: %w", e+1, err)
		}
		if len(data) != dims.extLen() {
			return nil, fmt.Errorf("extension %d has %d pixels, want %d",
				e+1, len(data), dims.extLen())
		}
		copy(stack.Ext(e), data)
	}

	return stack, nil
}

// readExtInt32 reads an extension's pixel data as int32, converting from
// the stored type. fitsio.Image.Read only accepts a destination whose
// element size equals |BITPIX|/8, so each stored type is read natively
// and widened here. Floating-point pixels are truncated toward zero.
func readExtInt32(img fitsio.Image, n int) ([]int32, error) {
	bitpix := img.Header().Bitpix()

	if bitpix == 32 {
		data := make([]int32, 0, n)
		if err := img.Read(&data); err != nil {
			return nil, err
		}
		return data, nil
	}

	out := make([]int32, 0, n)
	switch bitpix {
	case 8:
		raw := make([]int8, 0, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for _, v := range raw {
			out = append(out, int32(v))
		}
	case 16:
		raw := make([]int16, 0, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for _, v := range raw {
			out = append(out, int32(v))
		}
	case 64:
		raw := make([]int64, 0, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for _, v := range raw {
			out = append(out, int32(v))
		}
	case -32:
		raw := make([]float32, 0, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for _, v := range raw {
			out = append(out, int32(v))
		}
	case -64:
		raw := make([]float64, 0, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for _, v := range raw {
			out = append(out, int32(v))
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

// extShape reads the (Z, Y, X) dimensions from an extension header.
// NIRC2 extensions are always 3-D sample blocks; anything else is an error.
func extShape(hdr *fitsio.Header) (Shape, error) {
	axes := hdr.Axes()
	if len(axes) != 3 {
		return Shape{}, fmt.Errorf("NAXIS is %d, want 3", len(axes))
	}
	// Axes()[k] is NAXIS{k+1}: X, Y, Z in file order.
	return Shape{Z: axes[2], Y: axes[1], X: axes[0]}, nil
}
