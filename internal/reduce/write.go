// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package reduce

import (
	"fmt"
	"io"

	"github.com/astrogo/fitsio"
)

// WriteFITS streams a reduced image to w as a FITS file: a metadata-only
// primary HDU carrying cards, followed by one 32-bit image extension per
// plane. The layout mirrors the input cubes so reduced files can be fed
// back through the same inspection tooling.
func WriteFITS(w io.Writer, im *Image, cards []fitsio.Card) error {
	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("creating FITS output: %w", err)
	}
	defer f.Close()

	primary := fitsio.NewImage(8, []int{})
	defer primary.Close()
	if err := primary.Header().Append(cards...); err != nil {
		return fmt.Errorf("writing primary header: %w", err)
	}
	if err := f.Write(primary); err != nil {
		return fmt.Errorf("writing primary HDU: %w", err)
	}

	for e := 0; e < im.NExt; e++ {
		ext := fitsio.NewImage(32, []int{im.Width, im.Height})
		plane := im.Frame(e)
		if err := ext.Write(&plane); err != nil {
			ext.Close()
			return fmt.Errorf("encoding extension %d: %w", e+1, err)
		}
		if err := f.Write(ext); err != nil {
			ext.Close()
			return fmt.Errorf("writing extension %d: %w", e+1, err)
		}
		ext.Close()
	}

	return nil
}
