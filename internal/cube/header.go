// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"

	"github.com/CaltechOpticalObservatories/nirc2-frames/pkg/types"
)

// Probe builds a header-only FrameRecord for the cube at path. No pixel
// data is exposed. Unlike Load, a cube without extensions is not an error
// here: the catalog records it with zero dimensions so that it still shows
// up in queries.
func Probe(path string) (*types.FrameRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat cube: %w", err)
	}

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

	primary := f.HDU(0).Header()

	mode, err := SampModeOf(primary)
	if err != nil {
		return nil, err
	}

	rec := &types.FrameRecord{
		Path:       path,
		Extensions: len(f.HDUs()) - 1,
		SampMode:   int(mode),
		ModTime:    info.ModTime().UTC(),
	}

	if card := primary.Get(KeyITime); card != nil {
		rec.ITime, _ = cardFloat(card)
	}
	if card := primary.Get(KeyCoadds); card != nil {
		rec.Coadds, _ = cardInt(card)
	}
	if card := primary.Get(KeyMultisam); card != nil {
		rec.Multisam, _ = cardInt(card)
	}
	if card := primary.Get(KeyObject); card != nil {
		if s, ok := card.Value.(string); ok {
			rec.Object = s
		}
	}

	if rec.Extensions > 0 {
		if dims, err := extShape(f.HDU(1).Header()); err == nil {
			rec.Depth, rec.Height, rec.Width = dims.Z, dims.Y, dims.X
		}
	}

	return rec, nil
}

// Cards returns the header cards of HDU hdu in file order.
func Cards(path string, hdu int) ([]types.HeaderCard, error) {
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

	if hdu < 0 || hdu >= len(f.HDUs()) {
		return nil, fmt.Errorf("HDU %d out of range: cube has %d HDUs", hdu, len(f.HDUs()))
	}

	hdr := f.HDU(hdu).Header()
	cards := make([]types.HeaderCard, 0, len(hdr.Keys()))
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		cards = append(cards, types.HeaderCard{
			Name:    card.Name,
			Value:   card.Value,
			Comment: card.Comment,
		})
	}
	return cards, nil
}
