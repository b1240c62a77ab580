// Copyright Caltech Optical Observatories, 2026. All rights reserved.

// Package types defines shared data structures for the nirc2-frames tool.
package types

import "time"

// FrameRecord summarizes one multi-extension NIRC2 cube file. It carries
// only header-level metadata, never pixel data, and is the row type of the
// frame catalog.
type FrameRecord struct {
	// Path is the filesystem path of the cube file.
	Path string `json:"path" yaml:"path"`

	// Extensions is the number of image extensions (HDUs beyond the primary).
	Extensions int `json:"extensions" yaml:"extensions"`

	// Depth, Height and Width are NAXIS3, NAXIS2 and NAXIS1 of the first
	// extension. Zero when the file carries no extension data.
	Depth  int `json:"depth" yaml:"depth"`
	Height int `json:"height" yaml:"height"`
	Width  int `json:"width" yaml:"width"`

	// SampMode is the numeric SAMPMODE keyword from the primary header,
	// or 0 when the keyword is absent.
	SampMode int `json:"sampmode" yaml:"sampmode"`

	// ITime is the integration time per coadd in seconds (ITIME keyword).
	ITime float64 `json:"itime,omitempty" yaml:"itime,omitempty"`

	// Coadds is the COADDS keyword value.
	Coadds int `json:"coadds,omitempty" yaml:"coadds,omitempty"`

	// Multisam is the MULTISAM keyword value (MCDS pair count or UTR
	// sample count, depending on sample mode).
	Multisam int `json:"multisam,omitempty" yaml:"multisam,omitempty"`

	// Object is the OBJECT keyword value, if present.
	Object string `json:"object,omitempty" yaml:"object,omitempty"`

	// ModTime is the file modification time observed when the record was
	// built, used for incremental catalog re-scans.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// HeaderCard is one key/value/comment triple from a FITS header, in file
// order. Used by header inspection output.
type HeaderCard struct {
	Name    string `json:"name" yaml:"name"`
	Value   any    `json:"value" yaml:"value"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}
