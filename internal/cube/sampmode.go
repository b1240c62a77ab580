// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
)

// SampMode is the NIRC2 detector sampling mode, as written by camerad
// into the SAMPMODE header keyword.
type SampMode int

const (
	SampModeNone   SampMode = 0 // keyword absent
	SampModeSingle SampMode = 1
	SampModeCDS    SampMode = 2
	SampModeMCDS   SampMode = 3
	SampModeUTR    SampMode = 4
	SampModeRXV    SampMode = 5
	SampModeRXRV   SampMode = 6
)

var sampModeNames = map[SampMode]string{
	SampModeSingle: "SINGLE",
	SampModeCDS:    "CDS",
	SampModeMCDS:   "MCDS",
	SampModeUTR:    "UTR",
	SampModeRXV:    "RXV",
	SampModeRXRV:   "RXRV",
}

// String returns the camerad name for the mode, or "UNKNOWN(n)".
func (m SampMode) String() string {
	if m == SampModeNone {
		return "NONE"
	}
	if name, ok := sampModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(m))
}

// Valid reports whether m is one of the defined sampling modes.
func (m SampMode) Valid() bool {
	_, ok := sampModeNames[m]
	return ok
}

// ParseSampMode accepts either a camerad mode name (case-insensitive) or
// its numeric value.
func ParseSampMode(s string) (SampMode, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range sampModeNames {
		if upper == name {
			return m, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(upper, "%d", &n); err == nil {
		m := SampMode(n)
		if m.Valid() {
			return m, nil
		}
	}
	return SampModeNone, fmt.Errorf("unrecognized sample mode %q", s)
}

// SampModeOf reads the SAMPMODE card from a primary header. A missing
// keyword yields SampModeNone without an error; a card whose value is not
// an integer is an error.
func SampModeOf(hdr *fitsio.Header) (SampMode, error) {
	card := hdr.Get(KeySampMode)
	if card == nil {
		return SampModeNone, nil
	}
	n, ok := cardInt(card)
	if !ok {
		return SampModeNone, fmt.Errorf("SAMPMODE value %v is not an integer", card.Value)
	}
	return SampMode(n), nil
}

// cardInt extracts an integer card value. FITS integer cards decode as
// int, but tolerate the float forms some writers emit.
func cardInt(card *fitsio.Card) (int, bool) {
	switch v := card.Value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// cardFloat extracts a floating-point card value.
func cardFloat(card *fitsio.Card) (float64, bool) {
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
