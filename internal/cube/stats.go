// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds summary statistics for one (Y, X) sample plane.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// FrameStats computes summary statistics over a single frame. An empty
// frame yields the zero Stats.
func FrameStats(frame []int32) Stats {
	if len(frame) == 0 {
		return Stats{}
	}

	xs := make([]float64, len(frame))
	for i, v := range frame {
		xs[i] = float64(v)
	}

	st := Stats{
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
		Mean: stat.Mean(xs, nil),
	}
	if len(xs) > 1 {
		st.StdDev = stat.StdDev(xs, nil)
	}

	sort.Float64s(xs)
	st.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	return st
}
