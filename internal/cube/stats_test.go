// Copyright Caltech Optical Observatories, 2026. All rights reserved.

package cube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameStats(t *testing.T) {
	frame := []int32{2, 4, 4, 4, 5, 5, 7, 9}

	st := FrameStats(frame)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 9.0, st.Max)
	assert.Equal(t, 5.0, st.Mean)
	// Sample standard deviation of the classic 2,4,4,4,5,5,7,9 set.
	assert.InDelta(t, 2.138, st.StdDev, 1e-3)
	assert.InDelta(t, 4.0, st.Median, 1.0)
}

func TestFrameStatsConstant(t *testing.T) {
	st := FrameStats([]int32{3, 3, 3, 3})
	assert.Equal(t, 3.0, st.Min)
	assert.Equal(t, 3.0, st.Max)
	assert.Equal(t, 3.0, st.Mean)
	assert.Equal(t, 0.0, st.StdDev)
	assert.Equal(t, 3.0, st.Median)
}

func TestFrameStatsSingle(t *testing.T) {
	st := FrameStats([]int32{-42})
	assert.Equal(t, -42.0, st.Min)
	assert.Equal(t, -42.0, st.Max)
	assert.Equal(t, -42.0, st.Mean)
	assert.Equal(t, 0.0, st.StdDev)
}

func TestFrameStatsEmpty(t *testing.T) {
	st := FrameStats(nil)
	assert.True(t, math.Abs(st.Mean) < 1e-12)
	assert.Equal(t, Stats{}, st)
}
