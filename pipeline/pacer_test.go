package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitMS(t *testing.T) {
	tests := []struct {
		interval, elapsed float64
		want              int
	}{
		{33, 10, 23},
		{33, 50, 1},
		{33, 0, 33},
		{33, 33, 1},
		{33, 32.4, 1},
		{33, 31.4, 2},
		{1000.0 / 30, 8, 25},
		{0, 0, 1},
		{math.NaN(), 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WaitMS(tt.interval, tt.elapsed), "WaitMS(%v, %v)", tt.interval, tt.elapsed)
	}
}

func TestWaitMSIsPureAndPositive(t *testing.T) {
	for interval := 0.0; interval <= 100; interval += 7.5 {
		for elapsed := 0.0; elapsed <= 200; elapsed += 3.3 {
			first := WaitMS(interval, elapsed)
			assert.Equal(t, first, WaitMS(interval, elapsed))
			assert.GreaterOrEqual(t, first, 1)
		}
	}
}

func TestNewPlaybackClock(t *testing.T) {
	clock := NewPlaybackClock(30, 25)
	assert.Equal(t, 30.0, clock.FPS)
	assert.InDelta(t, 33.333, clock.IntervalMS, 0.001)

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		clock := NewPlaybackClock(bad, 25)
		assert.Equal(t, 25.0, clock.FPS)
		assert.Equal(t, 40.0, clock.IntervalMS)
	}
}
