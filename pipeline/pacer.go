package pipeline

import "math"

// PlaybackClock is the nominal inter-frame interval derived from the source
// frame rate. It is computed once per run.
type PlaybackClock struct {
	FPS        float64
	IntervalMS float64
}

// NewPlaybackClock uses fallbackFPS when the container reports a rate that is
// zero, negative or NaN.
func NewPlaybackClock(fps, fallbackFPS float64) PlaybackClock {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		fps = fallbackFPS
	}
	return PlaybackClock{FPS: fps, IntervalMS: 1000 / fps}
}

// WaitMS returns how long to block before the next frame so playback keeps
// close to the source rate. Never less than 1: the wait doubles as the key
// poll, and a non-positive value would block forever.
func WaitMS(intervalMS, elapsedMS float64) int {
	wait := math.Round(intervalMS - elapsedMS)
	if math.IsNaN(wait) || wait < 1 {
		return 1
	}
	return int(wait)
}
