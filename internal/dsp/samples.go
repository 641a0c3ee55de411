package dsp

import (
	"errors"
	"math"
)

// ErrInvalidParameter is returned when a caller passes a duration, sample
// rate, cutoff or target outside the accepted range.
var ErrInvalidParameter = errors.New("invalid parameter")

// Samples is a mono sample sequence, nominally in [-1.0, 1.0].
type Samples []float64

// NumSamples returns the sample count for a duration at the given rate.
func NumSamples(durationSeconds float64, sampleRate int) int {
	return int(math.Round(durationSeconds * float64(sampleRate)))
}

// Peak returns the largest absolute sample value, or 0 for empty input.
func Peak(samples Samples) float64 {
	m := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > m {
			m = a
		}
	}
	return m
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
