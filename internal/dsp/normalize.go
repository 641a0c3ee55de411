package dsp

import (
	"fmt"
	"math"
)

// Normalize scales samples so the peak absolute value equals targetPeak.
// Silent input stays silent.
func Normalize(input Samples, targetPeak float64) (Samples, error) {
	if math.IsNaN(targetPeak) || math.IsInf(targetPeak, 0) || targetPeak < 0 {
		return nil, fmt.Errorf("%w: target peak must be a non-negative number, got %v", ErrInvalidParameter, targetPeak)
	}

	m := Peak(input)
	if m == 0 {
		m = 1.0
	}
	factor := targetPeak / m

	out := make(Samples, len(input))
	for i, s := range input {
		out[i] = s * factor
	}
	return out, nil
}
