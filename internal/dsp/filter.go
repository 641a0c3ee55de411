package dsp

import (
	"fmt"
	"math"
	"strings"
)

// FilterKind selects which side of the single-pole split a preset keeps.
type FilterKind string

const (
	FilterLowpass  FilterKind = "lowpass"
	FilterHighpass FilterKind = "highpass"
)

// ParseFilterKind accepts "lowpass" or "highpass", case-insensitively.
func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(strings.ToLower(strings.TrimSpace(s))); k {
	case FilterLowpass, FilterHighpass:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown filter kind %q", ErrInvalidParameter, s)
	}
}

func smoothing(sampleRate int, cutoffHz float64) (float64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, sampleRate)
	}
	if !isFinite(cutoffHz) || cutoffHz <= 0 {
		return 0, fmt.Errorf("%w: cutoff must be a positive finite frequency, got %v", ErrInvalidParameter, cutoffHz)
	}
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)
	return dt / (rc + dt), nil
}

// Lowpass applies a one-pole exponential smoother. The filter state starts
// at zero, so y[0] = alpha*x[0].
func Lowpass(input Samples, sampleRate int, cutoffHz float64) (Samples, error) {
	alpha, err := smoothing(sampleRate, cutoffHz)
	if err != nil {
		return nil, err
	}

	out := make(Samples, len(input))
	prev := 0.0
	for i, x := range input {
		prev += alpha * (x - prev)
		out[i] = prev
	}
	return out, nil
}

// Highpass returns input minus its lowpass at the same cutoff.
func Highpass(input Samples, sampleRate int, cutoffHz float64) (Samples, error) {
	lp, err := Lowpass(input, sampleRate, cutoffHz)
	if err != nil {
		return nil, err
	}

	out := make(Samples, len(input))
	for i, x := range input {
		out[i] = x - lp[i]
	}
	return out, nil
}

// Apply runs the filter selected by kind.
func Apply(kind FilterKind, input Samples, sampleRate int, cutoffHz float64) (Samples, error) {
	switch kind {
	case FilterLowpass:
		return Lowpass(input, sampleRate, cutoffHz)
	case FilterHighpass:
		return Highpass(input, sampleRate, cutoffHz)
	default:
		return nil, fmt.Errorf("%w: unknown filter kind %q", ErrInvalidParameter, kind)
	}
}
