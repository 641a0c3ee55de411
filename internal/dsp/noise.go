package dsp

import (
	"fmt"
	"math/rand/v2"
)

// Source draws uniform white noise.
type Source struct {
	rng *rand.Rand
}

// NewSource returns a noise source. A zero seed uses the process-wide
// generator, any other seed gives a reproducible stream.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		return &Source{}
	}
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns round(durationSeconds*sampleRate) samples drawn
// independently from [-amplitude, +amplitude].
func (s *Source) Generate(durationSeconds float64, sampleRate int, amplitude float64) (Samples, error) {
	if !isFinite(durationSeconds) || durationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration must be a non-negative number, got %v", ErrInvalidParameter, durationSeconds)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, sampleRate)
	}
	if !isFinite(amplitude) || amplitude < 0 {
		return nil, fmt.Errorf("%w: amplitude must be a non-negative number, got %v", ErrInvalidParameter, amplitude)
	}

	out := make(Samples, NumSamples(durationSeconds, sampleRate))
	for i := range out {
		out[i] = (s.next()*2 - 1) * amplitude
	}
	return out, nil
}

func (s *Source) next() float64 {
	if s.rng == nil {
		return rand.Float64()
	}
	return s.rng.Float64()
}

// Generate draws unseeded white noise. See Source.Generate.
func Generate(durationSeconds float64, sampleRate int, amplitude float64) (Samples, error) {
	return NewSource(0).Generate(durationSeconds, sampleRate, amplitude)
}
