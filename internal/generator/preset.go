package generator

import (
	"fmt"
	"hash/fnv"
	"math"
	"path/filepath"
	"regexp"

	"github.com/rx3lixir/ambient/internal/dsp"
)

const DefaultSampleRate = 44100

var presetName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Preset describes one ambient texture and where it is written.
type Preset struct {
	Name            string         `json:"name" mapstructure:"name"`
	DurationSeconds float64        `json:"duration_seconds" mapstructure:"duration_seconds"`
	SampleRate      int            `json:"sample_rate" mapstructure:"sample_rate"`
	Amplitude       float64        `json:"amplitude" mapstructure:"amplitude"`
	Filter          dsp.FilterKind `json:"filter" mapstructure:"filter"`
	CutoffHz        float64        `json:"cutoff_hz" mapstructure:"cutoff_hz"`
	NormalizeTarget float64        `json:"normalize_target" mapstructure:"normalize_target"`
	OutputPath      string         `json:"output_path,omitempty" mapstructure:"output_path"`
}

// DefaultPresets returns the rain and sea textures.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:            "rain",
			DurationSeconds: 12,
			SampleRate:      DefaultSampleRate,
			Amplitude:       0.25,
			Filter:          dsp.FilterHighpass,
			CutoffHz:        700,
			NormalizeTarget: 0.35,
		},
		{
			Name:            "sea",
			DurationSeconds: 14,
			SampleRate:      DefaultSampleRate,
			Amplitude:       0.25,
			Filter:          dsp.FilterLowpass,
			CutoffHz:        600,
			NormalizeTarget: 0.28,
		},
	}
}

// Validate reports the first parameter outside its accepted range.
func (p Preset) Validate() error {
	if !presetName.MatchString(p.Name) {
		return fmt.Errorf("%w: preset name %q must be lowercase letters, digits, '-' or '_'", dsp.ErrInvalidParameter, p.Name)
	}
	if math.IsNaN(p.DurationSeconds) || math.IsInf(p.DurationSeconds, 0) || p.DurationSeconds < 0 {
		return fmt.Errorf("%w: preset %s: duration must be non-negative", dsp.ErrInvalidParameter, p.Name)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: preset %s: sample rate must be positive", dsp.ErrInvalidParameter, p.Name)
	}
	if math.IsNaN(p.Amplitude) || math.IsInf(p.Amplitude, 0) || p.Amplitude < 0 {
		return fmt.Errorf("%w: preset %s: amplitude must be non-negative", dsp.ErrInvalidParameter, p.Name)
	}
	if p.Filter != dsp.FilterLowpass && p.Filter != dsp.FilterHighpass {
		return fmt.Errorf("%w: preset %s: unknown filter kind %q", dsp.ErrInvalidParameter, p.Name, p.Filter)
	}
	if math.IsNaN(p.CutoffHz) || math.IsInf(p.CutoffHz, 0) || p.CutoffHz <= 0 {
		return fmt.Errorf("%w: preset %s: cutoff must be positive", dsp.ErrInvalidParameter, p.Name)
	}
	if math.IsNaN(p.NormalizeTarget) || math.IsInf(p.NormalizeTarget, 0) || p.NormalizeTarget < 0 {
		return fmt.Errorf("%w: preset %s: normalize target must be non-negative", dsp.ErrInvalidParameter, p.Name)
	}
	return nil
}

// FileName is the base name used when the preset has no explicit output path.
func (p Preset) FileName() string {
	return p.Name + ".wav"
}

// Path resolves where the preset is written inside dir.
func (p Preset) Path(dir string) string {
	if p.OutputPath != "" {
		return p.OutputPath
	}
	return filepath.Join(dir, p.FileName())
}

// NumSamples is the length of the rendered sequence.
func (p Preset) NumSamples() int {
	return dsp.NumSamples(p.DurationSeconds, p.SampleRate)
}

// Find returns the preset with the given name.
func Find(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Render runs noise, filter and normalization for one preset. A non-zero
// seed is mixed with the preset name so each preset gets its own stream.
func Render(p Preset, seed uint64) (dsp.Samples, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	noise, err := dsp.NewSource(presetSeed(seed, p.Name)).Generate(p.DurationSeconds, p.SampleRate, p.Amplitude)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	filtered, err := dsp.Apply(p.Filter, noise, p.SampleRate, p.CutoffHz)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	out, err := dsp.Normalize(filtered, p.NormalizeTarget)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	return out, nil
}

func presetSeed(seed uint64, name string) uint64 {
	if seed == 0 {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	mixed := seed ^ h.Sum64()
	if mixed == 0 {
		mixed = seed
	}
	return mixed
}
