package generator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rx3lixir/ambient/internal/wavfile"
)

// Asset is a preset that has been rendered and written to disk.
type Asset struct {
	ID         uuid.UUID
	Preset     Preset
	Path       string
	NumSamples int
	FileSize   int64
}

// Generator renders presets into WAV files.
type Generator struct {
	seed   uint64
	logger *log.Logger
}

// New creates a generator. A zero seed keeps the noise unseeded.
func New(seed uint64, logger *log.Logger) *Generator {
	return &Generator{
		seed:   seed,
		logger: logger,
	}
}

// EnsureDir creates the output directory if it is missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create output directory %s: %v", wavfile.ErrIO, dir, err)
	}
	return nil
}

// Run writes every preset into dir and returns what was written. It stops at
// the first failure; files already written stay in place.
func (g *Generator) Run(ctx context.Context, dir string, presets []Preset) ([]Asset, error) {
	assets := make([]Asset, 0, len(presets))

	for _, p := range presets {
		if err := ctx.Err(); err != nil {
			return assets, fmt.Errorf("generation cancelled: %w", err)
		}

		asset, err := g.write(p, dir)
		if err != nil {
			g.logger.Error("Failed to generate asset", "asset", p.Name, "error", err)
			return assets, err
		}

		assets = append(assets, asset)
	}

	return assets, nil
}

func (g *Generator) write(p Preset, dir string) (Asset, error) {
	start := time.Now()

	samples, err := Render(p, g.seed)
	if err != nil {
		return Asset{}, err
	}

	path := p.Path(dir)
	if err := wavfile.WriteFile(path, samples, p.SampleRate); err != nil {
		return Asset{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: preset %s: %v", wavfile.ErrIO, p.Name, err)
	}

	g.logger.Info(
		"Asset written",
		"asset", p.Name,
		"path", path,
		"filter", p.Filter,
		"cutoff_hz", p.CutoffHz,
		"samples", len(samples),
		"bytes", info.Size(),
		"took", time.Since(start).Round(time.Millisecond),
	)

	return Asset{
		ID:         uuid.New(),
		Preset:     p,
		Path:       path,
		NumSamples: len(samples),
		FileSize:   info.Size(),
	}, nil
}
