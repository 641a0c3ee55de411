package wavfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/rx3lixir/ambient/internal/dsp"
	"github.com/youpy/go-wav"
)

const (
	Channels      = 1
	BitsPerSample = 16
	HeaderSize    = 44

	maxPCM = 32767
)

// ErrIO marks a failure to write the encoded file to its destination.
var ErrIO = errors.New("io failure")

// PCM16 converts a float sample to a signed 16-bit value. Input is clamped
// to [-1, 1] and NaN maps to silence.
func PCM16(s float64) int16 {
	if math.IsNaN(s) {
		return 0
	}
	s = math.Max(-1, math.Min(1, s))
	v := math.Round(s * maxPCM)
	if v > maxPCM {
		v = maxPCM
	} else if v < -maxPCM {
		v = -maxPCM
	}
	return int16(v)
}

// checkSize rejects streams whose header fields do not fit in 32 bits.
func checkSize(numSamples, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", dsp.ErrInvalidParameter, sampleRate)
	}
	blockAlign := uint64(Channels * BitsPerSample / 8)
	if uint64(sampleRate)*blockAlign > math.MaxUint32 {
		return fmt.Errorf("%w: sample rate %d is too large", dsp.ErrInvalidParameter, sampleRate)
	}
	if uint64(numSamples)*blockAlign > math.MaxUint32-(HeaderSize-8) {
		return fmt.Errorf("%w: %d samples do not fit in a WAV file", dsp.ErrInvalidParameter, numSamples)
	}
	return nil
}

// Encode writes samples as a mono 16-bit PCM WAV stream.
func Encode(w io.Writer, samples dsp.Samples, sampleRate int) error {
	if err := checkSize(len(samples), sampleRate); err != nil {
		return err
	}

	frames := make([]wav.Sample, len(samples))
	for i, s := range samples {
		frames[i].Values[0] = int(PCM16(s))
	}

	writer := wav.NewWriter(w, uint32(len(samples)), Channels, uint32(sampleRate), BitsPerSample)
	if err := writer.WriteSamples(frames); err != nil {
		return fmt.Errorf("%w: failed to write samples: %v", ErrIO, err)
	}

	return nil
}

// Bytes encodes samples into an in-memory WAV file.
func Bytes(samples dsp.Samples, sampleRate int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(samples)*BitsPerSample/8))
	if err := Encode(buf, samples, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes samples to path. The data goes to a temporary file in
// the same directory first and is renamed into place once complete, so a
// failed write never leaves a truncated file at path. The directory must
// already exist.
func WriteFile(path string, samples dsp.Samples, sampleRate int) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := Encode(tmp, samples, sampleRate); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync %s: %v", ErrIO, tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: failed to chmod %s: %v", ErrIO, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", ErrIO, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: failed to rename into %s: %v", ErrIO, path, err)
	}

	return nil
}
