package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rx3lixir/ambient/internal/dsp"
	"github.com/rx3lixir/ambient/internal/wavfile"
)

func TestRunDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := run(context.Background(), nil, io.Discard); err != nil {
		t.Fatalf("run error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join("public", "ambient"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("public/ambient has %d entries, want 2", len(entries))
	}

	want := map[string]int{"rain.wav": 12 * 44100, "sea.wav": 14 * 44100}
	for name, samples := range want {
		info, err := os.Stat(filepath.Join("public", "ambient", name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := info.Size(); got != int64(wavfile.HeaderSize+2*samples) {
			t.Errorf("%s size = %d, want %d", name, got, wavfile.HeaderSize+2*samples)
		}
	}
}

func TestRunOutAndSeed(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, dir := range []string{"a", "b"} {
		if err := run(context.Background(), []string{"-out", dir, "-seed", "42"}, io.Discard); err != nil {
			t.Fatalf("run -out %s: %v", dir, err)
		}
	}

	for _, name := range []string{"rain.wav", "sea.wav"} {
		a, err := os.ReadFile(filepath.Join("a", name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join("b", name))
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Errorf("%s differs between seeded runs", name)
		}
	}

	if _, err := os.Stat(filepath.Join("public", "ambient")); !os.IsNotExist(err) {
		t.Error("default directory should not be created when -out is given")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "bad.yaml")
	cfg := "presets:\n  - name: rain\n    duration_seconds: 1\n    amplitude: 0.25\n    filter: highpass\n    cutoff_hz: -5\n    normalize_target: 0.35\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(context.Background(), []string{"-config", path}, io.Discard)
	if !errors.Is(err, dsp.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if _, err := os.Stat(filepath.Join("public", "ambient")); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid config")
	}
}

func TestRunUnknownFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := run(context.Background(), []string{"-bogus"}, io.Discard); err == nil {
		t.Fatal("expected flag parse error")
	}
}
