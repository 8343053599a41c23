// SPDX-License-Identifier: EPL-2.0

package simulation

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/formats/wav"
)

func writeWAV(t *testing.T, channels [][]float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "brir.wav")
	w, err := wav.NewFileWriter(path, len(channels), 48000)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	if err := w.Write(channels); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return path
}

func TestLoadBRIR(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, [][]float32{{0.5, 0.25, 0}, {-0.5, 0, 0.125}})

	b, err := LoadBRIR(path)
	if err != nil {
		t.Fatalf("LoadBRIR() error = %v", err)
	}

	if b.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", b.SampleRate)
	}
	if len(b.Left) != 3 || len(b.Right) != 3 {
		t.Fatalf("len(Left), len(Right) = %d, %d, want 3, 3", len(b.Left), len(b.Right))
	}
	if math.Abs(float64(b.Left[0])-0.5) > 1e-3 || math.Abs(float64(b.Right[0])+0.5) > 1e-3 {
		t.Errorf("first taps = %v, %v, want 0.5, -0.5", b.Left[0], b.Right[0])
	}
}

func TestLoadBRIR_Mono(t *testing.T) {
	t.Parallel()

	_, err := LoadBRIR(writeWAV(t, [][]float32{{1, 0}}))
	if !errors.Is(err, ErrEmptyBRIRChannel) {
		t.Errorf("LoadBRIR(mono) error = %v, want ErrEmptyBRIRChannel", err)
	}
}

func TestLoadBRIR_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadBRIR(filepath.Join(t.TempDir(), "none.wav"))

	var ce *audio.CreateError
	if !errors.As(err, &ce) {
		t.Fatalf("LoadBRIR() error = %T, want *audio.CreateError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadBRIR() error = %v, want os.ErrNotExist", err)
	}
}

func TestBRIR_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		brir BRIR
		ok   bool
	}{
		{"both", BRIR{Left: []float32{1}, Right: []float32{1}}, true},
		{"no left", BRIR{Right: []float32{1}}, false},
		{"no right", BRIR{Left: []float32{1}}, false},
	}

	for _, tt := range tests {
		err := tt.brir.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: Validate() error = %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrEmptyBRIRChannel) {
			t.Errorf("%s: Validate() error = %v, want ErrEmptyBRIRChannel", tt.name, err)
		}
	}
}
