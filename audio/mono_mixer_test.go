// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audsim/internal/audiotest"
)

func TestMonoMixer_Averages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		want     float32
	}{
		{"mono passthrough", 1, 0},
		{"stereo", 2, 0.05},
		{"quad", 4, 0.15},
		{"eight channels", 8, 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewMockSource(8000, tt.channels, 100, func(_ int, channel int) float32 {
				return float32(channel) / 10
			})
			mixer := NewMonoMixer(src)

			if mixer.Channels() != 1 {
				t.Fatalf("Channels() = %d, want 1", mixer.Channels())
			}

			buf := make([]float32, 10)
			n, err := mixer.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 10 {
				t.Fatalf("ReadSamples() n = %d, want 10", n)
			}

			for i := range n {
				if math.Abs(float64(buf[i]-tt.want)) > 1e-6 {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], tt.want)
				}
			}
		})
	}
}

func TestMonoMixer_PartialReadAndEOF(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 5))
	buf := make([]float32, 10)

	n, err := mixer.ReadSamples(buf)
	if n != 5 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 5, io.EOF", n, err)
	}

	n, err = mixer.ReadSamples(buf)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("second ReadSamples() = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestMonoMixer_EmptyBuffer(t *testing.T) {
	t.Parallel()

	n, err := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 100)).ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}

func TestMonoMixer_PreservesRate(t *testing.T) {
	t.Parallel()

	if got := NewMonoMixer(audiotest.NewSilentSource(44100, 2, 1)).SampleRate(); got != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", got)
	}
}

func BenchmarkMonoMixer_StereoToMono(b *testing.B) {
	src := audiotest.NewSineSource(8000, 2, 100000, 440.0)
	mixer := NewMonoMixer(src)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src.Reset()
		for {
			if _, err := mixer.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
