// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audsim/audio"
)

// mockOggVorbisReader serves interleaved float32 values, whole frames only.
type mockOggVorbisReader struct {
	channels int
	samples  []float32
	offset   int
	err      error
}

func (m *mockOggVorbisReader) SampleRate() int { return 48000 }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.samples)-m.offset)
	n -= n % m.channels
	copy(buf, m.samples[m.offset:m.offset+n])
	m.offset += n

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not Ogg data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []float32
		bufSize  int
	}{
		{"mono", 1, []float32{0.1, 0.2, 0.3}, 2},
		{"stereo", 2, []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}, 4},
		{"six channels", 6, make([]float32, 24), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{
				dec:      &mockOggVorbisReader{channels: tt.channels, samples: tt.samples},
				channels: tt.channels,
			}

			var got []float32
			dst := make([]float32, tt.bufSize)
			for {
				n, err := src.ReadSamples(dst)
				got = append(got, dst[:n]...)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(got) != len(tt.samples) {
				t.Fatalf("read %d samples, want %d", len(got), len(tt.samples))
			}
			for i := range got {
				if got[i] != tt.samples[i] {
					t.Errorf("sample %d = %v, want %v", i, got[i], tt.samples[i])
				}
			}
		})
	}
}

func TestSource_ReadSamples_InvalidSize(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggVorbisReader{channels: 2}, channels: 2}
	if _, err := src.ReadSamples(make([]float32, 5)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggVorbisReader{channels: 1, err: io.ErrUnexpectedEOF}, channels: 1}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want wrapped io.ErrUnexpectedEOF", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]float32, 48000*2)
	dst := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src := &source{dec: &mockOggVorbisReader{channels: 2, samples: samples}, channels: 2}
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
