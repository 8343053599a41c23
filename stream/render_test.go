// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ik5/audsim/audio"
	"github.com/ik5/audsim/dsp"
	"github.com/ik5/audsim/internal/audiotest"
)

func TestRender_FlushesTail(t *testing.T) {
	t.Parallel()

	fir, err := dsp.NewFIRFilter([]float32{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	l := NewLoader(monoReader(1, 2, 3), dsp.NewPipeline(dsp.ChannelCopier{}, dsp.NewGroup(fir)))
	w := &audiotest.MemoryWriter{}

	n, err := Render(context.Background(), l, w, 2, 2)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Three samples plus a two-sample tail fit in three cycles of two.
	if n != 6 {
		t.Errorf("Render() = %d frames, want 6", n)
	}

	wantLeft := []float32{1, 3, 6, 5, 3, 0}
	wantRight := []float32{1, 2, 3, 0, 0, 0}
	if !slices.Equal(w.Channels[0], wantLeft) {
		t.Errorf("left = %v, want %v", w.Channels[0], wantLeft)
	}
	if !slices.Equal(w.Channels[1], wantRight) {
		t.Errorf("right = %v, want %v", w.Channels[1], wantRight)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		w        audio.Writer
		channels int
		frames   int
		want     error
	}{
		{"zero frames", context.Background(), &audiotest.MemoryWriter{}, 1, 0, ErrInvalidBufferSize},
		{"zero channels", context.Background(), &audiotest.MemoryWriter{}, 0, 16, audio.ErrInvalidChannels},
		{"write error", context.Background(), &audiotest.MemoryWriter{Err: boom}, 1, 16, boom},
		{"cancelled", cancelled, &audiotest.MemoryWriter{}, 1, 16, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := NewLoader(monoReader(1, 2, 3), dsp.NewGroup(dsp.NewScalar(1)))
			if _, err := Render(tt.ctx, l, tt.w, tt.channels, tt.frames); !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}
