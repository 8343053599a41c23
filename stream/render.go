// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/ik5/audsim/audio"
)

var ErrInvalidBufferSize = errors.New("frames per buffer must be positive")

// Render runs l to completion without a device, writing every processed
// cycle of the given channel count to w. It returns the number of frames
// written. w is not closed.
func Render(ctx context.Context, l *Loader, w audio.Writer, channels, framesPerBuffer int) (int, error) {
	if framesPerBuffer <= 0 {
		return 0, ErrInvalidBufferSize
	}
	if channels <= 0 {
		return 0, audio.ErrInvalidChannels
	}

	buffers := make([][]float32, channels)
	for i := range buffers {
		buffers[i] = make([]float32, framesPerBuffer)
	}

	written := 0
	for !l.Complete() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		l.Load(buffers)
		if err := w.Write(buffers); err != nil {
			return written, fmt.Errorf("writing frames: %w", err)
		}
		written += framesPerBuffer
	}

	return written, nil
}
