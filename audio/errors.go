// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrInvalidChannels   = errors.New("channel count must be positive")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrBufferCount       = errors.New("buffer count does not match writer channels")
)

// CreateError reports that a reader or writer could not be created for a
// path. The message is meant to be shown to a person.
type CreateError struct {
	Path string
	Err  error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("unable to open %q: %v", e.Path, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }
