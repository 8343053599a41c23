// SPDX-License-Identifier: EPL-2.0

package audsim

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSource      = errors.New("no source file given")
	ErrMissingBRIR        = errors.New("no BRIR file given")
	ErrSampleRateMismatch = errors.New("BRIR sample rate does not match the device")
)

// RequestError is returned by Session.Prepare and Session.Render for any
// failure while turning a request into a processing chain or output file.
// Op names the failed operation.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
