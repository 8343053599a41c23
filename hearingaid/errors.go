// SPDX-License-Identifier: EPL-2.0

package hearingaid

import "errors"

var (
	ErrInvalidPrescription = errors.New("invalid prescription")
	ErrChannelMismatch     = errors.New("prescription band counts do not match")
	ErrNotPowerOfTwo       = errors.New("size must be a power of two")
	ErrInvalidParams       = errors.New("invalid compressor parameters")
)
