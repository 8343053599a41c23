// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var ErrInvalidCoefficients = errors.New("FIR coefficients must not be empty")
