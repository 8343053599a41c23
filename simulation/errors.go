// SPDX-License-Identifier: EPL-2.0

package simulation

import "errors"

var (
	ErrUnknownMode         = errors.New("unknown simulation mode")
	ErrEmptyBRIRChannel    = errors.New("BRIR channel is empty")
	ErrChannelCount        = errors.New("unsupported output channel count")
	ErrMissingPrescription = errors.New("missing prescription for channel")
)
