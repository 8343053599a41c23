// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrAlreadyStreaming = errors.New("player is already streaming")
	ErrNotPrepared      = errors.New("player has nothing prepared")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrClosed           = errors.New("player is closed")
)
