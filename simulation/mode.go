// SPDX-License-Identifier: EPL-2.0

package simulation

import (
	"fmt"
	"strings"
)

// Mode selects which stages a simulation chain carries. It is picked once
// when a session is prepared.
type Mode int

const (
	None Mode = iota
	Spatialization
	HearingAid
	Full
)

var modeNames = [...]string{
	None:           "none",
	Spatialization: "spatialization",
	HearingAid:     "hearing-aid",
	Full:           "full",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

// Spatialized reports whether the mode convolves with a BRIR.
func (m Mode) Spatialized() bool { return m == Spatialization || m == Full }

// Aided reports whether the mode runs the hearing-aid stage.
func (m Mode) Aided() bool { return m == HearingAid || m == Full }

// ParseMode accepts the names returned by String, case insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText and UnmarshalText let a Mode be used directly in config files.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed

	return nil
}
