package sim

import (
	"fmt"
	"strings"
)

// Mode selects the generation behavior of the simulator.
type Mode string

// The three recognized generation modes.
const (
	ModeStopped  Mode = "stopped"
	ModeNormal   Mode = "normal"
	ModeAbnormal Mode = "abnormal"
)

// modes is the allow-list in canonical order, used for validation and for
// building error messages.
var modes = []Mode{ModeStopped, ModeNormal, ModeAbnormal}

// ModeNames returns the recognized mode names in canonical order.
func ModeNames() []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = string(m)
	}
	return out
}

// InvalidModeError reports a requested mode outside the recognized set.
type InvalidModeError struct {
	Requested string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q: use one of: %s",
		e.Requested, strings.Join(ModeNames(), ", "))
}

// ParseMode validates name against the recognized modes. Matching is
// case-sensitive and exact: "Normal" and "stop" are both rejected.
func ParseMode(name string) (Mode, error) {
	for _, m := range modes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", &InvalidModeError{Requested: name}
}
