package led

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuirks builds Quirks from their configuration strings. An empty
// string leaves the backend's own capability in place.
//
// breathing accepts false/no/disabled, true/yes/enabled or an integer
// (nonzero enables). breathType accepts anything ParseRampKind does.
func ParseQuirks(breathing, breathType string) (Quirks, error) {
	var q Quirks

	if s := strings.TrimSpace(breathing); s != "" {
		on, err := parseQuirkBool(s)
		if err != nil {
			return Quirks{}, err
		}
		q.Breathing = &on
	}

	if s := strings.TrimSpace(breathType); s != "" {
		kind, err := ParseRampKind(s)
		if err != nil {
			return Quirks{}, err
		}
		q.BreathType = &kind
	}

	return q, nil
}

func parseQuirkBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "false", "no", "disabled":
		return false, nil
	case "true", "yes", "enabled":
		return true, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false, fmt.Errorf("invalid breathing quirk %q", s)
	}
	return n != 0, nil
}
