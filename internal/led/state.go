package led

import (
	"fmt"
	"time"
)

const (
	// KernelDelay is how long a kernel LED driver needs to absorb one write
	// before the next one is safe.
	KernelDelay = 10 * time.Millisecond

	// StepDelayMs is the shortest interval between two breathing samples.
	StepDelayMs = 50

	// MaxSteps bounds the number of samples in one breathing cycle.
	MaxSteps = 256

	// MinSteps is the fewest samples a phase needs to be rendered as a ramp.
	MinSteps = 5

	// MaxPeriodMs is the longest accepted on or off period.
	MaxPeriodMs = 60000

	// MinPeriodMs is the shortest accepted on or off period; faster blinking is suppressed.
	MinPeriodMs = 50
)

// Style classifies a State by how it must be rendered.
type Style int

const (
	StyleOff Style = iota
	StyleStatic
	StyleBlink
	StyleBreathe
)

func (s Style) String() string {
	switch s {
	case StyleOff:
		return "off"
	case StyleStatic:
		return "static"
	case StyleBlink:
		return "blink"
	case StyleBreathe:
		return "breathe"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// State is the logical target for the indicator LED.
//
// Colors are ints rather than bytes so out-of-range requests survive until
// sanitized. Level scales the color before it reaches the backend.
type State struct {
	R, G, B int
	OnMs    int
	OffMs   int
	Breathe bool
	Level   int
}

// HasColor reports whether any channel is lit.
func (s State) HasColor() bool {
	return s.R > 0 || s.G > 0 || s.B > 0
}

// EqualTiming reports whether both states use the same on/off periods.
func (s State) EqualTiming(o State) bool {
	return s.OnMs == o.OnMs && s.OffMs == o.OffMs
}

// Sanitized returns s normalized so that its fields are mutually consistent:
// no color means no timing, a missing period means static, and periods too
// short to sample at StepDelayMs*MinSteps cannot breathe.
func (s State) Sanitized() State {
	minPeriod := StepDelayMs * MinSteps

	switch {
	case !s.HasColor():
		s.OnMs, s.OffMs = 0, 0
		s.Breathe = false
	case s.OnMs <= 0 || s.OffMs <= 0:
		s.OnMs, s.OffMs = 0, 0
		s.Breathe = false
	case s.OnMs < minPeriod || s.OffMs < minPeriod:
		s.Breathe = false
	}
	return s
}

// Style derives the rendering style of s.
func (s State) Style() Style {
	switch {
	case !s.HasColor():
		return StyleOff
	case s.OnMs <= 0 || s.OffMs <= 0:
		return StyleStatic
	case s.Breathe:
		return StyleBreathe
	default:
		return StyleBlink
	}
}
