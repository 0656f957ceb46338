package led

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/indicatord/internal/mathx"
)

// RampKind selects the software breathing curve a backend wants.
type RampKind int

const (
	RampDisabled RampKind = iota
	RampHalfSine
	RampHardStep
)

func (k RampKind) String() string {
	switch k {
	case RampDisabled:
		return "disabled"
	case RampHalfSine:
		return "half-sine"
	case RampHardStep:
		return "hard-step"
	default:
		return fmt.Sprintf("ramp(%d)", int(k))
	}
}

// ParseRampKind accepts the names printed by String, "none", and the
// numeric values 0..2.
func ParseRampKind(s string) (RampKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "none", "off":
		return RampDisabled, nil
	case "half-sine", "half_sine", "halfsine", "sine":
		return RampHalfSine, nil
	case "hard-step", "hard_step", "hardstep", "step":
		return RampHardStep, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < int(RampDisabled) || n > int(RampHardStep) {
		return RampDisabled, fmt.Errorf("unknown breath type %q", s)
	}
	return RampKind(n), nil
}

// Ramp is one cycle of breathing intensity samples played back at a fixed
// delay. The zero value is the dummy ramp: no samples, no delay.
type Ramp struct {
	samples []uint8
	delayMs int
	step    int
}

// GenerateRamp builds the curve of the given kind for the on/off periods.
func GenerateRamp(kind RampKind, onMs, offMs int) Ramp {
	switch kind {
	case RampHalfSine:
		return HalfSine(onMs, offMs)
	case RampHardStep:
		return HardStep(onMs, offMs)
	default:
		return Ramp{}
	}
}

// HalfSine rises along a quarter sine during the on phase and falls along
// the next quarter during the off phase.
func HalfSine(onMs, offMs int) Ramp {
	t := onMs + offMs
	if onMs < 0 || offMs < 0 || t <= 0 {
		return Ramp{}
	}

	s := max(mathx.CeilDiv(t, MaxSteps), StepDelayMs)
	n := mathx.CeilDiv(t, s)

	stepsOn := (n*onMs + t/2) / t
	stepsOff := n - stepsOn

	const halfPi = float32(math.Pi / 2)
	samples := make([]uint8, 0, n)
	for i := 0; i < stepsOn; i++ {
		a := float32(i) * halfPi / float32(stepsOn)
		samples = append(samples, uint8(float32(math.Sin(float64(a)))*255))
	}
	for i := 0; i < stepsOff; i++ {
		a := halfPi + float32(i)*halfPi/float32(stepsOff)
		samples = append(samples, uint8(float32(math.Sin(float64(a)))*255))
	}

	return Ramp{samples: samples, delayMs: s}
}

// HardStep emulates plain blinking: full intensity for the on phase, zero
// for the off phase. Periods are rounded up to 100ms and the step is their
// gcd, so the timer only wakes when the output actually flips.
func HardStep(onMs, offMs int) Ramp {
	onMs = mathx.RoundUp(onMs, 100)
	offMs = mathx.RoundUp(offMs, 100)
	total := onMs + offMs
	if onMs < 0 || offMs < 0 || total <= 0 {
		return Ramp{}
	}

	step := max(mathx.GCD(onMs, offMs), StepDelayMs)

	stepsTotal := mathx.CeilDiv(total, step)
	if stepsTotal > MaxSteps {
		stepsTotal = MaxSteps
		step = max(mathx.CeilDiv(total, stepsTotal), StepDelayMs)
	}

	stepsOn := min(mathx.CeilDiv(onMs, step), stepsTotal)

	samples := make([]uint8, stepsTotal)
	for i := 0; i < stepsOn; i++ {
		samples[i] = 255
	}

	return Ramp{samples: samples, delayMs: step}
}

// Len returns the number of samples in one cycle.
func (r *Ramp) Len() int { return len(r.samples) }

// Delay returns the interval between samples; zero for the dummy ramp.
func (r *Ramp) Delay() time.Duration {
	return time.Duration(r.delayMs) * time.Millisecond
}

// Samples returns a copy of the curve.
func (r *Ramp) Samples() []uint8 {
	return append([]uint8(nil), r.samples...)
}

// Step returns the index of the next sample to play.
func (r *Ramp) Step() int { return r.step }

// Rewind restarts playback from the first sample.
func (r *Ramp) Rewind() { r.step = 0 }

// Next returns the current sample and advances, wrapping at the end of the
// cycle. The dummy ramp always yields 0.
func (r *Ramp) Next() uint8 {
	if len(r.samples) == 0 {
		return 0
	}
	if r.step >= len(r.samples) {
		r.step = 0
	}
	v := r.samples[r.step]
	r.step++
	return v
}

// withStep returns r's curve with playback positioned at step.
func (r Ramp) withStep(step int) Ramp {
	r.step = step
	return r
}
