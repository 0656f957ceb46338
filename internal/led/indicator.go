package led

import (
	"log/slog"
	"time"

	"github.com/smazurov/indicatord/internal/loop"
	"github.com/smazurov/indicatord/internal/mathx"
)

// Indicator is the indicator LED state machine.
//
// It owns the logical target state and the probed backend, and sequences
// hardware writes through the scheduler so that the kernel gets KernelDelay
// between conflicting writes. All methods, and every timer callback, must
// run on the scheduler's loop goroutine.
type Indicator struct {
	sched  loop.Scheduler
	probes []Probe
	only   string
	quirks Quirks
	rec    Recorder
	sleep  func(time.Duration)
	logger *slog.Logger

	ctl  *control
	curr State
	ramp Ramp

	// stopTimer settles the hardware after a state change. stepTimer is
	// either the periodic breathing step or the one-shot static apply;
	// at most one of the two is armed.
	stopTimer *Timer
	stepTimer *Timer

	resetBlinking bool
}

// Timer is the handle type the scheduler hands out.
type Timer = loop.Timer

// Option configures an Indicator.
type Option func(*Indicator)

// WithBackend restricts probing to the named backend and makes it resolve
// its control files from configuration.
func WithBackend(name string) Option {
	return func(i *Indicator) { i.only = name }
}

// WithQuirks overrides backend capabilities.
func WithQuirks(q Quirks) Option {
	return func(i *Indicator) { i.quirks = q }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(i *Indicator) {
		if r != nil {
			i.rec = r
		}
	}
}

// WithSleep replaces the blocking wait Quit uses before its final writes.
func WithSleep(fn func(time.Duration)) Option {
	return func(i *Indicator) { i.sleep = fn }
}

// NewIndicator creates an unprobed state machine. Call Init before use.
func NewIndicator(sched loop.Scheduler, probes []Probe, logger *slog.Logger, opts ...Option) *Indicator {
	i := &Indicator{
		sched:  sched,
		probes: probes,
		rec:    nopRecorder{},
		sleep:  time.Sleep,
		logger: logger,
		// An invalid color makes the first start always take effect.
		curr:          State{R: -1, G: -1, B: -1, Level: 255},
		resetBlinking: true,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Init probes the backends in order and drives the LED to black.
// It returns false when no backend matches, which is a normal hardware
// configuration rather than an error.
func (i *Indicator) Init() bool {
	if i.ctl != nil {
		return true
	}

	i.ctl = probeBackends(i.probes, i.only, i.quirks, i.rec, i.logger)
	if i.ctl == nil {
		i.logger.Info("LED sysfs backend: N/A")
		return false
	}
	i.logger.Info("LED sysfs backend: "+i.ctl.name(),
		"can_breathe", i.ctl.canBreathe(),
		"breath_type", i.ctl.breathType().String())

	req := i.curr
	req.R, req.G, req.B = 0, 0, 0
	i.start(req)
	return true
}

// Quit cancels pending timers, waits for the kernel to settle, turns the
// LED off and releases the backend.
func (i *Indicator) Quit() {
	if i.ctl == nil {
		return
	}

	i.cancelStep()
	if i.stopTimer != nil {
		i.stopTimer.Stop()
		i.stopTimer = nil
	}

	i.sleep(KernelDelay)

	i.ctl.blink(0, 0)
	i.ctl.value(0, 0, 0)
	i.ctl.close()
	i.ctl = nil
	i.logger.Debug("LED backend closed")
}

// SetPattern requests a color with optional blink timing. Colors are
// clamped to 0..255 and periods to 0..MaxPeriodMs; a period shorter than
// MinPeriodMs turns blinking off. It reports acceptance, not completion.
func (i *Indicator) SetPattern(r, g, b, onMs, offMs int) bool {
	onMs = mathx.Clamp(onMs, 0, MaxPeriodMs)
	offMs = mathx.Clamp(offMs, 0, MaxPeriodMs)
	if onMs < MinPeriodMs || offMs < MinPeriodMs {
		onMs, offMs = 0, 0
	}

	req := i.curr
	req.R = mathx.Clamp(r, 0, 255)
	req.G = mathx.Clamp(g, 0, 255)
	req.B = mathx.Clamp(b, 0, 255)
	req.OnMs = onMs
	req.OffMs = offMs
	i.start(req)
	return true
}

// SetBreathing switches between hardware blinking and a software ramp.
// It does nothing when the backend cannot breathe.
func (i *Indicator) SetBreathing(enable bool) {
	if !i.CanBreathe() {
		return
	}
	req := i.curr
	req.Breathe = enable
	i.start(req)
}

// SetBrightness sets the 1..255 level that scales every color write.
func (i *Indicator) SetBrightness(level int) {
	req := i.curr
	req.Level = mathx.Clamp(level, 1, 255)
	i.start(req)
}

// CanBreathe reports whether the backend supports software breathing.
func (i *Indicator) CanBreathe() bool {
	return i.ctl != nil && i.ctl.canBreathe()
}

// BreathType reports the ramp the backend uses, RampDisabled if none.
func (i *Indicator) BreathType() RampKind {
	if i.ctl == nil {
		return RampDisabled
	}
	return i.ctl.breathType()
}

// State returns the committed logical state.
func (i *Indicator) State() State {
	return i.curr
}

// Backend returns the probed backend name, or "" before Init succeeds.
func (i *Indicator) Backend() string {
	if i.ctl == nil {
		return ""
	}
	return i.ctl.name()
}

// RampStep returns the breathing playback position.
func (i *Indicator) RampStep() int {
	return i.ramp.Step()
}

func (i *Indicator) start(next State) {
	if i.ctl == nil {
		return
	}

	work := next.Sanitized()
	if work == i.curr {
		return
	}

	oldStyle := i.curr.Style()
	newStyle := work.Style()

	// A breathing ramp already spaces its writes; only amplitude changes.
	restart := !(oldStyle == StyleBreathe && newStyle == StyleBreathe && i.curr.EqualTiming(work))

	// Brightness-only changes keep the ramp phase.
	i.curr.Level = work.Level
	if i.curr != work {
		i.ramp.Rewind()
	}
	i.curr = work

	if oldStyle != newStyle {
		i.rec.ObserveTransition(oldStyle, newStyle)
	}
	i.logger.Debug("LED state changed",
		"style", newStyle.String(),
		"r", work.R, "g", work.G, "b", work.B,
		"on_ms", work.OnMs, "off_ms", work.OffMs,
		"level", work.Level,
		"restart", restart)

	if !restart {
		return
	}

	i.cancelStep()

	kind := RampDisabled
	if newStyle == StyleBreathe {
		kind = i.ctl.breathType()
	}
	i.ramp = GenerateRamp(kind, work.OnMs, work.OffMs).withStep(i.ramp.Step())

	if oldStyle == StyleBlink || newStyle == StyleBlink {
		i.resetBlinking = true
	}

	if i.stopTimer == nil {
		i.stopTimer = i.sched.AfterFunc(KernelDelay, i.onStop)
	}
}

func (i *Indicator) cancelStep() {
	if i.stepTimer != nil {
		i.stepTimer.Stop()
		i.stepTimer = nil
	}
}

// onStop runs one settle period after a restart.
func (i *Indicator) onStop() {
	if i.stopTimer == nil {
		return
	}
	i.stopTimer = nil

	if i.resetBlinking {
		// Must be followed by a value write to have an effect.
		i.ctl.blink(0, 0)
	}

	switch {
	case !i.curr.HasColor():
		i.resetBlinking = true
	case i.ramp.Delay() > 0:
		i.stepTimer = i.sched.Every(i.ramp.Delay(), i.onStep)
	default:
		i.stepTimer = i.sched.AfterFunc(KernelDelay, i.onStatic)
	}

	if i.resetBlinking {
		i.ctl.value(0, 0, 0)
		i.resetBlinking = false
	}
}

// onStatic applies a static or blinking state.
func (i *Indicator) onStatic() {
	if i.stepTimer == nil {
		return
	}
	i.stepTimer = nil

	r, g, b := i.scaled()
	i.ctl.blink(i.curr.OnMs, i.curr.OffMs)
	i.ctl.value(r, g, b)
}

// onStep plays one breathing sample.
func (i *Indicator) onStep() bool {
	if i.stepTimer == nil {
		return false
	}

	r, g, b := i.scaled()
	v := int(i.ramp.Next())
	i.ctl.value(mathx.ScaleValue(r, v), mathx.ScaleValue(g, v), mathx.ScaleValue(b, v))
	i.rec.ObserveBreathStep(i.ctl.name())

	return i.stepTimer != nil
}

func (i *Indicator) scaled() (r, g, b int) {
	l := i.curr.Level
	return mathx.ScaleValue(i.curr.R, l), mathx.ScaleValue(i.curr.G, l), mathx.ScaleValue(i.curr.B, l)
}
