package led

import "log/slog"

// Backend drives one physical indicator LED. Implementations fan each call
// out to their channels in a fixed order.
//
// Writing color may invalidate a backend's cached blink state and vice
// versa; callers never assume one write survives an unrelated write on the
// same channel.
type Backend interface {
	// Name identifies the backend, e.g. "vanilla".
	Name() string
	// Value sets the already scaled 0..255 intensity of each channel.
	Value(r, g, b int)
	// Close releases the control files.
	Close()
	// Capabilities reports the static software breathing support.
	Capabilities() Capabilities
}

// Blinker is implemented by backends with a hardware blink primitive.
type Blinker interface {
	Blink(onMs, offMs int)
}

// Enabler is implemented by backends that latch writes behind an enable switch.
type Enabler interface {
	Enable(enable bool)
}

// Capabilities describes software breathing support.
type Capabilities struct {
	CanBreathe bool
	BreathType RampKind
}

// DefaultCapabilities is what a backend gets unless it says otherwise.
var DefaultCapabilities = Capabilities{CanBreathe: true, BreathType: RampHalfSine}

// Probe tries to open one backend. useConfig asks the backend to resolve its
// control files from configuration instead of its built-in path tables.
// A failed probe must leave nothing open.
type Probe struct {
	Name string
	Open func(useConfig bool) (Backend, bool)
}

// Quirks override backend capabilities after a successful probe.
type Quirks struct {
	Breathing  *bool
	BreathType *RampKind
}

// Recorder observes hardware activity. metrics.LED satisfies it.
type Recorder interface {
	ObserveRequest(backend, op string)
	ObserveTransition(from, to Style)
	ObserveBreathStep(backend string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string) {}

func (nopRecorder) ObserveTransition(Style, Style) {}

func (nopRecorder) ObserveBreathStep(string) {}

// control wraps the selected backend with the generic enable/blink/value
// sequencing and the effective capabilities.
type control struct {
	backend Backend
	blinker Blinker
	enabler Enabler
	caps    Capabilities
	rec     Recorder
	logger  *slog.Logger
}

// probeBackends walks probes in order and wraps the first that opens.
// A non-empty only restricts probing to that backend and switches it to
// config-driven paths.
func probeBackends(probes []Probe, only string, quirks Quirks, rec Recorder, logger *slog.Logger) *control {
	for _, p := range probes {
		useConfig := false
		if only != "" {
			if p.Name != only {
				continue
			}
			useConfig = true
		}

		backend, ok := p.Open(useConfig)
		if !ok || backend == nil {
			logger.Debug("LED backend probe failed", "backend", p.Name, "use_config", useConfig)
			continue
		}

		caps := backend.Capabilities()
		if quirks.Breathing != nil {
			caps.CanBreathe = *quirks.Breathing
		}
		if caps.CanBreathe && quirks.BreathType != nil {
			caps.BreathType = *quirks.BreathType
		}

		c := &control{backend: backend, caps: caps, rec: rec, logger: logger}
		c.blinker, _ = backend.(Blinker)
		c.enabler, _ = backend.(Enabler)
		return c
	}
	return nil
}

func (c *control) name() string {
	return c.backend.Name()
}

func (c *control) enable(on bool) {
	if c.enabler == nil {
		return
	}
	c.enabler.Enable(on)
	c.rec.ObserveRequest(c.name(), "enable")
}

func (c *control) blink(onMs, offMs int) {
	if c.blinker == nil {
		return
	}
	c.logger.Debug("LED blink", "on_ms", onMs, "off_ms", offMs)
	c.enable(false)
	c.blinker.Blink(onMs, offMs)
	c.rec.ObserveRequest(c.name(), "blink")
}

func (c *control) value(r, g, b int) {
	c.logger.Debug("LED value", "r", r, "g", g, "b", b)
	c.enable(false)
	c.backend.Value(r, g, b)
	c.rec.ObserveRequest(c.name(), "value")
	c.enable(true)
}

func (c *control) close() {
	c.backend.Close()
}

func (c *control) canBreathe() bool {
	return c.caps.CanBreathe
}

func (c *control) breathType() RampKind {
	if !c.caps.CanBreathe {
		return RampDisabled
	}
	return c.caps.BreathType
}

// Detect reports the backend that would be selected and its effective
// capabilities, then closes it again. Nothing is written to the LED.
func Detect(probes []Probe, only string, quirks Quirks, logger *slog.Logger) (string, Capabilities, bool) {
	c := probeBackends(probes, only, quirks, nopRecorder{}, logger)
	if c == nil {
		return "", Capabilities{}, false
	}
	defer c.close()
	caps := c.caps
	caps.BreathType = c.breathType()
	return c.name(), caps, true
}
