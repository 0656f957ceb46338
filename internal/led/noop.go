package led

import "github.com/smazurov/indicatord/internal/logging"

// noopController records requests without touching hardware.
// Used when no backend probes or LED control is disabled.
type noopController struct {
	logger logging.Logger
	state  State
}

func newNoop(logger logging.Logger) *noopController {
	return &noopController{logger: logger, state: State{Level: 255}}
}

func (n *noopController) SetPattern(r, g, b, onMs, offMs int) bool {
	if n.logger != nil {
		n.logger.Debug("LED control not available (no-op)",
			"r", r, "g", g, "b", b, "on_ms", onMs, "off_ms", offMs)
	}
	n.state.R, n.state.G, n.state.B = r, g, b
	n.state.OnMs, n.state.OffMs = onMs, offMs
	n.state = n.state.Sanitized()
	return true
}

func (n *noopController) SetBreathing(bool) {}

func (n *noopController) SetBrightness(level int) {
	if level >= 1 && level <= 255 {
		n.state.Level = level
	}
}

func (n *noopController) CanBreathe() bool { return false }

func (n *noopController) BreathType() RampKind { return RampDisabled }

func (n *noopController) State() State { return n.state }

func (n *noopController) Backend() string { return "" }

func (n *noopController) Quit() {}
