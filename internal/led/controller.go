package led

// Controller is the indicator LED surface the daemon drives.
// Implementations are not safe for concurrent use; the Manager serializes
// calls onto the event loop.
type Controller interface {
	// SetPattern requests color and blink timing. It always reports acceptance.
	SetPattern(r, g, b, onMs, offMs int) bool

	// SetBreathing toggles software breathing where the backend supports it.
	SetBreathing(enable bool)

	// SetBrightness sets the 1..255 level applied to every color.
	SetBrightness(level int)

	// CanBreathe reports software breathing support.
	CanBreathe() bool

	// BreathType reports the ramp used for breathing.
	BreathType() RampKind

	// State returns the committed logical state.
	State() State

	// Backend names the active backend; empty when there is none.
	Backend() string

	// Quit turns the LED off and releases the hardware.
	Quit()
}

var (
	_ Controller = (*Indicator)(nil)
	_ Controller = (*noopController)(nil)
)
