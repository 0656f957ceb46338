package led

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// call is one recorded backend write, formatted like "value(255,0,0)".
type call string

// mockBackend records every call made through the control wrapper.
type mockBackend struct {
	name   string
	caps   Capabilities
	calls  []call
	closed bool
}

func (m *mockBackend) Name() string               { return m.name }
func (m *mockBackend) Capabilities() Capabilities { return m.caps }
func (m *mockBackend) Close()                     { m.closed = true }

func (m *mockBackend) Value(r, g, b int) {
	m.calls = append(m.calls, call(fmt.Sprintf("value(%d,%d,%d)", r, g, b)))
}

func (m *mockBackend) Blink(onMs, offMs int) {
	m.calls = append(m.calls, call(fmt.Sprintf("blink(%d,%d)", onMs, offMs)))
}

func (m *mockBackend) reset() { m.calls = nil }

func (m *mockBackend) count(c call) int {
	n := 0
	for _, got := range m.calls {
		if got == c {
			n++
		}
	}
	return n
}

// valueOnlyBackend has neither blink nor enable primitives.
type valueOnlyBackend struct {
	calls []call
}

func (v *valueOnlyBackend) Name() string               { return "value-only" }
func (v *valueOnlyBackend) Capabilities() Capabilities { return Capabilities{CanBreathe: true, BreathType: RampHardStep} }
func (v *valueOnlyBackend) Close()                     {}

func (v *valueOnlyBackend) Value(r, g, b int) {
	v.calls = append(v.calls, call(fmt.Sprintf("value(%d,%d,%d)", r, g, b)))
}

// enableBackend adds an enable latch.
type enableBackend struct {
	mockBackend
}

func (e *enableBackend) Enable(on bool) {
	e.calls = append(e.calls, call(fmt.Sprintf("enable(%t)", on)))
}

func probeFor(b Backend) Probe {
	return Probe{Name: b.Name(), Open: func(bool) (Backend, bool) { return b, true }}
}

func failingProbe(name string, attempts *[]string) Probe {
	return Probe{Name: name, Open: func(useConfig bool) (Backend, bool) {
		*attempts = append(*attempts, fmt.Sprintf("%s:%t", name, useConfig))
		return nil, false
	}}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func noSleep(time.Duration) {}
