package led

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/smazurov/indicatord/internal/loop"
	"github.com/smazurov/indicatord/internal/mathx"
)

func newTestIndicator(t *testing.T, b Backend, opts ...Option) (*Indicator, *loop.Manual) {
	t.Helper()
	sched := loop.NewManual()
	opts = append([]Option{WithSleep(noSleep)}, opts...)
	ind := NewIndicator(sched, []Probe{probeFor(b)}, newTestLogger(), opts...)
	if !ind.Init() {
		t.Fatal("Init() = false, want true")
	}
	return ind, sched
}

func TestIndicator_InitDrivesBlack(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)

	if len(b.calls) != 0 {
		t.Fatalf("writes before settle delay: %v", b.calls)
	}
	sched.Advance(KernelDelay)

	want := []call{"blink(0,0)", "value(0,0,0)"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	if got := ind.State(); got != (State{Level: 255}) {
		t.Errorf("State() = %+v, want black at level 255", got)
	}
	if ind.Backend() != "mock" {
		t.Errorf("Backend() = %q, want mock", ind.Backend())
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", sched.Pending())
	}
}

func TestIndicator_InitNoBackend(t *testing.T) {
	var attempts []string
	ind := NewIndicator(loop.NewManual(), []Probe{failingProbe("a", &attempts), failingProbe("b", &attempts)}, newTestLogger())

	if ind.Init() {
		t.Fatal("Init() = true with no matching backend")
	}
	if !reflect.DeepEqual(attempts, []string{"a:false", "b:false"}) {
		t.Errorf("probe attempts = %v", attempts)
	}
	if ind.CanBreathe() || ind.BreathType() != RampDisabled || ind.Backend() != "" {
		t.Error("unprobed indicator reports capabilities")
	}
	if !ind.SetPattern(255, 0, 0, 0, 0) {
		t.Error("SetPattern() = false")
	}
	ind.Quit()
}

func TestIndicator_ProbeOrderFirstMatchWins(t *testing.T) {
	var attempts []string
	first := &mockBackend{name: "first"}
	second := &mockBackend{name: "second"}
	probes := []Probe{failingProbe("specific", &attempts), probeFor(first), probeFor(second)}

	ind := NewIndicator(loop.NewManual(), probes, newTestLogger())
	if !ind.Init() {
		t.Fatal("Init() = false")
	}
	if ind.Backend() != "first" {
		t.Errorf("Backend() = %q, want first", ind.Backend())
	}
	if len(attempts) != 1 {
		t.Errorf("attempts = %v, want only the failing specific probe", attempts)
	}
}

func TestIndicator_ForcedBackendUsesConfig(t *testing.T) {
	var attempts []string
	probes := []Probe{failingProbe("hammerhead", &attempts), failingProbe("f5121", &attempts), failingProbe("vanilla", &attempts)}

	ind := NewIndicator(loop.NewManual(), probes, newTestLogger(), WithBackend("f5121"))
	if ind.Init() {
		t.Fatal("Init() = true")
	}
	if !reflect.DeepEqual(attempts, []string{"f5121:true"}) {
		t.Errorf("attempts = %v, want [f5121:true]", attempts)
	}
}

func TestIndicator_Quirks(t *testing.T) {
	no := false
	hard := RampHardStep

	tests := []struct {
		name       string
		caps       Capabilities
		quirks     Quirks
		wantBreath bool
		wantType   RampKind
	}{
		{"backend default", Capabilities{CanBreathe: true, BreathType: RampHalfSine}, Quirks{}, true, RampHalfSine},
		{"breathing disabled", Capabilities{CanBreathe: true, BreathType: RampHalfSine}, Quirks{Breathing: &no}, false, RampDisabled},
		{"breath type override", Capabilities{CanBreathe: true, BreathType: RampHalfSine}, Quirks{BreathType: &hard}, true, RampHardStep},
		{"type ignored when not breathing", Capabilities{}, Quirks{BreathType: &hard}, false, RampDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{name: "mock", caps: tt.caps}
			ind, _ := newTestIndicator(t, b, WithQuirks(tt.quirks))
			if ind.CanBreathe() != tt.wantBreath {
				t.Errorf("CanBreathe() = %v, want %v", ind.CanBreathe(), tt.wantBreath)
			}
			if ind.BreathType() != tt.wantType {
				t.Errorf("BreathType() = %v, want %v", ind.BreathType(), tt.wantType)
			}
		})
	}
}

func TestIndicator_BlinkPattern(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)
	b.reset()

	if !ind.SetPattern(255, 0, 0, 1000, 1000) {
		t.Fatal("SetPattern() = false")
	}
	sched.Advance(2 * KernelDelay)

	want := []call{"blink(0,0)", "value(0,0,0)", "blink(1000,1000)", "value(255,0,0)"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Fatalf("calls = %v, want %v", b.calls, want)
	}
	if b.count("blink(1000,1000)") != 1 || b.count("value(255,0,0)") != 1 {
		t.Errorf("pattern applied more than once: %v", b.calls)
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", sched.Pending())
	}
}

func TestIndicator_SetPatternIdempotent(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)

	ind.SetPattern(0, 0, 255, 500, 1500)
	sched.Advance(time.Second)
	b.reset()

	ind.SetPattern(0, 0, 255, 500, 1500)
	sched.Advance(time.Second)

	if len(b.calls) != 0 {
		t.Errorf("repeated SetPattern wrote %v", b.calls)
	}
	if sched.Pending() != 0 {
		t.Errorf("repeated SetPattern armed %d timers", sched.Pending())
	}
}

func TestIndicator_StaticSkipsBlinkReset(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)
	b.reset()

	ind.SetPattern(0, 255, 0, 0, 0)
	sched.Advance(KernelDelay)
	if len(b.calls) != 0 {
		t.Fatalf("static change wrote during settle: %v", b.calls)
	}
	sched.Advance(KernelDelay)

	want := []call{"blink(0,0)", "value(0,255,0)"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestIndicator_PatternClamping(t *testing.T) {
	tests := []struct {
		name string
		in   [5]int
		want State
	}{
		{"colors clamp", [5]int{300, -5, 128, 0, 0}, State{R: 255, G: 0, B: 128, Level: 255}},
		{"periods clamp", [5]int{1, 1, 1, 90000, 70000}, State{R: 1, G: 1, B: 1, OnMs: 60000, OffMs: 60000, Level: 255}},
		{"too fast blink suppressed", [5]int{255, 0, 0, 49, 1000}, State{R: 255, Level: 255}},
		{"minimum blink accepted", [5]int{255, 0, 0, 50, 50}, State{R: 255, OnMs: 50, OffMs: 50, Level: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind, _ := newTestIndicator(t, &mockBackend{name: "mock"})
			ind.SetPattern(tt.in[0], tt.in[1], tt.in[2], tt.in[3], tt.in[4])
			if got := ind.State(); got != tt.want {
				t.Errorf("State() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIndicator_BrightnessClampsAndScales(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)

	ind.SetBrightness(0)
	if ind.State().Level != 1 {
		t.Errorf("Level = %d, want clamp to 1", ind.State().Level)
	}
	ind.SetBrightness(1000)
	if ind.State().Level != 255 {
		t.Errorf("Level = %d, want clamp to 255", ind.State().Level)
	}

	ind.SetBrightness(128)
	ind.SetPattern(255, 100, 0, 0, 0)
	sched.Advance(time.Second)

	want := call("value(128,51,0)")
	if b.calls[len(b.calls)-1] != want {
		t.Errorf("last call = %v, want %v", b.calls[len(b.calls)-1], want)
	}
}

func TestIndicator_SetBreathingIgnoredWithoutSupport(t *testing.T) {
	b := &mockBackend{name: "mock", caps: Capabilities{}}
	ind, _ := newTestIndicator(t, b)

	ind.SetPattern(255, 0, 0, 1000, 1000)
	ind.SetBreathing(true)
	if ind.State().Breathe {
		t.Error("Breathe set on a backend that cannot breathe")
	}
}

func TestIndicator_BreathingFollowsRamp(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)
	b.reset()

	ind.SetPattern(255, 0, 0, 500, 500)
	ind.SetBreathing(true)
	if got := ind.State().Style(); got != StyleBreathe {
		t.Fatalf("Style() = %v, want breathe", got)
	}

	ramp := HalfSine(500, 500)
	samples := ramp.Samples()

	sched.Advance(KernelDelay)
	wantSettle := []call{"blink(0,0)", "value(0,0,0)"}
	if !reflect.DeepEqual(b.calls, wantSettle) {
		t.Fatalf("settle calls = %v, want %v", b.calls, wantSettle)
	}
	b.reset()

	steps := 2*len(samples) + 3
	sched.Advance(time.Duration(steps) * ramp.Delay())

	if len(b.calls) != steps {
		t.Fatalf("got %d step writes, want %d", len(b.calls), steps)
	}
	for i, c := range b.calls {
		v := samples[i%len(samples)]
		want := call(fmtValue(mathx.ScaleValue(255, int(v)), 0, 0))
		if c != want {
			t.Fatalf("step %d = %v, want %v", i, c, want)
		}
	}
	if sched.Pending() != 1 {
		t.Errorf("Pending() = %d, want the breathing timer", sched.Pending())
	}
}

func TestIndicator_BrightnessPreservesRampPhase(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)

	ind.SetPattern(0, 255, 0, 500, 500)
	ind.SetBreathing(true)
	ramp := HalfSine(500, 500)
	samples := ramp.Samples()

	sched.Advance(KernelDelay + 7*ramp.Delay())
	if ind.RampStep() != 7 {
		t.Fatalf("RampStep() = %d, want 7", ind.RampStep())
	}
	b.reset()

	ind.SetBrightness(100)
	if ind.RampStep() != 7 {
		t.Errorf("RampStep() after brightness = %d, want 7", ind.RampStep())
	}
	if sched.Pending() != 1 {
		t.Errorf("brightness change re-armed timers, Pending() = %d", sched.Pending())
	}

	sched.Advance(ramp.Delay())
	level := mathx.ScaleValue(255, 100)
	want := call(fmtValue(0, mathx.ScaleValue(level, int(samples[7])), 0))
	if len(b.calls) != 1 || b.calls[0] != want {
		t.Errorf("calls = %v, want [%v]", b.calls, want)
	}

	// A pattern change restarts the ramp.
	ind.SetPattern(0, 0, 255, 500, 500)
	if ind.RampStep() != 0 {
		t.Errorf("RampStep() after color change = %d, want 0", ind.RampStep())
	}
}

func TestIndicator_BreathingColorChangeKeepsTimer(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)

	ind.SetPattern(255, 0, 0, 500, 500)
	ind.SetBreathing(true)
	sched.Advance(KernelDelay + 3*50*time.Millisecond)
	b.reset()

	ind.SetPattern(0, 0, 255, 500, 500)
	sched.Advance(50 * time.Millisecond)

	if b.count("blink(0,0)") != 0 {
		t.Errorf("breath to breath with equal timing reset blinking: %v", b.calls)
	}
	if len(b.calls) != 1 {
		t.Fatalf("calls = %v, want one step write", b.calls)
	}
	if b.calls[0] != call(fmtValue(0, 0, 0)) {
		t.Errorf("first step after color change = %v, want ramp start", b.calls[0])
	}
}

func TestIndicator_HardStepBackend(t *testing.T) {
	b := &valueOnlyBackend{}
	sched := loop.NewManual()
	ind := NewIndicator(sched, []Probe{probeFor(b)}, newTestLogger(), WithSleep(noSleep))
	if !ind.Init() {
		t.Fatal("Init() = false")
	}
	sched.Advance(time.Second)
	b.calls = nil

	ind.SetPattern(255, 255, 255, 300, 700)
	ind.SetBreathing(true)
	sched.Advance(KernelDelay + 5*100*time.Millisecond)

	want := []call{
		"value(0,0,0)",
		"value(255,255,255)", "value(255,255,255)", "value(255,255,255)",
		"value(0,0,0)", "value(0,0,0)",
	}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestIndicator_EnableBracketsWrites(t *testing.T) {
	b := &enableBackend{mockBackend{name: "hammerhead", caps: Capabilities{}}}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)
	b.reset()

	ind.SetPattern(10, 20, 30, 0, 0)
	sched.Advance(time.Second)

	want := []call{
		"enable(false)", "blink(0,0)",
		"enable(false)", "value(10,20,30)", "enable(true)",
	}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestIndicator_TurnOffCancelsBreathing(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	ind, sched := newTestIndicator(t, b)
	sched.Advance(time.Second)

	ind.SetPattern(255, 0, 0, 500, 500)
	ind.SetBreathing(true)
	sched.Advance(time.Second)
	b.reset()

	ind.SetPattern(0, 0, 0, 0, 0)
	sched.Advance(time.Second)

	want := []call{"value(0,0,0)"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", sched.Pending())
	}
}

func TestIndicator_Quit(t *testing.T) {
	b := &mockBackend{name: "mock", caps: DefaultCapabilities}
	var slept time.Duration
	ind, sched := newTestIndicator(t, b, WithSleep(func(d time.Duration) { slept += d }))

	ind.SetPattern(255, 0, 0, 500, 500)
	ind.SetBreathing(true)
	sched.Advance(200 * time.Millisecond)
	b.reset()

	ind.Quit()

	if slept != KernelDelay {
		t.Errorf("slept %v, want %v", slept, KernelDelay)
	}
	want := []call{"blink(0,0)", "value(0,0,0)"}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	if !b.closed {
		t.Error("backend not closed")
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d after Quit", sched.Pending())
	}
	if ind.Backend() != "" {
		t.Error("Backend() still set after Quit")
	}

	b.reset()
	sched.Advance(time.Second)
	if len(b.calls) != 0 {
		t.Errorf("writes after Quit: %v", b.calls)
	}
}

func fmtValue(r, g, b int) string {
	return fmt.Sprintf("value(%d,%d,%d)", r, g, b)
}
