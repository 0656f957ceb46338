package led

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/loop"
)

// ErrUnknownPattern is returned when activating a pattern that is not defined.
var ErrUnknownPattern = errors.New("unknown pattern")

// Pattern is a named, reusable LED request.
type Pattern struct {
	R, G, B int
	OnMs    int
	OffMs   int
	Breathe bool
}

// PatternLookup resolves pattern names. patterns.Store satisfies it.
type PatternLookup interface {
	Get(name string) (Pattern, bool)
}

// Snapshot is a consistent view of the LED taken on the event loop.
type Snapshot struct {
	State      State
	Style      Style
	Backend    string
	CanBreathe bool
	BreathType RampKind
	Pattern    string
}

// Manager serializes LED requests from any goroutine onto the event loop
// and publishes the resulting state on the event bus.
type Manager struct {
	controller Controller
	runner     loop.Runner
	eventBus   *events.Bus
	patterns   PatternLookup
	logger     *slog.Logger

	followBacklight bool

	mu          sync.Mutex
	unsubscribe []func()

	// Owned by the loop goroutine.
	active    string
	activeDef Pattern
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPatterns enables activation of named patterns.
func WithPatterns(p PatternLookup) ManagerOption {
	return func(m *Manager) { m.patterns = p }
}

// WithFollowBacklight makes the LED level track display backlight changes.
func WithFollowBacklight(enabled bool) ManagerOption {
	return func(m *Manager) { m.followBacklight = enabled }
}

// NewManager creates a manager for controller, which must only be touched
// through runner from now on.
func NewManager(controller Controller, runner loop.Runner, eventBus *events.Bus, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		controller: controller,
		runner:     runner,
		eventBus:   eventBus,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to pattern reloads and, if enabled, backlight changes.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unsubscribe = append(m.unsubscribe, m.eventBus.Subscribe(func(e events.PatternsReloadedEvent) {
		m.handlePatternsReloaded(e)
	}))
	if m.followBacklight {
		m.unsubscribe = append(m.unsubscribe, m.eventBus.Subscribe(func(e events.BacklightChangedEvent) {
			m.handleBacklightChanged(e)
		}))
	}
	m.logger.Info("LED manager started", "follow_backlight", m.followBacklight)
}

// Stop unsubscribes from events and turns the LED off.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
	m.mu.Unlock()

	err := m.runner.Call(ctx, m.controller.Quit)
	m.logger.Info("LED manager stopped")
	return err
}

// SetPattern applies a color and blink timing; any active named pattern is dropped.
func (m *Manager) SetPattern(ctx context.Context, r, g, b, onMs, offMs int, source string) (Snapshot, error) {
	return m.apply(ctx, source, func() {
		m.active = ""
		m.controller.SetPattern(r, g, b, onMs, offMs)
	})
}

// SetBreathing toggles software breathing.
func (m *Manager) SetBreathing(ctx context.Context, enable bool, source string) (Snapshot, error) {
	return m.apply(ctx, source, func() {
		m.controller.SetBreathing(enable)
	})
}

// SetBrightness sets the LED level.
func (m *Manager) SetBrightness(ctx context.Context, level int, source string) (Snapshot, error) {
	return m.apply(ctx, source, func() {
		m.controller.SetBrightness(level)
	})
}

// Activate applies the named pattern and remembers it so that edits to the
// pattern file take effect immediately.
func (m *Manager) Activate(ctx context.Context, name, source string) (Snapshot, error) {
	if m.patterns == nil {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
	}
	p, ok := m.patterns.Get(name)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
	}
	return m.apply(ctx, source, func() {
		m.applyPattern(name, p)
	})
}

// Snapshot reads the current state on the loop.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := m.runner.Call(ctx, func() { snap = m.snapshot() })
	return snap, err
}

func (m *Manager) apply(ctx context.Context, source string, fn func()) (Snapshot, error) {
	var before, after Snapshot
	err := m.runner.Call(ctx, func() {
		before = m.snapshot()
		fn()
		after = m.snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	if before != after {
		m.publish(after, source)
	}
	return after, nil
}

// applyPattern runs on the loop.
func (m *Manager) applyPattern(name string, p Pattern) {
	m.active = name
	m.activeDef = p
	m.controller.SetPattern(p.R, p.G, p.B, p.OnMs, p.OffMs)
	if m.controller.CanBreathe() {
		m.controller.SetBreathing(p.Breathe)
	}
}

func (m *Manager) snapshot() Snapshot {
	st := m.controller.State()
	return Snapshot{
		State:      st,
		Style:      st.Style(),
		Backend:    m.controller.Backend(),
		CanBreathe: m.controller.CanBreathe(),
		BreathType: m.controller.BreathType(),
		Pattern:    m.active,
	}
}

func (m *Manager) handlePatternsReloaded(e events.PatternsReloadedEvent) {
	if m.patterns == nil {
		return
	}
	posted := m.runner.Post(func() {
		if m.active == "" {
			return
		}
		before := m.snapshot()
		p, ok := m.patterns.Get(m.active)
		switch {
		case !ok:
			m.logger.Info("Active pattern removed, turning LED off", "pattern", m.active)
			m.active = ""
			m.controller.SetPattern(0, 0, 0, 0, 0)
		case p != m.activeDef:
			m.logger.Info("Active pattern redefined, re-applying", "pattern", m.active)
			m.applyPattern(m.active, p)
		default:
			return
		}
		if after := m.snapshot(); after != before {
			m.publish(after, "reload")
		}
	})
	if !posted {
		m.logger.Debug("Pattern reload ignored, event loop stopped", "patterns", len(e.Names))
	}
}

func (m *Manager) handleBacklightChanged(e events.BacklightChangedEvent) {
	level := max(e.Level, 1)
	m.runner.Post(func() {
		before := m.snapshot()
		m.controller.SetBrightness(level)
		if after := m.snapshot(); after != before {
			m.publish(after, "backlight")
		}
	})
}

func (m *Manager) publish(s Snapshot, source string) {
	m.eventBus.Publish(s.Event(source))
}

// Event converts the snapshot into the bus representation.
func (s Snapshot) Event(source string) events.LEDStateChangedEvent {
	return events.LEDStateChangedEvent{
		Backend:   s.Backend,
		Style:     s.Style.String(),
		R:         s.State.R,
		G:         s.State.G,
		B:         s.State.B,
		OnMs:      s.State.OnMs,
		OffMs:     s.State.OffMs,
		Breathe:   s.State.Breathe,
		Level:     s.State.Level,
		Pattern:   s.Pattern,
		Source:    source,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
