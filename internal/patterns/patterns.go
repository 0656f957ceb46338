// Package patterns holds the table of named LED patterns.
//
// Patterns are defined in a TOML file:
//
//	[patterns.charging]
//	r = 255
//	g = 128
//	on_ms = 1000
//	off_ms = 1000
//	breathe = true
//
// The file is watched; on change the whole table is replaced and a
// PatternsReloadedEvent is published.
package patterns

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/led"
)

type fileFormat struct {
	Patterns map[string]entry `toml:"patterns"`
}

type entry struct {
	R       int  `toml:"r"`
	G       int  `toml:"g"`
	B       int  `toml:"b"`
	OnMs    int  `toml:"on_ms"`
	OffMs   int  `toml:"off_ms"`
	Breathe bool `toml:"breathe"`
}

// Named is a pattern together with its name.
type Named struct {
	Name string
	led.Pattern
}

// Load reads and validates a pattern file.
func Load(path string) (map[string]led.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}
	return Parse(data)
}

// Parse decodes pattern TOML. Unknown keys are rejected so that typos do
// not silently produce black patterns.
func Parse(data []byte) (map[string]led.Pattern, error) {
	var f fileFormat
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}

	out := make(map[string]led.Pattern, len(f.Patterns))
	for name, e := range f.Patterns {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		out[name] = led.Pattern{R: e.R, G: e.G, B: e.B, OnMs: e.OnMs, OffMs: e.OffMs, Breathe: e.Breathe}
	}
	return out, nil
}

func (e entry) validate() error {
	for _, c := range []int{e.R, e.G, e.B} {
		if c < 0 || c > 255 {
			return fmt.Errorf("color %d out of range 0..255", c)
		}
	}
	if e.OnMs < 0 || e.OffMs < 0 {
		return errors.New("negative period")
	}
	if e.OnMs > led.MaxPeriodMs || e.OffMs > led.MaxPeriodMs {
		return fmt.Errorf("period longer than %d ms", led.MaxPeriodMs)
	}
	return nil
}

// Store is the current pattern table. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	patterns map[string]led.Pattern
	eventBus *events.Bus
	logger   *slog.Logger
}

// NewStore creates an empty store. eventBus may be nil.
func NewStore(eventBus *events.Bus, logger *slog.Logger) *Store {
	return &Store{
		patterns: make(map[string]led.Pattern),
		eventBus: eventBus,
		logger:   logger,
	}
}

// Get implements led.PatternLookup.
func (s *Store) Get(name string) (led.Pattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[name]
	return p, ok
}

// List returns all patterns sorted by name.
func (s *Store) List() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Named, 0, len(s.patterns))
	for name, p := range s.patterns {
		out = append(out, Named{Name: name, Pattern: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Replace swaps in a new table and announces it.
func (s *Store) Replace(patterns map[string]led.Pattern) {
	next := make(map[string]led.Pattern, len(patterns))
	names := make([]string, 0, len(patterns))
	for name, p := range patterns {
		next[name] = p
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	s.patterns = next
	s.mu.Unlock()

	s.logger.Info("LED patterns loaded", "count", len(names))
	if s.eventBus != nil {
		s.eventBus.Publish(events.PatternsReloadedEvent{
			Names:     names,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// Watch loads path into store and keeps it updated until the returned
// watcher is stopped.
func Watch(path string, store *Store, logger *slog.Logger, opts ...config.WatcherOption[map[string]led.Pattern]) (*config.Watcher[map[string]led.Pattern], error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}
	store.Replace(initial)

	w := config.NewWatcher(path, Load, logger, opts...)
	w.OnReload(store.Replace)
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("failed to watch pattern file: %w", err)
	}
	return w, nil
}
