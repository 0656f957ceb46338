package events

// Event type constants for kelindar/event.
const (
	TypeLEDStateChanged uint32 = iota + 1
	TypePatternsReloaded
	TypeBacklightChanged
	TypeLogEntry
	TypeLEDMetrics
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LEDStateChangedEvent is published after a request reached the LED state machine.
type LEDStateChangedEvent struct {
	Backend   string `json:"backend" example:"vanilla" doc:"Active LED backend, empty when none"`
	Style     string `json:"style" example:"breathe" enum:"off,static,blink,breathe" doc:"Rendering style"`
	R         int    `json:"r" example:"255" doc:"Red 0-255"`
	G         int    `json:"g" example:"0" doc:"Green 0-255"`
	B         int    `json:"b" example:"0" doc:"Blue 0-255"`
	OnMs      int    `json:"on_ms" example:"1000" doc:"On period in milliseconds"`
	OffMs     int    `json:"off_ms" example:"1000" doc:"Off period in milliseconds"`
	Breathe   bool   `json:"breathe" doc:"Whether the pattern breathes"`
	Level     int    `json:"level" example:"255" doc:"Brightness level 1-255"`
	Pattern   string `json:"pattern,omitempty" example:"charging" doc:"Named pattern that produced this state"`
	Source    string `json:"source" example:"api" doc:"What triggered the change"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDStateChangedEvent.
func (e LEDStateChangedEvent) Type() uint32 { return TypeLEDStateChanged }

// PatternsReloadedEvent is published after the pattern file was re-read.
type PatternsReloadedEvent struct {
	Names     []string `json:"names" doc:"Pattern names now defined"`
	Timestamp string   `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PatternsReloadedEvent.
func (e PatternsReloadedEvent) Type() uint32 { return TypePatternsReloaded }

// BacklightChangedEvent is published after the display backlight was written.
type BacklightChangedEvent struct {
	Device    string `json:"device" example:"panel0-backlight" doc:"Backlight device name"`
	Level     int    `json:"level" example:"128" doc:"Requested level 0-255"`
	Raw       int    `json:"raw" example:"2047" doc:"Value written to sysfs"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BacklightChangedEvent.
func (e BacklightChangedEvent) Type() uint32 { return TypeBacklightChanged }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// LEDMetricsEvent carries periodic LED activity totals for SSE clients.
type LEDMetricsEvent struct {
	EventType      string `json:"type" example:"led_metrics" doc:"Event type"`
	Requests       string `json:"requests" example:"1500" doc:"LED backend operations since start"`
	Writes         string `json:"writes" example:"1024" doc:"Writes that reached sysfs since start"`
	WriteErrors    string `json:"write_errors" example:"0" doc:"Failed sysfs operations since start"`
	Transitions    string `json:"transitions" example:"12" doc:"Style transitions since start"`
	BreathSteps    string `json:"breath_steps" example:"800" doc:"Breathing samples since start"`
	BacklightLevel string `json:"backlight_level" example:"128" doc:"Last applied backlight level"`
}

// Type returns the event type identifier for LEDMetricsEvent.
func (e LEDMetricsEvent) Type() uint32 { return TypeLEDMetrics }
