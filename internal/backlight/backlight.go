// Package backlight controls a display backlight through the raw sysfs
// backlight class (/sys/class/backlight/<device>).
//
// Levels use the same 0..255 logical range as the indicator LED and are
// scaled onto the device's max_brightness with the same zero-preserving
// transform: level 0 is off and any positive level is at least 1.
package backlight

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/mathx"
)

// DefaultRoot is where the kernel exposes backlight class devices.
const DefaultRoot = "/sys/class/backlight"

// ErrNotFound is returned when no usable backlight device exists.
var ErrNotFound = errors.New("backlight device not found")

// Recorder observes applied brightness. metrics.LED satisfies it.
type Recorder interface {
	ObserveBacklight(device string, level, raw int)
}

// Device is one backlight class device.
type Device struct {
	name   string
	dir    string
	max    int
	bus    *events.Bus
	rec    Recorder
	logger *slog.Logger

	mu sync.Mutex
}

// Option configures a Device.
type Option func(*Device)

// WithEventBus publishes a BacklightChangedEvent for every applied level.
func WithEventBus(bus *events.Bus) Option {
	return func(d *Device) { d.bus = bus }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Device) { d.rec = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Device) { d.logger = logger }
}

// Open opens the named device under root. An empty root means DefaultRoot;
// an empty name picks the first device, by name, that has both a
// brightness and a max_brightness file.
func Open(root, name string, opts ...Option) (*Device, error) {
	if root == "" {
		root = DefaultRoot
	}

	d := &Device{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}

	if name == "" {
		found, err := scan(root)
		if err != nil {
			return nil, err
		}
		name = found
	}

	d.name = name
	d.dir = filepath.Join(root, name)

	maxRaw, err := readInt(filepath.Join(d.dir, "max_brightness"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, d.dir)
		}
		return nil, fmt.Errorf("failed to read max brightness: %w", err)
	}
	if maxRaw <= 0 {
		return nil, fmt.Errorf("invalid max brightness %d for %s", maxRaw, name)
	}
	if _, err := os.Stat(filepath.Join(d.dir, "brightness")); err != nil {
		return nil, fmt.Errorf("%w: %s has no brightness control", ErrNotFound, name)
	}
	d.max = maxRaw

	d.logger.Info("Backlight device opened", "device", name, "max_brightness", maxRaw)
	return d, nil
}

// scan returns the first directory under root with both control files.
func scan(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return "", fmt.Errorf("failed to list %s: %w", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		dir := filepath.Join(root, name)
		if fileExists(filepath.Join(dir, "brightness")) && fileExists(filepath.Join(dir, "max_brightness")) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no device under %s", ErrNotFound, root)
}

// Name returns the device directory name.
func (d *Device) Name() string {
	return d.name
}

// Max returns the raw max_brightness.
func (d *Device) Max() int {
	return d.max
}

// SetBrightness applies a 0..255 level and returns the raw value written.
func (d *Device) SetBrightness(level int) (int, error) {
	level = mathx.Clamp(level, 0, 255)
	raw := mathx.ScaleValue(level, d.max)

	d.mu.Lock()
	err := os.WriteFile(filepath.Join(d.dir, "brightness"), []byte(strconv.Itoa(raw)), 0o644)
	d.mu.Unlock()
	if err != nil {
		d.logger.Error("Failed to write backlight brightness", "device", d.name, "raw", raw, "error", err)
		return 0, fmt.Errorf("failed to set backlight brightness: %w", err)
	}

	d.logger.Debug("Backlight brightness set", "device", d.name, "level", level, "raw", raw)
	if d.rec != nil {
		d.rec.ObserveBacklight(d.name, level, raw)
	}
	if d.bus != nil {
		d.bus.Publish(events.BacklightChangedEvent{
			Device:    d.name,
			Level:     level,
			Raw:       raw,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return raw, nil
}

// Brightness reads the current raw brightness and maps it back onto 0..255.
func (d *Device) Brightness() (level, raw int, err error) {
	d.mu.Lock()
	raw, err = readInt(filepath.Join(d.dir, "brightness"))
	d.mu.Unlock()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read backlight brightness: %w", err)
	}
	return RawToLevel(raw, d.max), raw, nil
}

// RawToLevel is the inverse of the level scaling: 0 stays 0 and the
// result is clamped to 1..255 otherwise.
func RawToLevel(raw, maxRaw int) int {
	if raw <= 0 {
		return 0
	}
	if maxRaw <= 1 {
		return 255
	}
	return mathx.Trans(raw, 1, maxRaw, 1, 255)
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
