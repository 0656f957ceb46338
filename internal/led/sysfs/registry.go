package sysfs

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// DefaultRoot is where the kernel exposes LED class devices.
const DefaultRoot = "/sys/class/leds"

// Settings configures the sysfs backends.
type Settings struct {
	// Root replaces DefaultRoot for the built-in layouts.
	Root string
	// Config supplies control file paths when a backend is forced by name.
	Config Config
	Logger *slog.Logger
	// OnError, if set, observes failed opens, reads and writes.
	OnError ErrorFunc
	// OnWrite, if set, observes writes the cache did not skip.
	OnWrite WriteFunc
}

func (s Settings) path(name string) string {
	root := s.Root
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, name)
}

func (s Settings) value() *value {
	v := newValue(s.Logger, s.OnError)
	v.onWrite = s.OnWrite
	return v
}

// Names lists the backends in probe order.
func Names() []string {
	return []string{"hammerhead", "f5121", "vanilla", "redgreen", "white", "binary"}
}

// rgbChannels are the channel prefixes of three color backends in Config.
var rgbChannels = [3]string{"Red", "Green", "Blue"}

// Registry returns the backend probes in the order they must be tried:
// hammerhead, f5121, vanilla, redgreen, white, binary. Specific layouts come
// first; redgreen and the single channel backends match subsets of the RGB
// layouts and would otherwise shadow them. Other vendor layouts are not
// built in; forcing vanilla or f5121 with Config paths covers them.
func Registry(s Settings) []led.Probe {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	return []led.Probe{
		{Name: "hammerhead", Open: func(bool) (led.Backend, bool) { return openHammerhead(s) }},
		{Name: "f5121", Open: func(useConfig bool) (led.Backend, bool) { return openF5121(s, useConfig) }},
		{Name: "vanilla", Open: func(useConfig bool) (led.Backend, bool) { return openVanilla(s, useConfig) }},
		{Name: "redgreen", Open: func(bool) (led.Backend, bool) { return openRedGreen(s) }},
		{Name: "white", Open: func(bool) (led.Backend, bool) { return openWhite(s) }},
		{Name: "binary", Open: func(bool) (led.Backend, bool) { return openBinary(s) }},
	}
}

var (
	_ led.Blinker = (*hammerhead)(nil)
	_ led.Enabler = (*hammerhead)(nil)
	_ led.Blinker = (*f5121)(nil)
	_ led.Blinker = (*vanilla)(nil)
)
