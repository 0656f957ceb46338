package sysfs

import (
	"log/slog"
	"path/filepath"
)

// Config holds backend-specific control file settings, keyed the way they
// appear under [led.backend_config]:
//
//	RedDirectory = "/sys/class/leds/led:rgb_red"
//	BrightnessFile = "brightness"          # relative to every <Chan>Directory
//	RedBlinkFile = "blink"                 # overrides BlinkFile for Red only
//	RedMaxBrightnessOverride = "255"
type Config map[string]string

// member is one configurable control file of a channel.
type member struct {
	key  string // e.g. "MaxBrightness"
	def  string // file name used when only the directory is configured
	dest *string
}

// resolve fills every member path for channel chn. It reports whether at
// least one path was set.
//
// A <Chan><Member>File is taken relative to <Chan>Directory when one is
// configured. Without a per-channel file, <Member>File (or the member
// default) is looked up inside the directory.
func (c Config) resolve(chn string, members []member, logger *slog.Logger) bool {
	dir := c[chn+"Directory"]
	set := 0

	for _, m := range members {
		*m.dest = ""
		if file, ok := c[chn+m.key+"File"]; ok && file != "" {
			*m.dest = joinConfigPath(dir, file)
		} else if dir != "" {
			file := m.def
			if v, ok := c[m.key+"File"]; ok {
				file = v
			}
			if file != "" {
				*m.dest = filepath.Join(dir, file)
			}
		}
		if *m.dest != "" {
			set++
		}
		logger.Debug("LED config path", "channel", chn, "member", m.key, "path", *m.dest)
	}

	return set > 0
}

func joinConfigPath(dir, file string) string {
	if dir == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
